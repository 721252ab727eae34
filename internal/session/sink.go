package session

// Sink receives what the user interface shows. Update always carries the full
// accumulated output for the current run plus the rendered stats line (empty
// until the generator reports throughput).
//
// Calls may originate from the caller's goroutine (start, cancel) as well as
// the session's publishing goroutine; implementations must serialize
// internally. Running may repeat a value, and one trailing Update can arrive
// after Running(false) while a cancelled run flushes.
type Sink interface {
	Update(output, stats string)
	Running(running bool)
}

// nopSink keeps the session usable without a UI attached.
type nopSink struct{}

func (nopSink) Update(string, string) {}
func (nopSink) Running(bool)          {}
