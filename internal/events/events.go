// Package events carries lifecycle notifications from the generation pipeline
// to interested collaborators (logs, metrics, tests).
package events

import "github.com/rs/zerolog"

// Event represents a pipeline lifecycle event.
// Minimal and stable: name + run ID and optional fields via key/values.
type Event struct {
	Name   string
	RunID  string
	Fields map[string]any
}

// Publisher receives events from the pipeline. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type Publisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// Nop returns a publisher that drops everything.
func Nop() Publisher { return noopPublisher{} }

// multiPublisher fans out to several publishers in order.
type multiPublisher []Publisher

func (m multiPublisher) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}

// Multi combines publishers; nil entries are skipped.
func Multi(pubs ...Publisher) Publisher {
	var out multiPublisher
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return noopPublisher{}
	}
	return out
}

// logPublisher writes events to a zerolog logger at debug level. Lifecycle
// milestones are also logged directly by the components, so this is mainly a
// firehose for troubleshooting.
type logPublisher struct {
	log zerolog.Logger
}

func (p logPublisher) Publish(e Event) {
	ev := p.log.Debug().Str("event", e.Name)
	if e.RunID != "" {
		ev = ev.Str("run_id", e.RunID)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("pipeline event")
}

// Logger returns a publisher that mirrors events into lg.
func Logger(lg zerolog.Logger) Publisher { return logPublisher{log: lg} }
