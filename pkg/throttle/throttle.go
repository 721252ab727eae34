// Package throttle coalesces a fast stream of items into periodic batches so
// slow consumers (UI updates, log lines) see a bounded event rate instead of
// one event per item.
package throttle

import (
	"context"
	"time"
)

// Stream reads items from in, folds them into the current batch in arrival
// order, and emits at most one batch per interval. Ticks with an empty batch
// emit nothing. Items are folded the moment they arrive, so the producer is
// never blocked by a slow consumer: while a finished window waits to be
// delivered it simply keeps growing.
//
// The output channel closes after a final flush of whatever is buffered when
// in closes or ctx is cancelled. The stream is one-shot and finite; callers
// must drain the returned channel.
func Stream[T, B any](ctx context.Context, in <-chan T, interval time.Duration, fold func(B, T) B) <-chan B {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	out := make(chan B, 1)
	go func() {
		defer close(out)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		var (
			cur  B
			zero B
			n    int
			due  bool
		)
		for {
			// The send case is armed only once a tick has elapsed with
			// something buffered; a nil channel never sends.
			var sendCh chan B
			if due {
				sendCh = out
			}
			select {
			case v, ok := <-in:
				if !ok {
					if n > 0 {
						out <- cur
					}
					return
				}
				cur = fold(cur, v)
				n++
			case <-tick.C:
				if n > 0 {
					due = true
				}
			case sendCh <- cur:
				cur = zero
				n = 0
				due = false
			case <-ctx.Done():
				if n > 0 {
					out <- cur
				}
				return
			}
		}
	}()
	return out
}
