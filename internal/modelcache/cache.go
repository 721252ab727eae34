// Package modelcache owns the lazily loaded model resource. The load is
// expensive, so it happens at most once: concurrent callers share one flight
// and a successful result is kept for the life of the process.
package modelcache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/johnmai-dev/CuteMLX/internal/events"
)

// Resource is an opaque handle to a loaded model.
type Resource interface {
	Close() error
}

// Loader performs the actual model load. onProgress is advisory: loaders may
// call it with coarse or fine-grained values in [0,1], or not at all.
type Loader interface {
	Load(ctx context.Context, onProgress func(float64)) (Resource, error)
}

// Phase is the load state of the cached resource.
type Phase string

const (
	PhaseNotLoaded Phase = "not_loaded"
	PhaseLoading   Phase = "loading"
	PhaseReady     Phase = "ready"
)

// Status is a read-only projection of the cache state. Progress is meaningful
// while Phase is loading, 1 once ready.
type Status struct {
	Phase    Phase
	Progress float64
}

// flight is one in-progress load. Waiters block on done and then read the
// outcome; res and err are written exactly once before done is closed.
type flight struct {
	done chan struct{}
	res  Resource
	err  error
}

// Config wires the cache's collaborators. A nil Publisher drops events.
type Config struct {
	Logger    zerolog.Logger
	Publisher events.Publisher
}

// Cache memoizes one resource load with single-flight semantics. The first
// Load starts the flight; later callers either hit the cached result or wait
// for the flight in progress and receive its exact outcome. A failed flight
// resets the cache so the next Load retries. A successful load is never
// discarded short of Close.
type Cache struct {
	loader Loader
	log    zerolog.Logger
	pub    events.Publisher

	mu        sync.RWMutex
	phase     Phase
	progress  float64
	res       Resource
	fl        *flight
	observers []func(float64)
}

func New(loader Loader, cfg Config) *Cache {
	pub := cfg.Publisher
	if pub == nil {
		pub = events.Nop()
	}
	return &Cache{
		loader: loader,
		log:    cfg.Logger,
		pub:    pub,
		phase:  PhaseNotLoaded,
	}
}

// Status reports the current phase and progress.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{Phase: c.phase, Progress: c.progress}
}

// OnProgress registers an observer for load progress updates. Observers are
// invoked inline from the loading goroutine with clamped values; register
// before the first Load.
func (c *Cache) OnProgress(fn func(float64)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Load returns the cached resource, joining or starting a load as needed.
// ctx only bounds this caller's wait: a cancelled waiter gets ctx.Err() while
// the flight itself keeps running for everyone else.
func (c *Cache) Load(ctx context.Context) (Resource, error) {
	c.mu.RLock()
	if c.phase == PhaseReady {
		res := c.res
		c.mu.RUnlock()
		return res, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	switch c.phase {
	case PhaseReady:
		res := c.res
		c.mu.Unlock()
		return res, nil
	case PhaseLoading:
		fl := c.fl
		c.mu.Unlock()
		return await(ctx, fl)
	default:
		fl := &flight{done: make(chan struct{})}
		c.fl = fl
		c.phase = PhaseLoading
		c.progress = 0
		c.mu.Unlock()
		go c.run(fl)
		return await(ctx, fl)
	}
}

func await(ctx context.Context, fl *flight) (Resource, error) {
	select {
	case <-fl.done:
		return fl.res, fl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes one flight. It is detached from the callers on purpose: the
// resource is process-wide, so the load should not die with whichever caller
// happened to trigger it.
func (c *Cache) run(fl *flight) {
	start := time.Now()
	c.log.Info().Msg("model load started")
	c.pub.Publish(events.Event{Name: "load_start", Fields: map[string]any{}})

	res, err := c.loader.Load(context.Background(), c.reportProgress)
	if err != nil {
		c.mu.Lock()
		c.phase = PhaseNotLoaded
		c.progress = 0
		c.fl = nil
		c.mu.Unlock()
		fl.err = err
		close(fl.done)
		c.log.Error().Err(err).Dur("dur", time.Since(start)).Msg("model load failed")
		c.pub.Publish(events.Event{Name: "load_error", Fields: map[string]any{
			"error":  err.Error(),
			"dur_ms": int(time.Since(start) / time.Millisecond),
		}})
		return
	}

	c.mu.Lock()
	c.res = res
	c.phase = PhaseReady
	c.progress = 1
	c.fl = nil
	c.mu.Unlock()
	fl.res = res
	close(fl.done)
	c.log.Info().Dur("dur", time.Since(start)).Msg("model load ready")
	c.pub.Publish(events.Event{Name: "load_ready", Fields: map[string]any{
		"dur_ms": int(time.Since(start) / time.Millisecond),
	}})
}

func (c *Cache) reportProgress(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	c.mu.Lock()
	if c.phase != PhaseLoading {
		c.mu.Unlock()
		return
	}
	c.progress = p
	obs := c.observers
	c.mu.Unlock()
	for _, fn := range obs {
		fn(p)
	}
	c.pub.Publish(events.Event{Name: "load_progress", Fields: map[string]any{"progress": p}})
}

// Close releases a loaded resource. Meant for process shutdown; an in-flight
// load is left to finish on its own.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.res == nil {
		return nil
	}
	err := c.res.Close()
	c.res = nil
	c.phase = PhaseNotLoaded
	c.progress = 0
	return err
}
