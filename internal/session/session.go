// Package session runs one generation at a time: load the model through the
// cache, stream tokens from the generator, batch them through the throttle
// window, and publish accumulated output to the sink. It owns the lifecycle
// state machine (idle -> running -> completed/failed/cancelled) and the
// cooperative cancellation flag.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/johnmai-dev/CuteMLX/internal/events"
	"github.com/johnmai-dev/CuteMLX/internal/generate"
	"github.com/johnmai-dev/CuteMLX/internal/modelcache"
	"github.com/johnmai-dev/CuteMLX/pkg/throttle"
	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

const (
	defaultMaxTokens        = 1024
	defaultTemperature      = 0.7
	defaultThrottleInterval = 250 * time.Millisecond
)

// Config wires the session. Zero values fall back to the defaults above; a
// nil Publisher drops events.
type Config struct {
	MaxTokens        int
	Temperature      float64
	ThrottleInterval time.Duration
	SystemPrompt     string
	Model            types.Model
	Logger           zerolog.Logger
	Publisher        events.Publisher
}

// run is the per-invocation state: its own accumulator, cancellation flag and
// seed, so nothing bleeds between runs.
type run struct {
	id        string
	seed      int64
	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}
	out       strings.Builder
	stats     *types.Stats
	began     time.Time
}

// Session is the single-flight generation pipeline. All methods are safe for
// concurrent use.
type Session struct {
	cfg   Config
	cache *modelcache.Cache
	gen   generate.Generator
	sink  Sink
	log   zerolog.Logger
	pub   events.Publisher

	seedCounter atomic.Int64
	running     atomic.Bool

	mu        sync.Mutex
	state     types.SessionState
	lastErr   string
	lastStats *types.Stats
	cur       *run
	createdAt time.Time
}

func New(cache *modelcache.Cache, gen generate.Generator, sink Sink, cfg Config) *Session {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.ThrottleInterval <= 0 {
		cfg.ThrottleInterval = defaultThrottleInterval
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = events.Nop()
	}
	if sink == nil {
		sink = nopSink{}
	}
	return &Session{
		cfg:       cfg,
		cache:     cache,
		gen:       gen,
		sink:      sink,
		log:       cfg.Logger,
		pub:       pub,
		state:     types.StateIdle,
		createdAt: time.Now(),
	}
}

// Running reports the externally observable running indicator. It flips true
// when a Start is accepted and false the moment the run ends or a cancel is
// requested, which can be before State leaves running.
func (s *Session) Running() bool { return s.running.Load() }

// State returns the lifecycle state. Terminal states persist until the next
// accepted Start.
func (s *Session) State() types.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done returns a channel closed when the current run reaches a terminal
// state. Without an active run it returns an already-closed channel.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		return s.cur.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Start begins a new run. It is valid from idle or any terminal state and
// rejected with a busy error while a run is active; the active run is not
// affected by the rejection. On acceptance the prior output is cleared, a
// fresh seed is derived (unless the request pins one) and the pipeline runs
// asynchronously until a terminal state.
func (s *Session) Start(req types.GenerateRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return emptyPromptError{}
	}

	s.mu.Lock()
	if s.state == types.StateRunning {
		s.mu.Unlock()
		s.log.Debug().Msg("start rejected, run in progress")
		return busyError{}
	}
	r := &run{
		id:    uuid.NewString(),
		done:  make(chan struct{}),
		began: time.Now(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.seed = req.Seed
	if r.seed == 0 {
		r.seed = s.nextSeed()
	}
	s.cur = r
	s.state = types.StateRunning
	s.lastErr = ""
	s.lastStats = nil
	s.running.Store(true)
	s.mu.Unlock()

	s.sink.Update("", "")
	s.sink.Running(true)
	s.pub.Publish(events.Event{Name: "run_start", RunID: r.id, Fields: map[string]any{
		"prompt_chars": len(req.Prompt),
		"max_tokens":   s.maxTokens(req),
		"thinking":     req.Thinking,
		"seed":         r.seed,
	}})
	s.log.Info().Str("run_id", r.id).Int64("seed", r.seed).Bool("thinking", req.Thinking).Msg("run started")

	go s.pipeline(ctx, r, req)
	return nil
}

// Cancel requests cooperative cancellation of the active run. It is a no-op
// when nothing is running. The running indicator flips false before Cancel
// returns; generator teardown, the aggregator's final flush and the
// transition to the cancelled state may trail briefly.
func (s *Session) Cancel() {
	s.mu.Lock()
	r := s.cur
	if s.state != types.StateRunning || r == nil || r.cancelled.Swap(true) {
		s.mu.Unlock()
		return
	}
	// The store stays inside the critical section; lock order keeps it ahead
	// of the store of any later accepted Start.
	s.running.Store(false)
	s.mu.Unlock()

	r.cancel()
	s.sink.Running(false)
	s.pub.Publish(events.Event{Name: "cancel_requested", RunID: r.id, Fields: map[string]any{}})
	s.log.Info().Str("run_id", r.id).Msg("cancel requested")
}

// nextSeed derives a seed unique to this invocation within the process.
func (s *Session) nextSeed() int64 {
	return time.Now().UnixNano() + s.seedCounter.Add(1)
}

func (s *Session) maxTokens(req types.GenerateRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return s.cfg.MaxTokens
}

func (s *Session) temperature(req types.GenerateRequest) float64 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return s.cfg.Temperature
}

func (s *Session) pipeline(ctx context.Context, r *run, req types.GenerateRequest) {
	defer close(r.done)
	defer r.cancel()

	res, err := s.cache.Load(ctx)
	if err != nil {
		if r.cancelled.Load() {
			s.finish(r, types.StateCancelled, "")
			return
		}
		s.fail(r, "model load failed: "+err.Error())
		return
	}

	params := generate.Params{
		Prompt:        generate.BuildPrompt(s.cfg.SystemPrompt, req.Prompt, req.Thinking),
		MaxTokens:     s.maxTokens(req),
		Temperature:   s.temperature(req),
		TopP:          req.TopP,
		TopK:          req.TopK,
		RepeatPenalty: req.RepeatPenalty,
		Stop:          req.Stop,
		Seed:          r.seed,
	}
	chunks, errs, err := s.gen.Generate(ctx, res, params)
	if err != nil {
		if r.cancelled.Load() {
			s.finish(r, types.StateCancelled, "")
			return
		}
		s.fail(r, "generation failed: "+err.Error())
		return
	}

	batches := throttle.Stream(ctx, chunks, s.cfg.ThrottleInterval, types.Batch.Append)
	for b := range batches {
		r.out.WriteString(b.Text)
		if b.Stats != nil {
			r.stats = b.Stats
		}
		statsLine := ""
		if r.stats != nil {
			statsLine = r.stats.String()
		}
		s.sink.Update(r.out.String(), statsLine)
		s.pub.Publish(events.Event{Name: "run_batch", RunID: r.id, Fields: map[string]any{
			"chunks": b.Chunks,
			"chars":  len(b.Text),
		}})
	}
	genErr := <-errs

	switch {
	case r.cancelled.Load():
		s.finish(r, types.StateCancelled, "")
	case genErr != nil:
		s.fail(r, "generation failed: "+genErr.Error())
	default:
		s.finish(r, types.StateCompleted, "")
	}
}

// fail replaces the published output with the error text, then lands in the
// failed state.
func (s *Session) fail(r *run, msg string) {
	s.sink.Update(msg, "")
	s.finish(r, types.StateFailed, msg)
}

func (s *Session) finish(r *run, st types.SessionState, msg string) {
	dur := time.Since(r.began)
	s.mu.Lock()
	s.state = st
	s.lastErr = msg
	s.lastStats = r.stats
	s.cur = nil
	s.running.Store(false)
	s.mu.Unlock()
	s.sink.Running(false)

	durMS := int(dur / time.Millisecond)
	switch st {
	case types.StateCompleted:
		fields := map[string]any{"dur_ms": durMS, "chars": r.out.Len()}
		if r.stats != nil {
			fields["tokens"] = r.stats.TokensGenerated
			fields["tok_per_s"] = r.stats.TokensPerSecond
		}
		s.pub.Publish(events.Event{Name: "run_complete", RunID: r.id, Fields: fields})
		s.log.Info().Str("run_id", r.id).Dur("dur", dur).Int("chars", r.out.Len()).Msg("run completed")
	case types.StateFailed:
		s.pub.Publish(events.Event{Name: "run_error", RunID: r.id, Fields: map[string]any{
			"error":  msg,
			"dur_ms": durMS,
		}})
		s.log.Error().Str("run_id", r.id).Dur("dur", dur).Str("error", msg).Msg("run failed")
	case types.StateCancelled:
		s.pub.Publish(events.Event{Name: "run_cancelled", RunID: r.id, Fields: map[string]any{
			"dur_ms": durMS,
		}})
		s.log.Info().Str("run_id", r.id).Dur("dur", dur).Msg("run cancelled")
	}
}
