package types

import (
	"fmt"
	"time"
)

// SessionState identifies where the generation session is in its lifecycle.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateRunning   SessionState = "running"
	StateCompleted SessionState = "completed"
	StateFailed    SessionState = "failed"
	StateCancelled SessionState = "cancelled"
)

// Terminal reports whether the state is a finished run outcome. A session in a
// terminal state behaves like an idle one: a new run may be started from it.
func (s SessionState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Stats is a point-in-time throughput snapshot taken during generation.
type Stats struct {
	TokensGenerated int
	Duration        time.Duration
	TokensPerSecond float64
}

// String renders the stats the way the UI shows them, e.g. "12.3 tok/s".
func (s Stats) String() string {
	return fmt.Sprintf("%.1f tok/s", s.TokensPerSecond)
}

// Chunk is one streamed fragment from the token generator. Text may be empty
// for stats-only chunks; Stats is nil when the generator had nothing new to
// report.
type Chunk struct {
	Text  string
	Stats *Stats
}

// Batch is the aggregator's unit of delivery: every chunk folded into the
// current window. Text keeps arrival order, Stats is the most recent value
// observed in the window, Chunks counts how many were folded in.
type Batch struct {
	Text   string
	Stats  *Stats
	Chunks int
}

// Append folds one chunk into the batch and returns the result. The value
// receiver makes Batch.Append usable directly as a fold function.
func (b Batch) Append(c Chunk) Batch {
	b.Text += c.Text
	if c.Stats != nil {
		b.Stats = c.Stats
	}
	b.Chunks++
	return b
}

// Model describes a single GGUF model discovered on disk.
type Model struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	SizeMB int    `json:"size_mb,omitempty"`
}

// GenerateRequest carries the caller-tunable knobs for one generation run.
type GenerateRequest struct {
	// Required prompt text.
	// example: Why is the sky blue?
	Prompt string `json:"prompt" example:"Why is the sky blue?"`
	// Maximum number of new tokens to generate. 0 uses the configured default.
	// example: 1024
	MaxTokens int `json:"max_tokens,omitempty" example:"1024"`
	// Sampling temperature (higher = more random). 0 uses the configured default.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling: limit candidates to top K tokens.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// Repeat penalty applied during sampling.
	// example: 1.1
	RepeatPenalty float64 `json:"repeat_penalty,omitempty" example:"1.1"`
	// Optional stop sequences. Generation stops when any sequence is matched.
	Stop []string `json:"stop,omitempty"`
	// Enable the model's internal reasoning trace for this run.
	// example: false
	Thinking bool `json:"thinking,omitempty" example:"false"`
	// Random seed; 0 or omitted derives a fresh seed unique to this run.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
}
