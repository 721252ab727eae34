// Package generate defines the token generator contract the session drives.
// Concrete runtimes (llama.cpp in-process, the no-CGO stub) live in
// internal/runtime.
package generate

import (
	"context"

	"github.com/johnmai-dev/CuteMLX/internal/modelcache"
	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

// Params captures the sampling parameters for one run. Prompt is the fully
// built prompt text; the generator treats it as opaque.
type Params struct {
	Prompt        string
	MaxTokens     int
	Temperature   float64
	TopP          float64
	TopK          int
	RepeatPenalty float64
	Stop          []string
	Seed          int64
}

// Generator produces a bounded stream of chunks for one prompt.
//
// The chunk channel carries tokens in generation order and is closed when the
// run ends for any reason. The error channel (buffered, capacity 1) delivers
// at most one mid-stream error and is closed after the chunk channel. A nil
// error return with both channels is the normal path; a non-nil error means
// the run could not start at all.
//
// Implementations must stop producing within one chunk of ctx being
// cancelled, and must never block forever on a send (select on ctx while
// sending).
type Generator interface {
	Generate(ctx context.Context, res modelcache.Resource, p Params) (<-chan types.Chunk, <-chan error, error)
}
