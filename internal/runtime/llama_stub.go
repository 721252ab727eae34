//go:build !llama

package runtime

// No-CGO stub compiled when the 'llama' build tag is NOT set. It satisfies
// the same contracts but refuses to run inference, so default builds and CI
// stay CGO-free without mocking model behavior.

import (
	"context"

	"github.com/johnmai-dev/CuteMLX/internal/generate"
	"github.com/johnmai-dev/CuteMLX/internal/modelcache"
	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

const builtWithLlama = false

type Runtime struct {
	opts Options
}

func New(opts Options) *Runtime {
	return &Runtime{opts: opts}
}

func (r *Runtime) Load(_ context.Context, _ func(float64)) (modelcache.Resource, error) {
	return nil, unavailableError{}
}

func (r *Runtime) Generate(_ context.Context, _ modelcache.Resource, _ generate.Params) (<-chan types.Chunk, <-chan error, error) {
	return nil, nil, unavailableError{}
}
