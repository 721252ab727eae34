//go:build llama

package runtime

import (
	"context"
	"errors"
	stdruntime "runtime"
	"strings"
	"time"

	llama "github.com/go-skynet/go-llama.cpp"

	"github.com/johnmai-dev/CuteMLX/internal/generate"
	"github.com/johnmai-dev/CuteMLX/internal/modelcache"
	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

const builtWithLlama = true

// Runtime drives llama.cpp in process. It satisfies both modelcache.Loader
// and generate.Generator so one value plugs into the whole pipeline.
//
// llama.LLama is not safe for concurrent predicts; the session's single-run
// guard serializes Generate calls.
type Runtime struct {
	opts Options
}

func New(opts Options) *Runtime {
	return &Runtime{opts: opts}
}

// resource owns the loaded weights until the cache releases them.
type resource struct {
	model *llama.LLama
}

func (r *resource) Close() error {
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}

// Load reads the weights from disk. The binding loads synchronously and
// exposes no incremental hook, so progress jumps from 0 to 1.
func (r *Runtime) Load(_ context.Context, onProgress func(float64)) (modelcache.Resource, error) {
	if strings.TrimSpace(r.opts.ModelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	ctxSize := zn(r.opts.ContextSize, defaultContextSize)
	r.opts.Logger.Info().
		Str("model_path", r.opts.ModelPath).
		Int("context_size", ctxSize).
		Msg("loading model weights")

	onProgress(0)
	began := time.Now()
	m, err := llama.New(r.opts.ModelPath, llama.SetContext(ctxSize))
	if err != nil {
		return nil, err
	}
	onProgress(1)
	r.opts.Logger.Info().
		Dur("took", time.Since(began)).
		Msg("model weights loaded")
	return &resource{model: m}, nil
}

// Generate bridges the binding's token callback onto the chunk channel.
func (r *Runtime) Generate(ctx context.Context, res modelcache.Resource, p generate.Params) (<-chan types.Chunk, <-chan error, error) {
	lr, ok := res.(*resource)
	if !ok || lr.model == nil {
		return nil, nil, errors.New("resource is not a loaded llama model")
	}
	chunks := make(chan types.Chunk, 256)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(chunks)
		began := time.Now()
		tokens := 0
		lr.model.SetTokenCallback(func(tok string) bool {
			if ctx.Err() != nil {
				return false
			}
			tokens++
			st := &types.Stats{TokensGenerated: tokens, Duration: time.Since(began)}
			if secs := st.Duration.Seconds(); secs > 0 {
				st.TokensPerSecond = float64(tokens) / secs
			}
			select {
			case chunks <- types.Chunk{Text: tok, Stats: st}:
				return true
			case <-ctx.Done():
				return false
			}
		})
		defer lr.model.SetTokenCallback(nil)
		if _, err := lr.model.Predict(p.Prompt, r.predictOptions(p)...); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()
	return chunks, errs, nil
}

func (r *Runtime) predictOptions(p generate.Params) []llama.PredictOption {
	threads := r.opts.Threads
	if threads <= 0 {
		threads = stdruntime.NumCPU()
	}
	po := []llama.PredictOption{
		llama.SetTokens(max(1, p.MaxTokens)),
		llama.SetThreads(threads),
		llama.SetTopP(zf(float32(p.TopP), llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(p.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(float32(p.Temperature), llama.DefaultOptions.Temperature)),
		llama.SetPenalty(zf(float32(p.RepeatPenalty), llama.DefaultOptions.Penalty)),
	}
	if p.Seed != 0 {
		po = append(po, llama.SetSeed(int(p.Seed)))
	}
	if len(p.Stop) > 0 {
		po = append(po, llama.SetStopWords(p.Stop...))
	}
	return po
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}
