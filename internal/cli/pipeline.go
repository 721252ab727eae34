package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/johnmai-dev/CuteMLX/internal/events"
	"github.com/johnmai-dev/CuteMLX/internal/httpapi"
	"github.com/johnmai-dev/CuteMLX/internal/metrics"
	"github.com/johnmai-dev/CuteMLX/internal/modelcache"
	"github.com/johnmai-dev/CuteMLX/internal/registry"
	"github.com/johnmai-dev/CuteMLX/internal/runtime"
	"github.com/johnmai-dev/CuteMLX/internal/session"
	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

// pipeline bundles everything a generation command needs: the resolved
// model, the resource cache, the session and the console sink.
type pipeline struct {
	model   types.Model
	models  []types.Model
	cache   *modelcache.Cache
	sess    *session.Session
	console *consoleSink
}

// buildPipeline wires the whole stack from the resolved configuration and,
// when enabled, starts the debug listener in the background.
func buildPipeline(ctx context.Context) (*pipeline, error) {
	models, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("scan models dir: %w", err)
	}
	model, err := registry.Resolve(models, cfg.Model)
	if err != nil {
		return nil, err
	}

	if !runtime.Available() {
		fmt.Fprintln(os.Stderr, styles.Notice.Render(
			"note: built without the llama runtime; generation will fail (rebuild with -tags llama)"))
	}

	rt := runtime.New(runtime.Options{
		ModelPath:   model.Path,
		ContextSize: cfg.ContextSize,
		Threads:     cfg.Threads,
		Logger:      lg,
	})
	pub := events.Multi(events.Logger(lg), metrics.Publisher{})
	cache := modelcache.New(rt, modelcache.Config{Logger: lg, Publisher: pub})
	console := newConsoleSink(os.Stdout, styles)
	sess := session.New(cache, rt, console, session.Config{
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		ThrottleInterval: cfg.ThrottleInterval.Std(),
		SystemPrompt:     cfg.SystemPrompt,
		Model:            model,
		Logger:           lg,
		Publisher:        pub,
	})

	p := &pipeline{
		model:   model,
		models:  models,
		cache:   cache,
		sess:    sess,
		console: console,
	}

	if cfg.DebugAddr != "" {
		mux := httpapi.NewMux(debugService{p: p}, lg)
		go func() {
			if err := httpapi.Serve(ctx, cfg.DebugAddr, mux, lg); err != nil {
				lg.Error().Err(err).Msg("debug listener failed")
			}
		}()
	}
	return p, nil
}

func (p *pipeline) close() {
	if err := p.cache.Close(); err != nil {
		lg.Warn().Err(err).Msg("releasing model resource")
	}
}
