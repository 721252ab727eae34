// Package metrics exposes Prometheus instruments for the generation pipeline
// and bridges lifecycle events onto them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/johnmai-dev/CuteMLX/internal/events"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cutemlx",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total generation runs by outcome",
		},
		[]string{"outcome"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cutemlx",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of generation runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	batchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cutemlx",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Throttled output batches published to the sink",
		},
	)

	chunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cutemlx",
			Subsystem: "pipeline",
			Name:      "chunks_total",
			Help:      "Raw generator chunks folded into batches",
		},
	)

	tokensPerSecond = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cutemlx",
			Subsystem: "pipeline",
			Name:      "tokens_per_second",
			Help:      "Most recent tokens-per-second reading",
		},
	)

	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cutemlx",
			Subsystem: "model",
			Name:      "loads_total",
			Help:      "Model load attempts by result",
		},
		[]string{"result"},
	)

	modelLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cutemlx",
			Subsystem: "model",
			Name:      "load_duration_seconds",
			Help:      "Duration of model loads in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	modelLoadProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cutemlx",
			Subsystem: "model",
			Name:      "load_progress",
			Help:      "Model load progress from 0 to 1",
		},
	)
)

func init() {
	prometheus.MustRegister(
		runsTotal,
		runDuration,
		batchesTotal,
		chunksTotal,
		tokensPerSecond,
		modelLoadsTotal,
		modelLoadDuration,
		modelLoadProgress,
	)
}

// Publisher maps pipeline lifecycle events onto the instruments. Plug it into
// the session alongside other publishers through events.Multi.
type Publisher struct{}

func (Publisher) Publish(e events.Event) {
	switch e.Name {
	case "run_complete":
		runsTotal.WithLabelValues("completed").Inc()
		runDuration.Observe(durSeconds(e))
		if v, ok := floatField(e, "tok_per_s"); ok {
			tokensPerSecond.Set(v)
		}
	case "run_error":
		runsTotal.WithLabelValues("failed").Inc()
		runDuration.Observe(durSeconds(e))
	case "run_cancelled":
		runsTotal.WithLabelValues("cancelled").Inc()
		runDuration.Observe(durSeconds(e))
	case "run_batch":
		batchesTotal.Inc()
		if v, ok := intField(e, "chunks"); ok {
			chunksTotal.Add(float64(v))
		}
	case "load_ready":
		modelLoadsTotal.WithLabelValues("ok").Inc()
		modelLoadDuration.Observe(durSeconds(e))
		modelLoadProgress.Set(1)
	case "load_error":
		modelLoadsTotal.WithLabelValues("error").Inc()
		modelLoadDuration.Observe(durSeconds(e))
		modelLoadProgress.Set(0)
	case "load_progress":
		if v, ok := floatField(e, "progress"); ok {
			modelLoadProgress.Set(v)
		}
	}
}

func durSeconds(e events.Event) float64 {
	if v, ok := intField(e, "dur_ms"); ok {
		return float64(v) / 1000
	}
	return 0
}

func intField(e events.Event, key string) (int64, bool) {
	switch v := e.Fields[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func floatField(e events.Event, key string) (float64, bool) {
	switch v := e.Fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
