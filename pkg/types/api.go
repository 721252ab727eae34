package types

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of models discovered in the models directory.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not ready
	Error string `json:"error" example:"model not ready"`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}

// ModelStatus summarizes the cached model resource for /status.
type ModelStatus struct {
	// ID of the configured model.
	// example: qwen3-4b-q4_k_m.gguf
	ID string `json:"id,omitempty" example:"qwen3-4b-q4_k_m.gguf"`
	// Load phase of the resource cache (not_loaded, loading, ready).
	// example: ready
	Phase string `json:"phase" example:"ready"`
	// Load progress in [0,1]; meaningful while phase is loading.
	// example: 0.42
	Progress float64 `json:"progress,omitempty" example:"0.42"`
	// Model file size in MB.
	// example: 2600
	SizeMB int `json:"size_mb,omitempty" example:"2600"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Session lifecycle state (idle, running, completed, failed, cancelled).
	// example: idle
	State SessionState `json:"state" example:"idle"`
	// Whether a generation run is currently active. Flips false as soon as a
	// cancel is requested, possibly before State leaves running.
	// example: false
	Running bool `json:"running" example:"false"`
	// Identifier of the active run, empty when none.
	RunID string `json:"run_id,omitempty"`
	// Cached model resource state.
	Model ModelStatus `json:"model"`
	// Message of the last failed run, if any.
	LastError string `json:"last_error,omitempty"`
	// Throughput of the most recent run that reported stats.
	// example: 12.3
	TokensPerSecond float64 `json:"tokens_per_second,omitempty" example:"12.3"`
	// Uptime of the process in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
