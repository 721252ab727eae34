// Package runtime hosts the in-process llama.cpp backend. The real
// implementation is compiled behind the 'llama' build tag; default builds get
// a stub that fails fast, keeping CI CGO-free.
package runtime

import "github.com/rs/zerolog"

const defaultContextSize = 4096

// Options configures the backend. Both build variants share it.
type Options struct {
	// ModelPath points at a local .gguf weights file.
	ModelPath string
	// ContextSize is the prompt context window in tokens. 0 means 4096.
	ContextSize int
	// Threads is the CPU thread count for inference. 0 picks the host count.
	Threads int
	Logger  zerolog.Logger
}

// Available reports whether this binary carries the real llama runtime.
func Available() bool { return builtWithLlama }
