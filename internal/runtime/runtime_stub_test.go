//go:build !llama

package runtime

import (
	"context"
	"testing"

	"github.com/johnmai-dev/CuteMLX/internal/generate"
)

func TestStubRefusesToLoad(t *testing.T) {
	r := New(Options{ModelPath: "/nonexistent/model.gguf"})
	res, err := r.Load(context.Background(), func(float64) {})
	if res != nil {
		t.Fatalf("stub returned a resource: %v", res)
	}
	if !IsUnavailable(err) {
		t.Fatalf("err=%v, want unavailable", err)
	}
}

func TestStubRefusesToGenerate(t *testing.T) {
	r := New(Options{})
	chunks, errs, err := r.Generate(context.Background(), nil, generate.Params{Prompt: "hi"})
	if chunks != nil || errs != nil {
		t.Fatalf("stub returned channels")
	}
	if !IsUnavailable(err) {
		t.Fatalf("err=%v, want unavailable", err)
	}
}

func TestAvailableFalseWithoutTag(t *testing.T) {
	if Available() {
		t.Fatalf("Available must be false in the default build")
	}
}

func TestIsUnavailableRejectsOtherErrors(t *testing.T) {
	if IsUnavailable(nil) {
		t.Fatalf("nil classified as unavailable")
	}
	if IsUnavailable(context.Canceled) {
		t.Fatalf("context.Canceled classified as unavailable")
	}
}
