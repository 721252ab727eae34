package generate

import (
	"strings"
	"testing"
)

func TestBuildPromptDefaultsSystemInstruction(t *testing.T) {
	p := BuildPrompt("", "hello", false)
	if !strings.HasPrefix(p, DefaultSystemPrompt) {
		t.Fatalf("prompt missing default system instruction: %q", p)
	}
	if !strings.Contains(p, "hello") {
		t.Fatalf("prompt missing user text: %q", p)
	}
}

func TestBuildPromptCustomSystemInstruction(t *testing.T) {
	p := BuildPrompt("You are a pirate.", "ahoy", true)
	if !strings.HasPrefix(p, "You are a pirate.") {
		t.Fatalf("custom system instruction not used: %q", p)
	}
	if strings.Contains(p, DefaultSystemPrompt) {
		t.Fatalf("default instruction leaked into %q", p)
	}
}

func TestBuildPromptThinkingSwitch(t *testing.T) {
	on := BuildPrompt("", "question", true)
	if !strings.Contains(on, "/think") || strings.Contains(on, "/no_think") {
		t.Fatalf("thinking on: %q", on)
	}
	off := BuildPrompt("", "question", false)
	if !strings.Contains(off, "/no_think") {
		t.Fatalf("thinking off: %q", off)
	}
}

func TestBuildPromptTrimsTrailingSpaceBeforeSwitch(t *testing.T) {
	p := BuildPrompt("", "question  \t", false)
	if strings.Contains(p, "  /no_think") {
		t.Fatalf("double space before switch: %q", p)
	}
}
