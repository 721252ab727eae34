package types

import (
	"testing"
	"time"
)

func TestBatchAppendKeepsOrderAndCounts(t *testing.T) {
	var b Batch
	for _, txt := range []string{"Hel", "lo", ", ", "world"} {
		b = b.Append(Chunk{Text: txt})
	}
	if b.Text != "Hello, world" {
		t.Fatalf("text=%q", b.Text)
	}
	if b.Chunks != 4 {
		t.Fatalf("chunks=%d", b.Chunks)
	}
	if b.Stats != nil {
		t.Fatalf("expected no stats, got %+v", b.Stats)
	}
}

func TestBatchAppendStatsLastWriteWins(t *testing.T) {
	var b Batch
	b = b.Append(Chunk{Text: "a", Stats: &Stats{TokensGenerated: 1, TokensPerSecond: 2.0}})
	b = b.Append(Chunk{Text: "b"})
	b = b.Append(Chunk{Text: "c", Stats: &Stats{TokensGenerated: 3, TokensPerSecond: 5.5}})
	if b.Stats == nil || b.Stats.TokensGenerated != 3 {
		t.Fatalf("stats=%+v", b.Stats)
	}
	if got := b.Stats.String(); got != "5.5 tok/s" {
		t.Fatalf("stats string=%q", got)
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{TokensGenerated: 10, Duration: time.Second, TokensPerSecond: 12.34}
	if got := s.String(); got != "12.3 tok/s" {
		t.Fatalf("got %q", got)
	}
}

func TestSessionStateTerminal(t *testing.T) {
	for _, st := range []SessionState{StateCompleted, StateFailed, StateCancelled} {
		if !st.Terminal() {
			t.Fatalf("%s should be terminal", st)
		}
	}
	for _, st := range []SessionState{StateIdle, StateRunning} {
		if st.Terminal() {
			t.Fatalf("%s should not be terminal", st)
		}
	}
}
