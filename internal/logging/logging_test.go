package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Leveler{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEnsureRunIDIsStable(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatalf("EnsureRunID returned empty ID")
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id {
		t.Fatalf("EnsureRunID minted a new ID %q for a context that already had %q", id2, id)
	}
	if RunIDFromContext(ctx2) != id {
		t.Fatalf("RunIDFromContext = %q, want %q", RunIDFromContext(ctx2), id)
	}
}

func TestWithRunLoggerNilBase(t *testing.T) {
	ctx, log := WithRunLogger(context.Background(), nil)
	if log == nil {
		t.Fatalf("WithRunLogger returned nil logger")
	}
	if RunIDFromContext(ctx) == "" {
		t.Fatalf("WithRunLogger did not attach a run ID")
	}
	// Noop loggers must be safe to call.
	log.Info(ctx, "noop", String("k", "v"))
}
