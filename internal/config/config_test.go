package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB != "" {
		t.Fatalf("expected empty db, got %q", cfg.DB)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.Workers != 4 {
		t.Fatalf("expected default workers 4, got %d", cfg.Workers)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TACTICA_DB", "/tmp/evals.db")
	t.Setenv("TACTICA_LOG_LEVEL", "debug")
	t.Setenv("TACTICA_WORKERS", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB != "/tmp/evals.db" || cfg.LogLevel != "debug" || cfg.Workers != 9 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"workers not an int", "TACTICA_WORKERS", "many", "parse env:"},
		{"workers zero", "TACTICA_WORKERS", "0", "at least 1"},
		{"bad level", "TACTICA_LOG_LEVEL", "loud", "invalid log level"},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (go1.22 loopvar semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":  slog.LevelDebug,
		"INFO":   slog.LevelInfo,
		" warn ": slog.LevelWarn,
		"error":  slog.LevelError,
	} {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %v, got %v", in, want, got)
		}
	}
}
