package update

import (
	"testing"
	"time"
)

func TestRuntimeConfigNormalized(t *testing.T) {
	cfg := RuntimeConfig{BlockUUID: "  abc ", Query: " type::Person ", RefreshDelay: -1}.normalized()
	if cfg.BlockUUID != "abc" || cfg.Query != "type::Person" {
		t.Fatalf("expected trimmed values, got %+v", cfg)
	}
	if cfg.RefreshDelay != 500*time.Millisecond {
		t.Fatalf("expected default refresh delay, got %v", cfg.RefreshDelay)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.SchedulerBuffer != 64 || cfg.CellWidth != 24 {
		t.Fatalf("expected defaults filled, got %+v", cfg)
	}
}

func TestRuntimeConfigKeepsOverrides(t *testing.T) {
	cfg := RuntimeConfig{RefreshDelay: time.Second, CellWidth: 10}.normalized()
	if cfg.RefreshDelay != time.Second || cfg.CellWidth != 10 {
		t.Fatalf("overrides lost: %+v", cfg)
	}
}
