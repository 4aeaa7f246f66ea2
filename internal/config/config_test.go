package config

import (
	"os"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	opts, err := Load(Options{LogLevel: "info", MetricsAddr: ":9090"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", opts.LogLevel, "info")
	}
	if opts.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want %q", opts.MetricsAddr, ":9090")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ROUTER_LOG_LEVEL", "debug")
	os.Unsetenv("ROUTER_GROUP_TTL")

	opts, err := Load(Options{LogLevel: "info"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q (env override)", opts.LogLevel, "debug")
	}
}
