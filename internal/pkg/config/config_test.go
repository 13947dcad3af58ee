package config_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/formhunt/internal/pkg/config"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore wd: %v", err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("formhunt-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Engine.TimeoutDuration() != 90*time.Second {
		t.Errorf("expected 90s engine timeout, got %s", cfg.Engine.TimeoutDuration())
	}
	if n := len(cfg.Engine.Candidates); n == 0 || cfg.Engine.Candidates[n-1] != "wolframscript" {
		t.Errorf("expected bare wolframscript as last candidate, got %v", cfg.Engine.Candidates)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("expected nats disabled by default, got %q", cfg.NATS.URL)
	}
	if cfg.Telemetry.ServiceName != "formhunt-test" {
		t.Errorf("unexpected service name %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FORMHUNT_ENGINE_TIMEOUT", "60")
	t.Setenv("FORMHUNT_SERVER_PORT", "8088")

	cfg, err := config.Load("formhunt-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Timeout != 60 {
		t.Errorf("expected engine timeout 60, got %d", cfg.Engine.Timeout)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("expected port 8088, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		Server: config.ServerConfig{Port: 5000, ReadTimeout: 10, WriteTimeout: 120},
		Engine: config.EngineConfig{Candidates: []string{"wolframscript"}, Timeout: 90},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	bad := valid
	bad.Server.Port = 0
	bad.Engine.Timeout = 200
	bad.Engine.Candidates = nil
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "engine.timeout", "engine.candidates"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error: %v", want, err)
		}
	}
}
