package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/vango-dev/dnd/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Drag.PayloadFormat != "Text" {
		t.Errorf("Drag.PayloadFormat = %q, want %q", cfg.Drag.PayloadFormat, "Text")
	}
	if cfg.Drag.EffectAllowed != "move" {
		t.Errorf("Drag.EffectAllowed = %q, want %q", cfg.Drag.EffectAllowed, "move")
	}
	if cfg.Drag.DraggingClass != "dragging" || cfg.Drag.DraggingSourceClass != "dragging-source" {
		t.Errorf("classes = %q/%q", cfg.Drag.DraggingClass, cfg.Drag.DraggingSourceClass)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !stderrors.Is(err, errors.New("E121")) {
		t.Errorf("missing config error = %v, want E121", err)
	}

	configJSON := `{
  "server": {
    "host": "0.0.0.0",
    "port": 8080,
    "readTimeout": "5s"
  },
  "drag": {
    "effectAllowed": "copyMove",
    "draggingClass": "dndDragging",
    "draggingSourceClass": "dndDraggingSource"
  }
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.ReadTimeout() != 5*time.Second {
		t.Errorf("ReadTimeout() = %v, want 5s", cfg.ReadTimeout())
	}
	if cfg.WriteTimeout() != 10*time.Second {
		t.Errorf("WriteTimeout() = %v, want default 10s", cfg.WriteTimeout())
	}
	if cfg.Server.Path != DefaultPath {
		t.Errorf("Server.Path = %q, want default", cfg.Server.Path)
	}
	if cfg.Drag.EffectAllowed != "copyMove" {
		t.Errorf("Drag.EffectAllowed = %q", cfg.Drag.EffectAllowed)
	}
	if cfg.Drag.DraggingClass != "dndDragging" {
		t.Errorf("Drag.DraggingClass = %q", cfg.Drag.DraggingClass)
	}
	if cfg.Drag.PayloadFormat != DefaultPayloadFormat {
		t.Errorf("Drag.PayloadFormat = %q, want default", cfg.Drag.PayloadFormat)
	}
	if cfg.Path() == "" {
		t.Error("Path() should be set after Load")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if !stderrors.Is(err, errors.New("E120")) {
		t.Errorf("LoadFile error = %v, want E120", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := New()
	cfg.Server.Port = 9000
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", loaded.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"relative path", func(c *Config) { c.Server.Path = "dnd" }},
		{"bad read timeout", func(c *Config) { c.Server.ReadTimeout = "soon" }},
		{"bad write timeout", func(c *Config) { c.Server.WriteTimeout = "10" }},
		{"bad effect", func(c *Config) { c.Drag.EffectAllowed = "teleport" }},
		{"same classes", func(c *Config) { c.Drag.DraggingSourceClass = c.Drag.DraggingClass }},
		{"negative burst", func(c *Config) { c.Server.EventBurst = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !stderrors.Is(err, errors.New("E122")) {
				t.Errorf("Validate() = %v, want E122", err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := New()
	cfg.Server.Port = -1
	cfg.Server.Path = "dnd"
	cfg.Drag.EffectAllowed = "teleport"

	errs := multierr.Errors(cfg.Validate())
	if len(errs) != 3 {
		t.Fatalf("Validate() reported %d problems, want 3: %v", len(errs), errs)
	}
}

func TestNegativeEventRateDisablesLimit(t *testing.T) {
	cfg := New()
	cfg.Server.EventRate = -1
	cfg.Server.EventBurst = -1
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when the limit is disabled", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configTOML := `[server]
port = 8081
eventRate = 50.0
eventBurst = 10

[drag]
effectAllowed = "copy"

[metrics]
enabled = false
`
	if err := os.WriteFile(filepath.Join(tmpDir, TOMLConfigFileName), []byte(configTOML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Server.EventRate != 50 || cfg.Server.EventBurst != 10 {
		t.Errorf("event limit = %v/%d, want 50/10", cfg.Server.EventRate, cfg.Server.EventBurst)
	}
	if cfg.Drag.EffectAllowed != "copy" {
		t.Errorf("Drag.EffectAllowed = %q, want copy", cfg.Drag.EffectAllowed)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
	if filepath.Base(cfg.Path()) != TOMLConfigFileName {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`{"server":{"port":7001}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, TOMLConfigFileName), []byte("[server]\nport = 7002\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want 7001 from dnd.json", cfg.Server.Port)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), TOMLConfigFileName)
	cfg := New()
	cfg.Metrics.Enabled = false
	cfg.Drag.DraggingClass = "lifted"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Metrics.Enabled {
		t.Error("Metrics.Enabled should survive the round trip as false")
	}
	if loaded.Drag.DraggingClass != "lifted" {
		t.Errorf("Drag.DraggingClass = %q, want lifted", loaded.Drag.DraggingClass)
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"drag":{"effectAllowed":"move"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 16)
	if err := Watch(ctx, path, func(cfg *Config) { got <- cfg }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"drag":{"effectAllowed":"teleport"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"drag":{"effectAllowed":"copy"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-got:
			if cfg.Drag.EffectAllowed == "teleport" {
				t.Fatal("invalid configuration should not be delivered")
			}
			if cfg.Drag.EffectAllowed == "copy" {
				return
			}
		case <-timeout:
			t.Fatal("Watch did not deliver the edited configuration")
		}
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", ConfigFileName)
	if err := Watch(context.Background(), path, func(*Config) {}); err == nil {
		t.Error("Watch should fail for a missing directory")
	}
}
