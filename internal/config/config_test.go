package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hearsay-dev/hearsay/internal/parse"
	"github.com/hearsay-dev/hearsay/internal/testutil"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Model = "opus"
	cfg.Transcriber.Command = []string{"hearsay-transcribe", "--realtime"}
	cfg.Transcriber.ModelPath = "models/base.en.bin"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Model != "opus" {
		t.Errorf("Model: got %q, want %q", loaded.Model, "opus")
	}
	if len(loaded.Transcriber.Command) != 2 || loaded.Transcriber.Command[0] != "hearsay-transcribe" {
		t.Errorf("Transcriber.Command: got %v", loaded.Transcriber.Command)
	}
	if loaded.Transcriber.ModelPath != "models/base.en.bin" {
		t.Errorf("ModelPath: got %q", loaded.Transcriber.ModelPath)
	}
}

func TestDefaultConfigIncludesBuiltinPanes(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Panes) == 0 {
		t.Fatal("default config should reference the built-in pane templates")
	}
	configs := cfg.PaneConfigs()
	if len(configs) != len(cfg.Panes) {
		t.Errorf("resolved %d pane configs from %d entries", len(configs), len(cfg.Panes))
	}
	for _, pc := range configs {
		if pc.Model == "" {
			t.Errorf("pane %s should inherit the top-level model", pc.ID)
		}
	}
}

func TestPaneConfigsTemplateOverrides(t *testing.T) {
	cfg := &Config{
		Model: "sonnet",
		Panes: []PaneConfig{
			{ID: "my-summary", Template: "summary", Title: "Meeting recap", ThrottleMs: 30000},
		},
	}

	configs := cfg.PaneConfigs()
	if len(configs) != 1 {
		t.Fatalf("got %d configs, want 1", len(configs))
	}
	pc := configs[0]
	if pc.ID != "my-summary" || pc.Title != "Meeting recap" {
		t.Errorf("config = %+v, want overridden id/title", pc)
	}
	if pc.Throttle != 30*time.Second {
		t.Errorf("Throttle = %v, want 30s", pc.Throttle)
	}
	if pc.Schema.Kind != parse.KindJSONList {
		t.Errorf("Schema.Kind = %q, want template schema preserved", pc.Schema.Kind)
	}
}

func TestPaneConfigsDropsUnknownTemplate(t *testing.T) {
	cfg := &Config{Panes: []PaneConfig{{ID: "x", Template: "no-such-template"}}}
	if got := cfg.PaneConfigs(); len(got) != 0 {
		t.Errorf("got %d configs, want unknown template dropped", len(got))
	}
}

func TestPaneConfigsInline(t *testing.T) {
	cfg := &Config{
		Model: "sonnet",
		Panes: []PaneConfig{{
			ID:      "glossary",
			Title:   "Glossary",
			Variant: "list",
			Prompt:  "Define the jargon used.",
			Schema:  parse.TextListSchema(),
		}},
	}

	configs := cfg.PaneConfigs()
	if len(configs) != 1 {
		t.Fatalf("got %d configs, want 1", len(configs))
	}
	pc := configs[0]
	if pc.Schema.Kind != parse.KindTextList {
		t.Errorf("Schema.Kind = %q, want text_list", pc.Schema.Kind)
	}
	if pc.Model != "sonnet" {
		t.Errorf("Model = %q, want inherited default", pc.Model)
	}
}

func TestReadConfigTolerantOfOlderFiles(t *testing.T) {
	tmpDir := t.TempDir()
	oldConfig := `version: 1
model: sonnet
sessions_dir: .hearsay/sessions
`
	configPath := filepath.Join(tmpDir, ".hearsay")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(oldConfig), 0644); err != nil {
		t.Fatalf("failed to write old config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on minimal config: %v", err)
	}
	if cfg.Model != "sonnet" {
		t.Errorf("Model = %q, want %q", cfg.Model, "sonnet")
	}
}

func TestReadConfigFromInitializedProject(t *testing.T) {
	dir := testutil.TempProject(t, testutil.InitializedProject())

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	configs := cfg.PaneConfigs()
	if len(configs) != 1 || configs[0].ID != "summary" {
		t.Fatalf("expected one resolved summary pane, got %+v", configs)
	}
	if configs[0].Model != "sonnet" {
		t.Errorf("expected pane to inherit top-level model, got %q", configs[0].Model)
	}
	if cfg.Server.Enabled {
		t.Errorf("expected server disabled in fixture")
	}
}
