// Package config handles reading and writing .hearsay/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hearsay-dev/hearsay/internal/panes"
	"github.com/hearsay-dev/hearsay/internal/parse"
)

// Config is the top-level structure for .hearsay/config.yaml.
type Config struct {
	Version     int               `yaml:"version"`
	Model       string            `yaml:"model"`
	SessionsDir string            `yaml:"sessions_dir"`
	Server      ServerConfig      `yaml:"server"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Panes       []PaneConfig      `yaml:"panes"`
}

// ServerConfig controls the observer HTTP/WebSocket surface.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TranscriberConfig describes the speech-recognition subprocess.
type TranscriberConfig struct {
	Command   []string `yaml:"command"`
	Engine    string   `yaml:"engine"`
	Language  string   `yaml:"language"`
	ModelPath string   `yaml:"model_path"`
}

// PaneConfig is the YAML form of one pane. Either a template reference or a
// full inline definition.
type PaneConfig struct {
	ID              string       `yaml:"id"`
	Template        string       `yaml:"template,omitempty"`
	Title           string       `yaml:"title,omitempty"`
	Variant         string       `yaml:"variant,omitempty"`
	SystemPrompt    string       `yaml:"system_prompt,omitempty"`
	Prompt          string       `yaml:"prompt,omitempty"`
	ThrottleMs      int          `yaml:"throttle_ms,omitempty"`
	Model           string       `yaml:"model,omitempty"`
	MaxSegments     int          `yaml:"max_segments,omitempty"`
	MaxOutputTokens int          `yaml:"max_output_tokens,omitempty"`
	Schema          parse.Schema `yaml:"schema,omitempty"`
	AllowPromptEdit bool         `yaml:"allow_prompt_edit,omitempty"`
}

const configDir = ".hearsay"
const configFile = "config.yaml"

// ReadConfig reads .hearsay/config.yaml from the given directory.
// dir is the working root (not .hearsay/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .hearsay/config.yaml in the given directory.
// Creates the .hearsay/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults: the four
// built-in pane templates, a local sessions directory, and the server on.
func DefaultConfig() *Config {
	cfg := &Config{
		Version:     1,
		Model:       "sonnet",
		SessionsDir: filepath.Join(configDir, "sessions"),
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:7877",
		},
		Transcriber: TranscriberConfig{
			Engine: "whisper",
		},
	}
	for _, tmpl := range panes.Templates() {
		cfg.Panes = append(cfg.Panes, PaneConfig{ID: tmpl.ID, Template: tmpl.ID})
	}
	return cfg
}

// PaneConfigs resolves the YAML pane entries into engine configs. Template
// references start from the built-in preset and apply any overrides; inline
// entries map field for field. Entries referencing an unknown template are
// dropped, matching the engine's silent handling of unusable configs.
func (c *Config) PaneConfigs() []panes.Config {
	templates := make(map[string]panes.Template)
	for _, tmpl := range panes.Templates() {
		templates[tmpl.ID] = tmpl
	}

	var configs []panes.Config
	for _, pc := range c.Panes {
		var cfg panes.Config
		if pc.Template != "" {
			tmpl, ok := templates[pc.Template]
			if !ok {
				continue
			}
			cfg = tmpl.Config(pc.ID)
		} else {
			cfg = panes.Config{
				ID:              pc.ID,
				Variant:         pc.Variant,
				Schema:          pc.Schema,
				AllowPromptEdit: pc.AllowPromptEdit,
			}
		}

		if pc.Title != "" {
			cfg.Title = pc.Title
		}
		if pc.SystemPrompt != "" {
			cfg.SystemPrompt = pc.SystemPrompt
		}
		if pc.Prompt != "" {
			cfg.PromptTemplate = pc.Prompt
		}
		if pc.ThrottleMs > 0 {
			cfg.Throttle = time.Duration(pc.ThrottleMs) * time.Millisecond
		}
		if pc.MaxSegments > 0 {
			cfg.MaxSegments = pc.MaxSegments
		}
		if pc.MaxOutputTokens > 0 {
			cfg.MaxOutputTokens = pc.MaxOutputTokens
		}
		cfg.Model = pc.Model
		if cfg.Model == "" {
			cfg.Model = c.Model
		}
		configs = append(configs, cfg)
	}
	return configs
}
