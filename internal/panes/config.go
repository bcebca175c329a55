// config.go defines pane configuration and its normalization rules.
package panes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hearsay-dev/hearsay/internal/parse"
)

// PlaceholderToken marks where the transcript excerpt is substituted into a
// pane's prompt template.
const PlaceholderToken = "{{transcript}}"

// throttleFloor is the minimum spacing between two call starts for one pane.
const throttleFloor = 600 * time.Millisecond

// defaultPrompt is substituted when a config arrives with an empty template.
const defaultPrompt = "Summarize the following conversation transcript concisely.\n\nTranscript:\n" + PlaceholderToken

// Variant selects how a pane's output is displayed.
const (
	VariantList = "list"
	VariantText = "text"
)

// Config is the identity and policy for one pane.
type Config struct {
	ID              string        `yaml:"id"`
	Title           string        `yaml:"title"`
	Variant         string        `yaml:"variant"`
	SystemPrompt    string        `yaml:"system_prompt,omitempty"`
	PromptTemplate  string        `yaml:"prompt_template"`
	Throttle        time.Duration `yaml:"throttle"`
	Model           string        `yaml:"model,omitempty"`
	MaxSegments     int           `yaml:"max_segments"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Schema          parse.Schema  `yaml:"schema"`
	TemplateID      string        `yaml:"template_id,omitempty"`
	AllowPromptEdit bool          `yaml:"allow_prompt_edit"`
}

// configWire is the JSON form of Config. The throttle travels as integer
// milliseconds: decoding a JSON number straight into time.Duration would
// read it as nanoseconds.
type configWire struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Variant         string       `json:"variant"`
	SystemPrompt    string       `json:"system_prompt,omitempty"`
	PromptTemplate  string       `json:"prompt_template"`
	ThrottleMs      int64        `json:"throttle_ms"`
	Model           string       `json:"model,omitempty"`
	MaxSegments     int          `json:"max_segments"`
	MaxOutputTokens int          `json:"max_output_tokens"`
	Schema          parse.Schema `json:"schema"`
	TemplateID      string       `json:"template_id,omitempty"`
	AllowPromptEdit bool         `json:"allow_prompt_edit"`
}

// MarshalJSON emits the throttle as throttle_ms.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configWire{
		ID:              c.ID,
		Title:           c.Title,
		Variant:         c.Variant,
		SystemPrompt:    c.SystemPrompt,
		PromptTemplate:  c.PromptTemplate,
		ThrottleMs:      c.Throttle.Milliseconds(),
		Model:           c.Model,
		MaxSegments:     c.MaxSegments,
		MaxOutputTokens: c.MaxOutputTokens,
		Schema:          c.Schema,
		TemplateID:      c.TemplateID,
		AllowPromptEdit: c.AllowPromptEdit,
	})
}

// UnmarshalJSON reads throttle_ms as milliseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w configWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Config{
		ID:              w.ID,
		Title:           w.Title,
		Variant:         w.Variant,
		SystemPrompt:    w.SystemPrompt,
		PromptTemplate:  w.PromptTemplate,
		Throttle:        time.Duration(w.ThrottleMs) * time.Millisecond,
		Model:           w.Model,
		MaxSegments:     w.MaxSegments,
		MaxOutputTokens: w.MaxOutputTokens,
		Schema:          w.Schema,
		TemplateID:      w.TemplateID,
		AllowPromptEdit: w.AllowPromptEdit,
	}
	return nil
}

// normalizeConfigs validates and repairs a config batch. Entries without an
// id are dropped; every survivor is guaranteed a usable template containing
// the transcript placeholder, a throttle at or above the floor, and positive
// window/token budgets.
func normalizeConfigs(configs []Config) []Config {
	out := make([]Config, 0, len(configs))
	for _, cfg := range configs {
		cfg.ID = strings.TrimSpace(cfg.ID)
		if cfg.ID == "" {
			continue
		}
		if cfg.Variant != VariantList && cfg.Variant != VariantText {
			cfg.Variant = VariantText
		}
		if strings.TrimSpace(cfg.PromptTemplate) == "" {
			cfg.PromptTemplate = defaultPrompt
		}
		if !strings.Contains(cfg.PromptTemplate, PlaceholderToken) {
			cfg.PromptTemplate += "\n\nTranscript:\n" + PlaceholderToken
		}
		if cfg.Throttle < throttleFloor {
			cfg.Throttle = throttleFloor
		}
		if cfg.MaxSegments < 1 {
			cfg.MaxSegments = 25
		}
		if cfg.MaxOutputTokens < 1 {
			cfg.MaxOutputTokens = 1024
		}
		if cfg.Schema.Kind == "" {
			cfg.Schema = parse.TextSchema()
		}
		out = append(out, cfg)
	}
	return out
}
