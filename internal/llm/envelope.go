// envelope.go parses the JSON envelope returned by the Claude CLI.
package llm

import (
	"encoding/json"
	"fmt"
)

// rawEnvelope is the full JSON document the CLI prints with
// --output-format json.
type rawEnvelope struct {
	Type       string         `json:"type"`
	Result     string         `json:"result"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	DurationMS int64          `json:"duration_ms"`
	IsError    bool           `json:"is_error"`
}

// ParseEnvelope decodes the raw CLI output into a Response. A response
// flagged is_error becomes a call failure carrying the result text as the
// message.
func ParseEnvelope(raw []byte) (*Response, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty claude output")
	}

	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	if env.Type != "result" {
		return nil, fmt.Errorf("unexpected claude output type: %q (expected \"result\")", env.Type)
	}
	if env.IsError {
		return nil, fmt.Errorf("claude reported an error: %s", env.Result)
	}

	return &Response{
		Text:       env.Result,
		Content:    env.Content,
		Model:      env.Model,
		DurationMS: env.DurationMS,
	}, nil
}
