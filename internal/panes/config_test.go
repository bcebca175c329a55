package panes

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestConfigJSONThrottleIsMilliseconds(t *testing.T) {
	var cfg Config
	if err := json.Unmarshal([]byte(`{"id":"a","throttle_ms":5000}`), &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.Throttle != 5*time.Second {
		t.Fatalf("Throttle = %v, want 5s", cfg.Throttle)
	}

	// The floor must not clamp a throttle that arrived above it.
	normalized := normalizeConfigs([]Config{cfg})
	if len(normalized) != 1 || normalized[0].Throttle != 5*time.Second {
		t.Errorf("normalized throttle = %v, want 5s", normalized[0].Throttle)
	}
}

func TestConfigJSONMarshalEmitsMilliseconds(t *testing.T) {
	data, err := json.Marshal(Config{ID: "a", Throttle: 5 * time.Second})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"throttle_ms":5000`) {
		t.Errorf("expected throttle_ms 5000 in %s", data)
	}
}
