// state.go holds per-pane runtime state and the published projection.
package panes

import "time"

// Status is the lifecycle state of one pane.
type Status string

const (
	// StatusUnavailable means no LLM client is configured. It overrides
	// every other status until a client is set again.
	StatusUnavailable Status = "llm-unavailable"
	// StatusWaiting means the pane is idle, waiting for transcript content
	// or for its throttle window to open.
	StatusWaiting Status = "waiting"
	// StatusGenerating means a call is in flight.
	StatusGenerating Status = "generating"
	// StatusReady means the last call succeeded and output is current.
	StatusReady Status = "ready"
	// StatusError means the last call failed; previous output is retained.
	StatusError Status = "error"
)

// paneState is the mutable record the engine owns for one configured pane.
// It is only ever touched with the engine mutex held.
type paneState struct {
	cfg     Config
	status  Status
	pending bool
	running bool

	lastRunAt time.Time
	updatedAt time.Time

	items      []string
	text       string
	raw        string
	structured []map[string]string
	err        string

	timer *time.Timer
}

// cancelTimer stops and clears any armed throttle timer.
func (p *paneState) cancelTimer() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// clearOutput drops accumulated output and any transient error.
func (p *paneState) clearOutput() {
	p.items = nil
	p.text = ""
	p.raw = ""
	p.structured = nil
	p.err = ""
	p.lastRunAt = time.Time{}
}

// View is the read-only projection of a pane published to observers.
type View struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Variant    string              `json:"variant"`
	Status     Status              `json:"status"`
	Items      []string            `json:"items,omitempty"`
	Text       string              `json:"text,omitempty"`
	Error      string              `json:"error,omitempty"`
	Raw        string              `json:"raw,omitempty"`
	Structured []map[string]string `json:"structured,omitempty"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Editable   bool                `json:"editable"`
	Model      string              `json:"model,omitempty"`
}

// view builds the published copy of the pane. Slices are cloned so observers
// never alias engine-owned state.
func (p *paneState) view() View {
	v := View{
		ID:        p.cfg.ID,
		Title:     p.cfg.Title,
		Variant:   p.cfg.Variant,
		Status:    p.status,
		Text:      p.text,
		Error:     p.err,
		Raw:       p.raw,
		UpdatedAt: p.updatedAt,
		Editable:  p.cfg.AllowPromptEdit,
		Model:     p.cfg.Model,
	}
	if len(p.items) > 0 {
		v.Items = append([]string(nil), p.items...)
	}
	if len(p.structured) > 0 {
		v.Structured = make([]map[string]string, len(p.structured))
		for i, rec := range p.structured {
			clone := make(map[string]string, len(rec))
			for k, val := range rec {
				clone[k] = val
			}
			v.Structured[i] = clone
		}
	}
	return v
}
