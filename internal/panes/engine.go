// Package panes implements the pane scheduling engine: one independently
// throttled reasoning worker per pane, each reducing the current transcript
// through the LLM into its own artifact.
//
// All state is guarded by a single mutex. Timers and call-completion
// goroutines re-enter through it, so state transitions are atomic between
// the suspension points (throttle timers and the LLM call itself), matching
// a cooperative single-loop model. In-flight calls are never cancelled;
// completion is always awaited and is the sole trigger for clearing the
// per-pane running flag.
package panes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hearsay-dev/hearsay/internal/llm"
	"github.com/hearsay-dev/hearsay/internal/parse"
	"github.com/hearsay-dev/hearsay/internal/transcript"
)

// Engine owns every pane's state and decides when each one calls the LLM.
type Engine struct {
	mu       sync.Mutex
	client   llm.Client
	snapshot transcript.Snapshot
	panes    map[string]*paneState
	order    []string

	now func() time.Time

	updateFns []func(View)
	removeFns []func(id string)
}

// NewEngine returns an engine using the given client. A nil client is valid:
// panes sit in llm-unavailable until one is set.
func NewEngine(client llm.Client) *Engine {
	return &Engine{
		client: client,
		panes:  make(map[string]*paneState),
		now:    time.Now,
	}
}

// OnUpdate registers an observer for published pane views. Callbacks run on
// the engine's critical path and must return quickly without calling back
// into the engine.
func (e *Engine) OnUpdate(fn func(View)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updateFns = append(e.updateFns, fn)
}

// OnRemove registers an observer for pane removal events. The same
// constraints as OnUpdate apply.
func (e *Engine) OnRemove(fn func(id string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeFns = append(e.removeFns, fn)
}

// SetClient swaps the LLM client and re-evaluates every pane's status:
// llm-unavailable when cleared, waiting when restored. Panes with a call in
// flight keep generating; the running guard is untouched.
func (e *Engine) SetClient(client llm.Client) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.client = client
	for _, id := range e.order {
		p := e.panes[id]
		if client == nil {
			p.cancelTimer()
			p.status = StatusUnavailable
			e.publish(p)
			continue
		}
		if !p.running {
			p.status = StatusWaiting
			e.publish(p)
		}
	}
}

// SetPanes replaces the configured pane set, diffing against the current one
// by id. Matching panes keep their accumulated output; panes no longer
// present are torn down and their removal published. Every surviving pane
// gets one scheduling attempt.
func (e *Engine) SetPanes(configs []Config) {
	configs = normalizeConfigs(configs)

	e.mu.Lock()
	defer e.mu.Unlock()

	keep := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		keep[cfg.ID] = true
	}
	for _, id := range e.order {
		if keep[id] {
			continue
		}
		e.panes[id].cancelTimer()
		delete(e.panes, id)
		for _, fn := range e.removeFns {
			fn(id)
		}
	}

	order := make([]string, 0, len(configs))
	for _, cfg := range configs {
		order = append(order, cfg.ID)
		if p, ok := e.panes[cfg.ID]; ok {
			p.cancelTimer()
			p.cfg = cfg
			p.err = ""
			// Scheduling may land in the running or timer-armed branch
			// without publishing, so push the new config to observers here.
			p.updatedAt = e.now()
			e.publish(p)
		} else {
			e.panes[cfg.ID] = &paneState{cfg: cfg, status: e.initialStatus()}
		}
	}
	e.order = order

	for _, id := range e.order {
		e.schedule(e.panes[id], false)
	}
}

// SetTranscript replaces the held snapshot and triggers one scheduling
// attempt per pane. Intermediate snapshots are never queued: a pane that is
// busy coalesces them into a single pending follow-up.
func (e *Engine) SetTranscript(snap transcript.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.snapshot = transcript.Normalize(snap)
	for _, id := range e.order {
		e.schedule(e.panes[id], false)
	}
}

// Transcript returns the currently held snapshot.
func (e *Engine) Transcript() transcript.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// ForceRefresh cancels any armed throttle timer for the pane and attempts a
// run immediately. The already-running guard still applies.
func (e *Engine) ForceRefresh(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.panes[id]
	if !ok {
		return
	}
	p.cancelTimer()
	e.schedule(p, true)
}

// ResetOutputs clears accumulated output and errors for every pane without
// removing any configuration.
func (e *Engine) ResetOutputs() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.order {
		p := e.panes[id]
		p.cancelTimer()
		p.clearOutput()
		if !p.running {
			p.status = e.initialStatus()
		}
		p.updatedAt = e.now()
		e.publish(p)
	}
}

// Remove tears down a single pane, cancelling its timer and publishing the
// removal.
func (e *Engine) Remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(id)
}

// Reset tears down every pane and clears the held transcript.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range append([]string(nil), e.order...) {
		e.removeLocked(id)
	}
	e.snapshot = transcript.Snapshot{}
}

// Views returns the current projection of every pane in configured order.
func (e *Engine) Views() []View {
	e.mu.Lock()
	defer e.mu.Unlock()

	views := make([]View, 0, len(e.order))
	for _, id := range e.order {
		views = append(views, e.panes[id].view())
	}
	return views
}

func (e *Engine) removeLocked(id string) {
	p, ok := e.panes[id]
	if !ok {
		return
	}
	p.cancelTimer()
	delete(e.panes, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	for _, fn := range e.removeFns {
		fn(id)
	}
}

// initialStatus derives a fresh pane's status from client availability.
func (e *Engine) initialStatus() Status {
	if e.client == nil {
		return StatusUnavailable
	}
	return StatusWaiting
}

func (e *Engine) publish(p *paneState) {
	v := p.view()
	for _, fn := range e.updateFns {
		fn(v)
	}
}

// schedule is the per-pane scheduling attempt, invoked on transcript update,
// config upsert, timer fire, or forced refresh. Caller holds e.mu.
func (e *Engine) schedule(p *paneState, force bool) {
	// A run in progress absorbs the trigger; the completion path re-invokes
	// scheduling exactly once if pending was set.
	if p.running {
		p.pending = true
		return
	}

	if e.client == nil {
		p.status = StatusUnavailable
		e.publish(p)
		return
	}

	if e.snapshot.Empty() {
		p.status = StatusWaiting
		e.publish(p)
		return
	}

	var wait time.Duration
	if !p.lastRunAt.IsZero() {
		elapsed := e.now().Sub(p.lastRunAt)
		if elapsed < p.cfg.Throttle {
			wait = p.cfg.Throttle - elapsed
		}
	}

	if force || wait == 0 {
		e.run(p)
		return
	}

	// Leave an already-armed timer alone so rapid triggers collapse into
	// one deferred run.
	if p.timer != nil {
		return
	}
	id := p.cfg.ID
	var t *time.Timer
	t = time.AfterFunc(wait, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		cur, ok := e.panes[id]
		// A fire can lose the race with cancelTimer: Stop returns false once
		// the callback is queued, so a cancelled timer may still get here.
		// Only the timer currently armed on the pane may clear the slot and
		// force a run; a stale fire must not clobber a re-armed timer.
		if !ok || cur != p || cur.timer != t {
			return
		}
		cur.timer = nil
		e.schedule(cur, true)
	})
	p.timer = t
}

// run starts one LLM call for the pane. Caller holds e.mu.
func (e *Engine) run(p *paneState) {
	p.running = true
	p.pending = false
	p.status = StatusGenerating
	e.publish(p)

	excerpt := e.snapshot.Excerpt(p.cfg.MaxSegments)
	if excerpt == "" {
		p.running = false
		p.status = StatusWaiting
		e.publish(p)
		return
	}

	prompt := strings.ReplaceAll(p.cfg.PromptTemplate, PlaceholderToken, excerpt)

	var messages []llm.Message
	if p.cfg.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: p.cfg.SystemPrompt})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	req := llm.Request{
		Model:              p.cfg.Model,
		Messages:           messages,
		MaxOutputTokens:    p.cfg.MaxOutputTokens,
		ResponseFormatHint: formatHint(p.cfg.Schema.Kind),
	}

	client := e.client
	id := p.cfg.ID
	go func() {
		resp, err := client.Complete(context.Background(), req)
		e.finish(id, resp, err)
	}()
}

// finish records the outcome of a call and re-dispatches once if triggers
// arrived while the call was in flight.
func (e *Engine) finish(id string, resp *llm.Response, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.panes[id]
	if !ok {
		// Pane was removed while its call was in flight; drop the result.
		return
	}

	if err != nil {
		p.status = StatusError
		p.err = err.Error()
	} else {
		result := parse.Parse(resp, p.cfg.Schema)
		p.items = result.Items
		p.text = result.Text
		p.raw = result.Raw
		p.structured = result.Structured
		p.err = ""
		p.status = StatusReady
		p.lastRunAt = e.now()
	}

	p.running = false
	p.updatedAt = e.now()
	e.publish(p)

	if p.pending {
		p.pending = false
		e.schedule(p, false)
	}
}

// formatHint maps a schema kind to the advisory response format.
func formatHint(kind parse.SchemaKind) string {
	switch kind {
	case parse.KindJSONList, parse.KindJSONObjects:
		return "json"
	default:
		return "text"
	}
}
