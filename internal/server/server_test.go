package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hearsay-dev/hearsay/internal/panes"
	"github.com/hearsay-dev/hearsay/internal/testutil"
	"github.com/hearsay-dev/hearsay/internal/transcript"
)

func TestHealthEndpoint(t *testing.T) {
	s := New(panes.NewEngine(nil))

	resp, err := s.app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSetAndListPanes(t *testing.T) {
	s := New(panes.NewEngine(nil))

	body, _ := json.Marshal(setPanesRequest{Panes: []panes.Config{
		{ID: "summary", Title: "Summary"},
		{ID: ""}, // unusable, dropped by the engine
	}})
	req := httptest.NewRequest("POST", "/panes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("set panes request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var views []panes.View
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &views); err != nil {
		t.Fatalf("decoding views: %v", err)
	}
	if len(views) != 1 || views[0].ID != "summary" {
		t.Errorf("expected one pane 'summary', got %+v", views)
	}
	if views[0].Status != panes.StatusUnavailable {
		t.Errorf("expected llm-unavailable without a client, got %s", views[0].Status)
	}
}

func TestSetPanesRejectsMalformedBody(t *testing.T) {
	s := New(panes.NewEngine(nil))

	req := httptest.NewRequest("POST", "/panes", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRemovePane(t *testing.T) {
	engine := panes.NewEngine(nil)
	engine.SetPanes([]panes.Config{{ID: "notes"}})
	s := New(engine)

	resp, err := s.app.Test(httptest.NewRequest("DELETE", "/panes/notes", nil))
	if err != nil {
		t.Fatalf("remove request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(engine.Views()) != 0 {
		t.Errorf("expected pane to be removed")
	}
}

func TestListTemplates(t *testing.T) {
	s := New(panes.NewEngine(nil))

	resp, err := s.app.Test(httptest.NewRequest("GET", "/templates", nil))
	if err != nil {
		t.Fatalf("templates request failed: %v", err)
	}

	var templates []panes.Template
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &templates); err != nil {
		t.Fatalf("decoding templates: %v", err)
	}
	if len(templates) != 4 {
		t.Errorf("expected 4 built-in templates, got %d", len(templates))
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	engine := panes.NewEngine(nil)
	segments := testutil.SampleSegments()
	engine.SetTranscript(transcript.Snapshot{
		Text:     "we should ship the beta this week",
		Segments: segments,
	})
	s := New(engine)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/transcript", nil))
	if err != nil {
		t.Fatalf("transcript request failed: %v", err)
	}

	var tr transcriptResponse
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatalf("decoding transcript: %v", err)
	}
	if tr.Text != "we should ship the beta this week" || len(tr.Segments) != len(segments) {
		t.Errorf("unexpected transcript response: %+v", tr)
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	h := newHub()
	sub := h.add()
	defer h.remove(sub)

	// Overfill the buffer; broadcast must never block.
	for i := 0; i < 200; i++ {
		h.broadcast(event{Type: eventPaneRemoved, ID: "x"})
	}

	if len(sub.ch) != cap(sub.ch) {
		t.Errorf("expected subscriber buffer to be full, got %d/%d", len(sub.ch), cap(sub.ch))
	}
}

func TestSetPanesDecodesThrottleAsMilliseconds(t *testing.T) {
	var req setPanesRequest
	body := []byte(`{"panes":[{"id":"a","throttle_ms":5000}]}`)
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("decoding request: %v", err)
	}
	if len(req.Panes) != 1 {
		t.Fatalf("panes = %d, want 1", len(req.Panes))
	}
	if req.Panes[0].Throttle != 5*time.Second {
		t.Errorf("Throttle = %v, want 5s", req.Panes[0].Throttle)
	}
}
