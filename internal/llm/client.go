// Package llm defines the request/response contract with the language-model
// collaborator and the Claude CLI subprocess implementation of it.
package llm

import "context"

// Message is one conversational turn sent to the model.
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// Request describes a single completion call.
type Request struct {
	Model           string
	Messages        []Message
	MaxOutputTokens int
	// ResponseFormatHint nudges the model toward a shape ("json" or "text").
	// It is advisory; the parser tolerates any output.
	ResponseFormatHint string
}

// ContentBlock is one fragment of a structured response payload.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is the envelope returned by a completion call. Text is the
// canonical result; Content carries block-structured payloads from providers
// that return them.
type Response struct {
	Text       string
	Content    []ContentBlock
	Model      string
	DurationMS int64
}

// Client is an asynchronous completion caller. Implementations do not cancel
// in-flight calls: once issued, a call always runs to success or failure, and
// the caller awaits whichever comes. Cancellation via ctx is at the
// implementation's discretion and surfaces as an ordinary error.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
