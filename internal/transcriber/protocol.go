// protocol.go defines the line-delimited JSON protocol spoken with the
// transcriber subprocess: control messages in on stdin, transcript updates
// out on stdout.
package transcriber

import "github.com/hearsay-dev/hearsay/internal/transcript"

// Inbound message types (written to the subprocess).
const (
	msgChunk = "chunk"
	msgReset = "reset"
	msgFlush = "flush"
)

// Outbound message types (read from the subprocess).
const (
	msgReady      = "ready"
	msgStatus     = "status"
	msgTranscript = "transcript"
	msgError      = "error"
)

// inbound is one control message sent to the subprocess.
type inbound struct {
	Type    string    `json:"type"`
	Samples []float32 `json:"samples,omitempty"`
}

// outbound is one event emitted by the subprocess. Fields are populated
// according to Type.
type outbound struct {
	Type     string               `json:"type"`
	Engine   string               `json:"engine,omitempty"`
	Message  string               `json:"message,omitempty"`
	Text     string               `json:"text,omitempty"`
	Segments []transcript.Segment `json:"segments,omitempty"`
}
