package transcriber

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hearsay-dev/hearsay/internal/transcript"
)

func TestReadLoopDispatchesEvents(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"ready","engine":"whisper"}`,
		`{"type":"status","message":"session_reset"}`,
		`not json at all`,
		``,
		`{"type":"transcript","text":"hello there","segments":[{"start":0,"end":1.5,"text":"hello there"}]}`,
		`{"type":"error","message":"decode failed"}`,
	}, "\n")

	var engine, status, text, errMsg string
	var segs []transcript.Segment

	b := NewBridge(nil, Handlers{
		OnReady:  func(e string) { engine = e },
		OnStatus: func(m string) { status = m },
		OnTranscript: func(txt string, s []transcript.Segment) {
			text = txt
			segs = s
		},
		OnError: func(m string) { errMsg = m },
	})
	b.readLoop(strings.NewReader(input))

	if engine != "whisper" {
		t.Errorf("engine = %q, want %q", engine, "whisper")
	}
	if status != "session_reset" {
		t.Errorf("status = %q, want %q", status, "session_reset")
	}
	if text != "hello there" {
		t.Errorf("text = %q, want %q", text, "hello there")
	}
	want := []transcript.Segment{{Start: 0, End: 1.5, Text: "hello there"}}
	if !reflect.DeepEqual(segs, want) {
		t.Errorf("segments = %v, want %v", segs, want)
	}
	if errMsg != "decode failed" {
		t.Errorf("error = %q, want %q", errMsg, "decode failed")
	}
}

func TestReadLoopSkipsUnknownTypes(t *testing.T) {
	called := false
	b := NewBridge(nil, Handlers{
		OnTranscript: func(string, []transcript.Segment) { called = true },
	})
	b.readLoop(strings.NewReader(`{"type":"heartbeat"}`))
	if called {
		t.Error("unknown message type must not dispatch a transcript")
	}
}

func TestSendRequiresRunningProcess(t *testing.T) {
	b := NewBridge([]string{"true"}, Handlers{})
	if err := b.Flush(); err == nil {
		t.Error("Flush before Start should fail")
	}
}

func TestStartRejectsEmptyCommand(t *testing.T) {
	b := NewBridge(nil, Handlers{})
	if err := b.Start(); err == nil {
		t.Error("Start with no command should fail")
	}
}

func TestBridgeAgainstRealSubprocess(t *testing.T) {
	// `cat` echoes our inbound control messages back, which the read loop
	// ignores (they are not outbound types), then exits when stdin closes.
	exited := make(chan error, 1)
	b := NewBridge([]string{"cat"}, Handlers{
		OnExit: func(err error) { exited <- err },
	})
	if err := b.Start(); err != nil {
		t.Skipf("cannot start cat: %v", err)
	}

	if err := b.Flush(); err != nil {
		t.Errorf("Flush: %v", err)
	}
	if err := b.Reset(); err != nil {
		t.Errorf("Reset: %v", err)
	}

	b.Stop()
	if err := <-exited; err != nil {
		t.Errorf("subprocess exit: %v", err)
	}

	if err := b.SendChunk([]float32{0.1}); err == nil {
		t.Error("SendChunk after Stop should fail")
	}
}
