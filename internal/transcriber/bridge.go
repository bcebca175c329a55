// Package transcriber manages the speech-recognition subprocess and bridges
// its transcript stream into the engine. The subprocess owns audio capture
// and decoding; this side only speaks the line-delimited JSON protocol.
package transcriber

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/hearsay-dev/hearsay/internal/transcript"
)

// Handlers receive subprocess events. Each transcript update carries the
// full replacement text and segments, never a delta. OnExit fires once when
// the subprocess terminates, after the final transcript update.
type Handlers struct {
	OnReady      func(engine string)
	OnStatus     func(message string)
	OnTranscript func(text string, segments []transcript.Segment)
	OnError      func(message string)
	OnExit       func(err error)
}

// Bridge runs one transcriber subprocess for the duration of a session.
type Bridge struct {
	command []string

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	closed bool

	handlers Handlers
}

// NewBridge prepares a bridge around the given subprocess command line.
func NewBridge(command []string, handlers Handlers) *Bridge {
	return &Bridge{command: command, handlers: handlers}
}

// Start launches the subprocess and begins dispatching its stdout events.
// Returns once the process is running; events arrive asynchronously.
func (b *Bridge) Start() error {
	if len(b.command) == 0 {
		return fmt.Errorf("no transcriber command configured")
	}

	cmd := exec.Command(b.command[0], b.command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening transcriber stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening transcriber stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting transcriber: %w", err)
	}

	b.mu.Lock()
	b.cmd = cmd
	b.stdin = stdin
	b.mu.Unlock()

	go func() {
		b.readLoop(stdout)
		err := cmd.Wait()
		if b.handlers.OnExit != nil {
			b.handlers.OnExit(err)
		}
	}()

	return nil
}

// readLoop decodes outbound events line by line and dispatches them.
// Unparsable lines are skipped; the subprocess may interleave diagnostics.
func (b *Bridge) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg outbound
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case msgReady:
			if b.handlers.OnReady != nil {
				b.handlers.OnReady(msg.Engine)
			}
		case msgStatus:
			if b.handlers.OnStatus != nil {
				b.handlers.OnStatus(msg.Message)
			}
		case msgTranscript:
			if b.handlers.OnTranscript != nil {
				b.handlers.OnTranscript(msg.Text, msg.Segments)
			}
		case msgError:
			if b.handlers.OnError != nil {
				b.handlers.OnError(msg.Message)
			}
		}
	}
}

// SendChunk forwards captured audio samples to the subprocess.
func (b *Bridge) SendChunk(samples []float32) error {
	return b.send(inbound{Type: msgChunk, Samples: samples})
}

// Reset asks the subprocess to drop its accumulated audio and transcript.
func (b *Bridge) Reset() error {
	return b.send(inbound{Type: msgReset})
}

// Flush asks the subprocess to re-emit its latest transcript.
func (b *Bridge) Flush() error {
	return b.send(inbound{Type: msgFlush})
}

func (b *Bridge) send(msg inbound) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stdin == nil || b.closed {
		return fmt.Errorf("transcriber not running")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", msg.Type, err)
	}
	if _, err := b.stdin.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing to transcriber: %w", err)
	}
	return nil
}

// Stop closes the subprocess's stdin, signalling it to finish. The exit
// handler still fires when the process terminates.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.stdin != nil {
		_ = b.stdin.Close()
	}
}
