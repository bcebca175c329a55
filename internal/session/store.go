// Package session persists capture-session state to disk: a metadata record
// plus a debounced, deduplicated "latest snapshot + append-only log" pair for
// the transcript and for pane outputs. Persistence is best effort: every
// filesystem error is logged as a warning and swallowed, never surfaced to
// the transcription or scheduling path.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearsay-dev/hearsay/internal/panes"
	"github.com/hearsay-dev/hearsay/internal/transcript"
)

// dirTimestampLayout names session directories, newest last in a sort.
const dirTimestampLayout = "20060102-150405"

const (
	metaFile          = "session.json"
	transcriptFile    = "transcript.json"
	transcriptLogFile = "transcript.log.jsonl"
	notesFile         = "notes.json"
	notesLogFile      = "notes.log.jsonl"
	defaultTranscript = 900 * time.Millisecond
	defaultNotesDelay = 1200 * time.Millisecond
	sessionFilePerm   = 0644
	sessionDirPerm    = 0755
)

// Meta is the per-session metadata record written to session.json.
type Meta struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	Engine    string     `json:"engine"`
	Language  string     `json:"language,omitempty"`
	ModelPath string     `json:"model_path,omitempty"`
	Platform  string     `json:"platform"`
}

// Options tunes a Store. Zero values select the defaults.
type Options struct {
	TranscriptDelay time.Duration
	NotesDelay      time.Duration
	// Warn receives persistence failures. Defaults to stderr.
	Warn func(format string, args ...any)
}

// Store snapshots one capture session under its own directory.
type Store struct {
	mu  sync.Mutex
	dir string

	meta Meta
	warn func(format string, args ...any)

	transcriptDelay time.Duration
	notesDelay      time.Duration

	curTranscript transcript.Snapshot
	curNotes      []panes.View

	transcriptTimer *time.Timer
	notesTimer      *time.Timer

	lastTranscriptFP string
	lastNotesFP      string

	closed bool
}

// NewStore allocates a fresh timestamped session directory under root and
// writes the initial metadata and (empty) stream snapshots, establishing the
// last-persisted fingerprints. Unlike the debounced steady-state writes, a
// failure here is returned: without a session directory there is nothing to
// persist to.
func NewStore(root string, meta Meta, opts Options) (*Store, error) {
	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	if meta.StartedAt.IsZero() {
		meta.StartedAt = time.Now()
	}
	if meta.Platform == "" {
		meta.Platform = runtime.GOOS
	}
	meta.UpdatedAt = meta.StartedAt

	dir := filepath.Join(root, fmt.Sprintf("%s-%s", meta.StartedAt.Format(dirTimestampLayout), shortID(meta.ID)))
	if err := os.MkdirAll(dir, sessionDirPerm); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	s := &Store{
		dir:             dir,
		meta:            meta,
		warn:            opts.Warn,
		transcriptDelay: opts.TranscriptDelay,
		notesDelay:      opts.NotesDelay,
		curTranscript:   transcript.Normalize(transcript.Snapshot{}),
		curNotes:        []panes.View{},
	}
	if s.warn == nil {
		s.warn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		}
	}
	if s.transcriptDelay <= 0 {
		s.transcriptDelay = defaultTranscript
	}
	if s.notesDelay <= 0 {
		s.notesDelay = defaultNotesDelay
	}

	s.mu.Lock()
	s.writeMeta()
	s.flushTranscript(true)
	s.flushNotes(true)
	s.mu.Unlock()

	return s, nil
}

// Dir returns the session directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Meta returns a copy of the current metadata record.
func (s *Store) Meta() Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// SetTranscript records the newest snapshot and arms (or leaves armed) the
// transcript debounce timer.
func (s *Store) SetTranscript(snap transcript.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.curTranscript = transcript.Normalize(snap)
	if s.transcriptTimer == nil {
		s.transcriptTimer = time.AfterFunc(s.transcriptDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.transcriptTimer = nil
			if !s.closed {
				s.flushTranscript(false)
			}
		})
	}
}

// SetPaneOutputs records the newest pane projections and arms (or leaves
// armed) the notes debounce timer.
func (s *Store) SetPaneOutputs(views []panes.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.curNotes = views
	if s.notesTimer == nil {
		s.notesTimer = time.AfterFunc(s.notesDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.notesTimer = nil
			if !s.closed {
				s.flushNotes(false)
			}
		})
	}
}

// Flush synchronously force-writes both streams, bypassing debounce timers
// and deduplication. Used on session stop, process exit, and transcriber
// subprocess exit so no debounce-pending update is lost.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cancelTimers()
	s.flushTranscript(true)
	s.flushNotes(true)
}

// Close finalizes the session: force-flushes both streams and stamps
// endedAt. Further Set calls become no-ops.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimers()
	s.flushTranscript(true)
	s.flushNotes(true)

	now := time.Now()
	s.meta.EndedAt = &now
	s.writeMeta()
}

func (s *Store) cancelTimers() {
	if s.transcriptTimer != nil {
		s.transcriptTimer.Stop()
		s.transcriptTimer = nil
	}
	if s.notesTimer != nil {
		s.notesTimer.Stop()
		s.notesTimer = nil
	}
}

// transcriptDoc is the pretty-printed latest-file shape for the transcript.
type transcriptDoc struct {
	UpdatedAt time.Time            `json:"updated_at"`
	Text      string               `json:"text"`
	Segments  []transcript.Segment `json:"segments"`
}

// notesDoc is the pretty-printed latest-file shape for pane outputs.
type notesDoc struct {
	UpdatedAt time.Time    `json:"updated_at"`
	Panes     []panes.View `json:"panes"`
}

// flushTranscript serializes the current transcript and, unless the content
// is identical to the last persisted serialization (and force is false),
// overwrites the latest file and appends one log line. Caller holds s.mu.
func (s *Store) flushTranscript(force bool) {
	content, err := json.Marshal(struct {
		Text     string               `json:"text"`
		Segments []transcript.Segment `json:"segments"`
	}{s.curTranscript.Text, s.curTranscript.Segments})
	if err != nil {
		s.warn("serializing transcript: %v", err)
		return
	}
	fp := string(content)
	if !force && fp == s.lastTranscriptFP {
		return
	}

	now := time.Now()
	doc := transcriptDoc{UpdatedAt: now, Text: s.curTranscript.Text, Segments: s.curTranscript.Segments}
	if s.writeStream(transcriptFile, transcriptLogFile, doc, now) {
		s.lastTranscriptFP = fp
	}
}

// flushNotes is the pane-output counterpart of flushTranscript.
// Caller holds s.mu.
func (s *Store) flushNotes(force bool) {
	content, err := json.Marshal(s.curNotes)
	if err != nil {
		s.warn("serializing pane outputs: %v", err)
		return
	}
	fp := string(content)
	if !force && fp == s.lastNotesFP {
		return
	}

	now := time.Now()
	doc := notesDoc{UpdatedAt: now, Panes: s.curNotes}
	if s.writeStream(notesFile, notesLogFile, doc, now) {
		s.lastNotesFP = fp
	}
}

// writeStream overwrites the stream's latest file, appends one compact log
// line, and touches the session metadata. Returns true when the latest file
// was written; the fingerprint tracks the latest file. Caller holds s.mu.
func (s *Store) writeStream(latest, logName string, doc any, now time.Time) bool {
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.warn("serializing %s: %v", latest, err)
		return false
	}
	if err := os.WriteFile(filepath.Join(s.dir, latest), pretty, sessionFilePerm); err != nil {
		s.warn("writing %s: %v", latest, err)
		return false
	}

	line, err := json.Marshal(doc)
	if err != nil {
		s.warn("serializing %s log line: %v", logName, err)
		return true
	}
	if err := s.appendLine(logName, line); err != nil {
		s.warn("appending to %s: %v", logName, err)
	}

	s.meta.UpdatedAt = now
	s.writeMeta()
	return true
}

// appendLine appends one JSONL record to the named log file.
func (s *Store) appendLine(name string, line []byte) error {
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, sessionFilePerm)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

// writeMeta persists session.json. Caller holds s.mu.
func (s *Store) writeMeta() {
	data, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		s.warn("serializing session metadata: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, metaFile), data, sessionFilePerm); err != nil {
		s.warn("writing session metadata: %v", err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
