// Package ui provides terminal UI components for hearsay.
// This file implements the live pane status display shown during a session.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/hearsay-dev/hearsay/internal/panes"
)

// paneRow holds the display state of a single pane.
type paneRow struct {
	ID        string
	Title     string
	Status    panes.Status
	Items     int
	HasText   bool
	Error     string
	UpdatedAt time.Time
}

// Display manages a live-updating terminal view of pane statuses.
type Display struct {
	mu          sync.Mutex
	sessionID   string
	rows        []*paneRow
	rowIndex    map[string]int // pane ID -> index in rows slice
	segments    int
	started     bool
	isTTY       bool
	linesDrawn  int
	lastPrinted map[string]panes.Status // tracks last printed status per pane (non-TTY)
}

// NewDisplay creates a Display for the given session.
func NewDisplay(sessionID string) *Display {
	return &Display{
		sessionID:   sessionID,
		rowIndex:    make(map[string]int),
		lastPrinted: make(map[string]panes.Status),
		isTTY:       term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// SetPlain forces transition-line output even on a TTY.
func (d *Display) SetPlain() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.isTTY = false
}

// Start draws the initial display.
func (d *Display) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.started = true
	d.render()
}

// SetSegments updates the transcript segment count shown in the header.
func (d *Display) SetSegments(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.segments = n
	if d.started {
		d.render()
	}
}

// UpsertPane updates a pane's row from an engine view, adding it if unseen.
func (d *Display) UpsertPane(v panes.View) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, ok := d.rowIndex[v.ID]
	if !ok {
		idx = len(d.rows)
		d.rowIndex[v.ID] = idx
		d.rows = append(d.rows, &paneRow{ID: v.ID})
	}

	row := d.rows[idx]
	row.Title = v.Title
	row.Status = v.Status
	row.Items = len(v.Items)
	row.HasText = v.Text != ""
	row.Error = v.Error
	row.UpdatedAt = v.UpdatedAt

	if d.started {
		d.render()
	}
}

// RemovePane drops a pane's row from the display.
func (d *Display) RemovePane(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, ok := d.rowIndex[id]
	if !ok {
		return
	}
	d.rows = append(d.rows[:idx], d.rows[idx+1:]...)
	delete(d.rowIndex, id)
	delete(d.lastPrinted, id)
	for i := idx; i < len(d.rows); i++ {
		d.rowIndex[d.rows[i].ID] = i
	}

	if d.started {
		d.render()
	}
}

// Finish finalizes the display by moving the cursor below all output
// and printing a summary line.
func (d *Display) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isTTY && d.linesDrawn > 0 {
		fmt.Print("\n")
	}

	ready := 0
	failed := 0
	for _, r := range d.rows {
		switch r.Status {
		case panes.StatusReady:
			ready++
		case panes.StatusError:
			failed++
		}
	}

	total := len(d.rows)
	fmt.Printf("\nSession ended: %d/%d panes ready", ready, total)
	if failed > 0 {
		fmt.Printf(", %d failed", failed)
	}
	fmt.Println()
}

// render draws or redraws the display.
func (d *Display) render() {
	if !d.isTTY {
		d.renderPlain()
		return
	}
	d.renderTTY()
}

// renderTTY draws the display using ANSI escape codes for in-place updates.
func (d *Display) renderTTY() {
	// Move cursor up to overwrite previous output.
	if d.linesDrawn > 0 {
		fmt.Printf("\033[%dA", d.linesDrawn)
	}

	var buf strings.Builder

	// Header line.
	buf.WriteString(fmt.Sprintf("\033[2K\033[1m✇ Hearsay - session %s\033[0m  \033[90m%d segments\033[0m\n", d.sessionID, d.segments))
	buf.WriteString("\033[2K\n")

	// Pane lines.
	for _, row := range d.rows {
		buf.WriteString("\033[2K")
		buf.WriteString(formatPaneLine(row))
		buf.WriteString("\n")
	}

	fmt.Print(buf.String())

	// Clear stale lines left behind when the pane list shrank.
	drawn := len(d.rows) + 2 // header + blank + panes
	if d.linesDrawn > drawn {
		extra := d.linesDrawn - drawn
		for i := 0; i < extra; i++ {
			fmt.Print("\033[2K\n")
		}
		fmt.Printf("\033[%dA", extra)
	}
	d.linesDrawn = drawn
}

// renderPlain writes non-TTY output (for CI/piping).
// Only prints on status transitions to avoid duplicate lines.
func (d *Display) renderPlain() {
	for _, row := range d.rows {
		if prev, seen := d.lastPrinted[row.ID]; seen && prev == row.Status {
			continue
		}
		fmt.Println(formatPaneLinePlain(row))
		d.lastPrinted[row.ID] = row.Status
	}
}

// formatPaneLine formats a single pane line with ANSI colors and status icons.
func formatPaneLine(row *paneRow) string {
	icon := statusIcon(row.Status)
	detail := statusDetail(row)

	title := row.Title
	if title == "" {
		title = row.ID
	}
	if len(title) > 45 {
		title = title[:42] + "..."
	}

	return fmt.Sprintf("  %s %-14s %s  %s", icon, row.ID, title, detail)
}

// formatPaneLinePlain formats a pane line for non-TTY output.
func formatPaneLinePlain(row *paneRow) string {
	var status string
	switch row.Status {
	case panes.StatusUnavailable:
		status = "LLM UNAVAILABLE"
	case panes.StatusGenerating:
		status = "GENERATING"
	case panes.StatusReady:
		status = fmt.Sprintf("READY (%s)", outputSummary(row))
	case panes.StatusError:
		status = fmt.Sprintf("ERROR: %s", row.Error)
	default:
		status = "WAITING"
	}
	return fmt.Sprintf("[%s] %s: %s", status, row.ID, row.Title)
}

// statusIcon returns the status icon for a pane.
func statusIcon(status panes.Status) string {
	switch status {
	case panes.StatusReady:
		return "\033[32m✅\033[0m" // green checkmark
	case panes.StatusGenerating:
		return "\033[33m⏳\033[0m" // yellow hourglass
	case panes.StatusError:
		return "\033[31m❌\033[0m" // red X
	case panes.StatusUnavailable:
		return "\033[90m⚠\033[0m" // dim warning
	default:
		return "\033[90m○\033[0m" // dim circle
	}
}

// statusDetail returns the right-side detail text for a pane.
func statusDetail(row *paneRow) string {
	switch row.Status {
	case panes.StatusReady:
		return fmt.Sprintf("\033[90m[%s, %s ago]\033[0m", outputSummary(row), formatDuration(time.Since(row.UpdatedAt)))
	case panes.StatusGenerating:
		return "\033[33m[generating]\033[0m"
	case panes.StatusError:
		msg := row.Error
		if len(msg) > 40 {
			msg = msg[:37] + "..."
		}
		return fmt.Sprintf("\033[31m[%s]\033[0m", msg)
	case panes.StatusUnavailable:
		return "\033[90m[no LLM client]\033[0m"
	default:
		return "\033[90m[waiting]\033[0m"
	}
}

// outputSummary describes a ready pane's output in a few words.
func outputSummary(row *paneRow) string {
	if row.Items > 0 {
		return fmt.Sprintf("%d items", row.Items)
	}
	if row.HasText {
		return "text"
	}
	return "empty"
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
