// Package transcript holds the immutable transcript snapshot shared between
// the transcriber bridge, the pane engine, and session persistence.
package transcript

import (
	"fmt"
	"strings"
)

// excerptMaxChars caps the rendered excerpt sent to the LLM for one pane.
const excerptMaxChars = 6000

// Segment is one timestamped span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Snapshot is the full transcript at one point in time. Updates replace the
// previous snapshot wholesale; snapshots are never merged or diffed.
type Snapshot struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Normalize coerces a snapshot with missing fields into a usable value.
// Malformed input is a defensive default, not an error.
func Normalize(s Snapshot) Snapshot {
	if s.Segments == nil {
		s.Segments = []Segment{}
	}
	return s
}

// Empty reports whether the snapshot carries no usable text.
func (s Snapshot) Empty() bool {
	return strings.TrimSpace(s.Text) == ""
}

// Excerpt renders the most recent maxSegments segments as "m:ss text" lines,
// one per segment, dropping the oldest lines until the joined result fits
// under the excerpt cap. Falls back to the raw transcript text when no
// segment has usable text.
func (s Snapshot) Excerpt(maxSegments int) string {
	if maxSegments < 1 {
		maxSegments = 1
	}

	var lines []string
	start := 0
	if len(s.Segments) > maxSegments {
		start = len(s.Segments) - maxSegments
	}
	for _, seg := range s.Segments[start:] {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", formatTimestamp(seg), text))
	}

	if len(lines) == 0 {
		return strings.TrimSpace(s.Text)
	}

	joined := strings.Join(lines, "\n")
	for len(joined) > excerptMaxChars && len(lines) > 1 {
		lines = lines[1:]
		joined = strings.Join(lines, "\n")
	}
	return joined
}

// formatTimestamp renders the floor of the segment's start/end midpoint
// as "m:ss".
func formatTimestamp(seg Segment) string {
	mid := int((seg.Start + seg.End) / 2)
	if mid < 0 {
		mid = 0
	}
	return fmt.Sprintf("%d:%02d", mid/60, mid%60)
}
