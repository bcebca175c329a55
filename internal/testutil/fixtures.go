// Package testutil provides test helper utilities for hearsay tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hearsay-dev/hearsay/internal/transcript"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// InitializedProject returns file contents for a directory where
// "hearsay init" has already run with a minimal configuration.
func InitializedProject() map[string]string {
	return map[string]string{
		".hearsay/config.yaml": `version: 1
model: sonnet
sessions_dir: .hearsay/sessions
server:
  enabled: false
panes:
  - id: summary
    template: summary
`,
	}
}

// SampleSegments returns a short transcript segment sequence for tests.
func SampleSegments() []transcript.Segment {
	return []transcript.Segment{
		{Start: 0.0, End: 2.0, Text: "we should ship the beta this week"},
		{Start: 2.0, End: 5.5, Text: "marketing wants the landing page first"},
		{Start: 5.5, End: 9.0, Text: "ana can own the landing page copy"},
	}
}

