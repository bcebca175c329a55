// Package cleanup implements pruning of old hearsay session directories.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// sessionTimestampLayout is the prefix format used for session directory
// names, which look like "20060102-150405-1a2b3c4d".
const sessionTimestampLayout = "20060102-150405"

// sessionTimestamp extracts the timestamp from a session directory name.
// Returns an error for names that don't match the session layout.
func sessionTimestamp(name string) (time.Time, error) {
	if len(name) < len(sessionTimestampLayout) {
		return time.Time{}, fmt.Errorf("name too short: %q", name)
	}
	prefix := name[:len(sessionTimestampLayout)]
	if rest := name[len(sessionTimestampLayout):]; rest != "" && !strings.HasPrefix(rest, "-") {
		return time.Time{}, fmt.Errorf("not a session directory: %q", name)
	}
	return time.Parse(sessionTimestampLayout, prefix)
}

// PruneByAge removes session directories older than maxAgeDays.
// If dryRun is true, no directories are deleted; the function only returns
// the names that would be removed. Returns the list of pruned directory names.
func PruneByAge(sessionsDir string, maxAgeDays int, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var pruned []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		t, parseErr := sessionTimestamp(entry.Name())
		if parseErr != nil {
			// Skip directories that don't match the session format.
			continue
		}

		if t.Before(cutoff) {
			if !dryRun {
				path := filepath.Join(sessionsDir, entry.Name())
				if rmErr := os.RemoveAll(path); rmErr != nil {
					return pruned, fmt.Errorf("removing %s: %w", entry.Name(), rmErr)
				}
			}
			pruned = append(pruned, entry.Name())
		}
	}

	return pruned, nil
}

// PruneKeepRecent removes all session directories except the most recent
// keep directories. If dryRun is true, no directories are deleted. Returns
// the list of pruned directory names.
func PruneKeepRecent(sessionsDir string, keep int, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	// Filter to only session-named directories.
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, parseErr := sessionTimestamp(entry.Name()); parseErr == nil {
			dirs = append(dirs, entry.Name())
		}
	}

	// Sort chronologically (timestamp prefixes sort lexicographically).
	sort.Strings(dirs)

	if len(dirs) <= keep {
		return nil, nil
	}

	toRemove := dirs[:len(dirs)-keep]
	var pruned []string

	for _, name := range toRemove {
		if !dryRun {
			path := filepath.Join(sessionsDir, name)
			if rmErr := os.RemoveAll(path); rmErr != nil {
				return pruned, fmt.Errorf("removing %s: %w", name, rmErr)
			}
		}
		pruned = append(pruned, name)
	}

	return pruned, nil
}
