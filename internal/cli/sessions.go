// sessions.go implements the "hearsay sessions" command listing past
// capture sessions from the catalog.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearsay-dev/hearsay/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past capture sessions",
	Long:  `Display the most recent capture sessions recorded in the session catalog.`,
	RunE:  runSessions,
}

var limitFlag int

func init() {
	sessionsCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of sessions to list")
}

func runSessions(cmd *cobra.Command, args []string) error {
	dbPath := filepath.Join(".hearsay", "sessions.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no sessions found; start one with: hearsay run")
	}

	index, err := session.OpenIndex(dbPath)
	if err != nil {
		return fmt.Errorf("opening session catalog: %w", err)
	}
	defer index.Close()

	entries, err := index.List(limitFlag)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no sessions found; start one with: hearsay run")
	}

	fmt.Println("Hearsay Sessions")
	fmt.Println()

	for _, e := range entries {
		id := e.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Printf("  %-8s  %s  %-9s  %-12s  %s\n",
			id,
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			formatSessionDuration(e),
			e.Engine,
			e.Dir,
		)
	}

	fmt.Println()
	fmt.Printf("%d session(s)\n", len(entries))
	return nil
}

// formatSessionDuration renders the session length, or "running" for
// sessions without an end stamp.
func formatSessionDuration(e session.Entry) string {
	if e.EndedAt == nil {
		return "running"
	}
	d := e.EndedAt.Sub(e.StartedAt).Round(time.Second)
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
