// clean.go implements the "hearsay clean" command for manual session
// directory cleanup.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearsay-dev/hearsay/internal/cleanup"
	"github.com/hearsay-dev/hearsay/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old session directories",
	Long: `Remove old session directories from the sessions directory.

By default, removes sessions older than 30 days.
Use --keep to keep only the N most recent sessions instead.
Use --dry-run to preview what would be removed.`,
	RunE: runClean,
}

var (
	keepFlag   int
	maxAgeFlag int
	dryRunFlag bool
)

func init() {
	cleanCmd.Flags().IntVar(&keepFlag, "keep", 0, "Keep only the last N sessions (0 = use age-based cleanup)")
	cleanCmd.Flags().IntVar(&maxAgeFlag, "max-age", 30, "Remove sessions older than this many days")
	cleanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(".hearsay"); os.IsNotExist(err) {
		return fmt.Errorf(".hearsay/ not found. Run 'hearsay init' first")
	}

	cfg, err := config.ReadConfig(".")
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var pruned []string
	if keepFlag > 0 {
		pruned, err = cleanup.PruneKeepRecent(cfg.SessionsDir, keepFlag, dryRunFlag)
	} else {
		maxAge := maxAgeFlag
		if maxAge <= 0 {
			maxAge = 30
		}
		pruned, err = cleanup.PruneByAge(cfg.SessionsDir, maxAge, dryRunFlag)
	}
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if len(pruned) == 0 {
		fmt.Println("No sessions to clean up.")
		return nil
	}

	verb := "Removed"
	if dryRunFlag {
		verb = "Would remove"
	}

	for _, name := range pruned {
		fmt.Printf("  %s %s\n", verb, name)
	}
	fmt.Printf("%s %d session(s).\n", verb, len(pruned))

	return nil
}
