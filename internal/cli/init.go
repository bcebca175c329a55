// init.go implements the "hearsay init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hearsay-dev/hearsay/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize hearsay in the current directory",
	Long: `Initialize the .hearsay/ directory with a default configuration:
the four built-in panes, a local sessions directory, and the observer
server enabled on localhost.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// Check for an existing .hearsay/ directory.
	hearsayDir := filepath.Join(dir, ".hearsay")
	if info, statErr := os.Stat(hearsayDir); statErr == nil && info.IsDir() {
		fmt.Println("Warning: .hearsay/ directory already exists.")
		fmt.Print("Reinitialize? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, cfg.SessionsDir), 0755); err != nil {
		return fmt.Errorf("creating sessions directory: %w", err)
	}

	if err := ensureGitignore(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set up .gitignore: %v\n", err)
	}

	fmt.Println()
	fmt.Println("Hearsay initialized")
	fmt.Println("Configuration written to .hearsay/config.yaml")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set transcriber.command in .hearsay/config.yaml")
	fmt.Println("  2. Run: hearsay run")

	return nil
}

// ensureGitignore creates or appends to .gitignore with runtime entries
// that should never be committed. It reads the existing file and only adds
// entries that aren't already present.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	// Entries that should always be gitignored. config.yaml IS committed.
	requiredEntries := []string{
		".hearsay/sessions/",
		".hearsay/sessions.db",
		".hearsay/events.jsonl",
	}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by hearsay init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
