// templates.go implements the "hearsay templates" command listing the
// built-in pane presets.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearsay-dev/hearsay/internal/panes"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List built-in pane templates",
	Long: `Display the built-in pane templates. Reference one from
.hearsay/config.yaml with "template: <id>" to use it, optionally
overriding fields like the prompt or throttle.`,
	RunE: runTemplates,
}

func runTemplates(cmd *cobra.Command, args []string) error {
	fmt.Println("Built-in pane templates")
	fmt.Println()

	for _, tmpl := range panes.Templates() {
		fmt.Printf("  %-10s  %-20s  %-4s  every %s, %d segments\n",
			tmpl.ID,
			tmpl.Title,
			tmpl.Variant,
			tmpl.Throttle,
			tmpl.MaxSegments,
		)
	}

	fmt.Println()
	fmt.Println("Example config entry:")
	fmt.Println()
	fmt.Println("  panes:")
	fmt.Println("    - id: my-summary")
	fmt.Println("      template: summary")
	fmt.Println("      throttle_ms: 15000")

	return nil
}
