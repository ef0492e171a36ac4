package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft <free text>",
	Short: "Preview the incident a piece of free text would produce",
	Long: `Send free text to the configured language model and print the partial
incident it suggests, without creating anything. Useful for checking
what "incident add --from-text" would pre-fill.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if SmartFill == nil {
			return fmt.Errorf("smart fill not initialized")
		}

		text := strings.Join(args, " ")
		draft, ok := SmartFill.Parse(cmd.Context(), text, time.Now())
		if !ok {
			fmt.Println("No suggestion available.")
			return nil
		}

		fmt.Println("Suggested incident:")
		if draft.Name != "" {
			fmt.Printf("  Name:     %s\n", draft.Name)
		}
		if draft.Subject != "" {
			fmt.Printf("  Subject:  %s\n", draft.Subject)
		}
		if draft.Date != "" {
			fmt.Printf("  Date:     %s\n", draft.Date)
		}
		if draft.Type != "" {
			fmt.Printf("  Type:     %s\n", draft.Type)
		}
		if draft.Priority != "" {
			fmt.Printf("  Priority: %s\n", draft.Priority)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(draftCmd)
}
