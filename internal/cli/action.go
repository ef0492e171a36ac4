package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/pkg/models"
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Manage an incident's pending action checklist",
}

var actionAddCmd = &cobra.Command{
	Use:   "add <incident-id> <code>",
	Short: "Add an action code to the checklist",
	Long: `Add an action code to an incident's pending checklist. The code must
belong to the pool of the incident's type; codes already on the
checklist are left as they are.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		if err := Engine.AddAction(args[0], args[1]); err != nil {
			return fmt.Errorf("adding action: %w", err)
		}
		fmt.Printf("Added action %s to incident %s\n", args[1], args[0])
		return nil
	},
}

var actionCompleteCmd = &cobra.Command{
	Use:   "complete <incident-id> <code>",
	Short: "Mark a pending action as completed",
	Long: `Remove an action code from the pending checklist and append a completion
entry to the incident's log. Completing a code that is not pending does
nothing.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		if err := Engine.CompleteAction(args[0], args[1]); err != nil {
			return fmt.Errorf("completing action: %w", err)
		}
		fmt.Printf("Completed action %s on incident %s\n", args[1], args[0])
		return nil
	},
}

var actionSetCmd = &cobra.Command{
	Use:   "set <incident-id> [code...]",
	Short: "Replace the pending checklist wholesale",
	Long: `Replace an incident's pending checklist with the given codes, dropping
duplicates while preserving order. With no codes the checklist is
cleared. Unlike "action add", set does not validate codes against the
type's pool; it mirrors direct checklist edits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		if err := Engine.SetActions(args[0], args[1:]); err != nil {
			return fmt.Errorf("replacing actions: %w", err)
		}
		fmt.Printf("Checklist of incident %s now holds %d action(s)\n", args[0], len(args)-1)
		return nil
	},
}

var actionPoolCmd = &cobra.Command{
	Use:   "pool <type>",
	Short: "Show the action codes valid for an incident type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := models.IncidentType(args[0])
		if !models.ValidType(t) {
			return fmt.Errorf("unknown incident type %q", args[0])
		}

		pool := core.ActionSetFor(t)
		if len(pool) == 0 {
			fmt.Printf("Type %s carries no actions.\n", t)
			return nil
		}
		defaults := map[string]bool{}
		for _, code := range core.DefaultActionsFor(t) {
			defaults[code] = true
		}
		for _, code := range pool {
			marker := " "
			if defaults[code] {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, code)
		}
		fmt.Println("\n  * seeded on new incidents of this type")
		return nil
	},
}

func init() {
	actionCmd.AddCommand(actionAddCmd)
	actionCmd.AddCommand(actionCompleteCmd)
	actionCmd.AddCommand(actionSetCmd)
	actionCmd.AddCommand(actionPoolCmd)
	rootCmd.AddCommand(actionCmd)
}
