package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/pkg/models"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archived incidents",
}

var archiveMoveCmd = &cobra.Command{
	Use:   "move-completed",
	Short: "Move completed incidents to the archive",
	Long: `Move every active incident with Completed status to the front of the
archive, preserving their order. Reports how many moved; moving nothing
is not an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		moved, err := Engine.MoveCompleted()
		if errors.Is(err, core.ErrNothingToMove) {
			fmt.Println("No completed incidents to move.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("moving completed incidents: %w", err)
		}
		fmt.Printf("Moved %d incident(s) to the archive\n", moved)
		return nil
	},
}

var archiveListByDate bool

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived incidents",
	Long: `List archived incidents, most recently archived first. With --by-date
the list is sorted by incident date instead, newest date first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		incidents := Engine.Archived()
		if len(incidents) == 0 {
			fmt.Println("The archive is empty.")
			return nil
		}

		if archiveListByDate {
			sort.SliceStable(incidents, func(i, j int) bool {
				return incidents[i].Date > incidents[j].Date
			})
		}

		renderIncidentTable(incidents)
		return nil
	},
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore <incident-id>",
	Short: "Move an archived incident back to the active collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		if err := Engine.Restore(args[0]); err != nil {
			return fmt.Errorf("restoring incident: %w", err)
		}
		fmt.Printf("Restored incident %s\n", args[0])
		return nil
	},
}

var archiveSetCmd = &cobra.Command{
	Use:   "set <incident-id> <field> <value>",
	Short: "Edit an archived incident",
	Long: `Edit an archived incident. Only the name and comments fields remain
editable after archival.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		if err := Engine.UpdateArchivedField(args[0], models.Field(args[1]), args[2]); err != nil {
			return fmt.Errorf("updating archived incident: %w", err)
		}
		fmt.Printf("Updated %s of archived incident %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	archiveListCmd.Flags().BoolVar(&archiveListByDate, "by-date", false, "Sort by incident date, newest first")

	archiveCmd.AddCommand(archiveMoveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveRestoreCmd)
	archiveCmd.AddCommand(archiveSetCmd)
	rootCmd.AddCommand(archiveCmd)
}
