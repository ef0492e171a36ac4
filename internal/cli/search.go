package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search incidents by name",
	Long: `Search both the active collection and the archive for incidents whose
name contains the term, case-insensitive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		results := Engine.Search(args[0])
		if len(results) == 0 {
			fmt.Printf("No incidents matching %q.\n", args[0])
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"ID", "Name", "Date", "Status", "Where"})
		for _, r := range results {
			where := "active"
			if r.Archived {
				where = "archive"
			}
			tw.AppendRow(table.Row{r.Incident.ID, r.Incident.Name, r.Incident.Date, r.Incident.Status, where})
		}
		tw.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
