package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/opsdesk/opsdesk/pkg/models"
)

var incidentCmd = &cobra.Command{
	Use:   "incident",
	Short: "Manage active incidents",
}

var (
	incidentAddName        string
	incidentAddSubject     string
	incidentAddDate        string
	incidentAddType        string
	incidentAddPriority    string
	incidentAddResponsible string
	incidentAddFromText    string
)

var incidentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an incident",
	Long: `Create an incident in the active collection. Name and subject are
required; every other field falls back to the type's default, including
the default action checklist.

With --from-text the free text is sent to the configured language model
and the returned suggestion pre-fills any field not given explicitly.
The suggestion never assigns a responsible; assignment stays a human
decision. A failed suggestion is ignored silently.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		draft := models.IncidentDraft{
			Name:        incidentAddName,
			Subject:     incidentAddSubject,
			Date:        incidentAddDate,
			Type:        models.IncidentType(incidentAddType),
			Priority:    models.Priority(incidentAddPriority),
			Responsible: models.Responsible(incidentAddResponsible),
		}

		if incidentAddFromText != "" && SmartFill != nil {
			if suggestion, ok := SmartFill.Parse(cmd.Context(), incidentAddFromText, time.Now()); ok {
				draft = mergeDraft(draft, suggestion)
			}
		}

		inc, err := Engine.Create(draft)
		if err != nil {
			return fmt.Errorf("creating incident: %w", err)
		}

		fmt.Printf("Created incident %s\n", inc.ID)
		fmt.Printf("  Name:     %s\n", inc.Name)
		fmt.Printf("  Type:     %s\n", inc.Type)
		fmt.Printf("  Priority: %s\n", inc.Priority)
		if len(inc.Actions) > 0 {
			fmt.Printf("  Actions:  %v\n", inc.Actions)
		}
		return nil
	},
}

var incidentListResponsible string

var incidentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active incidents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		incidents := Engine.Active()
		if incidentListResponsible != "" {
			var filtered []models.Incident
			for _, inc := range incidents {
				if string(inc.Responsible) == incidentListResponsible {
					filtered = append(filtered, inc)
				}
			}
			incidents = filtered
		}

		if len(incidents) == 0 {
			fmt.Println("No active incidents.")
			return nil
		}

		renderIncidentTable(incidents)
		return nil
	},
}

var incidentSetCmd = &cobra.Command{
	Use:   "set <incident-id> <field> <value>",
	Short: "Update one field of an active incident",
	Long: `Update a single field of an active incident. Valid fields: name, date,
type, subject, responsible, priority, status, comments.

Values are stored as given; only the field name is validated.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		if err := Engine.UpdateField(args[0], models.Field(args[1]), args[2]); err != nil {
			return fmt.Errorf("updating incident: %w", err)
		}
		fmt.Printf("Updated %s of incident %s\n", args[1], args[0])
		return nil
	},
}

var incidentDeleteCmd = &cobra.Command{
	Use:   "delete <incident-id>",
	Short: "Delete an active incident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		if err := Engine.Delete(args[0]); err != nil {
			return fmt.Errorf("deleting incident: %w", err)
		}
		fmt.Printf("Deleted incident %s\n", args[0])
		return nil
	},
}

var incidentLogsCmd = &cobra.Command{
	Use:   "logs <incident-id>",
	Short: "Show the completion log of an incident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("incident engine not initialized")
		}

		inc, ok := Engine.Get(args[0])
		if !ok {
			return fmt.Errorf("incident %s not found", args[0])
		}

		if len(inc.Logs) == 0 {
			fmt.Printf("Incident %s has no log entries.\n", inc.ID)
			return nil
		}
		fmt.Printf("Log of %s (%s):\n", inc.Name, inc.ID)
		for _, entry := range inc.Logs {
			fmt.Printf("  %s\n", entry)
		}
		return nil
	},
}

// mergeDraft overlays a smart-fill suggestion under explicitly provided
// fields: a flag the user set always wins over the model's value.
func mergeDraft(explicit, suggestion models.IncidentDraft) models.IncidentDraft {
	if explicit.Name == "" {
		explicit.Name = suggestion.Name
	}
	if explicit.Subject == "" {
		explicit.Subject = suggestion.Subject
	}
	if explicit.Date == "" {
		explicit.Date = suggestion.Date
	}
	if explicit.Type == "" {
		explicit.Type = suggestion.Type
	}
	if explicit.Priority == "" {
		explicit.Priority = suggestion.Priority
	}
	return explicit
}

func renderIncidentTable(incidents []models.Incident) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Name", "Date", "Type", "Responsible", "Priority", "Status", "Pending"})
	for _, inc := range incidents {
		tw.AppendRow(table.Row{
			inc.ID, inc.Name, inc.Date, inc.Type,
			inc.Responsible, inc.Priority, inc.Status, len(inc.Actions),
		})
	}
	tw.Render()
}

func init() {
	incidentAddCmd.Flags().StringVar(&incidentAddName, "name", "", "Short incident name")
	incidentAddCmd.Flags().StringVar(&incidentAddSubject, "subject", "", "Brief summary of the incident")
	incidentAddCmd.Flags().StringVar(&incidentAddDate, "date", "", "Incident date (YYYY-MM-DD, defaults to today)")
	incidentAddCmd.Flags().StringVar(&incidentAddType, "type", "", "Incident type (GSR, CSR, ASR, RiskManagement, PRL, Other)")
	incidentAddCmd.Flags().StringVar(&incidentAddPriority, "priority", "", "Priority (High, Medium, Low)")
	incidentAddCmd.Flags().StringVar(&incidentAddResponsible, "responsible", "", "Assigned party")
	incidentAddCmd.Flags().StringVar(&incidentAddFromText, "from-text", "", "Free text to pre-fill the incident from")

	incidentListCmd.Flags().StringVar(&incidentListResponsible, "responsible", "", "Filter by assigned party")

	incidentCmd.AddCommand(incidentAddCmd)
	incidentCmd.AddCommand(incidentListCmd)
	incidentCmd.AddCommand(incidentSetCmd)
	incidentCmd.AddCommand(incidentDeleteCmd)
	incidentCmd.AddCommand(incidentLogsCmd)
	rootCmd.AddCommand(incidentCmd)
}
