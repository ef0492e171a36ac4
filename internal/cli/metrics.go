package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var metricsSince string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show aggregated metrics from the event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (event log may be disabled)")
		}

		days := 7
		if metricsSince != "" {
			if _, err := fmt.Sscanf(metricsSince, "%dd", &days); err != nil {
				return fmt.Errorf("invalid --since %q (use e.g. 7d, 30d)", metricsSince)
			}
		}
		since := time.Now().UTC().AddDate(0, 0, -days)

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		fmt.Printf("Metrics for the last %dd (%d events):\n\n", days, m.EventCount)
		fmt.Printf("  Incidents created:   %d\n", m.IncidentsCreated)
		for incType, count := range m.IncidentsByType {
			fmt.Printf("    %-18s %d\n", incType, count)
		}
		fmt.Printf("  Fields updated:      %d\n", m.FieldsUpdated)
		fmt.Printf("  Actions completed:   %d\n", m.ActionsCompleted)
		fmt.Printf("  Incidents archived:  %d\n", m.IncidentsArchived)
		fmt.Printf("  Incidents restored:  %d\n", m.IncidentsRestored)
		fmt.Printf("  Reminders scheduled: %d\n", m.RemindersScheduled)
		fmt.Printf("  Reminders dismissed: %d\n", m.RemindersDismissed)
		fmt.Printf("  Reminders snoozed:   %d\n", m.RemindersSnoozed)
		if m.WriteFailures > 0 {
			fmt.Printf("  Write failures:      %d\n", m.WriteFailures)
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window (e.g. 7d, 30d)")
	rootCmd.AddCommand(metricsCmd)
}
