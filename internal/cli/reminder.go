package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/opsdesk/opsdesk/internal/core"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/pkg/models"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Manage scheduled reminders",
}

var (
	reminderAddMessage string
	reminderAddDate    string
	reminderAddTime    string
	reminderAddEnd     string
)

var reminderAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a reminder",
	Long: `Schedule a reminder for a date and start time, with an optional end
time marking a window. The reminder triggers once the start instant has
passed and keeps alerting until dismissed or snoozed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Scheduler == nil {
			return fmt.Errorf("reminder scheduler not initialized")
		}

		rem, err := Scheduler.Schedule(reminderAddMessage, reminderAddDate, reminderAddTime, reminderAddEnd)
		if err != nil {
			return fmt.Errorf("scheduling reminder: %w", err)
		}
		fmt.Printf("Scheduled reminder %s for %s\n", rem.ID, rem.Datetime.Format("2006-01-02 15:04"))
		if rem.EndDatetime != nil && rem.EndDatetime.Before(rem.Datetime) {
			fmt.Println("Warning: end time is before the start time; the window is informational only.")
		}
		return nil
	},
}

var reminderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled reminders, soonest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Scheduler == nil {
			return fmt.Errorf("reminder scheduler not initialized")
		}

		reminders := Scheduler.Reminders()
		if len(reminders) == 0 {
			fmt.Println("No reminders scheduled.")
			return nil
		}

		now := time.Now()
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"ID", "Message", "Trigger", "End", "Due"})
		for _, r := range reminders {
			end := ""
			if r.EndDatetime != nil {
				end = r.EndDatetime.Format("2006-01-02 15:04")
			}
			due := ""
			if !r.Datetime.After(now) {
				due = "yes"
			}
			tw.AppendRow(table.Row{r.ID, r.Message, r.Datetime.Format("2006-01-02 15:04"), end, due})
		}
		tw.Render()
		return nil
	},
}

var reminderDismissCmd = &cobra.Command{
	Use:   "dismiss <reminder-id>",
	Short: "Dismiss a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Scheduler == nil {
			return fmt.Errorf("reminder scheduler not initialized")
		}

		if err := Scheduler.Dismiss(args[0]); err != nil {
			return fmt.Errorf("dismissing reminder: %w", err)
		}
		fmt.Printf("Dismissed reminder %s\n", args[0])
		return nil
	},
}

var reminderSnoozeCmd = &cobra.Command{
	Use:   "snooze <reminder-id>",
	Short: "Snooze a reminder",
	Long:  `Reschedule a reminder to trigger again after the snooze window (30 minutes unless configured otherwise).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Scheduler == nil {
			return fmt.Errorf("reminder scheduler not initialized")
		}

		if err := Scheduler.Snooze(args[0]); err != nil {
			return fmt.Errorf("snoozing reminder: %w", err)
		}
		rem, ok := Scheduler.Get(args[0])
		if ok {
			fmt.Printf("Snoozed reminder %s until %s\n", rem.ID, rem.Datetime.Format("15:04"))
		} else {
			fmt.Printf("Reminder %s not found\n", args[0])
		}
		return nil
	},
}

var reminderWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for due reminders",
	Long: `Poll the reminder collection and print the currently due set on every
tick: once immediately, then on the configured interval (10 seconds by
default). Each tick's output replaces the previous view.

When notifications are configured, reminders that newly became due since
the previous tick are also pushed to the webhook. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Scheduler == nil {
			return fmt.Errorf("reminder scheduler not initialized")
		}

		interval := core.DefaultPollInterval
		if Config != nil && Config.PollInterval > 0 {
			interval = Config.PollInterval
		}

		var recorder *observability.Recorder
		if EventLog != nil {
			recorder = observability.NewRecorder(EventLog, nil)
		}

		notified := make(map[string]bool)
		onTick := func(due []models.Reminder) {
			if len(due) == 0 {
				fmt.Println("No reminders due.")
				return
			}
			fmt.Printf("%d reminder(s) due:\n", len(due))
			for _, r := range due {
				fmt.Printf("  %s  %s (since %s)\n", r.ID, r.Message, r.Datetime.Format("15:04"))
			}

			var fresh []models.Reminder
			for _, r := range due {
				if !notified[r.ID] {
					fresh = append(fresh, r)
					notified[r.ID] = true
				}
			}
			if recorder != nil {
				for _, r := range fresh {
					_ = recorder.LogEvent("reminder.triggered", map[string]any{
						"id":      r.ID,
						"message": r.Message,
					})
				}
			}
			if Notifier != nil && len(fresh) > 0 {
				if err := Notifier.Notify(fresh); err != nil {
					fmt.Fprintf(os.Stderr, "notifying: %v\n", err)
				}
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		monitor := core.NewTriggerMonitor(Scheduler, interval, onTick)
		return monitor.Run(ctx)
	},
}

func init() {
	reminderAddCmd.Flags().StringVar(&reminderAddMessage, "message", "", "Reminder message")
	reminderAddCmd.Flags().StringVar(&reminderAddDate, "date", "", "Trigger date (YYYY-MM-DD)")
	reminderAddCmd.Flags().StringVar(&reminderAddTime, "time", "", "Trigger time (HH:MM)")
	reminderAddCmd.Flags().StringVar(&reminderAddEnd, "end", "", "Optional end time (HH:MM)")

	reminderCmd.AddCommand(reminderAddCmd)
	reminderCmd.AddCommand(reminderListCmd)
	reminderCmd.AddCommand(reminderDismissCmd)
	reminderCmd.AddCommand(reminderSnoozeCmd)
	reminderCmd.AddCommand(reminderWatchCmd)
	rootCmd.AddCommand(reminderCmd)
}
