package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	deskmcp "github.com/opsdesk/opsdesk/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the opsdesk MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the opsdesk MCP server on stdio",
	Long: `Start the opsdesk MCP server on stdio transport.

The server exposes opsdesk functionality as MCP tools that AI assistants
can call: get_incident, list_incidents, create_incident,
update_incident_status, complete_action, list_triggered_reminders,
get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil || Scheduler == nil {
			return fmt.Errorf("services not initialized")
		}

		srv := deskmcp.NewServer(Engine, Scheduler, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
