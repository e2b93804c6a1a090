package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-log-monitor/internal/util"
)

var healthCmd = &cobra.Command{
	Use:          "health",
	Short:        "Check that the log API is reachable and healthy",
	SilenceUsage: true,
	RunE:         runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	if err := initRuntime(timezone); err != nil {
		return err
	}

	api, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), apiTimeout)
	defer cancel()

	health, err := api.Health(ctx)
	if err != nil {
		return fmt.Errorf("API at %s is unhealthy: %w", api.BaseURL(), err)
	}

	status := util.SanitizeLine(health.Status)
	if status == "" {
		status = "ok"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "API:      %s\nStatus:   %s\n", api.BaseURL(), status)
	if health.Postgres != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Postgres: %s\n", util.SanitizeLine(health.Postgres))
	}
	return nil
}
