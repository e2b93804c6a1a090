package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-log-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-log-monitor/internal/util"
)

var statsOutput string

var statsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show request totals, error rate and live metrics",
	SilenceUsage: true,
	RunE:         runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", formatter.OutputTable,
		"Output format (table, json)")
}

// runStats prints whatever part of the summary could be fetched. It fails
// only when both endpoints fail.
func runStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	f, err := formatter.NewStatsFormatter(out, statsOutput, isTerminal(out))
	if err != nil {
		return err
	}

	if err := initRuntime(timezone); err != nil {
		return err
	}

	api, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), apiTimeout)
	defer cancel()

	var report formatter.StatsReport
	var errs []error

	if stats, err := api.FetchStats(ctx); err != nil {
		util.LogError("failed to fetch stats", util.F("error", err.Error()))
		errs = append(errs, fmt.Errorf("stats: %w", err))
	} else {
		report.Stats = &stats
	}

	if live, err := api.FetchLiveMetrics(ctx); err != nil {
		util.LogError("failed to fetch live metrics", util.F("error", err.Error()))
		errs = append(errs, fmt.Errorf("live metrics: %w", err))
	} else {
		report.LiveMetrics = &live
	}

	if report.Stats == nil && report.LiveMetrics == nil {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return f.Format(report)
}
