package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
	"github.com/penwyp/go-log-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-log-monitor/internal/util"
)

var (
	followInterval      time.Duration
	followRetryAttempts int
	followLevel         string
	followModule        string
	followSearch        string
	followOutput        string
)

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Print new log records as they arrive, without the live view",
	Long: `Polls the log stream like "tail" but prints each new batch to stdout,
oldest first, until interrupted. Suitable for piping into other tools.`,
	SilenceUsage: true,
	RunE:         runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)

	followCmd.Flags().DurationVarP(&followInterval, "interval", "n", poller.DefaultInterval,
		"Time between polls")
	followCmd.Flags().IntVar(&followRetryAttempts, "retry-attempts", 0,
		"Retries of a failed poll within one interval (0 disables)")
	followCmd.Flags().StringVarP(&followLevel, "level", "l", string(model.FilterAll),
		"Level filter (ALL, INFO, WARNING, ERROR)")
	followCmd.Flags().StringVarP(&followModule, "module", "m", "",
		"Only records from this module")
	followCmd.Flags().StringVarP(&followSearch, "search", "s", "",
		"Only records whose message contains this text")
	followCmd.Flags().StringVarP(&followOutput, "output", "o", formatter.OutputLines,
		"Output format (lines, jsonl)")
}

func runFollow(cmd *cobra.Command, args []string) error {
	filter, err := filterFromFlags(followLevel, followModule, followSearch)
	if err != nil {
		return err
	}

	if err := initRuntime(timezone); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var f formatter.Formatter
	switch followOutput {
	case formatter.OutputLines:
		f = formatter.NewLineFormatter(out, formatter.Options{TimeFormat: formatTimestamp}, isTerminal(out))
	case formatter.OutputJSONL:
		f = formatter.NewJSONLinesFormatter(out)
	default:
		return fmt.Errorf("invalid output format '%s': must be lines or jsonl", followOutput)
	}

	api, err := newAPIClient()
	if err != nil {
		return err
	}

	var writeMu sync.Mutex
	p := poller.New(api, poller.Config{
		Interval:       followInterval,
		RequestTimeout: apiTimeout,
		RetryAttempts:  followRetryAttempts,
		Filter:         filter,
	}, poller.WithBatchHandler(func(records []model.LogRecord) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := f.Format(records); err != nil {
			util.LogError("failed to write records", util.F("error", err.Error()))
		}
	}))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := p.Stop(); err != nil && !errors.Is(err, poller.ErrNotRunning) {
			util.LogWarn("failed to stop poller", util.F("error", err.Error()))
		}
	}()

	util.LogInfo("following logs", util.F("filter", filter.String()), util.F("interval", followInterval.String()))
	return watchFailures(ctx, p, cmd)
}

// watchFailures reports the start and end of a failure streak on stderr
// until ctx is done
func watchFailures(ctx context.Context, p *poller.Poller, cmd *cobra.Command) error {
	failing := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.Updates():
			snap := p.Snapshot()
			switch {
			case snap.ConsecutiveFailures > 0 && !failing:
				failing = true
				fmt.Fprintf(cmd.ErrOrStderr(), "poll failed: %v (retrying every %s)\n", snap.LastError, snap.Interval)
			case snap.ConsecutiveFailures == 0 && failing && !snap.LastPoll.IsZero():
				failing = false
				fmt.Fprintln(cmd.ErrOrStderr(), "polling recovered")
			}
		}
	}
}
