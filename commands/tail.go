package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-log-monitor/internal/application/tail"
	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/poller"
	"github.com/penwyp/go-log-monitor/internal/data/profile"
	"github.com/penwyp/go-log-monitor/internal/util"
)

var (
	// Polling related flags
	tailInterval      time.Duration
	tailCapacity      int
	tailRetryAttempts int
	tailRetryBase     time.Duration

	// Filter flags
	tailLevel   string
	tailModule  string
	tailSearch  string
	tailProfile string

	// Display related flags
	tailTimeFormat       string
	tailStatsInterval    time.Duration
	tailRefreshPerSecond float64
)

const defaultProfilePath = "~/.go-log-monitor/profile.json"

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow new log records in a live terminal view",
	Long: `Polls the log stream endpoint and shows the newest records in a live view,
together with the request and error-rate summary cards.

Each poll sends the cursor returned by the previous one, so only records
newer than the last batch are fetched. The view keeps the newest --capacity
records; older ones drop off the bottom.

Keys: p/space pause, a/i/w/e level, / search, m module, c clear filters,
r reload, s save filters, t layout, h help, q quit.`,
	SilenceUsage: true,
	RunE:         runTail,
}

func init() {
	rootCmd.AddCommand(tailCmd)

	// Polling flags
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "n", poller.DefaultInterval,
		"Time between polls")
	tailCmd.Flags().IntVar(&tailCapacity, "capacity", poller.DefaultCapacity,
		"Number of records kept on screen")
	tailCmd.Flags().IntVar(&tailRetryAttempts, "retry-attempts", 0,
		"Retries of a failed poll within one interval (0 disables)")
	tailCmd.Flags().DurationVar(&tailRetryBase, "retry-base", poller.DefaultRetryBase,
		"First retry delay, doubled per attempt and capped at the interval")

	// Filter flags
	tailCmd.Flags().StringVarP(&tailLevel, "level", "l", "",
		"Initial level filter (ALL, INFO, WARNING, ERROR); overrides the profile")
	tailCmd.Flags().StringVarP(&tailModule, "module", "m", "",
		"Initial module filter; overrides the profile")
	tailCmd.Flags().StringVarP(&tailSearch, "search", "s", "",
		"Initial search text; overrides the profile")
	tailCmd.Flags().StringVar(&tailProfile, "profile", defaultProfilePath,
		"Saved filter file, watched for changes (empty disables)")

	// Display flags
	tailCmd.Flags().StringVar(&tailTimeFormat, "time-format", "24h",
		"Time format (12h or 24h)")
	tailCmd.Flags().DurationVar(&tailStatsInterval, "stats-interval", 0,
		"Time between summary card refreshes (defaults to --interval)")
	tailCmd.Flags().Float64Var(&tailRefreshPerSecond, "refresh-per-second", 1,
		"Display refresh rate (0.1-20 Hz)")
}

func runTail(cmd *cobra.Command, args []string) error {
	// Validate time format
	if tailTimeFormat != "12h" && tailTimeFormat != "24h" {
		return fmt.Errorf("invalid time format '%s': must be either '12h' or '24h'", tailTimeFormat)
	}

	if err := initRuntime(timezone); err != nil {
		return err
	}

	config, err := buildTailConfig(cmd)
	if err != nil {
		return err
	}

	orchestrator, err := tail.NewOrchestrator(config)
	if err != nil {
		return err
	}

	// Set up signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return orchestrator.Run(ctx)
}

// buildTailConfig merges the saved profile with explicit filter flags
func buildTailConfig(cmd *cobra.Command) (*tail.TailConfig, error) {
	filter := model.DefaultFilter()
	profilePath := ""
	if tailProfile != "" {
		profilePath = expandPath(tailProfile)
		// the watcher needs the directory even before the first save
		if err := ensureDir(filepath.Dir(profilePath)); err != nil {
			return nil, fmt.Errorf("failed to create profile directory: %w", err)
		}
		p, err := profile.Load(profilePath)
		if err != nil {
			util.LogWarn("ignoring unreadable profile", util.F("path", profilePath), util.F("error", err.Error()))
		} else {
			filter = p.Filter()
		}
	}

	flags := cmd.Flags()
	if flags.Changed("level") {
		lf, err := filterFromFlags(tailLevel, "", "")
		if err != nil {
			return nil, err
		}
		filter.Level = lf.Level
	}
	if flags.Changed("module") {
		filter.Module = tailModule
	}
	if flags.Changed("search") {
		filter.Search = tailSearch
	}

	config := &tail.TailConfig{
		APIURL:        apiURL,
		Timeout:       apiTimeout,
		Interval:      tailInterval,
		Capacity:      tailCapacity,
		RetryAttempts: tailRetryAttempts,
		RetryBase:     tailRetryBase,
		Filter:        filter,
		StatsInterval: tailStatsInterval,
		UIRefreshRate: tailRefreshPerSecond,
		Timezone:      normalizeTimezone(timezone),
		TimeFormat:    tailTimeFormat,
		ProfilePath:   profilePath,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
