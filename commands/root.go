package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/penwyp/go-log-monitor/internal/core/model"
	"github.com/penwyp/go-log-monitor/internal/core/query"
	"github.com/penwyp/go-log-monitor/internal/data/client"
	"github.com/penwyp/go-log-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-log-monitor/internal/presentation/layout"
	"github.com/penwyp/go-log-monitor/internal/util"
)

var (
	// API connection
	apiURL     string
	apiTimeout time.Duration

	// Logging related
	debug   bool
	logFile string

	// Output related
	outputFormat string
	timezone     string

	// Filtering
	levelFlag  string
	moduleFlag string
	searchFlag string
	limit      int

	rootCmd = &cobra.Command{
		Use:   "go-log-monitor [flags]",
		Short: "Terminal client for the log analytics API",
		Long: `go-log-monitor is a command-line client for a log analytics HTTP API.

Without a subcommand it fetches the most recent log records once and prints
them. Use "tail" for the live view that polls for new records.

Examples:
  go-log-monitor                                  # Latest 100 records as a table
  go-log-monitor --level ERROR --limit 20         # Latest 20 errors
  go-log-monitor --module db --search timeout     # Filter by module and text
  go-log-monitor --output json                    # JSON output
  go-log-monitor --api-url http://host:5000/api   # Talk to another server
  go-log-monitor tail --interval 2s               # Live view, poll every 2s`,
		SilenceUsage: true,
		RunE:         runLogs,
	}
)

const (
	defaultLogFile = "~/.go-log-monitor/logs/app.log"
	defaultLimit   = 100
)

func init() {
	// API configuration
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", client.DefaultBaseURL,
		"Base URL of the log API")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", client.DefaultTimeout,
		"HTTP request timeout")

	// Display configuration
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Diagnostic log file")
	_ = rootCmd.PersistentFlags().MarkHidden("log-file")

	// Filtering
	rootCmd.Flags().StringVarP(&levelFlag, "level", "l", string(model.FilterAll),
		"Level filter (ALL, INFO, WARNING, ERROR)")
	rootCmd.Flags().StringVarP(&moduleFlag, "module", "m", "",
		"Only records from this module")
	rootCmd.Flags().StringVarP(&searchFlag, "search", "s", "",
		"Only records whose message contains this text")
	rootCmd.Flags().IntVar(&limit, "limit", defaultLimit,
		"Maximum number of records to fetch")

	// Output configuration
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.OutputTable,
		"Output format (table, json, csv, summary)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "",
		"Alias for --output")
}

func runLogs(cmd *cobra.Command, args []string) error {
	// Handle format alias
	if format := cmd.Flags().Lookup("format"); format != nil && format.Changed {
		outputFormat = format.Value.String()
	}

	if limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", limit)
	}

	filter, err := filterFromFlags(levelFlag, moduleFlag, searchFlag)
	if err != nil {
		return err
	}

	if err := initRuntime(timezone); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	f, err := formatter.New(outputFormat, out, formatter.Options{
		TimeFormat:   formatTimestamp,
		MessageWidth: messageWidth(out),
	})
	if err != nil {
		return err
	}

	api, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), apiTimeout)
	defer cancel()

	util.LogDebug("fetching logs", util.F("filter", filter.String()), util.F("limit", limit))
	records, err := api.FetchLogs(ctx, query.ListParams(filter, limit))
	if err != nil {
		return fmt.Errorf("failed to fetch logs: %w", err)
	}

	return f.Format(records)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

// initRuntime sets up logging and the display timezone for a command run
func initRuntime(tz string) error {
	// Determine log level based on debug flag
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	path := expandPath(logFile)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(util.LoggerConfig{
		Level:          logLevel,
		File:           path,
		DebugToConsole: debug,
	}); err != nil {
		return err
	}

	tz = normalizeTimezone(tz)
	if err := util.InitializeTimeProvider(tz); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return nil
}

// normalizeTimezone maps "auto" onto the local zone
func normalizeTimezone(tz string) string {
	if tz == "auto" || tz == "" {
		return "Local"
	}
	return tz
}

func newAPIClient() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL: apiURL,
		Timeout: apiTimeout,
	})
}

func filterFromFlags(level, module, search string) (model.Filter, error) {
	lf, err := model.ParseLevelFilter(level)
	if err != nil {
		return model.Filter{}, err
	}
	return model.Filter{Level: lf, Module: module, Search: search}.Normalized(), nil
}

// formatTimestamp renders record times in the configured timezone
func formatTimestamp(t time.Time) string {
	return util.GetTimeProvider().FormatTimestamp(t)
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// messageWidth sizes the table message column to the terminal, or a fixed
// width when output is redirected
func messageWidth(w io.Writer) int {
	if !isTerminal(w) {
		return 0
	}
	sizer := layout.DetectSizer()
	// time, level and source columns plus borders
	width := sizer.Width - 19 - 7 - 24 - 13
	return max(width, 20)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
