package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-log-monitor/internal/util"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download all logs as CSV",
	Long: `Downloads the server's CSV export. By default the file is written to
sb-export-YYYY-MM-DD.csv in the current directory; use --out - for stdout.`,
	SilenceUsage: true,
	RunE:         runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "",
		"Output file (default sb-export-YYYY-MM-DD.csv, - for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := initRuntime(timezone); err != nil {
		return err
	}

	api, err := newAPIClient()
	if err != nil {
		return err
	}

	// a full export may take longer than a single page request
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if exportOut == "-" {
		_, err := api.ExportCSV(ctx, cmd.OutOrStdout())
		return err
	}

	path := exportOut
	if path == "" {
		path = defaultExportName()
	}
	path = expandPath(path)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// write to a temporary file so a failed download leaves no partial export
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := api.ExportCSV(ctx, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	util.LogInfo("export written", util.F("path", path), util.F("bytes", n))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", util.FormatBytes(n), path)
	return nil
}

func defaultExportName() string {
	return "sb-export-" + util.GetTimeProvider().Today() + ".csv"
}
