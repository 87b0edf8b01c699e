package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mfcexport/pkg/config"
	"mfcexport/pkg/exporter"
	"mfcexport/pkg/logger"
	"mfcexport/pkg/ui"
)

// exportOptions are the flags of an export run
type exportOptions struct {
	outputDir   string
	baseURL     string
	timeout     time.Duration
	onAmbiguous string
	preview     int
	noSummary   bool
}

func addExportFlags(cmd *cobra.Command, opts *exportOptions) {
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "output directory for the CSV file (default: current directory)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "MyFigureCollection base URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "HTTP request timeout (default 30s)")
	cmd.Flags().StringVar(&opts.onAmbiguous, "on-ambiguous", "", "what to do when an id matches several items: abort or skip (default abort)")
	cmd.Flags().IntVar(&opts.preview, "preview", 0, "print the first N exported rows")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "do not print the summary table")
}

func newExportCmd(global *globalOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "Export a user's owned figures to CSV",
		Long: `Export every figure a MyFigureCollection user owns to mfcexport-<username>.csv.

Spaces in the username become underscores in the file name. An existing
export for the same user is replaced only once the whole run succeeds.`,
		Example: `  mfcexport export alice
  mfcexport export "figure fan" --output ./exports --preview 10`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return printUsage(cmd)
			}
			return runExport(cmd, global, opts, args[0])
		},
	}

	addExportFlags(cmd, opts)
	return cmd
}

// flagOverrides builds the config override map from flags the user set
func flagOverrides(cmd *cobra.Command, global *globalOptions, opts *exportOptions) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("output") {
		flags["output-dir"] = opts.outputDir
	}
	if changed("base-url") {
		flags["base-url"] = opts.baseURL
	}
	if changed("timeout") {
		flags["timeout"] = opts.timeout
	}
	if changed("on-ambiguous") {
		flags["on-ambiguous"] = opts.onAmbiguous
	}
	if changed("log-file") {
		flags["log-file"] = global.logFile
	}

	// Progress output is the default view, so logs stay at warnings unless
	// a flag, the environment or an explicit config file asks for more
	switch {
	case global.verbose:
		flags["log-level"] = "debug"
	case changed("log-level"):
		flags["log-level"] = global.logLevel
	case !changed("config") && os.Getenv("MFCEXPORT_LOG_LEVEL") == "":
		flags["log-level"] = "warn"
	}

	return flags
}

func runExport(cmd *cobra.Command, global *globalOptions, opts *exportOptions, username string) error {

	cfg, err := config.Load(global.configFile, flagOverrides(cmd, global, opts))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return &reportedError{err}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return &reportedError{err}
	}
	logger.WithField("version", version).Info("mfcexport starting")

	ui.PrintBanner()
	ui.PrintInfo("Username", username)

	e, err := exporter.NewFromConfig(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize exporter", err.Error())
		return &reportedError{err}
	}

	progress := ui.NewProgressDisplay(username, strings.EqualFold(cfg.Logging.Level, "debug"))
	e.SetProgress(progress)

	result, err := e.Export(cmd.Context(), username)
	progress.Complete()

	var ambiguous *exporter.AmbiguousItemError
	switch {
	case errors.Is(err, exporter.ErrNoPages):
		ui.PrintWarning("No pages returned, please check your username")
		return nil
	case errors.As(err, &ambiguous):
		ui.PrintError(fmt.Sprintf("API returned more than one item for item id %d, aborting", ambiguous.ID))
		return &reportedError{err}
	case err != nil:
		ui.PrintError("Export failed", err)
		return &reportedError{err}
	}

	ui.PrintSuccess(fmt.Sprintf("Wrote %d figures to %s", len(result.Records), result.Path))
	if len(result.Skipped) > 0 {
		ui.PrintWarning("Skipped ambiguous or missing items", len(result.Skipped))
	}

	if !ui.IsQuietMode() {
		if !opts.noSummary {
			ui.RenderSummary(ui.Output(), result.Summary())
		}
		if opts.preview > 0 {
			ui.RenderPreview(ui.Output(), result.Records, opts.preview)
		}
	}

	return nil
}
