package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"mfcexport/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
	logLevel   string
	logFile    string
	quiet      bool
	verbose    bool
}

// reportedError marks an error that has already been shown to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// newRootCmd builds the command tree. Running the root command with one
// argument exports that username; any other arity prints usage.
func newRootCmd() *cobra.Command {
	global := &globalOptions{}
	export := &exportOptions{}

	rootCmd := &cobra.Command{
		Use:   "mfcexport [flags] <username>",
		Short: "Export a MyFigureCollection collection to CSV",
		Long: `mfcexport writes the figures a MyFigureCollection user owns to a CSV file.

It reads the user's public collection listing, looks every figure up through
the MFC JSON API and writes mfcexport-<username>.csv sorted by figure ID with
name, price, release date, owned count and image links.

Subcommand names take precedence over usernames. To export a user called
"export", "config" or "version", put the username after "--".`,
		Example: `  # Export alice's collection into the current directory
  mfcexport alice

  # Write into another directory and skip ambiguous items
  mfcexport alice --output ./exports --on-ambiguous skip

  # Export a user whose name matches a subcommand
  mfcexport --output ./exports -- version`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if global.quiet {
				ui.SetQuietMode(true)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return printUsage(cmd)
			}
			return runExport(cmd, global, export, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&global.configFile, "config", "c", "", "config file (default is .mfcexport.yaml or ~/.config/mfcexport/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&global.logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&global.logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVarP(&global.quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "show debug logs alongside progress")

	// The root command exports directly, so it carries the export flags too
	addExportFlags(rootCmd, export)

	rootCmd.SetVersionTemplate(`mfcexport {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newExportCmd(global))
	rootCmd.AddCommand(newConfigCmd(global))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// printUsage reports wrong arity. It is not an error.
func printUsage(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Usage: mfcexport <username>")
	fmt.Fprintln(cmd.OutOrStdout(), "       mfcexport [flags] -- <username>")
	fmt.Fprintln(cmd.OutOrStdout())
	return cmd.Usage()
}

// Execute runs the CLI with args and returns the process exit code
func Execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		ui.PrintError("Error", err)
	}
	return 1
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mfcexport %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", gitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", buildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
