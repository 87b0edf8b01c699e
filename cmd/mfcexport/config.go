package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"mfcexport/pkg/config"
	"mfcexport/pkg/ui"
)

const exampleConfig = `# mfcexport configuration file
#
# Every option is optional. Environment variables prefixed with MFCEXPORT_
# (for example MFCEXPORT_OUTPUT_DIR) and command line flags take precedence.

# Catalog site
site:
  # Site root used for listing pages, the item API and detail links
  base_url: "https://myfigurecollection.net"

  # User agent sent with every request (a desktop browser by default)
  # user_agent: "Mozilla/5.0 (X11; Linux x86_64)"

  # Figures shown per listing page
  items_per_page: 90

# HTTP client
http:
  # Per request timeout
  timeout: 30s

# Output file
output:
  # Directory the CSV is written to
  directory: "."

  # Terminate rows with CRLF
  crlf: true

# Export behaviour
export:
  # What to do when an id matches several items: abort or skip
  on_ambiguous: "abort"

# Logging configuration
logging:
  # Log level: debug, info, warn, error, disabled
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr
  file: ""
`

func newConfigCmd(global *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage mfcexport configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (MFCEXPORT_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Long: `Create an example configuration file with all available options.

The file is created in the current directory as '.mfcexport.yaml'
unless a different path is given with the --config flag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, global)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, global)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value ranges and allowed values
  - Output and log directory accessibility`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, global)
		},
	})

	return configCmd
}

func runConfigInit(cmd *cobra.Command, global *globalOptions) error {
	configPath := global.configFile
	if configPath == "" {
		configPath = ".mfcexport.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		err := fmt.Errorf("configuration file already exists: %s", configPath)
		ui.PrintError("Configuration file already exists", configPath)
		return &reportedError{err}
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Failed to create configuration directory", err.Error())
			return &reportedError{err}
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return &reportedError{err}
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, global *globalOptions) error {
	cfg, err := config.Load(global.configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return &reportedError{err}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return &reportedError{err}
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (MFCEXPORT_*)")
	if global.configFile != "" {
		fmt.Fprintf(out, "3. Configuration file: %s\n", global.configFile)
	} else {
		fmt.Fprintln(out, "3. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(out, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, global *globalOptions) error {
	if global.configFile != "" {
		ui.PrintInfo("Validating configuration", global.configFile)
	}

	cfg, err := config.Load(global.configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return &reportedError{err}
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	out := cmd.OutOrStdout()
	if len(problems) > 0 {
		ui.PrintError("Configuration has errors")
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return &reportedError{fmt.Errorf("%d configuration problems", len(problems))}
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Base URL: %s\n", cfg.Site.BaseURL)
	fmt.Fprintf(out, "  Output directory: %s\n", cfg.Output.Directory)
	fmt.Fprintf(out, "  Timeout: %s\n", cfg.HTTP.Timeout)
	fmt.Fprintf(out, "  On ambiguous: %s\n", cfg.Export.OnAmbiguous)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
