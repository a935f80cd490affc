// Package cli provides the command-line interface for peppy.
package cli

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/user/peppy/internal/config"
)

// Global flags
var (
	jsonOutput bool
	configPath string
	quiet      bool
	verbose    bool
)

// settings holds the runtime configuration loaded before every command.
var settings = &config.Config{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "peppy",
	Short: "Inspect sample-annotated projects",
	Long: `Peppy loads a project config and its sample annotation sheets and
reports on the samples they describe.

Features:
  - Project configs: metadata, data sources, derived and implied attributes
  - Sample sheets: CSV, TSV and XLSX, with subannotations
  - Pipeline status: read run flags per sample, optionally watching for changes
  - Sample index: SQLite index for large projects`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ReportError(err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Project config (default: $PEPPY_CONFIG or nearest project_config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug output")
}

// loadSettings reads runtime settings and configures logging.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logger.Level = "debug"
	} else if quiet {
		cfg.Logger.Level = "error"
	}
	config.InitLogger(cfg)
	log.SetOutput(cmd.ErrOrStderr())

	settings = cfg
	return nil
}

// ExitCode is used to communicate exit codes for testing
var ExitCode int

// ExitFunc is the function called to exit the program
// Can be overridden for testing
var ExitFunc = os.Exit

// Exit sets the exit code and calls the exit function
func Exit(code int) {
	ExitCode = code
	ExitFunc(code)
}

// GetJSONOutput returns whether JSON output is enabled
func GetJSONOutput() bool {
	return jsonOutput
}

// GetConfigPath returns the --config flag value, falling back to $PEPPY_CONFIG
func GetConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return settings.Config
}

// IsQuiet returns whether quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
