// =============================================================================
// Wisconsin Excise XML - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached here and shares the configuration and logger built before it runs.
//
// COBRA CLI STRUCTURE:
//   rootCmd (excise)
//   ├── generateCmd (excise generate)
//   ├── mapCmd      (excise map)
//   ├── validateCmd (excise validate)
//   ├── templateCmd (excise template)
//   ├── configCmd   (excise config show|set-filer|set-defaults)
//   ├── serveCmd    (excise serve)
//   └── versionCmd  (excise version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --env-file, --verbose)
//   2. Loading the main configuration
//   3. Building the zap logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/wi-excise-xml/internal/config"
	"github.com/ginjaninja78/wi-excise-xml/internal/converter"
	"github.com/ginjaninja78/wi-excise-xml/internal/logging"
	"github.com/ginjaninja78/wi-excise-xml/internal/store"
	"github.com/ginjaninja78/wi-excise-xml/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is an optional .env file applied before EXCISE_* overrides.
var envFile string

// verbose forces debug logging.
var verbose bool

// appConfig and logger are set by the root command before any subcommand runs.
var (
	appConfig *config.MainConfig
	logger    *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "excise",
	Short: "Wisconsin excise tax XML generator (AB136 / AB137)",
	Long: `excise converts shipment spreadsheets into Wisconsin excise tax XML filings
for common carriers (AB136) and wine fulfillment houses (AB137), validates them
against the state schema, and explains any rejection in plain language.

Example Usage:
  excise template --type CommonCarrier > shipments.csv
  excise generate shipments.csv --begin 2025-10-01 --end 2025-10-31
  excise validate CommonCarrier_20251031_120000.xml
  excise serve                              # JSON API for the web form`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile, envFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log, err := logging.New(level, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}

		appConfig = cfg
		logger = log
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file with EXCISE_* overrides (ignored when missing)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED CONSTRUCTORS
// =============================================================================

func newStore() *store.Store {
	return store.New(appConfig.ConfigDir, logger)
}

func newValidator() *validation.Validator {
	return validation.New(validation.NewXMLLint(appConfig.XMLLintPath, logger), logger)
}

func newConverter() *converter.Converter {
	return converter.New(appConfig, newValidator(), logger)
}
