package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/coderstoolbox/internal/catalog"
	"github.com/devilmonastery/coderstoolbox/internal/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config  *Config
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// Global flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
	catalogPath   string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "toolbox",
		Short:         "Browse the Coders Toolbox catalog from the terminal",
		Long:          `A command line companion for Coders Toolbox: list and read about tools, and check the identity setup of a deployment.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // main.go prints errors
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = logger.WithCommand(slog.Default().With("component", "cli"), cmd.CommandPath())
			ctx.Logger.Debug("CLI started")

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = config

			// Only catalog commands need the catalog
			if cmd.Parent() != nil && cmd.Parent().Name() == "catalog" {
				path := catalogPath
				if path == "" {
					path = config.Catalog
				}
				cat, err := catalog.Load(path)
				if err != nil {
					return err
				}
				ctx.Catalog = cat
				ctx.Logger.Debug("catalog loaded", slog.Int("tools", len(cat.Tools())))
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
	}

	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newIdentityCommand())
	rootCmd.AddCommand(newConfigCommand())

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both a file and stderr (the file defaults to the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "",
		"Catalog file to read instead of the built-in one")

	return rootCmd
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	file := logFile
	if file == "" && alsoLogStderr {
		file = logger.GetDefaultLogFile("cli")
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       file,
		LogToStderr:   logToStderr || file == "",
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
