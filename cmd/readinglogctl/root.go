package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/readinglog/readinglog-server/internal/config"
	"github.com/readinglog/readinglog-server/internal/di"
	"github.com/readinglog/readinglog-server/internal/logger"
)

var (
	dataDir    string
	envFile    string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "readinglogctl",
	Short: "Administer a ReadingLog server's data directory",
	Long: `readinglogctl operates directly on the database and search index of a
ReadingLog data directory. Stop the server first or point it at a copy.

Configuration is read the same way the server reads it: flags, then
environment (DATA_PATH and friends), then the .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Data directory (defaults to the server's configured path)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// newInjector builds the service graph without the HTTP server or background
// jobs. Callers must shut it down.
func newInjector() *do.RootScope {
	injector := do.New()
	di.RegisterCore(injector)

	do.Override(injector, func(i do.Injector) (*config.Config, error) {
		return config.Load(&config.Flags{DataPath: dataDir, EnvFile: envFile})
	})
	do.Override(injector, func(i do.Injector) (*logger.Logger, error) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return logger.New(logger.Config{Writer: os.Stderr, Format: "pretty", Level: level}), nil
	})

	return injector
}

// withServices runs fn against a fresh injector and closes the store and
// search index afterwards.
func withServices(fn func(i do.Injector) error) error {
	injector := newInjector()
	defer func() { _ = injector.Shutdown() }()
	return fn(injector)
}
