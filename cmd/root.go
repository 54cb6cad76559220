// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-trending/internal/config"
	"github.com/naka-gawa/github-trending/internal/formatter"
	"github.com/naka-gawa/github-trending/internal/gateway"
	"github.com/naka-gawa/github-trending/internal/logging"
	"github.com/naka-gawa/github-trending/internal/storage"
	"github.com/naka-gawa/github-trending/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "github-trending",
	Short: "A CLI tool to collect daily GitHub trending reports.",
	Long: `github-trending searches GitHub for recently created, highly starred
repositories per language and writes one dated markdown report per language.
The reports can be browsed through a small local HTTP server.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Also write logs to stderr")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to the YAML config file (or TRENDING_CONFIG)")
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	settings config.Settings
	logger   *logging.Logger
	closer   io.Closer
}

// setup loads configuration and the logger, exiting on failure.
func setup(cmd *cobra.Command) *app {
	verbose, _ := cmd.Flags().GetBool("verbose")
	path, _ := cmd.Flags().GetString("config")

	env, err := config.LoadEnv()
	if err != nil {
		fail("Failed to read environment: %v", err)
	}
	if !cmd.Flags().Changed("config") && env.ConfigPath != "" {
		path = env.ConfigPath
	}

	tree, err := config.Load(path)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	// config.Load also reads .env, so the overrides are taken again afterwards.
	if env, err = config.LoadEnv(); err != nil {
		fail("Failed to read environment: %v", err)
	}
	settings := env.Apply(config.NewSettings(tree))

	logger, closer, err := logging.Setup(settings.Logging, verbose)
	if err != nil {
		fail("Failed to set up logging: %v", err)
	}
	if settings.GitHub.Token == "" {
		logger.Warnf("No GitHub token configured, requests are unauthenticated")
	}
	return &app{settings: settings, logger: logger, closer: closer}
}

func (a *app) Close() {
	_ = a.closer.Close()
}

func (a *app) gateway() *gateway.GitHubGateway {
	g, err := gateway.NewGitHubGateway(a.settings.GitHub, a.logger)
	if err != nil {
		fail("Failed to create GitHub gateway: %v", err)
	}
	return g
}

func (a *app) store() *storage.ReportStore {
	return storage.NewReportStore(a.settings.Output.Dir)
}

func (a *app) collector() *usecase.Collector {
	return usecase.NewCollector(
		a.gateway(),
		formatter.NewFormatter(a.settings.Output.TemplateDir, a.logger),
		a.store(),
		a.settings.Fetch,
		a.logger,
	)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
