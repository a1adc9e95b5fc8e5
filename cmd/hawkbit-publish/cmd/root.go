package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/foundriesio/hawkbit-publish/internal/config"
	"github.com/foundriesio/hawkbit-publish/internal/logger"
	"github.com/foundriesio/hawkbit-publish/internal/service/publisher"
	"github.com/foundriesio/hawkbit-publish/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// verbose switches logging to debug level.
	verbose bool
	// logLevel is an explicit zap level, ignored when verbose is set.
	logLevel string

	// request is filled from the publishing flags.
	request publisher.Request

	// Endpoint overrides; empty keeps the configured value.
	softwareModulesURL  string
	distributionSetsURL string
	rolloutsURL         string

	// journalPath overrides the configured journal file.
	journalPath string

	// force allows init to overwrite an existing settings file.
	force bool

	errUnknownLogLevel = errors.New("unknown log level")
	errConfigExists    = errors.New("settings file already exists, use --force to overwrite")

	// rootCmd publishes an artifact to hawkBit and optionally rolls it out.
	rootCmd = &cobra.Command{
		Use:   version.Name,
		Short: "Publish an artifact to hawkBit and optionally roll it out",
		Long: "Create a software module, upload the artifact, bundle it into a distribution set " +
			"and, when a target filter is given, create, start and follow a rollout.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return applyLogLevel()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &publisher.Options{
				ConfigPath:          configPath,
				Request:             request,
				SoftwareModulesURL:  softwareModulesURL,
				DistributionSetsURL: distributionSetsURL,
				RolloutsURL:         rolloutsURL,
				JournalPath:         journalPath,
			}

			return publisher.Run(ctx, options)
		},
	}

	// initCmd writes a settings file filled with defaults.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(configPath); err == nil {
					return fmt.Errorf("%s: %w", configPath, errConfigExists)
				}
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			logger.InfoKV(cmd.Context(), "Wrote default settings", "path", configPath)

			return nil
		},
	}
)

// Execute runs the hawkbit-publish CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf(context.Background(), "%s failed: %v", version.Name, err)
		os.Exit(1)
	}
}

// applyLogLevel sets the global level from --verbose or --log-level.
func applyLogLevel() error {
	if verbose {
		logger.SetLevel(zapcore.DebugLevel)
		return nil
	}

	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("%q: %w", logLevel, errUnknownLogLevel)
	}

	logger.SetLevel(level)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	persistent.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	persistent.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flags := rootCmd.Flags()
	flags.StringVarP(&request.Vendor, "provider", "p", "", "software module and distribution set vendor")
	flags.StringVarP(&request.Name, "name", "n", "", "software module name")
	flags.StringVarP(&request.Type, "type", "t", "", "software module type")
	flags.StringVar(&request.Version, "swversion", "", "software version")
	flags.StringVarP(&request.Description, "description", "d", "", "description (default \"Published by <user>@<host>\")")
	flags.StringVarP(&request.ArtifactPath, "file", "f", "", "artifact to upload")
	flags.StringVar(&request.DistributionType, "distribution-type", "", "distribution set type (default is the module type)")
	flags.StringVarP(&request.RolloutFilter, "rollout", "r", "", "target filter query; no rollout is created when empty")
	flags.IntVar(&request.RolloutCount, "rollout-count", 1, "number of rollouts that should exist for this version")

	flags.StringVar(&softwareModulesURL, "software-modules", "", "software modules URL (overrides settings)")
	flags.StringVar(&distributionSetsURL, "distribution-sets", "", "distribution sets URL (overrides settings)")
	flags.StringVar(&rolloutsURL, "rollouts", "", "rollouts URL (overrides settings)")
	flags.StringVar(&journalPath, "journal", "", "file to record the run in (overrides settings)")

	for _, name := range []string{"provider", "name", "type", "swversion", "file"} {
		_ = rootCmd.MarkFlagRequired(name)
	}

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")

	rootCmd.AddCommand(initCmd, version.NewCommand())
}
