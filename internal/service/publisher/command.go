package publisher

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	hawkbit "github.com/foundriesio/hawkbit-publish/internal/client/hawkbit"
	"github.com/foundriesio/hawkbit-publish/internal/config"
	"github.com/foundriesio/hawkbit-publish/internal/logger"
	"github.com/foundriesio/hawkbit-publish/internal/repository/journal"
	"github.com/foundriesio/hawkbit-publish/internal/service/common"
)

// Options contains inputs for the publisher entry point.
type Options struct {
	// ConfigPath is an optional settings file; defaults apply when it does not exist.
	ConfigPath string

	// Request is what to publish.
	Request Request

	// SoftwareModulesURL overrides the configured endpoint when set.
	SoftwareModulesURL string
	// DistributionSetsURL overrides the configured endpoint when set.
	DistributionSetsURL string
	// RolloutsURL overrides the configured endpoint when set.
	RolloutsURL string
	// JournalPath overrides the configured journal file when set.
	JournalPath string

	// ClientOptions are passed to the hawkBit client, e.g. a test HTTP client.
	ClientOptions []hawkbit.Option
	// SkipInstanceCheck disables the single-instance guard.
	SkipInstanceCheck bool
}

// Run loads settings, checks the server and publishes the request.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name and a run id for tracking.
	ctx = logger.WithName(ctx, "hawkbit-publish")
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

	if !opts.SkipInstanceCheck {
		if err := common.EnsureSingleInstance(ctx); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	req := opts.Request
	if req.Description == "" {
		req.Description = common.DefaultDescription()
	}

	if err = req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	client, err := hawkbit.NewFromConfig(ctx, cfg, opts.ClientOptions...)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}

	pub := New(cfg, client)

	if err = pub.CheckServer(ctx); err != nil {
		return fmt.Errorf("server check failed: %w", err)
	}

	reports, err := pub.Publish(ctx, &req)

	if cfg.JournalPath != "" {
		recordPublication(ctx, journal.NewFileRepository(cfg.JournalPath, journal.DefaultMaxEntries), &req, reports, err)
	}

	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	for _, r := range reports {
		logger.InfoKV(ctx, "Published",
			"version", r.Version,
			"module_id", r.ModuleID,
			"distribution_set_id", r.DistributionSetID,
			"rollout", r.RolloutName,
			"rollout_id", r.RolloutID)
	}

	logger.Info(ctx, "Publisher completed successfully")

	return nil
}

// loadConfig reads the settings file and applies the endpoint overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.SoftwareModulesURL != "" {
		cfg.SoftwareModulesURL = opts.SoftwareModulesURL
	}

	if opts.DistributionSetsURL != "" {
		cfg.DistributionSetsURL = opts.DistributionSetsURL
	}

	if opts.RolloutsURL != "" {
		cfg.RolloutsURL = opts.RolloutsURL
	}

	if opts.JournalPath != "" {
		cfg.JournalPath = opts.JournalPath
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
