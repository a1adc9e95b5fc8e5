package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the hawkBit connection and rollout parameters used by the publisher.
type Config struct {
	// SoftwareModulesURL is the management API endpoint for software modules.
	SoftwareModulesURL string `yaml:"software_modules_url"`
	// DistributionSetsURL is the management API endpoint for distribution sets.
	DistributionSetsURL string `yaml:"distribution_sets_url"`
	// RolloutsURL is the management API endpoint for rollouts.
	RolloutsURL string `yaml:"rollouts_url"`
	// Username is the basic auth user.
	Username string `yaml:"username"`
	// Password is the basic auth password.
	Password string `yaml:"password"`
	// Timeout is the duration of a single HTTP request.
	Timeout time.Duration `yaml:"timeout"`
	// RetryMax is the number of retries for transient transport failures.
	RetryMax int `yaml:"retry_max"`
	// StartDelay is how long to wait between creating a rollout and starting it.
	StartDelay time.Duration `yaml:"start_delay"`
	// PollInterval is the interval between rollout status checks.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Rollout holds the group and threshold settings of created rollouts.
	Rollout Rollout `yaml:"rollout"`
	// JournalPath is the file runs are recorded to. Empty disables the journal.
	JournalPath string `yaml:"journal_path"`
}

// Rollout describes how created rollouts split and advance through groups.
type Rollout struct {
	// NamePrefix is prepended to the version to build rollout names.
	NamePrefix string `yaml:"name_prefix"`
	// AmountGroups is the number of deployment groups.
	AmountGroups int `yaml:"amount_groups"`
	// SuccessThreshold is the percentage of finished targets that advances to the next group.
	SuccessThreshold int `yaml:"success_threshold"`
	// ErrorThreshold is the percentage of failed targets that pauses the rollout.
	ErrorThreshold int `yaml:"error_threshold"`
}

const (
	// DefaultConfigFilename is the default filename for publisher settings.
	DefaultConfigFilename = "hawkbit-publish-settings.yaml"

	// DefaultSoftwareModulesURL points at a local hawkBit instance.
	DefaultSoftwareModulesURL = "http://localhost:8080/rest/v1/softwaremodules"

	// DefaultDistributionSetsURL points at a local hawkBit instance.
	DefaultDistributionSetsURL = "http://localhost:8080/rest/v1/distributionsets"

	// DefaultRolloutsURL points at a local hawkBit instance.
	DefaultRolloutsURL = "http://localhost:8080/rest/v1/rollouts"

	// DefaultUsername and DefaultPassword match a fresh hawkBit installation.
	DefaultUsername = "admin"
	DefaultPassword = "admin"

	// DefaultTimeout is the default duration for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryMax is the default number of transport retries.
	DefaultRetryMax = 3

	// DefaultStartDelay lets the server settle before a rollout is started.
	DefaultStartDelay = 5 * time.Second

	// DefaultPollInterval is the default interval between rollout status checks.
	DefaultPollInterval = 5 * time.Second

	// DefaultRolloutPrefix is the prefix of rollout names.
	DefaultRolloutPrefix = "RO"

	// DefaultAmountGroups is the default number of rollout groups.
	DefaultAmountGroups = 1

	// DefaultSuccessThreshold advances to the next group once every target succeeded.
	DefaultSuccessThreshold = 100

	// DefaultErrorThreshold pauses the rollout once this share of targets failed.
	DefaultErrorThreshold = 80

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	maxPercent = 100
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeRetries is returned when retry_max is below zero.
	errNegativeRetries = errors.New("retry_max must not be negative")
	// errBadThreshold is returned when a rollout threshold is not a percentage.
	errBadThreshold = errors.New("threshold must be between 0 and 100")
	// errBadGroups is returned when amount_groups is below one after defaults.
	errBadGroups = errors.New("amount_groups must be positive")
)

// Default returns a configuration populated with defaults.
func Default() *Config {
	cfg := &Config{
		RetryMax: DefaultRetryMax,
	}

	// Validate fills every other unset field.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	// Keys missing from the file keep their defaults.
	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Credentials live here, restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for unset fields and checks URLs and rollout thresholds.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	setDefaults(cfg)

	endpoints := map[string]string{
		"software_modules_url":  cfg.SoftwareModulesURL,
		"distribution_sets_url": cfg.DistributionSetsURL,
		"rollouts_url":          cfg.RolloutsURL,
	}

	for name, value := range endpoints {
		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if cfg.RetryMax < 0 {
		return errNegativeRetries
	}

	if cfg.Rollout.AmountGroups < 1 {
		return errBadGroups
	}

	for name, value := range map[string]int{
		"success_threshold": cfg.Rollout.SuccessThreshold,
		"error_threshold":   cfg.Rollout.ErrorThreshold,
	} {
		if value < 0 || value > maxPercent {
			return fmt.Errorf("%s %d: %w", name, value, errBadThreshold)
		}
	}

	return nil
}

//nolint:cyclop // One branch per field is the clearest form.
func setDefaults(cfg *Config) {
	if cfg.SoftwareModulesURL == "" {
		cfg.SoftwareModulesURL = DefaultSoftwareModulesURL
	}

	if cfg.DistributionSetsURL == "" {
		cfg.DistributionSetsURL = DefaultDistributionSetsURL
	}

	if cfg.RolloutsURL == "" {
		cfg.RolloutsURL = DefaultRolloutsURL
	}

	if cfg.Username == "" {
		cfg.Username = DefaultUsername
		cfg.Password = DefaultPassword
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.StartDelay <= 0 {
		cfg.StartDelay = DefaultStartDelay
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.Rollout.NamePrefix == "" {
		cfg.Rollout.NamePrefix = DefaultRolloutPrefix
	}

	if cfg.Rollout.AmountGroups == 0 {
		cfg.Rollout.AmountGroups = DefaultAmountGroups
	}

	// Zero is a legal threshold but an unusual one, treat it as unset.
	if cfg.Rollout.SuccessThreshold == 0 {
		cfg.Rollout.SuccessThreshold = DefaultSuccessThreshold
	}

	if cfg.Rollout.ErrorThreshold == 0 {
		cfg.Rollout.ErrorThreshold = DefaultErrorThreshold
	}
}
