package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty config gets defaults.
	cfg := new(Config)

	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultSoftwareModulesURL, cfg.SoftwareModulesURL)
	require.Equal(t, DefaultRolloutsURL, cfg.RolloutsURL)
	require.Equal(t, DefaultUsername, cfg.Username)
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	require.Equal(t, DefaultSuccessThreshold, cfg.Rollout.SuccessThreshold)
	require.Equal(t, DefaultErrorThreshold, cfg.Rollout.ErrorThreshold)

	// Bad URL.
	cfg = &Config{
		SoftwareModulesURL: "not a url",
	}

	require.Error(t, Validate(cfg))

	// Threshold out of range.
	cfg = &Config{
		Rollout: Rollout{ErrorThreshold: 120},
	}

	require.ErrorIs(t, Validate(cfg), errBadThreshold)

	// Negative groups.
	cfg = &Config{
		Rollout: Rollout{AmountGroups: -1},
	}

	require.ErrorIs(t, Validate(cfg), errBadGroups)

	// Negative retries.
	cfg = &Config{
		RetryMax: -1,
	}

	require.ErrorIs(t, Validate(cfg), errNegativeRetries)

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		SoftwareModulesURL: "https://hawkbit.example.com/rest/v1/softwaremodules",
		Username:           "publisher",
		Password:           "secret",
		PollInterval:       time.Minute,
		Rollout: Rollout{
			NamePrefix:   "FLEET",
			AmountGroups: 4,
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.SoftwareModulesURL, loaded.SoftwareModulesURL)
	require.Equal(t, cfg.Username, loaded.Username)
	require.Equal(t, cfg.Password, loaded.Password)
	require.Equal(t, time.Minute, loaded.PollInterval)
	require.Equal(t, "FLEET", loaded.Rollout.NamePrefix)
	require.Equal(t, 4, loaded.Rollout.AmountGroups)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoad_PartialFileKeepsDefaults verifies keys missing from YAML keep their defaults.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("username: ci\npassword: pw\n"), DefaultFilePermissions))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ci", loaded.Username)
	require.Equal(t, DefaultRetryMax, loaded.RetryMax)
	require.Equal(t, DefaultDistributionSetsURL, loaded.DistributionSetsURL)
}

// TestLoadOrDefault_MissingFile falls back to defaults when the file does not exist.
func TestLoadOrDefault_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
