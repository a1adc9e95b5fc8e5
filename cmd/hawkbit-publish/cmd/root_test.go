package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/foundriesio/hawkbit-publish/internal/config"
	"github.com/foundriesio/hawkbit-publish/internal/logger"
	"github.com/foundriesio/hawkbit-publish/internal/version"
)

// resetFlags restores the flag values shared by every run of rootCmd.
func resetFlags() {
	configPath = config.DefaultConfigFilename
	verbose = false
	logLevel = "info"
	force = false

	logger.SetLevel(zapcore.InfoLevel)
}

// execute runs rootCmd with args on freshly reset flags.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	// A nil slice would make cobra fall back to os.Args.
	rootCmd.SetArgs(append([]string{}, args...))

	err := rootCmd.Execute()

	return out.String(), err
}

// TestInitWritesDefaults writes a loadable settings file and refuses to overwrite it.
//
//nolint:paralleltest // Commands share package-level flag state.
func TestInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	_, err := execute(t, "init", "--config", path)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	_, err = execute(t, "init", "--config", path)
	require.ErrorIs(t, err, errConfigExists)

	_, err = execute(t, "init", "--config", path, "--force")
	require.NoError(t, err)
}

// TestVersionSubcommand prints the build information.
//
//nolint:paralleltest // Commands share package-level flag state.
func TestVersionSubcommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, version.Full()+"\n", out)
}

// TestLogLevelFlags maps --verbose and --log-level onto the global logger.
//
//nolint:paralleltest // Commands share package-level flag state.
func TestLogLevelFlags(t *testing.T) {
	_, err := execute(t, "version", "--log-level", "warn")
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, logger.Level())

	_, err = execute(t, "version", "--verbose", "--log-level", "warn")
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, logger.Level())

	_, err = execute(t, "version", "--log-level", "loud")
	require.ErrorIs(t, err, errUnknownLogLevel)
}

// TestRootRequiresPublishFlags rejects a run without the artifact description.
//
//nolint:paralleltest // Commands share package-level flag state.
func TestRootRequiresPublishFlags(t *testing.T) {
	_, err := execute(t)
	require.ErrorContains(t, err, "required flag")
}
