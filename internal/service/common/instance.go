//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/foundriesio/hawkbit-publish/internal/logger"
	"github.com/foundriesio/hawkbit-publish/internal/version"
)

// ErrAlreadyRunning is returned when another publisher process is alive.
// Two concurrent runs would count the same existing rollouts and pick clashing cycle suffixes.
var ErrAlreadyRunning = errors.New("another publisher is already running")

// processLister returns the running processes.
type processLister func() ([]ps.Process, error)

// EnsureSingleInstance fails with ErrAlreadyRunning when another hawkbit-publish process is alive.
func EnsureSingleInstance(ctx context.Context) error {
	return ensureSingleInstance(ctx, executableName(), os.Getpid(), ps.Processes)
}

func ensureSingleInstance(ctx context.Context, name string, selfPID int, list processLister) error {
	logger.Debug(ctx, "Checking for other publisher processes")

	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == selfPID {
			continue
		}

		if process.Executable() != name {
			continue
		}

		logger.WarnKV(ctx, "Found a running publisher", "pid", process.Pid())

		return fmt.Errorf("pid %d: %w", process.Pid(), ErrAlreadyRunning)
	}

	return nil
}

// executableName returns the binary name with ".exe" on Windows.
func executableName() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return version.Name + ".exe"
	}

	return version.Name
}
