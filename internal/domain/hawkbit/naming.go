package hawkbit

import (
	"strconv"
	"strings"
)

// Cycle is one module, artifact, distribution set and rollout pass.
type Cycle struct {
	// Index is the numeric suffix of this cycle.
	Index int
	// Suffixed is set when several rollouts were requested and names need the index.
	Suffixed bool
}

// Version returns the module and distribution set version of the cycle.
func (c Cycle) Version(base string) string {
	if !c.Suffixed {
		return base
	}

	return base + "-" + strconv.Itoa(c.Index)
}

// RolloutName returns the rollout name of the cycle, e.g. "RO-1.0-2".
func (c Cycle) RolloutName(prefix, base string) string {
	return RolloutMarker(prefix, c.Version(base))
}

// RolloutMarker is the substring shared by every rollout of a version, e.g. "RO-1.0".
func RolloutMarker(prefix, version string) string {
	return prefix + "-" + version
}

// CountMatching returns how many names contain marker.
func CountMatching(names []string, marker string) int {
	count := 0

	for _, name := range names {
		if strings.Contains(name, marker) {
			count++
		}
	}

	return count
}

// PlanCycles returns the cycles still needed for desired rollouts to exist
// when existing ones are already on the server.
func PlanCycles(existing, desired int) []Cycle {
	if desired <= 1 {
		if existing >= 1 {
			return nil
		}

		return []Cycle{{Index: 0}}
	}

	if existing >= desired {
		return nil
	}

	cycles := make([]Cycle, 0, desired-existing)
	for i := existing; i < desired; i++ {
		cycles = append(cycles, Cycle{Index: i, Suffixed: true})
	}

	return cycles
}
