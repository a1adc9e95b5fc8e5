package publisher

import (
	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
)

// runContext carries one cycle's inputs and everything the server returned so far.
type runContext struct {
	// cycle is the naming position of this pass.
	cycle domain.Cycle
	// version is the module and distribution set version of this cycle.
	version string
	// rolloutName is empty when no rollout is requested.
	rolloutName string

	module          *domain.SoftwareModule
	artifact        *domain.Artifact
	distributionSet *domain.DistributionSet
	rollout         *domain.Rollout
	progress        domain.RolloutProgress

	stage Stage
}

// Report summarizes a finished or aborted cycle.
type Report struct {
	Cycle             int
	Version           string
	RolloutName       string
	ModuleID          int64
	ArtifactID        int64
	DistributionSetID int64
	RolloutID         int64
	Progress          domain.RolloutProgress
	Stage             Stage
}

// report snapshots the run context.
func (rc *runContext) report() Report {
	r := Report{
		Cycle:       rc.cycle.Index,
		Version:     rc.version,
		RolloutName: rc.rolloutName,
		Progress:    rc.progress,
		Stage:       rc.stage,
	}

	if rc.module != nil {
		r.ModuleID = rc.module.ID
	}

	if rc.artifact != nil {
		r.ArtifactID = rc.artifact.ID
	}

	if rc.distributionSet != nil {
		r.DistributionSetID = rc.distributionSet.ID
	}

	if rc.rollout != nil {
		r.RolloutID = rc.rollout.ID
	}

	return r
}
