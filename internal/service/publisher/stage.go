package publisher

// Stage is the position of a cycle in the publishing sequence.
type Stage int

// Cycle stages in the order they are reached.
const (
	StageIdle Stage = iota
	StageModuleCreated
	StageLinksFetched
	StageArtifactUploaded
	StageDistributionSetCreated
	StageRolloutCreated
	StageRolloutStarted
	StagePolling
	StageRolloutFinished
	StageDone
	StageAborted
)

//nolint:gochecknoglobals // Lookup table for String.
var stageNames = [...]string{
	StageIdle:                   "idle",
	StageModuleCreated:          "module_created",
	StageLinksFetched:           "links_fetched",
	StageArtifactUploaded:       "artifact_uploaded",
	StageDistributionSetCreated: "distribution_set_created",
	StageRolloutCreated:         "rollout_created",
	StageRolloutStarted:         "rollout_started",
	StagePolling:                "polling",
	StageRolloutFinished:        "rollout_finished",
	StageDone:                   "done",
	StageAborted:                "aborted",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}

	return stageNames[s]
}
