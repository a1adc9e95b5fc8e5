package hawkbit

import (
	"fmt"
	"strconv"
)

// Server-side rollout lifecycle states.
const (
	StatusCreating      = "creating"
	StatusReady         = "ready"
	StatusStarting      = "starting"
	StatusRunning       = "running"
	StatusPaused        = "paused"
	StatusFinished      = "finished"
	StatusErrorCreating = "error_creating"
	StatusErrorStarting = "error_starting"
)

// NewThresholdRollout builds a rollout that advances to the next group once
// successPercent of a group finished and pauses once errorPercent failed.
func NewThresholdRollout(
	name, description string,
	distributionSetID int64,
	filterQuery string,
	groups, successPercent, errorPercent int,
) *Rollout {
	return &Rollout{
		Name:              name,
		Description:       description,
		DistributionSetID: distributionSetID,
		TargetFilterQuery: filterQuery,
		AmountGroups:      groups,
		SuccessCondition: Condition{
			Condition:  ConditionThreshold,
			Expression: strconv.Itoa(successPercent),
		},
		SuccessAction: Action{
			Action: ActionNextGroup,
		},
		ErrorCondition: Condition{
			Condition:  ConditionThreshold,
			Expression: strconv.Itoa(errorPercent),
		},
		ErrorAction: Action{
			Action: ActionPause,
		},
	}
}

// RolloutProgress is a snapshot of per-status target counts of a rollout.
type RolloutProgress struct {
	Status     string
	Total      int64
	Running    int64
	NotStarted int64
	Scheduled  int64
	Cancelled  int64
	Finished   int64
	Error      int64
}

// Done returns the number of targets in a terminal state.
func (p RolloutProgress) Done() int64 {
	return p.Cancelled + p.Finished + p.Error
}

// IsFinished reports whether every target reached a terminal state.
func (p RolloutProgress) IsFinished() bool {
	return p.Done() == p.Total
}

// IsFailed reports whether the server gave up on the rollout itself.
func (p RolloutProgress) IsFailed() bool {
	return p.Status == StatusErrorCreating || p.Status == StatusErrorStarting
}

// String renders the progress for log output, e.g. "7/10 (70%)".
func (p RolloutProgress) String() string {
	if p.Total == 0 {
		return "0/0"
	}

	//nolint:mnd // Percentage.
	return fmt.Sprintf("%d/%d (%d%%)", p.Done(), p.Total, p.Done()*100/p.Total)
}
