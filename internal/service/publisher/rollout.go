package publisher

import (
	"context"
	"fmt"
	"time"

	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
	"github.com/foundriesio/hawkbit-publish/internal/logger"
)

// CountExistingRollouts returns how many rollouts on the server have a name
// containing "<name>-<version>".
func (p *Publisher) CountExistingRollouts(ctx context.Context, name, version string) (int, error) {
	marker := domain.RolloutMarker(name, version)

	names, err := p.api.ListRolloutNames(ctx, marker)
	if err != nil {
		return 0, fmt.Errorf("count existing rollouts: %w", err)
	}

	return domain.CountMatching(names, marker), nil
}

// PollRolloutStatus reads the rollout's target counts once. A returned error
// means the poll itself failed; completion is reported by IsFinished.
func (p *Publisher) PollRolloutStatus(ctx context.Context, id int64) (domain.RolloutProgress, error) {
	progress, err := p.api.GetRolloutProgress(ctx, id)
	if err != nil {
		return domain.RolloutProgress{}, err
	}

	logger.InfoKV(ctx, "Rollout progress",
		"rollout_id", id, "status", progress.Status, "done", progress.String())

	return progress, nil
}

func (p *Publisher) createRollout(ctx context.Context, req *Request, rc *runContext) error {
	rules := p.cfg.Rollout

	rollout, err := p.api.CreateRollout(ctx, domain.NewThresholdRollout(
		rc.rolloutName,
		req.Description,
		rc.distributionSet.ID,
		req.RolloutFilter,
		rules.AmountGroups,
		rules.SuccessThreshold,
		rules.ErrorThreshold,
	))
	if err != nil {
		return err
	}

	rc.rollout = rollout

	logger.InfoKV(ctx, "Created rollout", "id", rollout.ID, "name", rollout.Name)

	return nil
}

// startRollout gives the server time to finish creating the rollout groups, then starts it.
func (p *Publisher) startRollout(ctx context.Context, _ *Request, rc *runContext) error {
	logger.DebugKV(ctx, "Waiting before starting rollout", "delay", p.cfg.StartDelay.String())

	if err := sleep(ctx, p.cfg.StartDelay); err != nil {
		return err
	}

	if err := p.api.StartRollout(ctx, rc.rollout.StartLink); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Started rollout", "id", rc.rollout.ID)

	return nil
}

// waitForRollout polls every PollInterval until all targets reached a terminal state.
func (p *Publisher) waitForRollout(ctx context.Context, _ *Request, rc *runContext) error {
	rc.stage = StagePolling

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			progress, err := p.PollRolloutStatus(ctx, rc.rollout.ID)
			if err != nil {
				return err
			}

			rc.progress = progress

			if progress.IsFailed() {
				return fmt.Errorf("rollout %d is %s: %w", rc.rollout.ID, progress.Status, ErrRolloutFailed)
			}

			if progress.IsFinished() {
				logger.InfoKV(ctx, "Rollout finished",
					"id", rc.rollout.ID, "finished", progress.Finished,
					"error", progress.Error, "cancelled", progress.Cancelled)

				return nil
			}
		}
	}
}
