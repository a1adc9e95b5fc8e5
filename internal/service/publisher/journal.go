package publisher

import (
	"context"
	"time"

	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
	"github.com/foundriesio/hawkbit-publish/internal/logger"
	"github.com/foundriesio/hawkbit-publish/internal/repository/journal"
	"github.com/foundriesio/hawkbit-publish/internal/service/common"
)

// recordPublication appends the run to the journal. A journal failure never
// fails the run, it is only logged.
func recordPublication(ctx context.Context, repo journal.Repository, req *Request, reports []Report, runErr error) {
	if err := repo.Append(ctx, newPublication(req, reports, runErr)); err != nil {
		logger.WarnKV(ctx, "Failed to record run in journal", "error", err)
		return
	}

	logger.DebugKV(ctx, "Recorded run in journal", "cycles", len(reports))
}

func newPublication(req *Request, reports []Report, runErr error) *domain.Publication {
	p := &domain.Publication{
		Timestamp: time.Now(),
		Actor:     "unknown",
		Vendor:    req.Vendor,
		Name:      req.Name,
		Version:   req.Version,
		Cycles:    make([]domain.PublishedCycle, 0, len(reports)),
	}

	if actor, err := common.DetectActor(); err == nil {
		p.Actor = actor.String()
	}

	for _, r := range reports {
		p.Cycles = append(p.Cycles, domain.PublishedCycle{
			Version:           r.Version,
			RolloutName:       r.RolloutName,
			ModuleID:          r.ModuleID,
			DistributionSetID: r.DistributionSetID,
			RolloutID:         r.RolloutID,
			Stage:             r.Stage.String(),
			Progress:          r.Progress,
		})
	}

	if runErr != nil {
		p.Error = runErr.Error()
	}

	return p
}
