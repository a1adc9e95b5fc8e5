package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	hawkbit "github.com/foundriesio/hawkbit-publish/internal/client/hawkbit"
	"github.com/foundriesio/hawkbit-publish/internal/config"
	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
	"github.com/foundriesio/hawkbit-publish/internal/logger"
)

// API is the subset of the management API the publisher drives.
type API interface {
	CheckSoftwareModules(ctx context.Context) error
	CreateSoftwareModule(ctx context.Context, m *domain.SoftwareModule) (*domain.SoftwareModule, error)
	GetSoftwareModule(ctx context.Context, selfLink string) (*domain.SoftwareModule, error)
	UploadArtifact(ctx context.Context, artifactsLink, filename string, content io.Reader) (*domain.Artifact, error)
	CreateDistributionSet(
		ctx context.Context,
		ds *domain.DistributionSet,
		links domain.ModuleLinks,
	) (*domain.DistributionSet, error)
	CreateRollout(ctx context.Context, r *domain.Rollout) (*domain.Rollout, error)
	StartRollout(ctx context.Context, startLink string) error
	GetRolloutProgress(ctx context.Context, id int64) (domain.RolloutProgress, error)
	ListRolloutNames(ctx context.Context, marker string) ([]string, error)
}

var _ API = (*hawkbit.Client)(nil)

// Request describes what to publish.
type Request struct {
	Vendor      string
	Name        string
	Type        string
	Version     string
	Description string
	// DistributionType defaults to Type.
	DistributionType string
	// ArtifactPath is the file uploaded to every created module.
	ArtifactPath string
	// RolloutFilter is the target filter query. Empty means no rollout.
	RolloutFilter string
	// RolloutCount is the number of rollouts that should exist for Version.
	RolloutCount int
}

var (
	// ErrRolloutFailed is returned when the server reports the rollout itself failed.
	ErrRolloutFailed = errors.New("rollout failed on the server")
	// ErrChecksumMismatch is returned when the server hashes differ from the local file.
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")

	errFieldRequired   = errors.New("field is required")
	errBadRolloutCount = errors.New("rollout count must be at least 1")
	errArtifactIsDir   = errors.New("artifact is a directory")
)

// Publisher runs publishing cycles against a hawkBit server.
type Publisher struct {
	api API
	cfg *config.Config
}

// New creates a publisher using cfg for timings and rollout rules.
func New(cfg *config.Config, api API) *Publisher {
	return &Publisher{
		api: api,
		cfg: cfg,
	}
}

// Validate checks the request for required fields and a readable artifact.
func (r *Request) Validate() error {
	for name, value := range map[string]string{
		"provider": r.Vendor,
		"name":     r.Name,
		"type":     r.Type,
		"version":  r.Version,
		"file":     r.ArtifactPath,
	} {
		if value == "" {
			return fmt.Errorf("%s: %w", name, errFieldRequired)
		}
	}

	if r.RolloutCount < 1 {
		return errBadRolloutCount
	}

	info, err := os.Stat(filepath.Clean(r.ArtifactPath))
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s: %w", r.ArtifactPath, errArtifactIsDir)
	}

	return nil
}

// CheckServer verifies the server is reachable and the credentials are accepted.
func (p *Publisher) CheckServer(ctx context.Context) error {
	if err := p.api.CheckSoftwareModules(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Verified connection to hawkBit", "url", p.cfg.SoftwareModulesURL)

	return nil
}

// Publish runs every cycle still needed for req and returns their reports.
// It stops at the first failing cycle.
func (p *Publisher) Publish(ctx context.Context, req *Request) ([]Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cycles, err := p.planCycles(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(cycles) == 0 {
		logger.InfoKV(ctx, "Requested rollouts already exist, nothing to publish",
			"version", req.Version, "rollout_count", req.RolloutCount)

		return nil, nil
	}

	reports := make([]Report, 0, len(cycles))

	for _, cycle := range cycles {
		rc := p.newRunContext(req, cycle)
		cycleCtx := logger.WithKV(ctx, "cycle", cycle.Index, "version", rc.version)

		err = p.runCycle(cycleCtx, req, rc)
		reports = append(reports, rc.report())

		if err != nil {
			logger.ErrorKV(cycleCtx, "Cycle aborted",
				"stage", rc.stage.String(), "status", hawkbit.StatusCode(err), "error", err)

			return reports, fmt.Errorf("cycle %d: %w", cycle.Index, err)
		}
	}

	return reports, nil
}

// planCycles decides which cycles to run. Without a rollout filter exactly one
// unsuffixed cycle runs.
func (p *Publisher) planCycles(ctx context.Context, req *Request) ([]domain.Cycle, error) {
	if req.RolloutFilter == "" {
		return []domain.Cycle{{Index: 0}}, nil
	}

	existing, err := p.CountExistingRollouts(ctx, p.cfg.Rollout.NamePrefix, req.Version)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Counted existing rollouts",
		"existing", existing, "requested", req.RolloutCount)

	return domain.PlanCycles(existing, req.RolloutCount), nil
}

func (p *Publisher) newRunContext(req *Request, cycle domain.Cycle) *runContext {
	rc := &runContext{
		cycle:   cycle,
		version: cycle.Version(req.Version),
		stage:   StageIdle,
	}

	if req.RolloutFilter != "" {
		rc.rolloutName = cycle.RolloutName(p.cfg.Rollout.NamePrefix, req.Version)
	}

	return rc
}

// step is one call of the cycle and the stage reached once it succeeds.
type step struct {
	name    string
	reached Stage
	run     func(ctx context.Context, req *Request, rc *runContext) error
}

// runCycle executes the steps in order and stops at the first failure.
func (p *Publisher) runCycle(ctx context.Context, req *Request, rc *runContext) error {
	steps := []step{
		{"create software module", StageModuleCreated, p.createSoftwareModule},
		{"fetch module links", StageLinksFetched, p.fetchModuleLinks},
		{"upload artifact", StageArtifactUploaded, p.uploadArtifact},
		{"create distribution set", StageDistributionSetCreated, p.createDistributionSet},
	}

	if rc.rolloutName != "" {
		steps = append(steps,
			step{"create rollout", StageRolloutCreated, p.createRollout},
			step{"start rollout", StageRolloutStarted, p.startRollout},
			step{"wait for rollout", StageRolloutFinished, p.waitForRollout},
		)
	}

	for _, s := range steps {
		logger.DebugKV(ctx, "Running step", "step", s.name, "stage", rc.stage.String())

		if err := s.run(ctx, req, rc); err != nil {
			rc.stage = StageAborted
			return fmt.Errorf("%s: %w", s.name, err)
		}

		rc.stage = s.reached
	}

	rc.stage = StageDone

	logger.InfoKV(ctx, "Cycle completed",
		"module_id", rc.module.ID,
		"distribution_set_id", rc.distributionSet.ID,
		"rollout", rc.rolloutName)

	return nil
}

func (p *Publisher) createSoftwareModule(ctx context.Context, req *Request, rc *runContext) error {
	module, err := p.api.CreateSoftwareModule(ctx, &domain.SoftwareModule{
		Vendor:      req.Vendor,
		Name:        req.Name,
		Type:        req.Type,
		Version:     rc.version,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	rc.module = module

	logger.InfoKV(ctx, "Created software module", "id", module.ID, "name", req.Name)

	return nil
}

func (p *Publisher) fetchModuleLinks(ctx context.Context, _ *Request, rc *runContext) error {
	module, err := p.api.GetSoftwareModule(ctx, rc.module.Links.Self)
	if err != nil {
		return err
	}

	rc.module.Links = module.Links

	logger.DebugKV(ctx, "Fetched module links", "artifacts", module.Links.Artifacts)

	return nil
}

func (p *Publisher) uploadArtifact(ctx context.Context, req *Request, rc *runContext) error {
	file, err := os.Open(filepath.Clean(req.ArtifactPath))
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	digests := newDigests()

	artifact, err := p.api.UploadArtifact(ctx, rc.module.Links.Artifacts, req.ArtifactPath,
		io.TeeReader(file, digests.writer()))
	if err != nil {
		return err
	}

	if err = digests.verify(ctx, artifact.Hashes); err != nil {
		return err
	}

	rc.artifact = artifact

	logger.InfoKV(ctx, "Uploaded artifact", "id", artifact.ID, "file", artifact.Filename, "size", artifact.Size)

	return nil
}

func (p *Publisher) createDistributionSet(ctx context.Context, req *Request, rc *runContext) error {
	dsType := req.DistributionType
	if dsType == "" {
		dsType = req.Type
	}

	ds, err := p.api.CreateDistributionSet(ctx, &domain.DistributionSet{
		Vendor:      req.Vendor,
		Name:        req.Name,
		Type:        dsType,
		Version:     rc.version,
		Description: req.Description,
		ModuleIDs:   []int64{rc.module.ID},
	}, rc.module.Links)
	if err != nil {
		return err
	}

	rc.distributionSet = ds

	logger.InfoKV(ctx, "Created distribution set", "id", ds.ID)

	return nil
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
