package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/foundriesio/hawkbit-publish/internal/config"
	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
)

// DefaultMaxEntries is how many runs the journal keeps.
const DefaultMaxEntries = 50

// Repository defines persistence operations for publishing runs.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Publication, error)
	Append(ctx context.Context, p *domain.Publication) error
}

// FileRepository stores the journal as a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the journal file.
	path string
	// maxEntries bounds the history, oldest runs are dropped first.
	maxEntries int
	// mu protects concurrent access to the journal file.
	mu sync.Mutex
}

// ErrNotFound is returned when the journal file does not exist yet.
var ErrNotFound = errors.New("journal not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string, maxEntries int) *FileRepository {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &FileRepository{
		path:       filepath.Clean(path),
		maxEntries: maxEntries,
	}
}

// Load reads every recorded run, oldest first.
func (r *FileRepository) Load(_ context.Context) ([]*domain.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Append records p and drops the oldest runs beyond the limit.
func (r *FileRepository) Append(_ context.Context, p *domain.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	entries = append(entries, p)
	if len(entries) > r.maxEntries {
		entries = entries[len(entries)-r.maxEntries:]
	}

	records := make([]publicationJSON, 0, len(entries))
	for _, e := range entries {
		records = append(records, toJSON(e))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write journal file: %w", err)
	}

	return nil
}

func (r *FileRepository) load() ([]*domain.Publication, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read journal file: %w", err)
	}

	var records []publicationJSON
	if err = json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("decode journal file: %w", err)
	}

	entries := make([]*domain.Publication, 0, len(records))
	for i := range records {
		entries = append(entries, fromJSON(&records[i]))
	}

	return entries, nil
}

type progressJSON struct {
	Status   string `json:"status,omitempty"`
	Total    int64  `json:"total"`
	Finished int64  `json:"finished"`
	Error    int64  `json:"error"`
	Cancel   int64  `json:"cancelled"`
}

type cycleJSON struct {
	Version           string        `json:"version"`
	RolloutName       string        `json:"rollout_name,omitempty"`
	ModuleID          int64         `json:"module_id,omitempty"`
	DistributionSetID int64         `json:"distribution_set_id,omitempty"`
	RolloutID         int64         `json:"rollout_id,omitempty"`
	Stage             string        `json:"stage"`
	Progress          *progressJSON `json:"progress,omitempty"`
}

type publicationJSON struct {
	Timestamp time.Time   `json:"timestamp"`
	Actor     string      `json:"actor"`
	Vendor    string      `json:"vendor"`
	Name      string      `json:"name"`
	Version   string      `json:"version"`
	Cycles    []cycleJSON `json:"cycles"`
	Error     string      `json:"error,omitempty"`
}

// toJSON converts the domain Publication into its on-disk form.
func toJSON(p *domain.Publication) publicationJSON {
	cycles := make([]cycleJSON, 0, len(p.Cycles))

	for _, c := range p.Cycles {
		record := cycleJSON{
			Version:           c.Version,
			RolloutName:       c.RolloutName,
			ModuleID:          c.ModuleID,
			DistributionSetID: c.DistributionSetID,
			RolloutID:         c.RolloutID,
			Stage:             c.Stage,
		}

		if c.RolloutID != 0 {
			record.Progress = &progressJSON{
				Status:   c.Progress.Status,
				Total:    c.Progress.Total,
				Finished: c.Progress.Finished,
				Error:    c.Progress.Error,
				Cancel:   c.Progress.Cancelled,
			}
		}

		cycles = append(cycles, record)
	}

	return publicationJSON{
		Timestamp: p.Timestamp.UTC(),
		Actor:     p.Actor,
		Vendor:    p.Vendor,
		Name:      p.Name,
		Version:   p.Version,
		Cycles:    cycles,
		Error:     p.Error,
	}
}

// fromJSON converts the on-disk form into the domain Publication.
func fromJSON(in *publicationJSON) *domain.Publication {
	p := &domain.Publication{
		Timestamp: in.Timestamp,
		Actor:     in.Actor,
		Vendor:    in.Vendor,
		Name:      in.Name,
		Version:   in.Version,
		Cycles:    make([]domain.PublishedCycle, 0, len(in.Cycles)),
		Error:     in.Error,
	}

	for _, c := range in.Cycles {
		cycle := domain.PublishedCycle{
			Version:           c.Version,
			RolloutName:       c.RolloutName,
			ModuleID:          c.ModuleID,
			DistributionSetID: c.DistributionSetID,
			RolloutID:         c.RolloutID,
			Stage:             c.Stage,
		}

		if c.Progress != nil {
			cycle.Progress = domain.RolloutProgress{
				Status:    c.Progress.Status,
				Total:     c.Progress.Total,
				Finished:  c.Progress.Finished,
				Error:     c.Progress.Error,
				Cancelled: c.Progress.Cancel,
			}
		}

		p.Cycles = append(p.Cycles, cycle)
	}

	return p
}
