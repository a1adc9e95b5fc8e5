package integration

import (
	"crypto/md5"  //nolint:gosec // hawkBit reports MD5 digests.
	"crypto/sha1" //nolint:gosec // hawkBit reports SHA-1 digests.
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foundriesio/hawkbit-publish/internal/config"
)

// fakeHawkBit is an in-memory management API with just enough behavior for a publishing run.
type fakeHawkBit struct {
	t   *testing.T
	srv *httptest.Server

	mu sync.Mutex
	// nextID is shared by every record type.
	nextID int
	// modules maps module ids to their versions.
	modules map[int]string
	// artifacts counts uploads per module id.
	artifacts map[int]int
	// distributionSets holds the posted distribution set versions in order.
	distributionSets []string
	// rollouts maps rollout ids to names.
	rollouts map[int]string
	// started lists started rollout names in order.
	started []string
	// polls counts status requests per rollout id.
	polls map[int]int
	// failDistributionSets makes distribution set creation fail with 400.
	failDistributionSets bool
}

func newFakeHawkBit(t *testing.T) *fakeHawkBit {
	t.Helper()

	f := &fakeHawkBit{
		t:         t,
		modules:   make(map[int]string),
		artifacts: make(map[int]int),
		rollouts:  make(map[int]string),
		polls:     make(map[int]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/v1/softwaremodules", f.listModules)
	mux.HandleFunc("POST /rest/v1/softwaremodules", f.createModules)
	mux.HandleFunc("GET /rest/v1/softwaremodules/{id}", f.getModule)
	mux.HandleFunc("POST /rest/v1/softwaremodules/{id}/artifacts", f.uploadArtifact)
	mux.HandleFunc("POST /rest/v1/distributionsets", f.createDistributionSets)
	mux.HandleFunc("GET /rest/v1/rollouts", f.listRollouts)
	mux.HandleFunc("POST /rest/v1/rollouts", f.createRollout)
	mux.HandleFunc("POST /rest/v1/rollouts/{id}/start", f.startRollout)
	mux.HandleFunc("GET /rest/v1/rollouts/{id}", f.getRollout)

	f.srv = httptest.NewServer(f.authorized(mux))
	t.Cleanup(f.srv.Close)

	return f
}

// config returns settings pointing at the fake server with millisecond waits.
func (f *fakeHawkBit) config() *config.Config {
	cfg := config.Default()
	cfg.SoftwareModulesURL = f.srv.URL + "/rest/v1/softwaremodules"
	cfg.DistributionSetsURL = f.srv.URL + "/rest/v1/distributionsets"
	cfg.RolloutsURL = f.srv.URL + "/rest/v1/rollouts"
	cfg.StartDelay = time.Millisecond
	cfg.PollInterval = time.Millisecond

	return cfg
}

func (f *fakeHawkBit) authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != config.DefaultUsername || pass != config.DefaultPassword {
			f.fail(w, http.StatusUnauthorized, "hawkbit.server.error.unauthorized", "bad credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (f *fakeHawkBit) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeHawkBit) href(format string, args ...any) map[string]string {
	return map[string]string{"href": f.srv.URL + fmt.Sprintf(format, args...)}
}

func (f *fakeHawkBit) reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		f.t.Errorf("encode response: %v", err)
	}
}

func (f *fakeHawkBit) fail(w http.ResponseWriter, status int, code, message string) {
	f.reply(w, status, map[string]string{
		"exceptionClass": "org.eclipse.hawkbit.repository.exception.EntityNotFoundException",
		"errorCode":      code,
		"message":        message,
	})
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(r.PathValue("id")) //nolint:errcheck // Unknown ids map to zero.
	return id
}

func (f *fakeHawkBit) listModules(w http.ResponseWriter, _ *http.Request) {
	f.reply(w, http.StatusOK, map[string]any{"content": []any{}, "total": 0, "size": 0})
}

func (f *fakeHawkBit) createModules(w http.ResponseWriter, r *http.Request) {
	var posted []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&posted); err != nil || len(posted) != 1 {
		f.fail(w, http.StatusBadRequest, "hawkbit.server.error.rest.body.notReadable", "bad body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.id()
	f.modules[id], _ = posted[0]["version"].(string)

	posted[0]["id"] = id
	posted[0]["_links"] = map[string]any{"self": f.href("/rest/v1/softwaremodules/%d", id)}

	f.reply(w, http.StatusCreated, posted)
}

func (f *fakeHawkBit) getModule(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	f.mu.Lock()
	version, ok := f.modules[id]
	f.mu.Unlock()

	if !ok {
		f.fail(w, http.StatusNotFound, "hawkbit.server.error.repo.entitiyNotFound", "no such module")
		return
	}

	f.reply(w, http.StatusOK, map[string]any{
		"id":      id,
		"version": version,
		"_links": map[string]any{
			"self":      f.href("/rest/v1/softwaremodules/%d", id),
			"artifacts": f.href("/rest/v1/softwaremodules/%d/artifacts", id),
			"type":      f.href("/rest/v1/softwaremoduletypes/1"),
			"metadata":  f.href("/rest/v1/softwaremodules/%d/metadata", id),
		},
	})
}

func (f *fakeHawkBit) uploadArtifact(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		f.fail(w, http.StatusBadRequest, "hawkbit.server.error.artifact.uploadFailed", err.Error())
		return
	}

	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		f.fail(w, http.StatusBadRequest, "hawkbit.server.error.artifact.uploadFailed", err.Error())
		return
	}

	sha256Sum := sha256.Sum256(data)
	sha1Sum := sha1.Sum(data) //nolint:gosec // Reported, not trusted.
	md5Sum := md5.Sum(data)   //nolint:gosec // Reported, not trusted.

	f.mu.Lock()
	f.artifacts[pathID(r)]++
	id := f.id()
	f.mu.Unlock()

	f.reply(w, http.StatusCreated, map[string]any{
		"id":               id,
		"providedFilename": header.Filename,
		"size":             len(data),
		"hashes": map[string]string{
			"sha256": hex.EncodeToString(sha256Sum[:]),
			"sha1":   hex.EncodeToString(sha1Sum[:]),
			"md5":    hex.EncodeToString(md5Sum[:]),
		},
	})
}

func (f *fakeHawkBit) createDistributionSets(w http.ResponseWriter, r *http.Request) {
	var posted []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&posted); err != nil || len(posted) != 1 {
		f.fail(w, http.StatusBadRequest, "hawkbit.server.error.rest.body.notReadable", "bad body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDistributionSets {
		f.fail(w, http.StatusBadRequest, "hawkbit.server.error.repo.entitiyAlreadyExists", "distribution set exists")
		return
	}

	version, _ := posted[0]["version"].(string)
	f.distributionSets = append(f.distributionSets, version)

	posted[0]["id"] = f.id()

	f.reply(w, http.StatusCreated, posted)
}

func (f *fakeHawkBit) listRollouts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	marker := strings.TrimSuffix(strings.TrimPrefix(query.Get("q"), "name==*"), "*")
	offset, _ := strconv.Atoi(query.Get("offset")) //nolint:errcheck // Missing offset is zero.

	f.mu.Lock()

	var content []map[string]any

	for id, name := range f.rollouts {
		if strings.Contains(name, marker) {
			content = append(content, map[string]any{"id": id, "name": name})
		}
	}

	f.mu.Unlock()

	total := len(content)
	content = content[min(offset, total):]

	f.reply(w, http.StatusOK, map[string]any{"content": content, "total": total, "size": len(content)})
}

func (f *fakeHawkBit) createRollout(w http.ResponseWriter, r *http.Request) {
	var posted map[string]any
	if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
		f.fail(w, http.StatusBadRequest, "hawkbit.server.error.rest.body.notReadable", "bad body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.id()
	f.rollouts[id], _ = posted["name"].(string)

	posted["id"] = id
	posted["status"] = "creating"
	posted["_links"] = map[string]any{
		"self":  f.href("/rest/v1/rollouts/%d", id),
		"start": f.href("/rest/v1/rollouts/%d/start", id),
	}

	f.reply(w, http.StatusCreated, posted)
}

func (f *fakeHawkBit) startRollout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name, ok := f.rollouts[pathID(r)]
	if !ok {
		f.fail(w, http.StatusNotFound, "hawkbit.server.error.repo.entitiyNotFound", "no such rollout")
		return
	}

	f.started = append(f.started, name)

	w.WriteHeader(http.StatusOK)
}

// getRollout reports a running rollout on the first poll and a finished one afterwards.
func (f *fakeHawkBit) getRollout(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	f.mu.Lock()
	name, ok := f.rollouts[id]
	f.polls[id]++
	polls := f.polls[id]
	f.mu.Unlock()

	if !ok {
		f.fail(w, http.StatusNotFound, "hawkbit.server.error.repo.entitiyNotFound", "no such rollout")
		return
	}

	status, finished, running := "running", 1, 1
	if polls > 1 {
		status, finished, running = "finished", 2, 0
	}

	f.reply(w, http.StatusOK, map[string]any{
		"id":           id,
		"name":         name,
		"status":       status,
		"totalTargets": 2,
		"totalTargetsPerStatus": map[string]int{
			"running":    running,
			"notstarted": 0,
			"scheduled":  0,
			"cancelled":  0,
			"finished":   finished,
			"error":      0,
		},
	})
}

// recorded is a copy of what the fake server has seen.
type recorded struct {
	modules          map[int]string
	artifacts        map[int]int
	distributionSets []string
	rollouts         map[int]string
	started          []string
	polls            map[int]int
}

// snapshot copies the recorded state under the lock.
func (f *fakeHawkBit) snapshot() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()

	return recorded{
		modules:          maps.Clone(f.modules),
		artifacts:        maps.Clone(f.artifacts),
		distributionSets: slices.Clone(f.distributionSets),
		rollouts:         maps.Clone(f.rollouts),
		started:          slices.Clone(f.started),
		polls:            maps.Clone(f.polls),
	}
}
