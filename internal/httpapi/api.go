// Package httpapi implements the scenecraft HTTP surface: job submission and
// polling, mark/unmark for retention exemption, and static asset mounts. It
// mirrors internal/health.Handler's shape exactly — a small struct holding
// its dependencies, one method per route, one Register(mux) call.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/shortform/scenecraft/internal/cleanup"
	"github.com/shortform/scenecraft/internal/job"
	"github.com/shortform/scenecraft/internal/model"
)

// minDuration and maxDuration bound the client-requested video length, per
// spec.md's duration_seconds ∈ [20,60] validation rule.
const (
	minDuration = 20
	maxDuration = 60
)

// API serves the job-submission and retention-marking endpoints.
type API struct {
	Store  *job.Store
	Marker *cleanup.Marker
	Log    *slog.Logger

	// AssetsDir, OutputDir, and CacheDir back the static file mounts.
	AssetsDir string
	OutputDir string
	CacheDir  string
}

// New returns an API ready to Register against a mux.
func New(store *job.Store, marker *cleanup.Marker, assetsDir, outputDir, cacheDir string, log *slog.Logger) *API {
	if log == nil {
		log = slog.Default()
	}
	return &API{
		Store:     store,
		Marker:    marker,
		Log:       log,
		AssetsDir: assetsDir,
		OutputDir: outputDir,
		CacheDir:  cacheDir,
	}
}

// Register adds every scenecraft route to mux, including the /api/v1/*
// compatibility mount spec.md §6 requires.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate", a.Generate)
	mux.HandleFunc("GET /api/status/{id}", a.Status)
	mux.HandleFunc("GET /api/jobs", a.Jobs)
	mux.HandleFunc("POST /api/mark/{id}", a.Mark)
	mux.HandleFunc("POST /api/unmark/{id}", a.Unmark)
	mux.HandleFunc("GET /api/is-marked/{id}", a.IsMarked)

	mux.HandleFunc("POST /api/v1/generate", a.Generate)
	mux.HandleFunc("GET /api/v1/status/{id}", a.Status)
	mux.HandleFunc("GET /api/v1/jobs", a.Jobs)
	mux.HandleFunc("POST /api/v1/mark/{id}", a.Mark)
	mux.HandleFunc("POST /api/v1/unmark/{id}", a.Unmark)
	mux.HandleFunc("GET /api/v1/is-marked/{id}", a.IsMarked)

	a.registerStatic(mux, "/assets/", a.AssetsDir)
	a.registerStatic(mux, "/output/", a.OutputDir)
	a.registerStatic(mux, "/cache/", a.CacheDir)
}

// registerStatic mounts an http.FileServer under prefix, stripping the
// prefix so the directory's own file layout is served at the path root.
// http.ServeMux's Go 1.22 pattern matching covers every route here, so no
// third-party router is pulled in for this.
func (a *API) registerStatic(mux *http.ServeMux, prefix, dir string) {
	if dir == "" {
		return
	}
	fs := http.FileServer(http.Dir(dir))
	mux.Handle(prefix, http.StripPrefix(prefix, fs))
}

// generateRequest is the JSON body accepted by POST /api/generate.
type generateRequest struct {
	Topic    string     `json:"topic"`
	Duration int        `json:"durationSeconds"`
	Tone     model.Tone `json:"tone"`
	DryRun   bool       `json:"dry_run"`
}

// Generate validates and accepts a new job request, returning 202 with the
// new job's ID and status, or 400 on a validation failure. dry_run requests
// are validated identically but never enqueued, per spec.md's smoke-test
// affordance.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic must be a non-empty string")
		return
	}
	if req.Duration < minDuration || req.Duration > maxDuration {
		writeError(w, http.StatusBadRequest, "durationSeconds must be in [20,60]")
		return
	}
	if !req.Tone.Valid() {
		writeError(w, http.StatusBadRequest, "tone must be one of informative, dramatic, motivational, neutral")
		return
	}

	if req.DryRun {
		writeJSON(w, http.StatusOK, map[string]any{"valid": true})
		return
	}

	j := a.Store.Create(model.JobRequest{Topic: req.Topic, Duration: req.Duration, Tone: req.Tone})
	a.Log.Info("job accepted", "job_id", j.ID, "topic", req.Topic)
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": j.ID, "status": j.Status})
}

// Status returns the full job record, or 404 if the ID is unknown.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	j, err := a.Store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// Jobs returns every job record, oldest first.
func (a *API) Jobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.List())
}

// Mark exempts a job's assets from the retention sweep.
func (a *API) Mark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.Marker.Mark(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist mark")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Unmark removes a job's retention exemption.
func (a *API) Unmark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.Marker.Unmark(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist unmark")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// IsMarked reports whether a job's assets are currently exempt from sweeping.
func (a *API) IsMarked(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusOK, map[string]bool{"isMarked": a.Marker.IsMarked(id)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// EnsureDirs creates the given directories on demand, matching spec.md's
// filesystem-directories-created-on-demand rule.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}
