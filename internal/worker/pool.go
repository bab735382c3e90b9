// Package worker runs the bounded job pool that drains internal/job.Store's
// queue and drives each accepted job through oracle scripting, per-scene
// fan-out, final concatenation, and the final auditor. Fan-out within a job
// uses errgroup, grounded on the teacher's hotctx.Assembler.Assemble
// concurrent-fetch-then-barrier shape, generalized from three fixed fetches
// to N scenes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shortform/scenecraft/internal/audiotiming"
	"github.com/shortform/scenecraft/internal/audit"
	"github.com/shortform/scenecraft/internal/job"
	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/oracle"
	"github.com/shortform/scenecraft/internal/render"
	"github.com/shortform/scenecraft/internal/scriptgate"
	"github.com/shortform/scenecraft/internal/sceneproc"
)

const (
	defaultMaxConcurrentJobs = 3
	maxScriptAttempts        = 3
	pollInterval             = 50 * time.Millisecond
)

// NewProcessor builds the per-scene processor for one job. The pool calls
// this once per job so every job's scenes share one asset cache and TTS
// cascade, matching the per-job resource lifetime spec.md describes for the
// asset cache.
type NewProcessor func() *sceneproc.Processor

// Pool drains job.Store's FIFO, running up to MaxConcurrent jobs at once.
type Pool struct {
	Store         *job.Store
	Oracle        *oracle.Adapter
	NewProcessor  NewProcessor
	Renderer      render.Renderer
	OutputRoot    string
	MaxConcurrent int
	Log           *slog.Logger

	sem chan struct{}
}

// New returns a Pool ready to run. maxConcurrent defaults to 3 when <= 0,
// matching spec.md's MAX_CONCURRENT_JOBS default.
func New(store *job.Store, oracleAdapter *oracle.Adapter, newProcessor NewProcessor, renderer render.Renderer, outputRoot string, maxConcurrent int, log *slog.Logger) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentJobs
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		Store:         store,
		Oracle:        oracleAdapter,
		NewProcessor:  newProcessor,
		Renderer:      renderer,
		OutputRoot:    outputRoot,
		MaxConcurrent: maxConcurrent,
		Log:           log,
		sem:           make(chan struct{}, maxConcurrent),
	}
}

// Run polls the queue until ctx is cancelled, launching one goroutine per
// accepted job bounded by the pool's semaphore. It blocks until ctx is done
// and every in-flight job has returned.
func (p *Pool) Run(ctx context.Context) {
	var inFlight errgroup.Group

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			inFlight.Wait()
			return
		case <-ticker.C:
			for {
				id, ok := p.Store.Pop()
				if !ok {
					break
				}
				select {
				case p.sem <- struct{}{}:
				case <-ctx.Done():
					inFlight.Wait()
					return
				}
				inFlight.Go(func() error {
					defer func() { <-p.sem }()
					p.runJob(ctx, id)
					return nil
				})
			}
		}
	}
}

// runJob drives one job from StatusProcessing through a terminal status. It
// never returns an error itself — every failure is recorded on the job via
// job.Store.Finish instead, per the error handling design's rule that
// process-level errors are logged and never crash the server.
func (p *Pool) runJob(ctx context.Context, id string) {
	j, err := p.Store.Get(id)
	if err != nil {
		p.Log.Error("worker: job vanished before processing", "job_id", id, "error", err)
		return
	}

	outDir := filepath.Join(p.OutputRoot, id)
	if err := render.EnsureDir(filepath.Join(outDir, "placeholder")); err != nil {
		p.fail(id, model.ErrorRenderFailure, fmt.Sprintf("create output dir: %v", err))
		return
	}
	p.Store.Mutate(id, func(j *model.Job) { j.OutputDir = outDir })

	script, err := p.generateScript(ctx, id, j.Request)
	if err != nil {
		p.fail(id, model.ErrorGateReject, err.Error())
		return
	}
	p.Store.Mutate(id, func(j *model.Job) { j.Script = script })
	p.Store.UpdateStatus(id, model.StatusAudioGen, 20)

	perSceneAudio, _ := audiotiming.Synthesize(script.Scenes)

	p.Store.UpdateStatus(id, model.StatusVisualGen, 35)
	scenes, allWords, err := p.processScenes(ctx, id, script, perSceneAudio, outDir)
	if err != nil {
		p.fail(id, classifyScenesError(err), err.Error())
		return
	}
	p.Store.Mutate(id, func(j *model.Job) { j.Scenes = scenes })

	p.Store.UpdateStatus(id, model.StatusMerging, 85)
	finalPath := filepath.Join(outDir, "final.mp4")
	segmentPaths := make([]string, len(scenes))
	for i, s := range scenes {
		segmentPaths[i] = s.SegmentPath
	}
	if err := p.Renderer.Concat(ctx, segmentPaths, finalPath); err != nil {
		p.fail(id, model.ErrorRenderFailure, err.Error())
		return
	}

	p.Store.UpdateStatus(id, model.StatusAuditing, 95)
	verdict := audit.Run(script, allWords)
	if !verdict.Go {
		p.fail(id, model.ErrorAuditNoGo, joinReasons(verdict.Reasons))
		return
	}

	p.Store.Finish(id, model.StatusCompleted, &model.JobResult{VideoPath: finalPath})
}

// generateScript asks the oracle for a script, retrying up to 3 attempts
// when the structural gate rejects it; the oracle call itself already
// retries/rotates/falls back internally, so each attempt here is a full
// fresh oracle round-trip.
func (p *Pool) generateScript(ctx context.Context, id string, req model.JobRequest) (*model.Script, error) {
	p.Store.UpdateStatus(id, model.StatusScripting, 5)

	var lastErr error
	for attempt := 0; attempt < maxScriptAttempts; attempt++ {
		script, err := p.Oracle.GenerateScript(ctx, req.Topic, req.Duration, req.Tone)
		if err != nil {
			return nil, fmt.Errorf("oracle: %w", err)
		}
		gate := scriptgate.Check(script)
		if gate.Valid {
			return script, nil
		}
		lastErr = gate.Err()
		p.Log.Warn("script gate rejected", "job_id", id, "attempt", attempt, "error", lastErr)
	}
	return nil, fmt.Errorf("script gate rejected after %d attempts: %w", maxScriptAttempts, lastErr)
}

// processScenes fans out every scene to its own sceneproc.Processor.Process
// call via errgroup, then returns the scenes in original order along with
// every word timestamp across the whole script for the final auditor's
// pacing check.
func (p *Pool) processScenes(ctx context.Context, id string, script *model.Script, perSceneAudio []model.AudioResult, outDir string) ([]*model.SceneWork, []model.WordTimestamp, error) {
	proc := p.NewProcessor()
	scenes := make([]*model.SceneWork, len(script.Scenes))

	g, gctx := errgroup.WithContext(ctx)
	for i := range script.Scenes {
		i := i
		g.Go(func() error {
			result, err := proc.Process(gctx, script.Scenes[i], perSceneAudio[i], outDir, i)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
			scenes[i] = &result.Scene
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var allWords []model.WordTimestamp
	for _, s := range scenes {
		allWords = append(allWords, s.Audio.Words...)
	}
	return scenes, allWords, nil
}

func (p *Pool) fail(id string, errType model.ErrorType, message string) {
	p.Log.Error("job failed", "job_id", id, "error_type", errType, "message", message)
	p.Store.Finish(id, model.StatusFailed, &model.JobResult{ErrorType: errType, Message: message})
}

// classifyScenesError makes a best-effort guess at the error taxonomy for a
// scene fan-out failure; render errors already carry their own *render.Error
// classification, everything else from sceneproc is a gate rejection or
// asset shortage surfaced as a plain error.
func classifyScenesError(err error) model.ErrorType {
	var renderErr *render.Error
	if errors.As(err, &renderErr) {
		return model.ErrorRenderFailure
	}
	return model.ErrorGateReject
}

func joinReasons(reasons []string) string {
	sort.Strings(reasons)
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
