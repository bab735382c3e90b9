// Package sceneproc sequentially drives one scene through every pipeline
// stage: audio synthesis, captioning, visual selection, edit planning, and
// per-scene rendering. It returns a fully populated [model.SceneWork] or the
// first fatal error.
package sceneproc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shortform/scenecraft/internal/assetcache"
	"github.com/shortform/scenecraft/internal/caption"
	"github.com/shortform/scenecraft/internal/editplan"
	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/render"
	"github.com/shortform/scenecraft/internal/stockprovider"
	"github.com/shortform/scenecraft/internal/tts"
	"github.com/shortform/scenecraft/internal/visual"
)

const maxVisualAttempts = 2

// Processor runs the per-scene pipeline. It is constructed once per job and
// reused across that job's scenes running concurrently, so every field must
// be safe for concurrent use.
type Processor struct {
	Cache    *assetcache.Cache
	Provider stockprovider.Provider
	TTS      *tts.Cascade
	Renderer render.Renderer
	Log      *slog.Logger
}

// Result is everything a scene produced, for the worker pool to attach to
// the job and for the final auditor to inspect across every scene.
type Result struct {
	Scene    model.SceneWork
	Warnings []string
}

// Process runs one scene end to end. audio is the pre-synthesized timing
// result for this scene (audiotiming.Synthesize runs once per job, not per
// scene, since scene pacing depends on neighboring scenes).
func (p *Processor) Process(ctx context.Context, scene model.ScriptScene, audio model.AudioResult, outDir string, index int) (*Result, error) {
	audioPath := fmt.Sprintf("%s/scene-%d-audio.wav", outDir, index)
	synthetic, err := p.TTS.Synthesize(ctx, scene.Text, audioPath, audio.Duration)
	if err != nil {
		return nil, fmt.Errorf("sceneproc: scene %d audio synthesis: %w", index, err)
	}
	audio.AudioPath = audioPath
	audio.Synthetic = synthetic

	result := &Result{Scene: model.SceneWork{Script: scene, Audio: &audio}}
	if gate := keywordGate(scene); !gate.Valid {
		result.Warnings = append(result.Warnings, warningStrings(gate.Errors)...)
		p.Log.Warn("keyword gate warnings", "scene", index, "error", gate.Err())
	}
	if gate := pacingGate(audio); !gate.Valid {
		result.Warnings = append(result.Warnings, warningStrings(gate.Errors)...)
		p.Log.Warn("pacing gate warnings", "scene", index, "error", gate.Err())
	}

	captions := caption.Group(audio.Words)
	if gate := caption.Gate(captions, audio.Duration); !gate.Valid {
		return nil, fmt.Errorf("sceneproc: scene %d caption gate rejected: %w", index, gate.Err())
	}
	result.Scene.Captions = captions

	visuals, err := p.buildVisuals(ctx, scene, audio.Duration)
	if err != nil {
		return nil, fmt.Errorf("sceneproc: scene %d: %w", index, err)
	}
	result.Scene.Visuals = visuals

	plan, err := editplan.Build(&audio, captions, visuals)
	if err != nil {
		return nil, fmt.Errorf("sceneproc: scene %d edit plan: %w", index, err)
	}
	result.Scene.Edit = plan

	segmentPath := fmt.Sprintf("%s/scene-%d.mp4", outDir, index)
	if err := p.Renderer.RenderSegment(ctx, render.SegmentConfig{
		Segments:   plan.Segments,
		Captions:   captions,
		AudioPath:  audioPath,
		OutputPath: segmentPath,
	}); err != nil {
		return nil, fmt.Errorf("sceneproc: scene %d render: %w", index, err)
	}
	result.Scene.SegmentPath = segmentPath

	return result, nil
}

// buildVisuals retries the visual timeline build once on failure: the
// second failure is fatal for the scene, per the scene processor's stated
// two-attempt budget.
func (p *Processor) buildVisuals(ctx context.Context, scene model.ScriptScene, duration time.Duration) ([]model.VisualClip, error) {
	builder := visual.NewBuilder(p.Cache, p.Provider)

	var lastErr error
	for attempt := 0; attempt < maxVisualAttempts; attempt++ {
		clips, err := builder.Build(ctx, scene.Keywords, duration)
		if err == nil {
			if gate := visual.Gate(clips, duration); !gate.Valid {
				lastErr = fmt.Errorf("visual gate rejected: %w", gate.Err())
				continue
			}
			return clips, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("visual timeline failed after %d attempts: %w", maxVisualAttempts, lastErr)
}

// keywordGate is a warn-only check: a scene's keyword list should carry 2-3
// lower-case, non-empty terms so the visual timeline builder has something
// concrete to search on. A missing or malformed list still proceeds — the
// builder falls back to an empty-keyword search rather than failing.
func keywordGate(scene model.ScriptScene) model.GateResult {
	var errs []error
	if n := len(scene.Keywords); n < 2 || n > 3 {
		errs = append(errs, fmt.Errorf("scene has %d keywords, want 2-3", n))
	}
	for _, kw := range scene.Keywords {
		if kw == "" {
			errs = append(errs, errors.New("scene keyword list contains an empty entry"))
			continue
		}
		if strings.ToLower(kw) != kw {
			errs = append(errs, fmt.Errorf("keyword %q is not lower-case", kw))
		}
	}
	return model.GateResult{Valid: len(errs) == 0, Errors: errs}
}

// warningStrings renders gate errors to strings for Result.Warnings, which
// is the JSON-facing shape job status responses expose to API clients.
func warningStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// pacingGate is a warn-only check (per the scene processor's stated
// policy): scenes with unusually fast or slow speech are logged, not
// rejected.
func pacingGate(audio model.AudioResult) model.GateResult {
	if len(audio.Words) == 0 {
		return model.GateResult{Valid: true}
	}
	wordsPerSecond := float64(len(audio.Words)) / audio.Duration.Seconds()
	if wordsPerSecond > 4.0 || wordsPerSecond < 1.0 {
		return model.GateResult{
			Valid:  false,
			Errors: []error{fmt.Errorf("unusual pacing: %.2f words/sec", wordsPerSecond)},
		}
	}
	return model.GateResult{Valid: true}
}
