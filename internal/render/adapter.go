package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shortform/scenecraft/internal/model"
)

const minOutputBytes = 10 * 1024

// classifiers maps a substring found in FFmpeg's stderr to the error
// classification the rest of the pipeline reports. Checked in order; the
// first match wins.
var classifiers = []struct {
	substr string
	class  model.RenderErrorType
}{
	{"no such file", model.RenderErrorAssetMissing},
	{"could not find codec", model.RenderErrorCodecFailure},
	{"invalid data found", model.RenderErrorCodecFailure},
	{"dts", model.RenderErrorTimingMismatch},
	{"cannot allocate memory", model.RenderErrorResourceExhaustion},
	{"no space left", model.RenderErrorResourceExhaustion},
}

// Error wraps a failed render invocation with its classification and
// captured stderr.
type Error struct {
	Class  model.RenderErrorType
	Stderr string
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: %s: %s", e.Class, e.Stderr)
}

// Renderer is the surface sceneproc and the worker pool depend on, so tests
// can substitute render/mock.Adapter for the real FFmpeg-shelling Adapter.
type Renderer interface {
	RenderSegment(ctx context.Context, cfg SegmentConfig) error
	Concat(ctx context.Context, segmentPaths []string, outputPath string) error
}

// Adapter invokes the external FFmpeg binary. It writes filter graphs to a
// temp script file to avoid command-line length limits, per the teacher
// pattern of separating pure argv construction from subprocess execution.
type Adapter struct {
	FFmpegPath string
	ScratchDir string
}

var _ Renderer = (*Adapter)(nil)

// New returns an Adapter using ffmpegPath and writing scratch filter
// scripts under scratchDir.
func New(ffmpegPath, scratchDir string) *Adapter {
	return &Adapter{FFmpegPath: ffmpegPath, ScratchDir: scratchDir}
}

// RenderSegment composites one scene's clips, audio, and captions into a
// single output file.
func (a *Adapter) RenderSegment(ctx context.Context, cfg SegmentConfig) error {
	graph := BuildSegmentFilterGraph(cfg)

	scriptPath, err := a.writeScratchFile("filter-*.txt", graph)
	if err != nil {
		return fmt.Errorf("render: write filter script: %w", err)
	}
	defer os.Remove(scriptPath)

	clipPaths := make([]string, len(cfg.Segments))
	for i, s := range cfg.Segments {
		clipPaths[i] = s.ClipPath
	}

	args := BuildSegmentArgs(a.FFmpegPath, clipPaths, cfg.AudioPath, scriptPath, cfg.OutputPath)
	return a.run(ctx, args, cfg.OutputPath)
}

// Concat stream-copies per-scene segment files into the final timeline.
func (a *Adapter) Concat(ctx context.Context, segmentPaths []string, outputPath string) error {
	listPath, err := a.writeScratchFile("concat-*.txt", BuildConcatList(segmentPaths))
	if err != nil {
		return fmt.Errorf("render: write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := BuildConcatArgs(a.FFmpegPath, listPath, outputPath)
	return a.run(ctx, args, outputPath)
}

func (a *Adapter) writeScratchFile(pattern, content string) (string, error) {
	if err := os.MkdirAll(a.ScratchDir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(a.ScratchDir, pattern)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func (a *Adapter) run(ctx context.Context, args []string, outputPath string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return &Error{Class: classify(stderr.String()), Stderr: stderr.String()}
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil {
		return &Error{Class: model.RenderErrorAssetMissing, Stderr: stderr.String()}
	}
	if info.Size() < minOutputBytes {
		return &Error{Class: model.RenderErrorUnknown, Stderr: "output file below minimum size threshold"}
	}

	return nil
}

func classify(stderr string) model.RenderErrorType {
	lower := strings.ToLower(stderr)
	for _, c := range classifiers {
		if strings.Contains(lower, c.substr) {
			return c.class
		}
	}
	return model.RenderErrorUnknown
}

// EnsureDir is a small helper the worker pool uses before rendering, kept
// here since every output directory render writes to follows the same
// job-scoped layout.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
