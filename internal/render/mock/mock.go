// Package mock provides a render adapter double that writes a fixed-size
// placeholder file instead of shelling out to FFmpeg.
package mock

import (
	"context"
	"os"
	"path/filepath"

	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/render"
)

const placeholderSize = 20 * 1024

var _ render.Renderer = (*Adapter)(nil)

// Adapter implements the same surface as render.Adapter for tests.
type Adapter struct {
	FailSegments bool
	FailConcat   bool
}

func (a *Adapter) RenderSegment(_ context.Context, cfg render.SegmentConfig) error {
	if a.FailSegments {
		return &render.Error{Class: model.RenderErrorUnknown, Stderr: "mock: forced segment failure"}
	}
	return writePlaceholder(cfg.OutputPath)
}

func (a *Adapter) Concat(_ context.Context, _ []string, outputPath string) error {
	if a.FailConcat {
		return &render.Error{Class: model.RenderErrorUnknown, Stderr: "mock: forced concat failure"}
	}
	return writePlaceholder(outputPath)
}

func writePlaceholder(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, make([]byte, placeholderSize), 0o644)
}
