package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxFileAge = 7 * 24 * time.Hour

// Sweeper deletes stale generated files from a fixed set of directories,
// skipping any file whose name contains a currently marked job ID.
type Sweeper struct {
	Dirs   []string
	Marker *Marker
	Log    *slog.Logger

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewSweeper returns a Sweeper over dirs, exempting files marked via marker.
func NewSweeper(dirs []string, marker *Marker, log *slog.Logger) *Sweeper {
	return &Sweeper{Dirs: dirs, Marker: marker, Log: log, now: time.Now}
}

// Run performs one sweep pass: every configured directory is scanned
// non-recursively, and regular files older than the retention window are
// removed unless a marked job ID appears as a substring of the filename.
func (s *Sweeper) Run(ctx context.Context) error {
	marked := s.Marker.snapshot()
	cutoff := s.now().Add(-maxFileAge)
	removed := 0

	for _, dir := range s.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		for _, entry := range entries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if entry.IsDir() {
				continue
			}
			if exemptByMark(entry.Name(), marked) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.Log.Warn("cleanup: failed to remove stale file", "path", path, "error", err)
				continue
			}
			removed++
		}
	}

	s.Log.Info("cleanup sweep complete", "removed", removed, "dirs", s.Dirs)
	return nil
}

// RunPeriodically runs an initial sweep immediately, then repeats every
// interval until ctx is cancelled. Intended to be launched as a background
// goroutine from cmd/scenecraft, mirroring the teacher's fire-once-then-
// loop startup pattern.
func (s *Sweeper) RunPeriodically(ctx context.Context, interval time.Duration) {
	if err := s.Run(ctx); err != nil {
		s.Log.Error("cleanup: initial sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.Log.Error("cleanup: periodic sweep failed", "error", err)
			}
		}
	}
}

func exemptByMark(filename string, marked []string) bool {
	for _, id := range marked {
		if id != "" && strings.Contains(filename, id) {
			return true
		}
	}
	return false
}
