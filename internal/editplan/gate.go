package editplan

import (
	"errors"
	"fmt"
	"time"

	"github.com/shortform/scenecraft/internal/model"
)

const (
	coverageTolerance = 20 * time.Millisecond
	tailTolerance     = 200 * time.Millisecond
)

// Gate validates invariant I4: contiguous coverage of the scene duration
// within tolerance, every segment ≤ 3000ms, zoom only set for emphasis
// segments, and at least one pattern-interrupt segment per 2500ms window.
func Gate(plan *model.EditPlan, totalDuration time.Duration, visuals []model.VisualClip) model.GateResult {
	var errs []error
	segs := plan.Segments

	if len(segs) == 0 {
		return model.GateResult{Valid: false, Errors: []error{errors.New("edit plan has no segments")}}
	}

	if segs[0].Start > coverageTolerance {
		errs = append(errs, fmt.Errorf("first segment starts at %s, beyond tolerance", segs[0].Start))
	}

	for i, s := range segs {
		if d := s.End - s.Start; d > maxSegmentDuration {
			errs = append(errs, fmt.Errorf("segment %d duration %s exceeds %s", i, d, maxSegmentDuration))
		}
		if s.Zoom != 1.0 && !s.EmphasisZoom {
			errs = append(errs, fmt.Errorf("segment %d has zoom %.2f without emphasis reason", i, s.Zoom))
		}
		if !coveredBy(visuals, s.ClipID, s.Start) {
			errs = append(errs, fmt.Errorf("segment %d clip %s does not cover its start", i, s.ClipID))
		}
		if i == 0 {
			continue
		}
		gap := s.Start - segs[i-1].End
		if gap < -coverageTolerance || gap > coverageTolerance {
			errs = append(errs, fmt.Errorf("gap/overlap of %s between segment %d and %d", gap, i-1, i))
		}
	}

	last := segs[len(segs)-1]
	if d := totalDuration - last.End; d > tailTolerance || d < -tailTolerance {
		errs = append(errs, fmt.Errorf("last segment ends at %s, total duration %s", last.End, totalDuration))
	}

	for windowStart := time.Duration(0); windowStart < totalDuration; windowStart += interruptWindow {
		windowEnd := windowStart + interruptWindow
		if !hasInterruptIn(segs, windowStart, windowEnd) {
			errs = append(errs, fmt.Errorf("no pattern interrupt in window [%s,%s)", windowStart, windowEnd))
		}
	}

	return model.GateResult{Valid: len(errs) == 0, Errors: errs}
}

func coveredBy(visuals []model.VisualClip, clipID string, start time.Duration) bool {
	for _, v := range visuals {
		if v.ID == clipID && start >= v.Start && start < v.End {
			return true
		}
	}
	return false
}

func hasInterruptIn(segs []model.EditSegment, start, end time.Duration) bool {
	for _, s := range segs {
		if s.PatternInterrupt && s.Start >= start && s.Start < end {
			return true
		}
	}
	return false
}
