package visual

import (
	"errors"
	"fmt"
	"time"

	"github.com/shortform/scenecraft/internal/model"
)

const coverageTolerance = 20 * time.Millisecond

// Gate validates coverage invariant I3: clips are contiguous within a 20ms
// tolerance, each clip duration falls in [800ms,3000ms], and clip IDs are
// unique unless explicitly marked reused.
func Gate(clips []model.VisualClip, totalDuration time.Duration) model.GateResult {
	var errs []error

	if len(clips) == 0 {
		return model.GateResult{Valid: false, Errors: []error{errors.New("no visual clips")}}
	}

	if clips[0].Start > coverageTolerance {
		errs = append(errs, fmt.Errorf("first clip starts at %s, beyond tolerance", clips[0].Start))
	}

	seen := make(map[string]bool, len(clips))
	for i, c := range clips {
		if d := c.End - c.Start; d < minClipFloor-coverageTolerance || d > maxClipCeil+coverageTolerance {
			errs = append(errs, fmt.Errorf("clip %d duration %s outside [%s,%s]", i, d, minClipFloor, maxClipCeil))
		}
		if !c.Reused && seen[c.ID] {
			errs = append(errs, fmt.Errorf("clip %d (%s) reused without Reused flag set", i, c.ID))
		}
		seen[c.ID] = true

		if i == 0 {
			continue
		}
		prev := clips[i-1]
		gap := c.Start - prev.End
		if gap < -coverageTolerance || gap > coverageTolerance {
			errs = append(errs, fmt.Errorf("gap/overlap of %s between clip %d and %d exceeds tolerance", gap, i-1, i))
		}
	}

	last := clips[len(clips)-1]
	if d := totalDuration - last.End; d > coverageTolerance || d < -coverageTolerance {
		errs = append(errs, fmt.Errorf("last clip ends at %s, total duration is %s", last.End, totalDuration))
	}

	return model.GateResult{Valid: len(errs) == 0, Errors: errs}
}
