package caption

import (
	"fmt"
	"strings"
	"time"

	"github.com/shortform/scenecraft/internal/model"
)

const (
	overrunTolerance = 100 * time.Millisecond
	// gateMaxGroupDuration is the invariant-level ceiling (I2), looser than
	// the 800ms threshold Group enforces while building — a plan that was
	// constructed correctly always satisfies this with margin.
	gateMaxGroupDuration = 900 * time.Millisecond
)

// Gate re-validates the grouping invariants plus cross-caption ordering: no
// group may exceed the word/duration limits, consecutive groups may not
// overlap, and the last group must end within audio.duration_ms + 100ms.
func Gate(captions []model.Caption, audioDuration time.Duration) model.GateResult {
	var errs []error

	for i, c := range captions {
		if d := c.End - c.Start; d > gateMaxGroupDuration {
			errs = append(errs, fmt.Errorf("caption %d duration %s exceeds %s", i, d, gateMaxGroupDuration))
		}
		if words := len(strings.Fields(c.Text)); words > maxWordsPerGroup {
			errs = append(errs, fmt.Errorf("caption %d has %d words, max %d", i, words, maxWordsPerGroup))
		}
		if i == 0 {
			continue
		}
		if c.Start < captions[i-1].End {
			errs = append(errs, fmt.Errorf("caption %d overlaps caption %d", i, i-1))
		}
	}

	if len(captions) > 0 {
		last := captions[len(captions)-1]
		if last.End > audioDuration+overrunTolerance {
			errs = append(errs, fmt.Errorf("last caption ends at %s, beyond audio duration %s + tolerance", last.End, audioDuration))
		}
	}

	return model.GateResult{Valid: len(errs) == 0, Errors: errs}
}
