package audiotiming

import (
	"fmt"
	"time"

	"github.com/shortform/scenecraft/internal/model"
)

const maxInterWordGap = 600 * time.Millisecond

// Gate validates a fully-assembled [model.AudioResult] against a target
// duration: the synthesized audio must not overrun the requested length by
// more than 10%, timestamps must be strictly ordered and non-overlapping,
// and no gap between consecutive words may exceed 600ms.
func Gate(audio *model.AudioResult, targetDuration time.Duration) model.GateResult {
	var errs []error

	limit := time.Duration(float64(targetDuration) * 1.1)
	if audio.Duration > limit {
		errs = append(errs, fmt.Errorf("audio duration %s exceeds limit %s", audio.Duration, limit))
	}

	for i, w := range audio.Words {
		if w.End < w.Start {
			errs = append(errs, fmt.Errorf("word %d (%q) ends before it starts", i, w.Word))
			continue
		}
		if i == 0 {
			continue
		}
		prev := audio.Words[i-1]
		if w.Start < prev.End {
			errs = append(errs, fmt.Errorf("word %d (%q) overlaps previous word", i, w.Word))
			continue
		}
		if gap := w.Start - prev.End; gap > maxInterWordGap {
			errs = append(errs, fmt.Errorf("gap of %s before word %d (%q) exceeds %s", gap, i, w.Word, maxInterWordGap))
		}
	}

	return model.GateResult{Valid: len(errs) == 0, Errors: errs}
}
