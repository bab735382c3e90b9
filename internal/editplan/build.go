// Package editplan deterministically turns a scene's audio, captions, and
// visual timeline into a validated cut list: the segments an external
// renderer will composite into one scene's video clip.
package editplan

import (
	"errors"
	"fmt"
	"time"

	"github.com/shortform/scenecraft/internal/audiotiming"
	"github.com/shortform/scenecraft/internal/model"
)

// ErrPatternInterruptUnsatisfiable is returned when a 2.5s window contains
// no non-emphasis segment to mark as a pattern interrupt. This is fatal for
// the scene: there is no safe synthetic segment to substitute, since
// inserting one would misrepresent the emphasis layout the caller already
// committed to.
var ErrPatternInterruptUnsatisfiable = errors.New("editplan: pattern interrupt window has no eligible segment")

// ErrNoCoveringClip is returned when step 5 finds no visual clip covering a
// segment's start — a visual timeline that does not cover the full scene
// duration is an upstream bug, not a recoverable condition here.
var ErrNoCoveringClip = errors.New("editplan: no visual clip covers segment start")

const (
	maxSegmentDuration = 3000 * time.Millisecond
	gapTolerance       = 20 * time.Millisecond
	interruptWindow    = 2500 * time.Millisecond
)

// workSegment is the mutable intermediate representation used while
// building the plan; it carries the underlying words so later steps can
// detect emphasis and split at word boundaries. It collapses to
// [model.EditSegment] once the plan is final.
type workSegment struct {
	words     []model.WordTimestamp
	start     time.Duration
	end       time.Duration
	isSilence bool
}

// Build runs the eight deterministic construction steps and returns the
// validated plan, or the first fatal error encountered.
func Build(audio *model.AudioResult, captions []model.Caption, visuals []model.VisualClip) (*model.EditPlan, error) {
	segments := baseSegments(audio.Words, captions)
	segments = splitOverlong(segments)
	segments = isolateEmphasis(segments)
	segments = fillGaps(segments, audio.Duration)

	final, err := attachVisuals(segments, visuals)
	if err != nil {
		return nil, err
	}
	applyEmphasisZoom(final, segments)
	if err := applyPatternInterrupts(final, audio.Duration); err != nil {
		return nil, err
	}

	plan := &model.EditPlan{Segments: final}
	if result := Gate(plan, audio.Duration, visuals); !result.Valid {
		return nil, fmt.Errorf("editplan: gate rejected plan: %w", result.Err())
	}
	return plan, nil
}

// baseSegments maps captions 1:1 onto the underlying words they cover.
func baseSegments(words []model.WordTimestamp, captions []model.Caption) []workSegment {
	segments := make([]workSegment, 0, len(captions))
	wi := 0
	for _, c := range captions {
		var covered []model.WordTimestamp
		for wi < len(words) && words[wi].Start >= c.Start && words[wi].End <= c.End {
			covered = append(covered, words[wi])
			wi++
		}
		segments = append(segments, workSegment{words: covered, start: c.Start, end: c.End})
	}
	return segments
}

// splitOverlong splits any segment longer than 3000ms at the nearest prior
// word boundary, repeating until every segment fits.
func splitOverlong(segments []workSegment) []workSegment {
	var out []workSegment
	for _, seg := range segments {
		out = append(out, splitOneByDuration(seg)...)
	}
	return out
}

func splitOneByDuration(seg workSegment) []workSegment {
	if seg.end-seg.start <= maxSegmentDuration || len(seg.words) <= 1 {
		return []workSegment{seg}
	}

	// Find the last word whose end keeps the running segment within the cap.
	splitAt := 1
	for i := 1; i < len(seg.words); i++ {
		if seg.words[i].End-seg.words[0].Start > maxSegmentDuration {
			break
		}
		splitAt = i + 1
	}
	if splitAt >= len(seg.words) {
		splitAt = len(seg.words) - 1
	}

	head := workSegment{
		words: seg.words[:splitAt],
		start: seg.words[0].Start,
		end:   seg.words[splitAt-1].End,
	}
	tail := workSegment{
		words: seg.words[splitAt:],
		start: seg.words[splitAt].Start,
		end:   seg.end,
	}
	return append([]workSegment{head}, splitOneByDuration(tail)...)
}

// isolateEmphasis splits every emphasis word in a segment out into its own
// one-word segment, retaining the non-emphasis remainder around it.
func isolateEmphasis(segments []workSegment) []workSegment {
	var out []workSegment
	for _, seg := range segments {
		out = append(out, isolateOne(seg)...)
	}
	return out
}

func isolateOne(seg workSegment) []workSegment {
	if len(seg.words) <= 1 {
		return []workSegment{seg}
	}

	hasEmphasis := false
	for _, w := range seg.words {
		if audiotiming.IsEmphasisTrigger(w.Word) {
			hasEmphasis = true
			break
		}
	}
	if !hasEmphasis {
		return []workSegment{seg}
	}

	var out []workSegment
	var run []model.WordTimestamp
	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, workSegment{words: run, start: run[0].Start, end: run[len(run)-1].End})
		run = nil
	}
	for _, w := range seg.words {
		if audiotiming.IsEmphasisTrigger(w.Word) {
			flush()
			out = append(out, workSegment{words: []model.WordTimestamp{w}, start: w.Start, end: w.End})
			continue
		}
		run = append(run, w)
	}
	flush()
	return out
}

// fillGaps inserts synthetic silence segments wherever a gap of more than
// 20ms opens between the expected cursor and the next segment's start, plus
// a trailing silence covering any shortfall to the scene's total duration.
func fillGaps(segments []workSegment, totalDuration time.Duration) []workSegment {
	var out []workSegment
	var cursor time.Duration
	silenceIdx := 0

	for _, seg := range segments {
		for seg.start-cursor > gapTolerance {
			fillEnd := seg.start
			if fillEnd-cursor > maxSegmentDuration {
				fillEnd = cursor + maxSegmentDuration
			}
			out = append(out, silenceSegment(silenceIdx, cursor, fillEnd))
			silenceIdx++
			cursor = fillEnd
		}
		out = append(out, seg)
		cursor = seg.end
	}

	for totalDuration-cursor > gapTolerance {
		fillEnd := totalDuration
		if fillEnd-cursor > maxSegmentDuration {
			fillEnd = cursor + maxSegmentDuration
		}
		out = append(out, silenceSegment(silenceIdx, cursor, fillEnd))
		silenceIdx++
		cursor = fillEnd
	}

	return out
}

func silenceSegment(idx int, start, end time.Duration) workSegment {
	return workSegment{
		words:     []model.WordTimestamp{{Word: fmt.Sprintf("silence_%d", idx), Start: start, End: end}},
		start:     start,
		end:       end,
		isSilence: true,
	}
}

// attachVisuals resolves each segment's clip by finding the visual whose
// [start,end) contains the segment's start.
func attachVisuals(segments []workSegment, visuals []model.VisualClip) ([]model.EditSegment, error) {
	out := make([]model.EditSegment, 0, len(segments))
	for _, seg := range segments {
		clip, ok := coveringClip(visuals, seg.start)
		if !ok {
			return nil, fmt.Errorf("%w: segment at %s", ErrNoCoveringClip, seg.start)
		}
		out = append(out, model.EditSegment{
			ClipID:   clip.ID,
			ClipPath: clip.Path,
			Start:    seg.start,
			End:      seg.end,
			Zoom:     1.0,
			Pan:      model.Pans[0],
		})
	}
	return out, nil
}

func coveringClip(visuals []model.VisualClip, t time.Duration) (model.VisualClip, bool) {
	for _, v := range visuals {
		if t >= v.Start && t < v.End {
			return v, true
		}
	}
	return model.VisualClip{}, false
}

// applyEmphasisZoom sets zoom on every segment made of a single
// emphasis-trigger word. A caption's Emphasis indices are not consulted, so
// the non-emphasis remainder of an emphasized caption keeps zoom 1.0.
func applyEmphasisZoom(final []model.EditSegment, segments []workSegment) {
	for i := range final {
		final[i].Zoom = 1.0
	}
	for i, seg := range segments {
		if len(seg.words) == 1 && audiotiming.IsEmphasisTrigger(seg.words[0].Word) {
			final[i].Zoom = 1.05
			final[i].EmphasisZoom = true
		}
	}
}

// applyPatternInterrupts marks one non-emphasis segment per 2500ms window
// as a pattern interrupt, choosing its pan deterministically from the
// sum of the clip ID's character codes.
func applyPatternInterrupts(final []model.EditSegment, totalDuration time.Duration) error {
	for windowStart := time.Duration(0); windowStart < totalDuration; windowStart += interruptWindow {
		windowEnd := windowStart + interruptWindow
		idx, ok := firstNonEmphasisIn(final, windowStart, windowEnd)
		if !ok {
			return fmt.Errorf("%w: window [%s,%s)", ErrPatternInterruptUnsatisfiable, windowStart, windowEnd)
		}
		final[idx].PatternInterrupt = true
		final[idx].Pan = model.Pans[panIndex(final[idx].ClipID)]
	}
	return nil
}

// panIndex derives a deterministic, non-"none" pan direction from the sum
// of a clip ID's character codes.
func panIndex(clipID string) int {
	sum := 0
	for _, r := range clipID {
		sum += int(r)
	}
	return (sum % (len(model.Pans) - 1)) + 1
}

func firstNonEmphasisIn(final []model.EditSegment, start, end time.Duration) (int, bool) {
	for i, seg := range final {
		if seg.EmphasisZoom {
			continue
		}
		if seg.Start >= start && seg.Start < end {
			return i, true
		}
	}
	return 0, false
}
