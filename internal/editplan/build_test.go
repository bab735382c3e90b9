package editplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortform/scenecraft/internal/model"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func wt(word string, start, end int) model.WordTimestamp {
	return model.WordTimestamp{Word: word, Start: ms(start), End: ms(end)}
}

func buildFixture() (*model.AudioResult, []model.Caption, []model.VisualClip) {
	words := []model.WordTimestamp{
		wt("but", 0, 300), wt("never", 300, 600), wt("stop", 600, 900),
		wt("trying", 900, 1200), wt("hard", 1200, 1500), wt("work", 1500, 1800),
	}
	audio := &model.AudioResult{Words: words, Duration: ms(1800)}

	captions := []model.Caption{
		{Text: "but never stop", Start: ms(0), End: ms(900)},
		{Text: "trying hard work", Start: ms(900), End: ms(1800)},
	}

	visuals := []model.VisualClip{
		{ID: "clip-a", Path: "/a.mp4", Start: ms(0), End: ms(1000)},
		{ID: "clip-b", Path: "/b.mp4", Start: ms(1000), End: ms(1800)},
	}

	return audio, captions, visuals
}

func TestBuild_ProducesContiguousCoverage(t *testing.T) {
	audio, captions, visuals := buildFixture()

	plan, err := Build(audio, captions, visuals)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Segments)
	assert.Equal(t, time.Duration(0), plan.Segments[0].Start, "expected first segment to start at 0")

	last := plan.Segments[len(plan.Segments)-1]
	assert.GreaterOrEqual(t, last.End, audio.Duration-tailTolerance)
	assert.LessOrEqual(t, last.End, audio.Duration+tailTolerance)
}

func TestBuild_EmphasisWordsBecomeOwnSegments(t *testing.T) {
	audio, captions, visuals := buildFixture()

	plan, err := Build(audio, captions, visuals)
	require.NoError(t, err)

	foundZoom := false
	for _, s := range plan.Segments {
		if s.EmphasisZoom {
			foundZoom = true
			assert.Equal(t, 1.05, s.Zoom)
		}
	}
	assert.True(t, foundZoom, "expected at least one emphasis-zoomed segment from 'but'/'never'/'stop'")
}

func TestBuild_RejectsMissingVisuals(t *testing.T) {
	audio, captions, _ := buildFixture()
	// No visuals at all: step 5 attachVisuals must fail with ErrNoCoveringClip.
	_, err := Build(audio, captions, nil)
	assert.Error(t, err, "expected an error when no visual clips are supplied")
}
