// Package caption implements greedy grouping of word-level timestamps into
// on-screen caption groups, plus the gate that validates the result.
package caption

import (
	"strings"
	"time"

	"github.com/shortform/scenecraft/internal/audiotiming"
	"github.com/shortform/scenecraft/internal/model"
)

const (
	maxWordsPerGroup = 3
	maxGroupDuration = 800 * time.Millisecond
)

// Group greedily packs words left-to-right into captions: a group never
// exceeds 3 words, and never exceeds 800ms measured from its first word's
// start to its last word's end. A word that would push either limit past
// its bound starts a new group instead.
func Group(words []model.WordTimestamp) []model.Caption {
	if len(words) == 0 {
		return nil
	}

	var captions []model.Caption
	var current []model.WordTimestamp

	flush := func() {
		if len(current) == 0 {
			return
		}
		captions = append(captions, model.Caption{
			Text:     joinWords(current),
			Start:    current[0].Start,
			End:      current[len(current)-1].End,
			Emphasis: emphasisIndices(current),
		})
		current = nil
	}

	for _, w := range words {
		candidate := append(append([]model.WordTimestamp{}, current...), w)
		duration := candidate[len(candidate)-1].End - candidate[0].Start

		if len(current) > 0 && (len(candidate) > maxWordsPerGroup || duration > maxGroupDuration) {
			flush()
			current = []model.WordTimestamp{w}
			continue
		}
		current = candidate
	}
	flush()

	return captions
}

func joinWords(words []model.WordTimestamp) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Word
	}
	return strings.Join(parts, " ")
}

// emphasisIndices returns the positions within words that audiotiming's
// emphasis trigger rule flags, so render can draw those words in the
// emphasis style without recomputing the rule.
func emphasisIndices(words []model.WordTimestamp) []int {
	var idx []int
	for i, w := range words {
		if audiotiming.IsEmphasisTrigger(w.Word) {
			idx = append(idx, i)
		}
	}
	return idx
}
