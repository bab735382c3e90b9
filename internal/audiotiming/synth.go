// Package audiotiming assigns word-level timestamps to a scene's text
// without requiring any real audio — the timing model is authoritative
// regardless of which synthesis path (premium TTS, SAPI-equivalent, silent
// WAV) eventually produces the audio file.
package audiotiming

import (
	"regexp"
	"strings"
	"time"

	"github.com/shortform/scenecraft/internal/model"
)

const baseWordDuration = 300 * time.Millisecond

var emphasisWords = map[string]bool{
	"but": true, "however": true, "instead": true, "secret": true,
	"hidden": true, "mastery": true, "always": true, "never": true,
	"must": true, "only": true, "stop": true, "start": true, "limit": true,
}

var digitsOnly = regexp.MustCompile(`\d+`)
var nonWordChars = regexp.MustCompile(`[^\w]+`)

// Synthesize assigns timestamps to every word across scenes, in order, with
// an inter-scene pause between each pair of scenes (none after the last).
// It returns one [model.AudioResult] per scene plus the grand total
// duration, since the pause between scenes belongs to neither scene alone.
func Synthesize(scenes []model.ScriptScene) (perScene []model.AudioResult, total time.Duration) {
	n := len(scenes)
	var cursor time.Duration

	perScene = make([]model.AudioResult, n)

	for i, scene := range scenes {
		mult := sceneMultiplier(i, n)
		words := strings.Fields(scene.Text)
		timestamps := make([]model.WordTimestamp, 0, len(words))
		sceneStart := cursor

		for _, w := range words {
			d := wordDuration(w, mult)
			ts := model.WordTimestamp{Word: w, Start: cursor, End: cursor + d}
			timestamps = append(timestamps, ts)
			cursor += d
		}

		perScene[i] = model.AudioResult{
			Words:    timestamps,
			Duration: cursor - sceneStart,
		}

		if i < n-1 {
			sectionDuration := cursor - sceneStart
			cursor += pauseDuration(sectionDuration)
		}
	}

	return perScene, cursor
}

func sceneMultiplier(i, n int) float64 {
	switch {
	case i == 0:
		return 0.8
	case i == n-1:
		return 1.2
	default:
		return 1.0
	}
}

func wordDuration(word string, sceneMultiplier float64) time.Duration {
	d := float64(baseWordDuration) * sceneMultiplier
	if IsEmphasisTrigger(word) {
		d *= 1.15
	}
	return time.Duration(d)
}

// IsEmphasisTrigger reports whether word (after lower-casing and stripping
// non-word characters) is a timing/visual emphasis trigger: any token
// containing a digit, or one of a fixed set of emphasis words.
func IsEmphasisTrigger(word string) bool {
	normalized := nonWordChars.ReplaceAllString(strings.ToLower(word), "")
	if digitsOnly.MatchString(normalized) {
		return true
	}
	return emphasisWords[normalized]
}

func pauseDuration(sectionDuration time.Duration) time.Duration {
	p := time.Duration(float64(sectionDuration) * 0.15)
	const min = 150 * time.Millisecond
	const max = 450 * time.Millisecond
	if p < min {
		return min
	}
	if p > max {
		return max
	}
	return p
}
