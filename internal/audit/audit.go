// Package audit implements the Final Auditor: a last GO/NO-GO pass over a
// completed script and its timing, run after rendering and before a job is
// reported as successfully completed. Unlike the per-stage gates, the
// auditor judges narrative quality heuristics, not structural correctness.
package audit

import (
	"strings"
	"time"

	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/scriptgate"
)

const (
	pacingWindowWords  = 5
	pacingStrideWords  = 5
	pacingWpsTolerance = 0.2
	pacingMaxUniform   = 4 * time.Second
)

var hookGrabWords = []string{"but", "wrong", "lie", "secret", "nobody", "stop", "failed"}

var stanceMarkers = []string{"isnt", "is not", "problem", "truth", "lies", "failed", "shouldnt"}

var politeEndings = []string{"summary", "conclude", "in conclusion", "thank you", "follow for more"}

// Run evaluates A1 through A4 against the full script and its synthesized
// word timeline across every scene. A single failing check is a NO-GO: the
// job fails with that check's reason text, matching spec.md's "any NO-GO
// fails the job" rule.
func Run(script *model.Script, words []model.WordTimestamp) model.AuditResult {
	if script == nil || len(script.Scenes) == 0 {
		return model.AuditResult{Go: false, Reasons: []string{"no script to audit"}}
	}

	var reasons []string

	if !hookGrabs(script.Scenes[0].Text) {
		reasons = append(reasons, "First 2 seconds feel skippable")
	}
	if uniformFor := longestUniformPacing(words); uniformFor > pacingMaxUniform {
		reasons = append(reasons, "Pacing feels uniform")
	}
	if !hasStance(script) {
		reasons = append(reasons, "Video feels neutral and safe")
	}
	if isPolite(script.Scenes[len(script.Scenes)-1].Text) {
		reasons = append(reasons, "Video feels complete/polite")
	}

	return model.AuditResult{Go: len(reasons) == 0, Reasons: reasons}
}

// hookGrabs is A1: the hook must either contain one of the blunt grab words
// or match one of the four curiosity-gap sentence shapes already compiled
// in scriptgate.
func hookGrabs(hook string) bool {
	lower := strings.ToLower(hook)
	for _, w := range hookGrabWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return scriptgate.MatchesCuriosityPattern(hook)
}

// longestUniformPacing is A2: slide a 5-word window with stride 5 across
// the full word timeline, compute words-per-second per window, and
// accumulate duration across consecutive windows whose wps differs by
// less than the tolerance. Returns the longest such accumulated run.
func longestUniformPacing(words []model.WordTimestamp) time.Duration {
	if len(words) < pacingWindowWords*2 {
		return 0
	}

	var windows []float64
	var windowDurations []time.Duration
	for start := 0; start+pacingWindowWords <= len(words); start += pacingStrideWords {
		end := start + pacingWindowWords - 1
		span := words[end].End - words[start].Start
		if span <= 0 {
			continue
		}
		wps := float64(pacingWindowWords) / span.Seconds()
		windows = append(windows, wps)
		windowDurations = append(windowDurations, span)
	}

	var longest, current time.Duration
	for i := 1; i < len(windows); i++ {
		diff := windows[i] - windows[i-1]
		if diff < 0 {
			diff = -diff
		}
		if diff < pacingWpsTolerance {
			current += windowDurations[i]
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// hasStance is A3: the union of the hook and every scene's text must
// contain at least one stance-taking marker.
func hasStance(script *model.Script) bool {
	var all strings.Builder
	for _, s := range script.Scenes {
		all.WriteString(strings.ToLower(s.Text))
		all.WriteByte(' ')
	}
	text := all.String()
	for _, m := range stanceMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// isPolite is A4: the ending must not wind down with a summary/conclusion/
// thank-you/follow-for-more phrase.
func isPolite(ending string) bool {
	lower := strings.ToLower(ending)
	for _, p := range politeEndings {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
