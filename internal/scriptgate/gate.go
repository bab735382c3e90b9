// Package scriptgate implements the deterministic structural validation that
// every LLM-generated script must pass before the pipeline spends any more
// work on it. It is a pure function: same script in, same verdict out.
package scriptgate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shortform/scenecraft/internal/model"
)

const (
	maxHookWords   = 12
	maxEndingWords = 8
)

var bannedPhrases = []string{
	"did you know",
	"in this video",
	"let's talk about",
	"you won't believe",
}

// curiosityPatterns are the four accepted hook shapes. Compiled once at
// package init; none are allowed to fail compilation so a mistake here is a
// build-time, not a run-time, error.
var curiosityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(most|many|some) (people|thinkers|experts) think.*but`),
	regexp.MustCompile(`(?i)nobody (tells|told|is telling) you this about`),
	regexp.MustCompile(`(?i)this sounds wrong, but`),
	regexp.MustCompile(`(?i)(isn't|is not) the problem\..* is\.`),
}

// Check runs every structural rule against script and returns the
// accumulated verdict. A nil or emptyScene script is never passed in by the
// oracle adapter, which always supplies at least a hook and ending scene.
func Check(script *model.Script) model.GateResult {
	var errs []error

	if script == nil || len(script.Scenes) == 0 {
		return model.GateResult{Valid: false, Errors: []error{errors.New("script has no scenes")}}
	}

	hook := script.Scenes[0].Text
	ending := script.Scenes[len(script.Scenes)-1].Text

	if n := wordCount(hook); n > maxHookWords {
		errs = append(errs, fmt.Errorf("hook has %d words, max %d", n, maxHookWords))
	}

	lowerHook := strings.ToLower(hook)
	for _, phrase := range bannedPhrases {
		if strings.Contains(lowerHook, phrase) {
			errs = append(errs, fmt.Errorf("hook contains banned phrase %q", phrase))
		}
	}

	if !matchesAnyCuriosityPattern(hook) {
		errs = append(errs, errors.New("hook matches none of the four curiosity patterns"))
	}

	if n := wordCount(ending); n > maxEndingWords {
		errs = append(errs, fmt.Errorf("ending has %d words, max %d", n, maxEndingWords))
	}

	return model.GateResult{Valid: len(errs) == 0, Errors: errs}
}

func matchesAnyCuriosityPattern(hook string) bool {
	return MatchesCuriosityPattern(hook)
}

// MatchesCuriosityPattern reports whether text matches one of the four
// accepted hook shapes. Exported for the final auditor, which re-checks the
// hook's grab quality independently of this package's structural gate.
func MatchesCuriosityPattern(text string) bool {
	for _, p := range curiosityPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
