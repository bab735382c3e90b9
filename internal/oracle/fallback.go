package oracle

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shortform/scenecraft/internal/model"
)

// FallbackSkeleton builds the canned 7-scene script used when every
// configured backend has failed. It is built to satisfy pattern P1 on its
// own (a "most people think X, but Y" hook). The worker runs the script gate
// on it like on any other script, with no exemption, so a topic long enough
// to push the hook past the word-count bound gets it rejected.
func FallbackSkeleton(topic string) *model.Script {
	hook := fmt.Sprintf("Most people think %s is simple, but it isn't", topic)
	ending := fmt.Sprintf("%s changes everything", capitalize(topic))

	topicLower := strings.ToLower(topic)
	scenes := []model.ScriptScene{
		{Index: 0, Text: hook, Keywords: []string{topicLower, "question"}},
		{Index: 1, Text: fmt.Sprintf("Here's what actually happens with %s.", topic), Keywords: []string{topicLower, "closeup"}},
		{Index: 2, Text: fmt.Sprintf("The first step is understanding %s at its core.", topic), Keywords: []string{topicLower, "explainer"}},
		{Index: 3, Text: fmt.Sprintf("Most explanations of %s stop right there.", topic), Keywords: []string{topicLower, "crowd"}},
		{Index: 4, Text: fmt.Sprintf("But the real story of %s goes deeper.", topic), Keywords: []string{topicLower, "detail"}},
		{Index: 5, Text: fmt.Sprintf("Once you see it, %s never looks the same again.", topic), Keywords: []string{topicLower, "reveal"}},
		{Index: 6, Text: ending, Keywords: []string{topicLower, "outro"}},
	}

	return &model.Script{
		Hook:   hook,
		Scenes: scenes,
		Ending: ending,
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
