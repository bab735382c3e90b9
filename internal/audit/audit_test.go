package audit

import (
	"testing"
	"time"

	"github.com/shortform/scenecraft/internal/model"
)

func wordsAtConstantPace(n int, wordDur time.Duration) []model.WordTimestamp {
	words := make([]model.WordTimestamp, n)
	t := time.Duration(0)
	for i := range words {
		words[i] = model.WordTimestamp{Word: "word", Start: t, End: t + wordDur}
		t += wordDur
	}
	return words
}

func TestRun_AllChecksPass(t *testing.T) {
	script := &model.Script{
		Scenes: []model.ScriptScene{
			{Text: "Nobody tells you this about failure"},
			{Text: "The truth is the problem isnt what you think"},
			{Text: "So stay curious"},
		},
	}
	words := wordsAtConstantPace(15, 300*time.Millisecond)
	result := Run(script, words)
	if !result.Go {
		t.Fatalf("expected GO, got NO-GO: %v", result.Reasons)
	}
}

func TestRun_SkippableHookIsNoGo(t *testing.T) {
	script := &model.Script{
		Scenes: []model.ScriptScene{
			{Text: "Today we will discuss a topic"},
			{Text: "The problem isnt what you think"},
		},
	}
	result := Run(script, wordsAtConstantPace(10, 300*time.Millisecond))
	if result.Go {
		t.Fatal("expected NO-GO for a hook with no grab")
	}
	if len(result.Reasons) == 0 || result.Reasons[0] != "First 2 seconds feel skippable" {
		t.Fatalf("unexpected reasons: %v", result.Reasons)
	}
}

func TestRun_PoliteEndingIsNoGo(t *testing.T) {
	script := &model.Script{
		Scenes: []model.ScriptScene{
			{Text: "Nobody tells you this about failure"},
			{Text: "The truth is the problem isnt what you think"},
			{Text: "Thank you for watching"},
		},
	}
	result := Run(script, wordsAtConstantPace(10, 300*time.Millisecond))
	if result.Go {
		t.Fatal("expected NO-GO for a polite ending")
	}
}

func TestRun_NeutralScriptIsNoGo(t *testing.T) {
	script := &model.Script{
		Scenes: []model.ScriptScene{
			{Text: "Nobody tells you this about weather"},
			{Text: "Clouds form over the mountains"},
		},
	}
	result := Run(script, wordsAtConstantPace(10, 300*time.Millisecond))
	if result.Go {
		t.Fatal("expected NO-GO for a neutral/safe script with no stance markers")
	}
}

func TestLongestUniformPacing_ConstantPaceAccumulates(t *testing.T) {
	words := wordsAtConstantPace(30, 200*time.Millisecond)
	d := longestUniformPacing(words)
	if d <= 0 {
		t.Fatal("expected a nonzero uniform run for perfectly constant pacing")
	}
}
