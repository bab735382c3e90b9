package scriptgate

import (
	"testing"

	"github.com/shortform/scenecraft/internal/model"
)

func scriptWith(hook, ending string) *model.Script {
	return &model.Script{
		Scenes: []model.ScriptScene{
			{Index: 0, Text: hook},
			{Index: 1, Text: "body scene text goes here"},
			{Index: 2, Text: ending},
		},
	}
}

func TestCheck_RejectsBannedPhrase(t *testing.T) {
	result := Check(scriptWith("In this video we explain coffee", "that's the science"))
	if result.Valid {
		t.Fatal("expected rejection for banned phrase")
	}
}

func TestCheck_AcceptsPatternP1(t *testing.T) {
	result := Check(scriptWith("Most people think coffee wakes you, but it blocks adenosine", "that's the science"))
	if !result.Valid {
		t.Fatalf("expected acceptance, got errors: %v", result.Errors)
	}
}

func TestCheck_RejectsHookTooLong(t *testing.T) {
	hook := "Most people think coffee wakes you up instantly but it actually blocks adenosine receptors slowly over time"
	result := Check(scriptWith(hook, "that's the science"))
	if result.Valid {
		t.Fatal("expected rejection for hook word count")
	}
}

func TestCheck_RejectsEndingTooLong(t *testing.T) {
	result := Check(scriptWith(
		"Nobody tells you this about caffeine metabolism",
		"that is the full and complete scientific explanation of it all",
	))
	if result.Valid {
		t.Fatal("expected rejection for ending word count")
	}
}

func TestCheck_RejectsNoPatternMatch(t *testing.T) {
	result := Check(scriptWith("Coffee is a popular morning beverage", "enjoy your cup"))
	if result.Valid {
		t.Fatal("expected rejection: hook matches no curiosity pattern")
	}
}

func TestCheck_NilScript(t *testing.T) {
	result := Check(nil)
	if result.Valid {
		t.Fatal("expected nil script to be invalid")
	}
}
