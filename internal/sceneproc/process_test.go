package sceneproc

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shortform/scenecraft/internal/assetcache"
	"github.com/shortform/scenecraft/internal/model"
	rendermock "github.com/shortform/scenecraft/internal/render/mock"
	stockmock "github.com/shortform/scenecraft/internal/stockprovider/mock"
	"github.com/shortform/scenecraft/internal/tts"
)

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	return &Processor{
		Cache:    assetcache.New(),
		Provider: stockmock.New(t.TempDir(), 4),
		TTS:      tts.NewCascade(slog.Default()),
		Renderer: &rendermock.Adapter{},
		Log:      slog.Default(),
	}
}

func wordsFor(text string, start time.Duration, perWord time.Duration) []model.WordTimestamp {
	var words []model.WordTimestamp
	t := start
	for _, w := range splitWords(text) {
		words = append(words, model.WordTimestamp{Word: w, Start: t, End: t + perWord})
		t += perWord
	}
	return words
}

func splitWords(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ' ' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func TestProcess_ProducesRenderedSegment(t *testing.T) {
	p := testProcessor(t)
	scene := model.ScriptScene{Index: 0, Text: "the city never sleeps at night", Emphasis: []string{"city", "night"}}
	words := wordsFor(scene.Text, 0, 400*time.Millisecond)
	audio := model.AudioResult{Words: words, Duration: words[len(words)-1].End}

	result, err := p.Process(context.Background(), scene, audio, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result.Scene.SegmentPath == "" {
		t.Fatal("expected a non-empty segment path")
	}
	if len(result.Scene.Captions) == 0 {
		t.Fatal("expected captions to be produced")
	}
	if result.Scene.Edit == nil || len(result.Scene.Edit.Segments) == 0 {
		t.Fatal("expected a non-empty edit plan")
	}
}

func TestProcess_RenderFailureIsFatal(t *testing.T) {
	p := testProcessor(t)
	p.Renderer = &rendermock.Adapter{FailSegments: true}

	scene := model.ScriptScene{Index: 0, Text: "quiet scene here"}
	words := wordsFor(scene.Text, 0, 400*time.Millisecond)
	audio := model.AudioResult{Words: words, Duration: words[len(words)-1].End}

	if _, err := p.Process(context.Background(), scene, audio, t.TempDir(), 0); err == nil {
		t.Fatal("expected render failure to propagate as an error")
	}
}

func TestKeywordGate_FlagsMissingKeywords(t *testing.T) {
	gate := keywordGate(model.ScriptScene{Index: 0, Text: "no keywords here"})
	if gate.Valid {
		t.Fatal("expected keyword gate to flag a scene with no keywords")
	}
}

func TestKeywordGate_AcceptsTwoOrThreeLowercaseKeywords(t *testing.T) {
	gate := keywordGate(model.ScriptScene{Index: 0, Text: "city lights", Keywords: []string{"city", "night"}})
	if !gate.Valid {
		t.Fatalf("expected keyword gate to accept, got errors: %v", gate.Errors)
	}
}

func TestPacingGate_FlagsTooFast(t *testing.T) {
	words := wordsFor("one two three four five six seven eight", 0, 100*time.Millisecond)
	audio := model.AudioResult{Words: words, Duration: words[len(words)-1].End}

	gate := pacingGate(audio)
	if gate.Valid {
		t.Fatal("expected pacing gate to flag an unusually fast scene")
	}
}
