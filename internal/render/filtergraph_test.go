package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shortform/scenecraft/internal/model"
)

func TestBuildSegmentFilterGraph_IncludesEveryClipAndCaption(t *testing.T) {
	cfg := SegmentConfig{
		Segments: []model.EditSegment{
			{ClipID: "a", ClipPath: "/a.mp4", Start: 0, End: 2 * time.Second, Zoom: 1.0, Pan: "none"},
			{ClipID: "b", ClipPath: "/b.mp4", Start: 2 * time.Second, End: 4 * time.Second, Zoom: 1.05, Pan: "left"},
		},
		Captions: []model.Caption{
			{Text: "hello world", Start: 0, End: time.Second},
		},
	}

	graph := BuildSegmentFilterGraph(cfg)

	if strings.Count(graph, "scale=") != 2 {
		t.Fatalf("expected 2 scale filters, got graph: %s", graph)
	}
	if !strings.Contains(graph, "concat=n=2") {
		t.Fatalf("expected concat=n=2, got: %s", graph)
	}
	if !strings.Contains(graph, "drawtext") {
		t.Fatalf("expected a drawtext filter, got: %s", graph)
	}
	if !strings.Contains(graph, "[video_out]") {
		t.Fatalf("expected the final output label [video_out], got: %s", graph)
	}
}

func TestBuildSegmentFilterGraph_EmphasisCaptionUsesGoldLargerFont(t *testing.T) {
	cfg := SegmentConfig{
		Segments: []model.EditSegment{
			{ClipID: "a", ClipPath: "/a.mp4", Start: 0, End: 2 * time.Second, Zoom: 1.0, Pan: "none"},
		},
		Captions: []model.Caption{
			{Text: "plain caption", Start: 0, End: time.Second},
			{Text: "never stop", Start: time.Second, End: 2 * time.Second, Emphasis: []int{0}},
		},
	}

	graph := BuildSegmentFilterGraph(cfg)

	if !strings.Contains(graph, "fontcolor=white:fontsize=48") {
		t.Fatalf("expected the plain caption to use white/48, got: %s", graph)
	}
	if !strings.Contains(graph, "fontcolor=gold:fontsize=52") {
		t.Fatalf("expected the emphasis caption to use gold/52, got: %s", graph)
	}
}

func TestClassify_MapsKnownSubstrings(t *testing.T) {
	cases := map[string]model.RenderErrorType{
		"Error: No such file or directory":    model.RenderErrorAssetMissing,
		"could not find codec parameters":     model.RenderErrorCodecFailure,
		"Application provided invalid, non monotonously increasing dts": model.RenderErrorTimingMismatch,
		"cannot allocate memory":               model.RenderErrorResourceExhaustion,
		"totally unrecognized message":         model.RenderErrorUnknown,
	}
	for msg, want := range cases {
		if got := classify(msg); got != want {
			t.Errorf("classify(%q) = %v, want %v", msg, got, want)
		}
	}
}
