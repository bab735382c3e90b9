package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shortform/scenecraft/internal/assetcache"
	"github.com/shortform/scenecraft/internal/job"
	"github.com/shortform/scenecraft/internal/model"
	oraclemock "github.com/shortform/scenecraft/internal/oracle/mock"
	"github.com/shortform/scenecraft/internal/oracle"
	rendermock "github.com/shortform/scenecraft/internal/render/mock"
	"github.com/shortform/scenecraft/internal/sceneproc"
	stockmock "github.com/shortform/scenecraft/internal/stockprovider/mock"
	"github.com/shortform/scenecraft/internal/tts"
)

func gatePassingScript(topic string) *model.Script {
	return &model.Script{
		Hook: "Nobody tells you this about " + topic,
		Scenes: []model.ScriptScene{
			{Index: 0, Text: "Nobody tells you this about " + topic},
			{Index: 1, Text: "The truth is the problem isnt what you expect"},
			{Index: 2, Text: "So look closer"},
		},
		Ending: "So look closer",
	}
}

func TestPool_RunCompletesAJob(t *testing.T) {
	store := job.NewStore()
	req := model.JobRequest{Topic: "volcanoes", Duration: 30, Tone: model.ToneInformative}
	j := store.Create(req)

	primary := oraclemock.New("primary")
	primary.Script = gatePassingScript(req.Topic)
	oracleAdapter := oracle.New(primary, nil, time.Millisecond)

	renderer := &rendermock.Adapter{}
	outRoot := t.TempDir()

	newProcessor := func() *sceneproc.Processor {
		return &sceneproc.Processor{
			Cache:    assetcache.New(),
			Provider: stockmock.New(t.TempDir(), 4),
			TTS:      tts.NewCascade(slog.Default()),
			Renderer: renderer,
			Log:      slog.Default(),
		}
	}

	pool := New(store, oracleAdapter, newProcessor, renderer, outRoot, 2, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	var final *model.Job
	deadline := time.After(4 * time.Second)
	for final == nil || !final.Status.Terminal() {
		select {
		case <-deadline:
			t.Fatalf("job never reached a terminal status, last seen: %+v", final)
		case <-time.After(20 * time.Millisecond):
			final, _ = store.Get(j.ID)
		}
	}
	cancel()
	<-done

	if final.Status != model.StatusCompleted {
		t.Fatalf("expected StatusCompleted, got %s (result: %+v)", final.Status, final.Result)
	}
	if final.Result == nil || final.Result.VideoPath == "" {
		t.Fatal("expected a populated video path on success")
	}
	if filepath.Dir(final.Result.VideoPath) != final.OutputDir {
		t.Fatalf("expected video path under job output dir %q, got %q", final.OutputDir, final.Result.VideoPath)
	}
}
