package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shortform/scenecraft/internal/model"
	"github.com/shortform/scenecraft/internal/oracle/mock"
)

func TestAdapter_PrimarySuccess(t *testing.T) {
	primary := mock.New("primary")
	a := New(primary, nil, time.Millisecond)

	script, err := a.GenerateScript(context.Background(), "volcanoes", 30, model.ToneInformative)
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if script.Hook == "" {
		t.Fatal("expected a non-empty hook")
	}
	if primary.Calls != 1 {
		t.Fatalf("expected 1 call to primary, got %d", primary.Calls)
	}
}

func TestAdapter_FallsBackToSecondary(t *testing.T) {
	primary := mock.New("primary")
	primary.Err = errors.New("connection refused")
	secondary := mock.New("secondary")

	a := New(primary, secondary, time.Millisecond)
	script, err := a.GenerateScript(context.Background(), "comets", 30, model.ToneNeutral)
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if script == nil {
		t.Fatal("expected a script from the secondary backend")
	}
	if secondary.Calls == 0 {
		t.Fatal("expected secondary to be called")
	}
}

func TestAdapter_FallsBackToSkeleton(t *testing.T) {
	primary := mock.New("primary")
	primary.Err = errors.New("connection refused")

	a := New(primary, nil, time.Millisecond)
	script, err := a.GenerateScript(context.Background(), "tides", 30, model.ToneNeutral)
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if script == nil || len(script.Scenes) != 7 {
		t.Fatalf("expected the 7-scene fallback skeleton, got %+v", script)
	}
}

func TestAdapter_NoFallbackReturnsFatal(t *testing.T) {
	primary := mock.New("primary")
	primary.Err = errors.New("connection refused")

	a := New(primary, nil, time.Millisecond)
	a.AllowFallback = false

	_, err := a.GenerateScript(context.Background(), "tides", 30, model.ToneNeutral)
	if !errors.Is(err, ErrFatal) {
		t.Fatalf("expected ErrFatal, got %v", err)
	}
}
