package job

import (
	"testing"

	"github.com/shortform/scenecraft/internal/model"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore()
	j := s.Create(model.JobRequest{Topic: "volcanoes", Duration: 30, Tone: model.ToneInformative})

	if j.ID == "" {
		t.Fatal("expected a non-empty job ID")
	}
	if j.Status != model.StatusQueued {
		t.Fatalf("expected StatusQueued, got %v", j.Status)
	}

	got, err := s.Get(j.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != j {
		t.Fatal("expected Get to return the same pointer Create returned")
	}
}

func TestStore_GetNotFound(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("does-not-exist"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_PopFIFOOrder(t *testing.T) {
	s := NewStore()
	a := s.Create(model.JobRequest{Topic: "a"})
	b := s.Create(model.JobRequest{Topic: "b"})

	id, ok := s.Pop()
	if !ok || id != a.ID {
		t.Fatalf("expected first pop to return %s, got %s (ok=%v)", a.ID, id, ok)
	}
	id, ok = s.Pop()
	if !ok || id != b.ID {
		t.Fatalf("expected second pop to return %s, got %s (ok=%v)", b.ID, id, ok)
	}
	if _, ok = s.Pop(); ok {
		t.Fatal("expected queue to be empty")
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	s := NewStore()
	j := s.Create(model.JobRequest{Topic: "a"})

	if err := s.UpdateStatus(j.ID, model.StatusScripting, 10); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, _ := s.Get(j.ID)
	if got.Status != model.StatusScripting || got.Progress != 10 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestStore_Finish(t *testing.T) {
	s := NewStore()
	j := s.Create(model.JobRequest{Topic: "a"})

	result := &model.JobResult{VideoPath: "/out/a.mp4"}
	if err := s.Finish(j.ID, model.StatusCompleted, result); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	got, _ := s.Get(j.ID)
	if got.Status != model.StatusCompleted || got.Progress != 100 {
		t.Fatalf("expected completed job at 100%%, got %+v", got)
	}
	if got.Result != result {
		t.Fatal("expected result to be attached")
	}
}

func TestStore_ListOrdersByCreation(t *testing.T) {
	s := NewStore()
	a := s.Create(model.JobRequest{Topic: "a"})
	b := s.Create(model.JobRequest{Topic: "b"})

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(list))
	}
	if list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("expected creation order a,b; got %s,%s", list[0].ID, list[1].ID)
	}
}
