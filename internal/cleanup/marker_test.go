package cleanup

import (
	"path/filepath"
	"testing"
)

func TestMarker_MarkAndUnmark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.json")
	m, err := NewMarker(path)
	if err != nil {
		t.Fatalf("NewMarker: %v", err)
	}

	if err := m.Mark("job-1"); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if !m.IsMarked("job-1") {
		t.Fatal("expected job-1 to be marked")
	}

	if err := m.Unmark("job-1"); err != nil {
		t.Fatalf("Unmark: %v", err)
	}
	if m.IsMarked("job-1") {
		t.Fatal("expected job-1 to no longer be marked")
	}
}

func TestMarker_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.json")
	m1, err := NewMarker(path)
	if err != nil {
		t.Fatalf("NewMarker: %v", err)
	}
	if err := m1.Mark("job-2"); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	m2, err := NewMarker(path)
	if err != nil {
		t.Fatalf("NewMarker reload: %v", err)
	}
	if !m2.IsMarked("job-2") {
		t.Fatal("expected job-2 to survive reload")
	}
}

func TestMarker_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	m, err := NewMarker(path)
	if err != nil {
		t.Fatalf("NewMarker: %v", err)
	}
	if m.IsMarked("anything") {
		t.Fatal("expected a fresh marker to have nothing marked")
	}
}
