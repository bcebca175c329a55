package session

import (
	"path/filepath"
	"testing"
	"time"
)

func TestIndexRecordAndList(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()

	older := Meta{ID: "s1", Engine: "whisper", Language: "en", ModelPath: "a.bin", Platform: "linux", StartedAt: time.Now().Add(-time.Hour)}
	newer := Meta{ID: "s2", Engine: "parakeet", Platform: "linux", StartedAt: time.Now()}

	if err := ix.Record(older, "/tmp/s1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := ix.Record(newer, "/tmp/s2"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := ix.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != "s2" || entries[1].ID != "s1" {
		t.Errorf("order = [%s %s], want newest first", entries[0].ID, entries[1].ID)
	}
	if entries[1].Language != "en" || entries[1].ModelPath != "a.bin" {
		t.Errorf("entry = %+v, want language/model preserved", entries[1])
	}
	if entries[0].EndedAt != nil {
		t.Error("unfinished session must have nil EndedAt")
	}
}

func TestIndexFinish(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()

	meta := Meta{ID: "s1", Engine: "whisper", Platform: "linux", StartedAt: time.Now()}
	if err := ix.Record(meta, "/tmp/s1"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	ended := time.Now()
	if err := ix.Finish("s1", ended); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	entries, err := ix.List(1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].EndedAt == nil {
		t.Fatalf("entries = %+v, want finished session", entries)
	}
}
