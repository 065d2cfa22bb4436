package impact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStoreReadAbsent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	_, ok, err := store.Read()
	if err != nil {
		t.Fatalf("Read on empty store must not error: %v", err)
	}
	if ok {
		t.Fatalf("absent document reported as present")
	}
}

func TestStoreWriteReadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	snap := Snapshot{
		ProjectsCompleted: 250,
		HappyClients:      500,
		YearsExperience:   20,
		OngoingProjects:   15,
		LastUpdated:       time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Write(snap); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok, err := store.Read()
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	if got.ProjectsCompleted != snap.ProjectsCompleted || got.HappyClients != snap.HappyClients ||
		got.YearsExperience != snap.YearsExperience || got.OngoingProjects != snap.OngoingProjects ||
		!got.LastUpdated.Equal(snap.LastUpdated) {
		t.Fatalf("round trip mismatch: wrote %+v read %+v", snap, got)
	}
}

func TestStoreWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := store.Write(Snapshot{HappyClients: i}); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, de := range dirents {
		if strings.Contains(de.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", de.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, currentFileName)); err != nil {
		t.Fatalf("current document missing: %v", err)
	}
}
