package impact

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
)

var testDefaults = Snapshot{
	ProjectsCompleted: 250,
	HappyClients:      500,
	YearsExperience:   20,
	OngoingProjects:   15,
}

func newTestEngine(t *testing.T) (*Engine, Ledger, BackupManager) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ledger, err := NewFileLedger(dir + "/history")
	if err != nil {
		t.Fatalf("NewFileLedger: %v", err)
	}
	backups, err := NewFileBackups(dir + "/backups")
	if err != nil {
		t.Fatalf("NewFileBackups: %v", err)
	}
	return NewEngine(logger.NewNop(), store, ledger, backups, testDefaults), ledger, backups
}

func TestGetInitializesFromDefaults(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	snap := engine.Get(context.Background())
	if snap.ProjectsCompleted != 250 || snap.HappyClients != 500 ||
		snap.YearsExperience != 20 || snap.OngoingProjects != 15 {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}
	if snap.LastUpdated.IsZero() {
		t.Fatalf("LastUpdated not set on initialization")
	}
}

func TestGetFallsBackToDefaultsOnReadFailure(t *testing.T) {
	store := &stubStore{readErr: errors.New("disk gone")}
	ledger, _ := NewFileLedger(t.TempDir())
	backups, _ := NewFileBackups(t.TempDir())
	engine := NewEngine(logger.NewNop(), store, ledger, backups, testDefaults)

	snap := engine.Get(context.Background())
	if snap.ProjectsCompleted != testDefaults.ProjectsCompleted {
		t.Fatalf("expected defaults on read failure, got %+v", snap)
	}
}

func TestUpdateSingleField(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)

	snap, changed, err := engine.Update(context.Background(), map[string]any{"happyClients": 600}, "admin")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed {
		t.Fatalf("expected changed=true")
	}
	want := Snapshot{ProjectsCompleted: 250, HappyClients: 600, YearsExperience: 20, OngoingProjects: 15}
	if snap.ProjectsCompleted != want.ProjectsCompleted || snap.HappyClients != want.HappyClients ||
		snap.YearsExperience != want.YearsExperience || snap.OngoingProjects != want.OngoingProjects {
		t.Fatalf("snapshot: want %+v got %+v", want, snap)
	}

	entries, err := ledger.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Entry 0 is the update; initialization itself writes no history.
	if len(entries) != 1 {
		t.Fatalf("history entries: want=1 got=%d", len(entries))
	}
	if entries[0].Before.HappyClients != 500 || entries[0].After.HappyClients != 600 {
		t.Fatalf("history entry before/after: %+v", entries[0])
	}
	if entries[0].ActorID != "admin" {
		t.Fatalf("actor: want=admin got=%q", entries[0].ActorID)
	}
}

func TestUpdateRejectsNegativeAsNoop(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)
	before := engine.Get(context.Background())

	snap, changed, err := engine.Update(context.Background(), map[string]any{"happyClients": -5}, "admin")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if changed {
		t.Fatalf("negative value must not count as a usable field")
	}
	if snap != before {
		t.Fatalf("snapshot changed on noop: before %+v after %+v", before, snap)
	}
	entries, _ := ledger.List(10)
	if len(entries) != 0 {
		t.Fatalf("noop must not record history, got %d entries", len(entries))
	}
}

func TestUpdateIgnoresMalformedFields(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	partial := map[string]any{
		"projectsCompleted": "300",
		"happyClients":      "not-a-number",
		"yearsExperience":   nil,
		"ongoingProjects":   true,
	}
	snap, changed, err := engine.Update(context.Background(), partial, "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed {
		t.Fatalf("numeric string should be usable")
	}
	if snap.ProjectsCompleted != 300 {
		t.Fatalf("projectsCompleted: want=300 got=%d", snap.ProjectsCompleted)
	}
	if snap.HappyClients != 500 || snap.YearsExperience != 20 || snap.OngoingProjects != 15 {
		t.Fatalf("malformed fields must retain prior values: %+v", snap)
	}
}

func TestUpdateAcceptsExplicitZero(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	snap, changed, err := engine.Update(context.Background(), map[string]any{"ongoingProjects": 0}, "admin")
	if err != nil || !changed {
		t.Fatalf("Update: changed=%v err=%v", changed, err)
	}
	if snap.OngoingProjects != 0 {
		t.Fatalf("explicit zero must be applied, got %d", snap.OngoingProjects)
	}
}

func TestUpdateKeepsStateOnPersistFailure(t *testing.T) {
	store := &stubStore{}
	ledger, _ := NewFileLedger(t.TempDir())
	backups, _ := NewFileBackups(t.TempDir())
	engine := NewEngine(logger.NewNop(), store, ledger, backups, testDefaults)

	before := engine.Get(context.Background())
	store.writeErr = errors.New("disk full")

	_, _, err := engine.Update(context.Background(), map[string]any{"happyClients": 600}, "admin")
	if !errors.Is(err, pkgerrors.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	after := engine.Get(context.Background())
	if after.HappyClients != before.HappyClients {
		t.Fatalf("in-memory state committed despite write failure")
	}
	entries, _ := ledger.List(10)
	if len(entries) != 0 {
		t.Fatalf("history recorded for a failed write")
	}
}

func TestResetIsIdempotentAndAudited(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)
	if _, _, err := engine.Update(context.Background(), map[string]any{"happyClients": 900}, "admin"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	first, err := engine.Reset(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	second, err := engine.Reset(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	for _, snap := range []Snapshot{first, second} {
		if snap.HappyClients != testDefaults.HappyClients || snap.ProjectsCompleted != testDefaults.ProjectsCompleted {
			t.Fatalf("reset did not restore defaults: %+v", snap)
		}
	}

	entries, err := ledger.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 history entries (update + two resets), got %d", len(entries))
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	engine, _, backups := newTestEngine(t)
	if _, _, err := engine.Update(context.Background(), map[string]any{"happyClients": 777, "ongoingProjects": 3}, "admin"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	backed := engine.Get(context.Background())

	id, err := engine.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	if _, err := engine.Reset(context.Background(), "admin"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	restored, err := engine.RestoreFrom(context.Background(), id, "admin")
	if err != nil {
		t.Fatalf("RestoreFrom: %v", err)
	}
	if restored.ProjectsCompleted != backed.ProjectsCompleted ||
		restored.HappyClients != backed.HappyClients ||
		restored.YearsExperience != backed.YearsExperience ||
		restored.OngoingProjects != backed.OngoingProjects {
		t.Fatalf("restore mismatch: backed %+v restored %+v", backed, restored)
	}
	if !restored.LastUpdated.After(backed.LastUpdated) {
		t.Fatalf("restore must refresh LastUpdated")
	}

	ids, err := backups.List()
	if err != nil {
		t.Fatalf("backups.List: %v", err)
	}
	if len(ids) < 2 { // explicit backup + pre-reset safety copy
		t.Fatalf("expected at least 2 backup artifacts, got %d", len(ids))
	}
}

func TestRestoreUnknownBackupLeavesStateAlone(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	before := engine.Get(context.Background())

	_, err := engine.RestoreFrom(context.Background(), "backup_nonexistent.json", "admin")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if after := engine.Get(context.Background()); after != before {
		t.Fatalf("snapshot changed on failed restore")
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, _, err := engine.Update(context.Background(), map[string]any{"projectsCompleted": 300 + n}, "admin"); err != nil {
				t.Errorf("Update: %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := ledger.List(writers)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != writers {
		t.Fatalf("lost update: want %d history entries, got %d", writers, len(entries))
	}
	// Each entry's before value must be the previous entry's after value:
	// updates were applied in some total order, none silently dropped.
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].Before.ProjectsCompleted != entries[i+1].After.ProjectsCompleted {
			t.Fatalf("entry %d before (%d) does not chain to entry %d after (%d)",
				i, entries[i].Before.ProjectsCompleted, i+1, entries[i+1].After.ProjectsCompleted)
		}
	}
}

type stubStore struct {
	mu       sync.Mutex
	readErr  error
	writeErr error
	snap     *Snapshot
}

func (s *stubStore) Read() (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return Snapshot{}, false, s.readErr
	}
	if s.snap == nil {
		return Snapshot{}, false, nil
	}
	return *s.snap, true, nil
}

func (s *stubStore) Write(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.snap = &snapshot
	return nil
}

var _ Store = (*stubStore)(nil)

func TestTimestampIDSortsLexically(t *testing.T) {
	earlier := timestampID(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	later := timestampID(time.Date(2025, 1, 2, 3, 4, 5, 999_999_999, time.UTC))
	if !(earlier < later) {
		t.Fatalf("ids must sort chronologically: %q vs %q", earlier, later)
	}
}
