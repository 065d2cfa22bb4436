package impact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
)

// Entry is one immutable audit record of a committed snapshot change.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId,omitempty"`
	Before    Snapshot  `json:"before"`
	After     Snapshot  `json:"after"`
}

// Ledger is the append-only audit trail of committed mutations.
type Ledger interface {
	Record(before, after Snapshot, actorID string) error
	// List returns up to limit entries, most recent first. A limit <= 0
	// selects DefaultHistoryLimit.
	List(limit int) ([]Entry, error)
}

const (
	DefaultHistoryLimit = 10

	historyPrefix = "history_"
	entryExt      = ".json"
)

type fileLedger struct {
	dir string
}

// NewFileLedger stores one JSON file per entry under dir, named so that a
// lexical sort of filenames equals chronological order.
func NewFileLedger(dir string) (Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &fileLedger{dir: dir}, nil
}

func (fl *fileLedger) Record(before, after Snapshot, actorID string) error {
	ts := time.Now().UTC()
	entry := Entry{Timestamp: ts, ActorID: actorID, Before: before, After: after}

	name := historyPrefix + timestampID(ts) + entryExt
	// The engine serializes writers, but two records in the same
	// nanosecond would still collide; a sequence suffix disambiguates.
	for seq := 1; ; seq++ {
		if _, err := os.Stat(filepath.Join(fl.dir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s%s-%d%s", historyPrefix, timestampID(ts), seq, entryExt)
	}
	return writeJSONAtomic(filepath.Join(fl.dir, name), entry)
}

func (fl *fileLedger) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	names, err := listSorted(fl.dir, historyPrefix)
	if err != nil {
		return nil, err
	}
	if len(names) > limit {
		names = names[:limit]
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(fl.dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", pkgerrors.ErrStorageUnavailable, name, err)
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", pkgerrors.ErrCorrupt, name, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// listSorted returns matching filenames most recent first.
func listSorted(dir, prefix string) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", pkgerrors.ErrStorageUnavailable, dir, err)
	}
	names := make([]string, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, entryExt) {
			names = append(names, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}
