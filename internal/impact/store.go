package impact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
)

// Store is the single-document durability layer for the current Snapshot.
type Store interface {
	// Read returns the stored snapshot. The second return value is false
	// when no document has ever been written; that is not an error.
	Read() (Snapshot, bool, error)
	// Write fully overwrites the document atomically.
	Write(snapshot Snapshot) error
}

const currentFileName = "impact.json"

type fileStore struct {
	path string
}

// NewFileStore keeps the current snapshot in dataDir/impact.json, creating
// the directory if absent.
func NewFileStore(dataDir string) (Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileStore{path: filepath.Join(dataDir, currentFileName)}, nil
}

func (fs *fileStore) Read() (Snapshot, bool, error) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("%w: read %s: %v", pkgerrors.ErrStorageUnavailable, fs.path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: parse %s: %v", pkgerrors.ErrCorrupt, fs.path, err)
	}
	return snap, true, nil
}

func (fs *fileStore) Write(snapshot Snapshot) error {
	return writeJSONAtomic(fs.path, snapshot)
}

// writeJSONAtomic writes to a temp file in the target directory and renames
// it into place, so a crash mid-write never leaves a half-written document.
func writeJSONAtomic(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", pkgerrors.ErrStorageUnavailable, path, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", pkgerrors.ErrStorageUnavailable, path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write temp for %s: %v", pkgerrors.ErrStorageUnavailable, path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close temp for %s: %v", pkgerrors.ErrStorageUnavailable, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", pkgerrors.ErrStorageUnavailable, path, err)
	}
	return nil
}

// timestampID renders a timestamp as a filename-safe identifier that sorts
// lexically in chronological order (ISO-8601 with ':' replaced).
func timestampID(ts time.Time) string {
	return strings.ReplaceAll(ts.UTC().Format("2006-01-02T15:04:05.000000000Z"), ":", "-")
}
