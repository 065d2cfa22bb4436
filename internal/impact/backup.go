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

// BackupManager keeps durable point-in-time copies of the snapshot,
// independent of the history ledger.
type BackupManager interface {
	// Create writes a new artifact and returns its identifier.
	Create(snapshot Snapshot) (string, error)
	// List returns artifact identifiers, most recent first.
	List() ([]string, error)
	// Load reads an artifact back. Unknown identifiers yield ErrNotFound,
	// unparseable or invalid payloads ErrCorrupt.
	Load(id string) (Snapshot, error)
}

const backupPrefix = "backup_"

type fileBackups struct {
	dir string
}

// NewFileBackups stores one JSON artifact per backup under dir. Identifiers
// are the artifact filenames, which sort lexically by creation time.
func NewFileBackups(dir string) (BackupManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	return &fileBackups{dir: dir}, nil
}

func (fb *fileBackups) Create(snapshot Snapshot) (string, error) {
	ts := time.Now().UTC()
	name := backupPrefix + timestampID(ts) + entryExt
	for seq := 1; ; seq++ {
		if _, err := os.Stat(filepath.Join(fb.dir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s%s-%d%s", backupPrefix, timestampID(ts), seq, entryExt)
	}
	if err := writeJSONAtomic(filepath.Join(fb.dir, name), snapshot); err != nil {
		return "", err
	}
	return name, nil
}

func (fb *fileBackups) List() ([]string, error) {
	return listSorted(fb.dir, backupPrefix)
}

func (fb *fileBackups) Load(id string) (Snapshot, error) {
	if !validBackupID(id) {
		return Snapshot{}, fmt.Errorf("%w: backup %q", pkgerrors.ErrNotFound, id)
	}
	raw, err := os.ReadFile(filepath.Join(fb.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("%w: backup %q", pkgerrors.ErrNotFound, id)
		}
		return Snapshot{}, fmt.Errorf("%w: read backup %q: %v", pkgerrors.ErrStorageUnavailable, id, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: backup %q: %v", pkgerrors.ErrCorrupt, id, err)
	}
	if !snap.valid() {
		return Snapshot{}, fmt.Errorf("%w: backup %q holds negative counters", pkgerrors.ErrCorrupt, id)
	}
	return snap, nil
}

// validBackupID keeps identifiers inside the backup directory; anything with
// a path separator or traversal component is treated as unknown.
func validBackupID(id string) bool {
	if id == "" || !strings.HasPrefix(id, backupPrefix) || !strings.HasSuffix(id, entryExt) {
		return false
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return false
	}
	return true
}
