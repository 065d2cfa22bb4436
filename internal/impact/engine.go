package impact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
)

// Engine owns the current snapshot. Every operation is serialized by the
// mutex so two concurrent updates can never both read the same "before"
// value and silently drop one caller's change.
//
// Mutation discipline: the durable write must succeed before the in-memory
// value is replaced. The history append happens after commit and is
// best-effort; a failed append is logged, never rolled back.
type Engine struct {
	mu       sync.Mutex
	log      *logger.Logger
	store    Store
	ledger   Ledger
	backups  BackupManager
	defaults Snapshot
	current  Snapshot
	loaded   bool
}

func NewEngine(log *logger.Logger, store Store, ledger Ledger, backups BackupManager, defaults Snapshot) *Engine {
	return &Engine{
		log:      log.With("component", "ImpactEngine"),
		store:    store,
		ledger:   ledger,
		backups:  backups,
		defaults: defaults,
	}
}

// Get returns the current snapshot, initializing from the store (or the
// configured defaults) on first access. It never fails: an unreadable store
// degrades to defaults and is logged.
func (e *Engine) Get(ctx context.Context) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()
	return e.current
}

func (e *Engine) ensureLoaded() {
	if e.loaded {
		return
	}
	snap, ok, err := e.store.Read()
	switch {
	case err != nil:
		e.log.Warn("Could not read stored impact data, falling back to defaults", "error", err)
		e.current = e.defaults
		e.current.LastUpdated = time.Now().UTC()
	case !ok:
		e.current = e.defaults
		e.current.LastUpdated = time.Now().UTC()
		if werr := e.store.Write(e.current); werr != nil {
			e.log.Warn("Could not write default impact data", "error", werr)
		}
	default:
		e.current = snap
	}
	e.loaded = true
}

// Update applies a partial field set. A field that is present and parses as
// a non-negative number replaces the stored value (zero included); absent,
// negative or non-numeric fields silently retain their previous value. The
// returned bool is false when no usable field was supplied, in which case
// nothing is persisted and no history entry is written.
func (e *Engine) Update(ctx context.Context, partial map[string]any, actorID string) (Snapshot, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()

	next := e.current
	applied := false
	for _, field := range FieldOrder {
		raw, present := partial[field]
		if !present {
			continue
		}
		value, ok := coerceCounter(raw)
		if !ok {
			e.log.Debug("Ignoring unusable impact field", "field", field)
			continue
		}
		next.SetField(field, value)
		applied = true
	}
	if !applied {
		return e.current, false, nil
	}

	snap, err := e.commitLocked(next, actorID)
	if err != nil {
		return e.current, false, err
	}
	return snap, true, nil
}

// Reset replaces the current value with the configured defaults. The
// outgoing value is snapshotted to a backup artifact first, so a reset is
// always recoverable.
func (e *Engine) Reset(ctx context.Context, actorID string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()

	if id, err := e.backups.Create(e.current); err != nil {
		e.log.Warn("Could not back up impact data before reset", "error", err)
	} else {
		e.log.Info("Backed up impact data before reset", "backup", id)
	}
	return e.commitLocked(e.defaults, actorID)
}

// RestoreFrom loads the named backup artifact and commits its payload as a
// regular update attributed to the actor. The current snapshot is untouched
// when the artifact is missing or corrupt.
func (e *Engine) RestoreFrom(ctx context.Context, backupID, actorID string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()

	snap, err := e.backups.Load(backupID)
	if err != nil {
		return e.current, err
	}
	restored, err := e.commitLocked(snap, actorID)
	if err != nil {
		return e.current, err
	}
	e.log.Info("Restored impact data from backup", "backup", backupID)
	return restored, nil
}

// CreateBackup snapshots the current value to a new artifact on demand.
func (e *Engine) CreateBackup(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded()
	return e.backups.Create(e.current)
}

func (e *Engine) commitLocked(next Snapshot, actorID string) (Snapshot, error) {
	next.LastUpdated = time.Now().UTC()
	if err := e.store.Write(next); err != nil {
		if !errors.Is(err, pkgerrors.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %v", pkgerrors.ErrStorageUnavailable, err)
		}
		return Snapshot{}, fmt.Errorf("persist impact data: %w", err)
	}
	before := e.current
	e.current = next
	if err := e.ledger.Record(before, next, actorID); err != nil {
		e.log.Warn("Could not record impact history entry", "error", err)
	}
	return next, nil
}

// coerceCounter accepts anything that parses as a finite non-negative
// number. Presence plus a successful parse is the gate, not truthiness, so
// an explicit zero is a legal value.
func coerceCounter(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		if v < 0 {
			return 0, false
		}
		return v, true
	case int64:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	case float64:
		return coerceFloat(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return coerceFloat(f)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return coerceFloat(f)
	default:
		return 0, false
	}
}

func coerceFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return int(f), true
}
