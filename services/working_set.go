package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"roster/models"
	"roster/storage"
)

type listenerEntry struct {
	id       uint64
	listener ChangeListener
}

// WorkingSet mirrors the store's records in memory and mediates every
// mutation through a repository obtained from the factory.
//
// It is not safe for concurrent use; callers serialize access through a
// single coordinator.
type WorkingSet struct {
	factory   RepositoryFactory
	backend   storage.Backend
	records   []models.Record
	listeners []listenerEntry
	nextID    uint64
	logger    *slog.Logger
}

// NewWorkingSet creates an empty working set bound to one backend.
func NewWorkingSet(factory RepositoryFactory, backend storage.Backend, logger *slog.Logger) *WorkingSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkingSet{
		factory: factory,
		backend: backend,
		records: make([]models.Record, 0),
		logger:  logger,
	}
}

func (ws *WorkingSet) Backend() storage.Backend {
	return ws.backend
}

// Records returns a copy of the held records.
func (ws *WorkingSet) Records() []models.Record {
	out := make([]models.Record, len(ws.records))
	copy(out, ws.records)
	return out
}

func (ws *WorkingSet) Len() int {
	return len(ws.records)
}

func (ws *WorkingSet) Contains(r models.Record) bool {
	return ws.indexOf(r) >= 0
}

// Find returns the persisted record carrying id.
func (ws *WorkingSet) Find(id int) (models.Record, bool) {
	if id == models.UnassignedID {
		return models.Record{}, false
	}
	for _, r := range ws.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.Record{}, false
}

// ==================== STAGING ====================

// Add stages r. It reports false, and notifies nobody, when an equal record is already held.
func (ws *WorkingSet) Add(r models.Record) bool {
	if ws.Contains(r) {
		return false
	}
	ws.records = append(ws.records, r)
	ws.notifyChanged()
	return true
}

// Remove unstages r without touching the store.
func (ws *WorkingSet) Remove(r models.Record) bool {
	i := ws.indexOf(r)
	if i < 0 {
		return false
	}
	ws.records = append(ws.records[:i], ws.records[i+1:]...)
	ws.notifyChanged()
	return true
}

// Replace swaps old for updated in place, keeping a single notification.
// The next Save writes updated through UpdateRecord when it carries an id.
func (ws *WorkingSet) Replace(old, updated models.Record) error {
	i := ws.indexOf(old)
	if i < 0 {
		return ErrRecordNotHeld
	}
	if old == updated {
		return nil
	}
	if j := ws.indexOf(updated); j >= 0 {
		// The edited value already exists; collapse the duplicate.
		ws.records = append(ws.records[:i], ws.records[i+1:]...)
	} else {
		ws.records[i] = updated
	}
	ws.notifyChanged()
	return nil
}

// ==================== PERSISTENCE ====================

// Delete removes r from the store and from the working set.
// Transient records never reached the store and are only unstaged.
func (ws *WorkingSet) Delete(ctx context.Context, r models.Record) error {
	if !ws.Contains(r) {
		return ErrRecordNotHeld
	}

	if !r.IsTransient() {
		repo, err := ws.factory.ForBackend(ws.backend)
		if err != nil {
			return err
		}
		n, err := repo.DeleteRecord(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("delete record %d: %w", r.ID, err)
		}
		if n == 0 {
			ws.logger.Warn("record already absent from store", "id", r.ID, "backend", ws.backend)
		}
	}

	ws.Remove(r)
	return nil
}

// Save writes every held record: transient ones are added, persisted ones updated.
// It stops at the first failure, then reloads so the view reflects what did
// persist. Records that failed to persist are dropped by that reload.
func (ws *WorkingSet) Save(ctx context.Context) error {
	repo, err := ws.factory.ForBackend(ws.backend)
	if err != nil {
		return err
	}

	var saveErr error
	for _, r := range ws.records {
		if r.IsTransient() {
			id, err := repo.AddRecord(ctx, r)
			if err != nil {
				saveErr = fmt.Errorf("add record %q: %w", r.Name, err)
				break
			}
			ws.logger.Debug("record added", "id", id, "backend", ws.backend)
			continue
		}

		n, err := repo.UpdateRecord(ctx, r)
		if err != nil {
			saveErr = fmt.Errorf("update record %d: %w", r.ID, err)
			break
		}
		if n == 0 {
			ws.logger.Warn("update matched no stored record", "id", r.ID, "backend", ws.backend)
		}
	}

	if err := ws.load(ctx, repo); err != nil {
		if saveErr != nil {
			ws.logger.Error("reload after failed save", "error", err)
			return errors.Join(saveErr, err)
		}
		return err
	}

	return saveErr
}

// Load replaces the held records with the store's contents.
// On failure the previous contents are kept.
func (ws *WorkingSet) Load(ctx context.Context) error {
	repo, err := ws.factory.ForBackend(ws.backend)
	if err != nil {
		return err
	}
	return ws.load(ctx, repo)
}

func (ws *WorkingSet) load(ctx context.Context, repo storage.Repository) error {
	records, err := repo.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	fresh := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !containsRecord(fresh, r) {
			fresh = append(fresh, r)
		}
	}
	ws.records = fresh
	ws.notifyChanged()
	return nil
}

// ==================== LISTENERS ====================

// RegisterListener adds l after every listener already registered.
// The returned func unregisters exactly this registration.
func (ws *WorkingSet) RegisterListener(l ChangeListener) (unregister func()) {
	ws.nextID++
	id := ws.nextID
	ws.listeners = append(ws.listeners, listenerEntry{id: id, listener: l})

	return func() {
		for i, entry := range ws.listeners {
			if entry.id == id {
				ws.listeners = append(ws.listeners[:i], ws.listeners[i+1:]...)
				return
			}
		}
	}
}

// notifyChanged calls every listener once, in registration order.
func (ws *WorkingSet) notifyChanged() {
	listeners := make([]listenerEntry, len(ws.listeners))
	copy(listeners, ws.listeners)

	for _, entry := range listeners {
		ws.invoke(entry)
	}
}

// invoke isolates one listener so a panic cannot starve the ones after it.
func (ws *WorkingSet) invoke(entry listenerEntry) {
	defer func() {
		if p := recover(); p != nil {
			ws.logger.Error("change listener panicked", "listener", entry.id, "panic", p)
		}
	}()
	entry.listener.OnChanged()
}

func (ws *WorkingSet) indexOf(r models.Record) int {
	for i, held := range ws.records {
		if held == r {
			return i
		}
	}
	return -1
}

func containsRecord(records []models.Record, r models.Record) bool {
	for _, held := range records {
		if held == r {
			return true
		}
	}
	return false
}
