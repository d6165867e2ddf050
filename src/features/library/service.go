package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/contre95/dupetrack/src/music"
	"github.com/gofrs/flock"
)

// backupTimeFormat is appended to the previous library file when overwrite is off.
const backupTimeFormat = "20060102150405"

// Library maps comparison keys to the first record seen for each key.
// It assumes a single writer; use Lock to keep other processes out.
type Library struct {
	records   map[string]music.Record
	store     music.RecordStore
	path      string
	overwrite bool
	lock      *flock.Flock
	now       func() time.Time
	backedUp  bool
}

// NewLibrary creates an empty library persisted at path through store.
// When overwrite is false, Save keeps the previous file as a timestamped backup.
func NewLibrary(path string, store music.RecordStore, overwrite bool) *Library {
	return &Library{
		records:   make(map[string]music.Record),
		store:     store,
		path:      path,
		overwrite: overwrite,
		lock:      flock.New(path + ".lock"),
		now:       time.Now,
	}
}

// Path returns the durable file location.
func (l *Library) Path() string { return l.path }

// Format returns the configured store format.
func (l *Library) Format() music.StoreFormat { return l.store.Format() }

// Has reports whether key is in the library.
func (l *Library) Has(key string) bool {
	_, ok := l.records[key]
	return ok
}

// Add inserts rec under key. It does not protect against overwriting; callers check Has first.
func (l *Library) Add(key string, rec music.Record) {
	l.records[key] = rec
}

// Lookup returns the record for key and whether it was present.
func (l *Library) Lookup(key string) (music.Record, bool) {
	rec, ok := l.records[key]
	return rec, ok
}

// Get returns the record for key, or a LibraryError wrapping music.ErrKeyNotFound.
func (l *Library) Get(key string) (music.Record, error) {
	rec, ok := l.records[key]
	if !ok {
		return music.Record{}, &music.LibraryError{Op: "get", Key: key, Err: music.ErrKeyNotFound}
	}
	return rec, nil
}

// Delete removes key, or returns a LibraryError wrapping music.ErrKeyNotFound.
func (l *Library) Delete(key string) error {
	if _, ok := l.records[key]; !ok {
		return &music.LibraryError{Op: "delete", Key: key, Err: music.ErrKeyNotFound}
	}
	delete(l.records, key)
	return nil
}

// Len returns the number of records currently in memory. It never touches disk.
func (l *Library) Len() int {
	return len(l.records)
}

// Count returns the number of records. It has a side effect: when the in-memory
// map is empty it first loads the library from disk, so an explicitly cleared
// library is reloaded here.
func (l *Library) Count(ctx context.Context) (int, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return len(l.records), nil
}

func (l *Library) ensureLoaded(ctx context.Context) error {
	if len(l.records) > 0 {
		return nil
	}
	return l.Load(ctx)
}

// Keys returns a sorted copy of the keys, safe to range over while deleting.
func (l *Library) Keys() []string {
	keys := make([]string, 0, len(l.records))
	for k := range l.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear empties the in-memory library.
func (l *Library) Clear() {
	clear(l.records)
}

// Load replaces the in-memory records with the durable snapshot.
// A missing file yields a LibraryError wrapping fs.ErrNotExist.
func (l *Library) Load(ctx context.Context) error {
	records, err := l.store.Load(ctx, l.path)
	if err != nil {
		slog.Debug("Library.Load: failed", "path", l.path, "format", l.store.Format(), "error", err)
		return &music.LibraryError{Op: "load", Path: l.path, Err: err}
	}
	for key, rec := range records {
		if err := rec.Validate(); err != nil {
			return &music.LibraryError{Op: "load", Path: l.path, Err: fmt.Errorf("corrupt record %q: %w", key, err)}
		}
	}
	l.records = records
	slog.Debug("Library.Load: completed", "path", l.path, "format", l.store.Format(), "count", len(records))
	return nil
}

// Save writes the whole library. With overwrite off an existing file is first
// renamed to <path>.<timestamp>, at most once per Library: later saves, such as
// the per-batch saves of watch mode, overwrite. The write is not atomic.
func (l *Library) Save(ctx context.Context) error {
	if !l.overwrite && !l.backedUp {
		renamed, err := l.backup()
		if err != nil {
			return &music.LibraryError{Op: "save", Path: l.path, Err: err}
		}
		l.backedUp = renamed
	}
	if err := l.store.Save(ctx, l.path, l.records); err != nil {
		return &music.LibraryError{Op: "save", Path: l.path, Err: err}
	}
	slog.Debug("Library.Save: completed", "path", l.path, "format", l.store.Format(), "count", len(l.records))
	return nil
}

// backup renames the current file aside and reports whether there was one to rename.
func (l *Library) backup() (bool, error) {
	if _, err := os.Stat(l.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	backupPath := l.path + "." + l.now().Format(backupTimeFormat)
	if err := os.Rename(l.path, backupPath); err != nil {
		return false, fmt.Errorf("failed to back up library: %w", err)
	}
	slog.Info("Previous library kept as backup", "path", backupPath)
	return true, nil
}

// Lock takes an exclusive lock next to the library file so a second process
// cannot write the same library. It returns music.ErrLibraryBusy when the lock is held.
func (l *Library) Lock() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return &music.LibraryError{Op: "lock", Path: l.path, Err: err}
	}
	if !ok {
		return &music.LibraryError{Op: "lock", Path: l.path, Err: music.ErrLibraryBusy}
	}
	return nil
}

// Unlock releases the lock taken by Lock.
func (l *Library) Unlock() error {
	return l.lock.Unlock()
}
