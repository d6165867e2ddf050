package library

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/dupetrack/src/infra/database"
	"github.com/contre95/dupetrack/src/music"
)

var allFormats = []music.StoreFormat{music.FormatBinary, music.FormatJSON, music.FormatYAML, music.FormatSQLite}

func newTestLibrary(t *testing.T, format music.StoreFormat, overwrite bool) *Library {
	t.Helper()
	store, err := database.New(format)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	path := filepath.Join(t.TempDir(), "testLibrary."+format.Extension())
	return NewLibrary(path, store, overwrite)
}

func sampleRecords() map[string]music.Record {
	return map[string]music.Record{
		"one":   {Path: "/music/one.mp3", Duration: 181.25, Marker: ""},
		"two":   {Path: "/music/two.mp3", Duration: 0, Marker: "**IGNORE**"},
		"three": {Path: "/music/Ünïcödé/three.mp3", Duration: 3600.01},
		"four":  {Path: "/music/four.mp3", Duration: 12.5, Marker: "keep"},
		"five":  {Path: "/music/five.mp3", Duration: 0.33},
		"s:x":   {Path: "/music/with \"quotes\" & <tags>.mp3", Duration: 99.99},
	}
}

func TestLibrary_SaveClearLoadRoundTrip(t *testing.T) {
	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			ctx := context.Background()
			lib := newTestLibrary(t, format, true)
			want := sampleRecords()
			for k, rec := range want {
				lib.Add(k, rec)
			}

			if err := lib.Save(ctx); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			lib.Clear()
			if lib.Len() != 0 {
				t.Fatalf("expected empty library after clear, got %d", lib.Len())
			}
			if err := lib.Load(ctx); err != nil {
				t.Fatalf("load failed: %v", err)
			}

			if lib.Len() != len(want) {
				t.Fatalf("expected %d records, got %d", len(want), lib.Len())
			}
			for k, rec := range want {
				got, err := lib.Get(k)
				if err != nil {
					t.Fatalf("get %q failed: %v", k, err)
				}
				if got != rec {
					t.Errorf("record %q: expected %+v, got %+v", k, rec, got)
				}
			}
		})
	}
}

func TestLibrary_GetMissingKey(t *testing.T) {
	lib := newTestLibrary(t, music.FormatJSON, true)
	lib.Add("one", music.Record{Path: "data1", Duration: 2})

	_, err := lib.Get("two")
	var libErr *music.LibraryError
	if !errors.As(err, &libErr) {
		t.Fatalf("expected LibraryError, got %v", err)
	}
	if !errors.Is(err, music.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
	if lib.Len() != 1 || !lib.Has("one") {
		t.Error("library was modified by a failed get")
	}
}

func TestLibrary_DeleteMissingKey(t *testing.T) {
	lib := newTestLibrary(t, music.FormatBinary, true)
	lib.Add("one", music.Record{Path: "data1"})

	err := lib.Delete("two")
	var libErr *music.LibraryError
	if !errors.As(err, &libErr) || !errors.Is(err, music.ErrKeyNotFound) {
		t.Fatalf("expected LibraryError wrapping ErrKeyNotFound, got %v", err)
	}
	if lib.Len() != 1 {
		t.Errorf("expected 1 record, got %d", lib.Len())
	}
}

func TestLibrary_Delete(t *testing.T) {
	ctx := context.Background()
	lib := newTestLibrary(t, music.FormatBinary, true)
	lib.Add("one", music.Record{Path: "data1"})
	lib.Add("two", music.Record{Path: "data2"})

	count, err := lib.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected count 2, got %d (%v)", count, err)
	}
	if err := lib.Delete("one"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if lib.Has("one") {
		t.Error("expected key to be gone")
	}
	if count, _ := lib.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestLibrary_CountLoadsWhenEmpty(t *testing.T) {
	ctx := context.Background()
	lib := newTestLibrary(t, music.FormatYAML, true)
	lib.Add("one", music.Record{Path: "a"})
	lib.Add("two", music.Record{Path: "b"})
	if err := lib.Save(ctx); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	lib.Clear()

	count, err := lib.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected implicit load to find 2 records, got %d", count)
	}
}

func TestLibrary_LoadMissingFile(t *testing.T) {
	for _, format := range allFormats {
		t.Run(format.String(), func(t *testing.T) {
			lib := newTestLibrary(t, format, true)
			err := lib.Load(context.Background())
			var libErr *music.LibraryError
			if !errors.As(err, &libErr) {
				t.Fatalf("expected LibraryError, got %v", err)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("expected error to wrap fs.ErrNotExist, got %v", err)
			}
			if _, err := os.Stat(lib.Path()); !errors.Is(err, fs.ErrNotExist) {
				t.Error("load must not create the library file")
			}
		})
	}
}

func TestLibrary_LoadCorruptFile(t *testing.T) {
	lib := newTestLibrary(t, music.FormatJSON, true)
	if err := os.WriteFile(lib.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := lib.Load(context.Background())
	var libErr *music.LibraryError
	if !errors.As(err, &libErr) {
		t.Fatalf("expected LibraryError, got %v", err)
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Error("corrupt file should not look like a missing one")
	}
}

func TestLibrary_SaveKeepsBackupWhenNotOverwriting(t *testing.T) {
	ctx := context.Background()
	lib := newTestLibrary(t, music.FormatJSON, false)
	lib.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local) }

	lib.Add("one", music.Record{Path: "a"})
	if err := lib.Save(ctx); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if _, err := os.Stat(lib.Path() + ".20240309140506"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("first save should not create a backup")
	}

	lib.Add("two", music.Record{Path: "b"})
	if err := lib.Save(ctx); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	backup := NewLibrary(lib.Path()+".20240309140506", lib.store, true)
	if err := backup.Load(ctx); err != nil {
		t.Fatalf("expected a loadable backup: %v", err)
	}
	if backup.Len() != 1 {
		t.Errorf("expected backup to hold the previous snapshot, got %d records", backup.Len())
	}
	current := NewLibrary(lib.Path(), lib.store, true)
	if err := current.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if current.Len() != 2 {
		t.Errorf("expected current file to hold 2 records, got %d", current.Len())
	}
}

func TestLibrary_RepeatedSavesKeepOneBackup(t *testing.T) {
	ctx := context.Background()
	lib := newTestLibrary(t, music.FormatJSON, false)
	lib.Add("zero", music.Record{Path: "z"})
	if err := lib.Save(ctx); err != nil {
		t.Fatal(err)
	}

	// A later run, e.g. a watch session saving after every batch.
	run := NewLibrary(lib.Path(), lib.store, false)
	tick := time.Date(2024, 3, 9, 14, 0, 0, 0, time.Local)
	run.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	if err := run.Load(ctx); err != nil {
		t.Fatal(err)
	}
	for i, key := range []string{"one", "two", "three"} {
		run.Add(key, music.Record{Path: key})
		if err := run.Save(ctx); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	backups, err := filepath.Glob(lib.Path() + ".2*")
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected exactly one backup, got %v", backups)
	}
	backup := NewLibrary(backups[0], lib.store, true)
	if err := backup.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if backup.Len() != 1 || !backup.Has("zero") {
		t.Errorf("expected the backup to hold the snapshot from before the run, got %v", backup.Keys())
	}
	current := NewLibrary(lib.Path(), lib.store, true)
	if n, _ := current.Count(ctx); n != 4 {
		t.Errorf("expected the latest save to hold 4 records, got %d", n)
	}
}

func TestLibrary_KeysIsSortedCopy(t *testing.T) {
	lib := newTestLibrary(t, music.FormatBinary, true)
	lib.Add("b", music.Record{Path: "b"})
	lib.Add("a", music.Record{Path: "a"})
	lib.Add("c", music.Record{Path: "c"})

	keys := lib.Keys()
	for _, k := range keys {
		if err := lib.Delete(k); err != nil {
			t.Fatalf("delete %q failed: %v", k, err)
		}
	}
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("unexpected keys %v", keys)
	}
	if lib.Len() != 0 {
		t.Errorf("expected empty library, got %d", lib.Len())
	}
}

func TestLibrary_LockIsExclusive(t *testing.T) {
	first := newTestLibrary(t, music.FormatJSON, true)
	if err := first.Lock(); err != nil {
		t.Fatalf("first lock failed: %v", err)
	}
	defer first.Unlock()

	second := NewLibrary(first.Path(), first.store, true)
	err := second.Lock()
	if !errors.Is(err, music.ErrLibraryBusy) {
		t.Fatalf("expected ErrLibraryBusy, got %v", err)
	}
}
