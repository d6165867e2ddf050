package music

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned when a key that was assumed present is not in the library.
var ErrKeyNotFound = errors.New("key not found")

// ErrLibraryBusy is returned when another process holds the library lock.
var ErrLibraryBusy = errors.New("library is in use by another process")

// LibraryError reports that the durable store is missing, corrupt or lacks an expected key.
type LibraryError struct {
	Op   string // load, save, get, delete, lock
	Path string
	Key  string
	Err  error
}

func (e *LibraryError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("library %s %q: %v", e.Op, e.Key, e.Err)
	case e.Path != "":
		return fmt.Sprintf("library %s %s: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("library %s: %v", e.Op, e.Err)
	}
}

func (e *LibraryError) Unwrap() error { return e.Err }

// TagReadError reports that a single file's metadata could not be extracted.
type TagReadError struct {
	Path string
	Err  error
}

func (e *TagReadError) Error() string {
	return fmt.Sprintf("read tags %s: %v", e.Path, e.Err)
}

func (e *TagReadError) Unwrap() error { return e.Err }
