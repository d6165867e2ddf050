package integrity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/contre95/dupetrack/src/music"
)

// Mode selects whether missing entries are only reported or also removed.
type Mode int

const (
	ModeTest Mode = iota
	ModeDelete
)

func (m Mode) String() string {
	if m == ModeDelete {
		return "delete"
	}
	return "test"
}

// Library is the part of the record store the checker works on.
type Library interface {
	Path() string
	Len() int
	Load(ctx context.Context) error
	Keys() []string
	Get(key string) (music.Record, error)
	Delete(key string) error
	Save(ctx context.Context) error
}

// Result holds the counters of one check. Missing is counted in test mode, Removed in delete mode.
type Result struct {
	Missing int
	Removed int
}

// Checker verifies that every library record still points at a file on disk.
type Checker struct {
	library Library
	out     io.Writer
}

// NewChecker creates a Checker that lists affected paths on out.
func NewChecker(lib Library, out io.Writer) *Checker {
	if out == nil {
		out = io.Discard
	}
	return &Checker{library: lib, out: out}
}

// Check walks a snapshot of the library keys. Store errors and filesystem errors
// other than "not found" abort the check.
func (c *Checker) Check(ctx context.Context, mode Mode) (Result, error) {
	var res Result
	slog.Info("Running library integrity check", "path", c.library.Path(), "mode", mode.String())

	if c.library.Len() == 0 {
		if err := c.library.Load(ctx); err != nil {
			return res, err
		}
	}
	fmt.Fprintf(c.out, "Song library has %d songs\n", c.library.Len())

	for _, key := range c.library.Keys() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := c.library.Get(key)
		if err != nil {
			return res, err
		}
		missing, err := isMissing(rec.Path)
		if err != nil {
			return res, fmt.Errorf("failed to check %s: %w", rec.Path, err)
		}
		if !missing {
			continue
		}

		if mode == ModeDelete {
			if err := c.library.Delete(key); err != nil {
				return res, err
			}
			fmt.Fprintf(c.out, "Deleting %s\n", rec.Path)
			res.Removed++
			continue
		}
		fmt.Fprintf(c.out, "Song does not exist %s\n", rec.Path)
		res.Missing++
	}

	if res.Removed > 0 {
		if err := c.library.Save(ctx); err != nil {
			return res, err
		}
	}

	slog.Info("Integrity check finished", "mode", mode.String(), "missing", res.Missing, "removed", res.Removed)
	return res, nil
}

// isMissing reports whether path is gone or is no longer a regular file.
func isMissing(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	return !info.Mode().IsRegular(), nil
}
