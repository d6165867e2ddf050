package duplicates

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/contre95/dupetrack/src/music"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	duplicateFound     = " Duplicate Found "
	falsePositiveFound = " Possible False Positive "
	trailingTheFound   = " Trailing the found "
)

// Report writes human-readable scan results. The first write error is kept and returned by Err and Close.
type Report struct {
	w      io.Writer
	closer io.Closer
	runID  string
	err    error
}

// NewReport writes to w.
func NewReport(w io.Writer, runID string) *Report {
	return &Report{w: w, runID: runID}
}

// OpenReport writes to path, appending or starting afresh. An empty path writes to standard output.
func OpenReport(path string, appendMode bool, runID string) (*Report, error) {
	if path == "" {
		return NewReport(os.Stdout, runID), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	r := NewReport(f, runID)
	r.closer = f
	return r, nil
}

func (r *Report) line(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format+"\n", args...)
}

func section(message string) string {
	return strings.Repeat("-", 70) + message + strings.Repeat("-", 40)
}

// Header opens a run.
func (r *Report) Header(mode Mode, source string, at time.Time) {
	r.line("%s %s run %s at %s", mode, source, r.runID, at.Format(time.DateTime))
}

// Duplicate reports a candidate and the stored record it duplicates.
func (r *Report) Duplicate(candidate music.Tags, stored music.Record) {
	r.pair(duplicateFound, candidate, stored)
}

// FalsePositive reports a phonetic match whose literal tags differ.
func (r *Report) FalsePositive(candidate music.Tags, stored music.Record) {
	r.pair(falsePositiveFound, candidate, stored)
}

func (r *Report) pair(message string, candidate music.Tags, stored music.Record) {
	r.line("%s", section(message))
	r.line("%s %s", candidate.Path, music.FormatSeconds(candidate.Duration))
	r.line("%s  %s", stored.Path, music.FormatSeconds(stored.Duration))
}

// TrailingArticle reports an artist tagged as "Name, the".
func (r *Report) TrailingArticle(artist, path string) {
	r.line("%s", section(trailingTheFound))
	r.line("%s is wrong in %s.", artist, path)
}

// Summary closes a run with the totals.
func (r *Report) Summary(mode Mode, stats Stats, tolerance float64, showFalsePositives bool) {
	r.line("")
	switch {
	case mode == ModeBuild:
		r.line("%d music files found.", stats.Scanned)
	case stats.Ignored > 0:
		r.line("%d music files found with %d duplicates, with %d songs ignored.", stats.Scanned, stats.Duplicates, stats.Ignored)
	default:
		r.line("%d music files found with %d duplicates.", stats.Scanned, stats.Duplicates)
	}
	if stats.NotDuplicates > 0 {
		r.line(" Found possible %d duplicates, but with a time difference greater then %s.", stats.NotDuplicates, strconv.FormatFloat(tolerance, 'f', -1, 64))
	}
	if stats.TrailingArticles > 0 {
		r.line(" Found possible %d artists with a trailing 'the' in their name.", stats.TrailingArticles)
	}
	if stats.FalsePositives > 0 {
		if showFalsePositives {
			r.line(" Found possible %d false positives.", stats.FalsePositives)
		} else {
			r.line(" Found possible %d false positives [not displayed].", stats.FalsePositives)
		}
	}
	r.line("%s", renderStats(stats))
}

func renderStats(stats Stats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Outcome", "Files"})
	tw.AppendRows([]table.Row{
		{"Scanned", stats.Scanned},
		{"Added", stats.Added},
		{"Duplicates", stats.Duplicates},
		{"Outside tolerance", stats.NotDuplicates},
		{"Ignored", stats.Ignored},
		{"False positives", stats.FalsePositives},
		{"Trailing 'the'", stats.TrailingArticles},
		{"Unreadable", stats.TagErrors},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// Err returns the first write error.
func (r *Report) Err() error {
	return r.err
}

// Close closes the underlying file, if any.
func (r *Report) Close() error {
	if r.closer != nil {
		if err := r.closer.Close(); err != nil && r.err == nil {
			r.err = err
		}
		r.closer = nil
	}
	return r.err
}
