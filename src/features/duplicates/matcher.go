package duplicates

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/contre95/dupetrack/src/features/config"
	"github.com/contre95/dupetrack/src/music"
)

// Classification is the outcome of comparing a candidate against the library.
type Classification int

const (
	New Classification = iota
	Duplicate
	NotDuplicate
	Ignored
	PossibleFalsePositive
)

var classificationNames = map[Classification]string{
	New:                   "new",
	Duplicate:             "duplicate",
	NotDuplicate:          "not_duplicate",
	Ignored:               "ignored",
	PossibleFalsePositive: "possible_false_positive",
}

func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// Candidate is a freshly read file together with its comparison key.
type Candidate struct {
	Key  string
	Tags music.Tags
}

// Result carries the classification and, for anything but New, the record it was compared with.
type Result struct {
	Class  Classification
	Stored music.Record
}

// RecordLookup is the read side of the library the matcher needs.
type RecordLookup interface {
	Lookup(key string) (music.Record, bool)
}

// Matcher decides whether a candidate duplicates a stored record.
type Matcher struct {
	records RecordLookup
	reader  music.TagReader
	cfg     config.Matching
}

// NewMatcher creates a Matcher. reader is used to re-verify phonetic matches against the files themselves.
func NewMatcher(records RecordLookup, reader music.TagReader, cfg config.Matching) *Matcher {
	return &Matcher{records: records, reader: reader, cfg: cfg}
}

// Classify compares c with the record stored under the same key.
// A duration gap of at least the tolerance means the key collided on a different recording.
func (m *Matcher) Classify(ctx context.Context, c Candidate) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	stored, ok := m.records.Lookup(c.Key)
	if !ok {
		return Result{Class: New}, nil
	}

	res := Result{Stored: stored}
	switch {
	case outsideTolerance(c.Tags.Duration, stored.Duration, m.cfg.Tolerance):
		res.Class = NotDuplicate
	case m.ignored(c.Tags.Marker, stored.Marker):
		res.Class = Ignored
	case m.cfg.Phonetic && !m.sameLiteralTags(ctx, c.Tags.Path, stored.Path):
		res.Class = PossibleFalsePositive
	default:
		res.Class = Duplicate
	}
	return res, nil
}

// outsideTolerance compares in whole hundredths of a second, the precision durations are stored with,
// so a gap of exactly the tolerance is always outside it.
func outsideTolerance(a, b, tolerance float64) bool {
	gap := math.Abs(math.Round(a*100) - math.Round(b*100))
	return gap >= math.Round(tolerance*100)
}

func (m *Matcher) ignored(candidate, stored string) bool {
	return m.cfg.IgnoreMarker != "" && candidate == m.cfg.IgnoreMarker && stored == m.cfg.IgnoreMarker
}

// sameLiteralTags re-reads both files and compares their non-phonetic keys.
// If either file can no longer be read the match cannot be confirmed.
func (m *Matcher) sameLiteralTags(ctx context.Context, candidatePath, storedPath string) bool {
	a, err := m.reader.ReadTags(ctx, candidatePath)
	if err != nil {
		slog.Warn("Could not re-read candidate tags", "path", candidatePath, "error", err)
		return false
	}
	b, err := m.reader.ReadTags(ctx, storedPath)
	if err != nil {
		slog.Warn("Could not re-read stored tags", "path", storedPath, "error", err)
		return false
	}
	return a.Key(false) == b.Key(false)
}
