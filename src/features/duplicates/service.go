package duplicates

import (
	"context"
	"errors"
	"log/slog"

	"github.com/contre95/dupetrack/src/features/config"
	"github.com/contre95/dupetrack/src/music"
)

// Mode selects what a scan does with keys already in the library.
type Mode int

const (
	// ModeBuild only adds new keys. Existing keys are not classified.
	ModeBuild Mode = iota
	// ModeScan classifies every file whose key already exists.
	ModeScan
)

func (m Mode) String() string {
	if m == ModeBuild {
		return "build"
	}
	return "scan"
}

// Library is the part of the record store a scan mutates.
type Library interface {
	RecordLookup
	Add(key string, rec music.Record)
	Len() int
}

// Recorder receives per-file outcomes.
type Recorder interface {
	Classified(class string)
	TagError()
}

type nopRecorder struct{}

func (nopRecorder) Classified(string) {}
func (nopRecorder) TagError()         {}

// Stats are the totals of one run.
type Stats struct {
	Scanned          int
	Added            int
	Duplicates       int
	NotDuplicates    int
	Ignored          int
	FalsePositives   int
	TrailingArticles int
	TagErrors        int
}

// Scanner runs files through the matcher and keeps the library up to date.
type Scanner struct {
	library  Library
	reader   music.TagReader
	matcher  *Matcher
	cfg      config.Matching
	report   *Report
	progress music.Progress
	recorder Recorder
}

// NewScanner creates a Scanner. progress and recorder may be nil.
func NewScanner(lib Library, reader music.TagReader, cfg config.Matching, report *Report, progress music.Progress, recorder Recorder) *Scanner {
	if progress == nil {
		progress = music.NoProgress{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Scanner{
		library:  lib,
		reader:   reader,
		matcher:  NewMatcher(lib, reader, cfg),
		cfg:      cfg,
		report:   report,
		progress: progress,
		recorder: recorder,
	}
}

// Run processes paths in order. Unreadable files are logged, counted and skipped.
// Only cancellation or a report write failure stops the run early.
func (s *Scanner) Run(ctx context.Context, mode Mode, paths []string) (Stats, error) {
	var stats Stats
	slog.Info("Scanning music files", "mode", mode.String(), "files", len(paths), "library", s.library.Len())

	s.progress.Start(len(paths), mode.String())
	defer s.progress.Finish()

	for _, path := range paths {
		if err := s.process(ctx, mode, path, &stats); err != nil {
			return stats, err
		}
		s.progress.Advance()
		if err := s.report.Err(); err != nil {
			return stats, err
		}
	}

	s.report.Summary(mode, stats, s.cfg.Tolerance, s.cfg.ShowFalsePositives)
	slog.Info("Scan finished",
		"mode", mode.String(),
		"scanned", stats.Scanned,
		"added", stats.Added,
		"duplicates", stats.Duplicates,
		"tag_errors", stats.TagErrors,
	)
	return stats, s.report.Err()
}

func (s *Scanner) process(ctx context.Context, mode Mode, path string, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tags, err := s.reader.ReadTags(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		slog.Error("Skipping file with unreadable tags", "path", path, "error", err)
		stats.TagErrors++
		s.recorder.TagError()
		return nil
	}
	stats.Scanned++

	if s.cfg.CheckTrailingThe && music.HasTrailingArticle(tags.Artist) {
		s.report.TrailingArticle(tags.Artist, path)
		stats.TrailingArticles++
	}

	key := tags.Key(s.cfg.Phonetic)
	if mode == ModeBuild {
		if _, ok := s.library.Lookup(key); !ok {
			s.library.Add(key, tags.Record())
			stats.Added++
			s.recorder.Classified(New.String())
		}
		return nil
	}

	res, err := s.matcher.Classify(ctx, Candidate{Key: key, Tags: tags})
	if err != nil {
		return err
	}
	s.recorder.Classified(res.Class.String())

	switch res.Class {
	case New:
		s.library.Add(key, tags.Record())
		stats.Added++
	case Duplicate:
		s.report.Duplicate(tags, res.Stored)
		stats.Duplicates++
	case PossibleFalsePositive:
		if s.cfg.ShowFalsePositives {
			s.report.FalsePositive(tags, res.Stored)
		}
		stats.FalsePositives++
	case NotDuplicate:
		slog.Debug("Same key but different duration", "path", path, "stored", res.Stored.Path)
		stats.NotDuplicates++
	case Ignored:
		slog.Debug("Duplicate marked as ignored", "path", path, "stored", res.Stored.Path)
		stats.Ignored++
	}
	return nil
}
