package music

import (
	"context"
)

// FileFinder supplies candidate audio files for a scan.
type FileFinder interface {
	// FindTracks returns the audio files under root, already filtered to the configured extensions.
	FindTracks(ctx context.Context, root string) ([]string, error)
}

// Progress is a visible indicator advanced once per processed file.
type Progress interface {
	Start(total int, description string)
	Advance()
	Finish()
}

// NoProgress discards progress updates.
type NoProgress struct{}

func (NoProgress) Start(int, string) {}
func (NoProgress) Advance()          {}
func (NoProgress) Finish()           {}
