package music

import (
	"fmt"
	"math"
	"strings"
)

// Record is what the library stores for a comparison key: the first file seen with that key.
type Record struct {
	Path     string  `json:"path" yaml:"path"`
	Duration float64 `json:"duration" yaml:"duration"`
	Marker   string  `json:"marker" yaml:"marker"`
}

// Validate validates the record fields.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("record path cannot be empty")
	}
	if r.Duration < 0 || math.IsNaN(r.Duration) || math.IsInf(r.Duration, 0) {
		return fmt.Errorf("record duration must be a finite non-negative number, got %f: path -> %s", r.Duration, r.Path)
	}
	return nil
}

// Tags are the fields read from an audio file that take part in duplicate detection.
type Tags struct {
	Path     string
	Artist   string
	Title    string
	Duration float64 // seconds, 0 when the file carries no usable duration
	Marker   string  // duplicate-ignore marker, empty when absent
}

// Key derives the comparison key for these tags.
func (t Tags) Key(phonetic bool) string {
	return DeriveKey(t.Artist, t.Title, phonetic)
}

// Record converts the tags into the value stored in the library.
func (t Tags) Record() Record {
	return Record{Path: t.Path, Duration: t.Duration, Marker: t.Marker}
}

// NormalizeDuration rounds to hundredths and maps missing or invalid values to 0.
func NormalizeDuration(seconds float64) float64 {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	return math.Round(seconds*100) / 100
}

// FormatSeconds renders a duration as 1h:2m:3.00s, 2m:3.00s or 3.00s.
func FormatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := math.Floor(seconds / 60)
	secs := seconds - minutes*60
	hours := math.Floor(minutes / 60)
	minutes -= hours * 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh:%dm:%0.2fs", int(hours), int(minutes), secs)
	case minutes > 0:
		return fmt.Sprintf("%dm:%0.2fs", int(minutes), secs)
	default:
		return fmt.Sprintf("%0.2fs", secs)
	}
}
