package config

import "github.com/contre95/dupetrack/src/music"

// DefaultIgnoreMarker is the tag value that marks a track as an intentional duplicate.
const DefaultIgnoreMarker = "**IGNORE**"

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Library: Library{
			Path:      "./data/dup." + music.FormatBinary.Extension(),
			Format:    music.FormatBinary.String(),
			Overwrite: false,
		},
		Matching: Matching{
			Phonetic:           true,
			IgnoreMarker:       DefaultIgnoreMarker,
			Tolerance:          0.5,
			Extensions:         []string{".mp3"},
			CheckTrailingThe:   false,
			ShowFalsePositives: true,
		},
		Report: Report{
			Path:   "",
			Append: true,
		},
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Metrics: Metrics{
			Textfile: "",
		},
		Progress: true,
	}
}

// Default returns a copy of the default configuration.
func Default() Config {
	return *createDefaultConfig()
}
