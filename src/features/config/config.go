package config

// Config holds the application configuration.
type Config struct {
	Library  Library  `yaml:"library" toml:"library"`
	Matching Matching `yaml:"matching" toml:"matching"`
	Report   Report   `yaml:"report" toml:"report"`
	Logger   Logger   `yaml:"logger" toml:"logger"`
	Metrics  Metrics  `yaml:"metrics" toml:"metrics"`
	Progress bool     `yaml:"progress" toml:"progress"`
}

// Library holds the configuration for the durable duplicate library
type Library struct {
	Path      string `yaml:"path" toml:"path" validate:"required"`
	Format    string `yaml:"format" toml:"format" validate:"omitempty,oneof=binary gob pickle json yaml yml sqlite sqlite3 db"`
	Overwrite bool   `yaml:"overwrite" toml:"overwrite"` // If not, the previous file is kept as a timestamped backup
}

// Matching holds the duplicate matching policy.
type Matching struct {
	Phonetic           bool     `yaml:"phonetic" toml:"phonetic"`
	IgnoreMarker       string   `yaml:"ignore_marker" toml:"ignore_marker"`
	Tolerance          float64  `yaml:"tolerance" toml:"tolerance" validate:"gte=0"` // seconds
	Extensions         []string `yaml:"extensions" toml:"extensions" validate:"min=1,dive,required"`
	CheckTrailingThe   bool     `yaml:"check_trailing_the" toml:"check_trailing_the"`
	ShowFalsePositives bool     `yaml:"show_false_positives" toml:"show_false_positives"`
}

// Report holds where duplicate reports go. An empty path means standard output.
type Report struct {
	Path   string `yaml:"path" toml:"path"`
	Append bool   `yaml:"append" toml:"append"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Level   string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" toml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// Metrics holds the prometheus textfile output location. Empty disables it.
type Metrics struct {
	Textfile string `yaml:"textfile" toml:"textfile"`
}
