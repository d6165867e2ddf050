package music

import (
	"context"
	"fmt"
	"strings"
)

// StoreFormat selects how the library is persisted.
type StoreFormat int

const (
	FormatBinary StoreFormat = iota
	FormatJSON
	FormatYAML
	FormatSQLite
)

var storeFormatNames = map[StoreFormat]string{
	FormatBinary: "binary",
	FormatJSON:   "json",
	FormatYAML:   "yaml",
	FormatSQLite: "sqlite",
}

func (f StoreFormat) String() string {
	if name, ok := storeFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("StoreFormat(%d)", int(f))
}

// Extension is the conventional file extension for the format, without the dot.
func (f StoreFormat) Extension() string {
	switch f {
	case FormatBinary:
		return "gob"
	case FormatSQLite:
		return "db"
	default:
		return f.String()
	}
}

// ParseStoreFormat maps a config value to a StoreFormat. "pickle" is accepted as an alias of binary.
func ParseStoreFormat(s string) (StoreFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "gob", "pickle", "":
		return FormatBinary, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	}
	return 0, fmt.Errorf("unknown library format %q", s)
}

// RecordStore persists a whole snapshot of the library. Every Save rewrites the full set.
type RecordStore interface {
	Format() StoreFormat
	// Load reads the snapshot at path. A missing file must be reported with an error wrapping fs.ErrNotExist.
	Load(ctx context.Context, path string) (map[string]Record, error)
	Save(ctx context.Context, path string, records map[string]Record) error
}

// TagReader extracts the duplicate-detection tags from an audio file.
type TagReader interface {
	ReadTags(ctx context.Context, path string) (Tags, error)
}
