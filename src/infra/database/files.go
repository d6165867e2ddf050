package database

import (
	"bufio"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/contre95/dupetrack/src/music"
	"gopkg.in/yaml.v3"
)

// New returns the RecordStore for format.
func New(format music.StoreFormat) (music.RecordStore, error) {
	switch format {
	case music.FormatBinary:
		return &GobStore{}, nil
	case music.FormatJSON:
		return &JSONStore{}, nil
	case music.FormatYAML:
		return &YAMLStore{}, nil
	case music.FormatSQLite:
		return NewSqliteStore(), nil
	}
	return nil, fmt.Errorf("unsupported library format %s", format)
}

// GobStore is the binary whole-map snapshot.
type GobStore struct{}

func (s *GobStore) Format() music.StoreFormat { return music.FormatBinary }

func (s *GobStore) Load(ctx context.Context, path string) (map[string]music.Record, error) {
	records := make(map[string]music.Record)
	err := readFile(path, func(r io.Reader) error {
		return gob.NewDecoder(r).Decode(&records)
	})
	return records, err
}

func (s *GobStore) Save(ctx context.Context, path string, records map[string]music.Record) error {
	return writeFile(path, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(records)
	})
}

// JSONStore is the human-readable snapshot, one object keyed by comparison key in sorted order.
type JSONStore struct{}

func (s *JSONStore) Format() music.StoreFormat { return music.FormatJSON }

func (s *JSONStore) Load(ctx context.Context, path string) (map[string]music.Record, error) {
	var records map[string]music.Record
	err := readFile(path, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&records)
	})
	if records == nil {
		records = make(map[string]music.Record)
	}
	return records, err
}

func (s *JSONStore) Save(ctx context.Context, path string, records map[string]music.Record) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	})
}

// YAMLStore is the YAML flavour of the readable snapshot.
type YAMLStore struct{}

func (s *YAMLStore) Format() music.StoreFormat { return music.FormatYAML }

func (s *YAMLStore) Load(ctx context.Context, path string) (map[string]music.Record, error) {
	var records map[string]music.Record
	err := readFile(path, func(r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, &records)
	})
	if records == nil {
		records = make(map[string]music.Record)
	}
	return records, err
}

func (s *YAMLStore) Save(ctx context.Context, path string, records map[string]music.Record) error {
	return writeFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	})
}

func readFile(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := decode(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := encode(w); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(records map[string]music.Record) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
