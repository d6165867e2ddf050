package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()
	r.Classified("duplicate")
	r.Classified("duplicate")
	r.Classified("new")
	r.TagError()
	r.Integrity(3, 1)
	r.LibrarySize(42)

	if got := testutil.ToFloat64(r.classifications.WithLabelValues("duplicate")); got != 2 {
		t.Errorf("expected 2 duplicates, got %v", got)
	}
	if got := testutil.ToFloat64(r.tagErrors); got != 1 {
		t.Errorf("expected 1 tag error, got %v", got)
	}
	if got := testutil.ToFloat64(r.integrity.WithLabelValues("missing")); got != 3 {
		t.Errorf("expected 3 missing, got %v", got)
	}
	if got := testutil.ToFloat64(r.librarySize); got != 42 {
		t.Errorf("expected library size 42, got %v", got)
	}

	series, err := testutil.GatherAndCount(r.Registry(), "dupetrack_tracks_classified_total", "dupetrack_library_entries")
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	if series != 3 {
		t.Errorf("expected 2 classification series and 1 size series, got %d", series)
	}
}

func TestRecorder_RegistriesAreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.Classified("new")

	n, err := testutil.GatherAndCount(b.Registry(), "dupetrack_tracks_classified_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected a fresh recorder to have no classifications, got %d series", n)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Classified("new")
	path := filepath.Join(t.TempDir(), "dupetrack.prom")

	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `dupetrack_tracks_classified_total{class="new"} 1`) {
		t.Errorf("unexpected textfile contents:\n%s", data)
	}
	if err := r.WriteTextfile(""); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}
