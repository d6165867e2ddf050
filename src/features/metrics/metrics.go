package metrics

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dupetrack"

// Recorder counts what a run did. It keeps its own registry so runs and tests never share state.
type Recorder struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	tagErrors       prometheus.Counter
	integrity       *prometheus.CounterVec
	librarySize     prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracks_classified_total",
			Help:      "Scanned tracks by classification outcome.",
		}, []string{"class"}),
		tagErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tag_read_errors_total",
			Help:      "Files skipped because their tags could not be read.",
		}),
		integrity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_entries_total",
			Help:      "Library entries whose file was missing during an integrity check.",
		}, []string{"outcome"}),
		librarySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "library_entries",
			Help:      "Number of records in the library after the run.",
		}),
	}
	r.registry.MustRegister(r.classifications, r.tagErrors, r.integrity, r.librarySize)
	return r
}

// Classified counts one track with the given outcome.
func (r *Recorder) Classified(class string) {
	r.classifications.WithLabelValues(class).Inc()
}

// TagError counts one unreadable file.
func (r *Recorder) TagError() {
	r.tagErrors.Inc()
}

// Integrity records the counters of an integrity check.
func (r *Recorder) Integrity(missing, removed int) {
	r.integrity.WithLabelValues("missing").Add(float64(missing))
	r.integrity.WithLabelValues("removed").Add(float64(removed))
}

// LibrarySize sets the library size gauge.
func (r *Recorder) LibrarySize(n int) {
	r.librarySize.Set(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the metrics in the node-exporter textfile format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	slog.Debug("Metrics written", "path", path)
	return nil
}
