package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/ports"
)

// Venue outcome labels.
const (
	StatusOK         = "ok"
	StatusFetchError = "fetch_error"
	StatusParseError = "parse_error"
	StatusError      = "error"
)

// Recorder keeps run metrics on a private registry and optionally dumps them
// to a node_exporter textfile after each run.
type Recorder struct {
	registry *prometheus.Registry
	textfile string

	venueResults  *prometheus.CounterVec
	venueEvents   *prometheus.GaugeVec
	venueDuration *prometheus.HistogramVec
	runWarnings   prometheus.Gauge
	lastRunTS     prometheus.Gauge
}

var _ ports.RunRecorder = (*Recorder)(nil)

// NewRecorder registers the showtimes metrics. An empty textfile disables the dump.
func NewRecorder(textfile string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		textfile: textfile,
	}
	r.venueResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "showtimes",
		Name:      "venue_results_total",
		Help:      "Venue collections by outcome",
	}, []string{"venue", "status"})
	r.venueEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "showtimes",
		Name:      "venue_events",
		Help:      "Canonical events produced by the venue in the last run",
	}, []string{"venue"})
	r.venueDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "showtimes",
		Name:      "venue_duration_seconds",
		Help:      "Time spent fetching, parsing and normalizing one venue",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"venue"})
	r.runWarnings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "showtimes",
		Name:      "run_warnings",
		Help:      "Warnings recorded by the last run",
	})
	r.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "showtimes",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed run",
	})

	r.registry.MustRegister(r.venueResults, r.venueEvents, r.venueDuration, r.runWarnings, r.lastRunTS)
	return r
}

// Registry exposes the private registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveVenue records one venue's outcome.
func (r *Recorder) ObserveVenue(venueID string, events int, err error, took time.Duration) {
	r.venueResults.WithLabelValues(venueID, Status(err)).Inc()
	r.venueEvents.WithLabelValues(venueID).Set(float64(events))
	r.venueDuration.WithLabelValues(venueID).Observe(took.Seconds())
}

// ObserveRun stamps the finished run and writes the textfile when configured.
func (r *Recorder) ObserveRun(report domain.RunReport) error {
	r.runWarnings.Set(float64(len(report.Warnings)))
	r.lastRunTS.Set(float64(report.GeneratedAt.Unix()))

	if r.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.textfile, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Status maps a venue error onto its metric label.
func Status(err error) string {
	var (
		ferr *domain.FetchError
		perr *domain.ParseError
	)
	switch {
	case err == nil:
		return StatusOK
	case errors.As(err, &ferr):
		return StatusFetchError
	case errors.As(err, &perr):
		return StatusParseError
	default:
		return StatusError
	}
}
