package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ShowtimesFeed/internal/domain"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusOK},
		{&domain.FetchError{URL: "u", StatusCode: 500}, StatusFetchError},
		{fmt.Errorf("wrapped: %w", &domain.ParseError{Parser: "listing-text"}), StatusParseError},
		{errors.New("other"), StatusError},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRecorderWritesTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "showtimes.prom")
	r := NewRecorder(path)

	r.ObserveVenue("hollywood", 4, nil, 1200*time.Millisecond)
	r.ObserveVenue("clinton", 0, &domain.FetchError{URL: "https://cstpdx.com", StatusCode: 503}, 300*time.Millisecond)

	report := domain.RunReport{
		GeneratedAt: time.Unix(1704096000, 0),
		Warnings:    []string{"clinton: fetch failed (503) for https://cstpdx.com"},
	}
	if err := r.ObserveRun(report); err != nil {
		t.Fatalf("ObserveRun error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`showtimes_venue_results_total{status="ok",venue="hollywood"} 1`,
		`showtimes_venue_results_total{status="fetch_error",venue="clinton"} 1`,
		`showtimes_venue_events{venue="hollywood"} 4`,
		`showtimes_venue_duration_seconds_count{venue="hollywood"} 1`,
		`showtimes_run_warnings 1`,
		`showtimes_last_run_timestamp_seconds 1.704096e+09`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q\n%s", want, out)
		}
	}
}

func TestRecorderWithoutTextfile(t *testing.T) {
	t.Parallel()

	r := NewRecorder("")
	r.ObserveVenue("v", 1, nil, time.Second)
	if err := r.ObserveRun(domain.RunReport{GeneratedAt: time.Now()}); err != nil {
		t.Fatalf("ObserveRun error: %v", err)
	}
	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	if len(families) != 5 {
		t.Fatalf("expected 5 metric families, got %d", len(families))
	}
}
