package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"ShowtimesFeed/internal/clock"
	"ShowtimesFeed/internal/config"
	"ShowtimesFeed/internal/domain"
)

const listingPage = `<html><body><main>
<h1>Showtimes</h1>
<h2>A Documentary</h2>
<p>Jan 15</p>
<p>7:00pm</p>
</main></body></html>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t *testing.T) clock.Clock {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return clock.NewFixed(time.Date(2024, 1, 1, 10, 0, 0, 0, loc))
}

func TestRunWritesFeed(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage))
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out := filepath.Join(t.TempDir(), "events.json")
	cfg := config.Config{
		Notes:  "Scraped data.",
		Output: config.OutputConfig{Path: out},
		Fetch:  config.FetchConfig{Concurrency: 2},
		Venues: []config.VenueConfig{
			{ID: "down", Name: "Down", Source: server.URL + "/down", Parser: "event-list"},
			{ID: "good", Name: "Good", Source: server.URL + "/good", Parser: "listing-text"},
		},
	}

	application := New(cfg, quietLogger(), WithClock(fixedClock(t)))
	if err := application.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	var doc domain.OutputDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode feed: %v", err)
	}

	if doc.Meta.GeneratedAt != "2024-01-01" || doc.Meta.Timezone != "America/Los_Angeles" || doc.Meta.Summary != "good:1" {
		t.Fatalf("meta = %+v", doc.Meta)
	}
	if len(doc.Meta.Warnings) != 1 || !strings.HasPrefix(doc.Meta.Warnings[0], "down: fetch failed (503)") {
		t.Fatalf("warnings = %v", doc.Meta.Warnings)
	}
	if len(doc.Venues) != 2 {
		t.Fatalf("venues = %+v", doc.Venues)
	}
	want := domain.Event{
		ID:        "good-a-documentary-1705374000000",
		Title:     "A Documentary",
		Start:     "2024-01-15T19:00:00-08:00",
		VenueID:   "good",
		Tags:      []string{},
		TicketURL: server.URL + "/good",
		Origin:    domain.OriginScrape,
	}
	if len(doc.Events) != 1 || !reflect.DeepEqual(doc.Events[0], want) {
		t.Fatalf("events = %+v", doc.Events)
	}
}

func TestParsePageOffline(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Venues: []config.VenueConfig{
		{ID: "hollywood", Name: "Hollywood Theatre", Source: "https://hollywoodtheatre.org/showtimes/", Parser: "listing-text"},
	}}
	application := New(cfg, quietLogger(), WithClock(fixedClock(t)), WithFetcher(nil))

	doc, err := application.ParsePage(context.Background(), "hollywood", []byte(listingPage))
	if err != nil {
		t.Fatalf("ParsePage error: %v", err)
	}
	if len(doc.Events) != 1 || doc.Events[0].Start != "2024-01-15T19:00:00-08:00" {
		t.Fatalf("events = %+v", doc.Events)
	}

	if _, err := application.ParsePage(context.Background(), "nope", nil); err == nil {
		t.Fatal("expected error for unknown venue")
	}
}

func TestStrategiesAndVenues(t *testing.T) {
	t.Parallel()

	application := New(config.Config{Venues: []config.VenueConfig{{ID: "a", Source: "https://a.example", Parser: "same-day"}}}, quietLogger())

	want := []string{"event-list", "heading-blocks", "listing-text", "same-day", "structured-first"}
	if got := application.Strategies(); !reflect.DeepEqual(got, want) {
		t.Fatalf("strategies = %v", got)
	}
	if venues := application.Venues(); len(venues) != 1 || venues[0].HomepageURL != "https://a.example" {
		t.Fatalf("venues = %+v", venues)
	}
	if application.OutputPath() != "data/events.json" {
		t.Fatalf("output path = %q", application.OutputPath())
	}
}
