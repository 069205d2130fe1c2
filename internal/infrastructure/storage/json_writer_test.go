package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ShowtimesFeed/internal/domain"
)

func sampleDocument(title string) domain.OutputDocument {
	return domain.OutputDocument{
		Meta: domain.Meta{
			GeneratedAt: "2024-01-01",
			Timezone:    "America/Los_Angeles",
			Notes:       "Scraped data.",
			Warnings:    []string{},
			Summary:     "hollywood:1",
		},
		Venues: []domain.Venue{{ID: "hollywood", Name: "Hollywood Theatre", URL: "https://hollywoodtheatre.org", Location: "Portland, OR"}},
		Events: []domain.Event{{
			ID:      "hollywood-" + title + "-1705374000000",
			Title:   title,
			Start:   "2024-01-15T19:00:00-08:00",
			VenueID: "hollywood",
			Tags:    []string{},
			Origin:  domain.OriginScrape,
		}},
	}
}

func TestJSONFileWriterOverwritesWholesale(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "events.json")
	w := NewJSONFileWriter(path)

	if err := w.Write(context.Background(), sampleDocument("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.Write(context.Background(), sampleDocument("second")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	events := decoded["events"].([]any)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	evt := events[0].(map[string]any)
	if evt["title"] != "second" || evt["source"] != "scrape" || evt["isSample"] != false {
		t.Fatalf("unexpected event: %v", evt)
	}
	if v, ok := evt["end"]; !ok || v != nil {
		t.Fatalf("end must be present and null, got %v", v)
	}
	if tags, ok := evt["tags"].([]any); !ok || len(tags) != 0 {
		t.Fatalf("tags must be an empty list, got %v", evt["tags"])
	}
	meta := decoded["meta"].(map[string]any)
	if warnings, ok := meta["warnings"].([]any); !ok || len(warnings) != 0 {
		t.Fatalf("warnings must be an empty list, got %v", meta["warnings"])
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestJSONFileWriterFailureIsSerializationError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("file"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	w := NewJSONFileWriter(filepath.Join(blocker, "events.json"))
	err := w.Write(context.Background(), sampleDocument("x"))

	var serr *domain.SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SerializationError, got %v", err)
	}
	if serr.Path != w.Path() {
		t.Fatalf("unexpected path %q", serr.Path)
	}
}

func TestJSONFileWriterDefaultPath(t *testing.T) {
	t.Parallel()

	if got := NewJSONFileWriter("").Path(); got != DefaultPath {
		t.Fatalf("default path = %q", got)
	}
}
