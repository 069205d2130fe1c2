package structured

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestExtract(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><head>
	<script type="application/ld+json">
	{"@type":"Event","name":"Solo Event","startDate":"2024-02-01T19:00:00-08:00","url":"https://example.com/solo"}
	</script>
	<script type="application/ld+json">
	[{"@type":"Event","name":"Listed","startDate":"2024-02-02T19:00:00-08:00","offers":{"url":"https://tix.example.com/1"}},
	 {"@type":"Organization","name":"Not an event"}]
	</script>
	<script type="application/ld+json">
	{"@context":"https://schema.org","@graph":[
	  {"@type":"WebPage","name":"Page"},
	  {"@type":["Event","ScreeningEvent"],"name":"Graphed","startDate":"2024-02-03T19:00:00-08:00","offers":[{"url":"https://tix.example.com/2"}]},
	  {"@type":"Event","name":"No Start"},
	  {"@type":"Event","startDate":"2024-02-04T19:00:00-08:00"}
	]}
	</script>
	<script type="application/ld+json">{ this is not json </script>
	<script type="text/javascript">{"@type":"Event","name":"Wrong script","startDate":"2024-02-05"}</script>
	</head><body></body></html>`)

	got := Extract(doc)
	want := []Record{
		{Title: "Solo Event", Start: "2024-02-01T19:00:00-08:00", URL: "https://example.com/solo"},
		{Title: "Listed", Start: "2024-02-02T19:00:00-08:00", URL: "https://tix.example.com/1"},
		{Title: "Graphed", Start: "2024-02-03T19:00:00-08:00", URL: "https://tix.example.com/2"},
	}

	if len(got) != len(want) {
		t.Fatalf("Extract returned %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTryParseBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantOK    bool
		wantCount int
	}{
		{"malformed", `{"@type":`, false, 0},
		{"empty", ``, false, 0},
		{"scalar", `"just a string"`, true, 0},
		{"non event object", `{"@type":"Movie","name":"x","startDate":"y"}`, true, 0},
		{"event", `{"@type":"Event","name":"x","startDate":"2024-01-01"}`, true, 1},
		{"graph without list", `{"@graph":{"@type":"Event"}}`, true, 0},
	}

	for _, tt := range tests {
		got, ok := TryParseBlock(tt.raw)
		if ok != tt.wantOK || len(got) != tt.wantCount {
			t.Errorf("%s: TryParseBlock = %d records, ok=%v; want %d, ok=%v", tt.name, len(got), ok, tt.wantCount, tt.wantOK)
		}
	}
}

func TestExtractNoBlocks(t *testing.T) {
	t.Parallel()

	if got := Extract(mustDoc(t, `<html><body><p>nothing</p></body></html>`)); len(got) != 0 {
		t.Fatalf("expected no records, got %+v", got)
	}
}
