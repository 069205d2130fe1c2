// Package structured reads schema.org Event records embedded as JSON-LD.
//
// Embedded metadata is best-effort enrichment: malformed blocks contribute
// nothing and never fail the caller.
package structured

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = `script[type="application/ld+json"]`

// Record is an event found in embedded metadata.
type Record struct {
	Title string
	Start string
	URL   string
}

// Extract returns every Event record embedded in the document, in block order.
func Extract(doc *goquery.Document) []Record {
	var records []Record
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if found, ok := TryParseBlock(s.Text()); ok {
			records = append(records, found...)
		}
	})
	return records
}

// TryParseBlock decodes one JSON-LD block. ok is false when the block is not valid JSON.
func TryParseBlock(raw string) ([]Record, bool) {
	var parsed any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, false
	}

	var nodes []any
	if list, isList := parsed.([]any); isList {
		nodes = list
	} else {
		nodes = []any{parsed}
	}

	var out []Record
	for _, node := range nodes {
		obj, isObj := node.(map[string]any)
		if !isObj {
			continue
		}
		items := []any{obj}
		if !isEvent(obj) {
			items, _ = obj["@graph"].([]any)
		}
		for _, item := range items {
			if rec, ok := toRecord(item); ok {
				out = append(out, rec)
			}
		}
	}
	return out, true
}

func toRecord(item any) (Record, bool) {
	obj, ok := item.(map[string]any)
	if !ok || !isEvent(obj) {
		return Record{}, false
	}
	name := str(obj["name"])
	start := str(obj["startDate"])
	if name == "" || start == "" {
		return Record{}, false
	}
	return Record{Title: name, Start: start, URL: eventURL(obj)}, true
}

func isEvent(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "Event"
	case []any:
		for _, v := range t {
			if s, _ := v.(string); s == "Event" {
				return true
			}
		}
	}
	return false
}

func eventURL(obj map[string]any) string {
	if u := str(obj["url"]); u != "" {
		return u
	}
	switch offers := obj["offers"].(type) {
	case map[string]any:
		return str(offers["url"])
	case []any:
		if len(offers) > 0 {
			if first, ok := offers[0].(map[string]any); ok {
				return str(first["url"])
			}
		}
	}
	return ""
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
