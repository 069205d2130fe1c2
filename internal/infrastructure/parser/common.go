package parser

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/structured"
)

// Option keys shared by several strategies.
const (
	optRegion       = "region"
	optDefaultTitle = "default_title"
)

// blockBreaks are elements whose boundaries end a line of rendered text.
var blockBreaks = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Section: true, atom.Article: true, atom.Header: true,
	atom.Footer: true, atom.Dt: true, atom.Dd: true,
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textLines renders the selection's text with a line break at block boundaries
// and returns the non-empty, whitespace-normalized lines.
func textLines(sel *goquery.Selection) []string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = normalizeText(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		}
	}
	brk := n.Type == html.ElementNode && blockBreaks[n.DataAtom]
	if brk {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if brk {
		b.WriteByte('\n')
	}
}

// selectorOption returns a validated CSS selector from the venue options.
func selectorOption(src domain.SourceDescriptor, key, def string) (string, error) {
	sel := src.OptionOr(key, def)
	if sel == "" {
		return "", nil
	}
	if _, err := cascadia.ParseGroup(sel); err != nil {
		return "", fmt.Errorf("option %s: invalid selector %q: %w", key, sel, err)
	}
	return sel, nil
}

// ticketURL resolves href against the source page; empty hrefs fall back to the page itself.
func ticketURL(src domain.SourceDescriptor, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return src.SourceURL
	}
	base, err := url.Parse(src.SourceURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return src.SourceURL
	}
	return base.ResolveReference(ref).String()
}

// venueTags returns the configured tags plus extra, as a fresh slice.
func venueTags(src domain.SourceDescriptor, extra ...string) []string {
	tags := append([]string{}, src.Tags()...)
	return append(tags, extra...)
}

// machineStart turns a datetime attribute into a start value. Full timestamps
// pass through; bare dates borrow a time from the surrounding text or fall
// back to the default time with the time-unknown tag.
func machineStart(h *datetime.Heuristics, attr, text string) (start string, tags []string) {
	attr = strings.TrimSpace(attr)
	d, err := time.Parse("2006-01-02", attr)
	if err != nil {
		return attr, nil
	}
	if times := datetime.ExtractTimes(text); len(times) > 0 {
		return h.BuildTimestamp(d.Year(), int(d.Month()), d.Day(), times[0].Hour, times[0].Minute), nil
	}
	return h.DefaultTimestamp(d.Year(), int(d.Month()), d.Day()), []string{domain.TagTimeUnknown}
}

// fromRecords converts embedded metadata records into raw events.
func fromRecords(src domain.SourceDescriptor, records []structured.Record) []domain.RawEvent {
	events := make([]domain.RawEvent, 0, len(records))
	for _, rec := range records {
		events = append(events, domain.RawEvent{
			Title:     normalizeText(rec.Title),
			Start:     rec.Start,
			Tags:      venueTags(src),
			TicketURL: ticketURL(src, rec.URL),
		})
	}
	return events
}

// timedEvents emits one raw event per time, or a single defaulted one tagged time-unknown.
func timedEvents(h *datetime.Heuristics, src domain.SourceDescriptor, title string, year, month, day int, times []datetime.TimeFragment, extra ...string) []domain.RawEvent {
	if len(times) == 0 {
		return []domain.RawEvent{{
			Title:     title,
			Start:     h.DefaultTimestamp(year, month, day),
			Tags:      append(venueTags(src, extra...), domain.TagTimeUnknown),
			TicketURL: src.SourceURL,
		}}
	}
	events := make([]domain.RawEvent, 0, len(times))
	for _, tf := range times {
		events = append(events, domain.RawEvent{
			Title:     title,
			Start:     h.BuildTimestamp(year, month, day, tf.Hour, tf.Minute),
			Tags:      venueTags(src, extra...),
			TicketURL: src.SourceURL,
		})
	}
	return events
}
