package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/scanner"
)

const (
	listingRegion      = "main, #main, .site-content"
	listingStartMarker = "showtimes"
	listingEndMarker   = "mission"
)

var (
	weekdayLine = regexp.MustCompile(`(?i)^(sunday|monday|tuesday|wednesday|thursday|friday|saturday)`)
	actionLine  = regexp.MustCompile(`(?i)^(buy tickets|more info|tickets|now playing)$`)
)

// ListingEntry is one date seen under a title, with any times attached to it.
type ListingEntry struct {
	Title string
	Date  datetime.DateFragment
	Times []datetime.TimeFragment
}

// FoldListing walks schedule lines keeping the most recent title candidate.
// A date line opens an entry for that title; lines holding only times directly
// after it add to the same entry. Dates seen before any title are dropped.
func FoldListing(lines []string) []ListingEntry {
	var (
		entries []ListingEntry
		title   string
		open    bool
	)
	for _, line := range lines {
		if date, ok := datetime.ExtractDate(line); ok {
			open = false
			if title != "" {
				entries = append(entries, ListingEntry{Title: title, Date: date, Times: datetime.ExtractTimes(line)})
				open = true
			}
			continue
		}
		if times := datetime.ExtractTimes(line); len(times) > 0 {
			if open {
				last := &entries[len(entries)-1]
				last.Times = append(last.Times, times...)
			}
			continue
		}
		if isTitleCandidate(line) {
			title = line
			open = false
		}
	}
	return entries
}

func isTitleCandidate(line string) bool {
	return len(line) > 2 && !weekdayLine.MatchString(line) && !actionLine.MatchString(line)
}

// boundLines keeps the lines strictly between the start and end markers.
// A missing start marker keeps everything from the top; a missing end marker
// keeps everything to the bottom.
func boundLines(lines []string, start, end string) []string {
	if start != "" {
		for i, line := range lines {
			if strings.EqualFold(line, start) {
				lines = lines[i+1:]
				break
			}
		}
	}
	if end != "" {
		for i, line := range lines {
			if strings.EqualFold(line, end) {
				return lines[:i]
			}
		}
	}
	return lines
}

// ListingParser reads free-text schedules: titles followed by date and time lines.
type ListingParser struct {
	heuristics *datetime.Heuristics
}

var _ scanner.Parser = (*ListingParser)(nil)

// NewListingParser builds the free-text listing strategy.
func NewListingParser(h *datetime.Heuristics) *ListingParser {
	return &ListingParser{heuristics: h}
}

// Name identifies the strategy inside the registry.
func (p *ListingParser) Name() string {
	return "listing-text"
}

// Parse folds the bounded text region into entries and emits one event per showtime.
func (p *ListingParser) Parse(doc *goquery.Document, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	regionSel, err := selectorOption(src, optRegion, listingRegion)
	if err != nil {
		return nil, &domain.ParseError{Parser: p.Name(), Cause: err}
	}

	region := doc.Find(regionSel).First()
	if region.Length() == 0 {
		return []domain.RawEvent{}, nil
	}

	lines := boundLines(textLines(region),
		src.OptionOr("start_marker", listingStartMarker),
		src.OptionOr("end_marker", listingEndMarker))

	events := []domain.RawEvent{}
	for _, entry := range FoldListing(lines) {
		year, month, day := p.heuristics.ResolveDate(entry.Date)
		events = append(events, timedEvents(p.heuristics, src, entry.Title, year, month, day, entry.Times)...)
	}
	return events, nil
}
