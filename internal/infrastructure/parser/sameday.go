package parser

import (
	"github.com/PuerkitoBio/goquery"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/scanner"
)

const (
	sameDayShowtimes = ".showtime, .showtimes, .showtime-list"
	sameDayCards     = ".movie, .movie-card, .film, .showtimes-wrap"

	// TagToday marks showtimes anchored to the scrape date.
	TagToday = "today"
)

// SameDayParser reads listings that only publish today's bare times.
type SameDayParser struct {
	heuristics *datetime.Heuristics
}

var _ scanner.Parser = (*SameDayParser)(nil)

// NewSameDayParser builds the today-only strategy.
func NewSameDayParser(h *datetime.Heuristics) *SameDayParser {
	return &SameDayParser{heuristics: h}
}

// Name identifies the strategy inside the registry.
func (p *SameDayParser) Name() string {
	return "same-day"
}

// Parse takes the title from the enclosing card's heading and anchors every
// time found in a showtime block to the current date in the venue timezone.
func (p *SameDayParser) Parse(doc *goquery.Document, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	showSel, err := selectorOption(src, "showtime_selector", sameDayShowtimes)
	if err != nil {
		return nil, &domain.ParseError{Parser: p.Name(), Cause: err}
	}
	cardSel, err := selectorOption(src, "card_selector", sameDayCards)
	if err != nil {
		return nil, &domain.ParseError{Parser: p.Name(), Cause: err}
	}

	year, month, day := p.heuristics.Today()
	events := []domain.RawEvent{}

	doc.Find(showSel).Each(func(_ int, el *goquery.Selection) {
		card := el.Closest(cardSel)
		title := normalizeText(card.Find("h1, h2, h3").First().Text())
		times := datetime.ExtractTimes(normalizeText(el.Text()))
		if title == "" || len(times) == 0 {
			return
		}
		events = append(events, timedEvents(p.heuristics, src, title, year, month, day, times, TagToday)...)
	})
	return events, nil
}
