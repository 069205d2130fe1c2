package parser

import (
	"github.com/PuerkitoBio/goquery"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/scanner"
	"ShowtimesFeed/internal/structured"
)

const (
	eventListItems = ".tribe-events-calendar-list__event, .tribe-events-pro-photo__event"
	eventListTitle = ".tribe-events-calendar-list__event-title"
)

// EventListParser reads calendar plugins that render one card per showing
// with a machine-readable <time datetime> attribute.
type EventListParser struct {
	heuristics *datetime.Heuristics
}

var _ scanner.Parser = (*EventListParser)(nil)

// NewEventListParser builds the calendar-card strategy.
func NewEventListParser(h *datetime.Heuristics) *EventListParser {
	return &EventListParser{heuristics: h}
}

// Name identifies the strategy inside the registry.
func (p *EventListParser) Name() string {
	return "event-list"
}

// Parse reads cards directly and falls back to embedded metadata when the page has none.
func (p *EventListParser) Parse(doc *goquery.Document, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	itemSel, err := selectorOption(src, "item_selector", eventListItems)
	if err != nil {
		return nil, &domain.ParseError{Parser: p.Name(), Cause: err}
	}
	titleSel, err := selectorOption(src, "title_selector", eventListTitle)
	if err != nil {
		return nil, &domain.ParseError{Parser: p.Name(), Cause: err}
	}

	events := []domain.RawEvent{}
	doc.Find(itemSel).Each(func(_ int, item *goquery.Selection) {
		title := normalizeText(item.Find(titleSel).First().Text())
		datetimeAttr, ok := item.Find("time[datetime]").First().Attr("datetime")
		if title == "" || !ok {
			return
		}
		href, _ := item.Find("a[href]").First().Attr("href")

		start, extra := machineStart(p.heuristics, datetimeAttr, normalizeText(item.Text()))
		events = append(events, domain.RawEvent{
			Title:     title,
			Start:     start,
			Tags:      venueTags(src, extra...),
			TicketURL: ticketURL(src, href),
		})
	})

	if len(events) == 0 {
		events = fromRecords(src, structured.Extract(doc))
	}
	return events, nil
}
