package parser

import (
	"github.com/PuerkitoBio/goquery"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/scanner"
	"ShowtimesFeed/internal/structured"
)

const structuredFallback = "article"

// StructuredFirstParser trusts embedded JSON-LD and only scans markup when
// the page carries none. Setting fallback_selector to "" disables the scan.
type StructuredFirstParser struct {
	heuristics *datetime.Heuristics
}

var _ scanner.Parser = (*StructuredFirstParser)(nil)

// NewStructuredFirstParser builds the metadata-first strategy.
func NewStructuredFirstParser(h *datetime.Heuristics) *StructuredFirstParser {
	return &StructuredFirstParser{heuristics: h}
}

// Name identifies the strategy inside the registry.
func (p *StructuredFirstParser) Name() string {
	return "structured-first"
}

// Parse prefers JSON-LD records and scans fallback blocks only when there are none.
func (p *StructuredFirstParser) Parse(doc *goquery.Document, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	if events := fromRecords(src, structured.Extract(doc)); len(events) > 0 {
		return events, nil
	}

	blockSel, err := selectorOption(src, "fallback_selector", structuredFallback)
	if err != nil {
		return nil, &domain.ParseError{Parser: p.Name(), Cause: err}
	}
	events := []domain.RawEvent{}
	if blockSel == "" {
		return events, nil
	}

	doc.Find(blockSel).Each(func(_ int, block *goquery.Selection) {
		title := normalizeText(block.Find("h2, h3").First().Text())
		datetimeAttr, ok := block.Find("time[datetime]").First().Attr("datetime")
		if title == "" || !ok {
			return
		}
		href, _ := block.Find("a[href]").First().Attr("href")

		start, extra := machineStart(p.heuristics, datetimeAttr, normalizeText(block.Text()))
		events = append(events, domain.RawEvent{
			Title:     title,
			Start:     start,
			Tags:      venueTags(src, extra...),
			TicketURL: ticketURL(src, href),
		})
	})
	return events, nil
}
