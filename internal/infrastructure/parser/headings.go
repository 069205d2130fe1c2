package parser

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/scanner"
)

const (
	headingRegion   = "main"
	headingBlocks   = "h1, h2, h3, h4, p, li"
	maxHeadingTitle = 80
)

// HeadingBlocksParser reads pages where headings name a film and following
// paragraphs or list items carry "Mon DD ... 7pm" style showtimes.
type HeadingBlocksParser struct {
	heuristics *datetime.Heuristics
}

var _ scanner.Parser = (*HeadingBlocksParser)(nil)

// NewHeadingBlocksParser builds the heading-blocks strategy.
func NewHeadingBlocksParser(h *datetime.Heuristics) *HeadingBlocksParser {
	return &HeadingBlocksParser{heuristics: h}
}

// Name identifies the strategy inside the registry.
func (p *HeadingBlocksParser) Name() string {
	return "heading-blocks"
}

// Parse walks blocks in document order. Blocks need both a date and a time;
// without a heading above them the venue's default_title is used, if any.
func (p *HeadingBlocksParser) Parse(doc *goquery.Document, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	regionSel, err := selectorOption(src, optRegion, headingRegion)
	if err != nil {
		return nil, &domain.ParseError{Parser: p.Name(), Cause: err}
	}

	fallback := src.OptionOr(optDefaultTitle, "")
	events := []domain.RawEvent{}
	title := ""

	doc.Find(regionSel).First().Find(headingBlocks).Each(func(_ int, s *goquery.Selection) {
		text := normalizeText(s.Text())
		if text == "" {
			return
		}
		switch s.Get(0).DataAtom {
		case atom.H1, atom.H2, atom.H3:
			if len(text) < maxHeadingTitle {
				title = text
				return
			}
		}

		date, ok := datetime.ExtractDate(text)
		times := datetime.ExtractTimes(text)
		if !ok || len(times) == 0 {
			return
		}

		name := title
		if name == "" {
			name = fallback
		}
		if name == "" {
			return
		}

		year, month, day := p.heuristics.ResolveDate(date)
		events = append(events, timedEvents(p.heuristics, src, name, year, month, day, times)...)
	})

	return events, nil
}
