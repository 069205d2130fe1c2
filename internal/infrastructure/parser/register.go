package parser

import (
	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/scanner"
)

// RegisterAll adds every built-in strategy to the registry.
func RegisterAll(reg *scanner.Registry, h *datetime.Heuristics) {
	reg.Register(NewListingParser(h))
	reg.Register(NewHeadingBlocksParser(h))
	reg.Register(NewEventListParser(h))
	reg.Register(NewStructuredFirstParser(h))
	reg.Register(NewSameDayParser(h))
}
