package scanner

import (
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"ShowtimesFeed/internal/domain"
)

// Parser captures a single markup strategy (free-text listing, event list, etc.).
// Parse must be a pure function of the document: no network and no shared state.
type Parser interface {
	Name() string
	Parse(doc *goquery.Document, src domain.SourceDescriptor) ([]domain.RawEvent, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// Register adds or replaces a parser implementation.
func (r *Registry) Register(p Parser) {
	if r.parsers == nil {
		r.parsers = map[string]Parser{}
	}
	r.parsers[p.Name()] = p
}

// Resolve returns a parser by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Parser, error) {
	if p, ok := r.parsers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownParser, name)
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse dispatches the document to the strategy named by the descriptor.
func (r *Registry) Parse(doc *goquery.Document, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	p, err := r.Resolve(src.Parser)
	if err != nil {
		return nil, err
	}
	return p.Parse(doc, src)
}
