package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/ports"
	"ShowtimesFeed/internal/scanner"
)

// StrategySource implements VenueSource via registered parser strategies.
type StrategySource struct {
	registry *scanner.Registry
	fetcher  ports.Fetcher
	logger   *slog.Logger
}

var _ ports.VenueSource = (*StrategySource)(nil)

// NewStrategySource wires the parser registry with a page fetcher.
func NewStrategySource(reg *scanner.Registry, fetcher ports.Fetcher, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		fetcher:  fetcher,
		logger:   log,
	}
}

// Collect fetches the venue's schedule page and runs its strategy over it.
// Fetch failures come back as *domain.FetchError, everything else as *domain.ParseError.
func (s *StrategySource) Collect(ctx context.Context, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	if s.registry == nil || s.fetcher == nil {
		return nil, fmt.Errorf("strategy source is not configured")
	}

	strategy, err := s.registry.Resolve(src.Parser)
	if err != nil {
		return nil, &domain.ParseError{Parser: src.Parser, Cause: err}
	}

	s.debug("fetch venue", "venue", src.ID, "url", src.SourceURL, "parser", strategy.Name())
	body, err := s.fetcher.Fetch(ctx, src.SourceURL)
	if err != nil {
		return nil, err
	}

	return s.ParsePage(body, src)
}

// ParsePage runs the venue's strategy over an already retrieved page.
func (s *StrategySource) ParsePage(body []byte, src domain.SourceDescriptor) (events []domain.RawEvent, err error) {
	strategy, err := s.registry.Resolve(src.Parser)
	if err != nil {
		return nil, &domain.ParseError{Parser: src.Parser, Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &domain.ParseError{Parser: strategy.Name(), Cause: fmt.Errorf("parse document: %w", err)}
	}

	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = &domain.ParseError{Parser: strategy.Name(), Cause: fmt.Errorf("unexpected structure: %v", r)}
		}
	}()

	events, err = strategy.Parse(doc, src)
	if err != nil {
		var perr *domain.ParseError
		if !errors.As(err, &perr) {
			err = &domain.ParseError{Parser: strategy.Name(), Cause: err}
		}
		return nil, err
	}
	s.debug("venue parsed", "venue", src.ID, "raw_events", len(events))
	return events, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
