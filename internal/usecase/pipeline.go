package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ShowtimesFeed/internal/clock"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/normalize"
	"ShowtimesFeed/internal/ports"
)

const dateLayout = "2006-01-02"

// PipelineDeps wires all driven adapters into the run pipeline.
type PipelineDeps struct {
	Source     ports.VenueSource
	Normalizer *normalize.Normalizer
	Writer     ports.OutputWriter
	Recorder   ports.RunRecorder
	Logger     *slog.Logger
	Clock      clock.Clock
	Location   *time.Location
	Notes      string
	// Concurrency bounds how many venues are collected at once; below 1 means sequential.
	Concurrency int
}

// Pipeline aggregates every venue of a run into one output document.
type Pipeline struct {
	source      ports.VenueSource
	normalizer  *normalize.Normalizer
	writer      ports.OutputWriter
	recorder    ports.RunRecorder
	logger      *slog.Logger
	clock       clock.Clock
	location    *time.Location
	notes       string
	concurrency int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:      deps.Source,
		normalizer:  deps.Normalizer,
		writer:      deps.Writer,
		recorder:    deps.Recorder,
		logger:      deps.Logger,
		clock:       deps.Clock,
		location:    deps.Location,
		notes:       deps.Notes,
		concurrency: deps.Concurrency,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.clock == nil {
		p.clock = clock.NewSystem()
	}
	if p.location == nil {
		p.location = time.Local
	}
	if p.concurrency < 1 {
		p.concurrency = 1
	}
	return p
}

// venueOutcome is everything one venue contributed to a run.
type venueOutcome struct {
	events  []domain.Event
	failure error
	dropped []error
	took    time.Duration
}

// Execute runs every venue and writes the document. Venue failures end up as
// warnings; only a failure to write the output is returned.
func (p *Pipeline) Execute(ctx context.Context, venues []domain.SourceDescriptor) error {
	if p.writer == nil {
		return fmt.Errorf("output writer is not configured")
	}

	doc, report := p.Run(ctx, venues)
	if err := p.writer.Write(ctx, doc); err != nil {
		p.logger.Error("write output failed", "run_id", report.RunID, "error", err)
		return fmt.Errorf("write output: %w", err)
	}

	if p.recorder != nil {
		if err := p.recorder.ObserveRun(report); err != nil {
			p.logger.Warn("record run metrics failed", "run_id", report.RunID, "error", err)
		}
	}
	return nil
}

// Run collects all venues and assembles the document in registry order,
// regardless of the order in which venues finished.
func (p *Pipeline) Run(ctx context.Context, venues []domain.SourceDescriptor) (domain.OutputDocument, domain.RunReport) {
	now := p.clock.Now().In(p.location)
	report := domain.RunReport{
		RunID:          uuid.NewString(),
		GeneratedAt:    now,
		Timezone:       p.location.String(),
		Warnings:       []string{},
		PerVenueCounts: map[string]int{},
	}
	log := p.logger.With("run_id", report.RunID)
	log.Info("run started", "venues", len(venues), "concurrency", p.concurrency)

	outcomes := p.collectAll(ctx, venues, log)

	doc := domain.OutputDocument{
		Venues: make([]domain.Venue, 0, len(venues)),
		Events: []domain.Event{},
	}
	order := make([]string, 0, len(venues))
	for i, src := range venues {
		out := outcomes[i]
		order = append(order, src.ID)
		doc.Venues = append(doc.Venues, domain.VenueFrom(src))

		if out.failure != nil {
			report.Warn(src.ID, out.failure)
			log.Warn("venue failed", "venue", src.ID, "error", out.failure)
		}
		for _, err := range out.dropped {
			report.Warn(src.ID, err)
			log.Warn("event dropped", "venue", src.ID, "error", err)
		}
		if len(out.events) > 0 {
			report.PerVenueCounts[src.ID] = len(out.events)
		}
		doc.Events = append(doc.Events, out.events...)

		if p.recorder != nil {
			p.recorder.ObserveVenue(src.ID, len(out.events), out.failure, out.took)
		}
	}

	doc.Meta = domain.Meta{
		GeneratedAt: now.Format(dateLayout),
		Timezone:    report.Timezone,
		Notes:       p.notes,
		Warnings:    report.Warnings,
		Summary:     report.Summary(order),
	}

	log.Info("run finished", "events", len(doc.Events), "warnings", len(report.Warnings))
	return doc, report
}

// collectAll fills one slot per venue, at most p.concurrency at a time.
func (p *Pipeline) collectAll(ctx context.Context, venues []domain.SourceDescriptor, log *slog.Logger) []venueOutcome {
	outcomes := make([]venueOutcome, len(venues))
	if p.concurrency == 1 {
		for i, src := range venues {
			outcomes[i] = p.collect(ctx, src, log)
		}
		return outcomes
	}

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, src := range venues {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, src domain.SourceDescriptor) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = p.collect(ctx, src, log)
		}(i, src)
	}
	wg.Wait()
	return outcomes
}

// collect runs fetch, parse and normalize for a single venue. Nothing a venue
// does escapes this boundary except its outcome.
func (p *Pipeline) collect(ctx context.Context, src domain.SourceDescriptor, log *slog.Logger) (out venueOutcome) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = venueOutcome{failure: fmt.Errorf("unexpected failure: %v", r)}
		}
		out.took = time.Since(started)
	}()

	if p.source == nil || p.normalizer == nil {
		out.failure = fmt.Errorf("pipeline is not configured")
		return out
	}

	raw, err := p.source.Collect(ctx, src)
	if err != nil {
		out.failure = err
		return out
	}

	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		evt, err := p.normalizer.Normalize(src.ID, r)
		if err != nil {
			out.dropped = append(out.dropped, err)
			continue
		}
		if seen[evt.ID] {
			continue
		}
		seen[evt.ID] = true
		out.events = append(out.events, evt)
	}
	sortByStart(out.events)

	log.Debug("venue collected", "venue", src.ID, "raw_events", len(raw), "events", len(out.events))
	return out
}

// sortByStart orders events chronologically, keeping page order for equal starts.
func sortByStart(events []domain.Event) {
	instants := make(map[string]time.Time, len(events))
	for _, e := range events {
		t, _ := time.Parse(time.RFC3339, e.Start)
		instants[e.ID] = t
	}
	sort.SliceStable(events, func(i, j int) bool {
		return instants[events[i].ID].Before(instants[events[j].ID])
	})
}
