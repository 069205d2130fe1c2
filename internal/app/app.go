package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ShowtimesFeed/internal/clock"
	"ShowtimesFeed/internal/config"
	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/infrastructure/fetcher"
	"ShowtimesFeed/internal/infrastructure/metrics"
	"ShowtimesFeed/internal/infrastructure/parser"
	"ShowtimesFeed/internal/infrastructure/scheduler"
	"ShowtimesFeed/internal/infrastructure/storage"
	"ShowtimesFeed/internal/logging"
	"ShowtimesFeed/internal/normalize"
	"ShowtimesFeed/internal/ports"
	"ShowtimesFeed/internal/scanner"
	"ShowtimesFeed/internal/usecase"
)

// Option adjusts how the application is wired.
type Option func(*options)

type options struct {
	clock   clock.Clock
	fetcher ports.Fetcher
}

// WithClock replaces the system clock, e.g. to pin "today" in tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f ports.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	clock    clock.Clock
	registry *scanner.Registry
	source   *parser.StrategySource
	writer   *storage.JSONFileWriter
	recorder *metrics.Recorder
	pipeline *usecase.Pipeline
	venues   []domain.SourceDescriptor

	normalizer *normalize.Normalizer
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger, opts ...Option) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	o := options{clock: clock.NewSystem()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fetcher == nil {
		o.fetcher = fetcher.New(nil, fetcher.Identity{
			UserAgent:      cfg.Fetch.UserAgent,
			Accept:         cfg.Fetch.Accept,
			AcceptLanguage: cfg.Fetch.AcceptLanguage,
		}, cfg.Fetch.Timeout)
	}

	heuristics := datetime.New(cfg.HeuristicsPolicy(), cfg.Location(), o.clock)

	registry := scanner.NewRegistry()
	parser.RegisterAll(registry, heuristics)

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		clock:      o.clock,
		registry:   registry,
		source:     parser.NewStrategySource(registry, o.fetcher, logging.Component(baseLogger, "source")),
		writer:     storage.NewJSONFileWriter(cfg.Output.Path),
		recorder:   metrics.NewRecorder(cfg.Metrics.Textfile),
		venues:     cfg.Registry(),
		normalizer: normalize.New(heuristics),
	}
	a.pipeline = a.newPipeline(a.source, a.writer, a.recorder)
	return a
}

func (a *Application) newPipeline(source ports.VenueSource, writer ports.OutputWriter, recorder ports.RunRecorder) *usecase.Pipeline {
	return usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Normalizer:  a.normalizer,
		Writer:      writer,
		Recorder:    recorder,
		Logger:      logging.Component(a.logger, "pipeline"),
		Clock:       a.clock,
		Location:    a.cfg.Location(),
		Notes:       a.cfg.Notes,
		Concurrency: a.cfg.Fetch.Concurrency,
	})
}

// Venues returns the configured registry in run order.
func (a *Application) Venues() []domain.SourceDescriptor {
	return a.venues
}

// Strategies lists the registered parser names.
func (a *Application) Strategies() []string {
	return a.registry.Names()
}

// OutputPath is where Run writes the feed.
func (a *Application) OutputPath() string {
	return a.writer.Path()
}

// Run performs a single scrape over every venue and writes the feed.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}
	return a.pipeline.Execute(ctx, a.venues)
}

// RunEvery repeats Run on a ticker until ctx is cancelled.
func (a *Application) RunEvery(ctx context.Context, interval time.Duration) error {
	driver := scheduler.NewTickerScheduler(interval)
	sched := usecase.NewScheduler(driver, a.pipeline, a.venues, logging.Component(a.logger, "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", interval.String())

	<-driver.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// pageSource serves a saved page instead of fetching the venue.
type pageSource struct {
	source *parser.StrategySource
	body   []byte
}

func (p pageSource) Collect(_ context.Context, src domain.SourceDescriptor) ([]domain.RawEvent, error) {
	return p.source.ParsePage(p.body, src)
}

// ParsePage runs one venue's strategy over a saved page and returns the
// document that venue alone would produce. Nothing is written.
func (a *Application) ParsePage(ctx context.Context, venueID string, body []byte) (domain.OutputDocument, error) {
	for _, src := range a.venues {
		if src.ID != venueID {
			continue
		}
		p := a.newPipeline(pageSource{source: a.source, body: body}, nil, nil)
		doc, _ := p.Run(ctx, []domain.SourceDescriptor{src})
		return doc, nil
	}
	return domain.OutputDocument{}, fmt.Errorf("unknown venue %q", venueID)
}
