package ports

import (
	"context"
	"time"

	"ShowtimesFeed/internal/domain"
)

// Fetcher retrieves the raw HTML of one source page, one attempt per call.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// VenueSource produces raw events for one venue: fetch, then parse.
type VenueSource interface {
	Collect(ctx context.Context, src domain.SourceDescriptor) ([]domain.RawEvent, error)
}

// OutputWriter persists the finished document, replacing any previous one.
type OutputWriter interface {
	Write(ctx context.Context, doc domain.OutputDocument) error
}

// RunRecorder observes per-venue outcomes and the finished run.
type RunRecorder interface {
	ObserveVenue(venueID string, events int, err error, took time.Duration)
	ObserveRun(report domain.RunReport) error
}

// Scheduler controls when runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
