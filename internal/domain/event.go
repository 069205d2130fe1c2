package domain

// Origin marks where a canonical event came from.
type Origin string

const (
	OriginScrape Origin = "scrape"
	OriginSample Origin = "sample"
)

// TagTimeUnknown marks events whose time of day was not published and was defaulted.
const TagTimeUnknown = "time-unknown"

// RawEvent is a venue parser's extraction before normalization.
// Start is either a full timestamp or free text the normalizer can resolve.
type RawEvent struct {
	Title     string
	Start     string
	Tags      []string
	TicketURL string
}

// Event is the canonical, identifier-bearing record written to the feed.
type Event struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Start     string   `json:"start"`
	End       *string  `json:"end"`
	VenueID   string   `json:"venueId"`
	Tags      []string `json:"tags"`
	TicketURL string   `json:"ticketUrl"`
	Origin    Origin   `json:"source"`
	IsSample  bool     `json:"isSample"`
}
