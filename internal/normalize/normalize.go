// Package normalize turns raw parser output into canonical feed events.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
)

const (
	maxSlugLen   = 80
	defaultTitle = "Screening"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// ISO-8601 layouts with a basic-format offset ("-0800"); they are re-rendered as "-08:00".
var basicOffsetLayouts = []string{
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
}

// Layouts tried, in order, for timestamps that carry a time but no offset.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Layouts for bare dates; they get the policy's default time of day.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"01/02/2006",
}

var errEmptyStart = errors.New("empty start")

// Normalizer resolves start values in the venue timezone and builds stable ids.
type Normalizer struct {
	heuristics *datetime.Heuristics
}

// New wires the heuristics used for timezone and default-time decisions.
func New(h *datetime.Heuristics) *Normalizer {
	return &Normalizer{heuristics: h}
}

// Normalize converts a raw event into its canonical form. The input is not modified.
func (n *Normalizer) Normalize(venueID string, raw domain.RawEvent) (domain.Event, error) {
	start, instant, err := n.ResolveStart(raw.Start)
	if err != nil {
		return domain.Event{}, &domain.ParseError{Cause: fmt.Errorf("event %q: %w", raw.Title, err)}
	}

	title := strings.Join(strings.Fields(raw.Title), " ")
	if title == "" {
		title = defaultTitle
	}

	return domain.Event{
		ID:        ID(venueID, title, instant),
		Title:     title,
		Start:     start,
		End:       nil,
		VenueID:   venueID,
		Tags:      tagSet(raw.Tags),
		TicketURL: raw.TicketURL,
		Origin:    domain.OriginScrape,
		IsSample:  false,
	}, nil
}

// ResolveStart returns the start as ISO-8601 with a numeric offset and the instant it denotes.
// A value that already carries an extended "-08:00" offset is returned unchanged.
func (n *Normalizer) ResolveStart(value string) (string, time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", time.Time{}, errEmptyStart
	}
	loc := n.heuristics.Location()

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
			local := t.In(loc)
			return local.Format(datetime.TimestampLayout), local, nil
		}
		return value, t, nil
	}

	for _, layout := range basicOffsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(datetime.TimestampLayout), t, nil
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.Format(datetime.TimestampLayout), t, nil
		}
	}

	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, value, loc); err == nil {
			p := n.heuristics.Policy()
			t := time.Date(d.Year(), d.Month(), d.Day(), p.DefaultHour, p.DefaultMinute, 0, 0, loc)
			return t.Format(datetime.TimestampLayout), t, nil
		}
	}

	return "", time.Time{}, fmt.Errorf("unrecognized start %q", value)
}

// ID is the deterministic event identifier: venue, slugged title and start epoch millis.
func ID(venueID, title string, start time.Time) string {
	return fmt.Sprintf("%s-%s-%d", venueID, Slug(title), start.UnixMilli())
}

// Slug lowercases s, collapses non-alphanumeric runs into single hyphens and
// caps the result at 80 characters without leading or trailing hyphens.
func Slug(s string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

func tagSet(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
