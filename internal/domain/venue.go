package domain

import (
	"strings"
)

// SourceDescriptor identifies one venue and where its schedule is published.
// Parser names the strategy used to read the fetched page.
type SourceDescriptor struct {
	ID          string
	DisplayName string
	HomepageURL string
	SourceURL   string
	Location    string
	Parser      string
	Options     map[string]string
}

// Option returns a per-venue option and whether it was set at all.
func (s SourceDescriptor) Option(key string) (string, bool) {
	v, ok := s.Options[key]
	return v, ok
}

// OptionOr returns the option value or def when the option is absent.
func (s SourceDescriptor) OptionOr(key, def string) string {
	if v, ok := s.Options[key]; ok {
		return v
	}
	return def
}

// Tags returns the comma-separated "tags" option as a list.
func (s SourceDescriptor) Tags() []string {
	raw, ok := s.Options["tags"]
	if !ok {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Venue is the public view of a descriptor in the output document.
type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Location string `json:"location"`
}

// VenueFrom projects a descriptor onto its output shape.
func VenueFrom(s SourceDescriptor) Venue {
	return Venue{ID: s.ID, Name: s.DisplayName, URL: s.HomepageURL, Location: s.Location}
}
