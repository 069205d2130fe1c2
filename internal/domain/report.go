package domain

import (
	"fmt"
	"strings"
	"time"
)

// RunReport accumulates run metadata while venues are processed.
type RunReport struct {
	RunID          string
	GeneratedAt    time.Time
	Timezone       string
	Warnings       []string
	PerVenueCounts map[string]int
}

// Warn records a venue-scoped failure as "{venueId}: {cause}".
func (r *RunReport) Warn(venueID string, cause error) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %v", venueID, cause))
}

// Summary renders counts as "id:count" pairs in the given venue order,
// skipping venues that produced nothing.
func (r *RunReport) Summary(order []string) string {
	parts := make([]string, 0, len(order))
	for _, id := range order {
		if n := r.PerVenueCounts[id]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", id, n))
		}
	}
	return strings.Join(parts, ", ")
}

// Meta is the run header of the output document.
type Meta struct {
	GeneratedAt string   `json:"generatedAt"`
	Timezone    string   `json:"timezone"`
	Notes       string   `json:"notes"`
	Warnings    []string `json:"warnings"`
	Summary     string   `json:"summary"`
}

// OutputDocument is the single artifact a run produces.
type OutputDocument struct {
	Meta   Meta    `json:"meta"`
	Venues []Venue `json:"venues"`
	Events []Event `json:"events"`
}
