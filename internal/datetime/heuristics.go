package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ShowtimesFeed/internal/clock"
)

// TimestampLayout is ISO-8601 with a numeric offset (never "Z").
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// Policy holds the tunable constants behind the heuristics.
type Policy struct {
	// YearRolloverDays: a date further than this in the past belongs to next year.
	YearRolloverDays int
	// DefaultHour and DefaultMinute are used when a page publishes no time of day.
	DefaultHour   int
	DefaultMinute int
}

// DefaultPolicy returns the calibrated defaults: 90 days, 7:00 PM.
func DefaultPolicy() Policy {
	return Policy{YearRolloverDays: 90, DefaultHour: 19, DefaultMinute: 0}
}

// DateFragment is a month/day pair without a year.
type DateFragment struct {
	Month int
	Day   int
}

// TimeFragment is a 24-hour time of day.
type TimeFragment struct {
	Hour   int
	Minute int
}

var (
	dateExpr = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[.,]?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	timeExpr = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\b\.?`)
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ExtractDate returns the first month/day mention in text.
// Callers scan line by line when a block may hold several dates.
func ExtractDate(text string) (DateFragment, bool) {
	m := dateExpr.FindStringSubmatch(text)
	if m == nil {
		return DateFragment{}, false
	}
	month := months[strings.ToLower(m[1])]
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return DateFragment{}, false
	}
	return DateFragment{Month: month, Day: day}, true
}

// ExtractTimes returns every "h[:mm]am|pm" mention in text order.
func ExtractTimes(text string) []TimeFragment {
	var out []TimeFragment
	for _, m := range timeExpr.FindAllStringSubmatch(text, -1) {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour < 1 || hour > 12 {
			continue
		}
		minute := 0
		if m[2] != "" {
			if minute, err = strconv.Atoi(m[2]); err != nil || minute > 59 {
				continue
			}
		}
		pm := strings.EqualFold(m[3], "p")
		switch {
		case pm && hour < 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
		out = append(out, TimeFragment{Hour: hour, Minute: minute})
	}
	return out
}

// Heuristics binds the policy to a venue timezone and a clock.
type Heuristics struct {
	policy Policy
	loc    *time.Location
	clock  clock.Clock
}

// New builds heuristics; a nil location means time.Local, a nil clock the system clock.
func New(policy Policy, loc *time.Location, c clock.Clock) *Heuristics {
	if loc == nil {
		loc = time.Local
	}
	if c == nil {
		c = clock.NewSystem()
	}
	return &Heuristics{policy: policy, loc: loc, clock: c}
}

// Policy returns the active policy.
func (h *Heuristics) Policy() Policy { return h.policy }

// Location returns the venue timezone.
func (h *Heuristics) Location() *time.Location { return h.loc }

// Now returns the current instant in the venue timezone.
func (h *Heuristics) Now() time.Time { return h.clock.Now().In(h.loc) }

// ResolveYear picks the year for a month/day seen on a schedule page.
// Schedules list near-future showings, so a date more than YearRolloverDays
// before ref is taken to be next year's. Comparison is by civil date.
func (h *Heuristics) ResolveYear(month, day int, ref time.Time) int {
	ref = ref.In(h.loc)
	year := ref.Year()
	candidate := civilDate(year, month, day)
	today := civilDate(year, int(ref.Month()), ref.Day())
	limit := time.Duration(h.policy.YearRolloverDays) * 24 * time.Hour
	if today.Sub(candidate) > limit {
		return year + 1
	}
	return year
}

// ResolveDate is ResolveYear against the clock plus the fragment itself.
func (h *Heuristics) ResolveDate(d DateFragment) (year, month, day int) {
	return h.ResolveYear(d.Month, d.Day, h.Now()), d.Month, d.Day
}

// BuildTimestamp renders a civil date and time in the venue timezone with its
// offset at that instant, so daylight saving transitions are honored.
func (h *Heuristics) BuildTimestamp(year, month, day, hour, minute int) string {
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, h.loc).Format(TimestampLayout)
}

// DefaultTimestamp renders the date at the policy's default time of day.
// Callers tag such events as time-unknown.
func (h *Heuristics) DefaultTimestamp(year, month, day int) string {
	return h.BuildTimestamp(year, month, day, h.policy.DefaultHour, h.policy.DefaultMinute)
}

// Today returns the current civil date in the venue timezone.
func (h *Heuristics) Today() (year, month, day int) {
	now := h.Now()
	return now.Year(), int(now.Month()), now.Day()
}

func civilDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
