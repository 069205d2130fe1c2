package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ShowtimesFeed/internal/datetime"
	"ShowtimesFeed/internal/domain"
)

const (
	defaultTimezone = "America/Los_Angeles"
	defaultLocation = "Portland, OR"
	defaultNotes    = "Scraped data. Some venues may require manual cleanup."
	defaultOutput   = "data/events.json"

	configPathEnv = "SHOWTIMES_CONFIG"
	outputPathEnv = "SHOWTIMES_OUTPUT"
	timezoneEnv   = "SHOWTIMES_TIMEZONE"
	logLevelEnv   = "SHOWTIMES_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Timezone string         `yaml:"timezone"`
	Notes    string         `yaml:"notes"`
	Output   OutputConfig   `yaml:"output"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Policy   PolicyConfig   `yaml:"policy"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Venues   []VenueConfig  `yaml:"venues"`
	location *time.Location `yaml:"-"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig points at the feed document.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// FetchConfig sets the request identity and how many venues are fetched at once.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"userAgent"`
	Accept         string        `yaml:"accept"`
	AcceptLanguage string        `yaml:"acceptLanguage"`
	Concurrency    int           `yaml:"concurrency"`
}

// PolicyConfig overrides the date heuristics; unset fields keep their defaults.
type PolicyConfig struct {
	YearRolloverDays *int `yaml:"yearRolloverDays"`
	DefaultHour      *int `yaml:"defaultHour"`
	DefaultMinute    *int `yaml:"defaultMinute"`
}

// MetricsConfig enables the Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// VenueConfig describes a single venue with its parser strategy.
type VenueConfig struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	URL      string            `yaml:"url"`
	Source   string            `yaml:"source"`
	Location string            `yaml:"location"`
	Parser   string            `yaml:"parser"`
	Options  map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to SHOWTIMES_CONFIG.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Venues) == 0 {
		cfg.Venues = defaultConfig().Venues
	}

	return cfg
}

// Location resolves the configured timezone to a time.Location.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// HeuristicsPolicy is the date policy with any configured overrides applied.
func (c Config) HeuristicsPolicy() datetime.Policy {
	p := datetime.DefaultPolicy()
	if v := c.Policy.YearRolloverDays; v != nil && *v >= 0 {
		p.YearRolloverDays = *v
	}
	if v := c.Policy.DefaultHour; v != nil && *v >= 0 && *v < 24 {
		p.DefaultHour = *v
	}
	if v := c.Policy.DefaultMinute; v != nil && *v >= 0 && *v < 60 {
		p.DefaultMinute = *v
	}
	return p
}

// Registry returns the venues as source descriptors, in configuration order.
// Entries without an id or source URL are skipped.
func (c Config) Registry() []domain.SourceDescriptor {
	out := make([]domain.SourceDescriptor, 0, len(c.Venues))
	for _, v := range c.Venues {
		if v.ID == "" || v.Source == "" {
			log.Printf("config: skipping venue %q without id or source", v.Name)
			continue
		}
		location := v.Location
		if location == "" {
			location = defaultLocation
		}
		homepage := v.URL
		if homepage == "" {
			homepage = v.Source
		}
		out = append(out, domain.SourceDescriptor{
			ID:          v.ID,
			DisplayName: v.Name,
			HomepageURL: homepage,
			SourceURL:   v.Source,
			Location:    location,
			Parser:      v.Parser,
			Options:     v.Options,
		})
	}
	return out
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(outputPathEnv); v != "" {
		c.Output.Path = v
	}

	if v := os.Getenv(timezoneEnv); v != "" {
		c.Timezone = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		tz = defaultTimezone
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Timezone = tz
	c.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Timezone != "" {
		base.Timezone = override.Timezone
	}
	if override.Notes != "" {
		base.Notes = override.Notes
	}

	if override.Output.Path != "" {
		base.Output.Path = override.Output.Path
	}

	if override.Fetch.Timeout > 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.Accept != "" {
		base.Fetch.Accept = override.Fetch.Accept
	}
	if override.Fetch.AcceptLanguage != "" {
		base.Fetch.AcceptLanguage = override.Fetch.AcceptLanguage
	}
	if override.Fetch.Concurrency > 0 {
		base.Fetch.Concurrency = override.Fetch.Concurrency
	}

	if override.Policy.YearRolloverDays != nil {
		base.Policy.YearRolloverDays = override.Policy.YearRolloverDays
	}
	if override.Policy.DefaultHour != nil {
		base.Policy.DefaultHour = override.Policy.DefaultHour
	}
	if override.Policy.DefaultMinute != nil {
		base.Policy.DefaultMinute = override.Policy.DefaultMinute
	}

	if override.Metrics.Textfile != "" {
		base.Metrics.Textfile = override.Metrics.Textfile
	}

	if len(override.Venues) > 0 {
		base.Venues = override.Venues
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Timezone: defaultTimezone,
		Notes:    defaultNotes,
		Output:   OutputConfig{Path: defaultOutput},
		Fetch:    FetchConfig{Timeout: 20 * time.Second, Concurrency: 1},
		Venues: []VenueConfig{
			{
				ID:     "hollywood",
				Name:   "Hollywood Theatre",
				URL:    "https://hollywoodtheatre.org",
				Source: "https://hollywoodtheatre.org/showtimes/",
				Parser: "listing-text",
			},
			{
				ID:      "cinemagic",
				Name:    "The Cinemagic Theater",
				URL:     "https://www.thecinemagictheater.com/",
				Source:  "https://www.thecinemagictheater.com/",
				Parser:  "heading-blocks",
				Options: map[string]string{"default_title": "Cinemagic Screening"},
			},
			{
				ID:     "clinton",
				Name:   "Clinton Street Theater",
				URL:    "https://cstpdx.com/",
				Source: "https://cstpdx.com/",
				Parser: "event-list",
			},
			{
				ID:      "pamcut",
				Name:    "PAM CUT @ Portland Art Museum (Whitsell Auditorium)",
				URL:     "https://portlandartmuseum.org/whitsell/",
				Source:  "https://portlandartmuseum.org/pam-cut/",
				Parser:  "structured-first",
				Options: map[string]string{"tags": "curated"},
			},
			{
				ID:      "tomorrow",
				Name:    "Tomorrow Theater",
				URL:     "https://tomorrowtheater.org/",
				Source:  "https://tomorrowtheater.org/",
				Parser:  "structured-first",
				Options: map[string]string{"fallback_selector": ""},
			},
			{
				ID:     "cinema21",
				Name:   "Cinema 21",
				URL:    "https://www.pickcinema.com/theater/portland/cinema-21-theatre/",
				Source: "https://www.pickcinema.com/theater/portland/cinema-21-theatre/",
				Parser: "same-day",
			},
		},
	}
}
