package recurrence

import (
	"time"
)

// DefaultUnboundedHorizon is the sentinel last date for rules marked
// unbounded. "Infinite" recurrence is deliberately capped at an
// explicit calendar date so expansion always terminates; callers with
// longer-lived data set their own horizon in Config.
var DefaultUnboundedHorizon = time.Date(2049, time.December, 31, 0, 0, 0, 0, time.UTC)

// Config holds configuration options for the recurrence engine.
type Config struct {
	// UnboundedHorizon is the last date an unbounded rule may produce
	// an occurrence on.
	UnboundedHorizon time.Time

	// MaxOccurrencesPerEvent is a safety cap on how many dates a single
	// event may generate in one expansion.
	MaxOccurrencesPerEvent int

	// Cache configuration
	CacheEnabled bool
	CacheConfig  CacheConfig
}

// DefaultConfig provides sensible defaults for production use.
var DefaultConfig = Config{
	UnboundedHorizon:       DefaultUnboundedHorizon,
	MaxOccurrencesPerEvent: 5000,
	CacheEnabled:           true,
	CacheConfig:            DefaultCacheConfig,
}

// UncachedConfig turns off result caching entirely; every expansion is
// recomputed from the inputs.
var UncachedConfig = Config{
	UnboundedHorizon:       DefaultUnboundedHorizon,
	MaxOccurrencesPerEvent: 5000,
	CacheEnabled:           false,
}

func (c Config) withDefaults() Config {
	if c.UnboundedHorizon.IsZero() {
		c.UnboundedHorizon = DefaultUnboundedHorizon
	}
	if c.MaxOccurrencesPerEvent <= 0 {
		c.MaxOccurrencesPerEvent = DefaultConfig.MaxOccurrencesPerEvent
	}
	return c
}
