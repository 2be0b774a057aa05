// Package recurrence expands stored events into concrete dated
// occurrences. The engine applies one recurrence step at a time
// (Next), reconciles the rule's termination policy against the query
// window (TerminationBound), and produces the ordered occurrence list
// intersecting a window (Expand). All arithmetic is pure; the only
// state an engine may hold is an optional result cache.
package recurrence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dohyun-ko/recal/calendar"
	"github.com/dohyun-ko/recal/event"
)

// Engine performs recurrence expansion. The zero-cost NewEngine is
// safe for concurrent use; a cached engine is too, guarded by the
// cache's own lock.
type Engine struct {
	config Config
	cache  *Cache
	logger *slog.Logger
}

// NewEngine creates an engine with DefaultConfig.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultConfig)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(config Config) *Engine {
	config = config.withDefaults()
	e := &Engine{
		config: config,
		logger: slog.Default(),
	}
	if config.CacheEnabled {
		e.cache = NewCache(config.CacheConfig)
	}
	return e
}

// SetLogger replaces the engine's logger (slog.Default otherwise).
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Close releases the engine's cache, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Next computes the date exactly one recurrence step after current.
// The rule must be recurring and valid.
func (e *Engine) Next(current time.Time, rule event.Rule) (time.Time, error) {
	if err := rule.Validate(); err != nil {
		return time.Time{}, err
	}
	if !rule.Recurring() {
		return time.Time{}, fmt.Errorf("%w: cannot step a non-recurring rule", event.ErrInvalidRule)
	}
	return step(current, rule), nil
}

// step advances current by one recurrence interval. Monthly and yearly
// stepping anchor on the *current* occurrence's day-of-month, so a
// clamp in one step carries into the next (Jan 31 -> Feb 28 -> Mar 28).
func step(current time.Time, rule event.Rule) time.Time {
	switch rule.Kind {
	case event.KindDaily:
		return current.AddDate(0, 0, rule.Interval)
	case event.KindWeekly:
		return current.AddDate(0, 0, 7*rule.Interval)
	case event.KindMonthly:
		year, month := calendar.AddMonths(current.Year(), current.Month(), rule.Interval)
		return onDay(current, year, month, clampDay(current.Day(), year, month, rule))
	case event.KindYearly:
		year, month := current.Year()+rule.Interval, current.Month()
		// no native rollover: Feb 29 clamps to Feb 28, never March
		return onDay(current, year, month, clampDay(current.Day(), year, month, rule))
	default:
		// Validate rejects everything else before we get here
		return current
	}
}

func clampDay(day int, year int, month time.Month, rule event.Rule) int {
	last := calendar.DaysIn(year, month)
	if rule.EffectivePolicy() == event.LastDayOfMonth || day > last {
		return last
	}
	return day
}

func onDay(current time.Time, year int, month time.Month, day int) time.Time {
	hour, min, sec := current.Clock()
	return time.Date(year, month, day, hour, min, sec, current.Nanosecond(), current.Location())
}

// TerminationBound resolves the latest date at which the rule may
// still emit an occurrence. An explicit end date is returned as is; an
// unbounded rule caps at the configured horizon; a count-limited rule
// steps count-1 times with the same arithmetic as Next so the bound
// agrees exactly with iteration; otherwise expansion is bounded by the
// query window itself.
func (e *Engine) TerminationBound(start time.Time, rule event.Rule, windowEnd time.Time) (time.Time, error) {
	if err := rule.Validate(); err != nil {
		return time.Time{}, err
	}
	if !rule.Recurring() {
		return time.Time{}, fmt.Errorf("%w: non-recurring rule has no termination bound", event.ErrInvalidRule)
	}

	if until, ok := rule.Until.Get(); ok {
		return until, nil
	}
	if rule.Unbounded {
		return e.config.UnboundedHorizon, nil
	}
	if count, ok := rule.Count.Get(); ok {
		steps := count - 1
		if steps > e.config.MaxOccurrencesPerEvent {
			steps = e.config.MaxOccurrencesPerEvent
			e.logger.Warn("recurrence: count exceeds per-event cap, bound truncated",
				"count", count, "cap", e.config.MaxOccurrencesPerEvent)
		}
		current := start
		for i := 0; i < steps; i++ {
			current = step(current, rule)
		}
		return current, nil
	}
	return windowEnd, nil
}

// Expand produces the ordered occurrences of ev that fall inside
// [windowStart, windowEnd]. Dates are strictly increasing with no
// duplicates; identical inputs produce identical output, ids included.
func (e *Engine) Expand(ev event.Event, windowStart, windowEnd time.Time) ([]event.Occurrence, error) {
	if err := ev.Repeat.Validate(); err != nil {
		return nil, fmt.Errorf("expand event %q: %w", ev.ID, err)
	}

	occurrences := make([]event.Occurrence, 0)
	if windowEnd.Before(windowStart) {
		return occurrences, nil
	}

	if !ev.Repeat.Recurring() {
		if calendar.InRange(ev.Date, windowStart, windowEnd) {
			occurrences = append(occurrences, ev.OccurrenceOn(ev.Date))
		}
		return occurrences, nil
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(ev, windowStart, windowEnd); ok {
			return cached, nil
		}
	}

	bound, err := e.TerminationBound(ev.Date, ev.Repeat, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("expand event %q: %w", ev.ID, err)
	}
	effectiveEnd := bound
	if windowEnd.Before(effectiveEnd) {
		effectiveEnd = windowEnd
	}

	count, hasCount := ev.Repeat.Count.Get()
	generated := 0
	for current := ev.Date; !current.After(effectiveEnd); current = step(current, ev.Repeat) {
		if !current.Before(windowStart) && !ev.Excluded(current) {
			occurrences = append(occurrences, ev.OccurrenceOn(current))
		}

		// excluded and pre-window dates still count toward the limit;
		// the Nth occurrence is positional in the series
		generated++
		if hasCount && generated >= count {
			break
		}
		if generated >= e.config.MaxOccurrencesPerEvent {
			e.logger.Warn("recurrence: per-event occurrence cap hit, expansion truncated",
				"event", ev.ID, "cap", e.config.MaxOccurrencesPerEvent)
			break
		}
	}

	if e.cache != nil {
		e.cache.Set(ev, windowStart, windowEnd, occurrences)
	}
	return occurrences, nil
}
