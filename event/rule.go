package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
)

// ErrInvalidRule is returned when a recurrence rule cannot be expanded
// safely (unknown kind, non-positive interval, contradictory
// termination fields).
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Kind is the recurrence frequency of a rule.
type Kind string

const (
	KindNone    Kind = "none"
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
)

// DayPolicy disambiguates monthly/yearly stepping when the current
// day-of-month does not exist in the target month.
type DayPolicy string

const (
	// SpecificDay keeps the current occurrence's day-of-month, clamped
	// to the target month's last day when it would not exist.
	SpecificDay DayPolicy = "specificDay"
	// LastDayOfMonth always snaps to the target month's last day.
	LastDayOfMonth DayPolicy = "lastDayOfMonth"
)

// Rule is the recurrence policy of a stored event. At most one of
// Until, Count and Unbounded is meaningful; when Kind is KindNone every
// other field is ignored.
type Rule struct {
	Kind      Kind      `json:"type"`
	Interval  int       `json:"interval"`
	DayPolicy DayPolicy `json:"intervalOption,omitempty"`

	// Until is an explicit last eligible date (inclusive).
	Until mo.Option[time.Time] `json:"endDate"`
	// Count limits the total number of occurrences, the first one
	// included.
	Count mo.Option[int] `json:"count"`
	// Unbounded marks a rule with no explicit terminus; expansion caps
	// it at a configured horizon date.
	Unbounded bool `json:"infinite,omitempty"`
}

// Recurring reports whether the rule generates more than the event's
// own date.
func (r Rule) Recurring() bool {
	return r.Kind != KindNone && r.Kind != ""
}

// EffectivePolicy resolves the zero value to SpecificDay.
func (r Rule) EffectivePolicy() DayPolicy {
	if r.DayPolicy == "" {
		return SpecificDay
	}
	return r.DayPolicy
}

// Validate checks that the rule can be expanded without looping
// forever. A zero or negative interval on a recurring rule is rejected
// rather than coerced to 1.
func (r Rule) Validate() error {
	if !r.Recurring() {
		if r.Kind != KindNone && r.Kind != "" {
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
		}
		return nil
	}

	switch r.Kind {
	case KindDaily, KindWeekly, KindMonthly, KindYearly:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}

	if r.Interval < 1 {
		return fmt.Errorf("%w: interval %d, must be >= 1", ErrInvalidRule, r.Interval)
	}

	switch r.DayPolicy {
	case "", SpecificDay, LastDayOfMonth:
	default:
		return fmt.Errorf("%w: unknown day policy %q", ErrInvalidRule, r.DayPolicy)
	}

	if count, ok := r.Count.Get(); ok && count < 1 {
		return fmt.Errorf("%w: count %d, must be >= 1", ErrInvalidRule, count)
	}

	boundsSet := 0
	if r.Until.IsPresent() {
		boundsSet++
	}
	if r.Count.IsPresent() {
		boundsSet++
	}
	if r.Unbounded {
		boundsSet++
	}
	if boundsSet > 1 {
		return fmt.Errorf("%w: endDate, count and infinite are mutually exclusive", ErrInvalidRule)
	}

	return nil
}
