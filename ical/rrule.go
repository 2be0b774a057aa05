package ical

import (
	"errors"
	"fmt"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/dohyun-ko/recal/event"
)

// ErrUnsupportedRule is returned when an RRULE uses parts outside the
// subset this engine models (FREQ daily/weekly/monthly/yearly,
// INTERVAL, UNTIL, COUNT, BYMONTHDAY=-1). Unsupported parts are an
// error, never a silent drop.
var ErrUnsupportedRule = errors.New("unsupported recurrence rule")

var kindToFreq = map[event.Kind]rrule.Frequency{
	event.KindDaily:   rrule.DAILY,
	event.KindWeekly:  rrule.WEEKLY,
	event.KindMonthly: rrule.MONTHLY,
	event.KindYearly:  rrule.YEARLY,
}

var freqToKind = map[rrule.Frequency]event.Kind{
	rrule.DAILY:   event.KindDaily,
	rrule.WEEKLY:  event.KindWeekly,
	rrule.MONTHLY: event.KindMonthly,
	rrule.YEARLY:  event.KindYearly,
}

// EncodeRule serializes a recurring rule to an RRULE value string.
func EncodeRule(r event.Rule) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	if !r.Recurring() {
		return "", fmt.Errorf("%w: rule is not recurring", event.ErrInvalidRule)
	}

	opt := rrule.ROption{Freq: kindToFreq[r.Kind]}
	if r.Interval > 1 {
		opt.Interval = r.Interval
	}
	if until, ok := r.Until.Get(); ok {
		opt.Until = until.UTC()
	}
	if count, ok := r.Count.Get(); ok {
		opt.Count = count
	}
	if r.EffectivePolicy() == event.LastDayOfMonth {
		opt.Bymonthday = []int{-1}
	}
	return opt.String(), nil
}

// DecodeRule parses an RRULE value string into the engine's rule
// model.
func DecodeRule(value string) (event.Rule, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return event.Rule{}, fmt.Errorf("parse RRULE %q: %w", value, err)
	}

	kind, ok := freqToKind[opt.Freq]
	if !ok {
		return event.Rule{}, fmt.Errorf("%w: FREQ=%v", ErrUnsupportedRule, opt.Freq)
	}

	r := event.Rule{Kind: kind, Interval: opt.Interval}
	if r.Interval == 0 {
		r.Interval = 1
	}

	switch {
	case len(opt.Bymonthday) == 0:
	case len(opt.Bymonthday) == 1 && opt.Bymonthday[0] == -1:
		r.DayPolicy = event.LastDayOfMonth
	default:
		return event.Rule{}, fmt.Errorf("%w: BYMONTHDAY=%v", ErrUnsupportedRule, opt.Bymonthday)
	}

	switch {
	case len(opt.Bysetpos) > 0, len(opt.Bymonth) > 0, len(opt.Byyearday) > 0,
		len(opt.Byweekno) > 0, len(opt.Byweekday) > 0, len(opt.Byhour) > 0,
		len(opt.Byminute) > 0, len(opt.Bysecond) > 0, len(opt.Byeaster) > 0:
		return event.Rule{}, fmt.Errorf("%w: BY* parts other than BYMONTHDAY=-1", ErrUnsupportedRule)
	}

	if !opt.Until.IsZero() {
		r.Until = mo.Some(opt.Until)
	}
	if opt.Count > 0 {
		r.Count = mo.Some(opt.Count)
	}
	if !r.Until.IsPresent() && !r.Count.IsPresent() {
		r.Unbounded = true
	}

	if err := r.Validate(); err != nil {
		return event.Rule{}, err
	}
	return r, nil
}
