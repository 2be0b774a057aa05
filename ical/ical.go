// Package ical bridges the engine's event model and iCalendar: stored
// events encode to VCALENDAR/VEVENT with RRULE/EXDATE/VALARM mapping,
// and the supported subset decodes back. Occurrence lists additionally
// export as xCal XML for grid renderers.
package ical

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	icalendar "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/dohyun-ko/recal/calendar"
	"github.com/dohyun-ko/recal/event"
)

const prodID = "-//recal//Event Scheduler//KO"

// Encode writes events as a single VCALENDAR document.
func Encode(w io.Writer, events []event.Event) error {
	cal := icalendar.NewCalendar()
	cal.Props.SetText(icalendar.PropVersion, "2.0")
	cal.Props.SetText(icalendar.PropProductID, prodID)

	for _, ev := range events {
		comp, err := encodeEvent(ev)
		if err != nil {
			return fmt.Errorf("encode event %q: %w", ev.ID, err)
		}
		cal.Children = append(cal.Children, comp)
	}

	if err := icalendar.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

// EncodeToString is Encode into a string.
func EncodeToString(events []event.Event) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, events); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeEvent(ev event.Event) (*icalendar.Component, error) {
	ve := icalendar.NewEvent()
	ve.Props.SetText(icalendar.PropUID, ev.ID)
	ve.Props.SetDateTime(icalendar.PropDateTimeStamp, time.Now().UTC())

	start, err := atClock(ev.Date, ev.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	ve.Props.SetDateTime(icalendar.PropDateTimeStart, start)

	end, err := atClock(ev.Date, ev.EndTime)
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}
	ve.Props.SetDateTime(icalendar.PropDateTimeEnd, end)

	ve.Props.SetText(icalendar.PropSummary, ev.Title)
	if ev.Description != "" {
		ve.Props.SetText(icalendar.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		ve.Props.SetText(icalendar.PropLocation, ev.Location)
	}
	if ev.Category != "" {
		ve.Props.SetText(icalendar.PropCategories, ev.Category)
	}
	if ev.OriginalEventID != "" {
		ve.Props.SetText(icalendar.PropRelatedTo, ev.OriginalEventID)
	}

	if ev.Repeat.Recurring() {
		value, err := EncodeRule(ev.Repeat)
		if err != nil {
			return nil, err
		}
		setRaw(ve.Props, icalendar.PropRecurrenceRule, value)
	}

	if len(ev.ExcludeDates) > 0 {
		setRaw(ve.Props, icalendar.PropExceptionDates, encodeExDates(ev.ExcludeDates))
		ve.Props.Get(icalendar.PropExceptionDates).Params = icalendar.Params{"VALUE": []string{"DATE"}}
	}

	if ev.NotifyMinutes > 0 {
		ve.Children = append(ve.Children, encodeAlarm(ev))
	}

	return ve.Component, nil
}

// setRaw sets a property value without text escaping; RECUR and
// date-list values carry semicolons and commas structurally.
func setRaw(props icalendar.Props, name, value string) {
	prop := icalendar.NewProp(name)
	prop.Value = value
	props.Set(prop)
}

func encodeExDates(dates []time.Time) string {
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Format("20060102"))
	}
	return strings.Join(parts, ",")
}

func encodeAlarm(ev event.Event) *icalendar.Component {
	alarm := &icalendar.Component{
		Name:  icalendar.CompAlarm,
		Props: make(icalendar.Props),
	}
	alarm.Props.SetText(icalendar.PropAction, "DISPLAY")
	alarm.Props.SetText(icalendar.PropDescription, ev.Title)
	setRaw(alarm.Props, icalendar.PropTrigger, fmt.Sprintf("-PT%dM", ev.NotifyMinutes))
	return alarm
}

// atClock combines a calendar day with a "15:04" wall-clock value.
// An empty clock means midnight.
func atClock(day time.Time, clock string) (time.Time, error) {
	if clock == "" {
		return calendar.Day(day), nil
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock value %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// Decode reads a VCALENDAR document into stored events. VEVENTs
// without a UID get a generated one; RRULEs outside the supported
// subset fail with ErrUnsupportedRule.
func Decode(r io.Reader) ([]event.Event, error) {
	cal, err := icalendar.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	events := make([]event.Event, 0)
	for _, ve := range cal.Events() {
		ev, err := decodeEvent(ve)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeEvent(ve icalendar.Event) (event.Event, error) {
	var ev event.Event

	ev.ID = textProp(ve.Props, icalendar.PropUID)
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	start, err := ve.Props.DateTime(icalendar.PropDateTimeStart, time.UTC)
	if err != nil {
		return event.Event{}, fmt.Errorf("event %q: DTSTART: %w", ev.ID, err)
	}
	ev.Date = calendar.Day(start)
	if !isMidnight(start) {
		ev.StartTime = start.Format("15:04")
	}

	if end, err := ve.Props.DateTime(icalendar.PropDateTimeEnd, time.UTC); err == nil && !end.IsZero() {
		if !isMidnight(end) {
			ev.EndTime = end.Format("15:04")
		}
	}

	ev.Title = textProp(ve.Props, icalendar.PropSummary)
	ev.Description = textProp(ve.Props, icalendar.PropDescription)
	ev.Location = textProp(ve.Props, icalendar.PropLocation)
	ev.Category = textProp(ve.Props, icalendar.PropCategories)
	ev.OriginalEventID = textProp(ve.Props, icalendar.PropRelatedTo)

	ev.Repeat = event.Rule{Kind: event.KindNone}
	if rruleProp := ve.Props.Get(icalendar.PropRecurrenceRule); rruleProp != nil && rruleProp.Value != "" {
		rule, err := DecodeRule(rruleProp.Value)
		if err != nil {
			return event.Event{}, fmt.Errorf("event %q: %w", ev.ID, err)
		}
		ev.Repeat = rule
	}

	if exProp := ve.Props.Get(icalendar.PropExceptionDates); exProp != nil && exProp.Value != "" {
		ev.ExcludeDates = parseExceptionDates(exProp.Value)
	}

	for _, child := range ve.Children {
		if child.Name != icalendar.CompAlarm {
			continue
		}
		if trigger := child.Props.Get(icalendar.PropTrigger); trigger != nil {
			if d, err := trigger.Duration(); err == nil && d < 0 {
				ev.NotifyMinutes = int(-d / time.Minute)
			}
		}
	}

	return ev, nil
}

func textProp(props icalendar.Props, name string) string {
	value, err := props.Text(name)
	if err != nil {
		return ""
	}
	return value
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

// parseExceptionDates reads an EXDATE value list; both date-only and
// UTC date-time entries collapse to midnight UTC calendar days.
func parseExceptionDates(value string) []time.Time {
	var exdates []time.Time
	for _, raw := range strings.Split(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := time.Parse("20060102T150405Z", raw)
		if err != nil {
			t, err = time.Parse("20060102", raw)
		}
		if err != nil {
			continue
		}
		exdates = append(exdates, time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	}
	return exdates
}
