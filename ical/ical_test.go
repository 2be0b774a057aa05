package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohyun-ko/recal/event"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleEvent() event.Event {
	return event.Event{
		ID:            "ev-42",
		Title:         "팀 회의",
		Description:   "주간 진행 상황 공유",
		Location:      "회의실 A",
		Category:      "업무",
		Date:          date(2024, time.October, 15),
		StartTime:     "14:00",
		EndTime:       "15:00",
		NotifyMinutes: 10,
		Repeat: event.Rule{
			Kind:     event.KindWeekly,
			Interval: 1,
			Count:    mo.Some(8),
		},
		ExcludeDates: []time.Time{date(2024, time.October, 29)},
	}
}

func TestEncode(t *testing.T) {
	ics, err := EncodeToString([]event.Event{sampleEvent()})
	require.NoError(t, err)

	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "BEGIN:VEVENT")
	assert.Contains(t, ics, "UID:ev-42")
	assert.Contains(t, ics, "SUMMARY:팀 회의")
	assert.Contains(t, ics, "LOCATION:회의실 A")
	assert.Contains(t, ics, "DTSTART:20241015T140000Z")
	assert.Contains(t, ics, "DTEND:20241015T150000Z")
	assert.Contains(t, ics, "RRULE:FREQ=WEEKLY;COUNT=8")
	assert.Contains(t, ics, "EXDATE;VALUE=DATE:20241029")
	assert.Contains(t, ics, "BEGIN:VALARM")
	assert.Contains(t, ics, "TRIGGER:-PT10M")
}

func TestEncode_RejectsBadTimes(t *testing.T) {
	ev := sampleEvent()
	ev.StartTime = "25:99"
	_, err := EncodeToString([]event.Event{ev})
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	want := sampleEvent()

	ics, err := EncodeToString([]event.Event{want})
	require.NoError(t, err)

	got, err := Decode(strings.NewReader(ics))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, want.ID, got[0].ID)
	assert.Equal(t, want.Title, got[0].Title)
	assert.Equal(t, want.Description, got[0].Description)
	assert.Equal(t, want.Location, got[0].Location)
	assert.Equal(t, want.Category, got[0].Category)
	assert.Equal(t, want.Date, got[0].Date)
	assert.Equal(t, want.StartTime, got[0].StartTime)
	assert.Equal(t, want.EndTime, got[0].EndTime)
	assert.Equal(t, want.Repeat, got[0].Repeat)
	assert.Equal(t, want.ExcludeDates, got[0].ExcludeDates)
	assert.Equal(t, want.NotifyMinutes, got[0].NotifyMinutes)
}

func TestDecode_GeneratesMissingUID(t *testing.T) {
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:placeholder",
		"DTSTAMP:20241001T000000Z",
		"DTSTART:20241015T090000Z",
		"SUMMARY:외부 일정",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	// strip the UID line to simulate a feed that omits it
	ics = strings.Replace(ics, "UID:placeholder\r\n", "", 1)

	got, err := Decode(strings.NewReader(ics))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID, "generated id fills the missing UID")
	assert.Equal(t, "외부 일정", got[0].Title)
	assert.Equal(t, event.KindNone, got[0].Repeat.Kind)
	assert.Equal(t, date(2024, time.October, 15), got[0].Date)
	assert.Equal(t, "09:00", got[0].StartTime)
}

func TestDecode_UnsupportedRRuleIsAnError(t *testing.T) {
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:x",
		"DTSTAMP:20241001T000000Z",
		"DTSTART:20241015T090000Z",
		"SUMMARY:회의",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	_, err := Decode(strings.NewReader(ics))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedRule)
}

func TestExportXCal(t *testing.T) {
	ev := sampleEvent()
	occurrences := []event.Occurrence{
		ev.OccurrenceOn(date(2024, time.October, 15)),
		ev.OccurrenceOn(date(2024, time.October, 22)),
	}

	out, err := ExportXCal(occurrences)
	require.NoError(t, err)

	xml := string(out)
	assert.Contains(t, xml, `<icalendar xmlns="urn:ietf:params:xml:ns:icalendar-2.0">`)
	assert.Contains(t, xml, "<uid>")
	assert.Contains(t, xml, "ev-42-2024-10-15")
	assert.Contains(t, xml, "ev-42-2024-10-22")
	assert.Contains(t, xml, "<date>2024-10-15</date>")
	assert.Contains(t, xml, "<summary>")
	assert.Contains(t, xml, "팀 회의")
	assert.Contains(t, xml, "<x-source-event-id>")
	assert.Contains(t, xml, "<x-recurring>")
	assert.Equal(t, 2, strings.Count(xml, "<vevent>"))
}

func TestExportXCal_Empty(t *testing.T) {
	out, err := ExportXCal(nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<components/>")
}
