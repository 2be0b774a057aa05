// Package event defines the stored-event data model shared by the
// recurrence engine and the query layer: events as the persistence
// layer hands them over, recurrence rules, and the derived occurrences
// a view consumes.
package event

import (
	"time"
)

// Event is one stored calendar event as supplied by the surrounding
// persistence layer. The engine treats it as an immutable snapshot;
// Date carries the calendar day only, StartTime and EndTime are
// "15:04" wall-clock values for display.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`

	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`

	Repeat Rule `json:"repeat"`

	// NotifyMinutes is the lead time of the reminder the surrounding
	// application schedules. Carried through untouched.
	NotifyMinutes int `json:"notificationTime"`

	// OriginalEventID links an event that was split off from a
	// recurring series back to its master.
	OriginalEventID string `json:"originalEventId,omitempty"`

	// ExcludeDates lists occurrence dates removed from the series.
	ExcludeDates []time.Time `json:"excludeDates,omitempty"`
}

// Excluded reports whether the given calendar day is listed in the
// event's exclude dates.
func (e Event) Excluded(date time.Time) bool {
	for _, ex := range e.ExcludeDates {
		if sameDay(ex, date) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Occurrence is one concrete date-stamped instance derived from a
// stored event. Occurrences are rebuilt on every query and never
// persisted; ID is a view key only.
type Occurrence struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`

	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`

	NotifyMinutes int `json:"notificationTime"`

	SourceEventID string `json:"sourceEventId"`
	Recurring     bool   `json:"isRecurring"`
}

// OccurrenceID derives the stable identifier of an occurrence from its
// source event id and concrete date. It is a pure function so repeated
// expansions of the same data produce identical keys.
func OccurrenceID(sourceID string, date time.Time) string {
	return sourceID + "-" + date.Format("2006-01-02")
}

// OccurrenceOn materializes the event's occurrence on the given date.
// A non-recurring event keeps its own id; recurring occurrences get a
// derived per-date id.
func (e Event) OccurrenceOn(date time.Time) Occurrence {
	id := e.ID
	if e.Repeat.Recurring() {
		id = OccurrenceID(e.ID, date)
	}
	return Occurrence{
		ID:            id,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		Category:      e.Category,
		Date:          date,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		NotifyMinutes: e.NotifyMinutes,
		SourceEventID: e.ID,
		Recurring:     e.Repeat.Recurring(),
	}
}
