// Package query orchestrates a calendar view request: it filters
// stored events by a free-text search term, resolves the requested
// view to a concrete date window, and expands every surviving event
// into its occurrences inside that window.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/dohyun-ko/recal/calendar"
	"github.com/dohyun-ko/recal/event"
	"github.com/dohyun-ko/recal/recurrence"
)

// ErrUnsupportedView is returned for a view value the engine does not
// know. Unknown views are never silently defaulted.
var ErrUnsupportedView = errors.New("unsupported view")

// View selects the window shape a query resolves against.
type View string

const (
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// Engine answers view queries over an event snapshot.
type Engine struct {
	expander *recurrence.Engine
}

// NewEngine creates a query engine on top of the given recurrence
// engine. A nil expander gets a default one.
func NewEngine(expander *recurrence.Engine) *Engine {
	if expander == nil {
		expander = recurrence.NewEngine()
	}
	return &Engine{expander: expander}
}

// Window resolves the view's date window around referenceDate.
func Window(view View, referenceDate time.Time) (start, end time.Time, err error) {
	switch view {
	case ViewWeek:
		start, end = calendar.WeekWindow(referenceDate)
	case ViewMonth:
		start, end = calendar.MonthWindow(referenceDate)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedView, view)
	}
	return start, end, nil
}

// Query filters events by searchTerm, resolves the view window around
// referenceDate and expands every match. An empty term retains all
// events; matching is a Unicode case-folded substring test over title,
// description and location. Result order is stable: source event
// order, then occurrence date within each event's expansion. Callers
// wanting a globally date-sorted list use SortByDate.
func (e *Engine) Query(
	events []event.Event,
	searchTerm string,
	view View,
	referenceDate time.Time,
) ([]event.Occurrence, error) {
	windowStart, windowEnd, err := Window(view, referenceDate)
	if err != nil {
		return nil, err
	}

	// Casers are stateful, so build one per call rather than sharing
	folder := cases.Fold()

	occurrences := make([]event.Occurrence, 0)
	for _, ev := range events {
		if !matches(folder, ev, searchTerm) {
			continue
		}
		expanded, err := e.expander.Expand(ev, windowStart, windowEnd)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		occurrences = append(occurrences, expanded...)
	}
	return occurrences, nil
}

func matches(folder cases.Caser, ev event.Event, term string) bool {
	if term == "" {
		return true
	}
	folded := folder.String(term)
	return strings.Contains(folder.String(ev.Title), folded) ||
		strings.Contains(folder.String(ev.Description), folded) ||
		strings.Contains(folder.String(ev.Location), folded)
}

// SortByDate orders occurrences by date, breaking ties by id so the
// order is deterministic. It sorts in place.
func SortByDate(occurrences []event.Occurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		if occurrences[i].Date.Equal(occurrences[j].Date) {
			return occurrences[i].ID < occurrences[j].ID
		}
		return occurrences[i].Date.Before(occurrences[j].Date)
	})
}
