// Command example builds a small event set, runs week and month
// queries against it, and prints the expanded occurrences plus an ICS
// export of the source events.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/mo"

	"github.com/dohyun-ko/recal/event"
	"github.com/dohyun-ko/recal/ical"
	"github.com/dohyun-ko/recal/query"
	"github.com/dohyun-ko/recal/recurrence"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	engine := recurrence.NewEngine()
	engine.SetLogger(logger)
	defer engine.Close()

	q := query.NewEngine(engine)

	events := sampleEvents()
	reference := time.Date(2024, time.October, 15, 0, 0, 0, 0, time.UTC)

	for _, view := range []query.View{query.ViewWeek, query.ViewMonth} {
		occurrences, err := q.Query(events, "", view, reference)
		if err != nil {
			logger.Error("query failed", "view", view, "error", err)
			os.Exit(1)
		}

		query.SortByDate(occurrences)
		fmt.Printf("--- %s view around %s (%d occurrences)\n",
			view, reference.Format("2006-01-02"), len(occurrences))
		for _, occ := range occurrences {
			fmt.Printf("%s  %s-%s  %s\n",
				occ.Date.Format("2006-01-02"), occ.StartTime, occ.EndTime, occ.Title)
		}
	}

	ics, err := ical.EncodeToString(events)
	if err != nil {
		logger.Error("ics export failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("--- ICS export")
	fmt.Print(ics)
}

func sampleEvents() []event.Event {
	return []event.Event{
		{
			ID:        "standup",
			Title:     "Daily standup",
			Location:  "Meeting room A",
			Category:  "work",
			Date:      time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
			StartTime: "09:30",
			EndTime:   "09:45",
			Repeat:    event.Rule{Kind: event.KindDaily, Interval: 1, Unbounded: true},
		},
		{
			ID:        "payday",
			Title:     "Payroll close",
			Category:  "finance",
			Date:      time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			StartTime: "17:00",
			EndTime:   "18:00",
			Repeat: event.Rule{
				Kind:      event.KindMonthly,
				Interval:  1,
				DayPolicy: event.LastDayOfMonth,
				Unbounded: true,
			},
		},
		{
			ID:        "retro",
			Title:     "Sprint retro",
			Location:  "Meeting room B",
			Category:  "work",
			Date:      time.Date(2024, time.October, 4, 0, 0, 0, 0, time.UTC),
			StartTime: "15:00",
			EndTime:   "16:00",
			Repeat: event.Rule{
				Kind:     event.KindWeekly,
				Interval: 2,
				Count:    mo.Some(6),
			},
		},
		{
			ID:        "dentist",
			Title:     "Dentist appointment",
			Date:      time.Date(2024, time.October, 17, 0, 0, 0, 0, time.UTC),
			StartTime: "11:00",
			EndTime:   "11:30",
			Repeat:    event.Rule{Kind: event.KindNone},
		},
	}
}
