package ical

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/dohyun-ko/recal/event"
)

const xcalNamespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// ExportXCal renders an occurrence list as an xCal (RFC 6321) XML
// document, one vevent per occurrence. Occurrences are flat dated
// instances, so no RRULE appears in the output; the source event id
// and the recurring flag travel as x-properties for the consumer.
func ExportXCal(occurrences []event.Occurrence) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", xcalNamespace)

	vcalendar := root.CreateElement("vcalendar")
	props := vcalendar.CreateElement("properties")
	addTextProp(props, "version", "2.0")
	addTextProp(props, "prodid", prodID)

	components := vcalendar.CreateElement("components")
	for _, occ := range occurrences {
		vevent := components.CreateElement("vevent")
		p := vevent.CreateElement("properties")

		addTextProp(p, "uid", occ.ID)
		p.CreateElement("dtstart").CreateElement("date").SetText(occ.Date.Format("2006-01-02"))
		addTextProp(p, "summary", occ.Title)
		if occ.Description != "" {
			addTextProp(p, "description", occ.Description)
		}
		if occ.Location != "" {
			addTextProp(p, "location", occ.Location)
		}
		if occ.Category != "" {
			addTextProp(p, "categories", occ.Category)
		}
		addTextProp(p, "x-source-event-id", occ.SourceEventID)
		addTextProp(p, "x-recurring", fmt.Sprintf("%t", occ.Recurring))
		if occ.StartTime != "" {
			addTextProp(p, "x-start-time", occ.StartTime)
		}
		if occ.EndTime != "" {
			addTextProp(p, "x-end-time", occ.EndTime)
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("write xCal document: %w", err)
	}
	return out, nil
}

func addTextProp(parent *etree.Element, name, value string) {
	parent.CreateElement(name).CreateElement("text").SetText(value)
}
