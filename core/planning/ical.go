package planning

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

// BuildICS serializes events as an iCalendar feed so students and guardians
// can subscribe to a generated planning from their own calendar apps.
func BuildICS(appName string, events []Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//" + appName + "//Planning//EN")

	now := time.Now().UTC()
	for _, ev := range events {
		ce := cal.AddEvent(ev.ID)
		ce.SetDtStampTime(now)
		ce.SetCreatedTime(ev.CreatedAt)
		ce.SetStartAt(ev.StartAt)
		ce.SetEndAt(ev.EndAt)
		ce.SetSummary(ev.Title)
		if ev.Description != "" {
			ce.SetDescription(ev.Description)
		}
	}
	return cal.Serialize()
}
