package feed

import (
	"time"

	"github.com/goodsign/monday"

	"github.com/umputun/homefeed/pkg/domain"
)

// layouts of event ranges
const (
	layoutWeekday   = "Monday, 2 January"
	layoutDay       = "2"
	layoutDayMonth  = "2 January"
	layoutDate      = "2 January 2006"
	layoutClock     = "3:04"
	layoutClockAmPm = "3:04 pm"
	layoutDateClock = "2 January 2006, 3:04 pm"
)

// eventTime parses event start or end in the feed location. Date-only values are local midnight.
func (e *Engine) eventTime(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(time.DateOnly, s, e.loc); err == nil {
		return t, true
	}
	t, ok := parseTimeString(s, e.loc)
	if !ok {
		return time.Time{}, false
	}
	return t.In(e.loc), true
}

// eventRange makes localized human text of event time range.
// Ends of all-day events are exclusive, so they are moved into the last day of the event.
func (e *Engine) eventRange(ev *domain.CalendarEvent) string {
	start, okStart := e.eventTime(ev.StartTime)
	end, okEnd := e.eventTime(ev.EndTime)
	if !okStart || !okEnd {
		return ev.StartTime + " - " + ev.EndTime
	}

	if ev.AllDay {
		end = e.startOfDay(end).Add(-time.Hour)
		switch {
		case sameDay(start, end):
			return e.localized(start, layoutWeekday)
		case start.Year() == end.Year() && start.Month() == end.Month():
			return e.localized(start, layoutDay) + " - " + e.localized(end, layoutDate)
		case start.Year() == end.Year():
			return e.localized(start, layoutDayMonth) + " - " + e.localized(end, layoutDate)
		default:
			return e.localized(start, layoutDate) + " - " + e.localized(end, layoutDate)
		}
	}

	if !sameDay(start, end) {
		return e.localized(start, layoutDateClock) + " - " + e.localized(end, layoutDateClock)
	}
	startClock := layoutClockAmPm
	if start.Format("pm") == end.Format("pm") {
		startClock = layoutClock // meridiem shown once
	}
	return e.localized(start, layoutWeekday) + "  ⋅ " + e.localized(start, startClock) + " - " + e.localized(end, layoutClockAmPm)
}

func (e *Engine) localized(t time.Time, layout string) string {
	return monday.Format(t, layout, e.locale)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
