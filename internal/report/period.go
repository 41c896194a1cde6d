package report

import "time"

// Period is the reporting period requested through the periodo parameter.
type Period string

const (
	PeriodToday Period = "hoje"
	PeriodWeek  Period = "semana"
	PeriodMonth Period = "mes"
	PeriodAll   Period = "todos"
)

// ParsePeriod maps a raw periodo value to a Period. Anything unrecognized,
// including the empty string, is PeriodAll.
func ParsePeriod(raw string) Period {
	switch p := Period(raw); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p
	default:
		return PeriodAll
	}
}

// Window is the lower bound a period places on timestamps. The zero Window
// is unbounded.
type Window struct {
	start   time.Time
	bounded bool
}

// ResolveWindow returns the start of period relative to now, using now's
// location for calendar math. Weeks start on Sunday and months on day 1.
func ResolveWindow(period Period, now time.Time) Window {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodToday:
		return Window{start: midnight, bounded: true}
	case PeriodWeek:
		return Window{start: midnight.AddDate(0, 0, -int(now.Weekday())), bounded: true}
	case PeriodMonth:
		return Window{start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), bounded: true}
	default:
		return Window{}
	}
}

// Start returns the lower bound and whether there is one.
func (w Window) Start() (time.Time, bool) {
	return w.start, w.bounded
}

// Since returns the lower bound, or the zero time when unbounded.
func (w Window) Since() time.Time {
	if !w.bounded {
		return time.Time{}
	}
	return w.start
}

// Includes reports whether t is not before the window start.
func (w Window) Includes(t time.Time) bool {
	return !w.bounded || !t.Before(w.start)
}
