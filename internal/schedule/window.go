package schedule

import "time"

const DateLayout = "2006-01-02"

// Clock abstracts wall-clock access so the window can be computed against
// a fixed instant in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct {
	Location *time.Location
}

func (c RealClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// Window is the pair of calendar dates open for booking: tomorrow and the
// day after tomorrow relative to the instant it was computed from.
type Window struct {
	Start string
	End   string
}

// CurrentWindow normalizes now to the start of its calendar day (in now's
// location) and returns (day+1, day+2).
func CurrentWindow(now time.Time) Window {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{
		Start: day.AddDate(0, 0, 1).Format(DateLayout),
		End:   day.AddDate(0, 0, 2).Format(DateLayout),
	}
}

func (w Window) Contains(date string) bool {
	return date == w.Start || date == w.End
}

// Dates returns the window as a slice, oldest first.
func (w Window) Dates() []string {
	return []string{w.Start, w.End}
}
