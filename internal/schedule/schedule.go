package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWorkHours is returned for a window outside 0 <= Start < End <= 24.
var ErrInvalidWorkHours = errors.New("invalid work hours")

// WorkHours is the daily working window as the half-open hour interval [Start, End).
type WorkHours struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// DefaultWorkHours is 09:00-17:00.
var DefaultWorkHours = WorkHours{Start: 9, End: 17}

// Validate checks the window bounds.
func (w WorkHours) Validate() error {
	if w.Start < 0 || w.End > 24 || w.Start >= w.End {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidWorkHours, w.Start, w.End)
	}
	return nil
}

// PerDay returns the number of working hours in one working day.
func (w WorkHours) PerDay() int { return w.End - w.Start }

func (w WorkHours) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.Start, w.End)
}

// IsWorkDay reports whether t falls on Monday through Friday.
func IsWorkDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsWorkHour reports whether the hour of t is inside the window.
func (w WorkHours) IsWorkHour(t time.Time) bool {
	h := t.Hour()
	return h >= w.Start && h < w.End
}

// IsWorkTime reports whether t is both a work day and a work hour.
func (w WorkHours) IsWorkTime(t time.Time) bool {
	return IsWorkDay(t) && w.IsWorkHour(t)
}

// NextWorkStart returns t unchanged when it already is working time. Otherwise it
// steps forward an hour at a time until it reaches working time and drops the
// minutes, seconds and nanoseconds, so the result sits on an hour boundary.
func (w WorkHours) NextWorkStart(t time.Time) time.Time {
	if w.IsWorkTime(t) {
		return t
	}
	cand := t
	for !w.IsWorkTime(cand) {
		cand = cand.Add(time.Hour)
	}
	return time.Date(cand.Year(), cand.Month(), cand.Day(), cand.Hour(), 0, 0, 0, cand.Location())
}
