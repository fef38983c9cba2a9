package schedule

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Layout is the human-readable timestamp format used in output.
const Layout = "2006-01-02 15:04:05"

// MaxTurnaround is ten years of 40-hour weeks.
const MaxTurnaround = 10 * 52 * 40

// DueDate advances submit by turnaround working hours inside wh.
//
// A submit outside working time is first moved to the next work start (see
// NextWorkStart). Each one-hour step that lands in working time then consumes one
// hour of the turnaround; steps landing on weekends or outside the window are
// skipped. The minute and second offset of the normalized submit carries through.
func DueDate(submit time.Time, turnaround int, wh WorkHours) (time.Time, error) {
	if submit.IsZero() {
		return time.Time{}, submitError(submit, "missing timestamp")
	}
	if turnaround < 1 {
		return time.Time{}, turnaroundError(turnaround, "must be a positive whole number of hours")
	}
	if turnaround > MaxTurnaround {
		return time.Time{}, turnaroundError(turnaround, fmt.Sprintf("exceeds %d hours", MaxTurnaround))
	}
	if err := wh.Validate(); err != nil {
		return time.Time{}, err
	}

	due := wh.NextWorkStart(submit)
	for remaining := turnaround; remaining > 0; {
		due = due.Add(time.Hour)
		if wh.IsWorkTime(due) {
			remaining--
		}
	}
	return due, nil
}

// Calculation is one successful DueDate call.
type Calculation struct {
	Submit     time.Time
	Turnaround int
	Due        time.Time
	WorkHours  WorkHours
}

func (c Calculation) String() string {
	return fmt.Sprintf("submitted %s + %dh -> due %s (%s)",
		c.Submit.Format(Layout), c.Turnaround, c.Due.Format(Layout),
		humanize.RelTime(c.Submit, c.Due, "later", "earlier"))
}

// Observer is called after every successful calculation. It only observes.
type Observer func(Calculation)

// Calculator binds DueDate to a working-hours window and optional observers.
// It is immutable after New and safe for concurrent use.
type Calculator struct {
	hours     WorkHours
	observers []Observer
}

type Option func(*Calculator)

// WithWorkHours overrides DefaultWorkHours.
func WithWorkHours(wh WorkHours) Option {
	return func(c *Calculator) { c.hours = wh }
}

// WithObserver registers an observer; nil is ignored.
func WithObserver(o Observer) Option {
	return func(c *Calculator) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// New builds a Calculator, validating the configured window.
func New(opts ...Option) (*Calculator, error) {
	c := &Calculator{hours: DefaultWorkHours}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.hours.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WorkHours returns the configured window.
func (c *Calculator) WorkHours() WorkHours { return c.hours }

// DueDate is DueDate with the calculator's window. Observers see successful
// results only.
func (c *Calculator) DueDate(submit time.Time, turnaround int) (time.Time, error) {
	due, err := DueDate(submit, turnaround, c.hours)
	if err != nil {
		return time.Time{}, err
	}
	calc := Calculation{Submit: submit, Turnaround: turnaround, Due: due, WorkHours: c.hours}
	for _, o := range c.observers {
		o(calc)
	}
	return due, nil
}
