package schedule

import (
	"math"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"duedate/internal/util"
)

// ParseSubmit parses a free-form timestamp in loc (time.Local when nil).
func ParseSubmit(s string, loc *time.Location) (time.Time, error) {
	s = util.NormalizeWhitespace(s)
	if s == "" {
		return time.Time{}, submitError(s, "missing timestamp")
	}
	if loc == nil {
		loc = time.Local
	}
	if onlyDigits(s) && !dateDigitLens[len(s)] {
		return time.Time{}, submitError(s, "bare number is not a date")
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, submitError(s, "invalid date: "+err.Error())
	}
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, submitError(s, "no calendar date")
	}
	return t, nil
}

// dateDigitLens are the all-digit forms accepted as dates: yyyymmdd,
// yyyymmddhhmm and yyyymmddhhmmss. Other lengths read as a bare year or a unix
// timestamp.
var dateDigitLens = map[int]bool{8: true, 12: true, 14: true}

func onlyDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseTurnaround parses a whole, positive number of hours. "8" and "8.0" are
// accepted; "0", "-1", "1.4" and non-numbers are rejected.
func ParseTurnaround(s string) (int, error) {
	s = util.NormalizeWhitespace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, turnaroundError(s, "not a number")
	}
	if f <= 0 {
		return 0, turnaroundError(s, "must be positive")
	}
	if f != math.Trunc(f) {
		return 0, turnaroundError(s, "must be a whole number of hours")
	}
	if f > MaxTurnaround {
		return 0, turnaroundError(s, "exceeds "+strconv.Itoa(MaxTurnaround)+" hours")
	}
	return int(f), nil
}
