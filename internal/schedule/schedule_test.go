package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, h, min, s int) time.Time {
	return time.Date(y, m, d, h, min, s, 0, time.UTC)
}

func TestIsWorkDayBorders(t *testing.T) {
	assert.True(t, IsWorkDay(at(2025, 1, 3, 23, 59, 59)), "friday before weekend")
	assert.True(t, IsWorkDay(at(2025, 1, 6, 0, 0, 0)), "monday after weekend")
	assert.False(t, IsWorkDay(at(2025, 1, 4, 0, 0, 0)), "start of weekend")
	assert.False(t, IsWorkDay(at(2025, 1, 5, 23, 59, 59)), "end of weekend")
}

func TestIsWorkHourBorders(t *testing.T) {
	wh := DefaultWorkHours
	assert.True(t, wh.IsWorkHour(at(2025, 1, 1, 9, 0, 0)))
	assert.True(t, wh.IsWorkHour(at(2025, 1, 1, 16, 59, 59)))
	assert.False(t, wh.IsWorkHour(at(2025, 1, 1, 8, 59, 59)))
	assert.False(t, wh.IsWorkHour(at(2025, 1, 1, 17, 0, 0)))
}

func TestNextWorkStart(t *testing.T) {
	wh := DefaultWorkHours
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"saturday morning", at(2025, 1, 4, 8, 12, 5), at(2025, 1, 6, 9, 0, 0)},
		{"already working keeps offset", at(2025, 1, 1, 11, 45, 30), at(2025, 1, 1, 11, 45, 30)},
		{"before hours", at(2025, 1, 1, 8, 30, 0), at(2025, 1, 1, 9, 0, 0)},
		{"after hours", at(2025, 1, 1, 17, 0, 0), at(2025, 1, 2, 9, 0, 0)},
		{"friday evening", at(2025, 1, 3, 18, 20, 0), at(2025, 1, 6, 9, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, wh.NextWorkStart(tc.in))
		})
	}
}

func TestNextWorkStartDropsNanoseconds(t *testing.T) {
	in := time.Date(2025, 1, 4, 8, 12, 5, 500, time.UTC)
	assert.Equal(t, at(2025, 1, 6, 9, 0, 0), DefaultWorkHours.NextWorkStart(in))
}

func TestDueDate(t *testing.T) {
	cases := []struct {
		name       string
		submit     time.Time
		turnaround int
		want       time.Time
	}{
		{"same day", at(2025, 1, 1, 9, 0, 0), 1, at(2025, 1, 1, 10, 0, 0)},
		{"next day", at(2025, 1, 1, 16, 30, 0), 1, at(2025, 1, 2, 9, 30, 0)},
		{"skip weekend", at(2025, 1, 3, 16, 30, 0), 1, at(2025, 1, 6, 9, 30, 0)},
		{"skip weekend then next day", at(2025, 1, 3, 16, 30, 0), 9, at(2025, 1, 7, 9, 30, 0)},
		{"before work hours", at(2025, 1, 1, 0, 0, 0), 1, at(2025, 1, 1, 10, 0, 0)},
		{"after work hours", at(2025, 1, 1, 17, 0, 0), 1, at(2025, 1, 2, 10, 0, 0)},
		{"saturday submit", at(2025, 1, 4, 13, 15, 0), 2, at(2025, 1, 6, 11, 0, 0)},
		{"last second of day", at(2025, 1, 1, 16, 59, 59), 1, at(2025, 1, 2, 9, 59, 59)},
		{"two full weeks", at(2025, 1, 6, 9, 0, 0), 80, at(2025, 1, 20, 9, 0, 0)},
		{"full day", at(2025, 1, 1, 9, 0, 0), 8, at(2025, 1, 2, 9, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DueDate(tc.submit, tc.turnaround, DefaultWorkHours)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDueDateCustomWorkHours(t *testing.T) {
	got, err := DueDate(at(2025, 1, 1, 15, 30, 0), 1, WorkHours{Start: 8, End: 16})
	require.NoError(t, err)
	assert.Equal(t, at(2025, 1, 2, 8, 30, 0), got)

	got, err = DueDate(at(2025, 1, 3, 23, 30, 0), 1, WorkHours{Start: 0, End: 24})
	require.NoError(t, err)
	assert.Equal(t, at(2025, 1, 6, 0, 30, 0), got)
}

func TestDueDateAlwaysLandsInWorkTime(t *testing.T) {
	wh := DefaultWorkHours
	start := at(2025, 1, 1, 0, 0, 0)
	for step := time.Duration(0); step < 14*24*time.Hour; step += 37 * time.Minute {
		submit := start.Add(step)
		for n := 1; n <= 40; n += 3 {
			due, err := DueDate(submit, n, wh)
			require.NoError(t, err)
			if !wh.IsWorkTime(due) {
				t.Fatalf("due %s for (%s, %d) is outside work time", due, submit, n)
			}
			if !due.After(submit) {
				t.Fatalf("due %s not after submit %s", due, submit)
			}
		}
	}
}

func TestDueDateAccumulates(t *testing.T) {
	wh := DefaultWorkHours
	submit := at(2025, 1, 2, 7, 42, 0)
	for a := 1; a <= 12; a++ {
		for b := 1; b <= 12; b++ {
			first, err := DueDate(submit, a, wh)
			require.NoError(t, err)
			chained, err := DueDate(first, b, wh)
			require.NoError(t, err)
			direct, err := DueDate(submit, a+b, wh)
			require.NoError(t, err)
			require.Equal(t, direct, chained, "a=%d b=%d", a, b)
		}
	}
}

func TestDueDateDeterministic(t *testing.T) {
	submit := at(2025, 1, 3, 16, 30, 0)
	first, err := DueDate(submit, 17, DefaultWorkHours)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := DueDate(submit, 17, DefaultWorkHours)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDueDateRejectsInvalidArguments(t *testing.T) {
	_, err := DueDate(time.Time{}, 1, DefaultWorkHours)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, ParamSubmit, InvalidParam(err))

	for _, n := range []int{0, -3} {
		_, err := DueDate(at(2025, 1, 1, 9, 0, 0), n, DefaultWorkHours)
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, ParamTurnaround, InvalidParam(err))
		assert.Contains(t, err.Error(), "wrong turnaround parameter")
	}

	_, err = DueDate(at(2025, 1, 1, 9, 0, 0), 1, WorkHours{Start: 17, End: 9})
	require.ErrorIs(t, err, ErrInvalidWorkHours)
	assert.Empty(t, InvalidParam(err))
}

func TestWorkHoursValidate(t *testing.T) {
	assert.NoError(t, DefaultWorkHours.Validate())
	assert.NoError(t, WorkHours{Start: 0, End: 24}.Validate())
	for _, wh := range []WorkHours{{-1, 8}, {9, 25}, {9, 9}, {17, 9}} {
		assert.ErrorIs(t, wh.Validate(), ErrInvalidWorkHours, "%v", wh)
	}
	assert.Equal(t, 8, DefaultWorkHours.PerDay())
	assert.Equal(t, "09:00-17:00", DefaultWorkHours.String())
}

func TestArgumentErrorUnwrap(t *testing.T) {
	err := turnaroundError("1.4", "must be a whole number of hours")
	var ae *ArgumentError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "1.4", ae.Value)
	assert.Equal(t, "wrong turnaround parameter: must be a whole number of hours", err.Error())
	assert.Empty(t, InvalidParam(errors.New("other")))
}

func TestDueDateTurnaroundBound(t *testing.T) {
	// 20800 hours is 520 full weeks from a Monday work start.
	due, err := DueDate(at(2025, 1, 6, 9, 0, 0), MaxTurnaround, DefaultWorkHours)
	require.NoError(t, err)
	assert.Equal(t, at(2034, 12, 25, 9, 0, 0), due)

	_, err = DueDate(at(2025, 1, 6, 9, 0, 0), MaxTurnaround+1, DefaultWorkHours)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, ParamTurnaround, InvalidParam(err))
}
