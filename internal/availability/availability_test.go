package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loc = DefaultLocation()

func at(day, hour, minute int) time.Time {
	// January 2025: the 13th is a Monday, the 19th a Sunday.
	return time.Date(2025, time.January, day, hour, minute, 0, 0, loc)
}

func clock(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format("15:04")
	}
	return out
}

func TestComputeWeek_ClampedGridScenario(t *testing.T) {
	now := at(15, 10, 15) // Wednesday
	busy := []Interval{{Start: at(15, 11, 0), End: at(15, 12, 0)}}

	week := ComputeWeek(now, busy, 60)

	wed, ok := week.Day(Date{2025, time.January, 15})
	require.True(t, ok)
	require.Equal(t, []string{"12:15", "13:15", "14:15", "15:15", "16:15"}, clock(wed.Slots))

	thu, ok := week.Day(Date{2025, time.January, 16})
	require.True(t, ok)
	require.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}, clock(thu.Slots))
}

func TestCompute_CoversTodayThroughSaturday(t *testing.T) {
	week := ComputeWeek(at(15, 8, 0), nil, 60)

	var dates []string
	for _, d := range week {
		dates = append(dates, d.Date.String())
	}
	require.Equal(t, []string{"2025-01-15", "2025-01-16", "2025-01-17", "2025-01-18"}, dates)
}

func TestCompute_SundayExcluded(t *testing.T) {
	for day := 13; day <= 19; day++ {
		week := ComputeWeek(at(day, 7, 0), nil, 60)
		for _, d := range week {
			assert.NotEqual(t, time.Sunday, d.Date.Weekday(), "now=%d", day)
		}
	}
}

func TestCompute_OnSundayNothingIsOffered(t *testing.T) {
	week := ComputeWeek(at(19, 10, 0), nil, 60)
	require.Empty(t, week)
}

func TestCompute_TodayClamping(t *testing.T) {
	now := at(13, 14, 30) // Monday
	week := ComputeWeek(now, nil, 60)

	mon, ok := week.Day(Date{2025, time.January, 13})
	require.True(t, ok)
	require.NotEmpty(t, mon.Slots)
	for _, s := range mon.Slots {
		require.False(t, s.Before(now), "slot %s before now", s)
	}
	require.Equal(t, "14:30", mon.Slots[0].Format("15:04"))

	for _, d := range week[1:] {
		require.Equal(t, "09:00", d.Slots[0].Format("15:04"), d.Date.String())
	}
}

func TestCompute_FullyBookedDayIsPresentAndEmpty(t *testing.T) {
	busy := []Interval{{Start: at(16, 9, 0), End: at(16, 18, 0)}}
	week := ComputeWeek(at(15, 8, 0), busy, 60)

	thu, ok := week.Day(Date{2025, time.January, 16})
	require.True(t, ok)
	require.NotNil(t, thu.Slots)
	require.Empty(t, thu.Slots)
}

func TestCompute_AfterClosingTodayIsEmpty(t *testing.T) {
	week := ComputeWeek(at(15, 18, 30), nil, 60)

	wed, ok := week.Day(Date{2025, time.January, 15})
	require.True(t, ok)
	require.Empty(t, wed.Slots)
}

func TestCompute_NoOverlapAndCompleteness(t *testing.T) {
	busy := []Interval{
		{Start: at(16, 10, 30), End: at(16, 11, 15)},
		{Start: at(16, 10, 45), End: at(16, 12, 0)}, // overlapping busy entries
		{Start: at(16, 16, 0), End: at(16, 17, 0)},
		{Start: at(17, 8, 0), End: at(17, 9, 0)}, // touches opening time
	}
	week := ComputeWeek(at(15, 20, 0), busy, 60)

	thu, _ := week.Day(Date{2025, time.January, 16})
	require.Equal(t, []string{"09:00", "12:00", "13:00", "14:00", "15:00", "17:00"}, clock(thu.Slots))
	for _, s := range thu.Slots {
		require.True(t, Free(Interval{Start: s, End: s.Add(time.Hour)}, busy))
	}

	fri, _ := week.Day(Date{2025, time.January, 17})
	require.Len(t, fri.Slots, 9)
	require.Equal(t, "09:00", fri.Slots[0].Format("15:04"))
}

func TestCompute_LastSlotFitsInsideWorkingHours(t *testing.T) {
	hours := DefaultHours()
	hours.Slot = 45 * time.Minute

	week := Compute(at(16, 7, 0), nil, hours)
	thu, _ := week.Day(Date{2025, time.January, 16})

	last := thu.Slots[len(thu.Slots)-1]
	require.False(t, last.Add(hours.Slot).After(at(16, 18, 0)))
	require.Equal(t, "17:15", last.Format("15:04"))
	require.Len(t, thu.Slots, 12)
}

func TestCompute_ConvertsNowIntoOperatingTimezone(t *testing.T) {
	// 03:15 UTC is 10:15 in Ho Chi Minh City.
	now := time.Date(2025, time.January, 15, 3, 15, 0, 0, time.UTC)
	week := ComputeWeek(now, nil, 60)

	wed, ok := week.Day(Date{2025, time.January, 15})
	require.True(t, ok)
	require.Equal(t, "10:15", wed.Slots[0].Format("15:04"))
}

func TestOverlaps(t *testing.T) {
	base := Interval{Start: at(15, 10, 0), End: at(15, 11, 0)}
	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"touching before", Interval{at(15, 9, 0), at(15, 10, 0)}, false},
		{"touching after", Interval{at(15, 11, 0), at(15, 12, 0)}, false},
		{"inside", Interval{at(15, 10, 15), at(15, 10, 45)}, true},
		{"containing", Interval{at(15, 9, 0), at(15, 12, 0)}, true},
		{"partial start", Interval{at(15, 9, 30), at(15, 10, 30)}, true},
		{"partial end", Interval{at(15, 10, 30), at(15, 11, 30)}, true},
		{"disjoint", Interval{at(15, 13, 0), at(15, 14, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Overlaps(base, tt.other))
			require.Equal(t, tt.want, Overlaps(tt.other, base))
		})
	}
}

func TestWindow(t *testing.T) {
	start, end, ok := Window(at(15, 10, 15), DefaultHours())
	require.True(t, ok)
	require.Equal(t, at(15, 0, 0), start)
	require.Equal(t, time.Date(2025, time.January, 18, 23, 59, 59, 0, loc), end)

	_, _, ok = Window(at(19, 10, 0), DefaultHours())
	require.False(t, ok)
}

func TestFormat(t *testing.T) {
	busy := []Interval{{Start: at(17, 9, 0), End: at(17, 18, 0)}}
	hours := DefaultHours()
	hours.Open = 16 * time.Hour

	out := Format(Compute(at(16, 16, 30), busy, hours))

	want := "Available slots for the current week:\n\n" +
		"Thursday, January 16: 04:30 PM\n\n" +
		"Friday, January 17: No available slots\n\n" +
		"Saturday, January 18: 04:00 PM, 05:00 PM"
	require.Equal(t, want, out)
}

func TestFormat_EmptyWeek(t *testing.T) {
	require.Contains(t, Format(Week{}), "No available slots")
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("09:30")
	require.NoError(t, err)
	require.Equal(t, 9*time.Hour+30*time.Minute, d)

	_, err = ParseClock("nine")
	require.Error(t, err)
	_, err = ParseClock("10:75")
	require.Error(t, err)
}
