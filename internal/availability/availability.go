// Package availability computes the free appointment slots of the salon for
// the remainder of the current week.
//
// Everything here is a pure function of its inputs: busy intervals are
// fetched elsewhere and passed in, "now" is supplied by the caller.
package availability

import (
	"slices"
	"time"
)

// DefaultTimezone is the operating timezone of the salon.
const DefaultTimezone = "Asia/Ho_Chi_Minh"

const (
	DefaultOpen  = 9 * time.Hour
	DefaultClose = 18 * time.Hour
	DefaultSlot  = 60 * time.Minute
)

// Interval is a half-open time range [Start, End). Start < End is assumed
// and never validated, busy intervals come straight from calendar events.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether a and b share any instant. Touching intervals
// (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.End.After(b.Start) && a.Start.Before(b.End)
}

// Free reports whether candidate is disjoint from every busy interval.
func Free(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(candidate, b) {
			return false
		}
	}
	return true
}

// WorkingHours describes the fixed daily grid. Open and Close are offsets
// from local midnight.
type WorkingHours struct {
	Open       time.Duration
	Close      time.Duration
	Slot       time.Duration
	Location   *time.Location
	ClosedDays []time.Weekday
}

// DefaultHours returns 09:00-18:00, one hour slots, closed on Sunday, in the
// salon's timezone.
func DefaultHours() WorkingHours {
	return WorkingHours{
		Open:       DefaultOpen,
		Close:      DefaultClose,
		Slot:       DefaultSlot,
		Location:   DefaultLocation(),
		ClosedDays: []time.Weekday{time.Sunday},
	}
}

// DefaultLocation loads DefaultTimezone, falling back to a fixed UTC+7 zone
// when the tz database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

func (h WorkingHours) withDefaults() WorkingHours {
	if h.Location == nil {
		h.Location = DefaultLocation()
	}
	if h.Slot <= 0 {
		h.Slot = DefaultSlot
	}
	if h.Open == 0 && h.Close == 0 {
		h.Open, h.Close = DefaultOpen, DefaultClose
	}
	return h
}

// IsClosed reports whether the salon is closed on wd.
func (h WorkingHours) IsClosed(wd time.Weekday) bool {
	return slices.Contains(h.ClosedDays, wd)
}

// DaySchedule lists the free slot start times of one date, in order.
type DaySchedule struct {
	Date  Date
	Slots []time.Time
}

// Week holds one DaySchedule per open date from today through the end of
// the week. Closed dates have no entry; fully booked dates have an entry
// with no slots.
type Week []DaySchedule

// Day looks up the schedule for d.
func (w Week) Day(d Date) (DaySchedule, bool) {
	for _, day := range w {
		if day.Date == d {
			return day, true
		}
	}
	return DaySchedule{}, false
}

// WeekEnd returns the last date of the Monday-based week containing d.
func WeekEnd(d Date) Date {
	mondayBased := (int(d.Weekday()) + 6) % 7
	return d.AddDays(6 - mondayBased)
}

// Compute returns the free slots from now until the end of the current
// week. On now's date the grid starts at max(open, now) so nothing in the
// past is offered; every other date starts at the opening time.
func Compute(now time.Time, busy []Interval, hours WorkingHours) Week {
	hours = hours.withDefaults()
	now = now.In(hours.Location)
	today := DateOf(now)
	end := WeekEnd(today)

	week := Week{}
	for d := today; !d.After(end); d = d.AddDays(1) {
		if hours.IsClosed(d.Weekday()) {
			continue
		}
		dayStart := d.At(hours.Open, hours.Location)
		dayEnd := d.At(hours.Close, hours.Location)
		if d == today && now.After(dayStart) {
			dayStart = now
		}
		week = append(week, DaySchedule{
			Date:  d,
			Slots: freeSlots(dayStart, dayEnd, hours.Slot, busy),
		})
	}
	return week
}

// ComputeWeek is Compute with the default salon hours and the given slot
// length in minutes.
func ComputeWeek(now time.Time, busy []Interval, slotMinutes int) Week {
	hours := DefaultHours()
	hours.Slot = time.Duration(slotMinutes) * time.Minute
	return Compute(now, busy, hours)
}

func freeSlots(start, end time.Time, slot time.Duration, busy []Interval) []time.Time {
	slots := make([]time.Time, 0)
	for cur := start; cur.Before(end); cur = cur.Add(slot) {
		candidate := Interval{Start: cur, End: cur.Add(slot)}
		if candidate.End.After(end) {
			break
		}
		if Free(candidate, busy) {
			slots = append(slots, cur)
		}
	}
	return slots
}

// Window returns the range of calendar events Compute needs for now:
// midnight of today through 23:59:59 of the last open date of the week.
// ok is false when no open date remains, in which case nothing should be
// fetched.
func Window(now time.Time, hours WorkingHours) (start, end time.Time, ok bool) {
	hours = hours.withDefaults()
	now = now.In(hours.Location)
	today := DateOf(now)

	last := WeekEnd(today)
	for !last.Before(today) && hours.IsClosed(last.Weekday()) {
		last = last.AddDays(-1)
	}
	if last.Before(today) {
		return time.Time{}, time.Time{}, false
	}

	start = today.At(0, hours.Location)
	end = last.AddDays(1).At(0, hours.Location).Add(-time.Second)
	return start, end, true
}
