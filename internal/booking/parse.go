package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/comigor/booking-go/internal/availability"
)

var relativeDays = map[string]int{
	"today":              0,
	"hôm nay":            0,
	"hom nay":            0,
	"tomorrow":           1,
	"mai":                1,
	"ngày mai":           1,
	"ngay mai":           1,
	"day after tomorrow": 2,
	"ngày kia":           2,
	"ngay kia":           2,
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

var clockLayouts = []string{"15:04", "15:04:05", "3:04pm", "3pm", "15h04", "15h"}

// ResolveDate turns the free-text date of a booking request into a
// calendar date relative to now. It understands ISO and day-first dates,
// "today"/"tomorrow" (also in Vietnamese) and weekday names, which resolve
// to their next occurrence counting today ("next friday" skips today).
func ResolveDate(text string, now time.Time) (availability.Date, error) {
	today := availability.DateOf(now)
	s := strings.ToLower(strings.TrimSpace(text))

	if n, ok := relativeDays[s]; ok {
		return today.AddDays(n), nil
	}

	name, strict := strings.CutPrefix(s, "next ")
	name = strings.TrimPrefix(name, "this ")
	if wd, ok := weekdays[name]; ok {
		ahead := (int(wd) - int(now.Weekday()) + 7) % 7
		if strict && ahead == 0 {
			ahead = 7
		}
		return today.AddDays(ahead), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return availability.DateOf(t), nil
		}
	}
	return availability.Date{}, fmt.Errorf("unrecognized date %q: %w", text, ErrInvalidInput)
}

// ParseTimeOfDay parses "14:00", "2 PM", "2:30pm", "14h" or "14h30" into
// an offset from midnight.
func ParseTimeOfDay(text string) (time.Duration, error) {
	s := strings.ToLower(strings.Join(strings.Fields(text), ""))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q: %w", text, ErrInvalidInput)
}
