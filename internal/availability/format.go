package availability

import (
	"strings"
	"time"
)

const (
	dayLayout  = "Monday, January 02"
	slotLayout = "03:04 PM"
)

// Format renders week as the listing handed back to the language model,
// one paragraph per date.
func Format(week Week) string {
	var b strings.Builder
	b.WriteString("Available slots for the current week:\n")
	if len(week) == 0 {
		b.WriteString("\nNo available slots for the rest of this week.")
		return b.String()
	}
	for _, day := range week {
		b.WriteString("\n")
		b.WriteString(day.Date.At(0, time.UTC).Format(dayLayout))
		b.WriteString(": ")
		if len(day.Slots) == 0 {
			b.WriteString("No available slots")
		} else {
			parts := make([]string, len(day.Slots))
			for i, s := range day.Slots {
				parts[i] = s.Format(slotLayout)
			}
			b.WriteString(strings.Join(parts, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
