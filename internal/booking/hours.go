package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/comigor/booking-go/internal/availability"
	"github.com/comigor/booking-go/internal/config"
)

// HoursFromConfig builds the slot grid described by the salon section.
func HoursFromConfig(cfg config.SalonConfig) (availability.WorkingHours, error) {
	hours := availability.DefaultHours()

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return hours, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		hours.Location = loc
	}
	if cfg.OpenTime != "" {
		open, err := availability.ParseClock(cfg.OpenTime)
		if err != nil {
			return hours, err
		}
		hours.Open = open
	}
	if cfg.CloseTime != "" {
		closing, err := availability.ParseClock(cfg.CloseTime)
		if err != nil {
			return hours, err
		}
		hours.Close = closing
	}
	if hours.Close <= hours.Open {
		return hours, fmt.Errorf("close time %s must be after open time %s", cfg.CloseTime, cfg.OpenTime)
	}
	if cfg.SlotMinutes > 0 {
		hours.Slot = time.Duration(cfg.SlotMinutes) * time.Minute
	}
	if cfg.ClosedDays != nil {
		hours.ClosedDays = nil
		for _, name := range cfg.ClosedDays {
			wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return hours, fmt.Errorf("unknown closed day %q", name)
			}
			hours.ClosedDays = append(hours.ClosedDays, wd)
		}
	}
	return hours, nil
}
