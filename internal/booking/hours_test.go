package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/booking-go/internal/config"
)

func TestHoursFromConfig(t *testing.T) {
	hours, err := HoursFromConfig(config.SalonConfig{
		Timezone:    "UTC",
		OpenTime:    "08:30",
		CloseTime:   "20:00",
		SlotMinutes: 30,
		ClosedDays:  []string{"Sunday", " monday "},
	})
	require.NoError(t, err)

	require.Equal(t, time.UTC, hours.Location)
	require.Equal(t, 8*time.Hour+30*time.Minute, hours.Open)
	require.Equal(t, 20*time.Hour, hours.Close)
	require.Equal(t, 30*time.Minute, hours.Slot)
	require.Equal(t, []time.Weekday{time.Sunday, time.Monday}, hours.ClosedDays)
}

func TestHoursFromConfig_Defaults(t *testing.T) {
	hours, err := HoursFromConfig(config.SalonConfig{})
	require.NoError(t, err)

	require.Equal(t, 9*time.Hour, hours.Open)
	require.Equal(t, 18*time.Hour, hours.Close)
	require.Equal(t, time.Hour, hours.Slot)
	require.True(t, hours.IsClosed(time.Sunday))
}

func TestHoursFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SalonConfig
	}{
		{"bad timezone", config.SalonConfig{Timezone: "Mars/Olympus"}},
		{"bad clock", config.SalonConfig{OpenTime: "9am"}},
		{"close before open", config.SalonConfig{OpenTime: "18:00", CloseTime: "09:00"}},
		{"unknown day", config.SalonConfig{ClosedDays: []string{"funday"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HoursFromConfig(tt.cfg)
			require.Error(t, err)
		})
	}
}
