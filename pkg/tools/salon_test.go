package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/require"

	"github.com/comigor/booking-go/internal/availability"
	"github.com/comigor/booking-go/internal/booking"
)

type mockScheduler struct {
	availability func(ctx context.Context) (availability.Week, error)
	book         func(ctx context.Context, req booking.Request) (booking.Booking, error)
	cancel       func(ctx context.Context, code, phone string) (booking.Booking, error)
}

func (m *mockScheduler) Availability(ctx context.Context) (availability.Week, error) {
	return m.availability(ctx)
}

func (m *mockScheduler) Book(ctx context.Context, req booking.Request) (booking.Booking, error) {
	return m.book(ctx, req)
}

func (m *mockScheduler) Cancel(ctx context.Context, code, phone string) (booking.Booking, error) {
	return m.cancel(ctx, code, phone)
}

func decodeError(t *testing.T, out string) errorResult {
	t.Helper()
	var res errorResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	require.Equal(t, "error", res.Status)
	return res
}

func TestManager(t *testing.T) {
	m := NewManager(SalonTools(&mockScheduler{})...)

	names := []string{}
	for _, tool := range m.List() {
		names = append(names, tool.Name())
	}
	require.Equal(t, []string{AvailableSlotsName, CalendarName, CancelEventName}, names)

	tool, err := m.Get(CalendarName)
	require.NoError(t, err)
	require.Equal(t, CalendarName, tool.Name())

	_, err = m.Get("weather")
	require.EqualError(t, err, "tool not found: weather")
}

func TestAvailableSlotsTool(t *testing.T) {
	loc := time.UTC
	week := availability.Week{{
		Date:  availability.Date{Year: 2025, Month: time.January, Day: 16},
		Slots: []time.Time{time.Date(2025, 1, 16, 9, 0, 0, 0, loc), time.Date(2025, 1, 16, 14, 0, 0, 0, loc)},
	}}
	tool := &AvailableSlotsTool{scheduler: &mockScheduler{
		availability: func(context.Context) (availability.Week, error) { return week, nil },
	}}

	out, err := tool.Run(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "Available slots for the current week:\n\nThursday, January 16: 09:00 AM, 02:00 PM", out)

	tool.scheduler = &mockScheduler{
		availability: func(context.Context) (availability.Week, error) {
			return nil, fmt.Errorf("list: %w", booking.ErrAuth)
		},
	}
	out, err = tool.Run(context.Background(), "{}")
	require.NoError(t, err)
	require.Equal(t, "auth_error", decodeError(t, out).Error)
}

func TestCalendarTool(t *testing.T) {
	args := `{"customer_name":"Alex","phone":"555","service":"Hair cut","date":"2025-01-16","start_time":"14:00","end_time":"15:00"}`

	t.Run("success", func(t *testing.T) {
		var got booking.Request
		tool := &CalendarTool{scheduler: &mockScheduler{
			book: func(_ context.Context, req booking.Request) (booking.Booking, error) {
				got = req
				return booking.Booking{Code: "51a264e4", EventID: "evt1"}, nil
			},
		}}

		out, err := tool.Run(context.Background(), args)
		require.NoError(t, err)
		require.Equal(t, "Event created successfully. Booking code: 51a264e4, Event ID: evt1", out)
		require.Equal(t, "Alex", got.CustomerName)
		require.Equal(t, "15:00", got.EndTime)
	})

	t.Run("conflict", func(t *testing.T) {
		tool := &CalendarTool{scheduler: &mockScheduler{
			book: func(context.Context, booking.Request) (booking.Booking, error) {
				return booking.Booking{}, fmt.Errorf("overlap: %w", booking.ErrSlotConflict)
			},
		}}
		out, err := tool.Run(context.Background(), args)
		require.NoError(t, err)
		require.Equal(t, slotTakenMessage, out)
	})

	t.Run("missing fields never reach the calendar", func(t *testing.T) {
		tool := &CalendarTool{scheduler: &mockScheduler{
			book: func(context.Context, booking.Request) (booking.Booking, error) {
				t.Fatal("book must not be called")
				return booking.Booking{}, nil
			},
		}}
		out, err := tool.Run(context.Background(), `{"customer_name":"Alex","service":"Hair cut"}`)
		require.NoError(t, err)
		res := decodeError(t, out)
		require.Equal(t, "invalid_input", res.Error)
		require.Contains(t, res.Message, "phone, date, start_time, end_time")
	})

	t.Run("invalid json", func(t *testing.T) {
		tool := &CalendarTool{scheduler: &mockScheduler{}}
		out, err := tool.Run(context.Background(), "book me at 2")
		require.NoError(t, err)
		require.Equal(t, invalidJSONMessage, out)
	})

	t.Run("calendar down", func(t *testing.T) {
		tool := &CalendarTool{scheduler: &mockScheduler{
			book: func(context.Context, booking.Request) (booking.Booking, error) {
				return booking.Booking{}, fmt.Errorf("insert: %w", booking.ErrAPIUnavailable)
			},
		}}
		out, err := tool.Run(context.Background(), args)
		require.NoError(t, err)
		require.Equal(t, "api_unavailable", decodeError(t, out).Error)
	})
}

func TestCancelEventTool(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tool := &CancelEventTool{scheduler: &mockScheduler{
			cancel: func(_ context.Context, code, phone string) (booking.Booking, error) {
				require.Equal(t, "ABC123", code)
				require.Equal(t, "555", phone)
				return booking.Booking{Code: code}, nil
			},
		}}
		out, err := tool.Run(context.Background(), `{"booking_code":"ABC123","customer_phone":" 555 "}`)
		require.NoError(t, err)
		require.Equal(t, "Event with booking code ABC123 has been successfully canceled.", out)
	})

	t.Run("not found", func(t *testing.T) {
		tool := &CancelEventTool{scheduler: &mockScheduler{
			cancel: func(context.Context, string, string) (booking.Booking, error) {
				return booking.Booking{}, fmt.Errorf("search: %w", booking.ErrNotFound)
			},
		}}
		out, err := tool.Run(context.Background(), `{"booking_code":"ABC123","customer_phone":"000"}`)
		require.NoError(t, err)
		require.Contains(t, out, "No event found with booking code ABC123 and phone number 000.")
	})

	t.Run("missing phone", func(t *testing.T) {
		tool := &CancelEventTool{scheduler: &mockScheduler{}}
		out, err := tool.Run(context.Background(), `{"booking_code":"ABC123"}`)
		require.NoError(t, err)
		require.Equal(t, cancelMissingMessage, out)
	})

	t.Run("invalid json", func(t *testing.T) {
		tool := &CancelEventTool{scheduler: &mockScheduler{}}
		out, err := tool.Run(context.Background(), "ABC123")
		require.NoError(t, err)
		require.Equal(t, invalidJSONMessage, out)
	})
}

func TestParametersAreObjects(t *testing.T) {
	for _, tool := range SalonTools(&mockScheduler{}) {
		def, ok := tool.Parameters().(jsonschema.Definition)
		require.True(t, ok, tool.Name())
		require.Equal(t, jsonschema.Object, def.Type)

		b, err := json.Marshal(def)
		require.NoError(t, err)
		require.Contains(t, string(b), `"type":"object"`)
	}
}
