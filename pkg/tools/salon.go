package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/comigor/booking-go/internal/availability"
	"github.com/comigor/booking-go/internal/booking"
	"github.com/comigor/booking-go/internal/logger"
)

const (
	AvailableSlotsName = "available_slots_tool"
	CalendarName       = "calendar_tool"
	CancelEventName    = "cancel_event_tool"

	invalidJSONMessage   = "Invalid input format. Please provide a valid JSON object."
	slotTakenMessage     = "This time slot is already booked. Please choose another time."
	cancelMissingMessage = "Please provide both booking code and customer phone number."
)

// Scheduler is the booking backend the salon tools drive.
type Scheduler interface {
	Availability(ctx context.Context) (availability.Week, error)
	Book(ctx context.Context, req booking.Request) (booking.Booking, error)
	Cancel(ctx context.Context, code, phone string) (booking.Booking, error)
}

// SalonTools returns the three tools of the booking assistant.
func SalonTools(s Scheduler) []Tool {
	return []Tool{
		&AvailableSlotsTool{scheduler: s},
		&CalendarTool{scheduler: s},
		&CancelEventTool{scheduler: s},
	}
}

type errorResult struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorJSON renders a failure as {"status":"error","error":kind,"message":...}.
func errorJSON(err error, message string) string {
	b, _ := json.Marshal(errorResult{Status: "error", Error: booking.Kind(err), Message: message})
	return string(b)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, booking.ErrAuth):
		return "The salon calendar is not authorized right now. Please try again later."
	case errors.Is(err, booking.ErrTimeout):
		return "The salon calendar took too long to answer. Please try again."
	case errors.Is(err, booking.ErrAPIUnavailable):
		return "The salon calendar is temporarily unavailable. Please try again later."
	default:
		return "An error occurred: " + err.Error()
	}
}

// AvailableSlotsTool lists the free slots for the rest of the week.
type AvailableSlotsTool struct {
	scheduler Scheduler
}

func (t *AvailableSlotsTool) Name() string { return AvailableSlotsName }

func (t *AvailableSlotsTool) Description() string {
	return "Lists the free one-hour appointment slots of the salon from now until the end of the current week. Takes no arguments."
}

func (t *AvailableSlotsTool) Parameters() any {
	return jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: map[string]jsonschema.Definition{},
	}
}

func (t *AvailableSlotsTool) Run(ctx context.Context, _ string) (string, error) {
	week, err := t.scheduler.Availability(ctx)
	if err != nil {
		logger.L.Error("availability lookup failed", "error", err)
		return errorJSON(err, userMessage(err)), nil
	}
	return availability.Format(week), nil
}

// CalendarTool books an appointment.
type CalendarTool struct {
	scheduler Scheduler
}

func (t *CalendarTool) Name() string { return CalendarName }

func (t *CalendarTool) Description() string {
	return "Books a salon appointment. Only call it once the customer has given their name, phone number, service, date and time. " +
		"Dates are YYYY-MM-DD, times are 24-hour HH:MM in the salon's timezone."
}

func (t *CalendarTool) Parameters() any {
	str := func(desc string) jsonschema.Definition {
		return jsonschema.Definition{Type: jsonschema.String, Description: desc}
	}
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"customer_name": str("Full name of the customer"),
			"phone":         str("Customer phone number"),
			"service":       str("Requested service, as named in the catalog"),
			"date":          str("Appointment date, YYYY-MM-DD"),
			"start_time":    str("Start time, HH:MM (24-hour)"),
			"end_time":      str("End time, HH:MM (24-hour)"),
			"booking_code":  str("Optional booking code; generated when omitted"),
		},
		Required: []string{"customer_name", "phone", "service", "date", "start_time", "end_time"},
	}
}

func (t *CalendarTool) Run(ctx context.Context, args string) (string, error) {
	var req booking.Request
	if err := json.Unmarshal([]byte(args), &req); err != nil {
		return invalidJSONMessage, nil
	}
	if missing := req.Missing(); len(missing) > 0 {
		err := fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), booking.ErrInvalidInput)
		return errorJSON(err, "Please ask the customer for: "+strings.Join(missing, ", ")+"."), nil
	}

	b, err := t.scheduler.Book(ctx, req)
	switch {
	case err == nil:
		return fmt.Sprintf("Event created successfully. Booking code: %s, Event ID: %s", b.Code, b.EventID), nil
	case errors.Is(err, booking.ErrSlotConflict):
		return slotTakenMessage, nil
	case errors.Is(err, booking.ErrInvalidInput):
		return errorJSON(err, err.Error()), nil
	default:
		logger.L.Error("booking failed", "error", err)
		return errorJSON(err, userMessage(err)), nil
	}
}

// CancelEventTool cancels an appointment by booking code and phone.
type CancelEventTool struct {
	scheduler Scheduler
}

type cancelArgs struct {
	BookingCode   string `json:"booking_code"`
	CustomerPhone string `json:"customer_phone"`
}

func (t *CancelEventTool) Name() string { return CancelEventName }

func (t *CancelEventTool) Description() string {
	return "Cancels an existing appointment. Requires the booking code and the phone number used when booking."
}

func (t *CancelEventTool) Parameters() any {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"booking_code":   {Type: jsonschema.String, Description: "Booking code given at booking time"},
			"customer_phone": {Type: jsonschema.String, Description: "Phone number used for the booking"},
		},
		Required: []string{"booking_code", "customer_phone"},
	}
}

func (t *CancelEventTool) Run(ctx context.Context, args string) (string, error) {
	var in cancelArgs
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return invalidJSONMessage, nil
	}
	code, phone := strings.TrimSpace(in.BookingCode), strings.TrimSpace(in.CustomerPhone)
	if code == "" || phone == "" {
		return cancelMissingMessage, nil
	}

	_, err := t.scheduler.Cancel(ctx, code, phone)
	switch {
	case err == nil:
		return fmt.Sprintf("Event with booking code %s has been successfully canceled.", code), nil
	case errors.Is(err, booking.ErrNotFound):
		return fmt.Sprintf("No event found with booking code %s and phone number %s. Let's try again or check the booking code.", code, phone), nil
	default:
		logger.L.Error("cancellation failed", "error", err)
		return errorJSON(err, userMessage(err)), nil
	}
}
