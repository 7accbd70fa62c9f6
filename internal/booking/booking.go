// Package booking creates and cancels salon appointments on a calendar.
//
// A booking has no storage of its own: it lives in a calendar event whose
// summary and description follow a fixed textual layout. The description
// doubles as the lookup key for cancellation, so the layout written by
// Description must stay byte-compatible with events created earlier.
package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	servicePrefix = "Service: "
	phonePrefix   = "Phone: "
	codePrefix    = "Booking Code: "
)

// Booking is one appointment.
type Booking struct {
	CustomerName string
	Phone        string
	Service      string
	Start        time.Time
	End          time.Time
	Code         string
	EventID      string
}

// Event is a calendar event as seen by the booking service.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Details are the fields encoded in an event description.
type Details struct {
	Service string
	Phone   string
	Code    string
}

// NewCode returns a fresh 8 character booking code.
func NewCode() string {
	return uuid.NewString()[:8]
}

// Summary is the event title: "{customer_name} - {service}".
func (b Booking) Summary() string {
	return b.CustomerName + " - " + b.Service
}

// Description encodes service, phone and booking code, one per line.
func (b Booking) Description() string {
	return servicePrefix + b.Service + "\n" +
		phonePrefix + b.Phone + "\n" +
		codePrefix + b.Code
}

// Event converts b into the calendar event that stores it.
func (b Booking) Event() Event {
	return Event{
		ID:          b.EventID,
		Summary:     b.Summary(),
		Description: b.Description(),
		Start:       b.Start,
		End:         b.End,
	}
}

// ParseDescription reads the fields written by Description. ok is false
// unless both a phone and a booking code are present.
func ParseDescription(desc string) (Details, bool) {
	var d Details
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, servicePrefix):
			d.Service = strings.TrimPrefix(line, servicePrefix)
		case strings.HasPrefix(line, phonePrefix):
			d.Phone = strings.TrimPrefix(line, phonePrefix)
		case strings.HasPrefix(line, codePrefix):
			d.Code = strings.TrimPrefix(line, codePrefix)
		}
	}
	return d, d.Phone != "" && d.Code != ""
}

// Matches reports whether desc belongs to the booking identified by code
// and phone. Both markers must occur as exact substrings.
func Matches(desc, code, phone string) bool {
	return strings.Contains(desc, codePrefix+code) &&
		strings.Contains(desc, phonePrefix+phone)
}

// FromEvent rebuilds a booking from a stored event. Customer name and
// service are recovered from the summary when the description lacks them.
func FromEvent(e Event) (Booking, error) {
	d, ok := ParseDescription(e.Description)
	if !ok {
		return Booking{}, fmt.Errorf("event %s is not a booking: %w", e.ID, ErrNotFound)
	}
	name, service, _ := strings.Cut(e.Summary, " - ")
	if d.Service != "" {
		service = d.Service
	}
	return Booking{
		CustomerName: name,
		Phone:        d.Phone,
		Service:      service,
		Start:        e.Start,
		End:          e.End,
		Code:         d.Code,
		EventID:      e.ID,
	}, nil
}
