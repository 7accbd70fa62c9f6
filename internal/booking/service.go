package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comigor/booking-go/internal/availability"
	"github.com/comigor/booking-go/internal/logger"
	"github.com/comigor/booking-go/internal/metrics"
)

// DefaultTimeout bounds every calendar call made by the service.
const DefaultTimeout = 15 * time.Second

// Calendar is the event store behind bookings. Zero timeMin/timeMax leave
// the corresponding bound open; an empty query matches every event.
type Calendar interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time, query string) ([]Event, error)
	InsertEvent(ctx context.Context, e Event) (Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Request is a booking request as produced by the language model.
type Request struct {
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Service      string `json:"service"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	BookingCode  string `json:"booking_code,omitempty"`
}

// Missing lists the JSON names of required fields that are blank.
func (r Request) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"customer_name", r.CustomerName},
		{"phone", r.Phone},
		{"service", r.Service},
		{"date", r.Date},
		{"start_time", r.StartTime},
		{"end_time", r.EndTime},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Service books, cancels and lists availability against a Calendar.
type Service struct {
	cal     Calendar
	hours   availability.WorkingHours
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimeout sets the per-call calendar timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService creates a booking service.
func NewService(cal Calendar, hours availability.WorkingHours, opts ...Option) *Service {
	if hours.Location == nil {
		hours.Location = availability.DefaultLocation()
	}
	s := &Service{
		cal:     cal,
		hours:   hours,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the operating timezone.
func (s *Service) Location() *time.Location { return s.hours.Location }

func (s *Service) clock() time.Time { return s.now().In(s.hours.Location) }

// Availability fetches the busy intervals of the current week and returns
// the free slots from now until its end.
func (s *Service) Availability(ctx context.Context) (availability.Week, error) {
	now := s.clock()
	start, end, ok := availability.Window(now, s.hours)
	if !ok {
		return availability.Week{}, nil
	}

	events, err := s.list(ctx, start, end, "")
	if err != nil {
		return nil, fmt.Errorf("list busy events: %w", err)
	}
	busy := make([]availability.Interval, 0, len(events))
	for _, e := range events {
		busy = append(busy, availability.Interval{Start: e.Start, End: e.End})
	}
	return availability.Compute(now, busy, s.hours), nil
}

// Book checks that the requested interval is free and creates the event.
// The check and the insert are not atomic: a concurrent booking between
// them is not detected.
func (s *Service) Book(ctx context.Context, req Request) (Booking, error) {
	if missing := req.Missing(); len(missing) > 0 {
		return Booking{}, fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), ErrInvalidInput)
	}

	now := s.clock()
	date, err := ResolveDate(req.Date, now)
	if err != nil {
		return Booking{}, err
	}
	startOff, err := ParseTimeOfDay(req.StartTime)
	if err != nil {
		return Booking{}, err
	}
	endOff, err := ParseTimeOfDay(req.EndTime)
	if err != nil {
		return Booking{}, err
	}
	start := date.At(startOff, s.hours.Location)
	end := date.At(endOff, s.hours.Location)
	if !end.After(start) {
		return Booking{}, fmt.Errorf("end time %s is not after start time %s: %w", req.EndTime, req.StartTime, ErrInvalidInput)
	}
	if start.Before(now) {
		return Booking{}, fmt.Errorf("start %s is in the past: %w", start.Format(time.RFC3339), ErrInvalidInput)
	}

	existing, err := s.list(ctx, start, end, "")
	if err != nil {
		return Booking{}, fmt.Errorf("check slot: %w", err)
	}
	candidate := availability.Interval{Start: start, End: end}
	for _, e := range existing {
		if availability.Overlaps(candidate, availability.Interval{Start: e.Start, End: e.End}) {
			metrics.IncBooking("conflict")
			return Booking{}, fmt.Errorf("%s overlaps event %s: %w", start.Format(time.RFC3339), e.ID, ErrSlotConflict)
		}
	}

	code := strings.TrimSpace(req.BookingCode)
	if code == "" {
		code = NewCode()
	}
	b := Booking{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        strings.TrimSpace(req.Phone),
		Service:      strings.TrimSpace(req.Service),
		Start:        start,
		End:          end,
		Code:         code,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := s.cal.InsertEvent(ctx, b.Event())
	if err != nil {
		metrics.IncBooking("error")
		return Booking{}, fmt.Errorf("create event: %w", timeoutErr(err))
	}
	b.EventID = created.ID

	metrics.IncBooking("created")
	logger.L.Info("booking created", "code", b.Code, "event_id", b.EventID, "start", b.Start)
	return b, nil
}

// Cancel deletes the first event whose description carries both the
// booking code and the phone number.
func (s *Service) Cancel(ctx context.Context, code, phone string) (Booking, error) {
	code, phone = strings.TrimSpace(code), strings.TrimSpace(phone)
	if code == "" || phone == "" {
		return Booking{}, fmt.Errorf("booking code and phone are required: %w", ErrInvalidInput)
	}

	events, err := s.list(ctx, time.Time{}, time.Time{}, code)
	if err != nil {
		return Booking{}, fmt.Errorf("search bookings: %w", err)
	}
	for _, e := range events {
		if !Matches(e.Description, code, phone) {
			continue
		}

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.cal.DeleteEvent(ctx, e.ID)
		cancel()
		if err != nil {
			metrics.IncCancellation("error")
			return Booking{}, fmt.Errorf("delete event %s: %w", e.ID, timeoutErr(err))
		}

		b, err := FromEvent(e)
		if err != nil {
			b = Booking{Phone: phone, Code: code, EventID: e.ID, Start: e.Start, End: e.End}
		}
		metrics.IncCancellation("cancelled")
		logger.L.Info("booking cancelled", "code", code, "event_id", e.ID)
		return b, nil
	}

	metrics.IncCancellation("not_found")
	return Booking{}, fmt.Errorf("code %s with phone %s: %w", code, phone, ErrNotFound)
}

func (s *Service) list(ctx context.Context, timeMin, timeMax time.Time, query string) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	events, err := s.cal.ListEvents(ctx, timeMin, timeMax, query)
	if err != nil {
		return nil, timeoutErr(err)
	}
	return events, nil
}

func timeoutErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
