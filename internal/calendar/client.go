// Package calendar stores salon bookings as Google Calendar events.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/comigor/booking-go/internal/booking"
	"github.com/comigor/booking-go/internal/config"
	"github.com/comigor/booking-go/internal/logger"
)

const dateLayout = "2006-01-02"

// Client implements booking.Calendar on top of one Google calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
	limiter    *rate.Limiter
}

var _ booking.Calendar = (*Client)(nil)

// New wraps an existing Calendar service. Times of all-day events are read
// in loc. A non-positive rps disables client side rate limiting.
func New(svc *calendar.Service, calendarID string, loc *time.Location, rps float64) *Client {
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.UTC
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		svc:        svc,
		calendarID: calendarID,
		loc:        loc,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// NewFromConfig authenticates with the OAuth client secrets and cached token
// named in cfg. It fails with booking.ErrAuth when no token has been stored
// yet; run the auth command first.
func NewFromConfig(ctx context.Context, cfg config.CalendarConfig, loc *time.Location) (*Client, error) {
	conf, err := LoadOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	store := NewTokenStore(cfg.TokenFile)
	tok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w", cfg.TokenFile, err)
	}

	ts := PersistingTokenSource(conf.TokenSource(ctx, tok), store, tok)
	httpClient := oauth2.NewClient(ctx, ts)

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return New(svc, cfg.CalendarID, loc, cfg.RequestsPerSecond), nil
}

// ListEvents returns the single (expanded) events of the calendar ordered
// by start time, following every result page.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time, query string) ([]booking.Event, error) {
	var out []booking.Event
	pageToken := ""
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		call := c.svc.Events.List(c.calendarID).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if !timeMin.IsZero() {
			call = call.TimeMin(timeMin.Format(time.RFC3339))
		}
		if !timeMax.IsZero() {
			call = call.TimeMax(timeMax.Format(time.RFC3339))
		}
		if query != "" {
			call = call.Q(query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list events: %w", classify(err))
		}
		for _, item := range events.Items {
			if item.Status == "cancelled" {
				continue
			}
			out = append(out, c.toEvent(item))
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}
	logger.L.Debug("calendar events listed", "calendar", c.calendarID, "count", len(out), "query", query)
	return out, nil
}

// InsertEvent creates e and returns it with the id assigned by Google.
func (c *Client) InsertEvent(ctx context.Context, e booking.Event) (booking.Event, error) {
	if err := c.wait(ctx); err != nil {
		return booking.Event{}, err
	}

	tz := c.loc.String()
	created, err := c.svc.Events.Insert(c.calendarID, &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start: &calendar.EventDateTime{
			DateTime: e.Start.In(c.loc).Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: e.End.In(c.loc).Format(time.RFC3339),
			TimeZone: tz,
		},
	}).Context(ctx).Do()
	if err != nil {
		return booking.Event{}, fmt.Errorf("insert event: %w", classify(err))
	}
	return c.toEvent(created), nil
}

// DeleteEvent removes the event with the given id.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, classify(err))
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", booking.ErrTimeout, err)
	}
	return nil
}

func (c *Client) toEvent(item *calendar.Event) booking.Event {
	return booking.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       c.parseTime(item.Start),
		End:         c.parseTime(item.End),
	}
}

// parseTime reads a timed or all-day boundary. All-day boundaries are local
// midnights, so an all-day event blocks the whole day.
func (c *Client) parseTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t.In(c.loc)
		}
	}
	if dt.Date != "" {
		if t, err := time.ParseInLocation(dateLayout, dt.Date, c.loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// classify maps Google API and transport failures onto booking error kinds.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %v", booking.ErrAuth, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden && !rateLimited(gerr):
			return fmt.Errorf("%w: %v", booking.ErrAuth, err)
		case gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone:
			return fmt.Errorf("%w: %v", booking.ErrNotFound, err)
		case gerr.Code == http.StatusBadRequest:
			return fmt.Errorf("%w: %v", booking.ErrInvalidInput, err)
		default:
			return fmt.Errorf("%w: %v", booking.ErrAPIUnavailable, err)
		}
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return fmt.Errorf("%w: %v", booking.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", booking.ErrAPIUnavailable, err)
	}
	return fmt.Errorf("%w: %v", booking.ErrAPIUnavailable, err)
}

// Google reports quota exhaustion as 403 with a rate limit reason.
func rateLimited(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}
