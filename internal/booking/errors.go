package booking

import "errors"

// Error kinds surfaced by the booking service and the calendar adapter.
// They are always wrapped; test with errors.Is.
var (
	ErrAuth           = errors.New("calendar authorization failed")
	ErrAPIUnavailable = errors.New("calendar service unavailable")
	ErrNotFound       = errors.New("booking not found")
	ErrInvalidInput   = errors.New("invalid booking input")
	ErrSlotConflict   = errors.New("slot already booked")
	ErrTimeout        = errors.New("calendar request timed out")
)

// Kind returns a short machine-readable name for the error kind of err,
// or "internal" when err carries none of them.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "auth_error"
	case errors.Is(err, ErrAPIUnavailable):
		return "api_unavailable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "internal"
	}
}
