package scheduling

import "errors"

// Error kinds surfaced by the engine and ledger. Handlers map these onto HTTP
// status codes with errors.Is; the wrapped message is safe to show callers.
var (
	// ErrInvalidRequest covers malformed or out-of-policy input: a time that
	// is not a canonical slot, a date in the past, a missing required field.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrSlotUnavailable means the (doctor, date, time) slot already holds a
	// live appointment. Never retried automatically; the caller picks another
	// slot.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrIllegalTransition means the requested action is not legal from the
	// appointment's current status.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrForbidden means the actor is not the owning patient, the assigned
	// doctor, or an admin where one is required.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")
)
