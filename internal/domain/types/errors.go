package types

import "errors"

// ErrorKind is the code clients see in {"error": {"code": ...}}.
type ErrorKind string

func (k ErrorKind) String() string {
	return string(k)
}

const (
	KindNoAvailableResource        ErrorKind = "NoAvailableResource"
	KindAlreadyReserved            ErrorKind = "AlreadyReserved"
	KindMatchTimeout               ErrorKind = "MatchTimeout"
	KindInvalidRequest             ErrorKind = "InvalidRequest"
	KindPartialNotificationFailure ErrorKind = "PartialNotificationFailure"
	KindNotFound                   ErrorKind = "NotFound"
	KindConflict                   ErrorKind = "Conflict"
	KindUnauthorized               ErrorKind = "Unauthorized"
	KindForbidden                  ErrorKind = "Forbidden"
	KindRateLimited                ErrorKind = "RateLimited"
	KindInternal                   ErrorKind = "Internal"
)

var (
	ErrNoAvailableResource = errors.New("no ambulance available within the search radius")
	ErrMatchTimeout        = errors.New("ambulance matching exceeded its time budget")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrNotFound            = errors.New("requested item not found")
	ErrConflict            = errors.New("illegal state transition")

	// registry races, recovered inside the matcher
	ErrAlreadyReserved     = errors.New("ambulance already reserved")
	ErrResourceUnavailable = errors.New("ambulance unavailable")
	ErrReservationMismatch = errors.New("reservation token does not match")

	ErrNoContactReached = errors.New("no emergency contact could be reached")
	ErrDeliveryFailed   = errors.New("notification delivery failed")
	ErrDeliveryRejected = errors.New("notification rejected by gateway")

	ErrUnauthorized = errors.New("authorization required")
	ErrForbidden    = errors.New("forbidden: insufficient role")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	ErrDatabaseFailed = errors.New("database operation failed")
	ErrPublishFailed  = errors.New("failed to publish message")
)

var (
	ErrBookingNotFound   = notFound("booking not found")
	ErrEventNotFound     = notFound("sos event not found")
	ErrAlertNotFound     = notFound("alert not found")
	ErrAmbulanceNotFound = notFound("ambulance not found")
	ErrHospitalNotFound  = notFound("hospital not found")
	ErrNewsNotFound      = notFound("news item not found")
	ErrContactNotFound   = notFound("emergency contact not found")

	ErrBookingTerminal    = conflict("booking is already in a terminal state")
	ErrCancelCutoffPassed = conflict("booking is past the dispatch cutoff")
	ErrEventTerminal      = conflict("sos event is already in a terminal state")
	ErrStaleState         = conflict("state changed concurrently")
	ErrBookingNotActive   = conflict("booking is not confirmed")
	ErrIdempotencyKeyUsed = conflict("idempotency key already used")
)

// kindError keeps its own message while matching a base sentinel with errors.Is.
type kindError struct {
	msg  string
	base error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.base }

func notFound(msg string) error { return &kindError{msg: msg, base: ErrNotFound} }
func conflict(msg string) error { return &kindError{msg: msg, base: ErrConflict} }

// Invalid builds an InvalidRequest error with a specific message.
func Invalid(msg string) error { return &kindError{msg: msg, base: ErrInvalidRequest} }

// KindOf classifies err for API responses. Unknown errors are Internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoAvailableResource):
		return KindNoAvailableResource
	case errors.Is(err, ErrMatchTimeout):
		return KindMatchTimeout
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrAlreadyReserved), errors.Is(err, ErrResourceUnavailable):
		return KindAlreadyReserved
	case errors.Is(err, ErrNoContactReached):
		return KindPartialNotificationFailure
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}
