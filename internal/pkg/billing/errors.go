package billing

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnknownCollective is returned when the named collective is not in
	// the static configuration.
	ErrUnknownCollective = errors.New("billing: no collective by that name exists")

	// ErrNotAMember flags a payment attempt for a collective the user never
	// joined. Advisory: callers log it, the flow continues (matching the
	// historical behavior of this check).
	ErrNotAMember = errors.New("billing: user has not joined this collective")

	// ErrNoActiveSubscription is returned when a cancel is requested with
	// nothing to cancel.
	ErrNoActiveSubscription = errors.New("billing: no active subscription to cancel")
)

// ProviderError wraps any failure from the external billing provider. The
// full detail is for logs; user-facing surfaces should show a sanitized
// message instead.
type ProviderError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("billing provider: %s: status=%d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("billing provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderNotFound reports whether err is a provider response saying the
// object no longer exists (e.g. a subscription deleted externally).
func IsProviderNotFound(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Status == http.StatusNotFound
}
