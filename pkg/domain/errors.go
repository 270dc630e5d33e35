package domain

import "errors"

// Error taxonomy for the client core. Every failure is recoverable: the
// operation returns one of these and leaves state untouched. Transport
// failures from the API client are surfaced as-is (see client.HTTPError).

// ValidationError reports malformed input caught before any remote call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthError reports rejected credentials or an operation attempted without
// an active session. The message is shown to the user verbatim.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

// NotFoundError reports an update or remove against an ownership key that
// does not exist in the collection.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// StateError reports a call that is invalid in the current lifecycle state,
// such as refreshing a profile with no session. These paths are gated by the
// UI and should be unreachable.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
