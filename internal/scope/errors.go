package scope

import "errors"

// ErrorCode categorizes replay errors for programmatic handling. The
// Message carried alongside is the operator-facing text and is printed
// verbatim by the shell.
type ErrorCode string

const (
	// ErrCodeUserInput marks operator mistakes: seek past the end of the
	// payload, an out-of-range stop index, a malformed argument. Session
	// state is unchanged.
	ErrCodeUserInput ErrorCode = "USER_INPUT"

	// ErrCodeDataFormat marks malformed capture input that was recovered
	// from with a fallback.
	ErrCodeDataFormat ErrorCode = "DATA_FORMAT"
)

// Error is a replay error with a code and operator-facing message.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface. The message alone is returned:
// these strings go straight to the operator, not to a log.
func (e *Error) Error() string {
	return e.Message
}

// NewUserError creates an Error for invalid operator input.
func NewUserError(message string) *Error {
	return &Error{Code: ErrCodeUserInput, Message: message}
}

// IsUserError returns true for operator-input errors.
// Uses errors.As to handle wrapped errors.
func IsUserError(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeUserInput
	}
	return false
}
