package service

import "errors"

var (
	// ErrNotFound reports a missing recipe, user or catalog entry (404).
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied reports a mutation attempt by someone who is
	// neither the author nor staff (403).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAlreadyExists and ErrEdgeNotFound are toggle conflicts (400).
	ErrAlreadyExists = errors.New("already exists")
	ErrEdgeNotFound  = errors.New("does not exist")

	// ErrSelfSubscription rejects subscribing to yourself (400).
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")

	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is a field-scoped request validation failure (400).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// conflictError wraps a toggle sentinel with the human-readable detail
// message surfaced to the client.
type conflictError struct {
	msg  string
	kind error
}

func (e *conflictError) Error() string { return e.msg }
func (e *conflictError) Unwrap() error { return e.kind }

func conflict(kind error, msg string) error {
	return &conflictError{msg: msg, kind: kind}
}
