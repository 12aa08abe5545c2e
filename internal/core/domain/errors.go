package domain

import "errors"

// Error categories. Every error produced by the core belongs to exactly one of
// them and can be matched with errors.Is against the category sentinel.
var (
	ErrAuth       = errors.New("authentication error")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrBackend    = errors.New("backend error")
)

// AuthError reports bad credentials, a missing secret or a caller that is not
// allowed to act on a resource.
type AuthError struct{ Reason string }

func (e *AuthError) Error() string { return "auth: " + e.Reason }

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// NotFoundError reports an absent product, order or user.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return e.Kind + " not found: " + e.ID
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports malformed input: empty required fields, negative or
// non-numeric price/stock and similar.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return "invalid " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// BackendError wraps a failed call to the underlying storage service.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// NewBackendError wraps err as a BackendError unless it already carries one of
// the known categories.
func NewBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuth) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrBackend) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}

var (
	ErrInvalidCredentials = &AuthError{Reason: "invalid credentials"}
	ErrSecretRequired     = &AuthError{Reason: "secret is required"}
	ErrNoSession          = &AuthError{Reason: "no active session"}
	ErrNotOwner           = &AuthError{Reason: "product belongs to another seller"}
	ErrRoleRequired       = &AuthError{Reason: "role not permitted"}

	ErrUserNotFound    = &NotFoundError{Kind: "user"}
	ErrProductNotFound = &NotFoundError{Kind: "product"}
	ErrOrderNotFound   = &NotFoundError{Kind: "order"}

	ErrEmailTaken        = &ValidationError{Field: "email", Reason: "already registered"}
	ErrEmptyCart         = &ValidationError{Field: "cart", Reason: "cart is empty"}
	ErrInvalidRole       = &ValidationError{Field: "role", Reason: "must be customer or seller"}
	ErrInvalidStatus     = &ValidationError{Field: "status", Reason: "unknown order status"}
	ErrInvalidTransition = &ValidationError{Field: "status", Reason: "invalid status transition"}
)
