// Package apperrors defines the typed failure taxonomy shared by the
// service layer and the HTTP surface. Callers match with errors.Is
// against the category sentinels and with errors.As against the
// detailed types when they need the underlying values.
package apperrors

import (
	"errors"
	"fmt"
)

// Category sentinels. Every error produced by the core unwraps to
// exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBusinessRule = errors.New("business rule violation")
	ErrValidation   = errors.New("validation error")
)

// NotFoundError reports a missing order, table, menu item, ingredient,
// recipe or booking.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound builds a NotFoundError for the given resource and key.
func NewNotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// ConflictError reports a state clash: an already-occupied table, a
// duplicate resource, a lost conditional update.
type ConflictError struct {
	Resource string
	Key      string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Resource, e.Key, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflict builds a ConflictError.
func NewConflict(resource, key, reason string) error {
	return &ConflictError{Resource: resource, Key: key, Reason: reason}
}

// InsufficientIngredientsError names the first ingredient that would go
// negative, with the amounts the caller needs to act on.
type InsufficientIngredientsError struct {
	Ingredient string
	Required   float64
	Available  float64
}

func (e *InsufficientIngredientsError) Error() string {
	return fmt.Sprintf("insufficient ingredient %q: need %.2f, have %.2f",
		e.Ingredient, e.Required, e.Available)
}

func (e *InsufficientIngredientsError) Unwrap() error { return ErrBusinessRule }

// InvalidTransitionError reports an order status move the lifecycle
// does not permit.
type InvalidTransitionError struct {
	OrderID string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: invalid status transition %s -> %s", e.OrderID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrBusinessRule }

// BookingConflictError reports a reservation whose padded window
// intersects an existing active booking on the same table.
type BookingConflictError struct {
	TableID   int
	BookingID string
}

func (e *BookingConflictError) Error() string {
	return fmt.Sprintf("table %d: requested window conflicts with active booking %s", e.TableID, e.BookingID)
}

func (e *BookingConflictError) Unwrap() error { return ErrConflict }

// NewValidation builds a formatted validation error.
func NewValidation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewBusinessRule builds a formatted business rule violation.
func NewBusinessRule(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBusinessRule, fmt.Sprintf(format, args...))
}
