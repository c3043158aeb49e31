// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrSelfReview       = errors.New("cannot review own trade")
	ErrInactiveProfile  = errors.New("profile is deactivated")
	ErrScoreRequired    = errors.New("score required")
	ErrInputValidation  = errors.New("input validation failed")
	ErrDataNotFound     = errors.New("data not found")
	ErrInvalidState     = errors.New("invalid review transition")
	ErrRiskLocked       = errors.New("daily risk limit reached")
	ErrTransientIO      = errors.New("transient store failure")
	ErrDatabaseError    = errors.New("database error")
	ErrTimeout          = errors.New("operation timed out")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// AuthorizationError is returned when the actor lacks the role or ownership an action requires.
type AuthorizationError struct {
	Action  string
	ActorID string
	Reason  error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization error [%s] actor %s: %v", e.Action, e.ActorID, e.Reason)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Reason
}

// Is lets errors.Is(err, ErrNotAuthorized) match every authorization failure.
func (e *AuthorizationError) Is(target error) bool {
	return target == ErrNotAuthorized
}

// NewAuthorizationError creates a new AuthorizationError.
func NewAuthorizationError(action, actorID string, reason error) *AuthorizationError {
	if reason == nil {
		reason = ErrNotAuthorized
	}
	return &AuthorizationError{
		Action:  action,
		ActorID: actorID,
		Reason:  reason,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NotFoundError is returned when a referenced trade or profile does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrDataNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// TransientIOError wraps a store failure that may succeed if the caller retries.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient error [%s]: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransientIO) match every transient failure.
func (e *TransientIOError) Is(target error) bool {
	return target == ErrTransientIO
}

// NewTransientIOError creates a new TransientIOError.
func NewTransientIOError(op string, err error) *TransientIOError {
	return &TransientIOError{Op: op, Err: err}
}

// InvalidTransitionError is returned when a review action is not allowed from the trade's state.
type InvalidTransitionError struct {
	TradeID string
	From    string
	Action  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition [%s] trade %s: cannot %s from %s", e.Action, e.TradeID, e.Action, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidState
}

// NewInvalidTransitionError creates a new InvalidTransitionError.
func NewInvalidTransitionError(tradeID, from, action string) *InvalidTransitionError {
	return &InvalidTransitionError{TradeID: tradeID, From: from, Action: action}
}

// RiskError represents a risk management error.
type RiskError struct {
	Rule    string
	Current float64
	Limit   float64
	Message string
}

func (e *RiskError) Error() string {
	return fmt.Sprintf("risk violation [%s]: %s (current: %.2f, limit: %.2f)", e.Rule, e.Message, e.Current, e.Limit)
}

func (e *RiskError) Unwrap() error {
	return ErrRiskLocked
}

// NewRiskError creates a new RiskError.
func NewRiskError(rule string, current, limit float64, message string) *RiskError {
	return &RiskError{
		Rule:    rule,
		Current: current,
		Limit:   limit,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientIO) || errors.Is(err, context.DeadlineExceeded)
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDataNotFound)
}
