package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// UnauthorizedError means there is no usable session or the session role is insufficient.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return "unauthorized: " + e.Msg
	}
	return "unauthorized"
}

// ForbiddenError is an ownership failure: authenticated, but not the owner of the resource.
type ForbiddenError struct {
	Resource string
	Msg      string
}

func (e ForbiddenError) Error() string {
	switch {
	case e.Msg != "":
		return "forbidden: " + e.Msg
	case e.Resource != "":
		return fmt.Sprintf("forbidden: not allowed to access %s", e.Resource)
	default:
		return "forbidden"
	}
}

type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

type InvalidSignatureError struct {
	Msg string
}

func (e InvalidSignatureError) Error() string {
	if e.Msg != "" {
		return "invalid signature: " + e.Msg
	}
	return "invalid signature"
}

type DuplicateReviewError struct {
	BookingID string
}

func (e DuplicateReviewError) Error() string {
	return fmt.Sprintf("booking %s has already been reviewed", e.BookingID)
}

// GatewayError wraps any failure talking to the payment gateway.
type GatewayError struct {
	Op  string
	Err error
}

func (e GatewayError) Error() string {
	if e.Err == nil {
		return "gateway error: " + e.Op
	}
	return fmt.Sprintf("gateway error: %s: %v", e.Op, e.Err)
}

func (e GatewayError) Unwrap() error { return e.Err }

// StoreError wraps any failure of the persistent store.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return "store error: " + e.Op
	}
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsInvalidSignature(err error) bool {
	var target InvalidSignatureError
	return errors.As(err, &target)
}

func IsDuplicateReview(err error) bool {
	var target DuplicateReviewError
	return errors.As(err, &target)
}

func IsGateway(err error) bool {
	var target GatewayError
	return errors.As(err, &target)
}

func IsStore(err error) bool {
	var target StoreError
	return errors.As(err, &target)
}
