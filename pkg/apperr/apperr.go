// Package apperr carries the error taxonomy shared by every transport. An
// error that implements Coded knows its gRPC code and a stable reason string;
// HTTP and gRPC adapters derive their responses from those two values.
package apperr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Coded interface {
	error
	Code() codes.Code
	Reason() string
}

// Retryable is implemented by errors the caller may safely retry from the top.
type Retryable interface {
	Retryable() bool
}

// Detailer exposes structured fields for error bodies.
type Detailer interface {
	Details() map[string]any
}

// Error is a plain coded error, mostly used for sentinels.
type Error struct {
	code    codes.Code
	reason  string
	message string
}

func New(code codes.Code, reason, message string) *Error {
	return &Error{code: code, reason: reason, message: message}
}

func (e *Error) Error() string    { return e.message }
func (e *Error) Code() codes.Code { return e.code }
func (e *Error) Reason() string   { return e.reason }

var (
	ErrUnauthenticated = New(codes.Unauthenticated, "UNAUTHENTICATED", "authentication required")
	ErrForbidden       = New(codes.PermissionDenied, "FORBIDDEN", "not allowed")
)

type ValidationError struct {
	Field   string
	Message string
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Code() codes.Code { return codes.InvalidArgument }
func (e *ValidationError) Reason() string   { return "VALIDATION_FAILED" }

func (e *ValidationError) Details() map[string]any {
	if e.Field == "" {
		return nil
	}
	return map[string]any{"field": e.Field}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("%s not found: %s", e.Resource, e.ID) }
func (e *NotFoundError) Code() codes.Code { return codes.NotFound }
func (e *NotFoundError) Reason() string   { return "NOT_FOUND" }

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// CodeOf returns the gRPC code and reason of err. Unknown errors are Internal.
func CodeOf(err error) (codes.Code, string) {
	if err == nil {
		return codes.OK, ""
	}
	var c Coded
	if errors.As(err, &c) {
		return c.Code(), c.Reason()
	}
	return codes.Internal, "INTERNAL"
}

func IsRetryable(err error) bool {
	var r Retryable
	return errors.As(err, &r) && r.Retryable()
}

func DetailsOf(err error) map[string]any {
	var d Detailer
	if errors.As(err, &d) {
		return d.Details()
	}
	return nil
}

// GRPCError converts err into a status error. Internal errors never leak their
// message to the client.
func GRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code, _ := CodeOf(err)
	if code == codes.Internal {
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
