package client

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rpggio/projector/internal/api"
	"github.com/rpggio/projector/internal/transport"
)

// Kind classifies service failures.
type Kind int

const (
	Unknown Kind = iota
	NotFound
	ValidationFailed
	Timeout
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case ValidationFailed:
		return "validation failed"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ServiceError is returned by every Client operation that fails.
type ServiceError struct {
	Op   string
	Kind Kind
	Err  error
}

// Sentinels for errors.Is; they match any ServiceError of the same Kind.
var (
	ErrNotFound         = &ServiceError{Kind: NotFound}
	ErrValidationFailed = &ServiceError{Kind: ValidationFailed}
	ErrTimeout          = &ServiceError{Kind: Timeout}
	ErrUnknown          = &ServiceError{Kind: Unknown}
)

func (e *ServiceError) Error() string {
	if e.Op == "" {
		return e.Kind.String()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or Unknown when err is not a ServiceError.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return Unknown
}

func newError(op string, kind Kind, err error) *ServiceError {
	return &ServiceError{Op: op, Kind: kind, Err: err}
}

// classify turns a transport or RPC failure into a ServiceError.
func classify(op string, err error) *ServiceError {
	var rpcErr *transport.Error
	if errors.As(err, &rpcErr) {
		return newError(op, kindForRPC(rpcErr), rpcErr)
	}
	if isTimeout(err) {
		return newError(op, Timeout, err)
	}
	return newError(op, Unknown, err)
}

func kindForRPC(rpcErr *transport.Error) Kind {
	if rpcErr.Data == nil {
		if rpcErr.Code == transport.ErrInvalidParams {
			return ValidationFailed
		}
		return Unknown
	}
	switch rpcErr.Data.Code {
	case api.CodeNotFound:
		return NotFound
	case api.CodeValidationFailed, api.CodeConflict:
		return ValidationFailed
	default:
		return Unknown
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
