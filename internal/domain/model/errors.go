package model

import (
	"errors"
	"fmt"
)

// ErrorKind tells the transport who is at fault for a failed decision.
type ErrorKind int

const (
	// KindClient marks a malformed request or an unknown applicant.
	KindClient ErrorKind = iota + 1
	// KindServer marks inconsistent data on the bank's side.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinel reasons. Match them with errors.Is.
var (
	ErrAmountTooLow       = errors.New("amount too low")
	ErrAmountTooHigh      = errors.New("amount too high")
	ErrPeriodTooLong      = errors.New("period too long")
	ErrPeriodTooShort     = errors.New("period too short")
	ErrAccountNotFound    = errors.New("no such account")
	ErrInvalidProfileData = errors.New("invalid internal profile data")
)

// DecisionError is returned by the decision engine instead of a decision.
type DecisionError struct {
	Kind ErrorKind
	Err  error
}

func (e *DecisionError) Error() string { return e.Err.Error() }

func (e *DecisionError) Unwrap() error { return e.Err }

// ClientError wraps reason as a client-side failure with a formatted detail.
func ClientError(reason error, format string, args ...any) *DecisionError {
	return &DecisionError{Kind: KindClient, Err: withDetail(reason, format, args...)}
}

// ServerError wraps reason as a server-side failure with a formatted detail.
func ServerError(reason error, format string, args ...any) *DecisionError {
	return &DecisionError{Kind: KindServer, Err: withDetail(reason, format, args...)}
}

// IsClientError reports whether err is a client-side DecisionError.
func IsClientError(err error) bool {
	var de *DecisionError
	return errors.As(err, &de) && de.Kind == KindClient
}

// IsServerError reports whether err is a server-side DecisionError.
func IsServerError(err error) bool {
	var de *DecisionError
	return errors.As(err, &de) && de.Kind == KindServer
}

func withDetail(reason error, format string, args ...any) error {
	if format == "" {
		return reason
	}
	return fmt.Errorf("%w: %s", reason, fmt.Sprintf(format, args...))
}
