// services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Business error codes returned by the remote API in "error_code".
const (
	CodeNotAdmin         = "NOT_ADMIN"
	CodeCheckInNotOpen   = "CHECK_IN_NOT_OPEN"
	CodeCheckInClosed    = "CHECK_IN_CLOSED"
	CodeAlreadyCheckedIn = "ALREADY_CHECKED_IN"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeInvalidResponse  = "INVALID_RESPONSE"
)

var (
	ErrNoPendingScan = errors.New("no pending scan")
	ErrEmptyToken    = errors.New("token is required")
	ErrEmptyEventID  = errors.New("event id is required")
	ErrInvalidWindow = errors.New("check-in window closes before it opens")
)

// RemoteError is the classified failure of a call to a remote collaborator.
// ServerReached is true whenever the server produced a response; only a
// request that never got an answer is a transport failure.
type RemoteError struct {
	Op            string
	ServerReached bool
	StatusCode    int
	Code          string
	Message       string
	Cause         error
}

func (e *RemoteError) Error() string {
	switch {
	case !e.ServerReached:
		return fmt.Sprintf("%s: server unreachable: %v", e.Op, e.Cause)
	case e.Code != "":
		return fmt.Sprintf("%s: rejected [%s]: %s", e.Op, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: rejected (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
}

func (e *RemoteError) Unwrap() error { return e.Cause }

// NewTransportError builds a not-reached RemoteError.
func NewTransportError(op string, cause error) *RemoteError {
	return &RemoteError{Op: op, Cause: cause}
}

// NewDenial builds a server-reached RemoteError carrying a business code.
func NewDenial(op string, status int, code, message string) *RemoteError {
	return &RemoteError{Op: op, ServerReached: true, StatusCode: status, Code: code, Message: message}
}

// IsAuthoritativeDenial reports whether err is a structured, server-originated rejection.
func IsAuthoritativeDenial(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.ServerReached
}

// IsTransportFailure reports whether err proves the server was never reached.
func IsTransportFailure(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return !re.ServerReached
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

// ErrorCode returns the server's business code, or "" when there is none.
func ErrorCode(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
