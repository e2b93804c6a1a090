package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindServer
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by errors.Is against an *Error of the same kind
var (
	ErrNetwork = errors.New("network error")
	ErrServer  = errors.New("server error")
	ErrDecode  = errors.New("decode error")
)

// Error is returned by every Client call that fails
type Error struct {
	Kind       Kind
	Op         string // endpoint path, e.g. /logs/stream
	StatusCode int    // set for KindServer when the failure was an HTTP status
	Message    string // server-provided error text, if any
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Kind, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrServer:
		return e.Kind == KindServer
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// KindOf returns the kind of err, or 0 when err is not a client error
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}
