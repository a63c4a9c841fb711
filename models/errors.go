package models

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can tell failures apart without
// matching on messages.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindAuthorization
	KindInvalidTransition
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindAuthorization:
		return "authorization"
	case KindInvalidTransition:
		return "invalid transition"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

// Sentinels for errors.Is. They match any Error of the same kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrPersistence       = &Error{Kind: KindPersistence}
)

// ErrUnauthenticated is wrapped by authorization errors raised for a missing
// identity, letting transports answer "please log in" instead of "forbidden".
var ErrUnauthenticated = errors.New("unauthenticated")

type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(op, format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Unauthenticated(op string) error {
	return &Error{Kind: KindAuthorization, Op: op, Msg: "please log in", Err: ErrUnauthenticated}
}

func InvalidTransition(op string, from, to OrderStatus) error {
	return &Error{Kind: KindInvalidTransition, Op: op, Msg: fmt.Sprintf("invalid status change %s -> %s", from, to)}
}

func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Msg: "storage unavailable", Err: err}
}

// KindOf returns the kind of the first Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
