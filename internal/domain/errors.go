package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller: what went wrong, not where.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindUpstream
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindStore:
		return "store"
	default:
		return "server"
	}
}

// Error carries a user-facing message alongside the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the text shown to API consumers.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// Store wraps a database failure; the message is the database's own.
func Store(err error) error {
	return &Error{Kind: KindStore, Err: err}
}

func Server(msg string, err error) error {
	return &Error{Kind: KindServer, Msg: msg, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are server errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
