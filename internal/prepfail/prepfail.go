// Package prepfail defines the failure taxonomy shared by the analyzer,
// assembler, config and notes packages.
//
// Every operation-level failure is an *Error carrying a Kind. Callers test
// the kind with errors.Is against the sentinel values:
//
//	if errors.Is(err, prepfail.ErrNotFound) { ... }
package prepfail

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindSizeLimit  Kind = "size_limit"
	KindIO         Kind = "io"
)

// Sentinels for errors.Is checks.
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
	ErrSizeLimit  = &Error{Kind: KindSizeLimit}
	ErrIO         = &Error{Kind: KindIO}
)

// Error is a classified failure with an optional path and cause.
type Error struct {
	Kind Kind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels work with
// errors.Is regardless of path or message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NotFound reports a missing root, file or directory.
func NotFound(path string) error {
	return &Error{Kind: KindNotFound, Path: path, Msg: "not found"}
}

// Validation reports rejected input.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// SizeLimit reports content exceeding a configured ceiling.
func SizeLimit(path string, size, limit int64) error {
	return &Error{
		Kind: KindSizeLimit,
		Path: path,
		Msg:  fmt.Sprintf("size %d exceeds limit %d", size, limit),
	}
}

// IO wraps a filesystem failure.
func IO(op, path string, err error) error {
	return &Error{Kind: KindIO, Path: path, Msg: op, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
