// Package apperrors classifies failures so the HTTP layer can map them to
// responses without inspecting messages.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnhandled Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindAuthorization
	KindImport
	KindTransientNotification
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthorization:
		return "authorization"
	case KindImport:
		return "import"
	case KindTransientNotification:
		return "transient_notification"
	}
	return "unhandled"
}

// Error is a classified error. Msg is safe to show to the user; Err is the
// underlying cause and is only logged, except for import errors.
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// ValidationFields carries per-field messages from form binding.
func ValidationFields(msg string, fields map[string]string) error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Msg: "login required"}
}

func Forbidden(action string) error {
	return &Error{Kind: KindAuthorization, Msg: fmt.Sprintf("role not allowed to %s", action)}
}

// Import wraps a spreadsheet failure. Unlike other kinds, the cause is part
// of the user-facing text since it names the offending row.
func Import(err error) error {
	return &Error{Kind: KindImport, Msg: "import failed", Err: err}
}

func Notification(err error) error {
	return &Error{Kind: KindTransientNotification, Msg: "notification not delivered", Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnhandled
}

// Is reports whether err is classified as k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
