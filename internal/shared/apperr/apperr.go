package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a request-terminal failure.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindInvalidInput
	KindConflict
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func InvalidInput(msg string) error    { return &Error{Kind: KindInvalidInput, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }

// KindOf returns the classification of err, or 0 when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// HTTPStatus maps a classified error to its response status.
// Unclassified errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindInvalidInput:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
