package gatepass

import (
	"campusgate/src/types"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
)

// Error is returned by every Service operation that fails for a reason the
// caller can act on. Match it with errors.Is against the Err* sentinels.
type Error struct {
	Kind     Kind
	Message  string
	Current  types.GatePassStatus
	Expected []types.GatePassStatus
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrValidation   = &Error{Kind: KindValidation}
)

func (e *Error) Error() string {
	if e.Kind == KindInvalidState && e.Current != "" {
		expected := make([]string, 0, len(e.Expected))
		for _, s := range e.Expected {
			expected = append(expected, string(s))
		}
		return fmt.Sprintf("%s: current status is %s, expected %s", e.Message, e.Current, strings.Join(expected, " or "))
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a gate-pass error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func notFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func invalidState(id uint, current types.GatePassStatus, expected []types.GatePassStatus) *Error {
	return &Error{
		Kind:     KindInvalidState,
		Message:  fmt.Sprintf("gate pass %d cannot be decided at this stage", id),
		Current:  current,
		Expected: expected,
	}
}
