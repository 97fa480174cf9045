package formula

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// ErrorKind classifies problems reported by the engine. Fatal kinds abort an
// evaluation; the others are warnings attached to a successful [Result].
type ErrorKind int

const (
	ParseFailure ErrorKind = iota
	ArityMismatch
	CircularReference
	UnknownVariable
	DivisionByZero
	EvaluationFailure
	InvalidResult
	RangeTruncated
)

//nolint:gochecknoglobals
var errorKindNames = [...]string{
	ParseFailure:      "parse_error",
	ArityMismatch:     "arity_error",
	CircularReference: "circular_reference",
	UnknownVariable:   "unknown_variable",
	DivisionByZero:    "division_by_zero",
	EvaluationFailure: "evaluation_error",
	InvalidResult:     "invalid_result",
	RangeTruncated:    "range_truncated",
}

// String returns the snake_case wire name of k.
func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}

	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes k by its wire name.
func (k ErrorKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a wire name.
func (k *ErrorKind) UnmarshalText(b []byte) error {
	for i, name := range errorKindNames {
		if name == string(b) {
			*k = ErrorKind(i)

			return nil
		}
	}

	return ErrInvalidKind.With(slog.String("kind", string(b)))
}

// Fatal reports whether k aborts evaluation. [UnknownVariable] is fatal only
// in strict mode, so it is not reported here.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ParseFailure, ArityMismatch, CircularReference, EvaluationFailure:
		return true
	}

	return false
}

// Predefined errors (sentinel values).
var (
	ErrParse           = NewError("parse error")
	ErrArity           = NewError("wrong number of arguments")
	ErrCircular        = NewError("circular reference")
	ErrUnknownVariable = NewError("unknown variable")
	ErrEvaluate        = NewError("evaluation failed")
	ErrTooLong         = NewError("expression too long")
	ErrInvalidKind     = NewError("invalid error kind")
)

// Error is an error with structured logging attributes.
// It implements both error and slog.LogValuer.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error { return &Error{msg: msg} }

// Error implements the error interface as "<msg>: <cause>", omitting
// whichever part is empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches sentinels by identity of message so that errors derived through
// [Error.Wrap] and [Error.With] still satisfy errors.Is against the original.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.err == nil && len(t.attrs) == 0 && t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e carrying additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(append(merged, e.attrs...), attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: merged}
}

// ParseError describes a rejected expression.
type ParseError struct {
	Kind   ErrorKind // ParseFailure or ArityMismatch
	Offset int       // byte offset into Source, -1 if unknown
	Detail string
	Source string
}

func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Detail)

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	return b.String()
}

// Unwrap maps the parse error onto its sentinel.
func (e *ParseError) Unwrap() error {
	if e.Kind == ArityMismatch {
		return ErrArity
	}

	return ErrParse
}

// Snippet renders the offending line of Source with a caret under Offset.
// It returns "" when there is no position to point at.
func (e *ParseError) Snippet() string {
	if e.Source == "" || e.Offset < 0 || e.Offset > len(e.Source) {
		return ""
	}

	return e.Source + "\n" + strings.Repeat(" ", len([]rune(e.Source[:e.Offset]))) + "^"
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", e.Kind.String()),
		slog.String("detail", e.Detail),
		slog.Int("offset", e.Offset),
		slog.String("source", e.Source),
	)
}

func newParseError(kind ErrorKind, src string, off int, detail string) *ParseError {
	return &ParseError{Kind: kind, Offset: off, Detail: detail, Source: src}
}
