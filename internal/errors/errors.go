// Package errors holds the structured errors nbwatch shows to users.
package errors

import (
	"errors"
	"strings"
)

// Code says which stage of nbwatch failed.
type Code string

const (
	ErrConfig    Code = "CONFIG"    // loading or validating configuration
	ErrTransport Code = "TRANSPORT" // talking to the agent
	ErrParse     Code = "PARSE"     // reading the state document
	ErrRender    Code = "RENDER"    // drawing output
)

// Error is a failure with a user-facing message and an optional hint.
// Error() lays it out as:
//
//	✗ <message>
//
//	  <cause>
//
//	  <suggestion>
type Error struct {
	Code       Code
	Message    string
	Suggestion string
	Cause      error
}

// New returns an Error without a cause.
func New(code Code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// Wrap attaches a message to err. Most wrapped failures in nbwatch come
// from the network, so the code is ErrTransport.
func Wrap(err error, message string) *Error {
	return &Error{Code: ErrTransport, Message: message, Cause: err}
}

// WrapWithCode attaches a code, message and suggestion to err.
func WrapWithCode(err error, code Code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("✗ ")
	b.WriteString(e.Message)
	b.WriteByte('\n')
	for _, extra := range []string{e.causeText(), e.Suggestion} {
		if extra == "" {
			continue
		}
		b.WriteString("\n  ")
		b.WriteString(extra)
		b.WriteByte('\n')
	}
	return b.String()
}

func (e *Error) causeText() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether the first Error in err's chain has the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// CodeOf returns the code of the first Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
