/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package oserr is the error type returned by every osreason package.
//
// An Error carries a Code (what kind of failure), an optional Reason (which
// component and step), a human message, optional details and the wrapped
// cause. errors.Is against the package sentinels matches on Code, so callers
// can branch without string comparison:
//
//	if errors.Is(err, oserr.ErrOutOfMemory) {
//	    // degrade: report the record without a payload
//	}
package oserr

import (
	"errors"
	"fmt"
	"sort"

	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/reason"
)

// Error is a classified failure.
//
// WithX helpers return shallow copies, so a value can be shared between
// goroutines and decorated without locking.
type Error struct {
	// Code is required and always one of the constants in package code.
	Code code.Code

	// Reason names the component and step, e.g. "tlv.reserve". May be empty.
	Reason reason.Reason

	// Message is the human-readable description.
	Message string

	// Details holds extra structured fields such as requested and
	// available sizes. Treated as immutable.
	Details map[string]any

	// Cause is the wrapped underlying error, if any.
	Cause error
}

// Sentinels for errors.Is. Only Code is compared.
var (
	ErrInvalidArgument = &Error{Code: code.InvalidArgument, Message: "invalid argument"}
	ErrOutOfMemory     = &Error{Code: code.OutOfMemory, Message: "out of memory"}
	ErrEncoding        = &Error{Code: code.Encoding, Message: "encoding error"}
	ErrNoSpace         = &Error{Code: code.NoSpace, Message: "no space left in buffer"}
	ErrOutOfRange      = &Error{Code: code.OutOfRange, Message: "address out of range"}
	ErrReleased        = &Error{Code: code.Released, Message: "record already released"}
)

var (
	_ apis.CodedError    = (*Error)(nil)
	_ apis.ReasonedError = (*Error)(nil)
	_ apis.DetailedError = (*Error)(nil)
)

// E builds a new Error and applies opts in order.
//
//	return oserr.E(code.NoSpace, "chunk does not fit",
//	    oserr.WithReasonOption(reasonReserve),
//	    oserr.WithDetailOption("need", need),
//	)
func E(c code.Code, msg string, opts ...Option) *Error {
	e := &Error{Code: c, Message: msg}
	for _, opt := range opts {
		e = opt(e)
	}
	return e
}

// Errorf is E with a formatted message and no options.
func Errorf(c code.Code, r reason.Reason, format string, args ...any) *Error {
	return &Error{Code: c, Reason: r, Message: fmt.Sprintf(format, args...)}
}

// Error renders "<code>: <message>" or "<code>:<reason>: <message>", with
// ": <cause>" appended when a cause is attached.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.Code) + ": " + e.Message
	if e.Reason != reason.Empty {
		s = fmt.Sprintf("%s:%s: %s", e.Code, e.Reason, e.Message)
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error with the same Code. A target carrying a Reason
// must match that too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == reason.Empty || t.Reason == e.Reason
}

// ErrorCode implements apis.CodedError.
func (e *Error) ErrorCode() string { return string(e.Code) }

// ErrorReason implements apis.ReasonedError.
func (e *Error) ErrorReason() string { return string(e.Reason) }

// ErrorDetails implements apis.DetailedError. Details are flattened into
// one apis.Detail per key, sorted by key.
func (e *Error) ErrorDetails() []apis.Detail {
	if len(e.Details) == 0 {
		return nil
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]apis.Detail, 0, len(keys))
	for _, k := range keys {
		out = append(out, apis.Detail{
			Type:  "extra",
			Field: k,
			Info:  map[string]string{"value": fmt.Sprint(e.Details[k])},
		})
	}
	return out
}

// WithReason returns a copy of e with Reason set.
func (e *Error) WithReason(r reason.Reason) *Error {
	cp := *e
	cp.Reason = r
	return &cp
}

// WithMessage returns a copy of e with a replaced message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithDetail returns a copy of e with one more detail. The map is copied.
func (e *Error) WithDetail(k string, v any) *Error {
	cp := *e
	m := make(map[string]any, len(cp.Details)+1)
	for k0, v0 := range cp.Details {
		m[k0] = v0
	}
	m[k] = v
	cp.Details = m
	return &cp
}

// WithCause returns a copy of e wrapping err. A nil err returns e as is.
func (e *Error) WithCause(err error) *Error {
	if err == nil {
		return e
	}
	cp := *e
	cp.Cause = err
	return &cp
}

// CodeOf returns the Code of the first *Error in err's chain, Internal for
// any other non-nil error and Empty for nil.
func CodeOf(err error) code.Code {
	if err == nil {
		return code.Empty
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return code.Internal
}

// As returns the first *Error in err's chain. Foreign errors are wrapped
// as code.Internal so transport adapters always have something to map.
func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return &Error{Code: code.Internal, Message: err.Error(), Cause: err}, false
}
