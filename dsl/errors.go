// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dsl

import "fmt"

// Diagnostic is one error or warning produced while scanning, parsing, or
// type-checking a code fragment, anchored to the position it came from.
type Diagnostic struct {
	Pos Position
	Err error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Pos, d.Err)
}

// ErrorHandler collects diagnostics produced across an entire fragment
// rather than stopping at the first one, the way a single compile error
// would hide everything after it.
type ErrorHandler struct {
	Diagnostics []Diagnostic
}

func (h *ErrorHandler) Error(pos Position, err error) {
	h.Diagnostics = append(h.Diagnostics, Diagnostic{Pos: pos, Err: err})
}

func (h *ErrorHandler) Errorf(pos Position, format string, args ...any) {
	h.Error(pos, fmt.Errorf(format, args...))
}

func (h *ErrorHandler) HasErrors() bool { return len(h.Diagnostics) > 0 }

func (h *ErrorHandler) Reset() { h.Diagnostics = nil }

// Sentinel errors named so callers can test with errors.Is against the
// Err field of a Diagnostic.
var (
	ErrSyntax             = fmt.Errorf("syntax error")
	ErrType               = fmt.Errorf("type error")
	ErrUnknownIdentifier  = fmt.Errorf("unknown identifier")
	ErrWriteToReadOnly    = fmt.Errorf("write to read-only value")
	ErrWrongArity         = fmt.Errorf("wrong number of arguments")
	ErrUnterminatedString = fmt.Errorf("unterminated string literal")
)
