// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package yamlerr renders parse and pack failures as
// "<file>:<line>:<col>: <message>" plus the offending source line and a
// caret, with including-chain frames prepended when the failure
// originated in a subfile.
package yamlerr

import (
	"fmt"
	"strings"

	"github.com/yinclang/yinc/pkg/filepos"
)

// Kind is one of the fixed error kind names the component design mandates;
// these strings surface verbatim in rendered messages.
type Kind string

const (
	InvalidKey                       Kind = "invalid key"
	ExpectedString                    Kind = "expected string"
	MissingData                      Kind = "missing data"
	WrongTypeOfData                  Kind = "wrong type of data"
	WrongIndentation                 Kind = "wrong indentation"
	WrongObject                      Kind = "wrong object"
	TabCharacterDetected              Kind = "tab character detected"
	InvalidTag                       Kind = "invalid tag"
	ExtraCharactersAfterData         Kind = "extra characters after data"
	InvalidInclude                   Kind = "invalid include"
	CannotChangeTypesOfDataInOverride Kind = "cannot change types of data in override"
)

// Error is a single lexical/structural/override failure, anchored to a
// span and optionally carrying the offending source line for the
// caret-style rendering.
type Error struct {
	Kind       Kind
	Detail     string
	Span       filepos.Span
	SourceLine string
	cause      error
}

func New(kind Kind, detail string, span filepos.Span) *Error {
	return &Error{Kind: kind, Detail: detail, Span: span}
}

func Newf(kind Kind, span filepos.Span, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...), span)
}

// WithSourceLine attaches the raw source line the span starts on, used for
// the caret-indication render.
func (e *Error) WithSourceLine(line string) *Error {
	e.SourceLine = line
	return e
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Error() string {
	pos := e.Span.Start
	msg := fmt.Sprintf("%s: %s: %s", pos.AsCompactString(), e.Kind, e.Detail)
	if e.SourceLine == "" {
		return msg
	}
	return fmt.Sprintf("%s\n%s\n%s", msg, e.SourceLine, caret(pos.ColNum()))
}

func caret(col int) string {
	if col < 1 {
		col = 1
	}
	return strings.Repeat(" ", col-1) + "^"
}

// ChainedError prepends "error in included file" frames around a cause,
// one per including site, outermost printed last (closest to the root
// cause), mirroring the error reporter's recursive-prepend rule.
type ChainedError struct {
	Frames []*filepos.Position
	Cause  error
}

// WithIncludeChain wraps err with the given chain of including positions
// (innermost-include-first, as produced by walking `included.parent`
// back-pointers). A nil/empty chain returns err unchanged.
func WithIncludeChain(err error, chain []*filepos.Position) error {
	if len(chain) == 0 || err == nil {
		return err
	}
	return &ChainedError{Frames: chain, Cause: err}
}

func (c *ChainedError) Unwrap() error { return c.Cause }

func (c *ChainedError) Error() string {
	msg := c.Cause.Error()
	for _, f := range c.Frames {
		msg = fmt.Sprintf("error in included file: %s\n%s", f.AsCompactString(), msg)
	}
	return msg
}
