// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlerr"
)

// parseFlowSequence parses a "[ ... ]" flow sequence. Elements are
// separated by ',' with a trailing comma accepted; each element may be a
// scalar, a nested flow container, or an implicit single-entry mapping
// ("key: value") surfaced as an inline one-key Mapping.
func (ctx *parseContext) parseFlowSequence(path presentation.Path) (*Sequence, error) {
	startPos := ctx.currentPosition()
	ctx.advance() // '['
	ctx.markFlow(path)

	seq := &Sequence{Position: startPos, NodePath: path}

	for i := 0; ; {
		if err := ctx.skipFlowWhitespace(); err != nil {
			return nil, err
		}
		if ctx.atEOF() {
			return nil, ctx.errorf(yamlerr.MissingData, "unterminated flow sequence")
		}
		if ctx.current() == ']' {
			ctx.advance()
			break
		}

		itemPath := path.Index(i)
		item, err := ctx.parseFlowElement(itemPath)
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, item)
		i++

		if err := ctx.skipFlowWhitespace(); err != nil {
			return nil, err
		}
		if ctx.atEOF() {
			return nil, ctx.errorf(yamlerr.MissingData, "unterminated flow sequence")
		}
		switch ctx.current() {
		case ',':
			ctx.advance()
		case ']':
			ctx.advance()
			return seq, nil
		default:
			return nil, ctx.errorf(yamlerr.WrongObject, "expected ',' or ']' in flow sequence")
		}
	}

	return seq, nil
}

// parseFlowElement parses a single flow-sequence element: a nested flow
// container, or a scalar that might turn out to be the key of an implicit
// single-entry mapping ("key: value") once a ':' follows it.
func (ctx *parseContext) parseFlowElement(path presentation.Path) (Node, error) {
	if ctx.current() == '[' {
		return ctx.parseFlowSequence(path)
	}
	if ctx.current() == '{' {
		return ctx.parseFlowMapping(path)
	}

	if key, consumed, ok := ctx.peekFlowMappingKey(); ok {
		keyPos := ctx.currentPosition()
		for i := 0; i < consumed; i++ {
			ctx.advance()
		}
		ctx.advance() // ':'
		if ctx.current() == ' ' {
			ctx.advance()
		}
		if strKeyIsVariable(key) {
			return nil, ctx.errorf(yamlerr.InvalidKey, "variables are not allowed as keys outside override context")
		}

		entryPath := path.Key(key)
		val, err := ctx.parseFlowScalarOrContainer(entryPath)
		if err != nil {
			return nil, err
		}
		if err := ctx.rejectSecondColon(); err != nil {
			return nil, err
		}

		m := &Mapping{Position: keyPos, NodePath: path}
		m.Items = append(m.Items, &MapEntry{Key: key, KeyPos: keyPos, Value: val, NodePath: entryPath})
		ctx.markFlow(path)
		return m, nil
	}

	return ctx.parseFlowScalar(path)
}

// parseFlowMapping parses a "{ ... }" flow mapping. Only "key: value"
// entries are accepted; a bare value is rejected, as are duplicate keys.
func (ctx *parseContext) parseFlowMapping(path presentation.Path) (*Mapping, error) {
	startPos := ctx.currentPosition()
	ctx.advance() // '{'
	ctx.markFlow(path)

	m := &Mapping{Position: startPos, NodePath: path}

	for {
		if err := ctx.skipFlowWhitespace(); err != nil {
			return nil, err
		}
		if ctx.atEOF() {
			return nil, ctx.errorf(yamlerr.MissingData, "unterminated flow mapping")
		}
		if ctx.current() == '}' {
			ctx.advance()
			break
		}

		keyPos := ctx.currentPosition()
		key, consumed, ok := ctx.peekFlowMappingKey()
		if !ok {
			return nil, ctx.errorf(yamlerr.WrongObject, "only key-value mappings are allowed inside an object")
		}
		for i := 0; i < consumed; i++ {
			ctx.advance()
		}
		ctx.advance() // ':'
		if ctx.current() == ' ' {
			ctx.advance()
		}
		if strKeyIsVariable(key) {
			return nil, ctx.errorf(yamlerr.InvalidKey, "variables are not allowed as keys outside override context")
		}

		if m.Has(key) {
			return nil, ctx.errorf(yamlerr.InvalidKey, "duplicate key '%s'", key)
		}

		entryPath := path.Key(key)
		val, err := ctx.parseFlowScalarOrContainer(entryPath)
		if err != nil {
			return nil, err
		}
		if err := ctx.rejectSecondColon(); err != nil {
			return nil, err
		}

		m.Items = append(m.Items, &MapEntry{Key: key, KeyPos: keyPos, Value: val, NodePath: entryPath})

		if err := ctx.skipFlowWhitespace(); err != nil {
			return nil, err
		}
		if ctx.atEOF() {
			return nil, ctx.errorf(yamlerr.MissingData, "unterminated flow mapping")
		}
		switch ctx.current() {
		case ',':
			ctx.advance()
		case '}':
			ctx.advance()
			return m, nil
		default:
			return nil, ctx.errorf(yamlerr.WrongObject, "expected ',' or '}' in flow mapping")
		}
	}

	return m, nil
}

// parseFlowScalarOrContainer dispatches a flow value position to either a
// nested container or a plain scalar.
func (ctx *parseContext) parseFlowScalarOrContainer(path presentation.Path) (Node, error) {
	if err := ctx.skipFlowWhitespace(); err != nil {
		return nil, err
	}
	switch ctx.current() {
	case '[':
		return ctx.parseFlowSequence(path)
	case '{':
		return ctx.parseFlowMapping(path)
	default:
		return ctx.parseFlowScalar(path)
	}
}

// rejectSecondColon enforces "key: value: value is unexpected colon" by
// checking, after a flow value has been parsed, whether the very next
// non-space byte is a second ':' on the same entry.
func (ctx *parseContext) rejectSecondColon() error {
	// skip spaces only (not commas/brackets, which legitimately follow)
	i := 0
	for ctx.peekAt(i) == ' ' {
		i++
	}
	if ctx.peekAt(i) == ':' {
		for j := 0; j < i; j++ {
			ctx.advance()
		}
		return ctx.errorf(yamlerr.WrongObject, "unexpected colon")
	}
	return nil
}

// parseFlowScalar parses a scalar token inside flow context: a quoted
// string, or a run of plain characters up to any of ",]}#\n".
func (ctx *parseContext) parseFlowScalar(path presentation.Path) (*Scalar, error) {
	pos := ctx.currentPosition()

	if ctx.current() == '"' {
		ctx.advance()
		body := ctx.rest()
		decoded, n, err := unescapeQuoted(body)
		if err != nil {
			return nil, ctx.errorf(yamlerr.WrongTypeOfData, "%s", err.Error())
		}
		for i := 0; i < n; i++ {
			ctx.advance()
		}
		kind, val := classifyQuotedString(decoded)
		s := &Scalar{SubKind: kind, Value: val, Position: pos, NodePath: path}
		ctx.recordScalarVariables(decoded, s)
		return s, nil
	}

	start := ctx.pos
	for !ctx.atEOF() && !isFlowScalarTerminator(ctx.current()) {
		ctx.advance()
	}
	raw := trimTrailingSpace(ctx.data[start:ctx.pos])
	if raw == "" {
		return nil, ctx.errorf(yamlerr.MissingData, "expected a value")
	}

	kind, val := classifyScalar(raw)
	s := &Scalar{SubKind: kind, Value: val, Position: pos, NodePath: path}
	ctx.recordScalarVariables(raw, s)
	return s, nil
}

func isFlowScalarTerminator(c byte) bool {
	switch c {
	case ',', ']', '}', '#', '\n', '\r':
		return true
	default:
		return false
	}
}

// skipFlowWhitespace advances over spaces, newlines, and comments within a
// flow container; flow containers may legally span multiple lines.
func (ctx *parseContext) skipFlowWhitespace() error {
	return ctx.consumeWhitespaceAndComments()
}

// peekFlowMappingKey looks ahead for a "key:" token inside flow context,
// stopping at any flow terminator instead of at newline only.
func (ctx *parseContext) peekFlowMappingKey() (string, int, bool) {
	if ctx.current() == '"' {
		body := ctx.rest()[1:]
		key, n, err := unescapeQuoted(body)
		if err != nil {
			return "", 0, false
		}
		after := 1 + n
		if ctx.peekAt(after) != ':' {
			return "", 0, false
		}
		next := ctx.peekAt(after + 1)
		if next == ' ' || next == ',' || next == ']' || next == '}' || next == '\n' || next == '\r' || next == 0 {
			return key, after, true
		}
		return "", 0, false
	}

	i := 0
	for {
		c := ctx.peekAt(i)
		if c == 0 || isFlowScalarTerminator(c) {
			return "", 0, false
		}
		if c == ':' {
			if i == 0 {
				return "", 0, false
			}
			next := ctx.peekAt(i + 1)
			if next == ' ' || next == ',' || next == ']' || next == '}' || next == '\n' || next == '\r' || next == 0 {
				return ctx.data[ctx.pos : ctx.pos+i], i, true
			}
			return "", 0, false
		}
		if c == ' ' {
			return "", 0, false
		}
		i++
	}
}

// markFlow sets the flow-style hint on path's presentation node, when
// presentation tracking is enabled.
func (ctx *parseContext) markFlow(path presentation.Path) {
	if !ctx.opts.GeneratePresentation {
		return
	}
	ctx.pres.Get(path).FlowMode = true
}

func strKeyIsVariable(key string) bool {
	return len(key) > 0 && key[0] == '$'
}
