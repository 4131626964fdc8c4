// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlerr"
)

// parseData is the single dispatch point every value in the tree passes
// through: it skips leading whitespace/comments, enforces the minimum
// indentation the caller requires, and then picks a production based on
// the first substantive character.
func (ctx *parseContext) parseData(minIndent int, path presentation.Path) (Node, error) {
	if err := ctx.consumeWhitespaceAndComments(); err != nil {
		return nil, err
	}
	if ctx.atEOF() {
		return nil, ctx.errorf(yamlerr.MissingData, "expected a value")
	}
	if ctx.col < minIndent {
		return nil, ctx.errorf(yamlerr.WrongIndentation, "expected indentation of at least %d, found %d", minIndent, ctx.col)
	}

	switch {
	case ctx.current() == '!':
		return ctx.parseTagged(minIndent, path)
	case ctx.atSequenceDash():
		return ctx.parseBlockSequence(minIndent, path)
	case ctx.current() == '[':
		return ctx.parseFlowSequence(path)
	case ctx.current() == '{':
		return ctx.parseFlowMapping(path)
	default:
		if _, _, ok := ctx.peekMappingKey(); ok {
			return ctx.parseBlockMapping(minIndent, path)
		}
		return ctx.parseScalarLine(path)
	}
}

func (ctx *parseContext) atSequenceDash() bool {
	if ctx.current() != '-' {
		return false
	}
	n := ctx.peekAt(1)
	return n == 0 || n == ' ' || n == '\t' || n == '\n' || n == '\r'
}

// parseTagged handles a leading "!name" tag: "include"/"includeraw" hand
// off to the inclusion resolver, any other name is recorded on whatever
// value follows.
func (ctx *parseContext) parseTagged(minIndent int, path presentation.Path) (Node, error) {
	tagPos := ctx.currentPosition()
	ctx.advance() // '!'

	name := ctx.scanTagName()
	if name == "" {
		return nil, ctx.errorf(yamlerr.InvalidTag, "expected a tag name after '!'")
	}
	if ctx.current() == ' ' {
		ctx.advance()
	}

	switch name {
	case "include", "includeraw":
		argVal, err := ctx.parseData(minIndent, path)
		if err != nil {
			return nil, err
		}
		argScalar, ok := argVal.(*Scalar)
		if !ok {
			return nil, ctx.errorf(yamlerr.ExpectedString, "%s argument must be a string", name)
		}
		argPath, ok := argScalar.AsString()
		if !ok {
			return nil, ctx.errorf(yamlerr.ExpectedString, "%s argument must be a string", name)
		}
		return ctx.resolveInclude(name == "includeraw", argPath, tagPos, minIndent, path)
	default:
		val, err := ctx.parseData(minIndent, path)
		if err != nil {
			return nil, err
		}
		val.SetTag(&Tag{Name: name, Position: tagPos})
		return val, nil
	}
}

func (ctx *parseContext) scanTagName() string {
	start := ctx.pos
	for !ctx.atEOF() && isTagNameByte(ctx.current()) {
		ctx.advance()
	}
	return ctx.data[start:ctx.pos]
}

func isTagNameByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseBlockSequence consumes a run of "- <item>" lines at a single
// column, per the block-sequence production: the dash's own column
// becomes the item's minimum indent, which is what lets a nested sequence
// dash line up directly under its parent dash.
func (ctx *parseContext) parseBlockSequence(minIndent int, path presentation.Path) (*Sequence, error) {
	startPos := ctx.currentPosition()
	dashCol := ctx.col

	seq := &Sequence{Position: startPos, NodePath: path}

	for i := 0; ; i++ {
		if err := ctx.consumeWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if ctx.atEOF() || ctx.col != dashCol || !ctx.atSequenceDash() {
			break
		}

		ctx.advance() // '-'
		if ctx.current() == ' ' {
			ctx.advance()
		}

		itemPath := path.Index(i)
		var item Node
		var err error
		if ctx.atLineEnd() {
			// Empty item: "-" alone on a line, value nests on following
			// lines indented past the dash.
			item, err = ctx.parseData(dashCol+1, itemPath)
		} else {
			item, err = ctx.parseData(dashCol, itemPath)
		}
		if err != nil {
			return nil, err
		}
		ctx.commit(itemPath)
		seq.Items = append(seq.Items, item)
	}

	if len(seq.Items) == 0 {
		return nil, ctx.errorf(yamlerr.MissingData, "expected at least one sequence item")
	}
	return seq, nil
}

// parseBlockMapping consumes a run of "key: value" entries at a single
// column.
func (ctx *parseContext) parseBlockMapping(minIndent int, path presentation.Path) (*Mapping, error) {
	startPos := ctx.currentPosition()
	keyCol := ctx.col

	m := &Mapping{Position: startPos, NodePath: path}

	for {
		if err := ctx.consumeWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if ctx.atEOF() || ctx.col != keyCol {
			break
		}
		if _, _, ok := ctx.peekMappingKey(); !ok {
			break
		}

		keyPos := ctx.currentPosition()
		key, consumed, ok := ctx.peekMappingKey()
		if !ok {
			break
		}
		for i := 0; i < consumed; i++ {
			ctx.advance()
		}
		// consume ':'
		ctx.advance()
		if ctx.current() == ' ' {
			ctx.advance()
		}

		if m.Has(key) {
			return nil, ctx.errorf(yamlerr.InvalidKey, "duplicate key '%s'", key)
		}

		entryPath := path.Key(key)
		childMinIndent := keyCol + 1
		if err := ctx.consumeWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if ctx.col == keyCol && ctx.atSequenceDash() {
			// A sequence dash is allowed to line up directly under its own
			// key, rather than needing to be indented past it.
			childMinIndent = keyCol
		}
		val, err := ctx.parseData(childMinIndent, entryPath)
		if err != nil {
			return nil, err
		}
		ctx.commit(entryPath)

		m.Items = append(m.Items, &MapEntry{Key: key, KeyPos: keyPos, Value: val, NodePath: entryPath})
	}

	if len(m.Items) == 0 {
		return nil, ctx.errorf(yamlerr.MissingData, "expected at least one mapping entry")
	}
	return m, nil
}

// peekMappingKey looks ahead from the current position, without consuming
// anything, for a "key:" token followed by whitespace, a newline, or EOF.
// It returns the decoded key text and the number of source bytes the key
// token itself occupies (not including the ':').
func (ctx *parseContext) peekMappingKey() (string, int, bool) {
	if ctx.current() == '"' {
		body := ctx.rest()[1:]
		key, n, err := unescapeQuoted(body)
		if err != nil {
			return "", 0, false
		}
		after := 1 + n // opening quote + consumed body (incl. closing quote)
		if ctx.peekAt(after) != ':' {
			return "", 0, false
		}
		next := ctx.peekAt(after + 1)
		if next == 0 || next == ' ' || next == '\n' || next == '\r' || next == '\t' {
			return key, after, true
		}
		return "", 0, false
	}

	i := 0
	for {
		c := ctx.peekAt(i)
		if c == 0 || c == '\n' || c == '\r' {
			return "", 0, false
		}
		if c == ':' {
			next := ctx.peekAt(i + 1)
			if i == 0 {
				return "", 0, false
			}
			if next == 0 || next == ' ' || next == '\n' || next == '\r' || next == '\t' {
				return ctx.data[ctx.pos : ctx.pos+i], i, true
			}
			return "", 0, false
		}
		if c == ' ' || c == '\t' {
			return "", 0, false
		}
		i++
	}
}

// parseScalarLine parses a single scalar token: a double-quoted string, or
// a run of plain characters up to (but not including) a comment or
// newline, trimmed of trailing whitespace.
func (ctx *parseContext) parseScalarLine(path presentation.Path) (*Scalar, error) {
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
	for !ctx.atEOF() && ctx.current() != '\n' && ctx.current() != '\r' && ctx.current() != '#' {
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

func trimTrailingSpace(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[:end]
}

// recordScalarVariables notes any "$name" references within raw so the
// variable engine can find them later: a scalar that is exactly "$name" is
// a whole-value reference, one that merely contains "$name" is an
// in-string reference.
func (ctx *parseContext) recordScalarVariables(raw string, s *Scalar) {
	if name, ok := wholeVariableName(raw); ok {
		ctx.markValueWithVariables(raw, s)
		ctx.recordVariableRef(name, s, false)
		return
	}
	names := findVariableNames(raw)
	if len(names) == 0 {
		return
	}
	ctx.markValueWithVariables(raw, s)
	for _, name := range names {
		ctx.recordVariableRef(name, s, true)
	}
}

// markValueWithVariables preserves raw's literal "$name" text on s's
// presentation node, when presentation tracking is enabled, so the packer
// can re-deduce the binding and re-emit the template instead of the
// substituted value (§4.6).
func (ctx *parseContext) markValueWithVariables(raw string, s *Scalar) {
	if !ctx.opts.GeneratePresentation {
		return
	}
	meta := ctx.pres.Get(s.Path())
	meta.ValueWithVariables = raw
	meta.HasValueWithVariables = true
}

func wholeVariableName(raw string) (string, bool) {
	if len(raw) < 2 || raw[0] != '$' {
		return "", false
	}
	name := raw[1:]
	if !isVariableName(name) {
		return "", false
	}
	return name, true
}

func findVariableNames(raw string) []string {
	var names []string
	for i := 0; i < len(raw); i++ {
		if raw[i] != '$' {
			continue
		}
		j := i + 1
		for j < len(raw) && isVariableNameByte(raw[j]) {
			j++
		}
		if j > i+1 {
			names = append(names, raw[i+1:j])
			i = j - 1
		}
	}
	return names
}

func isVariableName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isVariableNameByte(s[i]) {
			return false
		}
	}
	return true
}

func isVariableNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
