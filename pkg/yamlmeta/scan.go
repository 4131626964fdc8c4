// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"strings"

	"github.com/yinclang/yinc/pkg/filepos"
	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlerr"
)

// Low-level byte cursor. The scanner works directly over ctx.data rather
// than through a buffered reader, since mmap'd files and in-memory byte
// slices both arrive as a single contiguous string already.

func (ctx *parseContext) atEOF() bool {
	return ctx.pos >= len(ctx.data)
}

func (ctx *parseContext) current() byte {
	if ctx.atEOF() {
		return 0
	}
	return ctx.data[ctx.pos]
}

func (ctx *parseContext) peekAt(offset int) byte {
	i := ctx.pos + offset
	if i < 0 || i >= len(ctx.data) {
		return 0
	}
	return ctx.data[i]
}

func (ctx *parseContext) rest() string {
	return ctx.data[ctx.pos:]
}

// advance consumes exactly one byte, tracking line/column.
func (ctx *parseContext) advance() byte {
	c := ctx.current()
	ctx.pos++
	if c == '\n' {
		ctx.line++
		ctx.col = 1
		ctx.crossedNewline = true
	} else {
		ctx.col++
	}
	return c
}

func (ctx *parseContext) currentPosition() *filepos.Position {
	return filepos.NewPositionInFile(ctx.line, ctx.col, ctx.filePath)
}

// sourceLine returns the full text of the 1-based line number, for the
// error formatter's caret rendering.
func (ctx *parseContext) sourceLine(lineNum int) string {
	n := 1
	start := 0
	for i := 0; i < len(ctx.data); i++ {
		if n == lineNum {
			start = i
			break
		}
		if ctx.data[i] == '\n' {
			n++
		}
	}
	if n != lineNum {
		return ""
	}
	end := strings.IndexByte(ctx.data[start:], '\n')
	if end < 0 {
		return ctx.data[start:]
	}
	return ctx.data[start : start+end]
}

func (ctx *parseContext) errorf(kind yamlerr.Kind, format string, args ...interface{}) error {
	pos := ctx.currentPosition()
	err := yamlerr.Newf(kind, filepos.NewPointSpan(pos), format, args...)
	if pos.IsKnown() {
		err = err.WithSourceLine(ctx.sourceLine(pos.LineNum()))
	}
	return err
}

// commit records path as the most recently finished node, flushing any
// comments/empty-lines the scanner queued up for it, and clears the
// same-line tracking used to classify the next comment as inline or prefix.
func (ctx *parseContext) commit(path presentation.Path) {
	ctx.cursor.CommitNode(path)
	ctx.crossedNewline = false
}

// consumeWhitespaceAndComments advances past spaces, blank lines and '#'
// comments, recording each against the presentation cursor, until a
// substantive character (or EOF) is reached. Tabs are rejected outright:
// the format has no tab-based indentation.
func (ctx *parseContext) consumeWhitespaceAndComments() error {
	sawNewlineThisRound := false
	for !ctx.atEOF() {
		switch ctx.current() {
		case ' ':
			ctx.advance()
		case '\t':
			return ctx.errorf(yamlerr.TabCharacterDetected, "tab characters are not allowed")
		case '\r':
			ctx.advance()
		case '\n':
			if sawNewlineThisRound {
				ctx.cursor.AttachEmptyLine()
			}
			ctx.advance()
			sawNewlineThisRound = true
		case '#':
			text := ctx.scanCommentText()
			if !ctx.crossedNewline {
				if _, hasLast := ctx.cursor.LastPath(); hasLast {
					ctx.cursor.AttachInline(text)
					break
				}
			}
			ctx.cursor.AttachPrefix(text)
		default:
			return nil
		}
	}
	return nil
}

// scanCommentText consumes from the current '#' to (but not including) the
// terminating newline, returning everything after the '#' verbatim (any
// leading space is kept, not stripped, so that "#"+text round-trips the
// original comment byte-for-byte on repack).
func (ctx *parseContext) scanCommentText() string {
	ctx.advance() // '#'
	start := ctx.pos
	for !ctx.atEOF() && ctx.current() != '\n' {
		ctx.advance()
	}
	return ctx.data[start:ctx.pos]
}

// atLineEnd reports whether the cursor is positioned at a newline or EOF,
// used to validate that a scalar/key token isn't followed by trailing junk.
func (ctx *parseContext) atLineEnd() bool {
	return ctx.atEOF() || ctx.current() == '\n' || ctx.current() == '\r'
}
