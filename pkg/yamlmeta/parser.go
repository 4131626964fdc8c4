// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"fmt"

	"github.com/yinclang/yinc/pkg/filepos"
	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlerr"
)

// Parser is the entry point for turning bytes into an (AST, presentation)
// pair, per the parse surface described in the external interfaces.
type Parser struct {
	opts ParserOpts
}

func NewParser(opts ParserOpts) *Parser {
	return &Parser{opts}
}

// ParseFile attaches to path (mmap'ing its contents) and parses it; any
// `!include`/`!includeraw` tags it contains resolve relative to path's
// directory.
func (p *Parser) ParseFile(path string) (*DocumentSet, *presentation.Store, error) {
	ctx, err := attachFile(p.opts, path)
	if err != nil {
		return nil, nil, err
	}
	return ctx.parseRoot()
}

// ParseBytes parses an in-memory byte range with no containing directory,
// so any include within it is rejected at resolution time (there is no
// directory to resolve relative to... unless withDir is supplied by
// ParseBytesInDir).
func (p *Parser) ParseBytes(data []byte, associatedName string) (*DocumentSet, *presentation.Store, error) {
	ctx := newParseContext(p.opts, string(data), associatedName, "", "")
	return ctx.parseRoot()
}

// ParseBytesInDir is like ParseBytes but anchors includes to dir, used when
// the caller has in-memory content logically located within a directory
// tree (e.g. the packer round-trip tests).
func (p *Parser) ParseBytesInDir(data []byte, associatedName, dir string) (*DocumentSet, *presentation.Store, error) {
	ctx := newParseContext(p.opts, string(data), associatedName, associatedName, dir)
	return ctx.parseRoot()
}

func (ctx *parseContext) parseRoot() (*DocumentSet, *presentation.Store, error) {
	doc, err := ctx.parseDocument()
	if err != nil {
		return nil, nil, yamlerr.WithIncludeChain(err, ctx.includeChain())
	}

	if !ctx.opts.AllowUnboundVariables {
		if unbound := ctx.unboundVariableNames(); len(unbound) > 0 {
			return nil, nil, yamlerr.WithIncludeChain(
				fmt.Errorf("unknown variables: %s", joinNames(unbound)), ctx.includeChain())
		}
	}

	ds := &DocumentSet{
		Items:    []*Document{doc},
		Position: filepos.NewUnknownPosition(),
	}
	return ds, ctx.pres, nil
}

func (ctx *parseContext) parseDocument() (*Document, error) {
	ctx.consumeWhitespaceAndComments()
	startPos := ctx.currentPosition()

	val, err := ctx.parseData(1, presentation.RootPath)
	if err != nil {
		return nil, err
	}

	ctx.consumeWhitespaceAndComments()
	if !ctx.atEOF() {
		return nil, ctx.errorf(yamlerr.ExtraCharactersAfterData, "unexpected data after document")
	}

	ctx.commit(presentation.RootPath)

	return &Document{Value: val, Position: startPos, NodePath: presentation.RootPath}, nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
