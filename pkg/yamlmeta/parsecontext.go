// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/yinclang/yinc/pkg/filepos"
	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlerr"
)

// ParserOpts are the two flags the parse surface recognizes.
type ParserOpts struct {
	// GeneratePresentation controls whether comments, empty lines and
	// flow/variable hints are recorded at all.
	GeneratePresentation bool
	// AllowUnboundVariables opts out of failing parse when a document has
	// `$name` references with no bound value.
	AllowUnboundVariables bool
}

// varRef is a single use-site of a variable within the AST.
type varRef struct {
	node     *Scalar
	inString bool
}

// varRefTable maps a variable name to every leaf that references it.
type varRefTable map[string][]*varRef

// parseContext is the per-file parse state: byte cursor, file identity,
// mmap'd backing storage (when attached to a file), presentation-in-flight
// cursor, pending variable table, and inclusion back-pointer.
type parseContext struct {
	opts ParserOpts

	data string
	pos  int
	line int // 1-based
	col  int // 1-based

	// crossedNewline is true once a newline has been consumed since the
	// last commit, used to decide whether the next '#' comment attaches
	// inline to the prior node or as a prefix to the next one.
	crossedNewline bool

	filePath string // as given to ParseFile/ParseBytes
	fullPath string // canonicalized, "" for in-memory parses
	dir      string // directory new includes resolve relative to
	mm       mmap.MMap

	pres   *presentation.Store
	cursor *presentation.Cursor

	vars      varRefTable
	boundVars map[string]bool

	parent      *parseContext
	includeNode *Scalar // the "!include <path>" node in the parent, for error chains

	children []*parseContext
}

func newParseContext(opts ParserOpts, data, filePath, fullPath, dir string) *parseContext {
	pres := presentation.NewStore()
	return &parseContext{
		opts:     opts,
		data:     data,
		line:     1,
		col:      1,
		filePath: filePath,
		fullPath: fullPath,
		dir:      dir,
		pres:     pres,
		cursor:    presentation.NewCursor(pres),
		vars:      varRefTable{},
		boundVars: map[string]bool{},
	}
}

// attachFile mmaps path and returns a root parseContext bounded to path's
// directory.
func attachFile(opts ParserOpts, path string) (*parseContext, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path '%s': %s", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file '%s': %s", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat'ing file '%s': %s", path, err)
	}

	var data string
	var m mmap.MMap
	if fi.Size() == 0 {
		data = ""
	} else {
		m, err = mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("mmap'ing file '%s': %s", path, err)
		}
		data = string(m)
	}

	ctx := newParseContext(opts, data, path, full, filepath.Dir(full))
	ctx.mm = m
	return ctx, nil
}

// attachChildFile is like attachFile but links the resulting context into
// the inclusion graph rooted at parent, for cycle detection and error
// chaining.
func (ctx *parseContext) attachChildFile(path string, includeNode *Scalar) (*parseContext, error) {
	rel, err := ctx.resolveIncludePath(path)
	if err != nil {
		return nil, err
	}

	child, err := attachFile(ctx.opts, rel)
	if err != nil {
		return nil, err
	}
	child.parent = ctx
	child.includeNode = includeNode
	ctx.children = append(ctx.children, child)

	if loop := child.detectCycle(); loop != nil {
		return nil, yamlerr.New(yamlerr.InvalidInclude, "inclusion loop detected", filepos.NewPointSpan(includeNode.Position))
	}

	return child, nil
}

// resolveIncludePath resolves argument relative to ctx's directory and
// rejects any attempt to escape it (invariant 5).
func (ctx *parseContext) resolveIncludePath(argument string) (string, error) {
	if escapesContainingDir(argument) {
		return "", fmt.Errorf("invalid include: path '%s' escapes containing directory", argument)
	}
	return filepath.Join(ctx.dir, argument), nil
}

// escapesContainingDir reports whether p is absolute or contains a ".."
// path component, either of which could step outside the directory that
// contains the including file.
func escapesContainingDir(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	cleaned := filepath.ToSlash(filepath.Clean(p))
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// detectCycle walks the parent chain comparing canonical full paths.
func (ctx *parseContext) detectCycle() *parseContext {
	for anc := ctx.parent; anc != nil; anc = anc.parent {
		if anc.fullPath != "" && anc.fullPath == ctx.fullPath {
			return anc
		}
	}
	return nil
}

// teardown releases this context's mmap and, transitively, every child's.
func (ctx *parseContext) teardown() {
	for _, child := range ctx.children {
		child.teardown()
	}
	if ctx.mm != nil {
		_ = ctx.mm.Unmap()
		ctx.mm = nil
	}
}

// includeChain returns ctx's own including position, if any, used by the
// error formatter to prepend a single "error in included file" frame at
// the site that included ctx. Each ancestor contributes its own frame the
// same way as its own error propagates up through its resolveInclude call,
// so nesting never re-walks (and re-emits) frames an inner level already
// added.
func (ctx *parseContext) includeChain() []*filepos.Position {
	if ctx.includeNode == nil {
		return nil
	}
	return []*filepos.Position{ctx.includeNode.Position}
}
