// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"fmt"
	"strings"

	"github.com/yinclang/yinc/pkg/filepos"
	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlerr"
)

// resolveInclude implements the include resolver (component design §4.5):
// it loads the subfile named by argument, merges any trailing override
// object and "$name:" variable settings, and returns the node that takes
// the include's place in the tree.
func (ctx *parseContext) resolveInclude(raw bool, argument string, tagPos *filepos.Position, minIndent int, path presentation.Path) (Node, error) {
	ctx.commit(path)

	includeNode := &Scalar{SubKind: ScalarString, Value: argument, Position: tagPos, NodePath: path}
	child, err := ctx.attachChildFile(argument, includeNode)
	if err != nil {
		return nil, yamlerr.WithIncludeChain(err, []*filepos.Position{tagPos})
	}

	if raw {
		resultNode := &Scalar{SubKind: ScalarString, Value: child.data, Position: tagPos, NodePath: path}
		ctx.pres.Get(path).Included = &presentation.Included{
			Path:                 argument,
			Raw:                  true,
			DocumentPresentation: presentation.NewStore(),
		}
		return resultNode, nil
	}

	doc, err := child.parseDocument()
	if err != nil {
		return nil, yamlerr.WithIncludeChain(err, child.includeChain())
	}

	resultNode := doc.Value
	reparentNode(resultNode, path)
	reparentStore(ctx.pres, child.pres, path)

	outcome, err := ctx.consumeOverride(child, resultNode, tagPos, path)
	if err != nil {
		return nil, err
	}

	ctx.pres.Get(path).Included = &presentation.Included{
		Path:                 argument,
		Raw:                  false,
		DocumentPresentation: child.pres,
		Override:             outcome.override,
		Variables:            outcome.varNames,
	}

	ctx.bubbleUnboundVars(child)

	return outcome.node, nil
}

// overrideOutcome is the result of consumeOverride: the (possibly merged)
// node that replaces the plain included subtree, the override record to
// keep on the presentation (nil when nothing was overridden), and the
// names of any variables this override block bound.
type overrideOutcome struct {
	node     Node
	override *presentation.Override
	varNames []string
}

// consumeOverride looks for a trailing object at exactly the include tag's
// own column and, if found, parses it and splits it into "$name:"
// variable bindings (resolved against child's variable table) and
// structural override entries (merged onto t via mergeOverride).
func (ctx *parseContext) consumeOverride(child *parseContext, t Node, tagPos *filepos.Position, path presentation.Path) (overrideOutcome, error) {
	if err := ctx.consumeWhitespaceAndComments(); err != nil {
		return overrideOutcome{}, err
	}

	tagCol := tagPos.ColNum()
	if ctx.atEOF() || ctx.col != tagCol {
		return overrideOutcome{node: t}, nil
	}

	oNode, err := ctx.parseData(tagCol, path)
	if err != nil {
		return overrideOutcome{}, err
	}
	ctx.commit(path)

	var varNames []string
	var mergeTarget Node = oNode

	if om, ok := oNode.(*Mapping); ok {
		var structItems []*MapEntry
		for _, entry := range om.Items {
			if !strKeyIsVariable(entry.Key) {
				structItems = append(structItems, entry)
				continue
			}
			name := entry.Key[1:]
			refs, known := child.vars[name]
			if !known || len(refs) == 0 {
				return overrideOutcome{}, fmt.Errorf("%s: unknown variable '$%s'",
					entry.KeyPos.AsCompactString(), name)
			}
			child.bindVariable(name, entry.Value)
			varNames = append(varNames, name)
		}
		if len(structItems) == 0 {
			mergeTarget = nil
		} else {
			om.Items = structItems
			mergeTarget = om
		}
	}

	if mergeTarget == nil {
		return overrideOutcome{node: t, varNames: varNames}, nil
	}

	rec := &presentation.Override{}
	merged, err := ctx.mergeOverride(mergeTarget, t, path, rec)
	if err != nil {
		return overrideOutcome{}, err
	}

	var overrideDesc *presentation.Override
	if len(rec.Entries) > 0 {
		overrideDesc = rec
	}

	return overrideOutcome{node: merged, override: overrideDesc, varNames: varNames}, nil
}

// bubbleUnboundVars merges every variable still unbound on child's table
// into ctx's own table, so an ancestor further up the include chain can
// still resolve it (the "pass-through" case: a grandparent sets a
// variable a grandchild references, with the parent never mentioning it).
func (ctx *parseContext) bubbleUnboundVars(child *parseContext) {
	for name, refs := range child.vars {
		if child.boundVars[name] {
			continue
		}
		ctx.vars[name] = append(ctx.vars[name], refs...)
	}
}

// reparentPath rewrites a path recorded relative to a child document's own
// root so that it is relative to prefix instead, used when a subfile's AST
// and presentation are folded into the including document's tree.
func reparentPath(prefix, old presentation.Path) presentation.Path {
	return presentation.Path(prefix.String() + old.String())
}

// reparentNode rewrites every NodePath in the subtree rooted at n from the
// child document's own root to be relative to prefix.
func reparentNode(n Node, prefix presentation.Path) {
	switch t := n.(type) {
	case *Scalar:
		t.NodePath = reparentPath(prefix, t.NodePath)
	case *Sequence:
		t.NodePath = reparentPath(prefix, t.NodePath)
		for _, item := range t.Items {
			reparentNode(item, prefix)
		}
	case *Mapping:
		t.NodePath = reparentPath(prefix, t.NodePath)
		for _, item := range t.Items {
			item.NodePath = reparentPath(prefix, item.NodePath)
			reparentNode(item.Value, prefix)
		}
	}
}

// reparentStore copies every entry of src into dst with its path rewritten
// relative to prefix, leaving src itself untouched (src is kept around
// separately as the Included descriptor's DocumentPresentation, addressed
// by the subfile's own local paths, for directory-mode subfile packing).
// Each Node is copied by value rather than shared by pointer: an override
// setting an inline comment or flow hint on an including document's copy
// of a path must never bleed back into the subfile's own presentation.
func reparentStore(dst *presentation.Store, src *presentation.Store, prefix presentation.Path) {
	for _, p := range src.Paths() {
		n, _ := src.Lookup(p)
		cp := *n
		cp.PrefixComments = append([]string(nil), n.PrefixComments...)
		dst.Set(reparentPath(prefix, p), &cp)
	}
}

// localizePath is the inverse of reparentPath: it strips prefix back off a
// path that was reparented into an including document's tree, recovering
// the subfile-local path the Included descriptor's DocumentPresentation is
// still keyed by.
func localizePath(prefix, reparented presentation.Path) presentation.Path {
	return presentation.Path(strings.TrimPrefix(reparented.String(), prefix.String()))
}

func localizeNode(n Node, prefix presentation.Path) {
	switch t := n.(type) {
	case *Scalar:
		t.NodePath = localizePath(prefix, t.NodePath)
	case *Sequence:
		t.NodePath = localizePath(prefix, t.NodePath)
		for _, item := range t.Items {
			localizeNode(item, prefix)
		}
	case *Mapping:
		t.NodePath = localizePath(prefix, t.NodePath)
		for _, item := range t.Items {
			item.NodePath = localizePath(prefix, item.NodePath)
			localizeNode(item.Value, prefix)
		}
	}
}

// LocalizeForSubfile returns a deep copy of n (the current, possibly
// override-merged, value of an included node) with every NodePath rewritten
// from being relative to the including document's root back to being
// relative to n's own root, the inverse of the reparenting resolveInclude
// performs when folding a subfile's AST into its parent. The subfile
// packer uses this to repack an included subtree against its own
// Included.DocumentPresentation, which is still keyed by local paths.
func LocalizeForSubfile(n Node, prefix presentation.Path) Node {
	cp := nodeDeepCopy(n)
	localizeNode(cp, prefix)
	return cp
}
