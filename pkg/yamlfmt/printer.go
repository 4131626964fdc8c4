// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlfmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

// PrinterOpts are the packer's recognized flags.
type PrinterOpts struct {
	// NoSubfiles inlines included content in the top-level stream instead
	// of creating a subfile on disk, even when an output directory is
	// configured.
	NoSubfiles bool
}

// Printer is the packer core: it drives the whitespace state machine
// (writer) over an AST + presentation.Store pair, honoring flow-vs-block
// hints, comments, empty lines, tags, and (in directory mode, via subfiles)
// included-subfile reconstruction.
type Printer struct {
	opts     PrinterOpts
	pres     *presentation.Store
	subfiles *subfilePacker // nil outside directory mode
}

func NewPrinter(opts PrinterOpts, pres *presentation.Store) *Printer {
	return &Printer{opts: opts, pres: pres}
}

// WithSubfiles attaches a subfile packer (directory mode) to this printer;
// an included node's presentation then triggers recreation of its subfile
// instead of inlining its content.
func (p *Printer) WithSubfiles(sf *subfilePacker) *Printer {
	p.subfiles = sf
	return p
}

// PrintString packs ds into an in-memory buffer and returns it as a string.
func (p *Printer) PrintString(ds *yamlmeta.DocumentSet) (string, error) {
	buf := new(bytes.Buffer)
	if err := p.Print(buf, ds); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Print packs ds to w.
func (p *Printer) Print(w io.Writer, ds *yamlmeta.DocumentSet) error {
	wr := newWriter(w)
	for i, doc := range ds.Items {
		if i != 0 {
			wr.AddContent(writerChunk{Content: "---"})
		}
		if err := p.printNode(wr, doc.Value, whitespace{}); err != nil {
			return err
		}
	}
	return nil
}

type whitespace struct{ Indent string }

func (w whitespace) NewIndented() whitespace { return whitespace{Indent: w.Indent + "  "} }

// printNode is the single recursive dispatch point: it decides, for every
// node, whether to recreate an include (directory mode), render flow
// style, or fall through to block style.
func (p *Printer) printNode(w *writer, n yamlmeta.Node, ws whitespace) error {
	meta := p.pres.Get(n.Path())

	if meta.Included != nil && p.subfiles != nil && !p.opts.NoSubfiles {
		return p.printInclude(w, n, meta, ws)
	}

	if meta.FlowMode && !p.subtreeNeedsBlockDowngrade(n) {
		w.AddContent(writerChunk{Indent: ws.Indent, Content: p.tagPrefix(n) + p.renderFlow(n), CanBeInlined: true})
		return nil
	}

	switch typed := n.(type) {
	case *yamlmeta.Scalar:
		w.AddContent(writerChunk{Indent: ws.Indent, Content: p.tagPrefix(n) + p.renderScalar(typed), CanBeInlined: true})
		return nil
	case *yamlmeta.Sequence:
		return p.printSequence(w, typed, ws)
	case *yamlmeta.Mapping:
		return p.printMapping(w, typed, ws)
	default:
		return fmt.Errorf("unexpected node type %T", n)
	}
}

func (p *Printer) printSequence(w *writer, seq *yamlmeta.Sequence, ws whitespace) error {
	if len(seq.Items) == 0 {
		w.AddContent(writerChunk{Indent: ws.Indent, Content: p.tagPrefix(seq) + "[]", CanBeInlined: true})
		return nil
	}
	for _, item := range seq.Items {
		if err := p.flushLeadingMeta(w, item.Path(), ws); err != nil {
			return err
		}
		itemMeta := p.pres.Get(item.Path())
		if leaf, ok := p.inlineLeaf(item); ok {
			w.AddContent(writerChunk{
				Indent:       ws.Indent,
				Content:      "- " + leaf + inlineCommentSuffix(itemMeta),
				CanBeInlined: true,
			})
			continue
		}
		w.AddContent(writerChunk{
			Indent:         ws.Indent,
			Content:        "-",
			AllowsInlining: true,
			InliningSpacer: " ",
			CanBeInlined:   true,
		})
		if err := p.printNode(w, item, ws.NewIndented()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printMapping(w *writer, m *yamlmeta.Mapping, ws whitespace) error {
	if len(m.Items) == 0 {
		w.AddContent(writerChunk{Indent: ws.Indent, Content: p.tagPrefix(m) + "{}", CanBeInlined: true})
		return nil
	}
	for _, item := range m.Items {
		if err := p.flushLeadingMeta(w, item.Value.Path(), ws); err != nil {
			return err
		}
		itemMeta := p.pres.Get(item.Value.Path())
		key := formatMapKey(item.Key)
		if leaf, ok := p.inlineLeaf(item.Value); ok {
			w.AddContent(writerChunk{
				Indent:       ws.Indent,
				Content:      fmt.Sprintf("%s: %s%s", key, leaf, inlineCommentSuffix(itemMeta)),
				CanBeInlined: true,
			})
			continue
		}
		w.AddContent(writerChunk{
			Indent:         ws.Indent,
			Content:        key + ":",
			AllowsInlining: p.dispatchesInline(item.Value),
			InliningSpacer: " ",
			CanBeInlined:   true,
		})
		if err := p.printNode(w, item.Value, ws.NewIndented()); err != nil {
			return err
		}
	}
	return nil
}

// dispatchesInline reports whether printNode(n) will, as its very first
// emitted chunk, produce a single-line, CanBeInlined production (an
// include line, or - degenerately - a flow/scalar leaf already handled
// by inlineLeaf before this is ever consulted) rather than opening a
// block mapping or sequence. A mapping "key:" opener may only allow the
// following chunk to continue on its own line in that case: "key: value"
// is valid YAML, but "key:\n  subkey: value" must break, even though
// "- subkey: value" (after a sequence dash) is allowed either way.
func (p *Printer) dispatchesInline(n yamlmeta.Node) bool {
	meta := p.pres.Get(n.Path())
	return meta.Included != nil && p.subfiles != nil && !p.opts.NoSubfiles
}

// flushLeadingMeta emits empty lines, then prefix comments, for the node
// at path, ahead of the node itself (§4.8: empty lines flush before any
// prefix comments, both flush before the node).
func (p *Printer) flushLeadingMeta(w *writer, path presentation.Path, ws whitespace) error {
	meta := p.pres.Get(path)
	for i := 0; i < meta.EmptyLines; i++ {
		w.AddContent(writerChunk{Spacer: true})
	}
	for _, c := range meta.PrefixComments {
		w.AddContent(writerChunk{Indent: ws.Indent, Content: "#" + c})
	}
	return nil
}

func inlineCommentSuffix(meta *presentation.Node) string {
	if meta.HasInline {
		return " #" + meta.InlineComment
	}
	return ""
}

// inlineLeaf reports whether n can be rendered on the same line as its
// introducing "key:" or "-" (a scalar, or a flow-style container that
// doesn't need a block downgrade), returning its rendered text.
func (p *Printer) inlineLeaf(n yamlmeta.Node) (string, bool) {
	meta := p.pres.Get(n.Path())
	if meta.Included != nil && p.subfiles != nil && !p.opts.NoSubfiles {
		return "", false
	}
	if s, ok := n.(*yamlmeta.Scalar); ok {
		return p.tagPrefix(n) + p.renderScalar(s), true
	}
	if meta.FlowMode && !p.subtreeNeedsBlockDowngrade(n) {
		return p.tagPrefix(n) + p.renderFlow(n), true
	}
	return "", false
}

func (p *Printer) tagPrefix(n yamlmeta.Node) string {
	if t := n.Tag(); t != nil {
		return "!" + t.Name + " "
	}
	return ""
}

func (p *Printer) renderScalar(s *yamlmeta.Scalar) string {
	meta := p.pres.Get(s.Path())
	if meta.HasValueWithVariables {
		if rendered, ok := rebuildVariableTemplate(meta.ValueWithVariables, s); ok {
			return rendered
		}
	}
	return formatScalarValue(s)
}

func formatScalarValue(s *yamlmeta.Scalar) string {
	switch s.SubKind {
	case yamlmeta.ScalarString:
		str, _ := s.AsString()
		return yamlmeta.FormatScalarString(str)
	default:
		return yamlmeta.FormatScalarLiteral(s.SubKind, s.Value)
	}
}

// rebuildVariableTemplate re-emits a "$name" template verbatim (§4.6's
// packing round-trip) when the scalar's current value still matches the
// template the parser captured: the template is only a safe substitute for
// the plain rendered value when nothing has changed it since parse.
func rebuildVariableTemplate(template string, s *yamlmeta.Scalar) (string, bool) {
	cur, ok := s.AsString()
	if !ok || cur != template {
		return "", false
	}
	return template, true
}

func formatMapKey(key string) string {
	if yamlmeta.NeedsQuoting(key) {
		return yamlmeta.FormatScalarString(key)
	}
	return key
}

// renderFlow renders n (and all its descendants) in flow syntax: "[ ... ]"
// for a sequence, "{ k: v, ... }" for a mapping, bare/quoted for a scalar.
func (p *Printer) renderFlow(n yamlmeta.Node) string {
	switch typed := n.(type) {
	case *yamlmeta.Scalar:
		return p.renderScalar(typed)
	case *yamlmeta.Sequence:
		if len(typed.Items) == 0 {
			return "[]"
		}
		parts := make([]string, len(typed.Items))
		for i, item := range typed.Items {
			parts[i] = p.tagPrefix(item) + p.renderFlow(item)
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	case *yamlmeta.Mapping:
		if len(typed.Items) == 0 {
			return "{}"
		}
		parts := make([]string, len(typed.Items))
		for i, item := range typed.Items {
			parts[i] = fmt.Sprintf("%s: %s", formatMapKey(item.Key), p.tagPrefix(item.Value)+p.renderFlow(item.Value))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return ""
	}
}

// errTagFound aborts a yamlmeta.Walk as soon as a tagged node is seen.
var errTagFound = errors.New("tag found")

type tagVisitor struct{}

func (tagVisitor) Visit(n yamlmeta.Node) error {
	if n.Tag() != nil {
		return errTagFound
	}
	return nil
}

// subtreeNeedsBlockDowngrade reports whether n or any of its descendants
// carries a tag: flow is incompatible with tags (§4.2), and this is the
// only condition that vetoes a node's own recorded flow hint. A subtree
// an override touched keeps whatever flow/block style its own presentation
// already recorded, since the merge only ever adds or replaces leaves, not
// container-level presentation.
func (p *Printer) subtreeNeedsBlockDowngrade(n yamlmeta.Node) bool {
	return yamlmeta.Walk(n, tagVisitor{}) == errTagFound
}
