// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlfmt

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

// subfilePacker recreates, under a configured output directory, the
// subfile tree an included document's AST references: it hashes each
// candidate subfile's packed content, deduplicates identical content
// under one path, and resolves conflicting content with "~1", "~2", ...
// suffixes, per the component design's subfile packer (§4.9) and its
// deterministic probing order (resource model §5).
type subfilePacker struct {
	outDir string
	dedup  map[string]uint64 // path relative to outDir -> content hash
}

func newSubfilePacker(outDir string) *subfilePacker {
	return &subfilePacker{outDir: outDir, dedup: map[string]uint64{}}
}

type subfileStatus int

const (
	subfileCreate subfileStatus = iota
	subfileReuse
	subfileIgnore
)

func (sp *subfilePacker) check(hash uint64, path string) subfileStatus {
	existing, ok := sp.dedup[path]
	if !ok {
		sp.dedup[path] = hash
		return subfileCreate
	}
	if existing == hash {
		return subfileReuse
	}
	return subfileIgnore
}

// findPath probes initialPath, then base~1.ext, base~2.ext, ... until it
// finds either a path that was never used (create) or one already used
// with identical content (reuse).
func (sp *subfilePacker) findPath(initialPath string, content []byte) (path string, reuse bool) {
	hash := fnv1a.HashBytes64(content)

	ext := filepath.Ext(initialPath)
	base := strings.TrimSuffix(initialPath, ext)
	candidate := initialPath

	for counter := 1; ; counter++ {
		switch sp.check(hash, candidate) {
		case subfileCreate:
			return candidate, false
		case subfileReuse:
			return candidate, true
		case subfileIgnore:
			candidate = fmt.Sprintf("%s~%d%s", base, counter, ext)
		}
	}
}

// write creates path (relative to outDir) with contents, creating parent
// directories as needed. Per the resource model: create+truncate+write-only,
// default mode 0644, with the close error reported distinctly from a write
// error.
func (sp *subfilePacker) write(path string, contents []byte) error {
	full := filepath.Join(sp.outDir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating directory for subfile '%s': %s", path, err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating subfile '%s': %s", path, err)
	}

	if _, err := f.Write(contents); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing subfile '%s': %s", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing subfile '%s': %s", path, err)
	}
	return nil
}

// printInclude recreates an included node's subfile (or downgrades a raw
// include whose node is no longer a string, per invariant 7), writes it
// under the subfile packer's output directory (deduplicating by content
// hash), and emits the resulting "!include(raw) <path>" line in the
// current stream, followed by a reconstructed override block when the
// include carried one.
func (p *Printer) printInclude(w *writer, n yamlmeta.Node, meta *presentation.Node, ws whitespace) error {
	inc := meta.Included

	raw := inc.Raw
	var contents []byte
	if raw {
		if s, ok := n.(*yamlmeta.Scalar); ok {
			if str, ok := s.AsString(); ok {
				contents = []byte(str)
			} else {
				raw = false
			}
		} else {
			raw = false
		}
	}

	if !raw {
		local := yamlmeta.LocalizeForSubfile(n, n.Path())
		sub := NewPrinter(PrinterOpts{}, inc.DocumentPresentation).WithSubfiles(p.subfiles)
		buf := new(strings.Builder)
		subW := newWriter(buf)
		if err := sub.printNode(subW, local, whitespace{}); err != nil {
			return fmt.Errorf("packing subfile '%s': %s", inc.Path, err)
		}
		content := buf.String()
		if len(content) > 0 && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		contents = []byte(content)
	}

	path, reuse := p.subfiles.findPath(inc.Path, contents)
	if !reuse {
		if err := p.subfiles.write(path, contents); err != nil {
			return err
		}
	}

	tag := "!include"
	if raw {
		tag = "!includeraw"
	}
	w.AddContent(writerChunk{
		Indent:       ws.Indent,
		Content:      fmt.Sprintf("%s %s%s", tag, yamlmeta.FormatScalarString(path), inlineCommentSuffix(meta)),
		CanBeInlined: true,
	})

	if inc.Override != nil {
		block, ok := buildOverrideBlock(n, n.Path(), inc.Override)
		if ok {
			if err := p.printNode(w, block, ws); err != nil {
				return err
			}
		}
	}

	return nil
}

// pathSeg is a single decoded component of a presentation.Path: either a
// mapping-key descent or a sequence-index descent. A trailing "self"
// marker (".foo!") is stripped before segmenting, since it addresses the
// same slot its preceding segment already named.
type pathSeg struct {
	key   string
	idx   int
	isKey bool
}

func parsePathSegments(rel string) []pathSeg {
	rel = strings.TrimSuffix(rel, "!")
	var segs []pathSeg
	i := 0
	for i < len(rel) {
		switch rel[i] {
		case '.':
			j := i + 1
			for j < len(rel) && rel[j] != '.' && rel[j] != '[' {
				j++
			}
			segs = append(segs, pathSeg{key: rel[i+1 : j], isKey: true})
			i = j
		case '[':
			j := strings.IndexByte(rel[i:], ']')
			if j < 0 {
				return segs
			}
			idx, _ := strconv.Atoi(rel[i+1 : i+j])
			segs = append(segs, pathSeg{idx: idx})
			i += j + 1
		default:
			i++
		}
	}
	return segs
}

func getAtSegs(n yamlmeta.Node, segs []pathSeg) (yamlmeta.Node, bool) {
	cur := n
	for _, seg := range segs {
		if seg.isKey {
			m, ok := cur.(*yamlmeta.Mapping)
			if !ok {
				return nil, false
			}
			v, ok := m.Get(seg.key)
			if !ok {
				return nil, false
			}
			cur = v
		} else {
			s, ok := cur.(*yamlmeta.Sequence)
			if !ok || seg.idx >= len(s.Items) {
				return nil, false
			}
			cur = s.Items[seg.idx]
		}
	}
	return cur, true
}

// obNode is an intermediate, order-preserving tree used to assemble the
// override block's synthetic AST from a flat, path-keyed list of override
// entries before the block is handed to the ordinary block/flow renderer.
type obNode struct {
	isSeq   bool
	mapKeys []string
	mapVals map[string]*obNode
	seqVals []*obNode
	value   yamlmeta.Node
}

func (o *obNode) child(seg pathSeg) *obNode {
	if seg.isKey {
		if o.mapVals == nil {
			o.mapVals = map[string]*obNode{}
		}
		c, ok := o.mapVals[seg.key]
		if !ok {
			c = &obNode{}
			o.mapVals[seg.key] = c
			o.mapKeys = append(o.mapKeys, seg.key)
		}
		return c
	}
	o.isSeq = true
	for len(o.seqVals) <= seg.idx {
		o.seqVals = append(o.seqVals, &obNode{})
	}
	return o.seqVals[seg.idx]
}

func (o *obNode) toNode(path presentation.Path) yamlmeta.Node {
	if o.value != nil && len(o.mapKeys) == 0 && len(o.seqVals) == 0 {
		return o.value
	}
	if o.isSeq {
		seq := &yamlmeta.Sequence{NodePath: path}
		for i, c := range o.seqVals {
			seq.Items = append(seq.Items, c.toNode(path.Index(i)))
		}
		return seq
	}
	m := &yamlmeta.Mapping{NodePath: path}
	for _, k := range o.mapKeys {
		c := o.mapVals[k]
		entryPath := path.Key(k)
		m.Items = append(m.Items, &yamlmeta.MapEntry{Key: k, Value: c.toNode(entryPath), NodePath: entryPath})
	}
	return m
}

// buildOverrideBlock reconstructs the override mapping that belongs after
// an include line in directory-mode packing (§4.9): for each recorded
// entry, it looks up the current value at that path within n (the
// include's current, merged value) and keeps the entry only when it still
// represents a live difference from (or addition to) the subfile's own
// on-disk content. Entries whose slot has disappeared from the AST, or
// whose scalar override now matches its recorded original, are dropped.
func buildOverrideBlock(n yamlmeta.Node, rootPath presentation.Path, override *presentation.Override) (yamlmeta.Node, bool) {
	root := &obNode{}
	any := false
	prefix := rootPath.String()

	for _, entry := range override.Entries {
		rel := strings.TrimPrefix(entry.Path.String(), prefix)
		segs := parsePathSegments(rel)

		cur, ok := getAtSegs(n, segs)
		if !ok {
			continue
		}

		if entry.HasOriginal {
			if s, ok := cur.(*yamlmeta.Scalar); ok && s.Value == entry.OriginalData {
				continue
			}
		}

		if len(segs) == 0 {
			root.value = cur
		} else {
			node := root
			for _, seg := range segs {
				node = node.child(seg)
			}
			node.value = cur
		}
		any = true
	}

	if !any {
		return nil, false
	}
	return root.toNode(presentation.RootPath), true
}
