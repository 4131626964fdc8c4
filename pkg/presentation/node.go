// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package presentation

// Node is the editorial metadata attached to a single AST position.
type Node struct {
	PrefixComments []string
	InlineComment  string
	HasInline      bool
	EmptyLines     int // capped at 2

	FlowMode bool

	// ValueWithVariables preserves the original string literal containing
	// "$name" placeholders, so that repacking can regenerate the template
	// instead of the substituted value.
	ValueWithVariables    string
	HasValueWithVariables bool

	// Included is set when this node is the root of an !include'd or
	// !includeraw'd document.
	Included *Included
}

// MaxEmptyLines is the cap described by the whitespace/comment rules: any
// run of blank lines longer than this is collapsed on repack.
const MaxEmptyLines = 2

func (n *Node) AddEmptyLine() {
	if n.EmptyLines < MaxEmptyLines {
		n.EmptyLines++
	}
}

func (n *Node) AddPrefixComment(text string) {
	n.PrefixComments = append(n.PrefixComments, text)
}

func (n *Node) SetInlineComment(text string) {
	n.InlineComment = text
	n.HasInline = true
}

// Included describes an include/includeraw node: the textual path argument,
// whether it was a raw include, the presentation of the subfile's own
// document, any override applied to it, and the variables the including
// document bound into it.
type Included struct {
	// IncludePresentation is the presentation of the "!include <path>"
	// line itself (its own prefix/inline comments).
	IncludePresentation *Node

	Path string
	Raw  bool

	// DocumentPresentation is the subfile's own presentation store, kept
	// so that directory-mode packing can recreate it verbatim.
	DocumentPresentation *Store

	Override *Override

	// Variables lists the names of variables bound by the including
	// document for this inclusion (its "$name:" settings block).
	Variables []string
}

// Override is the ordered list of edits an including document applied to
// an included subtree, recorded so that repacking can reconstruct the
// override block from the current AST without needing to diff files on
// disk.
type Override struct {
	Entries []OverrideEntry
}

func (o *Override) Add(entry OverrideEntry) {
	o.Entries = append(o.Entries, entry)
}

// OverrideEntry records, for a single overridden or added leaf, the data
// that was present before the override was applied. HasOriginal is false
// for additions (a key or sequence element that did not previously exist).
type OverrideEntry struct {
	Path         Path
	OriginalData interface{}
	HasOriginal  bool
}
