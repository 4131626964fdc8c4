// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package presentation

// Cursor is the parse-time recorder of editorial presentation: an explicit
// struct carrying two options ("last completed node" and "pending next
// node") and two operations (attach-inline / attach-prefix).
type Cursor struct {
	store *Store

	lastPath Path
	hasLast  bool

	pendingPrefix     []string
	pendingEmptyLines int
}

func NewCursor(store *Store) *Cursor {
	return &Cursor{store: store}
}

// AttachPrefix records a comment that appeared on its own line, to be
// attached to whichever node is created next.
func (c *Cursor) AttachPrefix(text string) {
	c.pendingPrefix = append(c.pendingPrefix, text)
}

// AttachEmptyLine records a blank line preceding the next node.
func (c *Cursor) AttachEmptyLine() {
	if c.pendingEmptyLines < MaxEmptyLines {
		c.pendingEmptyLines++
	}
}

// AttachInline records a trailing "# ..." comment for the node that just
// finished (the "last completed node"). If no node has completed yet (a
// comment before any content), it falls back to a prefix comment on the
// next node.
func (c *Cursor) AttachInline(text string) {
	if !c.hasLast {
		c.AttachPrefix(text)
		return
	}
	c.store.Get(c.lastPath).SetInlineComment(text)
}

// CommitNode flushes any pending prefix comments and empty-line count onto
// the node at path, and marks path as the new "last completed node".
func (c *Cursor) CommitNode(p Path) {
	n := c.store.Get(p)
	n.PrefixComments = append(n.PrefixComments, c.pendingPrefix...)
	for i := 0; i < c.pendingEmptyLines; i++ {
		n.AddEmptyLine()
	}
	c.pendingPrefix = nil
	c.pendingEmptyLines = 0
	c.lastPath = p
	c.hasLast = true
}

// LastPath returns the most recently committed node's path, used when an
// inline comment needs to be attached retroactively (e.g. after closing a
// nested block).
func (c *Cursor) LastPath() (Path, bool) {
	return c.lastPath, c.hasLast
}
