// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import "github.com/yinclang/yinc/pkg/filepos"

// Children returns the node's direct descendants, used by Walk and by the
// override merger / variable engine to recurse without type-switching at
// every call site.
func (s *Scalar) Children() []Node { return nil }

func (a *Sequence) Children() []Node {
	return a.Items
}

func (m *Mapping) Children() []Node {
	children := make([]Node, 0, len(m.Items))
	for _, item := range m.Items {
		children = append(children, item.Value)
	}
	return children
}

// SetPosition lets the packer reposition a node produced by an override or
// variable substitution (it otherwise carries the position of the override
// literal, not of the original included data).
func (s *Scalar) SetPosition(p *filepos.Position)   { s.Position = p }
func (a *Sequence) SetPosition(p *filepos.Position) { a.Position = p }
func (m *Mapping) SetPosition(p *filepos.Position)  { m.Position = p }
