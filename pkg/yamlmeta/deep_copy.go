// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

// DeepCopy produces an independent copy of the AST rooted at ds, used
// before applying an in-memory mutation so the original parse tree (and
// its recorded override originals) stays intact.
func (ds *DocumentSet) DeepCopy() *DocumentSet {
	newItems := make([]*Document, len(ds.Items))
	for i, item := range ds.Items {
		newItems[i] = item.DeepCopy()
	}
	return &DocumentSet{Items: newItems, Position: ds.Position}
}

func (d *Document) DeepCopy() *Document {
	return &Document{Value: nodeDeepCopy(d.Value), Position: d.Position, NodePath: d.NodePath}
}

func nodeDeepCopy(n Node) Node {
	switch typed := n.(type) {
	case *Scalar:
		return typed.DeepCopy()
	case *Sequence:
		return typed.DeepCopy()
	case *Mapping:
		return typed.DeepCopy()
	case nil:
		return nil
	default:
		return n
	}
}

func (s *Scalar) DeepCopy() *Scalar {
	cp := *s
	return &cp
}

func (a *Sequence) DeepCopy() *Sequence {
	newItems := make([]Node, len(a.Items))
	for i, item := range a.Items {
		newItems[i] = nodeDeepCopy(item)
	}
	return &Sequence{Items: newItems, Position: a.Position, NodeTag: a.NodeTag, NodePath: a.NodePath}
}

func (m *Mapping) DeepCopy() *Mapping {
	newItems := make([]*MapEntry, len(m.Items))
	for i, item := range m.Items {
		newItems[i] = &MapEntry{
			Key:      item.Key,
			KeyPos:   item.KeyPos,
			Value:    nodeDeepCopy(item.Value),
			NodePath: item.NodePath,
		}
	}
	return &Mapping{Items: newItems, Position: m.Position, NodeTag: m.NodeTag, NodePath: m.NodePath}
}
