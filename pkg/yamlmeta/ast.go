// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"github.com/yinclang/yinc/pkg/filepos"
	"github.com/yinclang/yinc/pkg/presentation"
)

// Kind identifies the shape of a Node: scalar, sequence, or mapping.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// ScalarKind identifies the sub-kind of a scalar, per the scalar
// classifier's typing order (null, bool, uint, int, double, string).
type ScalarKind int

const (
	ScalarNull ScalarKind = iota
	ScalarBool
	ScalarUint
	ScalarInt
	ScalarDouble
	ScalarString
)

// Tag is a short `!name` identifier attached to a node, with its own
// position for error reporting.
type Tag struct {
	Name     string
	Position *filepos.Position
}

var _ = []Node{&Scalar{}, &Sequence{}, &Mapping{}}

// Node is the AST unit shared by all three kinds.
type Node interface {
	Kind() Kind
	GetPosition() *filepos.Position
	Tag() *Tag
	SetTag(*Tag)
	Path() presentation.Path
}

// Scalar is a leaf node. Value holds the Go-native classified value: nil,
// bool, uint64, int64, float64, or string, per ScalarKind.
type Scalar struct {
	SubKind  ScalarKind
	Value    interface{}
	Position *filepos.Position
	NodeTag  *Tag
	NodePath presentation.Path
}

func (s *Scalar) Kind() Kind                     { return KindScalar }
func (s *Scalar) GetPosition() *filepos.Position { return s.Position }
func (s *Scalar) Tag() *Tag                       { return s.NodeTag }
func (s *Scalar) SetTag(t *Tag)                   { s.NodeTag = t }
func (s *Scalar) Path() presentation.Path         { return s.NodePath }

// AsString returns the scalar's value as a string, regardless of sub-kind.
// Used by the variable engine (stringifying non-string bindings) and by the
// raw-include downgrade rule.
func (s *Scalar) AsString() (string, bool) {
	str, ok := s.Value.(string)
	return str, ok
}

// Sequence is an ordered list of nodes. Per-element presentation is
// addressed implicitly via Path.Index(i) rather than a parallel slice.
type Sequence struct {
	Items    []Node
	Position *filepos.Position
	NodeTag  *Tag
	NodePath presentation.Path
}

func (a *Sequence) Kind() Kind                     { return KindSequence }
func (a *Sequence) GetPosition() *filepos.Position { return a.Position }
func (a *Sequence) Tag() *Tag                      { return a.NodeTag }
func (a *Sequence) SetTag(t *Tag)                  { a.NodeTag = t }
func (a *Sequence) Path() presentation.Path        { return a.NodePath }

// MapEntry is a single (key, value) pair of a Mapping.
type MapEntry struct {
	Key      string
	KeyPos   *filepos.Position
	Value    Node
	NodePath presentation.Path // path of the "key:" line itself
}

// Mapping is an ordered list of entries. Keys are unique within a mapping;
// ordering is preserved (invariant 1).
type Mapping struct {
	Items    []*MapEntry
	Position *filepos.Position
	NodeTag  *Tag
	NodePath presentation.Path
}

func (m *Mapping) Kind() Kind                     { return KindMapping }
func (m *Mapping) GetPosition() *filepos.Position { return m.Position }
func (m *Mapping) Tag() *Tag                       { return m.NodeTag }
func (m *Mapping) SetTag(t *Tag)                   { m.NodeTag = t }
func (m *Mapping) Path() presentation.Path         { return m.NodePath }

// Get returns the value for key, or (nil, false) if not present.
func (m *Mapping) Get(key string) (Node, bool) {
	for _, item := range m.Items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Document is a single `---`-delimited document within a DocumentSet.
type Document struct {
	Value    Node
	Position *filepos.Position
	NodePath presentation.Path
}

// DocumentSet is the root of a parsed file: an ordered list of documents.
type DocumentSet struct {
	Items    []*Document
	Position *filepos.Position
}
