// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package presentation

import "fmt"

// Path addresses a presentation Node relative to a document root, using the
// suffix grammar from the engine's data model: ".key" for mapping descent,
// "[idx]" for sequence descent, and a trailing "!" to mean "this node
// itself" as opposed to the key/dash that introduces it.
type Path string

// RootPath is the path of the document's top-level node.
const RootPath Path = ""

// Key descends into a mapping entry by key.
func (p Path) Key(name string) Path {
	return p + Path(fmt.Sprintf(".%s", name))
}

// Index descends into a sequence element by position.
func (p Path) Index(i int) Path {
	return p + Path(fmt.Sprintf("[%d]", i))
}

// Self marks the path as addressing the node itself rather than the
// key/dash that introduces it (relevant when a comment or override
// concerns the value line rather than the structural line).
func (p Path) Self() Path {
	return p + "!"
}

func (p Path) String() string { return string(p) }
