// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package presentation holds the editorial metadata that the packer needs
// to reproduce byte-similar YAML: prefix/inline comments, blank-line
// counts, flow-vs-block hints, variable-templated string literals, and the
// include/override descriptors that let a packed document recreate its
// subfile tree.
//
// A presentation record is addressed by a Path relative to the document
// root rather than by a pointer into the AST (mirroring the "document
// presentation" flat form described by the engine's data model), which
// keeps this package independent of yamlmeta: yamlmeta depends on
// presentation, never the reverse.
package presentation
