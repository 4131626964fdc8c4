// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of yinc.

This codebase is intentionally organized into well-defined layers. A concerted
effort has been sustained to keep the responsibility of each package concise and
complete. Packages have been designed to be dependent on each other only to the
degree absolutely required.

In the inventory, below, individual packages are named alongside their coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

Where "# of dependents" is the count of packages that import the named package
and "# of dependencies" is the count of packages that this named package
imports.

# Entry Point

yinc is built into a single executable:

	./cmd/yinc

# Commands

There are three commands yinc implements: "pack", "fmt", and "version".

	(1) => pkg/cmd => (2)

# YAML Structures

At the heart of yinc is the ability to parse YAML extended with inclusion,
overrides, and variables, and to pack the resulting AST back into bytes that
stay as close as possible to what a human author would have written.

Unlike a delegating parser, yamlmeta hand-rolls its own block/flow scanner
so that presentation detail (comments, blank lines, flow-vs-block choice,
quoting, variable templates) survives parsing as a Path-keyed side table
rather than being discarded.

	(3) => pkg/yamlmeta => (2)

# Presentation

Editorial detail is decoupled from the AST itself: every comment, blank
line run, flow hint, variable template, and inclusion/override descriptor
is addressed by a presentation.Path rather than attached to an AST node
pointer. This is what lets override and include resolution build brand
new node values (merged data, reparented subtrees) without losing the
metadata recorded against the path they replace.

	(2) => pkg/presentation => (0)

# Packing

Packing reverses parsing: a state-machine writer walks the AST guided by
the presentation store, falling back to block style whenever a flow-styled
subtree has been touched by a tag or an override, and recreating included
subfiles on disk (deduplicated by content hash) when a caller asks for
directory-mode output.

	(1) => pkg/yamlfmt => (2)

# Utilities

Finally, there is a small collection of supporting, domain-agnostic
packages.

	(2) => pkg/filepos => (0)
	(2) => pkg/yamlerr => (1)

# Dependencies

Each package's dependencies on other packages within this module are as
follows (if a package is not listed, it has no dependencies on other
packages within this module):

	pkg/cmd:
	- pkg/yamlmeta
	- pkg/yamlfmt
	pkg/yamlfmt:
	- pkg/yamlmeta
	- pkg/presentation
	pkg/yamlmeta:
	- pkg/filepos
	- pkg/presentation
	- pkg/yamlerr
	pkg/yamlerr:
	- pkg/filepos
*/
package pkg
