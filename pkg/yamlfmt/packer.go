// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlfmt

import (
	"os"
	"path/filepath"

	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

// PackerOpts configures a Packer: whether subfile recreation is disabled
// even when a directory target is used.
type PackerOpts struct {
	NoSubfiles bool
}

// Packer is the library-facing pack surface: a thin wrapper around Printer
// that adds the directory-mode subfile packer wiring PackDirectory needs,
// while PackString/PackFile stay in inline mode.
type Packer struct {
	opts PackerOpts
}

func NewPacker(opts PackerOpts) *Packer {
	return &Packer{opts: opts}
}

// PackString packs ds to a string with included subtrees inlined, ignoring
// any on-disk subfile recreation regardless of opts.NoSubfiles.
func (pk *Packer) PackString(ds *yamlmeta.DocumentSet, pres *presentation.Store) (string, error) {
	p := NewPrinter(PrinterOpts{NoSubfiles: true}, pres)
	return p.PrintString(ds)
}

// PackFile packs ds into a single file at path with included subtrees
// inlined, the same way PackString does.
func (pk *Packer) PackFile(ds *yamlmeta.DocumentSet, pres *presentation.Store, path string) error {
	out, err := pk.PackString(ds, pres)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(out); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// PackDirectory packs ds into dir: the root document is written to
// dir/<rootName>.yml, and, unless opts.NoSubfiles is set, every included
// node's subtree is recreated as its own subfile under dir (deduplicated
// by content hash, with "~N" suffixes resolving content conflicts), per
// the subfile packer (§4.9).
func (pk *Packer) PackDirectory(ds *yamlmeta.DocumentSet, pres *presentation.Store, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	p := NewPrinter(PrinterOpts{NoSubfiles: pk.opts.NoSubfiles}, pres)
	if !pk.opts.NoSubfiles {
		p = p.WithSubfiles(newSubfilePacker(dir))
	}

	out, err := p.PrintString(ds)
	if err != nil {
		return err
	}

	rootPath := filepath.Join(dir, "root.yml")
	f, err := os.OpenFile(rootPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(out); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
