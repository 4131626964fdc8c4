// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yinclang/yinc/pkg/yamlfmt"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

type PackOptions struct {
	Files      []string
	OutputDir  string
	NoSubfiles bool
}

func NewPackOptions() *PackOptions {
	return &PackOptions{}
}

func NewPackCmd(o *PackOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Parse and pack YAML documents, recreating included subfiles when -o is given",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringArrayVarP(&o.Files, "file", "f", nil, "File to pack; can be specified multiple times")
	cmd.Flags().StringVarP(&o.OutputDir, "output-directory", "o", "", "Write packed output (and recreated subfiles) under this directory")
	cmd.Flags().BoolVar(&o.NoSubfiles, "no-subfiles", false, "Inline included content instead of recreating subfiles on disk")
	return cmd
}

func (o *PackOptions) Run() error {
	if len(o.Files) == 0 {
		return fmt.Errorf("expected at least one --file/-f argument")
	}

	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	packer := yamlfmt.NewPacker(yamlfmt.PackerOpts{NoSubfiles: o.NoSubfiles})

	for _, path := range o.Files {
		ds, pres, err := parser.ParseFile(path)
		if err != nil {
			return err
		}

		if o.OutputDir == "" {
			out, err := packer.PackString(ds, pres)
			if err != nil {
				return fmt.Errorf("packing '%s': %s", path, err)
			}
			if _, err := fmt.Fprint(os.Stdout, out); err != nil {
				return err
			}
			continue
		}

		dir := o.OutputDir
		if len(o.Files) > 1 {
			dir = filepath.Join(o.OutputDir, stemOf(path))
		}
		if err := packer.PackDirectory(ds, pres, dir); err != nil {
			return fmt.Errorf("packing '%s' into '%s': %s", path, dir, err)
		}
	}

	return nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
