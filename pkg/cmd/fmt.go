// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlfmt"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

type FmtOptions struct {
	Files []string
	Debug bool
}

func NewFmtOptions() *FmtOptions {
	return &FmtOptions{}
}

func NewFmtCmd(o *FmtOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Parse and repack YAML documents to stdout",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringArrayVarP(&o.Files, "file", "f", nil, "File (or - for stdin); can be specified multiple times")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Dump the parsed AST annotated with source positions instead of packing it")
	return cmd
}

func (o *FmtOptions) Run() error {
	if len(o.Files) == 0 {
		return fmt.Errorf("expected at least one --file/-f argument")
	}

	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})

	for _, path := range o.Files {
		ds, pres, err := parseFmtInput(parser, path)
		if err != nil {
			return err
		}

		if o.Debug {
			yamlmeta.NewFilePositionPrinter(os.Stdout).Print(ds)
			continue
		}

		out, err := yamlfmt.NewPrinter(yamlfmt.PrinterOpts{NoSubfiles: true}, pres).PrintString(ds)
		if err != nil {
			return fmt.Errorf("packing '%s': %s", path, err)
		}

		if _, err := fmt.Fprint(os.Stdout, out); err != nil {
			return err
		}
	}

	return nil
}

func parseFmtInput(parser *yamlmeta.Parser, path string) (*yamlmeta.DocumentSet, *presentation.Store, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("reading stdin: %s", err)
		}
		return parser.ParseBytes(data, "-")
	}
	return parser.ParseFile(path)
}
