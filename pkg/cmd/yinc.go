// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

type YincOptions struct{}

func NewDefaultYincOptions() *YincOptions {
	return &YincOptions{}
}

func NewDefaultYincCmd() *cobra.Command {
	return NewYincCmd(NewDefaultYincOptions())
}

func NewYincCmd(o *YincOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yinc",
		Short: "yinc packs and formats yinc YAML documents",
		Long: `yinc parses and repacks YAML documents that use !include, !includeraw,
trailing override objects, and $name variables.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(NewPackCmd(NewPackOptions()))
	cmd.AddCommand(NewFmtCmd(NewFmtOptions()))

	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
