// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	uierrs "github.com/cppforlife/go-cli-ui/errors"

	"github.com/yinclang/yinc/pkg/cmd"
)

func main() {
	command := cmd.NewDefaultYincCmd()

	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "yinc: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
