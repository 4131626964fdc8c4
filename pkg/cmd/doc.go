// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package cmd assembles the yinc command line: pack, fmt, and version,
// wired together with spf13/cobra under a single root command.
package cmd
