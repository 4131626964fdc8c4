// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlfmt implements the "fmt" command: formatting YAML (preserving
comments) into a canonical form.
*/
package yamlfmt
