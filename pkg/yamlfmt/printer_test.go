// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlfmt_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/stretchr/testify/require"

	"github.com/yinclang/yinc/pkg/yamlfmt"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

func expectEquals(t *testing.T, resultStr, expectedStr string) {
	if resultStr != expectedStr {
		diff := difflib.PPDiff(strings.Split(expectedStr, "\n"), strings.Split(resultStr, "\n"))
		t.Fatalf("not equal; diff expected...actual:\n%v", diff)
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// TestPackIncludeAndOverride reproduces S1: an included mapping, with an
// override applied, packs inline (no subfiles) back into the literal form
// the component design's worked example expects.
func TestPackIncludeAndOverride(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"inner.yml": "a: 3\nb: { c: c }\nc:\n  - 3\n  - 4",
		"root.yml":  "- !include inner.yml\n  a: 4\n\n  b: { new: true, c: ~ }\n  c: [ 5, 6 ] # array\n  d: ~",
	})

	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseFile(filepath.Join(dir, "root.yml"))
	require.NoError(t, err)

	out, err := yamlfmt.NewPacker(yamlfmt.PackerOpts{}).PackString(ds, pres)
	require.NoError(t, err)

	expected := "- a: 4\n  b: { c: ~, new: true }\n  c:\n    - 3\n    - 4\n    - 5\n    - 6\n  d: ~\n"
	expectEquals(t, out, expected)
}

// TestPackDowngradesFlowWhenTagged reproduces S4: a tag anywhere within a
// flow-styled subtree forces that subtree (and only that subtree) to block
// style, since flow and tags don't mix.
func TestPackDowngradesFlowWhenTagged(t *testing.T) {
	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseBytes([]byte("a: { k: d }\nb: [ 1, 2 ]"), "-")
	require.NoError(t, err)

	top := ds.Items[0].Value.(*yamlmeta.Mapping)
	aVal, _ := top.Get("a")
	am := aVal.(*yamlmeta.Mapping)
	kVal, _ := am.Get("k")
	kVal.SetTag(&yamlmeta.Tag{Name: "tag1"})

	bVal, _ := top.Get("b")
	bSeq := bVal.(*yamlmeta.Sequence)
	bSeq.Items[1].SetTag(&yamlmeta.Tag{Name: "tag2"})

	out, err := yamlfmt.NewPrinter(yamlfmt.PrinterOpts{}, pres).PrintString(ds)
	require.NoError(t, err)

	require.NotContains(t, out, "{")
	require.NotContains(t, out, "}")
	require.NotContains(t, out, "[")
	require.NotContains(t, out, "]")
	require.Contains(t, out, "!tag1 d")
	require.Contains(t, out, "!tag2 2")
}

// TestPackCapsEmptyLinesAtTwo reproduces S5: four consecutive blank lines
// between two mapping entries repack with exactly two.
func TestPackCapsEmptyLinesAtTwo(t *testing.T) {
	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseBytes([]byte("a: 1\n\n\n\n\nb: 2"), "-")
	require.NoError(t, err)

	out, err := yamlfmt.NewPrinter(yamlfmt.PrinterOpts{}, pres).PrintString(ds)
	require.NoError(t, err)

	expectEquals(t, out, "a: 1\n\n\nb: 2\n")
}

func TestPackPreservesComments(t *testing.T) {
	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseBytes([]byte("# heading\na: 1 # trailing\nb: 2"), "-")
	require.NoError(t, err)

	out, err := yamlfmt.NewPrinter(yamlfmt.PrinterOpts{}, pres).PrintString(ds)
	require.NoError(t, err)

	expectEquals(t, out, "# heading\na: 1 # trailing\nb: 2\n")
}

// TestPackDirectoryRecreatesSubfilesWithDedup reproduces S3: three includes
// of the same subfile, two of them edited identically and one edited
// differently, dedup down to two on-disk files.
func TestPackDirectoryRecreatesSubfilesWithDedup(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"shared.yml": "v: 1",
		"root.yml":   "- !include shared.yml\n  v: 9\n- !include shared.yml\n  v: 9\n- !include shared.yml\n  v: 7",
	})

	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseFile(filepath.Join(dir, "root.yml"))
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	require.NoError(t, yamlfmt.NewPacker(yamlfmt.PackerOpts{}).PackDirectory(ds, pres, outDir))

	_, err = os.Stat(filepath.Join(outDir, "root.yml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "shared.yml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "shared~1.yml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "shared~2.yml"))
	require.True(t, os.IsNotExist(err))

	first, err := os.ReadFile(filepath.Join(outDir, "shared.yml"))
	require.NoError(t, err)
	require.Equal(t, "v: 9\n", string(first))

	second, err := os.ReadFile(filepath.Join(outDir, "shared~1.yml"))
	require.NoError(t, err)
	require.Equal(t, "v: 7\n", string(second))

	root, err := os.ReadFile(filepath.Join(outDir, "root.yml"))
	require.NoError(t, err)
	require.Equal(t,
		"- !include shared.yml\n  v: 9\n- !include shared.yml\n  v: 9\n- !include shared~1.yml\n  v: 7\n",
		string(root))
}

// TestPackNoSubfilesInlinesEvenInDirectoryMode checks that PackerOpts.NoSubfiles
// keeps directory-mode packing from writing any subfile alongside root.yml.
func TestPackNoSubfilesInlinesEvenInDirectoryMode(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"inner.yml": "v: 1",
		"root.yml":  "!include inner.yml\nv: 2",
	})

	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseFile(filepath.Join(dir, "root.yml"))
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	require.NoError(t, yamlfmt.NewPacker(yamlfmt.PackerOpts{NoSubfiles: true}).PackDirectory(ds, pres, outDir))

	_, err = os.Stat(filepath.Join(outDir, "inner.yml"))
	require.True(t, os.IsNotExist(err))

	root, err := os.ReadFile(filepath.Join(outDir, "root.yml"))
	require.NoError(t, err)
	require.Equal(t, "v: 2\n", string(root))
}
