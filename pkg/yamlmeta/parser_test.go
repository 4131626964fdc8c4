// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yinclang/yinc/pkg/yamlmeta"
)

func writeFiles(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestParseBlockSequenceAndMapping(t *testing.T) {
	ds, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{}).ParseBytes(
		[]byte("a: 1\nb:\n  - 1\n  - 2\n"), "-")
	require.NoError(t, err)

	m, ok := ds.Items[0].Value.(*yamlmeta.Mapping)
	require.True(t, ok)
	a, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, uint64(1), a.(*yamlmeta.Scalar).Value)

	b, ok := m.Get("b")
	require.True(t, ok)
	seq, ok := b.(*yamlmeta.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Items, 2)
}

func TestParseBlockSequenceAtSameColumnAsKey(t *testing.T) {
	ds, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{}).ParseBytes(
		[]byte("a:\n- 1\n- 2\n"), "-")
	require.NoError(t, err)

	m, ok := ds.Items[0].Value.(*yamlmeta.Mapping)
	require.True(t, ok)
	a, ok := m.Get("a")
	require.True(t, ok)
	seq, ok := a.(*yamlmeta.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Items, 2)
	require.Equal(t, uint64(1), seq.Items[0].(*yamlmeta.Scalar).Value)
	require.Equal(t, uint64(2), seq.Items[1].(*yamlmeta.Scalar).Value)
}

func TestParseFlowRecordsFlowMode(t *testing.T) {
	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseBytes([]byte("a: { k: d }\n"), "-")
	require.NoError(t, err)

	m := ds.Items[0].Value.(*yamlmeta.Mapping)
	aVal, _ := m.Get("a")
	require.True(t, pres.Get(aVal.Path()).FlowMode)
}

// TestIncludeAndOverride reproduces S1 (include + override) at the parse
// level: an included mapping's "a" is overwritten, "b" gains a new key
// alongside an overwritten one, and "c" (a sequence) is appended to.
func TestIncludeAndOverride(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"inner.yml": "a: 3\nb: { c: c }\nc:\n  - 3\n  - 4\n",
		"root.yml":  "- !include inner.yml\n  a: 4\n\n  b: { new: true, c: ~ }\n  c: [ 5, 6 ] # array\n  d: ~\n",
	})

	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseFile(filepath.Join(dir, "root.yml"))
	require.NoError(t, err)

	top := ds.Items[0].Value.(*yamlmeta.Sequence)
	require.Len(t, top.Items, 1)
	merged := top.Items[0].(*yamlmeta.Mapping)

	a, _ := merged.Get("a")
	require.Equal(t, uint64(4), a.(*yamlmeta.Scalar).Value)

	b, _ := merged.Get("b")
	bm := b.(*yamlmeta.Mapping)
	c, ok := bm.Get("c")
	require.True(t, ok)
	require.Equal(t, nil, c.(*yamlmeta.Scalar).Value)
	newVal, ok := bm.Get("new")
	require.True(t, ok)
	require.Equal(t, true, newVal.(*yamlmeta.Scalar).Value)

	cSeq, _ := merged.Get("c")
	seq := cSeq.(*yamlmeta.Sequence)
	require.Len(t, seq.Items, 4)
	require.Equal(t, uint64(3), seq.Items[0].(*yamlmeta.Scalar).Value)
	require.Equal(t, uint64(6), seq.Items[3].(*yamlmeta.Scalar).Value)

	dVal, ok := merged.Get("d")
	require.True(t, ok)
	require.Equal(t, nil, dVal.(*yamlmeta.Scalar).Value)

	included := pres.Get(top.Items[0].Path()).Included
	require.NotNil(t, included)
	require.False(t, included.Raw)
	require.NotNil(t, included.Override)
	require.NotEmpty(t, included.Override.Entries)
}

func TestIncludeRawDowngradesToString(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"data.txt": "hello\nworld\n",
		"root.yml": "!includeraw data.txt\n",
	})

	ds, pres, err := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true}).
		ParseFile(filepath.Join(dir, "root.yml"))
	require.NoError(t, err)

	s := ds.Items[0].Value.(*yamlmeta.Scalar)
	str, ok := s.AsString()
	require.True(t, ok)
	require.Equal(t, "hello\nworld\n", str)
	require.True(t, pres.Get(s.Path()).Included.Raw)
}

// TestVariablesInStrings reproduces S2: a variable bound several include
// levels up from where it's referenced inside a string literal.
func TestVariablesInStrings(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"grandchild.yml": `addr: "$host:$port"` + "\n",
		"child.yml":      "!include grandchild.yml\n$port: 80\n",
		"root.yml":       "!include child.yml\n$host: website.org\n",
	})

	ds, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{}).
		ParseFile(filepath.Join(dir, "root.yml"))
	require.NoError(t, err)

	m := ds.Items[0].Value.(*yamlmeta.Mapping)
	addr, ok := m.Get("addr")
	require.True(t, ok)
	str, ok := addr.(*yamlmeta.Scalar).AsString()
	require.True(t, ok)
	require.Equal(t, "website.org:80", str)
}

func TestUnboundVariableFailsParse(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.yml": "addr: $host\n",
	})
	_, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{}).ParseFile(filepath.Join(dir, "root.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown variables")
	require.Contains(t, err.Error(), "host")
}

func TestUnboundVariableAllowedWhenOptedIn(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.yml": "addr: $host\n",
	})
	_, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{AllowUnboundVariables: true}).
		ParseFile(filepath.Join(dir, "root.yml"))
	require.NoError(t, err)
}

// TestIncludeCycleDetection reproduces S6: a three-file cycle is rejected
// with an "inclusion loop detected" error wrapped in exactly three
// "error in included file" preambles.
func TestIncludeCycleDetection(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"loop-1.yml": "!include loop-2.yml\n",
		"loop-2.yml": "!include loop-3.yml\n",
		"loop-3.yml": "!include loop-1.yml\n",
	})

	_, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{}).ParseFile(filepath.Join(dir, "loop-1.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "inclusion loop detected")
	require.Equal(t, 3, strings.Count(err.Error(), "error in included file"))
}

func TestIncludeRejectsDirectoryEscape(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"sub/root.yml": "!include ../outside.yml\n",
	})
	outside := filepath.Join(filepath.Dir(dir), "outside.yml")
	require.NoError(t, os.WriteFile(outside, []byte("a: 1\n"), 0644))
	defer os.Remove(outside)

	_, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{}).ParseFile(filepath.Join(dir, "sub", "root.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes containing directory")
}

func TestOverrideCannotChangeKind(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"inner.yml": "a: 1\n",
		"root.yml":  "!include inner.yml\na: [ 1, 2 ]\n",
	})

	_, _, err := yamlmeta.NewParser(yamlmeta.ParserOpts{}).ParseFile(filepath.Join(dir, "root.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot change types of data in override")
}
