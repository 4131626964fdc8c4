// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlfmt_test

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/yinclang/yinc/pkg/presentation"
	"github.com/yinclang/yinc/pkg/yamlfmt"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

type fuzzedEntry struct {
	S string
	N int64
	B bool
}

// TestPackParseRoundTripsFuzzedDocuments hand-builds a mapping-of-sequence-
// of-mappings AST from randomly generated leaf values, packs it against an
// empty presentation store (exercising Store.Get's auto-create default for
// paths no parse ever recorded), reparses the packed text, and checks the
// reparsed leaves match the originals. This is the same round-trip the
// packer promises for parsed input, run here against synthetic input that
// never went through the scanner.
func TestPackParseRoundTripsFuzzedDocuments(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 6).Funcs(
		func(s *string, c fuzz.Continue) {
			// A leading letter keeps the plain scalar classifier from ever
			// reading the generated value back as a bool/null/number, which
			// would break the round-trip independently of quoting.
			const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 _-"
			n := c.Intn(20) + 1
			buf := make([]byte, n)
			for i := range buf {
				buf[i] = alphabet[c.Intn(len(alphabet))]
			}
			*s = "s" + string(buf)
		},
	)

	for round := 0; round < 25; round++ {
		var entries []fuzzedEntry
		f.Fuzz(&entries)

		ds := buildFuzzDocument(entries)

		out, err := yamlfmt.NewPacker(yamlfmt.PackerOpts{}).PackString(ds, presentation.NewStore())
		require.NoError(t, err)

		parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
		reparsedDS, _, err := parser.ParseBytes([]byte(out), "fuzz")
		require.NoError(t, err)

		got := readFuzzDocument(t, reparsedDS)
		require.Equal(t, entries, got, "round %d: packed text:\n%s", round, out)
	}
}

func buildFuzzDocument(entries []fuzzedEntry) *yamlmeta.DocumentSet {
	entriesPath := presentation.RootPath.Key("entries")
	seq := &yamlmeta.Sequence{NodePath: entriesPath}
	for i, e := range entries {
		itemPath := entriesPath.Index(i)
		sPath, nPath, bPath := itemPath.Key("s"), itemPath.Key("n"), itemPath.Key("b")
		m := &yamlmeta.Mapping{NodePath: itemPath, Items: []*yamlmeta.MapEntry{
			{Key: "s", NodePath: sPath, Value: &yamlmeta.Scalar{SubKind: yamlmeta.ScalarString, Value: e.S, NodePath: sPath}},
			{Key: "n", NodePath: nPath, Value: &yamlmeta.Scalar{SubKind: yamlmeta.ScalarInt, Value: e.N, NodePath: nPath}},
			{Key: "b", NodePath: bPath, Value: &yamlmeta.Scalar{SubKind: yamlmeta.ScalarBool, Value: e.B, NodePath: bPath}},
		}}
		seq.Items = append(seq.Items, m)
	}
	root := &yamlmeta.Mapping{NodePath: presentation.RootPath, Items: []*yamlmeta.MapEntry{
		{Key: "entries", NodePath: entriesPath, Value: seq},
	}}
	return &yamlmeta.DocumentSet{Items: []*yamlmeta.Document{{Value: root}}}
}

func readFuzzDocument(t *testing.T, ds *yamlmeta.DocumentSet) []fuzzedEntry {
	require.Len(t, ds.Items, 1)
	root, ok := ds.Items[0].Value.(*yamlmeta.Mapping)
	require.True(t, ok)
	require.Len(t, root.Items, 1)
	require.Equal(t, "entries", root.Items[0].Key)
	seq, ok := root.Items[0].Value.(*yamlmeta.Sequence)
	require.True(t, ok)

	out := make([]fuzzedEntry, len(seq.Items))
	for i, item := range seq.Items {
		m, ok := item.(*yamlmeta.Mapping)
		require.True(t, ok)
		require.Len(t, m.Items, 3)
		s := m.Items[0].Value.(*yamlmeta.Scalar).Value.(string)
		n := m.Items[1].Value.(*yamlmeta.Scalar).Value.(int64)
		b := m.Items[2].Value.(*yamlmeta.Scalar).Value.(bool)
		out[i] = fuzzedEntry{S: s, N: n, B: b}
	}
	return out
}
