// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filetests houses a golden-file harness that parses a document,
packs it back (inline, no subfiles), and asserts the result.
*/
package filetests

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yinclang/yinc/pkg/yamlfmt"
	"github.com/yinclang/yinc/pkg/yamlmeta"
)

// FileTests contains a suite of test cases, each described in a separate
// file, verifying that parsing then packing a document reproduces the
// expected text.
//
// Test cases:
// - are found within the directory at PathToTests
// - conventionally have a .yinctest extension
// - top half is the input document; bottom half is the expected output,
//   divided by a line containing only "+++"
//
// Expected output starting with "ERR:" indicates the input is expected to
// fail parsing, with the rest of the line/block being the expected error
// message (after trailing-whitespace normalization).
//
// For example:
//
//	#! my-test.yinctest
//	a: 1
//	b: 2
//	+++
//	a: 1
//	b: 2
type FileTests struct {
	PathToTests string
}

// Run enumerates every file within PathToTests, splits it on the "+++"
// separator, parses the input half with presentation tracking enabled,
// and packs it back inline, comparing against the expected half.
func (f FileTests) Run(t *testing.T) {
	var files []string

	err := filepath.Walk(f.PathToTests, func(walkedPath string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		files = append(files, walkedPath)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to enumerate filetests: %s", err)
	}

	for _, filePath := range files {
		t.Run(filePath, func(t *testing.T) {
			contents, err := os.ReadFile(filePath)
			if err != nil {
				t.Fatal(err)
			}

			pieces := strings.SplitN(string(contents), "\n+++\n", 2)
			if len(pieces) != 2 {
				t.Fatalf("expected file %s to include +++ separator", filePath)
			}
			inputStr := pieces[0]
			expectedStr := pieces[1]

			resultStr, testErr := evalAndPack(inputStr)

			if strings.HasPrefix(expectedStr, "ERR:") {
				if testErr == nil {
					t.Fatalf("expected pack error, but did not receive one (result:\n%s)", resultStr)
				}
				expectedStr = strings.TrimPrefix(expectedStr, "ERR:")
				expectedStr = strings.TrimPrefix(expectedStr, " ")
				if err := expectEquals(TrimTrailingMultilineWhitespace(testErr.Error()), TrimTrailingMultilineWhitespace(expectedStr)); err != nil {
					t.Fatalf("%s", err)
				}
				return
			}

			if testErr != nil {
				t.Fatalf("unexpected error: %s", testErr)
			}
			if err := expectEquals(resultStr, expectedStr); err != nil {
				t.Fatalf("%s", err)
			}
		})
	}
}

func evalAndPack(src string) (string, error) {
	parser := yamlmeta.NewParser(yamlmeta.ParserOpts{GeneratePresentation: true})
	ds, pres, err := parser.ParseBytes([]byte(src), "stdin")
	if err != nil {
		return "", err
	}

	out, err := yamlfmt.NewPacker(yamlfmt.PackerOpts{}).PackString(ds, pres)
	if err != nil {
		return "", err
	}
	return out, nil
}

func expectEquals(resultStr, expectedStr string) error {
	if resultStr != expectedStr {
		return fmt.Errorf("not equal\n\n### result %d chars:\n>>>%s<<<\n### expected %d chars:\n>>>%s<<<",
			len(resultStr), resultStr, len(expectedStr), expectedStr)
	}
	return nil
}

// TrimTrailingMultilineWhitespace returns a string with trailing whitespace
// trimmed from every line as well as trimmed trailing empty lines.
func TrimTrailingMultilineWhitespace(s string) string {
	var trimmedLines []string
	for _, line := range strings.Split(s, "\n") {
		trimmedLine := strings.TrimRight(line, "\t ")
		trimmedLines = append(trimmedLines, trimmedLine)
	}
	multiline := strings.Join(trimmedLines, "\n")
	return strings.TrimRight(multiline, "\n")
}
