// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func runYinc(t *testing.T, args ...string) (string, error) {
	command := exec.Command("../../yinc", args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	err := command.Run()
	if err != nil {
		return stdout.String(), fmt.Errorf("%s: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

func TestFmtInlinesIncludeAndOverride(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"inner.yml": "a: 3\nb: { c: c }\nc:\n  - 3\n  - 4",
		"root.yml":  "- !include inner.yml\n  a: 4\n\n  b: { new: true, c: ~ }\n  c: [ 5, 6 ]\n  d: ~",
	})

	out, err := runYinc(t, "fmt", "-f", filepath.Join(dir, "root.yml"))
	require.NoError(t, err)
	require.Equal(t, "- a: 4\n  b: { c: ~, new: true }\n  c:\n    - 3\n    - 4\n    - 5\n    - 6\n  d: ~\n", out)
}

func TestFmtSubstitutesVariablesInStrings(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"host.yml": "addr: $host:$port",
		"root.yml": "!include host.yml\n$host: website.org\n$port: 80",
	})

	out, err := runYinc(t, "fmt", "-f", filepath.Join(dir, "root.yml"))
	require.NoError(t, err)
	require.Equal(t, "addr: website.org:80\n", out)
}

func TestFmtRejectsIncludeCycle(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"a.yml": "!include b.yml",
		"b.yml": "!include c.yml",
		"c.yml": "!include a.yml",
	})

	_, err := runYinc(t, "fmt", "-f", filepath.Join(dir, "a.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "inclusion loop detected")
}

func TestFmtRejectsDirectoryEscape(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"sub/root.yml": "!include ../outside.yml",
		"outside.yml":  "a: 1",
	})

	_, err := runYinc(t, "fmt", "-f", filepath.Join(dir, "sub", "root.yml"))
	require.Error(t, err)
}

func TestPackDirectoryRecreatesAndDedupsSubfiles(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"shared.yml": "v: 1",
		"root.yml":   "- !include shared.yml\n  v: 9\n- !include shared.yml\n  v: 9\n- !include shared.yml\n  v: 7",
	})

	outDir := filepath.Join(dir, "out")
	_, err := runYinc(t, "pack", "-f", filepath.Join(dir, "root.yml"), "-o", outDir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "shared.yml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "shared~1.yml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "shared~2.yml"))
	require.True(t, os.IsNotExist(err))
}

func TestPackNoSubfilesInlinesInDirectoryMode(t *testing.T) {
	dir := writeFixture(t, map[string]string{
		"inner.yml": "v: 1",
		"root.yml":  "!include inner.yml\nv: 2",
	})

	outDir := filepath.Join(dir, "out")
	_, err := runYinc(t, "pack", "-f", filepath.Join(dir, "root.yml"), "-o", outDir, "--no-subfiles")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "inner.yml"))
	require.True(t, os.IsNotExist(err))

	root, err := os.ReadFile(filepath.Join(outDir, "root.yml"))
	require.NoError(t, err)
	require.Equal(t, "v: 2\n", string(root))
}

func TestFmtReadsStdin(t *testing.T) {
	command := exec.Command("../../yinc", "fmt", "-f", "-")
	command.Stdin = bytes.NewBufferString("a: 1\nb: 2")
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	require.NoError(t, command.Run(), stderr.String())
	require.Equal(t, "a: 1\nb: 2\n", stdout.String())
}

func TestVersionCommand(t *testing.T) {
	out, err := runYinc(t, "version")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}
