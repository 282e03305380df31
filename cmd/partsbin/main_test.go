package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args against a fresh file store in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_PATH", filepath.Join(dir, "inventory.json"))
	t.Setenv("LOG_LEVEL", "error")

	// Flags are package globals; reset them between invocations.
	importMerge, listJSON, listLow, listSearch = false, false, false, ""
	exportFormat, exportVocab, exportOutput = "csv", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "partsbin version dev\n", out)
}

func TestImportListExport(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "parti.csv", "Nome;Qtà;Cassetto;Valore\n\"Resistenza; 1k\";3;B1;1k\nTrimmer;10;A2;\n")

	out, err := run(t, dir, "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 parts from parti.csv")

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[1], "Trimmer")
	assert.Contains(t, lines[2], "Resistenza; 1k")
	assert.Contains(t, lines[2], "3 !")
	assert.Contains(t, out, "2 of 2 parts, 13 pieces")

	out, err = run(t, dir, "export", "--format", "json", "--vocab", "it")
	require.NoError(t, err)
	assert.Contains(t, out, `"nome": "Trimmer"`)

	exportDir := t.TempDir()
	_, err = run(t, dir, "export", "-o", exportDir)
	require.NoError(t, err)
	matches, _ := filepath.Glob(filepath.Join(exportDir, "archivio-componenti-*.csv"))
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Resistenza; 1k,")
}

func TestImportMerge(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "extra.json", `[{"name":"Quarzo 16MHz","qty":4,"drawer":"Z9"}]`)

	_, err := run(t, dir, "import", "--merge", src)
	require.NoError(t, err)

	out, err := run(t, dir, "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"items": 5`)
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bad.json", `{"name":"x"}`)

	_, err := run(t, dir, "import", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON002")

	_, err = run(t, dir, "import", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = run(t, dir, "export", "--format", "json", "--vocab", "klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VOC001")
}
