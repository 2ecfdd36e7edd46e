// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tetra-pdf/internal/history"
	"github.com/pdiddy/tetra-pdf/internal/testpdf"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

// isolate points every on-disk location at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TETRA_PDF_HISTORY_DIR", filepath.Join(dir, "history"))
	t.Setenv("TETRA_PDF_CACHE_PATH", filepath.Join(dir, "cache", "pages.db"))
	t.Setenv("TETRA_PDF_SECRETS_DIR", filepath.Join(dir, "secrets"))
	t.Setenv("TETRA_PDF_MERGE_OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("TETRA_PDF_LOG_LEVEL", "error")
	return dir
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runAll(t, args...)
	return out, err
}

// runAll executes the root command with args after resetting flags left
// over from earlier runs, returning stdout and stderr.
func runAll(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestConfigFrom_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	c, err := configFrom(v)
	require.NoError(t, err)
	assert.Equal(t, types.ValidationRelaxed, c.PDF.Validation)
	assert.Equal(t, defaultAddr, c.UI.Addr)
	assert.True(t, c.UI.OpenBrowser)
	assert.True(t, c.History.Enabled)
	assert.Equal(t, 20, c.History.MaxResults)
	assert.False(t, c.Merge.Overwrite)
	assert.Equal(t, ".secrets/", c.PDF.SecretsDir)
}

func TestConfigFrom_Validation(t *testing.T) {
	tests := []struct {
		value   string
		want    types.ValidationMode
		wantErr bool
	}{
		{"strict", types.ValidationStrict, false},
		{"relaxed", types.ValidationRelaxed, false},
		{"", types.ValidationRelaxed, false},
		{"lenient", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v := viper.New()
			v.Set("pdf.validation", tt.value)
			c, err := configFrom(v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.PDF.Validation)
		})
	}
}

func TestReadListFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selection.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: book.pdf\nfiles:\n  - a.pdf\n  - /abs/b.pdf\n"), 0o644))

	lf, err := readListFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "book.pdf"), lf.Output)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), "/abs/b.pdf"}, lf.Files)

	require.NoError(t, os.WriteFile(path, []byte("files: [unterminated"), 0o644))
	_, err = readListFile(path)
	assert.Error(t, err)

	_, err = readListFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tetra-pdf dev\n", out)
}

func TestInfoCommand_JSON(t *testing.T) {
	dir := isolate(t)
	a := testpdf.Write(t, dir, "a.pdf", 3)

	out, err := run(t, "info", "--json", a, filepath.Join(dir, "missing.pdf"))
	assert.EqualError(t, err, "1 of 2 files could not be read")

	var records []infoRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "a.pdf", records[0].Name)
	assert.Equal(t, 3, records[0].PageCount)
	assert.Empty(t, records[0].Error)
	assert.Equal(t, "not found", records[1].Error)
}

func TestInfoCommand_Table(t *testing.T) {
	dir := isolate(t)
	a := testpdf.Write(t, dir, "a.pdf", 2)

	out, err := run(t, "info", a)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `a\.pdf\s+\d+\.\d K?B\s+2`, out)
}

func TestMergeCommand(t *testing.T) {
	dir := isolate(t)
	a := testpdf.Write(t, dir, "a.pdf", 2)
	b := testpdf.Write(t, dir, "b.pdf", 3)
	target := filepath.Join(dir, "out", "book.pdf")

	out, errOut, err := runAll(t, "merge", "-o", target, a, b)
	require.NoError(t, err)
	assert.Equal(t, target+" (5 pages)\n", out)
	assert.Contains(t, errOut, "Added 2 files")
	_, err = os.Stat(target)
	require.NoError(t, err)

	// A second run keeps the first output and picks a new name.
	out, err = run(t, "merge", "-o", target, a)
	require.NoError(t, err)
	assert.NotContains(t, out, target+" ")
	assert.Contains(t, out, "(2 pages)")

	out, err = run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "book.pdf")
	assert.Contains(t, out, "ok")

	out, err = run(t, "history", "--export", "json")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "history", "export.json"))
	assert.Contains(t, out, "export.json")
}

func TestMergeCommand_List(t *testing.T) {
	dir := isolate(t)
	testpdf.Write(t, dir, "a.pdf", 1)
	testpdf.Write(t, dir, "b.pdf", 4)
	list := filepath.Join(dir, "selection.yaml")
	require.NoError(t, os.WriteFile(list, []byte("output: joined.pdf\nfiles: [b.pdf, a.pdf]\n"), 0o644))

	out, err := run(t, "merge", "--list", list)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "joined.pdf")+" (5 pages)\n", out)
}

func TestMergeCommand_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, "merge")
	assert.EqualError(t, err, "need at least 1 file to merge")

	bad := testpdf.WriteCorrupt(t, dir, "bad.pdf")
	_, err = run(t, "merge", "-o", filepath.Join(dir, "x.pdf"), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No valid files added: bad.pdf (corrupted)")
	assert.NoFileExists(t, filepath.Join(dir, "x.pdf"))

	// A good file alongside a bad one must not produce a shorter document.
	good := testpdf.Write(t, dir, "good.pdf", 2)
	_, err = run(t, "merge", "-o", filepath.Join(dir, "x.pdf"), good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skipped 1 invalid: bad.pdf (corrupted)")
	assert.NoFileExists(t, filepath.Join(dir, "x.pdf"))

	_, err = run(t, "merge", "-o", filepath.Join(dir, "x.pdf"), good, good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "good.pdf (already added)")
	assert.NoFileExists(t, filepath.Join(dir, "x.pdf"))
}

func TestHistoryCommand_ShowAndDelete(t *testing.T) {
	dir := isolate(t)
	a := testpdf.Write(t, dir, "a.pdf", 1)
	b := testpdf.Write(t, dir, "b.pdf", 2)
	_, err := run(t, "merge", "-o", filepath.Join(dir, "out", "ab.pdf"), a, b)
	require.NoError(t, err)

	store, err := history.NewStore(types.HistoryConfig{Dir: filepath.Join(dir, "history")})
	require.NoError(t, err)
	recent, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, recent, 1)
	id := recent[0].ID

	out, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, "history", "--show", id)
	require.NoError(t, err)
	var shown types.MergeResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, id, shown.ID)
	assert.Equal(t, []string{a, b}, shown.Inputs)
	assert.Equal(t, 3, shown.PageCount)

	out, err = run(t, "history", "--delete", id)
	require.NoError(t, err)
	assert.Equal(t, "Deleted "+id+"\n", out)

	_, err = run(t, "history", "--show", id)
	assert.ErrorIs(t, err, history.ErrNotFound)
	_, err = run(t, "history", "--delete", id)
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestThumbnailCommand(t *testing.T) {
	dir := isolate(t)
	a := testpdf.Write(t, dir, "a.pdf", 1)
	png := filepath.Join(dir, "a.png")

	_, err := run(t, "thumbnail", a, "-o", png, "--size", "64")
	require.NoError(t, err)
	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestPreviewCommand(t *testing.T) {
	dir := isolate(t)
	a := testpdf.Write(t, dir, "a.pdf", 2)

	out, err := run(t, "preview", a, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "a.pdf: page 2 of 2")

	_, err = run(t, "preview", a, "--page", "5")
	assert.Error(t, err)
}
