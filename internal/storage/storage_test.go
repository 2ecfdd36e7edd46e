// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canDenyAccess is false where file modes do not restrict the test user.
func canDenyAccess() bool {
	return runtime.GOOS != "windows" && os.Geteuid() != 0
}

func TestCheckReadable(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.pdf")
	require.NoError(t, os.WriteFile(ok, []byte("x"), 0o644))
	assert.NoError(t, CheckReadable(ok))

	if canDenyAccess() {
		locked := filepath.Join(dir, "locked.pdf")
		require.NoError(t, os.WriteFile(locked, []byte("x"), 0o000))
		assert.ErrorIs(t, CheckReadable(locked), ErrPermission)
	}

	err := CheckReadable(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrPermission)
}

func TestCheckWritableDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckWritableDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")

	if canDenyAccess() {
		ro := filepath.Join(dir, "ro")
		require.NoError(t, os.Mkdir(ro, 0o555))
		assert.ErrorIs(t, CheckWritableDir(ro), ErrPermission)
	}

	assert.Error(t, CheckWritableDir(filepath.Join(dir, "missing")))
}
