package textload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.bin")
	content := []byte("abcdefghij")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	data, err := File(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, content, data)

	data, err = File(path, Options{Prefix: 4})
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	data, err = File(path, Options{Prefix: 100})
	require.NoError(t, err)
	assert.Equal(t, content, data)

	_, err = File(filepath.Join(dir, "missing"), Options{})
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nfd.txt")
	// "e" followed by a combining acute accent; NFC folds them into one
	// code point.
	require.NoError(t, os.WriteFile(path, []byte("cafe\u0301"), 0o644))

	data, err := File(path, Options{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("caf\u00e9"), data)
}
