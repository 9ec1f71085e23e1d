package testutil

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadTree(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"a.txt":       "alpha",
		"sub/b.txt":   "beta",
		"sub/c/d.txt": "delta",
	}

	WriteTree(t, root, files)
	assert.Equal(t, files, ReadTree(t, root))
}

func TestZipBytes(t *testing.T) {
	data := ZipBytes(t, map[string]string{"main.lua": "-- mod"})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "main.lua", zr.File[0].Name)
}
