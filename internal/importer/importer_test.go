package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/courserec/internal/importer"
)

func TestImportFile_CopySkipAndReplace(t *testing.T) {
	tmp := t.TempDir()
	dataDir := filepath.Join(tmp, "data")
	src := writeFile(t, tmp, "courses.csv", "title,description\nA,B")

	// first import copies
	r1, err := importer.ImportFile(src, dataDir)
	require.NoError(t, err)
	assert.True(t, r1.Copied)
	assert.Empty(t, r1.Previous)
	assert.Equal(t, filepath.Join(dataDir, "courses.csv"), r1.Path)
	assert.Equal(t, "title,description\nA,B\n", readFile(t, r1.Path))

	// identical content is skipped
	r2, err := importer.ImportFile(src, dataDir)
	require.NoError(t, err)
	assert.False(t, r2.Copied)
	assert.Equal(t, r1.MD5, r2.MD5)

	// changed content replaces and keeps the old version
	writeFile(t, tmp, "courses.csv", "title,description\nC,D")
	r3, err := importer.ImportFile(src, dataDir)
	require.NoError(t, err)
	assert.True(t, r3.Copied)
	assert.NotEqual(t, r1.MD5, r3.MD5)
	assert.Equal(t, filepath.Join(dataDir, "courses.previous.csv"), r3.Previous)
	assert.Equal(t, "title,description\nA,B\n", readFile(t, r3.Previous))
	assert.Equal(t, "title,description\nC,D\n", readFile(t, r3.Path))
	assert.NoFileExists(t, r3.Path+".tmp")
}

func TestImportFile_Errors(t *testing.T) {
	tmp := t.TempDir()

	_, err := importer.ImportFile(filepath.Join(tmp, "missing.csv"), tmp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot stat catalog")

	_, err = importer.ImportFile(tmp, filepath.Join(tmp, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestFileMD5(t *testing.T) {
	p := writeFile(t, t.TempDir(), "x.csv", "abc")
	sum, err := importer.FileMD5(p)
	require.NoError(t, err)
	// md5("abc\n")
	assert.Equal(t, "0bee89b07a248e27c83fc3d5951213c1", sum)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content+"\n"), 0o644))
	return p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
