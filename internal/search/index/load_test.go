package index

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureCatalog = "../testdata/catalog.csv"

func buildFixture(t *testing.T) *Index {
	t.Helper()
	idx, err := BuildFromFile(fixtureCatalog, DefaultOptions())
	require.NoError(t, err)
	return idx
}

func TestLoad_RoundTrip(t *testing.T) {
	idx := buildFixture(t)
	dir := t.TempDir()
	require.NoError(t, Write(dir, idx))

	for _, name := range []string{"index_manifest.json", "courses.jsonl", "vocabulary.jsonl", "vectors.bin"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, idx.Courses, got.Courses)
	assert.Equal(t, idx.Vectorizer.Terms, got.Vectorizer.Terms)
	assert.Equal(t, idx.Vectorizer.IDF, got.Vectorizer.IDF)
	assert.Equal(t, idx.Manifest.NNZ, got.Manifest.NNZ)
	assert.Equal(t, idx.Manifest.CatalogHash, got.Manifest.CatalogHash)

	for _, q := range []string{"machine learning", "marketing", "project management agile", "nothing relevant here"} {
		assert.Equal(t, idx.Similarities(idx.Vectorizer.Transform(q)), got.Similarities(got.Vectorizer.Transform(q)), q)
	}
}

func TestLoadManifest_RejectsUnknownVersion(t *testing.T) {
	idx := buildFixture(t)
	dir := t.TempDir()
	require.NoError(t, Write(dir, idx))

	path := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	b = []byte(strings.Replace(string(b), `"index_version": 1`, `"index_version": 99`, 1))
	require.NoError(t, os.WriteFile(path, b, 0o644))

	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported index version 99")
}

func TestLoad_DetectsTruncatedVectors(t *testing.T) {
	idx := buildFixture(t)
	dir := t.TempDir()
	require.NoError(t, Write(dir, idx))

	path := filepath.Join(dir, "vectors.bin")
	st, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, st.Size()-8))

	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector file size mismatch")
}

func TestLoad_DetectsCorruptColumnIndex(t *testing.T) {
	idx := buildFixture(t)
	dir := t.TempDir()
	require.NoError(t, Write(dir, idx))

	path := filepath.Join(dir, "vectors.bin")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	// first column index sits right after the row offsets
	off := 4 * (idx.Len() + 1)
	binary.LittleEndian.PutUint32(b[off:], uint32(idx.Vectorizer.Size()+10))
	require.NoError(t, os.WriteFile(path, b, 0o644))

	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt column index")
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read manifest")
}
