package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

const manifestFile = "index_manifest.json"

// vocabEntry is one line of vocabulary.jsonl.
type vocabEntry struct {
	Term string  `json:"term"`
	IDF  float64 `json:"idf"`
}

// Write writes the index snapshot to dir.
//
// vectors.bin is CSR encoded, little endian: rows+1 int32 row offsets, nnz
// int32 column indices, then nnz float64 weights.
func Write(dir string, idx *Index) error {
	if idx == nil || idx.Vectorizer == nil {
		return fmt.Errorf("no index to write")
	}
	if len(idx.Courses) == 0 {
		return fmt.Errorf("no courses to write")
	}
	if len(idx.Matrix) != len(idx.Courses) {
		return fmt.Errorf("%w: %d vectors for %d courses", ErrVectorLengthMismatch, len(idx.Matrix), len(idx.Courses))
	}

	m := idx.Manifest
	if m.CoursesFile == "" {
		m.CoursesFile = "courses.jsonl"
	}
	if m.VocabularyFile == "" {
		m.VocabularyFile = "vocabulary.jsonl"
	}
	if m.VectorFile == "" {
		m.VectorFile = "vectors.bin"
	}
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.IndexVersion = Version
	m.Courses = len(idx.Courses)
	m.VocabularySize = idx.Vectorizer.Size()
	m.Vectorizer = idx.Vectorizer.Options
	m.NNZ = 0
	for _, row := range idx.Matrix {
		m.NNZ += row.NNZ()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	// manifest
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	// courses jsonl
	if err := writeJSONL(filepath.Join(dir, m.CoursesFile), len(idx.Courses), func(i int) any {
		return idx.Courses[i]
	}); err != nil {
		return fmt.Errorf("cannot write courses: %w", err)
	}

	// vocabulary jsonl
	if err := writeJSONL(filepath.Join(dir, m.VocabularyFile), idx.Vectorizer.Size(), func(i int) any {
		return vocabEntry{Term: idx.Vectorizer.Terms[i], IDF: idx.Vectorizer.IDF[i]}
	}); err != nil {
		return fmt.Errorf("cannot write vocabulary: %w", err)
	}

	// vectors
	vf, err := os.Create(filepath.Join(dir, m.VectorFile))
	if err != nil {
		return fmt.Errorf("cannot create vectors file: %w", err)
	}
	bw := bufio.NewWriter(vf)
	if err := writeCSR(bw, idx.Matrix, m.NNZ); err != nil {
		_ = vf.Close()
		return fmt.Errorf("cannot write vectors: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = vf.Close()
		return err
	}
	return vf.Close()
}

func writeJSONL(path string, n int, item func(i int) any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		line, err := json.Marshal(item(i))
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeCSR(w *bufio.Writer, matrix []SparseVector, nnz int) error {
	indptr := make([]int32, 0, len(matrix)+1)
	indices := make([]int32, 0, nnz)
	values := make([]float64, 0, nnz)
	indptr = append(indptr, 0)
	for _, row := range matrix {
		indices = append(indices, row.Indices...)
		values = append(values, row.Values...)
		indptr = append(indptr, int32(len(indices)))
	}
	if err := binary.Write(w, binary.LittleEndian, indptr); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, indices); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, values)
}
