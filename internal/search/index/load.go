package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/kamusis/courserec/internal/catalog"
)

// Load reads an index snapshot written by Write.
func Load(dir string) (*Index, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	var courses []catalog.Course
	if err := readJSONL(filepath.Join(dir, m.CoursesFile), func(line []byte) error {
		var c catalog.Course
		if err := json.Unmarshal(line, &c); err != nil {
			return err
		}
		courses = append(courses, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("invalid courses file: %w", err)
	}
	if len(courses) != m.Courses {
		return nil, fmt.Errorf("course count mismatch: got %d want %d", len(courses), m.Courses)
	}

	terms := make([]string, 0, m.VocabularySize)
	idf := make([]float64, 0, m.VocabularySize)
	if err := readJSONL(filepath.Join(dir, m.VocabularyFile), func(line []byte) error {
		var e vocabEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		terms = append(terms, e.Term)
		idf = append(idf, e.IDF)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("invalid vocabulary file: %w", err)
	}
	if len(terms) != m.VocabularySize {
		return nil, fmt.Errorf("vocabulary size mismatch: got %d want %d", len(terms), m.VocabularySize)
	}
	vec, err := NewVectorizer(m.Vectorizer, terms, idf)
	if err != nil {
		return nil, err
	}

	matrix, err := loadCSR(filepath.Join(dir, m.VectorFile), m.Courses, m.NNZ, m.VocabularySize)
	if err != nil {
		return nil, err
	}

	return &Index{Manifest: m, Courses: courses, Vectorizer: vec, Matrix: matrix}, nil
}

// LoadManifest reads and checks only the manifest of the snapshot in dir.
func LoadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("cannot read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest JSON %s: %w", path, err)
	}
	if m.IndexVersion != Version {
		return Manifest{}, fmt.Errorf("unsupported index version %d (want %d)", m.IndexVersion, Version)
	}
	if m.Courses <= 0 || m.VocabularySize <= 0 || m.NNZ < 0 {
		return Manifest{}, fmt.Errorf("invalid counts in manifest: courses=%d vocabulary=%d nnz=%d", m.Courses, m.VocabularySize, m.NNZ)
	}
	if m.CoursesFile == "" {
		m.CoursesFile = "courses.jsonl"
	}
	if m.VocabularyFile == "" {
		m.VocabularyFile = "vocabulary.jsonl"
	}
	if m.VectorFile == "" {
		m.VectorFile = "vectors.bin"
	}
	return m, nil
}

func readJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return nil
}

func loadCSR(path string, rows, nnz, vocab int) ([]SparseVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	expected := int64(4*(rows+1) + 4*nnz + 8*nnz)
	if st.Size() != expected {
		return nil, fmt.Errorf("vector file size mismatch: got %d want %d (rows=%d nnz=%d)", st.Size(), expected, rows, nnz)
	}

	r := bufio.NewReader(io.LimitReader(f, expected))
	indptr := make([]int32, rows+1)
	indices := make([]int32, nnz)
	values := make([]float64, nnz)
	if err := binary.Read(r, binary.LittleEndian, indptr); err != nil {
		return nil, fmt.Errorf("cannot read row offsets from %s: %w", path, err)
	}
	if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
		return nil, fmt.Errorf("cannot read column indices from %s: %w", path, err)
	}
	if err := binary.Read(r, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("cannot read weights from %s: %w", path, err)
	}

	if indptr[0] != 0 || int(indptr[rows]) != nnz {
		return nil, fmt.Errorf("corrupt row offsets in %s", path)
	}
	matrix := make([]SparseVector, rows)
	for i := 0; i < rows; i++ {
		lo, hi := indptr[i], indptr[i+1]
		if lo > hi {
			return nil, fmt.Errorf("corrupt row offsets in %s at row %d", path, i)
		}
		for k := lo; k < hi; k++ {
			if indices[k] < 0 || int(indices[k]) >= vocab || (k > lo && indices[k] <= indices[k-1]) {
				return nil, fmt.Errorf("corrupt column index in %s at row %d", path, i)
			}
		}
		matrix[i] = SparseVector{Indices: indices[lo:hi:hi], Values: values[lo:hi:hi]}
	}
	return matrix, nil
}
