package index

import "github.com/kamusis/courserec/internal/catalog"

// Manifest describes a built index and how to interpret its snapshot files.
type Manifest struct {
	IndexVersion   int               `json:"index_version"`
	CreatedAt      string            `json:"created_at"`
	CatalogPath    string            `json:"catalog_path"`
	CatalogHash    string            `json:"catalog_hash"`
	CatalogMD5     string            `json:"catalog_md5,omitempty"`
	RowsRead       int               `json:"rows_read"`
	RowsDropped    int               `json:"rows_dropped"`
	Courses        int               `json:"courses"`
	VocabularySize int               `json:"vocabulary_size"`
	NNZ            int               `json:"nnz"`
	Vectorizer     VectorizerOptions `json:"vectorizer"`
	SynonymsPerTag int               `json:"synonyms_per_tag"`
	CoursesFile    string            `json:"courses_file"`
	VocabularyFile string            `json:"vocabulary_file"`
	VectorFile     string            `json:"vector_file"`
}

// Index is the built catalog: cleaned courses and their TF-IDF vectors,
// aligned by row. It is never mutated after Build or Load.
type Index struct {
	Manifest   Manifest
	Courses    []catalog.Course
	Vectorizer *Vectorizer
	Matrix     []SparseVector
}

// Len returns the number of indexed courses.
func (x *Index) Len() int { return len(x.Courses) }

// Similarities returns the cosine similarity between q and every row.
func (x *Index) Similarities(q SparseVector) []float64 {
	out := make([]float64, len(x.Matrix))
	if q.NNZ() == 0 {
		return out
	}
	for i, row := range x.Matrix {
		out[i] = Cosine(q, row)
	}
	return out
}

// TopTerms returns up to k terms with the highest weight in row, heaviest first.
func (x *Index) TopTerms(row, k int) []TermWeight {
	if row < 0 || row >= len(x.Matrix) || k <= 0 {
		return nil
	}
	vec := x.Matrix[row]
	out := make([]TermWeight, 0, vec.NNZ())
	for i, col := range vec.Indices {
		out = append(out, TermWeight{Term: x.Vectorizer.Terms[col], Weight: vec.Values[i]})
	}
	sortTermWeights(out)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// TermWeight pairs a vocabulary term with its weight.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}
