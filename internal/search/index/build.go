package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kamusis/courserec/internal/catalog"
)

// Version is the snapshot layout version written to the manifest.
const Version = 1

// Options controls index building.
type Options struct {
	Catalog    catalog.Options
	Vectorizer VectorizerOptions
	// CatalogPath is recorded in the manifest only.
	CatalogPath string
}

// DefaultOptions returns the reference build configuration.
func DefaultOptions() Options {
	return Options{
		Catalog:    catalog.DefaultOptions(),
		Vectorizer: DefaultVectorizerOptions(),
	}
}

// Build cleans tbl and fits the vector index over every course's combined text.
//
// A *catalog.SchemaError, ErrEmptyCatalog or ErrEmptyVocabulary means no
// usable index exists; a partially built one is never returned.
func Build(tbl catalog.Table, opts Options) (*Index, error) {
	courses, stats, err := catalog.Prepare(tbl, opts.Catalog)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrEmptyCatalog
	}

	docs := make([]string, len(courses))
	for i, c := range courses {
		docs[i] = c.CombinedText
	}
	vec, matrix, err := FitTransform(docs, opts.Vectorizer)
	if err != nil {
		return nil, err
	}

	nnz := 0
	for _, row := range matrix {
		nnz += row.NNZ()
	}
	idx := &Index{
		Manifest: Manifest{
			IndexVersion:   Version,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
			CatalogPath:    opts.CatalogPath,
			CatalogHash:    TextHash(strings.Join(docs, "\n")),
			RowsRead:       stats.RowsRead,
			RowsDropped:    stats.RowsDropped,
			Courses:        len(courses),
			VocabularySize: vec.Size(),
			NNZ:            nnz,
			Vectorizer:     opts.Vectorizer,
			SynonymsPerTag: opts.Catalog.SynonymsPerTag,
			CoursesFile:    "courses.jsonl",
			VocabularyFile: "vocabulary.jsonl",
			VectorFile:     "vectors.bin",
		},
		Courses:    courses,
		Vectorizer: vec,
		Matrix:     matrix,
	}
	log.Info().
		Int("courses", idx.Len()).
		Int("vocabulary", vec.Size()).
		Int("nnz", nnz).
		Msg("vector index built")
	return idx, nil
}

// BuildFromFile reads the catalog CSV at path and builds an index from it.
func BuildFromFile(path string, opts Options) (*Index, error) {
	tbl, err := catalog.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if opts.CatalogPath == "" {
		if abs, err := filepath.Abs(path); err == nil {
			opts.CatalogPath = abs
		} else {
			opts.CatalogPath = path
		}
	}
	idx, err := Build(tbl, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot build index from %s: %w", path, err)
	}
	return idx, nil
}

// AtomicSwap replaces destDir with srcDir by renaming.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}

func sortTermWeights(tw []TermWeight) {
	sort.Slice(tw, func(i, j int) bool {
		if tw[i].Weight == tw[j].Weight {
			return tw[i].Term < tw[j].Term
		}
		return tw[i].Weight > tw[j].Weight
	})
}
