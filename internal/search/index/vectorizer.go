package index

import (
	"math"
	"sort"
)

// VectorizerOptions configures vocabulary pruning and term extraction.
type VectorizerOptions struct {
	// StopWords removes English stop words before n-grams are formed.
	StopWords bool `json:"stop_words"`
	// MaxFeatures keeps only the terms with the highest corpus count.
	MaxFeatures int `json:"max_features"`
	// MinDF is the minimum number of documents a term must occur in.
	MinDF int `json:"min_df"`
	// MaxDF is the maximum share of documents a term may occur in.
	MaxDF    float64 `json:"max_df"`
	NgramMin int     `json:"ngram_min"`
	NgramMax int     `json:"ngram_max"`
}

// DefaultVectorizerOptions returns the reference configuration.
func DefaultVectorizerOptions() VectorizerOptions {
	return VectorizerOptions{
		StopWords:   true,
		MaxFeatures: 5000,
		MinDF:       2,
		MaxDF:       0.8,
		NgramMin:    1,
		NgramMax:    2,
	}
}

// Vectorizer is a fitted TF-IDF model: a sorted vocabulary and one smoothed
// IDF weight per term. It is read-only once fitted.
type Vectorizer struct {
	Options VectorizerOptions
	Terms   []string
	IDF     []float64

	vocab map[string]int32
}

// NewVectorizer restores a fitted vectorizer from its terms and weights.
func NewVectorizer(opts VectorizerOptions, terms []string, idf []float64) (*Vectorizer, error) {
	if len(terms) != len(idf) {
		return nil, ErrVectorLengthMismatch
	}
	v := &Vectorizer{Options: opts, Terms: terms, IDF: idf, vocab: make(map[string]int32, len(terms))}
	for i, t := range terms {
		v.vocab[t] = int32(i)
	}
	return v, nil
}

// FitTransform learns the vocabulary and IDF weights from docs and returns
// one L2-normalised vector per document, in input order.
//
// Terms are kept when MinDF <= df <= MaxDF*len(docs); if more than
// MaxFeatures survive, the most frequent across the corpus win (ties
// alphabetical). IDF is ln((1+n)/(1+df)) + 1.
func FitTransform(docs []string, opts VectorizerOptions) (*Vectorizer, []SparseVector, error) {
	if len(docs) == 0 {
		return nil, nil, ErrEmptyCatalog
	}

	analyzed := make([][]string, len(docs))
	df := make(map[string]int)
	tf := make(map[string]int)
	for i, doc := range docs {
		terms := Analyze(doc, opts.StopWords, opts.NgramMin, opts.NgramMax)
		analyzed[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			tf[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	n := len(docs)
	maxDocs := opts.MaxDF * float64(n)
	kept := make([]string, 0, len(df))
	for t, d := range df {
		if d >= opts.MinDF && float64(d) <= maxDocs {
			kept = append(kept, t)
		}
	}
	if opts.MaxFeatures > 0 && len(kept) > opts.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if tf[kept[i]] == tf[kept[j]] {
				return kept[i] < kept[j]
			}
			return tf[kept[i]] > tf[kept[j]]
		})
		kept = kept[:opts.MaxFeatures]
	}
	if len(kept) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}
	sort.Strings(kept)

	idf := make([]float64, len(kept))
	for i, t := range kept {
		idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}
	v, err := NewVectorizer(opts, kept, idf)
	if err != nil {
		return nil, nil, err
	}

	matrix := make([]SparseVector, len(docs))
	for i, terms := range analyzed {
		matrix[i] = v.vectorize(terms)
	}
	return v, matrix, nil
}

// Transform projects text into the fitted space. Unknown terms are ignored.
func (v *Vectorizer) Transform(text string) SparseVector {
	return v.vectorize(Analyze(text, v.Options.StopWords, v.Options.NgramMin, v.Options.NgramMax))
}

// Size returns the vocabulary size.
func (v *Vectorizer) Size() int { return len(v.Terms) }

// Lookup returns the vocabulary position of term.
func (v *Vectorizer) Lookup(term string) (int, bool) {
	i, ok := v.vocab[term]
	return int(i), ok
}

func (v *Vectorizer) vectorize(terms []string) SparseVector {
	counts := make(map[int32]int)
	for _, t := range terms {
		if i, ok := v.vocab[t]; ok {
			counts[i]++
		}
	}
	out := SparseVector{
		Indices: make([]int32, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for i := range counts {
		out.Indices = append(out.Indices, i)
	}
	sort.Slice(out.Indices, func(a, b int) bool { return out.Indices[a] < out.Indices[b] })
	for _, i := range out.Indices {
		out.Values = append(out.Values, float64(counts[i])*v.IDF[i])
	}
	return NormalizeL2(out)
}
