package search

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kamusis/courserec/internal/search/index"
)

// MinQueryLength is the shortest accepted query, in runes after trimming.
const MinQueryLength = 3

// RankOptions are the ranking knobs. Zero values fall back to
// DefaultRankOptions.
type RankOptions struct {
	// TopN is used when Recommend is called with topN <= 0.
	TopN int
	// Oversample widens the candidate pool to Oversample*topN before the
	// difficulty re-sort.
	Oversample int
	// MinSimilarity drops pool candidates scoring below it. 0 disables it.
	MinSimilarity float64
	// DescriptionLimit is the display length of descriptions, in runes.
	DescriptionLimit int
}

// DefaultRankOptions returns the reference ranking configuration.
func DefaultRankOptions() RankOptions {
	return RankOptions{TopN: 5, Oversample: 2, DescriptionLimit: 150}
}

// Ranker answers queries against one built index. It holds no mutable state
// and is safe for concurrent use.
type Ranker struct {
	idx  *index.Index
	opts RankOptions
}

// NewRanker returns a Ranker over idx. A nil idx yields a Ranker whose every
// call reports ErrNotInitialized.
func NewRanker(idx *index.Index, opts RankOptions) *Ranker {
	def := DefaultRankOptions()
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if opts.Oversample <= 0 {
		opts.Oversample = def.Oversample
	}
	if opts.DescriptionLimit <= 0 {
		opts.DescriptionLimit = def.DescriptionLimit
	}
	if opts.MinSimilarity < 0 || math.IsNaN(opts.MinSimilarity) {
		opts.MinSimilarity = 0
	}
	return &Ranker{idx: idx, opts: opts}
}

// Index returns the index the ranker reads from.
func (r *Ranker) Index() *index.Index { return r.idx }

// Options returns the effective ranking options.
func (r *Ranker) Options() RankOptions { return r.opts }

// Recommend ranks the catalog for query and returns at most topN courses,
// easiest first and most similar first within a difficulty level.
func (r *Ranker) Recommend(query string, topN int) Result {
	if r == nil || r.idx == nil || r.idx.Vectorizer == nil {
		return failure(ErrNotInitialized)
	}
	if query == "" {
		return failure(ErrInvalidInput)
	}
	processed := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(processed) < MinQueryLength {
		return failure(ErrInputTooShort)
	}
	if topN <= 0 {
		topN = r.opts.TopN
	}

	start := time.Now()
	sims := r.idx.Similarities(r.idx.Vectorizer.Transform(processed))

	pool := rankRows(sims, r.opts.Oversample*topN)
	if r.opts.MinSimilarity > 0 {
		kept := pool[:0]
		for _, row := range pool {
			if sims[row] >= r.opts.MinSimilarity {
				kept = append(kept, row)
			}
		}
		pool = kept
	}

	title := cases.Title(language.English)
	recs := make([]Recommendation, 0, len(pool))
	for _, row := range pool {
		rec, err := r.materialize(row, sims[row], title)
		if err != nil {
			log.Warn().Err(err).Int("row", row).Msg("skipping candidate")
			continue
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		log.Debug().Str("query", processed).Msg("no matches")
		return noMatches()
	}

	SortRecommendations(recs)
	if len(recs) > topN {
		recs = recs[:topN]
	}
	log.Debug().
		Str("query", processed).
		Int("pool", len(pool)).
		Int("count", len(recs)).
		Dur("took", time.Since(start)).
		Msg("recommend")
	return Result{
		Status:          StatusSuccess,
		Query:           query,
		Count:           len(recs),
		Recommendations: recs,
	}
}

func (r *Ranker) materialize(row int, sim float64, title cases.Caser) (Recommendation, error) {
	if row < 0 || row >= len(r.idx.Courses) {
		return Recommendation{}, fmt.Errorf("row %d outside catalog of %d courses", row, len(r.idx.Courses))
	}
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return Recommendation{}, fmt.Errorf("non-finite similarity %v", sim)
	}
	c := r.idx.Courses[row]
	return Recommendation{
		Title:           c.Title,
		Provider:        c.Provider,
		URL:             c.URL,
		Description:     Truncate(c.Description, r.opts.DescriptionLimit),
		Level:           title.String(c.Level),
		DifficultyScore: c.DifficultyScore,
		DurationWeeks:   int(math.Round(c.DurationWeeks)),
		EffortHours:     int(math.Round(c.EffortHours)),
		Rating:          c.Rating,
		Price:           FormatPrice(c.PriceNumeric),
		SimilarityScore: sim,
	}, nil
}

// Truncate shortens s to limit runes, marking a cut with "...". Blank text
// becomes "No description".
func Truncate(s string, limit int) string {
	if strings.TrimSpace(s) == "" {
		return "No description"
	}
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// FormatPrice renders a price as "Free" or "$X.XX".
func FormatPrice(p float64) string {
	if p > 0 {
		return fmt.Sprintf("$%.2f", p)
	}
	return "Free"
}
