package search

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kamusis/courserec/internal/catalog"
	"github.com/kamusis/courserec/internal/search/index"
)

const header = "title,description,skill_tags,duration_weeks,effort_hours,level,price,rating,provider,url\n"

func fixtureIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.BuildFromFile("testdata/catalog.csv", index.DefaultOptions())
	require.NoError(t, err)
	return idx
}

// smallIndex builds a catalog too small for the default document frequency
// thresholds, so every term is kept.
func smallIndex(t *testing.T, rows string) *index.Index {
	t.Helper()
	tbl, err := catalog.ParseCSV(strings.NewReader(header + rows))
	require.NoError(t, err)
	opts := index.DefaultOptions()
	opts.Vectorizer.MinDF = 1
	opts.Vectorizer.MaxDF = 1.0
	idx, err := index.Build(tbl, opts)
	require.NoError(t, err)
	return idx
}

func titles(res Result) []string {
	out := make([]string, 0, len(res.Recommendations))
	for _, r := range res.Recommendations {
		out = append(out, r.Title)
	}
	return out
}

func assertRankingOrder(t *testing.T, recs []Recommendation) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		prev, cur := recs[i-1], recs[i]
		require.LessOrEqual(t, prev.DifficultyScore, cur.DifficultyScore)
		if prev.DifficultyScore == cur.DifficultyScore {
			require.GreaterOrEqual(t, prev.SimilarityScore, cur.SimilarityScore)
		}
	}
}

func TestRecommend_NotInitialized(t *testing.T) {
	res := NewRanker(nil, DefaultRankOptions()).Recommend("machine learning", 5)
	assert.Equal(t, ErrNotInitialized, res.Error)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
	assert.False(t, res.OK())

	var r *Ranker
	assert.Equal(t, ErrNotInitialized, r.Recommend("machine learning", 5).Error)
}

func TestRecommend_InvalidInput(t *testing.T) {
	r := NewRanker(fixtureIndex(t), DefaultRankOptions())

	cases := []struct {
		query string
		want  string
	}{
		{"", ErrInvalidInput},
		{"   ", ErrInputTooShort},
		{"ml", ErrInputTooShort},
		{"  ai  ", ErrInputTooShort},
		{"日本", ErrInputTooShort},
	}
	for _, tc := range cases {
		res := r.Recommend(tc.query, 5)
		assert.Equal(t, tc.want, res.Error, "query %q", tc.query)
		assert.NotNil(t, res.Recommendations)
		assert.Empty(t, res.Recommendations, "query %q", tc.query)
	}

	res := r.Recommend("sql", 5)
	assert.Empty(t, res.Error)
}

func TestRecommend_FixtureOrdering(t *testing.T) {
	r := NewRanker(fixtureIndex(t), DefaultRankOptions())

	// Pool of four: the three matches plus the first unrelated row.
	res := r.Recommend("machine learning", 2)
	require.True(t, res.OK())
	assert.Equal(t, "machine learning", res.Query)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"Machine Learning Foundations", "Python for Everybody"}, titles(res))
	assert.Greater(t, res.Recommendations[0].SimilarityScore, 0.0)
	assert.Equal(t, 0.0, res.Recommendations[1].SimilarityScore)

	first := res.Recommendations[0]
	assert.Equal(t, "Coursera", first.Provider)
	assert.Equal(t, "https://example.com/ml-foundations", first.URL)
	assert.Equal(t, "Beginner Level", first.Level)
	assert.Equal(t, 1, first.DifficultyScore)
	assert.Equal(t, 4, first.DurationWeeks)
	assert.Equal(t, 5, first.EffortHours)
	assert.Equal(t, 4.7, first.Rating)
	assert.Equal(t, "$49.00", first.Price)
	assert.Equal(t, "An introduction to machine learning with Python", first.Description)
	assert.Equal(t, "Free", res.Recommendations[1].Price)
}

func TestRecommend_MinSimilarityDropsUnrelated(t *testing.T) {
	opts := DefaultRankOptions()
	opts.MinSimilarity = 0.01
	r := NewRanker(fixtureIndex(t), opts)

	res := r.Recommend("machine learning", 2)
	require.True(t, res.OK())
	assert.Equal(t, []string{"Machine Learning Foundations", "Statistics for Data Science"}, titles(res))

	res = r.Recommend("underwater basket weaving", 5)
	assert.Equal(t, MsgNoMatches, res.Message)
	assert.Empty(t, res.Error)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
}

func TestRecommend_RankingOrderProperty(t *testing.T) {
	r := NewRanker(fixtureIndex(t), DefaultRankOptions())
	for _, q := range []string{"machine learning", "marketing", "python data", "project management", "public health", "zzz nothing"} {
		for _, n := range []int{1, 3, 5, 10, 50} {
			res := r.Recommend(q, n)
			require.True(t, res.OK(), q)
			assert.LessOrEqual(t, res.Count, n)
			assert.Len(t, res.Recommendations, res.Count)
			assertRankingOrder(t, res.Recommendations)
		}
	}
}

func TestRecommend_DefaultTopN(t *testing.T) {
	r := NewRanker(fixtureIndex(t), DefaultRankOptions())
	assert.Equal(t, 5, r.Recommend("marketing", 0).Count)
	assert.Equal(t, 5, r.Recommend("marketing", -3).Count)
}

func TestRecommend_MatchingCourseBeatsUnrelated(t *testing.T) {
	idx := smallIndex(t,
		"Cooking Basics,Knife skills for the home kitchen,[],2,3,Beginner Level,$10,4,Y,https://x/cook\n"+
			"Intro to Machine Learning,Learn machine learning step by step,[],2,3,Beginner Level,,4,X,https://x/ml\n")
	r := NewRanker(idx, DefaultRankOptions())

	res := r.Recommend("machine learning", 5)
	require.True(t, res.OK())
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"Intro to Machine Learning", "Cooking Basics"}, titles(res))
	assert.Greater(t, res.Recommendations[0].SimilarityScore, res.Recommendations[1].SimilarityScore)
}

func TestRecommend_SmallCatalogCount(t *testing.T) {
	idx := smallIndex(t,
		"Alpha Course,First description,[],1,1,Beginner Level,,4,A,u1\n"+
			"Beta Course,Second description,[],1,1,Intermediate Level,,4,B,u2\n"+
			"Gamma Course,Third description,[],1,1,Advanced Level,,4,C,u3\n")
	res := NewRanker(idx, DefaultRankOptions()).Recommend("course", 5)
	require.True(t, res.OK())
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, []string{"Alpha Course", "Beta Course", "Gamma Course"}, titles(res))
}

func TestRecommend_DisplayFormatting(t *testing.T) {
	long := strings.Repeat("é", 200)
	idx := smallIndex(t,
		"Pricey Course,"+long+",[],2.6,4.4,ADVANCED LEVEL,\"$1,299.5\",9,P,u1\n"+
			"Cheap Course,Short text,[],1,1,expert,-5,abc,Q,u2\n")
	res := NewRanker(idx, DefaultRankOptions()).Recommend("course", 5)
	require.True(t, res.OK())
	require.Equal(t, 2, res.Count)

	cheap, pricey := res.Recommendations[0], res.Recommendations[1]
	assert.Equal(t, "Cheap Course", cheap.Title)
	assert.Equal(t, "Expert", cheap.Level)
	assert.Equal(t, 1, cheap.DifficultyScore)
	assert.Equal(t, "Free", cheap.Price)
	assert.Equal(t, 3.0, cheap.Rating)
	assert.Equal(t, "Short text", cheap.Description)

	assert.Equal(t, "Advanced Level", pricey.Level)
	assert.Equal(t, 3, pricey.DifficultyScore)
	assert.Equal(t, "$1299.50", pricey.Price)
	assert.Equal(t, 5.0, pricey.Rating)
	assert.Equal(t, 3, pricey.DurationWeeks)
	assert.Equal(t, 4, pricey.EffortHours)
	assert.Equal(t, strings.Repeat("é", 150)+"...", pricey.Description)
}

func TestRecommend_SkipsBrokenRows(t *testing.T) {
	idx := fixtureIndex(t)

	truncated := *idx
	truncated.Courses = idx.Courses[:1]
	res := NewRanker(&truncated, DefaultRankOptions()).Recommend("machine learning", 5)
	require.True(t, res.OK())
	assert.Equal(t, []string{"Machine Learning Foundations"}, titles(res))

	poisoned := *idx
	poisoned.Matrix = append([]index.SparseVector(nil), idx.Matrix...)
	bad := make([]float64, len(idx.Matrix[0].Values))
	for i := range bad {
		bad[i] = math.NaN()
	}
	poisoned.Matrix[0] = index.SparseVector{Indices: idx.Matrix[0].Indices, Values: bad}
	res = NewRanker(&poisoned, DefaultRankOptions()).Recommend("machine learning", 5)
	require.True(t, res.OK())
	assert.Equal(t, 5, res.Count)
	assert.NotContains(t, titles(res), "Machine Learning Foundations")
}

func TestRecommend_Deterministic(t *testing.T) {
	a := NewRanker(fixtureIndex(t), DefaultRankOptions())
	b := NewRanker(fixtureIndex(t), DefaultRankOptions())
	for i, c := range a.Index().Courses {
		assert.Equal(t, c.CombinedText, b.Index().Courses[i].CombinedText)
	}
	for _, q := range []string{"machine learning", "agile scrum", "social media"} {
		assert.Equal(t, a.Recommend(q, 4), b.Recommend(q, 4), q)
	}
}

func TestRecommend_ConcurrentCalls(t *testing.T) {
	r := NewRanker(fixtureIndex(t), DefaultRankOptions())
	want := r.Recommend("data science with python", 3)

	var g errgroup.Group
	results := make([]Result, 32)
	for i := range results {
		i := i
		g.Go(func() error {
			results[i] = r.Recommend("data science with python", 3)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestTruncateAndFormatPrice(t *testing.T) {
	assert.Equal(t, "No description", Truncate("  ", 150))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "Free", FormatPrice(0))
	assert.Equal(t, "$0.50", FormatPrice(0.5))
}

func TestSortRecommendations_Stable(t *testing.T) {
	recs := []Recommendation{
		{Title: "a", DifficultyScore: 2, SimilarityScore: 0.9},
		{Title: "b", DifficultyScore: 1, SimilarityScore: 0.1},
		{Title: "c", DifficultyScore: 1, SimilarityScore: 0.5},
		{Title: "d", DifficultyScore: 1, SimilarityScore: 0.1},
	}
	SortRecommendations(recs)
	got := make([]string, len(recs))
	for i, r := range recs {
		got[i] = r.Title
	}
	assert.Equal(t, []string{"c", "b", "d", "a"}, got)
}
