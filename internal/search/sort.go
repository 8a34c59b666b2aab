package search

import "sort"

// SortRecommendations orders recs by difficulty (ascending), then by
// similarity (descending). Equal keys keep their relative order.
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].DifficultyScore == recs[j].DifficultyScore {
			return recs[i].SimilarityScore > recs[j].SimilarityScore
		}
		return recs[i].DifficultyScore < recs[j].DifficultyScore
	})
}

// rankRows returns the row numbers of sims ordered by similarity (descending),
// then by row (ascending), cut to limit.
func rankRows(sims []float64, limit int) []int {
	rows := make([]int, len(sims))
	for i := range rows {
		rows[i] = i
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if sims[a] == sims[b] {
			return a < b
		}
		return sims[a] > sims[b]
	})
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
