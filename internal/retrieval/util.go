package retrieval

import "sort"

// sortByScoreDesc sorts results by score descending, preserving the
// relative order of equal scores (insertion order from the upstream
// engine or merge step).
func sortByScoreDesc(items []SearchResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

// truncate returns at most k items.
func truncate(items []SearchResultItem, k int) []SearchResultItem {
	if k < 0 || k >= len(items) {
		return items
	}
	return items[:k]
}

// clamp01 clamps a score into [0,1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
