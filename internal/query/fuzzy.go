package query

import "strings"

// fuzzyThreshold is the normalized Levenshtein similarity a candidate must
// reach to count as a fuzzy match. Substring containment always matches.
const fuzzyThreshold = 0.5

// fuzzyMatch reports whether candidate matches pattern: either by substring
// containment or by normalized Levenshtein similarity above the threshold.
// Both inputs must already be folded.
func fuzzyMatch(candidate, pattern string) bool {
	if pattern == "" {
		return false
	}
	if strings.Contains(candidate, pattern) {
		return true
	}
	return similarity(candidate, pattern) >= fuzzyThreshold
}

// similarity is the Levenshtein distance between a and b normalized into
// [0, 1], where 1 means equal.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	// Single-row dynamic programming over the edit distance matrix.
	prev := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for row, cb := range rb {
		diag := prev[0]
		prev[0] = row + 1
		for col, ca := range ra {
			cost := diag
			if ca != cb {
				cost++
			}
			if del := prev[col] + 1; del < cost {
				cost = del
			}
			if ins := prev[col+1] + 1; ins < cost {
				cost = ins
			}
			diag = prev[col+1]
			prev[col+1] = cost
		}
	}

	longest := max(len(ra), len(rb))
	return float64(longest-prev[len(ra)]) / float64(longest)
}
