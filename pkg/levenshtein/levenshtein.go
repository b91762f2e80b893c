// Package levenshtein calculates the Levenshtein edit distance between strings
// and picks the closest candidate for "did you mean" hints.
package levenshtein

// Distance returns the minimum number of single-rune insertions, deletions
// or substitutions needed to turn a into b.
func Distance(a, b string) int {
	s1 := []rune(a)
	s2 := []rune(b)

	if len(s1) < len(s2) {
		s1, s2 = s2, s1
	}

	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := range prev {
		prev[j] = j
	}

	for i, r1 := range s1 {
		curr[0] = i + 1

		for j, r2 := range s2 {
			cost := 1
			if r1 == r2 {
				cost = 0
			}

			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// Closest returns the candidate nearest to word when its distance is at most
// maxDistance. Ties go to the earlier candidate.
func Closest(word string, candidates []string, maxDistance int) (string, bool) {
	best, bestDist := "", maxDistance+1

	for _, c := range candidates {
		if d := Distance(word, c); d < bestDist {
			best, bestDist = c, d
		}
	}

	return best, bestDist <= maxDistance
}
