package resolver

import (
	"strings"

	"github.com/teal-fm/quizd/service/catalog"
)

// scoreCandidate implements spec.md §4.3 step 5: split the candidate's
// "Artist - Title" string on the first " - ", then award up to 40 points
// for an artist match, 40 for a title match, and 20 for a plausible year.
// Candidates that don't split into exactly two parts score 0.
func scoreCandidate(c catalog.SearchResult, normArtist, normTitle string, currentYear int) int {
	parts := strings.SplitN(c.Title, " - ", 2)
	if len(parts) != 2 {
		return 0
	}
	a := catalog.Normalize(parts[0])
	t := catalog.Normalize(parts[1])

	score := 0
	switch {
	case a == normArtist:
		score += 40
	case strings.Contains(a, normArtist):
		score += 20
	}
	switch {
	case t == normTitle:
		score += 40
	case strings.Contains(t, normTitle):
		score += 20
	}
	if validYear(c.Year, currentYear) {
		score += 20
	}
	return score
}

// bestCandidate returns the index of the highest-scoring candidate. Ties
// go to the first-seen candidate — since the catalog search is sorted
// ascending by year, this deliberately prefers the earliest release on an
// equal score (spec.md §4.3 step 6).
func bestCandidate(candidates []catalog.SearchResult, normArtist, normTitle string, currentYear int) (int, int) {
	bestIdx, bestScore := -1, -1
	for i, c := range candidates {
		s := scoreCandidate(c, normArtist, normTitle, currentYear)
		if s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	return bestIdx, bestScore
}

var promoKeywords = []string{"promo", "sampler", "test pressing", "advance", "acetate"}

// isPromo reports whether any format description matches a promo/advance
// keyword (spec.md §4.3 step 8), case-insensitively, as a substring.
func isPromo(descriptions []string) bool {
	for _, d := range descriptions {
		ld := strings.ToLower(d)
		for _, kw := range promoKeywords {
			if strings.Contains(ld, kw) {
				return true
			}
		}
	}
	return false
}

