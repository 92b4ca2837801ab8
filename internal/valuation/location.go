package valuation

import "strings"

// LocationScore estimates location quality from address keywords. Scores are
// multiplicative: 1.0 is a neutral location.
func LocationScore(address string) float64 {
	lower := strings.ToLower(address)

	for _, keyword := range []string{"downtown", "center", "main st"} {
		if strings.Contains(lower, keyword) {
			return 1.5
		}
	}
	for _, keyword := range []string{"lake", "park", "hill", "view"} {
		if strings.Contains(lower, keyword) {
			return 1.3
		}
	}
	for _, keyword := range []string{"suburb", "residential"} {
		if strings.Contains(lower, keyword) {
			return 1.1
		}
	}
	return 1.0
}
