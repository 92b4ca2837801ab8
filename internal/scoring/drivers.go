package scoring

import "homeanalyzer/server/internal/models"

// Nominal driver weights. Condition gets a larger share for near-new and
// old housing stock, where build year dominates buyer perception.
const (
	nominalLocation  = 40
	nominalSize      = 30
	nominalCondition = 20
	nominalTiming    = 10

	boostedCondition = 25
)

// computeValueDrivers produces the four-way percentage attribution. The
// weights always sum to exactly 100; a driver with no signal keeps its key
// at weight 0 and its nominal share is spread proportionally across the rest.
func computeValueDrivers(age int, market MarketSignal) models.ValueDrivers {
	condition := nominalCondition
	if age <= 5 || age >= 60 {
		condition = boostedCondition
	}

	nominals := []float64{nominalLocation, nominalSize, float64(condition), nominalTiming}
	// No lookup, or a lookup that found no sales in the window, means the
	// timing driver has nothing to stand on
	if !market.Available || market.RecentSales <= 0 {
		nominals[3] = 0
	}

	weights := normalizeWeights(nominals)
	return models.ValueDrivers{
		Location:     weights[0],
		Size:         weights[1],
		Condition:    weights[2],
		MarketTiming: weights[3],
	}
}

// normalizeWeights scales the nominal weights to integers summing to 100
// using largest-remainder rounding. Ties go to the earlier category.
func normalizeWeights(nominals []float64) []int {
	var total float64
	for _, n := range nominals {
		total += n
	}

	weights := make([]int, len(nominals))
	if total == 0 {
		return weights
	}

	remainders := make([]float64, len(nominals))
	sum := 0
	for i, n := range nominals {
		exact := n * 100 / total
		weights[i] = int(exact)
		remainders[i] = exact - float64(weights[i])
		sum += weights[i]
	}

	for sum < 100 {
		best := -1
		for i, r := range remainders {
			if best == -1 || r > remainders[best] {
				best = i
			}
		}
		weights[best]++
		remainders[best] = 0
		sum++
	}

	return weights
}
