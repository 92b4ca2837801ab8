package valuation

import (
	"github.com/shopspring/decimal"

	"homeanalyzer/server/internal/models"
)

// The fitted base rate sits below the observed price per sqft since the
// per-feature premiums are added on top of it.
var baseRateDiscount = decimal.NewFromFloat(0.9)

// CalibrateBaseRate fits the artifact's base price per square foot from
// per-city sale aggregates: the sales-weighted mean of each city's average
// price per sqft, discounted. It reports false when no city has sales.
func CalibrateBaseRate(stats []models.CityStats) (float64, bool) {
	weighted := decimal.Zero
	var totalSales int64
	for _, s := range stats {
		if s.TotalSales <= 0 {
			continue
		}
		weighted = weighted.Add(
			decimal.NewFromFloat(s.AvgPricePerSqft).Mul(decimal.NewFromInt(int64(s.TotalSales))))
		totalSales += int64(s.TotalSales)
	}

	if totalSales == 0 {
		return 0, false
	}

	rate := weighted.
		DivRound(decimal.NewFromInt(totalSales), 8).
		Mul(baseRateDiscount)
	value, _ := rate.Float64()
	return value, true
}
