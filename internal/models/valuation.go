package models

// ValuationResult is the model's estimate for a single property.
type ValuationResult struct {
	PredictedValue        float64 `json:"predicted_value"`
	PredictedPricePerSqft float64 `json:"predicted_price_per_sqft"`
}

// Pricing assessment categories. Which one applies is a pure threshold
// function of the relative gap between listing price and predicted value.
const (
	AssessmentUnderpriced  = "underpriced"
	AssessmentFairlyPriced = "fairly_priced"
	AssessmentOverpriced   = "overpriced"
)

// ValueDrivers attributes the valuation to four categories. The weights are
// non-negative and always sum to exactly 100.
type ValueDrivers struct {
	Location     int `json:"location"`
	Size         int `json:"size"`
	Condition    int `json:"condition"`
	MarketTiming int `json:"market_timing"`
}

// Sum returns the total weight across all four categories.
func (v ValueDrivers) Sum() int {
	return v.Location + v.Size + v.Condition + v.MarketTiming
}

// DealAssessment is the evaluator's verdict on a listing.
type DealAssessment struct {
	DealScore         float64      `json:"deal_score"`
	PricingAssessment string       `json:"pricing_assessment"`
	ValueDrivers      ValueDrivers `json:"value_drivers"`
	Explanation       string       `json:"explanation"`
	KeyFactors        []string     `json:"key_factors"`
}
