package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"homeanalyzer/server/internal/models"
)

// ErrInvalidInput indicates a caller-correctable problem with the evaluation
// inputs, such as a non-positive price or square footage.
var ErrInvalidInput = errors.New("invalid input")

// DefaultFairBand is the half-width of the fairly-priced band. A listing
// within ±7% of the model estimate is considered fairly priced.
const DefaultFairBand = 0.07

// MarketSignal carries the recent-sale-velocity input for the market-timing
// value driver. Available is false when no comparables could be looked up.
// The driver carries weight only when the lookup succeeded and counted at
// least one sale inside the velocity window; otherwise its nominal share is
// redistributed.
type MarketSignal struct {
	RecentSales int
	Available   bool
}

// scoreCurve maps diffRatio to a deal score by linear interpolation.
// Anchors: 15% under model value or better scores at least 9, parity scores
// 7.5, and 15% over model value or worse scores at most 3.
var scoreCurve = []struct {
	diff  float64
	score float64
}{
	{-0.30, 10.0},
	{-0.15, 9.0},
	{-0.07, 7.9},
	{0.07, 7.1},
	{0.15, 3.0},
	{0.40, 0.0},
}

// Evaluator turns a listing price and a model estimate into a deal
// assessment. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	fairBand    float64
	currentYear int
}

// NewEvaluator creates an evaluator with the given fairly-priced band.
// Non-positive bands fall back to the default ±7%.
func NewEvaluator(fairBand float64) *Evaluator {
	if fairBand <= 0 {
		fairBand = DefaultFairBand
	}
	return &Evaluator{
		fairBand:    fairBand,
		currentYear: time.Now().Year(),
	}
}

// Evaluate computes the deal assessment for a property given the model's
// valuation. It is deterministic for identical inputs and never mutates its
// arguments. It fails atomically with ErrInvalidInput when the price, the
// predicted value, or the square footage is non-positive.
func (e *Evaluator) Evaluate(property models.PropertyRecord, predicted models.ValuationResult, market MarketSignal) (models.DealAssessment, error) {
	if property.Price <= 0 {
		return models.DealAssessment{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if predicted.PredictedValue <= 0 {
		return models.DealAssessment{}, fmt.Errorf("%w: predicted value must be positive", ErrInvalidInput)
	}
	if property.Sqft <= 0 {
		return models.DealAssessment{}, fmt.Errorf("%w: sqft must be positive", ErrInvalidInput)
	}

	diffRatio := (float64(property.Price) - predicted.PredictedValue) / float64(property.Price)

	score := scoreFromDiffRatio(diffRatio)
	assessment := e.assessPricing(diffRatio)
	age := e.currentYear - property.YearBuilt
	drivers := computeValueDrivers(age, market)
	factors := keyFactors(property, diffRatio, age, assessment)

	return models.DealAssessment{
		DealScore:         score,
		PricingAssessment: assessment,
		ValueDrivers:      drivers,
		Explanation:       buildExplanation(assessment, predicted.PredictedValue, diffRatio, factors),
		KeyFactors:        factors,
	}, nil
}

// assessPricing classifies the listing relative to the model estimate.
// Positive diffRatio means the listing is priced above the estimate.
func (e *Evaluator) assessPricing(diffRatio float64) string {
	switch {
	case diffRatio < -e.fairBand:
		return models.AssessmentUnderpriced
	case diffRatio > e.fairBand:
		return models.AssessmentOverpriced
	default:
		return models.AssessmentFairlyPriced
	}
}

// scoreFromDiffRatio interpolates the score curve, clamps to [0, 10] and
// rounds to one decimal.
func scoreFromDiffRatio(diffRatio float64) float64 {
	first := scoreCurve[0]
	last := scoreCurve[len(scoreCurve)-1]

	var raw float64
	switch {
	case diffRatio <= first.diff:
		raw = first.score
	case diffRatio >= last.diff:
		raw = last.score
	default:
		for i := 1; i < len(scoreCurve); i++ {
			lo, hi := scoreCurve[i-1], scoreCurve[i]
			if diffRatio <= hi.diff {
				t := (diffRatio - lo.diff) / (hi.diff - lo.diff)
				raw = lo.score + t*(hi.score-lo.score)
				break
			}
		}
	}

	raw = math.Max(0, math.Min(10, raw))
	return math.Round(raw*10) / 10
}
