package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"homeanalyzer/server/internal/models"
)

const maxKeyFactors = 6

type factor struct {
	label  string
	weight float64
}

// keyFactors selects short labels describing what drives the assessment,
// ordered by the magnitude of each rule's contribution.
func keyFactors(property models.PropertyRecord, diffRatio float64, age int, assessment string) []string {
	var factors []factor

	switch {
	case diffRatio <= -0.10:
		factors = append(factors, factor{"Potentially undervalued opportunity", math.Abs(diffRatio) * 100})
	case diffRatio >= 0.10:
		factors = append(factors, factor{"Priced above market estimate", diffRatio * 100})
	}

	switch {
	case property.Sqft > 2500:
		factors = append(factors, factor{"Large living space", 8 + float64(property.Sqft-2500)/500})
	case property.Sqft < 1200:
		factors = append(factors, factor{"Compact size may limit value", 8 + float64(1200-property.Sqft)/300})
	}

	if property.Bedrooms >= 4 {
		factors = append(factors, factor{"Family-friendly bedroom count", 6})
	}

	switch {
	case age >= 0 && age <= 5:
		factors = append(factors, factor{"Modern construction", 7})
	case property.YearBuilt > 0 && property.YearBuilt < 1980:
		factors = append(factors, factor{"Older home may need updates", 7})
	}

	if property.Bedrooms > 0 && property.Sqft/property.Bedrooms >= 600 && property.Sqft <= 2500 {
		factors = append(factors, factor{"Good size for bedroom count", 5})
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].weight > factors[j].weight
	})

	if len(factors) > maxKeyFactors {
		factors = factors[:maxKeyFactors]
	}

	labels := make([]string, 0, len(factors))
	for _, f := range factors {
		labels = append(labels, f.label)
	}

	if len(labels) == 0 {
		labels = append(labels, fallbackFactor(assessment))
	}
	return labels
}

func fallbackFactor(assessment string) string {
	switch assessment {
	case models.AssessmentUnderpriced:
		return "Listed below market estimate"
	case models.AssessmentOverpriced:
		return "Listed above market estimate"
	default:
		return "Priced near market value"
	}
}

// buildExplanation combines the pricing assessment with the top one or two
// key factors into a short narrative.
func buildExplanation(assessment string, predictedValue, diffRatio float64, factors []string) string {
	pct := math.Abs(diffRatio) * 100
	value := formatDollars(predictedValue)

	var sentence string
	switch assessment {
	case models.AssessmentUnderpriced:
		sentence = fmt.Sprintf("This property appears to be a great deal. The model values it at %s, about %.1f%% above the asking price.", value, pct)
	case models.AssessmentOverpriced:
		sentence = fmt.Sprintf("This property appears overpriced. The model estimates a fair value of %s, about %.1f%% below the asking price. Consider negotiating.", value, pct)
	default:
		sentence = fmt.Sprintf("This property is priced close to market value. The model estimates a fair value of %s.", value)
	}

	top := factors
	if len(top) > 2 {
		top = top[:2]
	}
	if len(top) > 0 {
		sentence += " Key factors: " + strings.Join(top, "; ") + "."
	}
	return sentence
}

// formatDollars renders a dollar amount with thousands separators.
func formatDollars(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + "$" + strings.Join(parts, ",")
}
