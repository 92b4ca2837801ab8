package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"homeanalyzer/server/internal/models"
)

var (
	// ErrModelUnavailable indicates the model artifact could not be loaded.
	ErrModelUnavailable = errors.New("valuation model unavailable")

	// ErrInvalidFeatureVector indicates an out-of-domain feature value,
	// such as an unknown property type.
	ErrInvalidFeatureVector = errors.New("invalid feature vector")
)

// Artifact holds the fitted model coefficients. It is produced offline by
// the calibrate command and loaded once at startup.
type Artifact struct {
	BasePricePerSqft        float64            `json:"base_price_per_sqft"`
	BedroomPremium          float64            `json:"bedroom_premium"`
	BathroomPremium         float64            `json:"bathroom_premium"`
	GaragePremium           float64            `json:"garage_premium"`
	LotPremiumPerSqft       float64            `json:"lot_premium_per_sqft"`
	AgeDepreciationPerYear  float64            `json:"age_depreciation_per_year"`
	PropertyTypeMultipliers map[string]float64 `json:"property_type_multipliers"`
}

// DefaultArtifact returns coefficients matching the distributions the model
// was originally trained on. Used when no calibrated artifact exists yet.
func DefaultArtifact() Artifact {
	return Artifact{
		BasePricePerSqft:       150,
		BedroomPremium:         10000,
		BathroomPremium:        8000,
		GaragePremium:          5000,
		LotPremiumPerSqft:      2,
		AgeDepreciationPerYear: 1000,
		PropertyTypeMultipliers: map[string]float64{
			models.PropertyTypeHouse:     1.0,
			models.PropertyTypeCondo:     0.85,
			models.PropertyTypeTownhouse: 0.92,
		},
	}
}

// Model is an immutable handle to a loaded artifact. The zero value is an
// unloaded model; Predict on it fails with ErrModelUnavailable.
type Model struct {
	artifact    Artifact
	loaded      bool
	currentYear int
}

// NewModel wraps an artifact in a ready-to-use model handle.
func NewModel(artifact Artifact) *Model {
	return &Model{
		artifact:    artifact,
		loaded:      true,
		currentYear: time.Now().Year(),
	}
}

// LoadModel reads the artifact file at path. On failure it returns an
// unloaded model alongside an error wrapping ErrModelUnavailable, so callers
// can keep the handle and surface the error per request.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Model{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return &Model{}, fmt.Errorf("%w: failed to parse artifact: %v", ErrModelUnavailable, err)
	}
	if artifact.BasePricePerSqft <= 0 || len(artifact.PropertyTypeMultipliers) == 0 {
		return &Model{}, fmt.Errorf("%w: artifact is missing coefficients", ErrModelUnavailable)
	}

	return NewModel(artifact), nil
}

// SaveArtifact writes the artifact as indented JSON.
func SaveArtifact(path string, artifact Artifact) error {
	data, err := json.MarshalIndent(artifact, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %v", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Predict estimates the fair value for a property. It fails with
// ErrModelUnavailable when no artifact is loaded and ErrInvalidFeatureVector
// when a feature is out of the model's domain. Both are non-retryable.
func (m *Model) Predict(property models.PropertyRecord) (models.ValuationResult, error) {
	if m == nil || !m.loaded {
		return models.ValuationResult{}, fmt.Errorf("%w: no artifact loaded", ErrModelUnavailable)
	}
	if property.Sqft <= 0 {
		return models.ValuationResult{}, fmt.Errorf("%w: sqft must be positive", ErrInvalidFeatureVector)
	}

	propertyType := property.PropertyType
	if propertyType == "" {
		propertyType = models.PropertyTypeHouse
	}
	multiplier, ok := m.artifact.PropertyTypeMultipliers[normalizeType(propertyType)]
	if !ok {
		return models.ValuationResult{}, fmt.Errorf("%w: unknown property type %q", ErrInvalidFeatureVector, property.PropertyType)
	}

	age := float64(m.currentYear - property.YearBuilt)
	if age < 0 {
		age = 0
	}
	lotSize := float64(property.LotSize)
	if lotSize == 0 {
		lotSize = 8000
	}
	garage := float64(property.Garage)
	if garage == 0 {
		garage = 2
	}

	base := float64(property.Sqft)*m.artifact.BasePricePerSqft +
		float64(property.Bedrooms)*m.artifact.BedroomPremium +
		property.Bathrooms*m.artifact.BathroomPremium +
		garage*m.artifact.GaragePremium +
		lotSize*m.artifact.LotPremiumPerSqft -
		age*m.artifact.AgeDepreciationPerYear

	value := base * multiplier * LocationScore(property.Address)
	if value < 1 {
		value = 1
	}

	return models.ValuationResult{
		PredictedValue:        value,
		PredictedPricePerSqft: value / float64(property.Sqft),
	}, nil
}

// normalizeType maps free-form type strings onto the model's categories.
func normalizeType(propertyType string) string {
	switch strings.ToLower(strings.TrimSpace(propertyType)) {
	case "house", "single family":
		return models.PropertyTypeHouse
	case "condo", "condominium":
		return models.PropertyTypeCondo
	case "townhouse", "townhome":
		return models.PropertyTypeTownhouse
	default:
		return strings.TrimSpace(propertyType)
	}
}
