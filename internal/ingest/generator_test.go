package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeanalyzer/server/internal/models"
)

func TestGenerator_Deterministic(t *testing.T) {
	first := NewGenerator(42).Generate(50)
	second := NewGenerator(42).Generate(50)

	require.Len(t, second, 50)
	for i := range first {
		assert.Equal(t, first[i].Address, second[i].Address)
		assert.Equal(t, first[i].Price, second[i].Price)
	}
}

func TestGenerator_RealisticRanges(t *testing.T) {
	sales := NewGenerator(7).Generate(500)
	require.Len(t, sales, 500)

	validTypes := map[string]bool{
		models.PropertyTypeHouse:     true,
		models.PropertyTypeCondo:     true,
		models.PropertyTypeTownhouse: true,
	}

	for _, s := range sales {
		assert.NotEmpty(t, s.Address)
		assert.NotEmpty(t, s.City)
		assert.GreaterOrEqual(t, s.Sqft, 500)
		assert.LessOrEqual(t, s.Sqft, 8000)
		assert.GreaterOrEqual(t, s.Price, 100000)
		assert.LessOrEqual(t, s.Price, 2000000)
		assert.GreaterOrEqual(t, s.Bedrooms, 1)
		assert.LessOrEqual(t, s.Bedrooms, 5)
		assert.GreaterOrEqual(t, s.Bathrooms, 1.0)
		assert.LessOrEqual(t, s.Bathrooms, 5.0)
		assert.True(t, validTypes[s.PropertyType], s.PropertyType)
		assert.True(t, s.ListingDate.Before(s.SaleDate))
		require.NotNil(t, s.Latitude)
		require.NotNil(t, s.Longitude)
	}
}
