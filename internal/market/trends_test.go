package market

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeanalyzer/server/internal/models"
)

type fakeTrendStore struct {
	stats models.CityStats
	trend []models.TrendPoint
	err   error
}

func (f *fakeTrendStore) CityStats(city string) (models.CityStats, error) {
	if f.err != nil {
		return models.CityStats{}, f.err
	}
	return f.stats, nil
}

func (f *fakeTrendStore) MonthlyPriceTrend(city string, months int) ([]models.TrendPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trend, nil
}

func TestNeighborhoodTrends_SellerMarket(t *testing.T) {
	store := &fakeTrendStore{
		stats: models.CityStats{
			TotalSales:      42,
			AveragePrice:    512345.67,
			AvgPricePerSqft: 251.4,
			AvgDaysOnMarket: 18.2,
		},
		trend: []models.TrendPoint{
			{Month: "2026-06", Price: 500000},
			{Month: "2026-07", Price: 512000},
		},
	}
	svc := NewTrendService(store, logrus.New())

	trends, err := svc.NeighborhoodTrends("1015 Pine St, Seattle, WA")
	require.NoError(t, err)

	assert.Equal(t, "Seattle", trends.Location)
	assert.Equal(t, 512346, trends.AveragePrice)
	assert.Equal(t, 251, trends.PricePerSqft)
	assert.Equal(t, 18, trends.DaysOnMarket)
	assert.Equal(t, "seller", trends.MarketStatus)
	assert.Equal(t, 42, trends.TotalSales)
	assert.Len(t, trends.PriceTrend, 2)
}

func TestNeighborhoodTrends_BuyerMarket(t *testing.T) {
	store := &fakeTrendStore{
		stats: models.CityStats{TotalSales: 10, AveragePrice: 300000, AvgDaysOnMarket: 75},
	}
	svc := NewTrendService(store, logrus.New())

	trends, err := svc.NeighborhoodTrends("9 Elm St, Portland")
	require.NoError(t, err)
	assert.Equal(t, "buyer", trends.MarketStatus)
}

func TestNeighborhoodTrends_NoSales(t *testing.T) {
	store := &fakeTrendStore{}
	svc := NewTrendService(store, logrus.New())

	trends, err := svc.NeighborhoodTrends("1 Nowhere Ln, Ghosttown")
	require.NoError(t, err)

	// Zero sales never reads as a seller's market, and the trend slice is
	// present even when empty.
	assert.Equal(t, "buyer", trends.MarketStatus)
	assert.Equal(t, 0, trends.TotalSales)
	assert.NotNil(t, trends.PriceTrend)
	assert.Empty(t, trends.PriceTrend)
}

func TestNeighborhoodTrends_StoreError(t *testing.T) {
	store := &fakeTrendStore{err: errors.New("db closed")}
	svc := NewTrendService(store, logrus.New())

	_, err := svc.NeighborhoodTrends("1015 Pine St, Seattle, WA")
	assert.Error(t, err)
}

func TestCityFromAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"1015 Pine St, Seattle, WA 98101", "Seattle"},
		{"9 Elm St,Portland", "Portland"},
		{"Austin", "Austin"},
		{"  Denver  ", "Denver"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CityFromAddress(tt.address), tt.address)
	}
}

func TestRoundDollars(t *testing.T) {
	assert.Equal(t, 512346, roundDollars(512345.67))
	assert.Equal(t, 0, roundDollars(0))
	assert.Equal(t, 100, roundDollars(99.5))
}
