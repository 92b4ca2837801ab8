package market

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"homeanalyzer/server/internal/models"
)

const trendMonths = 6

// Market status thresholds: fast-moving inventory reads as a seller's market.
const sellerMarketMaxDays = 30.0

// TrendStore is the slice of the database the trend service needs.
type TrendStore interface {
	CityStats(city string) (models.CityStats, error)
	MonthlyPriceTrend(city string, months int) ([]models.TrendPoint, error)
}

// TrendService computes neighborhood market trends from recorded sales.
type TrendService struct {
	store  TrendStore
	logger *logrus.Logger
}

func NewTrendService(store TrendStore, logger *logrus.Logger) *TrendService {
	return &TrendService{store: store, logger: logger}
}

// NeighborhoodTrends builds the trends payload for an address. The city is
// taken from the address; with no recorded sales the payload is zero-valued
// but still well-formed.
func (s *TrendService) NeighborhoodTrends(address string) (models.NeighborhoodTrends, error) {
	city := CityFromAddress(address)

	stats, err := s.store.CityStats(city)
	if err != nil {
		return models.NeighborhoodTrends{}, err
	}

	trend, err := s.store.MonthlyPriceTrend(city, trendMonths)
	if err != nil {
		return models.NeighborhoodTrends{}, err
	}
	if trend == nil {
		trend = []models.TrendPoint{}
	}

	status := "buyer"
	if stats.TotalSales > 0 && stats.AvgDaysOnMarket > 0 && stats.AvgDaysOnMarket <= sellerMarketMaxDays {
		status = "seller"
	}

	return models.NeighborhoodTrends{
		Location:     city,
		AveragePrice: roundDollars(stats.AveragePrice),
		PriceTrend:   trend,
		DaysOnMarket: roundDollars(stats.AvgDaysOnMarket),
		PricePerSqft: roundDollars(stats.AvgPricePerSqft),
		MarketStatus: status,
		TotalSales:   stats.TotalSales,
	}, nil
}

// roundDollars rounds a monetary aggregate to a whole number without the
// float drift of naive casts.
func roundDollars(v float64) int {
	return int(decimal.NewFromFloat(v).Round(0).IntPart())
}

// CityFromAddress extracts the city component from a free-text address of
// the form "street, city[, region]". Addresses without commas are used as-is.
func CityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(address)
}
