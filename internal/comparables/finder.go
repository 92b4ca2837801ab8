package comparables

import (
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/sirupsen/logrus"

	"homeanalyzer/server/internal/models"
	"homeanalyzer/server/internal/scoring"
)

const candidatePoolSize = 500

// SalesStore is the slice of the database the finder needs.
type SalesStore interface {
	RecentSales(limit int) ([]models.Sale, error)
	SalesWithCoordinates(since time.Time, limit int) ([]models.Sale, error)
}

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	GeocodeAddress(address string) (float64, float64, error)
}

// Finder looks up recent sales near a subject property. An empty result is
// not an error; only store failures are.
type Finder struct {
	store              SalesStore
	geocoder           Geocoder
	logger             *logrus.Logger
	lookbackDays       int
	velocityWindowDays int
}

func NewFinder(store SalesStore, geocoder Geocoder, logger *logrus.Logger, lookbackDays, velocityWindowDays int) *Finder {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	if velocityWindowDays <= 0 {
		velocityWindowDays = 90
	}
	return &Finder{
		store:              store,
		geocoder:           geocoder,
		logger:             logger,
		lookbackDays:       lookbackDays,
		velocityWindowDays: velocityWindowDays,
	}
}

// Find returns up to limit comparable sales for the property, nearest first,
// along with the market-timing signal derived from their sale dates. When the
// address cannot be geocoded it degrades to the most recent sales on record.
func (f *Finder) Find(property models.PropertyRecord, limit int) ([]models.ComparableSale, scoring.MarketSignal, error) {
	if limit <= 0 {
		limit = 5
	}

	sales, err := f.nearbySales(property, limit)
	if err != nil {
		return nil, scoring.MarketSignal{}, err
	}

	comps := make([]models.ComparableSale, 0, len(sales))
	velocity := 0
	velocityCutoff := time.Now().AddDate(0, 0, -f.velocityWindowDays)
	for _, s := range sales {
		comps = append(comps, toComparable(s))
		if s.SaleDate.After(velocityCutoff) {
			velocity++
		}
	}

	signal := scoring.MarketSignal{RecentSales: velocity, Available: len(comps) > 0}
	return comps, signal, nil
}

func (f *Finder) nearbySales(property models.PropertyRecord, limit int) ([]models.Sale, error) {
	lat, lon, err := f.geocoder.GeocodeAddress(property.Address)
	if err != nil {
		f.logger.WithError(err).WithField("address", property.Address).
			Warn("Geocoding failed, falling back to most recent sales")
		return f.store.RecentSales(limit)
	}

	since := time.Now().AddDate(0, 0, -f.lookbackDays)
	candidates, err := f.store.SalesWithCoordinates(since, candidatePoolSize)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return f.store.RecentSales(limit)
	}

	subject := orb.Point{lon, lat}
	sort.SliceStable(candidates, func(i, j int) bool {
		return distanceTo(subject, candidates[i]) < distanceTo(subject, candidates[j])
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func distanceTo(subject orb.Point, sale models.Sale) float64 {
	// Sales without coordinates sort after every geocoded one
	if sale.Latitude == nil || sale.Longitude == nil {
		return math.Inf(1)
	}
	return geo.Distance(subject, orb.Point{*sale.Longitude, *sale.Latitude})
}

func toComparable(sale models.Sale) models.ComparableSale {
	saleDate := ""
	if !sale.SaleDate.IsZero() {
		saleDate = sale.SaleDate.Format("2006-01-02")
	}
	return models.ComparableSale{
		Address:   sale.Address,
		SalePrice: sale.Price,
		SaleDate:  saleDate,
		Sqft:      sale.Sqft,
		Bedrooms:  sale.Bedrooms,
		Bathrooms: sale.Bathrooms,
	}
}
