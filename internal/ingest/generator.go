package ingest

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"homeanalyzer/server/internal/models"
)

// cityCenter anchors generated sales around real coordinates so the
// comparables lookup has something to measure distance against.
type cityCenter struct {
	name string
	lat  float64
	lon  float64
}

var cityCenters = []cityCenter{
	{"Seattle", 47.6062, -122.3321},
	{"Portland", 45.5152, -122.6784},
	{"Austin", 30.2672, -97.7431},
	{"Denver", 39.7392, -104.9903},
	{"Raleigh", 35.7796, -78.6382},
}

var streetNames = []string{
	"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Park Rd",
	"Lakeview Dr", "Hillcrest Ave", "Elm St", "Sunset Blvd", "Ridge Rd",
}

// Generator produces synthetic but realistically distributed sale records
// for seeding the market database.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. The same seed reproduces the same sales.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces n sale records with prices derived from their features
// plus market noise.
func (g *Generator) Generate(n int) []*models.Sale {
	sales := make([]*models.Sale, 0, n)
	now := time.Now()

	for i := 0; i < n; i++ {
		city := cityCenters[g.rng.Intn(len(cityCenters))]

		sqft := clampInt(int(math.Exp(g.rng.NormFloat64()*0.4+7.5)), 500, 8000)
		bedrooms := g.weightedChoice([]int{1, 2, 3, 4, 5}, []float64{0.10, 0.25, 0.35, 0.25, 0.05})
		bathrooms := clampFloat(1+g.rng.Float64()*float64(bedrooms), 1, 5)
		bathrooms = math.Round(bathrooms*2) / 2
		age := clampInt(int(g.rng.ExpFloat64()*25), 0, 100)
		lotSize := clampInt(int(math.Exp(g.rng.NormFloat64()*0.6+9)), 1000, 50000)
		garage := g.weightedChoice([]int{0, 1, 2, 3}, []float64{0.10, 0.20, 0.60, 0.10})
		propertyType := g.propertyType()
		locationScore := 0.5 + g.rng.Float64()*2.0

		// Price formula mirrors the distributions the model is fitted on
		basePerSqft := 200 + locationScore*100
		price := float64(sqft)*basePerSqft +
			float64(bedrooms)*8000 +
			bathrooms*12000 +
			float64(garage)*8000 +
			float64(lotSize)*3 -
			float64(age)*800
		price *= 1 + g.rng.NormFloat64()*0.15
		price = clampFloat(price, 100000, 2000000)

		daysAgo := g.rng.Intn(365)
		saleDate := now.AddDate(0, 0, -daysAgo)
		daysOnMarket := 10 + g.rng.Intn(50)
		listingDate := saleDate.AddDate(0, 0, -daysOnMarket)

		lat := city.lat + g.rng.NormFloat64()*0.05
		lon := city.lon + g.rng.NormFloat64()*0.05

		sales = append(sales, &models.Sale{
			Address:      fmt.Sprintf("%d %s, %s", 100+g.rng.Intn(9900), streetNames[g.rng.Intn(len(streetNames))], city.name),
			City:         city.name,
			Price:        int(price),
			Sqft:         sqft,
			Bedrooms:     bedrooms,
			Bathrooms:    bathrooms,
			YearBuilt:    now.Year() - age,
			PropertyType: propertyType,
			ListingDate:  listingDate,
			SaleDate:     saleDate,
			Latitude:     &lat,
			Longitude:    &lon,
		})
	}

	return sales
}

func (g *Generator) propertyType() string {
	r := g.rng.Float64()
	switch {
	case r < 0.7:
		return models.PropertyTypeHouse
	case r < 0.9:
		return models.PropertyTypeCondo
	default:
		return models.PropertyTypeTownhouse
	}
}

func (g *Generator) weightedChoice(values []int, weights []float64) int {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
