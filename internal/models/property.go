package models

import "time"

// Recognized property types. House is the default when the caller omits the field.
const (
	PropertyTypeHouse     = "House"
	PropertyTypeCondo     = "Condo"
	PropertyTypeTownhouse = "Townhouse"
)

// PropertyRecord is the canonical description of a listing under analysis.
// It is immutable once it reaches the evaluator.
type PropertyRecord struct {
	Address      string  `json:"address"`
	Price        int     `json:"price"`
	Sqft         int     `json:"sqft"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	YearBuilt    int     `json:"year_built"`
	PropertyType string  `json:"property_type"`
	LotSize      int     `json:"lot_size,omitempty"`
	Garage       int     `json:"garage,omitempty"`
}

// Sale is a recorded sale in the local market database.
type Sale struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Address      string    `json:"address" gorm:"index:idx_sales_address_date,unique"`
	City         string    `json:"city" gorm:"index"`
	Price        int       `json:"price"`
	Sqft         int       `json:"sqft"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    float64   `json:"bathrooms"`
	YearBuilt    int       `json:"year_built"`
	PropertyType string    `json:"property_type"`
	ListingDate  time.Time `json:"listing_date"`
	SaleDate     time.Time `json:"sale_date" gorm:"index:idx_sales_address_date,unique"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName keeps GORM writes and the raw SQL read path on the same table.
func (Sale) TableName() string {
	return "sales"
}

// ComparableSale is the display form of a nearby recent sale.
type ComparableSale struct {
	Address   string  `json:"address"`
	SalePrice int     `json:"sale_price"`
	SaleDate  string  `json:"sale_date"`
	Sqft      int     `json:"sqft"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
}

// TrendPoint is one month of average sale price.
type TrendPoint struct {
	Month string `json:"month"`
	Price int    `json:"price"`
}

// NeighborhoodTrends summarizes recent market activity around an address.
type NeighborhoodTrends struct {
	Location     string       `json:"location"`
	AveragePrice int          `json:"average_price"`
	PriceTrend   []TrendPoint `json:"price_trend"`
	DaysOnMarket int          `json:"days_on_market"`
	PricePerSqft int          `json:"price_per_sqft"`
	MarketStatus string       `json:"market_status"`
	TotalSales   int          `json:"total_sales"`
}

// CityStats are aggregates over recorded sales in one city.
type CityStats struct {
	City            string  `json:"city"`
	TotalSales      int     `json:"total_sales"`
	AveragePrice    float64 `json:"average_price"`
	AvgPricePerSqft float64 `json:"avg_price_per_sqft"`
	AvgDaysOnMarket float64 `json:"avg_days_on_market"`
}
