package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"homeanalyzer/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// RecentSales returns the most recently sold properties, newest first.
func (d *Database) RecentSales(limit int) ([]models.Sale, error) {
	rows, err := d.db.Query(`
        SELECT id, address, city, price, sqft, bedrooms, bathrooms,
               year_built, property_type,
               COALESCE(listing_date, ''), COALESCE(sale_date, ''),
               latitude, longitude
        FROM sales
        ORDER BY sale_date DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSales(rows)
}

// SalesWithCoordinates returns geocoded sales recorded since the cutoff,
// newest first, capped at limit rows.
func (d *Database) SalesWithCoordinates(since time.Time, limit int) ([]models.Sale, error) {
	rows, err := d.db.Query(`
        SELECT id, address, city, price, sqft, bedrooms, bathrooms,
               year_built, property_type,
               COALESCE(listing_date, ''), COALESCE(sale_date, ''),
               latitude, longitude
        FROM sales
        WHERE latitude IS NOT NULL
          AND longitude IS NOT NULL
          AND sale_date >= ?
        ORDER BY sale_date DESC
        LIMIT ?
    `, since.Format("2006-01-02"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSales(rows)
}

// CityStats aggregates recorded sales for one city. A city with no sales
// yields zero-valued stats, not an error.
func (d *Database) CityStats(city string) (models.CityStats, error) {
	var stats models.CityStats
	stats.City = city

	err := d.db.QueryRow(`
        SELECT
            COUNT(*),
            COALESCE(AVG(price), 0),
            COALESCE(AVG(CASE WHEN sqft > 0 THEN CAST(price AS REAL) / sqft END), 0),
            COALESCE(AVG(JULIANDAY(sale_date) - JULIANDAY(listing_date)), 0)
        FROM sales
        WHERE LOWER(city) = LOWER(?)
          AND sale_date IS NOT NULL
    `, city).Scan(&stats.TotalSales, &stats.AveragePrice, &stats.AvgPricePerSqft, &stats.AvgDaysOnMarket)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// MonthlyPriceTrend returns the average sale price per month for the last
// `months` months in a city, oldest month first.
func (d *Database) MonthlyPriceTrend(city string, months int) ([]models.TrendPoint, error) {
	cutoff := time.Now().AddDate(0, -months, 0).Format("2006-01-02")

	rows, err := d.db.Query(`
        SELECT strftime('%Y-%m', sale_date) AS month, AVG(price)
        FROM sales
        WHERE LOWER(city) = LOWER(?)
          AND sale_date >= ?
        GROUP BY month
        ORDER BY month ASC
    `, city, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []models.TrendPoint
	for rows.Next() {
		var month string
		var avg float64
		if err := rows.Scan(&month, &avg); err != nil {
			return nil, err
		}
		trend = append(trend, models.TrendPoint{Month: month, Price: int(avg)})
	}
	return trend, rows.Err()
}

// SaleVelocity counts sales recorded in a city since the cutoff.
func (d *Database) SaleVelocity(city string, since time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(`
        SELECT COUNT(*)
        FROM sales
        WHERE LOWER(city) = LOWER(?)
          AND sale_date >= ?
    `, city, since.Format("2006-01-02")).Scan(&count)
	return count, err
}

// MedianPricePerSqft returns the median price per square foot for a city,
// or 0 when no sales are recorded.
func (d *Database) MedianPricePerSqft(city string) (float64, error) {
	var median sql.NullFloat64
	err := d.db.QueryRow(`
        SELECT CAST(price AS REAL) / sqft AS pps
        FROM sales
        WHERE LOWER(city) = LOWER(?) AND sqft > 0
        ORDER BY pps
        LIMIT 1
        OFFSET (SELECT COUNT(*) FROM sales WHERE LOWER(city) = LOWER(?) AND sqft > 0) / 2
    `, city, city).Scan(&median)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return median.Float64, nil
}

// Cities lists the distinct cities that have recorded sales.
func (d *Database) Cities() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT city FROM sales WHERE city != '' ORDER BY city`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

func scanSales(rows *sql.Rows) ([]models.Sale, error) {
	var sales []models.Sale
	for rows.Next() {
		var s models.Sale
		var listingDate, saleDate string
		var latitude, longitude sql.NullFloat64

		err := rows.Scan(
			&s.ID,
			&s.Address,
			&s.City,
			&s.Price,
			&s.Sqft,
			&s.Bedrooms,
			&s.Bathrooms,
			&s.YearBuilt,
			&s.PropertyType,
			&listingDate,
			&saleDate,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, err
		}

		s.ListingDate = parseDate(listingDate)
		s.SaleDate = parseDate(saleDate)
		if latitude.Valid {
			s.Latitude = &latitude.Float64
		}
		if longitude.Valid {
			s.Longitude = &longitude.Float64
		}

		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// Accepted date layouts. The ingest pipeline writes time.Time through the
// sqlite driver, which stores "2006-01-02 15:04:05.999999999-07:00"; seeds
// and fixtures use plain dates.
var dateLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339Nano,
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
