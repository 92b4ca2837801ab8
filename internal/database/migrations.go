package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Create sales table
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL,
			sqft INTEGER NOT NULL,
			bedrooms INTEGER NOT NULL DEFAULT 0,
			bathrooms REAL NOT NULL DEFAULT 0,
			year_built INTEGER,
			property_type TEXT NOT NULL DEFAULT 'House',
			listing_date TIMESTAMP,
			sale_date TIMESTAMP,
			latitude REAL,
			longitude REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sales table: %v", err)
	}

	// One row per address and sale date; re-ingesting the same sale upserts
	_, err = d.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_address_date
		ON sales(address, sale_date);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sales unique index: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sales_city
		ON sales(city);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sales_sale_date
		ON sales(sale_date);
	`)
	if err != nil {
		return err
	}

	// Spatial index on coordinates for the comparables lookup
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sales_coordinates
		ON sales(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	return nil
}
