package ingest

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homeanalyzer/server/config"
	"homeanalyzer/server/internal/models"
)

func newTestORM(t *testing.T) *gorm.DB {
	t.Helper()

	orm, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sales.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, orm.AutoMigrate(&models.Sale{}))
	return orm
}

func testConfig(workers int) *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = workers
	cfg.BatchProcessing.MaxRetries = 0
	cfg.BatchProcessing.RetryDelay = 1
	return cfg
}

func testSale(i int) *models.Sale {
	return &models.Sale{
		Address:      fmt.Sprintf("%d Oak Ave, Seattle", 100+i),
		City:         "Seattle",
		Price:        400000 + i*1000,
		Sqft:         1800,
		Bedrooms:     3,
		Bathrooms:    2,
		YearBuilt:    1995,
		PropertyType: models.PropertyTypeHouse,
		SaleDate:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
	}
}

func TestBatchProcessor_EachSaleStoredOnce(t *testing.T) {
	orm := newTestORM(t)
	logger := logrus.New()

	queue := NewSaleQueue(10, logger)
	processor := NewBatchProcessor(orm, queue, testConfig(2), logger)
	processor.Start()

	var pushed int
	for b := 0; b < 4; b++ {
		batch := make([]*models.Sale, 0, 5)
		for i := 0; i < 5; i++ {
			batch = append(batch, testSale(b*5+i))
			pushed++
		}
		require.NoError(t, queue.Push(batch))
	}

	queue.Close()
	processor.Stop()

	var count int64
	require.NoError(t, orm.Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(pushed), count)
}

func TestBatchProcessor_UpsertsOnAddressAndDate(t *testing.T) {
	orm := newTestORM(t)
	logger := logrus.New()

	queue := NewSaleQueue(10, logger)
	processor := NewBatchProcessor(orm, queue, testConfig(1), logger)
	processor.Start()

	original := testSale(0)
	corrected := testSale(0)
	corrected.Price = original.Price + 25000

	require.NoError(t, queue.Push([]*models.Sale{original}))
	require.NoError(t, queue.Push([]*models.Sale{corrected}))

	queue.Close()
	processor.Stop()

	var stored []models.Sale
	require.NoError(t, orm.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, corrected.Price, stored[0].Price)
}

func TestUpsertSales_EmptyBatch(t *testing.T) {
	orm := newTestORM(t)
	assert.NoError(t, UpsertSales(orm, nil))
}
