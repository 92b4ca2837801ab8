package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homeanalyzer/server/config"
	"homeanalyzer/server/internal/models"
)

// BatchProcessor drains the sale queue with a pool of workers, upserting
// each batch into the database exactly once.
type BatchProcessor struct {
	db        *gorm.DB
	logger    *logrus.Logger
	config    *config.Config
	queue     *SaleQueue
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewBatchProcessor(db *gorm.DB, queue *SaleQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker pool. Each batch is claimed by a single worker.
func (p *BatchProcessor) Start() {
	count := p.config.BatchProcessing.ProcessorCount
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		p.waitGroup.Add(1)
		go p.worker(i)
	}
}

// Stop interrupts pending retries and waits for the workers to finish
// draining. The queue must be closed first, or the workers never exit.
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

func (p *BatchProcessor) worker(id int) {
	defer p.waitGroup.Done()

	for batch := range p.queue.Batches() {
		if err := p.processBatch(batch); err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"worker":     id,
				"batch_size": len(batch),
			}).Error("Dropping sale batch")
		}
	}
}

// processBatch upserts one batch inside a transaction, retrying per the
// configured policy. Cancellation cuts the retry loop short.
func (p *BatchProcessor) processBatch(batch []*models.Sale) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			select {
			case <-p.ctx.Done():
				return p.ctx.Err()
			case <-time.After(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := UpsertSales(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert sales batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.WithField("batch_size", len(batch)).Debug("Processed sale batch")
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}

// UpsertSales inserts the batch, replacing rows that share an address and
// sale date with fresher data.
func UpsertSales(tx *gorm.DB, batch []*models.Sale) error {
	if len(batch) == 0 {
		return nil
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}, {Name: "sale_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"city", "price", "sqft", "bedrooms", "bathrooms",
			"year_built", "property_type", "listing_date",
			"latitude", "longitude",
		}),
	}).Create(batch).Error
}
