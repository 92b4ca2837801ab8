package ingest

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"homeanalyzer/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// SaleQueue is a bounded buffer of sale batches between producers and the
// batch processor's workers. Each pushed batch is consumed by exactly one
// worker. Close the queue once all batches are pushed so the workers can
// drain it and exit.
type SaleQueue struct {
	items  chan []*models.Sale
	mu     sync.RWMutex
	closed bool
	logger *logrus.Logger
}

// NewSaleQueue creates a queue holding up to bufferSize pending batches.
func NewSaleQueue(bufferSize int, logger *logrus.Logger) *SaleQueue {
	return &SaleQueue{
		items:  make(chan []*models.Sale, bufferSize),
		logger: logger,
	}
}

// Push enqueues a batch without blocking. It fails with ErrQueueFull when
// the buffer is at capacity and ErrQueueClosed after Close.
func (q *SaleQueue) Push(sales []*models.Sale) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- sales:
		q.logger.WithField("batch_size", len(sales)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Batches exposes the receive side of the queue. The channel delivers every
// pushed batch and is closed, after draining, once Close is called.
func (q *SaleQueue) Batches() <-chan []*models.Sale {
	return q.items
}

// Close rejects further pushes and lets consumers drain what remains.
// Closing twice is a no-op.
func (q *SaleQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.items)
	return nil
}

// Len returns the number of batches waiting to be consumed.
func (q *SaleQueue) Len() int {
	return len(q.items)
}

// IsClosed reports whether the queue has been closed.
func (q *SaleQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
