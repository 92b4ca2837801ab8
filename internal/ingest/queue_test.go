package ingest

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeanalyzer/server/internal/models"
)

func TestNewSaleQueue(t *testing.T) {
	q := NewSaleQueue(10, logrus.New())
	assert.NotNil(t, q)
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.IsClosed())
}

func TestSaleQueue_Push(t *testing.T) {
	q := NewSaleQueue(2, logrus.New())
	sales := []*models.Sale{{Address: "1 Test St"}}

	require.NoError(t, q.Push(sales))
	assert.Equal(t, 1, q.Len())

	// Fill the buffer
	require.NoError(t, q.Push(sales))
	assert.Equal(t, ErrQueueFull, q.Push(sales))

	q.Close()
	assert.Equal(t, ErrQueueClosed, q.Push(sales))
}

func TestSaleQueue_BatchesDeliverEachBatchOnce(t *testing.T) {
	q := NewSaleQueue(10, logrus.New())

	first := []*models.Sale{{Address: "1 Oak Ave"}, {Address: "2 Oak Ave"}}
	second := []*models.Sale{{Address: "3 Oak Ave"}}
	require.NoError(t, q.Push(first))
	require.NoError(t, q.Push(second))
	q.Close()

	var received [][]*models.Sale
	for batch := range q.Batches() {
		received = append(received, batch)
	}

	require.Len(t, received, 2)
	assert.Equal(t, "1 Oak Ave", received[0][0].Address)
	assert.Equal(t, "3 Oak Ave", received[1][0].Address)
}

func TestSaleQueue_CloseDrainsThenEndsChannel(t *testing.T) {
	q := NewSaleQueue(10, logrus.New())
	require.NoError(t, q.Push([]*models.Sale{{Address: "1 Oak Ave"}}))

	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	// Buffered batches survive Close
	batch, ok := <-q.Batches()
	require.True(t, ok)
	assert.Equal(t, "1 Oak Ave", batch[0].Address)

	// Then the channel ends
	_, ok = <-q.Batches()
	assert.False(t, ok)

	// Second close is a no-op
	require.NoError(t, q.Close())
}
