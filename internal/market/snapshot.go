package market

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SnapshotStore is the slice of the database the snapshot needs.
type SnapshotStore interface {
	Cities() ([]string, error)
	SaleVelocity(city string, since time.Time) (int, error)
}

// Snapshot keeps per-city sale-velocity counts in memory, refreshed on a
// cron schedule. It backs the evaluator's market-timing signal when a
// request produces no comparables of its own.
type Snapshot struct {
	store              SnapshotStore
	logger             *logrus.Logger
	velocityWindowDays int

	mu       sync.RWMutex
	velocity map[string]int

	cron *cron.Cron
}

func NewSnapshot(store SnapshotStore, logger *logrus.Logger, velocityWindowDays int) *Snapshot {
	if velocityWindowDays <= 0 {
		velocityWindowDays = 90
	}
	return &Snapshot{
		store:              store,
		logger:             logger,
		velocityWindowDays: velocityWindowDays,
		velocity:           make(map[string]int),
	}
}

// Start refreshes once immediately and then on the given cron schedule.
func (s *Snapshot) Start(schedule string) error {
	s.Refresh()

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, s.Refresh); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the refresh schedule.
func (s *Snapshot) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Refresh recomputes sale velocity for every known city.
func (s *Snapshot) Refresh() {
	cities, err := s.store.Cities()
	if err != nil {
		s.logger.WithError(err).Error("Failed to list cities for market snapshot")
		return
	}

	since := time.Now().AddDate(0, 0, -s.velocityWindowDays)
	updated := make(map[string]int, len(cities))
	for _, city := range cities {
		count, err := s.store.SaleVelocity(city, since)
		if err != nil {
			s.logger.WithError(err).WithField("city", city).Error("Failed to compute sale velocity")
			continue
		}
		updated[city] = count
	}

	s.mu.Lock()
	s.velocity = updated
	s.mu.Unlock()

	s.logger.WithField("cities", len(updated)).Info("Refreshed market snapshot")
}

// Velocity returns the recent sale count for a city and whether the city is
// present in the snapshot.
func (s *Snapshot) Velocity(city string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count, ok := s.velocity[city]
	return count, ok
}
