package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"tripmarket/internal/domain/models"
	"tripmarket/internal/utils"
)

const DefaultTripCacheTTL = 5 * time.Minute

type ActiveTripLister interface {
	ListActive(ctx context.Context) ([]models.TravelPlan, error)
}

// TripCache keeps one snapshot of the ACTIVE listings per process, optionally
// backed by a shared snapshot so several processes reuse the same load.
// The mutex only guards the snapshot pointer; concurrent misses may both reload.
type TripCache struct {
	Store  ActiveTripLister
	Shared SnapshotStore
	TTL    time.Duration
	Now    func() time.Time

	mu   sync.Mutex
	snap *models.TripSnapshot
}

func NewTripCache(store ActiveTripLister, shared SnapshotStore, ttl time.Duration) *TripCache {
	return &TripCache{Store: store, Shared: shared, TTL: ttl}
}

func (c *TripCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *TripCache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTripCacheTTL
}

func (c *TripCache) fresh(snap *models.TripSnapshot, now time.Time) bool {
	return snap != nil && now.Sub(snap.FetchedAt) < c.ttl()
}

func (c *TripCache) current() *models.TripSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *TripCache) swap(snap *models.TripSnapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// GetActiveTrips serves the snapshot while it is younger than the TTL and reloads it otherwise.
// A non-empty query filters by case-insensitive substring on destination, title, city, state and country.
func (c *TripCache) GetActiveTrips(ctx context.Context, query string) ([]models.TravelPlan, error) {
	now := c.now()
	snap := c.current()
	if !c.fresh(snap, now) {
		loaded, err := c.reload(ctx, now)
		if err != nil {
			return nil, err
		}
		snap = loaded
	}
	return filterTrips(snap.Trips, query), nil
}

func (c *TripCache) reload(ctx context.Context, now time.Time) (*models.TripSnapshot, error) {
	log := utils.Logger(ctx, "trip_cache")

	if c.Shared != nil {
		shared, ok, err := c.Shared.Load(ctx)
		if err != nil {
			log.WithError(err).Warn("shared snapshot load failed")
		} else if ok && c.fresh(&shared, now) {
			c.swap(&shared)
			return &shared, nil
		}
	}

	trips, err := c.Store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	snap := &models.TripSnapshot{Trips: trips, FetchedAt: now}
	c.swap(snap)
	log.WithField("trips", len(trips)).Debug("listing snapshot reloaded")

	if c.Shared != nil {
		if err := c.Shared.Save(ctx, *snap); err != nil {
			log.WithError(err).Warn("shared snapshot save failed")
		}
	}
	return snap, nil
}

// Clear drops the local snapshot and the shared one.
func (c *TripCache) Clear(ctx context.Context) {
	c.swap(nil)
	if c.Shared != nil {
		if err := c.Shared.Clear(ctx); err != nil {
			utils.Logger(ctx, "trip_cache").WithError(err).Warn("shared snapshot clear failed")
		}
	}
}

func filterTrips(trips []models.TravelPlan, query string) []models.TravelPlan {
	q := strings.TrimSpace(query)
	out := make([]models.TravelPlan, 0, len(trips))
	for _, t := range trips {
		if q == "" || tripMatches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

func tripMatches(t models.TravelPlan, q string) bool {
	for _, field := range []string{t.Destination, t.Title, t.City, t.State, t.Country} {
		if utils.ContainsFold(field, q) {
			return true
		}
	}
	return false
}
