package app

import (
	"sync"

	"go.uber.org/zap"
)

// ClientCounter reports how many clients are connected.
type ClientCounter interface {
	Count() int
}

// Occupancy counts clients across every namespace's session registry.
type Occupancy struct {
	mu     sync.RWMutex
	stores []ClientCounter
}

func NewOccupancy() *Occupancy {
	return &Occupancy{}
}

// Track adds sessions to the total and returns it unchanged.
func (o *Occupancy) Track(sessions SessionRepository) SessionRepository {
	o.mu.Lock()
	o.stores = append(o.stores, sessions)
	o.mu.Unlock()
	return sessions
}

func (o *Occupancy) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	total := 0
	for _, store := range o.stores {
		total += store.Count()
	}
	return total
}

// OccupancyStatus buckets the number of connected clients.
func OccupancyStatus(count int) string {
	switch {
	case count <= 0:
		return "Server is empty"
	case count == 1:
		return "Server has one client"
	case count <= 3:
		return "Server has 2 or 3 clients"
	default:
		return "Server has 3 more clients"
	}
}

func logStatus(logger *zap.Logger, clients ClientCounter) {
	count := clients.Count()
	logger.Info(OccupancyStatus(count), zap.Int("clients", count))
}
