package storage

import (
	"sync"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

// CostTable holds the current cost rates in memory. A costs upload
// replaces the whole table; the last writer wins.
type CostTable struct {
	mu    sync.RWMutex
	rates []models.CostRate
}

func NewCostTable() *CostTable {
	return &CostTable{}
}

// Replace swaps in a new set of rates wholesale.
func (t *CostTable) Replace(rates []models.CostRate) {
	copied := make([]models.CostRate, len(rates))
	copy(copied, rates)
	t.mu.Lock()
	t.rates = copied
	t.mu.Unlock()
}

// Snapshot returns a copy of the current rates.
func (t *CostTable) Snapshot() []models.CostRate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.CostRate, len(t.rates))
	copy(out, t.rates)
	return out
}
