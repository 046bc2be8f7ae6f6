package culling

import (
	"time"

	"github.com/udisondev/cullgo/internal/model"
)

// CategoryStats are cumulative scan counters for one category.
type CategoryStats struct {
	Scans    uint64        `json:"scans"`
	Members  uint64        `json:"members"`
	Culled   uint64        `json:"culled"`
	Unculled uint64        `json:"unculled"`
	ScanTime time.Duration `json:"scan_time_ns"`
}

// AvgMembers returns the mean number of members evaluated per scan.
func (s CategoryStats) AvgMembers() float64 {
	if s.Scans == 0 {
		return 0
	}
	return float64(s.Members) / float64(s.Scans)
}

// Stats are cumulative Manager counters.
type Stats struct {
	Ticks              uint64 `json:"ticks"`
	FastPathTicks      uint64 `json:"fast_path_ticks"`
	ContextChanges     uint64 `json:"context_changes"`
	ReconcileDropped   uint64 `json:"reconcile_dropped"`
	ReconcileDestroyed uint64 `json:"reconcile_destroyed"`
	UnculledDestroyed  uint64 `json:"unculled_destroyed"`
	CurrentlyCulled    int    `json:"currently_culled"`
	Stranded           int    `json:"stranded"`

	Categories [model.CategoryCount]CategoryStats `json:"-"`
}

// Category returns counters for c.
func (s Stats) Category(c model.Category) CategoryStats {
	if !c.Valid() {
		return CategoryStats{}
	}
	return s.Categories[c]
}

// Stats returns a copy of the current counters.
func (m *Manager) Stats() Stats {
	s := m.stats
	s.CurrentlyCulled = m.registry.Len()
	s.Stranded = len(m.stranded)
	return s
}
