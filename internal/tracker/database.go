// Package tracker keeps the per-category sets of live objects the culling
// manager scans every tick.
package tracker

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/cullgo/internal/model"
)

// Liveness answers whether a handle still refers to a live object.
type Liveness interface {
	Alive(h model.Handle) bool
}

// categorySet is one category's members plus a lazily rebuilt snapshot.
type categorySet struct {
	members  map[model.Handle]struct{}
	snapshot []model.Handle // immutable after rebuild
	dirty    bool
	version  uint64 // incremented on every membership change
}

func newCategorySet() *categorySet {
	return &categorySet{
		members: make(map[model.Handle]struct{}, 64),
		dirty:   true,
	}
}

// Database tracks active objects by category.
type Database struct {
	mu    sync.RWMutex
	sets  [model.CategoryCount]*categorySet
	alive Liveness
}

// NewDatabase creates an empty database. alive is consulted on refresh to
// drop members that were destroyed behind the database's back.
func NewDatabase(alive Liveness) *Database {
	d := &Database{alive: alive}
	for i := range d.sets {
		d.sets[i] = newCategorySet()
	}
	return d
}

// Register adds h to category c. Registering twice is a no-op.
func (d *Database) Register(c model.Category, h model.Handle) {
	if !c.Valid() || h.IsNone() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.sets[c]
	if _, ok := set.members[h]; ok {
		return
	}
	set.members[h] = struct{}{}
	set.version++
	set.dirty = true
}

// Unregister removes h from category c.
func (d *Database) Unregister(c model.Category, h model.Handle) {
	if !c.Valid() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.sets[c]
	if _, ok := set.members[h]; !ok {
		return
	}
	delete(set.members, h)
	set.version++
	set.dirty = true
}

// Count returns number of members in c (dead members included until refresh).
func (d *Database) Count(c model.Category) int {
	if !c.Valid() {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sets[c].members)
}

// Version returns c's membership version.
func (d *Database) Version(c model.Category) uint64 {
	if !c.Valid() {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sets[c].version
}

// ActiveObjects returns c's members in handle order. With refresh, members
// that are no longer alive are pruned first.
// IMPORTANT: Returned slice is shared, DO NOT modify.
func (d *Database) ActiveObjects(c model.Category, refresh bool) []model.Handle {
	if !c.Valid() {
		return nil
	}

	// Fast path: clean snapshot and no refresh requested
	if !refresh {
		d.mu.RLock()
		set := d.sets[c]
		if !set.dirty {
			snapshot := set.snapshot
			d.mu.RUnlock()
			return snapshot
		}
		d.mu.RUnlock()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.sets[c]
	if refresh && d.alive != nil {
		pruned := 0
		for h := range set.members {
			if !d.alive.Alive(h) {
				delete(set.members, h)
				pruned++
			}
		}
		if pruned > 0 {
			set.version++
			set.dirty = true
			slog.Debug("pruned dead objects", "category", c, "pruned", pruned, "remaining", len(set.members))
		}
	}

	if set.dirty {
		set.snapshot = rebuildSnapshot(set.members)
		set.dirty = false
	}
	return set.snapshot
}

func rebuildSnapshot(members map[model.Handle]struct{}) []model.Handle {
	out := make([]model.Handle, 0, len(members))
	for h := range members {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}
