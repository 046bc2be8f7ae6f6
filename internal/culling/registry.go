package culling

import (
	"slices"

	"github.com/udisondev/cullgo/internal/model"
)

// Entry is the pre-cull snapshot of one culled object.
type Entry struct {
	Object model.Handle // never owned; may be destroyed at any time

	// OriginalParent is None both for root objects and when nothing was
	// recorded; HadNoOriginalParent tells the two apart.
	OriginalParent      model.Handle
	HadNoOriginalParent bool

	OriginalLocal model.Pose
	WasInside     bool // inside/outside context at cull time
}

// Registry maps object handles to their Entry. At most one entry per handle.
// Not safe for concurrent use.
type Registry struct {
	entries map[model.Handle]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[model.Handle]Entry, 256)}
}

// Register inserts or overwrites the entry for e.Object.
func (r *Registry) Register(e Entry) {
	r.entries[e.Object] = e
}

// Unregister removes and returns h's entry.
func (r *Registry) Unregister(h model.Handle) (Entry, bool) {
	e, ok := r.entries[h]
	if ok {
		delete(r.entries, h)
	}
	return e, ok
}

// Contains reports whether h has an entry.
func (r *Registry) Contains(h model.Handle) bool {
	_, ok := r.entries[h]
	return ok
}

// Get returns h's entry.
func (r *Registry) Get(h model.Handle) (Entry, bool) {
	e, ok := r.entries[h]
	return e, ok
}

// Len returns number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Handles returns registered handles in ascending order. The returned slice
// is a copy, so the registry may be mutated while iterating it.
func (r *Registry) Handles() []model.Handle {
	out := make([]model.Handle, 0, len(r.entries))
	for h := range r.entries {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}
