package culling

import "log/slog"

// reconcile evicts entries that no longer describe a culled object:
//   - the object is gone: drop the entry
//   - the original parent is gone: destroy the object, drop the entry
//   - the inside/outside context changed: drop the entry, keep the
//     snapshot aside until the next scan decides for the object
//
// Returns number of dropped and destroyed entries.
func (m *Manager) reconcile(inside bool) (dropped, destroyed int) {
	if m.registry.Len() == 0 && len(m.stranded) == 0 {
		return 0, 0
	}

	for _, h := range m.registry.Handles() {
		e, _ := m.registry.Get(h)

		switch {
		case !m.scene.Alive(h):
			m.registry.Unregister(h)
			dropped++

		case m.parentLost(e):
			// would have died with its parent had it not been parked
			m.scene.Destroy(h)
			m.registry.Unregister(h)
			destroyed++
			slog.Debug("culled object destroyed, original parent gone",
				"object", h,
				"parent", e.OriginalParent)

		case e.WasInside != inside:
			m.registry.Unregister(h)
			m.stranded[h] = e
			dropped++
		}
	}

	for h := range m.stranded {
		if !m.scene.Alive(h) {
			delete(m.stranded, h)
		}
	}

	m.stats.ReconcileDropped += uint64(dropped)
	m.stats.ReconcileDestroyed += uint64(destroyed)
	return dropped, destroyed
}
