package culling

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cullgo/internal/model"
)

// scan evaluates every live member of c against ref using the rule for c.
func (m *Manager) scan(c model.Category, ref mgl32.Vec3, report *TickReport) {
	if c == model.CategoryBillboard && m.inside {
		return
	}

	start := time.Now()
	members := m.objects.ActiveObjects(c, true)

	var culled, unculled, evaluated int
	for _, h := range members {
		if !m.scene.Alive(h) {
			continue
		}

		var far bool
		switch c {
		case model.CategoryDungeonBlock:
			if m.scene.RootName(h) == AutomapRootName {
				continue
			}
			far = m.blockOutOfRange(h, ref)
		case model.CategoryBillboard:
			far = model.DistanceSquared(ref, m.scene.WorldPosition(h)) > m.billboardRangeSq
		default:
			far = model.DistanceSquared(ref, m.scene.WorldPosition(h)) > m.blockRangeSq
		}
		evaluated++

		switch {
		case far && !m.IsObjectCulled(h):
			if m.CullObject(h) {
				culled++
			}
		case !far && m.IsObjectCulled(h):
			if m.UnCullObject(h) {
				unculled++
			}
		case !far:
			if m.release(h) {
				unculled++
			}
		}
	}

	cs := &m.stats.Categories[c]
	cs.Scans++
	cs.Members += uint64(evaluated)
	cs.Culled += uint64(culled)
	cs.Unculled += uint64(unculled)
	cs.ScanTime += time.Since(start)

	report.Scanned = append(report.Scanned, c)
	report.Culled += culled
	report.Unculled += unculled
}

// BlockBounds returns the footprint box of a block whose origin (a corner)
// is at origin.
func (m *Manager) BlockBounds(origin mgl32.Vec3) AABB {
	half := mgl32.Vec3{1, 1, 1}.Mul(m.blockHalfExtent)
	return NewAABB(origin.Add(half), half.Mul(2))
}

// blockOutOfRange reports whether ref is farther than the block range from
// h's footprint. A reference inside the footprint is always in range.
func (m *Manager) blockOutOfRange(h model.Handle, ref mgl32.Vec3) bool {
	box := m.BlockBounds(m.scene.WorldPosition(h))
	if box.Contains(ref) {
		return false
	}
	return box.DistanceSquared(ref) > m.blockRangeSq
}
