package culling

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cullgo/internal/model"
)

const (
	// CycleLength is the number of ticks in one round-robin cycle.
	CycleLength = 12
	// teleportResumeTick is where the cycle continues after a full scan.
	teleportResumeTick = 10
)

// schedule assigns category groups to even ticks. Tick 10 and odd ticks
// are idle.
var schedule = [CycleLength][]model.Category{
	0: {model.CategoryBillboard, model.CategoryFoeSpawner},
	2: {model.CategoryEnemy, model.CategoryDungeonBlock},
	4: {model.CategoryActionDoor},
	6: {model.CategoryStaticNPC},
	8: {model.CategoryLoot},
}

// ScheduledCategories returns the categories evaluated on tick t.
func ScheduledCategories(t int) []model.Category {
	if t < 0 || t >= CycleLength {
		return nil
	}
	return schedule[t]
}

// TickReport describes what one Tick did.
type TickReport struct {
	Tick           int  // cycle position evaluated (before advancing)
	FastPath       bool // every group was evaluated this frame
	ContextChanged bool

	Scanned   []model.Category
	Culled    int
	Unculled  int
	Dropped   int
	Destroyed int
}

// Tick runs one frame: context-change handling, reconciliation, then either
// the group scheduled for the current tick or, after a large jump of ref,
// every group.
func (m *Manager) Tick(ref mgl32.Vec3, inside bool) TickReport {
	var report TickReport

	switch {
	case !m.started:
		m.started = true
		m.inside = inside
		m.tick = 0
		m.lastPosition = ref
	case inside != m.inside:
		m.inside = inside
		m.tick = 0
		m.lastPosition = ref
		m.stats.ContextChanges++
		report.ContextChanged = true
		slog.Debug("cull context changed", "inside", inside, "culled", m.registry.Len())
	}

	report.Tick = m.tick
	report.Dropped, report.Destroyed = m.reconcile(inside)

	if model.DistanceSquared(ref, m.lastPosition) > m.blockRangeSq/4 {
		for t := 0; t < CycleLength; t += 2 {
			m.runGroup(t, ref, &report)
		}
		report.FastPath = true
		m.tick = teleportResumeTick
		m.stats.FastPathTicks++
		slog.Debug("reference jumped, full cull pass",
			"from", m.lastPosition,
			"to", ref,
			"culled", report.Culled,
			"unculled", report.Unculled)
	} else {
		m.runGroup(m.tick, ref, &report)
	}

	m.tick = (m.tick + 1) % CycleLength
	m.lastPosition = ref
	m.stats.Ticks++
	return report
}

func (m *Manager) runGroup(t int, ref mgl32.Vec3, report *TickReport) {
	for _, c := range schedule[t] {
		m.scan(c, ref, report)
	}
}
