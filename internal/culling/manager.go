// Package culling detaches far-away objects from the live scene and restores
// them when the reference point comes back in range.
//
// A Manager is driven by one Tick per frame from a single goroutine. It owns
// no objects: it stores handles and pre-cull snapshots, and asks the Scene
// whether objects are still alive.
package culling

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cullgo/internal/model"
)

const (
	// UnscaledBlockRange is the cull distance in unscaled world units.
	UnscaledBlockRange float32 = 2060
	// BlockHalfExtent is half of a dungeon block's footprint, unscaled.
	BlockHalfExtent float32 = 1024
	// BillboardRange is the fixed billboard cull distance (not scaled).
	BillboardRange float32 = 150
	// DefaultWorldScale converts unscaled world units to scene units.
	DefaultWorldScale float32 = 0.025

	// ContainerName names the inactive object culled objects are parked under.
	ContainerName = "CulledObjectsParent"
	// AutomapRootName marks hierarchies excluded from dungeon block culling.
	AutomapRootName = "Automap"
)

// Scene is the host object-lifetime system.
type Scene interface {
	Alive(h model.Handle) bool
	Destroy(h model.Handle)
	Parent(h model.Handle) model.Handle
	SetParent(h, parent model.Handle, worldPositionStays bool) bool
	LocalPose(h model.Handle) model.Pose
	SetLocalPose(h model.Handle, p model.Pose)
	WorldPosition(h model.Handle) mgl32.Vec3
	RootName(h model.Handle) string
	// NewContainer creates an inactive root object.
	NewContainer(name string) model.Handle
}

// ObjectSource returns the live members of a category. With refresh the
// source drops members it knows are gone before answering.
type ObjectSource interface {
	ActiveObjects(c model.Category, refresh bool) []model.Handle
}

// Settings holds the fixed numeric configuration of a Manager.
type Settings struct {
	WorldScale         float32
	UnscaledBlockRange float32
	BlockHalfExtent    float32
	BillboardRange     float32
}

// DefaultSettings returns the stock world scale and ranges.
func DefaultSettings() Settings {
	return Settings{
		WorldScale:         DefaultWorldScale,
		UnscaledBlockRange: UnscaledBlockRange,
		BlockHalfExtent:    BlockHalfExtent,
		BillboardRange:     BillboardRange,
	}
}

// Manager decides which tracked objects are culled.
type Manager struct {
	scene    Scene
	objects  ObjectSource
	registry *Registry

	container model.Handle // lazily created, recreated if the host destroyed it

	// stranded holds snapshots dropped on a context change. Their objects
	// are still parked; the next scan either re-culls or releases them.
	stranded map[model.Handle]Entry

	blockRange       float32
	blockRangeSq     float32
	billboardRangeSq float32
	blockHalfExtent  float32 // scaled

	tick         int
	lastPosition mgl32.Vec3
	inside       bool
	started      bool

	stats Stats
}

// NewManager creates a Manager over scene and objects.
func NewManager(scene Scene, objects ObjectSource, s Settings) *Manager {
	blockRange := s.UnscaledBlockRange * s.WorldScale
	return &Manager{
		scene:            scene,
		objects:          objects,
		registry:         NewRegistry(),
		stranded:         make(map[model.Handle]Entry),
		blockRange:       blockRange,
		blockRangeSq:     blockRange * blockRange,
		billboardRangeSq: s.BillboardRange * s.BillboardRange,
		blockHalfExtent:  s.BlockHalfExtent * s.WorldScale,
	}
}

// BlockRange returns the scaled cull distance.
func (m *Manager) BlockRange() float32 {
	return m.blockRange
}

// Inside returns the inside/outside flag seen by the last Tick.
func (m *Manager) Inside() bool {
	return m.inside
}

// CulledCount returns number of objects currently held by the registry.
func (m *Manager) CulledCount() int {
	return m.registry.Len()
}

// Entry returns the snapshot held for h.
func (m *Manager) Entry(h model.Handle) (Entry, bool) {
	return m.registry.Get(h)
}

// CullObject parks h under the inactive container and records its snapshot.
// Returns false if h is dead, already culled, or cannot be re-parented.
func (m *Manager) CullObject(h model.Handle) bool {
	if h.IsNone() || !m.scene.Alive(h) || m.registry.Contains(h) {
		return false
	}

	container := m.culledContainer()
	parent := m.scene.Parent(h)
	if parent == container {
		// still parked after a context change: adopt the dropped snapshot
		prev, ok := m.stranded[h]
		if !ok {
			return false
		}
		delete(m.stranded, h)
		prev.WasInside = m.inside
		m.registry.Register(prev)
		return true
	}

	entry := Entry{
		Object:              h,
		OriginalParent:      parent,
		HadNoOriginalParent: parent.IsNone(),
		OriginalLocal:       m.scene.LocalPose(h),
		WasInside:           m.inside,
	}

	if !m.scene.SetParent(h, container, true) {
		return false
	}
	m.registry.Register(entry)
	return true
}

// UnCullObject restores h to its original parent and local pose. If the
// original parent was destroyed meanwhile, h is destroyed instead. Returns
// false if h has no entry.
func (m *Manager) UnCullObject(h model.Handle) bool {
	entry, ok := m.registry.Get(h)
	if !ok {
		return false
	}

	if m.scene.Alive(h) {
		if m.parentLost(entry) {
			m.scene.Destroy(h)
			m.stats.UnculledDestroyed++
		} else {
			m.scene.SetParent(h, entry.OriginalParent, true)
			m.scene.SetLocalPose(h, entry.OriginalLocal)
		}
	}

	m.registry.Unregister(h)
	return true
}

// release puts a stranded object back where it was culled from, or destroys
// it if that parent is gone. Returns false if h is not stranded.
func (m *Manager) release(h model.Handle) bool {
	entry, ok := m.stranded[h]
	if !ok {
		return false
	}
	delete(m.stranded, h)

	if !m.scene.Alive(h) {
		return false
	}
	if m.parentLost(entry) {
		m.scene.Destroy(h)
		return false
	}
	m.scene.SetParent(h, entry.OriginalParent, true)
	m.scene.SetLocalPose(h, entry.OriginalLocal)
	return true
}

// StrandedCount returns number of parked objects awaiting a fresh decision.
func (m *Manager) StrandedCount() int {
	return len(m.stranded)
}

// IsObjectCulled reports whether h is alive and has an entry.
func (m *Manager) IsObjectCulled(h model.Handle) bool {
	return m.scene.Alive(h) && m.registry.Contains(h)
}

func (m *Manager) parentLost(e Entry) bool {
	return !e.HadNoOriginalParent && !m.scene.Alive(e.OriginalParent)
}

func (m *Manager) culledContainer() model.Handle {
	if m.container.IsNone() || !m.scene.Alive(m.container) {
		m.container = m.scene.NewContainer(ContainerName)
		slog.Debug("culled objects container created", "handle", m.container)
	}
	return m.container
}
