package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/cullgo/internal/model"
)

func TestReconcile_ObjectDestroyedDropsEntry(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	obj := w.graph.Spawn("Skeleton", model.None, model.IdentityPose())
	w.mgr.Tick(mgl32.Vec3{}, false)
	require.True(t, w.mgr.CullObject(obj))

	w.graph.Destroy(obj)
	r := w.mgr.Tick(mgl32.Vec3{}, false)

	assert.Equal(t, 1, r.Dropped)
	assert.Equal(t, 0, r.Destroyed)
	assert.Equal(t, 0, w.mgr.CulledCount())
}

func TestReconcile_ParentDestroyedDestroysObject(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	parent := w.graph.AddContainer("Interior", model.None)
	obj := w.graph.Spawn("Shopkeeper", parent, model.IdentityPose())
	w.mgr.Tick(mgl32.Vec3{}, false)
	require.True(t, w.mgr.CullObject(obj))

	w.graph.Destroy(parent)
	require.True(t, w.graph.Alive(obj))

	r := w.mgr.Tick(mgl32.Vec3{}, false)

	assert.Equal(t, 1, r.Destroyed)
	assert.False(t, w.graph.Alive(obj), "orphaned object is destroyed, not restored")
	assert.False(t, w.mgr.IsObjectCulled(obj))
	assert.Equal(t, uint64(1), w.mgr.Stats().ReconcileDestroyed)
}

func TestReconcile_RootObjectKeptWithoutParent(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	obj := w.graph.Spawn("Campfire", model.None, model.IdentityPose())
	w.mgr.Tick(mgl32.Vec3{}, false)
	require.True(t, w.mgr.CullObject(obj))

	r := w.mgr.Tick(mgl32.Vec3{}, false)

	assert.Zero(t, r.Dropped)
	assert.Zero(t, r.Destroyed)
	assert.True(t, w.mgr.IsObjectCulled(obj))
}

func TestReconcile_ContextFlipDropsWithoutDestroy(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	far := mgl32.Vec3{5000, 0, 0}
	obj := w.spawn(model.CategoryLoot, far)
	parent := w.graph.Parent(obj)

	w.mgr.Tick(mgl32.Vec3{}, false)
	require.True(t, w.mgr.CullObject(obj))

	r := w.mgr.Tick(mgl32.Vec3{}, true)

	assert.True(t, r.ContextChanged)
	assert.Equal(t, 1, r.Dropped)
	assert.Zero(t, r.Destroyed)
	assert.True(t, w.graph.Alive(obj), "dropped, not destroyed")
	assert.False(t, w.mgr.IsObjectCulled(obj))
	assert.Equal(t, 1, w.mgr.StrandedCount())

	// loot is scheduled on tick 8; the context change restarted the cycle
	// at 0 and the tick above consumed it
	r = w.run(8, mgl32.Vec3{}, true)
	require.Equal(t, 8, r.Tick)

	require.True(t, w.mgr.IsObjectCulled(obj), "far object culled again by a fresh decision")
	e, _ := w.mgr.Entry(obj)
	assert.True(t, e.WasInside)
	assert.Equal(t, parent, e.OriginalParent)
	assert.Zero(t, w.mgr.StrandedCount())
}

func TestReconcile_ContextFlipThenInRangeReleases(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	pos := mgl32.Vec3{100, 0, 0}
	obj := w.spawn(model.CategoryLoot, pos)
	parent := w.graph.Parent(obj)
	local := w.graph.LocalPose(obj)

	w.mgr.Tick(mgl32.Vec3{}, false)
	require.True(t, w.mgr.CullObject(obj))

	w.mgr.Tick(mgl32.Vec3{}, true)
	r := w.run(8, mgl32.Vec3{}, true)
	require.Equal(t, 8, r.Tick)

	assert.Equal(t, 1, r.Unculled)
	assert.Equal(t, parent, w.graph.Parent(obj))
	assert.Equal(t, local, w.graph.LocalPose(obj))
	assert.True(t, w.graph.ActiveInHierarchy(obj))
	assert.Zero(t, w.mgr.StrandedCount())
}
