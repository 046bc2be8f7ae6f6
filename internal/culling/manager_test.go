package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/cullgo/internal/model"
)

func TestCullObject_RoundTrip(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	turn := mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0})
	parent := w.graph.Spawn("Block", model.None, model.NewPose(mgl32.Vec3{500, 0, 500}, turn))
	local := model.NewPose(mgl32.Vec3{12.5, 0.25, -3}, mgl32.QuatRotate(mgl32.DegToRad(75), mgl32.Vec3{0, 1, 0}))
	obj := w.graph.Spawn("Door", parent, local)
	worldBefore := w.graph.WorldPosition(obj)

	require.True(t, w.mgr.CullObject(obj))
	assert.True(t, w.mgr.IsObjectCulled(obj))
	assert.NotEqual(t, parent, w.graph.Parent(obj))
	assert.Equal(t, ContainerName, w.graph.Name(w.graph.Parent(obj)))
	assert.False(t, w.graph.ActiveInHierarchy(obj), "culled objects sit under an inactive container")
	assert.True(t, w.graph.WorldPosition(obj).ApproxEqualThreshold(worldBefore, 1e-3), "world transform kept")

	require.True(t, w.mgr.UnCullObject(obj))
	assert.False(t, w.mgr.IsObjectCulled(obj))
	assert.Equal(t, parent, w.graph.Parent(obj))
	assert.Equal(t, local, w.graph.LocalPose(obj), "local pose restored exactly")
	assert.True(t, w.graph.ActiveInHierarchy(obj))
}

func TestCullObject_RootObject(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	local := model.PoseAt(-40, 2, 9)
	obj := w.graph.Spawn("Loot", model.None, local)

	require.True(t, w.mgr.CullObject(obj))
	e, ok := w.mgr.Entry(obj)
	require.True(t, ok)
	assert.True(t, e.HadNoOriginalParent)
	assert.Equal(t, model.None, e.OriginalParent)

	require.True(t, w.mgr.UnCullObject(obj))
	assert.Equal(t, model.None, w.graph.Parent(obj))
	assert.Equal(t, local, w.graph.LocalPose(obj))
}

func TestCullObject_AlreadyCulled(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	parent := w.graph.AddContainer("Enemies", model.None)
	obj := w.graph.Spawn("Rat", parent, model.PoseAt(1, 0, 0))

	require.True(t, w.mgr.CullObject(obj))
	before, _ := w.mgr.Entry(obj)

	assert.False(t, w.mgr.CullObject(obj))
	after, _ := w.mgr.Entry(obj)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, w.mgr.CulledCount())
}

func TestCullObject_DeadOrNone(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	obj := w.graph.Spawn("Ghost", model.None, model.IdentityPose())
	w.graph.Destroy(obj)

	assert.False(t, w.mgr.CullObject(obj))
	assert.False(t, w.mgr.CullObject(model.None))
	assert.Equal(t, 0, w.mgr.CulledCount())
}

func TestUnCullObject_NotCulled(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	parent := w.graph.AddContainer("Npcs", model.None)
	obj := w.graph.Spawn("Guard", parent, model.PoseAt(3, 0, 3))

	assert.False(t, w.mgr.UnCullObject(obj))
	assert.Equal(t, parent, w.graph.Parent(obj))
	assert.Equal(t, model.PoseAt(3, 0, 3), w.graph.LocalPose(obj))
}

func TestUnCullObject_OriginalParentDestroyed(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	parent := w.graph.AddContainer("Block", model.None)
	obj := w.graph.Spawn("Chest", parent, model.IdentityPose())

	require.True(t, w.mgr.CullObject(obj))
	w.graph.Destroy(parent)
	require.True(t, w.graph.Alive(obj), "parked object survives its parent")

	assert.True(t, w.mgr.UnCullObject(obj))
	assert.False(t, w.graph.Alive(obj))
	assert.Equal(t, 0, w.mgr.CulledCount())
	assert.Equal(t, uint64(1), w.mgr.Stats().UnculledDestroyed)
}

func TestUnCullObject_ObjectDestroyed(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	obj := w.graph.Spawn("Bat", model.None, model.IdentityPose())
	require.True(t, w.mgr.CullObject(obj))
	w.graph.Destroy(obj)

	assert.False(t, w.mgr.IsObjectCulled(obj))
	assert.True(t, w.mgr.UnCullObject(obj), "entry is still removed")
	assert.Equal(t, 0, w.mgr.CulledCount())
}

func TestCulledContainer_RecreatedAfterDestroy(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	a := w.graph.Spawn("A", model.None, model.IdentityPose())
	require.True(t, w.mgr.CullObject(a))
	first := w.graph.Parent(a)

	w.graph.Destroy(first)
	require.False(t, w.graph.Alive(a))

	b := w.graph.Spawn("B", model.None, model.IdentityPose())
	require.True(t, w.mgr.CullObject(b))
	second := w.graph.Parent(b)

	assert.NotEqual(t, first, second)
	assert.True(t, w.graph.Alive(second))
	assert.False(t, w.graph.ActiveInHierarchy(b))
}

func TestCullObject_ContainerItselfRejected(t *testing.T) {
	w := newTestWorld(t, unitSettings())

	obj := w.graph.Spawn("A", model.None, model.IdentityPose())
	require.True(t, w.mgr.CullObject(obj))
	container := w.graph.Parent(obj)

	assert.False(t, w.mgr.CullObject(container))
}
