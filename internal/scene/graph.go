// Package scene is the object-lifetime system the culling manager works
// against: a scene graph of named objects with parent links and local poses.
//
// A Graph is accessed only from the frame loop goroutine, so it takes no locks.
package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cullgo/internal/model"
)

type node struct {
	name     string
	parent   model.Handle
	children []model.Handle
	local    model.Pose
	active   bool
}

// Graph holds every live object. Handles of destroyed objects are never reused.
type Graph struct {
	ids   *model.HandleGenerator
	nodes map[model.Handle]*node
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{
		ids:   model.NewHandleGenerator(),
		nodes: make(map[model.Handle]*node, 1024),
	}
}

// Len returns number of live objects.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddContainer creates an active grouping object under parent (None for root).
// Returns None if parent is set but dead.
func (g *Graph) AddContainer(name string, parent model.Handle) model.Handle {
	if !parent.IsNone() && !g.Alive(parent) {
		return model.None
	}
	h := g.ids.NextContainer()
	g.attach(h, &node{name: name, local: model.IdentityPose(), active: true}, parent)
	return h
}

// NewContainer creates an inactive root container. Everything parented under
// it is inactive in hierarchy.
func (g *Graph) NewContainer(name string) model.Handle {
	h := g.ids.NextContainer()
	g.attach(h, &node{name: name, local: model.IdentityPose()}, model.None)
	return h
}

// Spawn creates a tracked object under parent with the given local pose.
// Returns None if parent is set but dead.
func (g *Graph) Spawn(name string, parent model.Handle, local model.Pose) model.Handle {
	if !parent.IsNone() && !g.Alive(parent) {
		return model.None
	}
	h := g.ids.NextObject()
	g.attach(h, &node{name: name, local: local, active: true}, parent)
	return h
}

func (g *Graph) attach(h model.Handle, n *node, parent model.Handle) {
	n.parent = parent
	g.nodes[h] = n
	if p, ok := g.nodes[parent]; ok {
		p.children = append(p.children, h)
	}
}

// Alive reports whether h refers to an object that has not been destroyed.
func (g *Graph) Alive(h model.Handle) bool {
	_, ok := g.nodes[h]
	return ok
}

// Destroy removes h and its whole subtree. Destroying a dead handle is a no-op.
func (g *Graph) Destroy(h model.Handle) {
	n, ok := g.nodes[h]
	if !ok {
		return
	}
	if p, ok := g.nodes[n.parent]; ok {
		p.children = removeChild(p.children, h)
	}
	g.destroySubtree(h)
}

func (g *Graph) destroySubtree(h model.Handle) {
	n, ok := g.nodes[h]
	if !ok {
		return
	}
	for _, child := range n.children {
		g.destroySubtree(child)
	}
	delete(g.nodes, h)
}

// Name returns object name, or "" for a dead handle.
func (g *Graph) Name(h model.Handle) string {
	if n, ok := g.nodes[h]; ok {
		return n.name
	}
	return ""
}

// Parent returns the parent handle, None for root or dead objects.
func (g *Graph) Parent(h model.Handle) model.Handle {
	if n, ok := g.nodes[h]; ok {
		return n.parent
	}
	return model.None
}

// Children returns a copy of h's direct children.
func (g *Graph) Children(h model.Handle) []model.Handle {
	n, ok := g.nodes[h]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// Root returns the topmost ancestor of h (h itself for root objects).
func (g *Graph) Root(h model.Handle) model.Handle {
	if !g.Alive(h) {
		return model.None
	}
	for {
		p := g.nodes[h].parent
		if p.IsNone() {
			return h
		}
		h = p
	}
}

// RootName returns the name of h's topmost ancestor.
func (g *Graph) RootName(h model.Handle) string {
	return g.Name(g.Root(h))
}

// SetActive toggles h's own active flag.
func (g *Graph) SetActive(h model.Handle, active bool) {
	if n, ok := g.nodes[h]; ok {
		n.active = active
	}
}

// ActiveInHierarchy reports whether h and all of its ancestors are active.
func (g *Graph) ActiveInHierarchy(h model.Handle) bool {
	for !h.IsNone() {
		n, ok := g.nodes[h]
		if !ok || !n.active {
			return false
		}
		h = n.parent
	}
	return true
}

// LocalPose returns h's pose relative to its parent.
func (g *Graph) LocalPose(h model.Handle) model.Pose {
	if n, ok := g.nodes[h]; ok {
		return n.local
	}
	return model.IdentityPose()
}

// SetLocalPose replaces h's pose relative to its parent.
func (g *Graph) SetLocalPose(h model.Handle, p model.Pose) {
	if n, ok := g.nodes[h]; ok {
		n.local = p
	}
}

// WorldPose composes local poses from the root down to h.
func (g *Graph) WorldPose(h model.Handle) model.Pose {
	n, ok := g.nodes[h]
	if !ok {
		return model.IdentityPose()
	}
	if n.parent.IsNone() {
		return n.local
	}
	parent := g.WorldPose(n.parent)
	return model.Pose{
		Position: parent.Position.Add(parent.Rotation.Rotate(n.local.Position)),
		Rotation: parent.Rotation.Mul(n.local.Rotation),
	}
}

// WorldPosition returns h's position in world space.
func (g *Graph) WorldPosition(h model.Handle) mgl32.Vec3 {
	return g.WorldPose(h).Position
}

// SetWorldPosition moves h so that its world position equals pos.
func (g *Graph) SetWorldPosition(h model.Handle, pos mgl32.Vec3) {
	n, ok := g.nodes[h]
	if !ok {
		return
	}
	world := g.WorldPose(h)
	world.Position = pos
	n.local = g.toLocal(n.parent, world)
}

// SetParent moves h under parent (None detaches it to the root). With
// worldPositionStays the world pose is kept and the local pose recomputed;
// otherwise the local pose is kept. Returns false for dead handles and for
// parents that would create a cycle.
func (g *Graph) SetParent(h, parent model.Handle, worldPositionStays bool) bool {
	n, ok := g.nodes[h]
	if !ok {
		return false
	}
	if !parent.IsNone() {
		if !g.Alive(parent) || g.isSelfOrDescendant(parent, h) {
			return false
		}
	}
	if n.parent == parent {
		return true
	}

	world := g.WorldPose(h)

	if p, ok := g.nodes[n.parent]; ok {
		p.children = removeChild(p.children, h)
	}
	n.parent = parent
	if p, ok := g.nodes[parent]; ok {
		p.children = append(p.children, h)
	}

	if worldPositionStays {
		n.local = g.toLocal(parent, world)
	}
	return true
}

// toLocal expresses a world pose relative to parent.
func (g *Graph) toLocal(parent model.Handle, world model.Pose) model.Pose {
	if parent.IsNone() {
		return world
	}
	pw := g.WorldPose(parent)
	inv := pw.Rotation.Inverse()
	return model.Pose{
		Position: inv.Rotate(world.Position.Sub(pw.Position)),
		Rotation: inv.Mul(world.Rotation),
	}
}

// isSelfOrDescendant reports whether candidate is h or lies below h.
func (g *Graph) isSelfOrDescendant(candidate, h model.Handle) bool {
	for !candidate.IsNone() {
		if candidate == h {
			return true
		}
		n, ok := g.nodes[candidate]
		if !ok {
			return false
		}
		candidate = n.parent
	}
	return false
}

func removeChild(children []model.Handle, h model.Handle) []model.Handle {
	if i := slices.Index(children, h); i >= 0 {
		return slices.Delete(children, i, i+1)
	}
	return children
}
