package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cullgo/internal/model"
	"github.com/udisondev/cullgo/internal/scene"
	"github.com/udisondev/cullgo/internal/tracker"
)

// unitSettings uses world scale 1, so distances read in unscaled units.
func unitSettings() Settings {
	s := DefaultSettings()
	s.WorldScale = 1
	return s
}

type testWorld struct {
	graph   *scene.Graph
	objects *tracker.Database
	mgr     *Manager
	roots   map[model.Category]model.Handle
}

func newTestWorld(t *testing.T, s Settings) *testWorld {
	t.Helper()
	g := scene.NewGraph()
	db := tracker.NewDatabase(g)
	return &testWorld{
		graph:   g,
		objects: db,
		mgr:     NewManager(g, db, s),
		roots:   make(map[model.Category]model.Handle),
	}
}

// spawn creates a tracked object of category c at world position pos under
// the category's root container.
func (w *testWorld) spawn(c model.Category, pos mgl32.Vec3) model.Handle {
	root, ok := w.roots[c]
	if !ok {
		root = w.graph.AddContainer(c.String(), model.None)
		w.roots[c] = root
	}
	h := w.graph.Spawn(c.String(), root, model.NewPose(pos, mgl32.QuatIdent()))
	w.objects.Register(c, h)
	return h
}

// run ticks n frames at a fixed reference and returns the last report.
func (w *testWorld) run(n int, ref mgl32.Vec3, inside bool) TickReport {
	var r TickReport
	for range n {
		r = w.mgr.Tick(ref, inside)
	}
	return r
}
