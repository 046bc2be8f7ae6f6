// Package sim hosts the culling manager: it owns the scene, moves the
// reference point and drives one manager tick per frame.
package sim

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/cullgo/internal/config"
	"github.com/udisondev/cullgo/internal/culling"
	"github.com/udisondev/cullgo/internal/model"
	"github.com/udisondev/cullgo/internal/scene"
	"github.com/udisondev/cullgo/internal/tracker"
)

// summaryEvery is how many frames pass between debug summaries.
const summaryEvery = 600

// Snapshot is the published, immutable view of the latest frame.
type Snapshot struct {
	Frame    uint64        `json:"frame"`
	Position [3]float32    `json:"position"`
	Inside   bool          `json:"inside"`
	Objects  int           `json:"objects"`
	Stats    culling.Stats `json:"stats"`
	TakenAt  time.Time     `json:"taken_at"`
}

// Runner advances the simulated world frame by frame. Everything except
// Snapshot must be called from the goroutine running Start.
type Runner struct {
	graph   *scene.Graph
	objects *tracker.Database
	mgr     *culling.Manager
	path    *Path

	interval      time.Duration
	maxFrames     int
	despawnChance float64
	rng           *rand.Rand

	frame     uint64
	despawned uint64

	published atomic.Pointer[Snapshot]
}

// NewRunner creates a runner and publishes the initial snapshot.
func NewRunner(g *scene.Graph, objects *tracker.Database, mgr *culling.Manager, path *Path, sim config.Simulation) *Runner {
	r := &Runner{
		graph:         g,
		objects:       objects,
		mgr:           mgr,
		path:          path,
		interval:      sim.TickInterval,
		maxFrames:     sim.MaxFrames,
		despawnChance: sim.DespawnChance,
		rng:           rand.New(rand.NewPCG(sim.Seed+1, sim.Seed)),
	}
	r.publish()
	return r
}

// Snapshot returns the latest published frame. Safe for concurrent use.
func (r *Runner) Snapshot() *Snapshot {
	return r.published.Load()
}

// Frame returns number of frames run so far.
func (r *Runner) Frame() uint64 {
	return r.frame
}

// Step runs one frame: maybe despawn an object, move the reference point,
// tick the manager and publish the result.
func (r *Runner) Step() culling.TickReport {
	if r.despawnChance > 0 && r.rng.Float64() < r.despawnChance {
		r.despawnRandom()
	}

	pos, inside := r.path.Next()
	report := r.mgr.Tick(pos, inside)
	r.frame++

	if report.ContextChanged {
		slog.Debug("context changed", "frame", r.frame, "inside", inside)
	}
	r.publish()
	return report
}

// Start drives Step every interval until ctx is done or max frames ran.
// Returns ctx.Err() on cancellation and nil when the frame budget is spent.
func (r *Runner) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("cull runner started", "interval", r.interval, "maxFrames", r.maxFrames)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cull runner stopping", "frames", r.frame)
			return ctx.Err()

		case <-ticker.C:
			r.Step()

			if r.frame%summaryEvery == 0 {
				s := r.mgr.Stats()
				slog.Debug("cull summary",
					"frame", r.frame,
					"objects", r.graph.Len(),
					"culled", s.CurrentlyCulled,
					"fastPath", s.FastPathTicks,
					"despawned", r.despawned)
			}

			if r.maxFrames > 0 && r.frame >= uint64(r.maxFrames) {
				slog.Info("cull runner finished", "frames", r.frame)
				return nil
			}
		}
	}
}

// despawnRandom destroys one random tracked object, the way gameplay kills
// enemies or picks up loot behind the manager's back.
func (r *Runner) despawnRandom() {
	c := model.Category(r.rng.IntN(model.CategoryCount))
	members := r.objects.ActiveObjects(c, false)
	if len(members) == 0 {
		return
	}
	h := members[r.rng.IntN(len(members))]
	if !r.graph.Alive(h) {
		return
	}
	r.graph.Destroy(h)
	r.objects.Unregister(c, h)
	r.despawned++
}

func (r *Runner) publish() {
	pos, inside := r.path.Position()
	r.published.Store(&Snapshot{
		Frame:    r.frame,
		Position: [3]float32(pos),
		Inside:   inside,
		Objects:  r.graph.Len(),
		Stats:    r.mgr.Stats(),
		TakenAt:  time.Now(),
	})
}
