package sim

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cullgo/internal/config"
	"github.com/udisondev/cullgo/internal/culling"
	"github.com/udisondev/cullgo/internal/model"
	"github.com/udisondev/cullgo/internal/scene"
	"github.com/udisondev/cullgo/internal/tracker"
)

// DungeonRootName names the root container of the dungeon block grid.
const DungeonRootName = "DungeonBlocks"

// Population summarizes what Populate created.
type Population struct {
	Roots  map[model.Category]model.Handle
	Blocks []model.Handle // dungeon blocks outside the automap
	Counts map[model.Category]int
}

// Populate fills g with the configured objects and registers them in objects.
// Action doors are parented under random dungeon blocks when there are any,
// so destroying a block orphans its doors.
func Populate(g *scene.Graph, objects *tracker.Database, sim config.Simulation, cull config.Culling) Population {
	rng := rand.New(rand.NewPCG(sim.Seed, sim.Seed^0x9e3779b97f4a7c15))
	pop := Population{
		Roots:  make(map[model.Category]model.Handle),
		Counts: make(map[model.Category]int),
	}

	blockSize := 2 * cull.BlockHalfExtent * cull.WorldScale
	if cols, rows := sim.DungeonBlocks.Columns, sim.DungeonBlocks.Rows; cols > 0 && rows > 0 {
		root := g.AddContainer(DungeonRootName, model.None)
		pop.Roots[model.CategoryDungeonBlock] = root
		for col := range cols {
			for row := range rows {
				origin := mgl32.Vec3{
					float32(col-cols/2) * blockSize,
					0,
					float32(row-rows/2) * blockSize,
				}
				h := g.Spawn("Block", root, model.NewPose(origin, mgl32.QuatIdent()))
				objects.Register(model.CategoryDungeonBlock, h)
				pop.Blocks = append(pop.Blocks, h)
			}
		}
		pop.Counts[model.CategoryDungeonBlock] = len(pop.Blocks)
	}

	if sim.AutomapBlocks > 0 {
		automap := g.AddContainer(culling.AutomapRootName, model.None)
		for i := range sim.AutomapBlocks {
			origin := mgl32.Vec3{float32(i) * blockSize, 0, 0}
			h := g.Spawn("AutomapBlock", automap, model.NewPose(origin, mgl32.QuatIdent()))
			objects.Register(model.CategoryDungeonBlock, h)
		}
	}

	for _, c := range model.AllCategories() {
		n := sim.Population[c.String()]
		if n <= 0 || c == model.CategoryDungeonBlock {
			continue
		}
		root := g.AddContainer(c.String(), model.None)
		pop.Roots[c] = root

		for range n {
			pos := mgl32.Vec3{
				(rng.Float32()*2 - 1) * sim.Spread,
				0,
				(rng.Float32()*2 - 1) * sim.Spread,
			}
			yaw := mgl32.QuatRotate(rng.Float32()*2*math.Pi, mgl32.Vec3{0, 1, 0})

			parent := root
			if c == model.CategoryActionDoor && len(pop.Blocks) > 0 {
				parent = pop.Blocks[rng.IntN(len(pop.Blocks))]
			}
			h := g.Spawn(c.String(), parent, model.NewPose(mgl32.Vec3{}, yaw))
			g.SetWorldPosition(h, pos)
			objects.Register(c, h)
		}
		pop.Counts[c] = n
	}

	slog.Info("world populated", "objects", g.Len(), "blocks", len(pop.Blocks))
	return pop
}
