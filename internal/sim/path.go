package sim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cullgo/internal/config"
)

// Path moves the reference point along configured waypoints, one frame per
// call to Next.
type Path struct {
	waypoints []config.Waypoint
	loop      bool

	leg   int // index of the waypoint being travelled to
	frame int // frames spent on the current leg
	from  mgl32.Vec3

	pos    mgl32.Vec3
	inside bool
	done   bool
}

// NewPath starts at the first waypoint. An empty path stays at the origin.
func NewPath(waypoints []config.Waypoint, loop bool) *Path {
	p := &Path{waypoints: waypoints, loop: loop, leg: 1}
	if len(waypoints) > 0 {
		p.pos = mgl32.Vec3(waypoints[0].Position)
		p.inside = waypoints[0].Inside
	}
	p.from = p.pos
	p.done = len(waypoints) < 2
	return p
}

// Position returns the current reference point and context.
func (p *Path) Position() (mgl32.Vec3, bool) {
	return p.pos, p.inside
}

// Done reports whether a non-looping path reached its last waypoint.
func (p *Path) Done() bool {
	return p.done
}

// Next advances one frame and returns the new reference point and context.
// The context switches when a waypoint is reached.
func (p *Path) Next() (mgl32.Vec3, bool) {
	if p.done {
		return p.pos, p.inside
	}

	wp := p.waypoints[p.leg]
	target := mgl32.Vec3(wp.Position)

	if wp.Teleport || wp.Frames <= 1 {
		p.arrive(target, wp.Inside)
		return p.pos, p.inside
	}

	p.frame++
	if p.frame >= wp.Frames {
		p.arrive(target, wp.Inside)
		return p.pos, p.inside
	}

	t := float32(p.frame) / float32(wp.Frames)
	p.pos = p.from.Add(target.Sub(p.from).Mul(t))
	return p.pos, p.inside
}

func (p *Path) arrive(target mgl32.Vec3, inside bool) {
	p.pos = target
	p.inside = inside
	p.from = target
	p.frame = 0
	p.leg++
	if p.leg == len(p.waypoints) {
		if p.loop {
			p.leg = 0
		} else {
			p.done = true
		}
	}
}
