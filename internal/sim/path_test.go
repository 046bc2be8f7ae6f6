package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/udisondev/cullgo/internal/config"
)

func TestPath_Empty(t *testing.T) {
	p := NewPath(nil, true)

	pos, inside := p.Next()
	assert.Equal(t, mgl32.Vec3{}, pos)
	assert.False(t, inside)
	assert.True(t, p.Done())
}

func TestPath_Travel(t *testing.T) {
	p := NewPath([]config.Waypoint{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{100, 0, 0}, Frames: 4, Inside: true},
	}, false)

	want := []float32{25, 50, 75, 100}
	for i, x := range want {
		pos, inside := p.Next()
		assert.InDelta(t, x, pos.X(), 1e-4, "frame %d", i)
		assert.Equal(t, i == len(want)-1, inside, "context switches on arrival (frame %d)", i)
	}
	assert.True(t, p.Done())

	pos, _ := p.Next()
	assert.Equal(t, mgl32.Vec3{100, 0, 0}, pos, "done path stays put")
}

func TestPath_TeleportAndLoop(t *testing.T) {
	p := NewPath([]config.Waypoint{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{500, 0, 500}, Teleport: true},
		{Position: [3]float32{500, 0, 500}, Inside: true},
	}, true)

	pos, inside := p.Next()
	assert.Equal(t, mgl32.Vec3{500, 0, 500}, pos)
	assert.False(t, inside)

	_, inside = p.Next()
	assert.True(t, inside)

	// looped back to the first waypoint, a zero-frame leg
	pos, inside = p.Next()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, pos)
	assert.False(t, inside)
	assert.False(t, p.Done())
}
