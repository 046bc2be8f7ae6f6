package model

import (
	"strconv"
	"sync/atomic"
)

// Handle identifies a scene object. The culling core never owns the object
// behind a handle; liveness is always asked of the scene that issued it.
//
// Handle ranges (convention):
//
//	0x00000000:              None (no object, root parent)
//	0x00000001 - 0x0FFFFFFF: Containers and category roots
//	0x10000000 - 0xFFFFFFFF: Tracked objects
type Handle uint32

// None is the zero handle. Used for "no parent" and "no object".
const None Handle = 0

const (
	firstContainerHandle Handle = 0x00000000
	firstObjectHandle    Handle = 0x10000000
)

// IsNone reports whether h refers to no object.
func (h Handle) IsNone() bool {
	return h == None
}

func (h Handle) String() string {
	return "0x" + strconv.FormatUint(uint64(h), 16)
}

// HandleGenerator issues unique handles for containers and tracked objects.
type HandleGenerator struct {
	nextContainer atomic.Uint32
	nextObject    atomic.Uint32
}

// NewHandleGenerator creates a generator with both ranges at their start.
func NewHandleGenerator() *HandleGenerator {
	gen := &HandleGenerator{}
	gen.nextContainer.Store(uint32(firstContainerHandle))
	gen.nextObject.Store(uint32(firstObjectHandle))
	return gen
}

// NextContainer returns the next handle from the container range.
func (g *HandleGenerator) NextContainer() Handle {
	return Handle(g.nextContainer.Add(1))
}

// NextObject returns the next handle from the tracked object range.
func (g *HandleGenerator) NextObject() Handle {
	return Handle(g.nextObject.Add(1))
}

// IsObjectHandle reports whether h was issued from the tracked object range.
func IsObjectHandle(h Handle) bool {
	return h >= firstObjectHandle
}
