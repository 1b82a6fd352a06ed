package renderstate

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// cache is the implementation of the Cache interface.
type cache struct {
	device gpu.Device
	states map[string]*renderState
}

// Cache deduplicates render states by Hash. A state is built and its depth-stencil object
// created the first time a field combination is requested; later requests return the same
// instance. Entries live until the cache is released. Not safe for concurrent use.
type Cache interface {
	// FromCache returns the cached render state for the given options, creating it on a miss.
	//
	// Parameters:
	//   - options: variadic list of RenderStateBuilderOption functions
	//
	// Returns:
	//   - RenderState: the shared render state
	FromCache(options ...RenderStateBuilderOption) RenderState

	// Len returns the number of distinct render states held.
	//
	// Returns:
	//   - int: the number of cached states
	Len() int

	// Release frees every cached depth-stencil object and empties the cache.
	Release()
}

var _ Cache = &cache{}

// NewCache creates an empty render-state cache bound to a device.
//
// Parameters:
//   - device: the device used to create depth-stencil objects
//
// Returns:
//   - Cache: the new cache
func NewCache(device gpu.Device) Cache {
	return &cache{
		device: device,
		states: make(map[string]*renderState),
	}
}

func (c *cache) FromCache(options ...RenderStateBuilderOption) RenderState {
	candidate := build(options...)
	if rs, ok := c.states[candidate.hash]; ok {
		return rs
	}
	candidate.init(c.device)
	c.states[candidate.hash] = candidate
	common.Logger().Debug("render state created", "hash", candidate.hash, "count", len(c.states))
	return candidate
}

func (c *cache) Len() int {
	return len(c.states)
}

func (c *cache) Release() {
	for hash, rs := range c.states {
		if rs.depthStencilState != nil {
			rs.depthStencilState.Release()
		}
		delete(c.states, hash)
	}
}
