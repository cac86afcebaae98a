package pipeline

import (
	"context"
	"sync"

	"github.com/siherrmann/cataloger/model"
)

// ProcessorCache is a processor's private key/value view of the
// processing state. Values set are visible to later reads in the same
// run and are persisted in the returned state.
type ProcessorCache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{})
}

// sharedCache guards the state cache map of one run
type sharedCache struct {
	mu    sync.Mutex
	cache map[string]interface{}
}

func newSharedCache(cache map[string]interface{}) *sharedCache {
	return &sharedCache{cache: cache}
}

func (s *sharedCache) forProcessor(name string) ProcessorCache {
	return &processorCache{shared: s, name: name}
}

// processorCache namespaces all keys under the processor name
type processorCache struct {
	shared *sharedCache
	name   string
}

// NewProcessorCache returns the cache view of processor name over state.
// Writes go directly into state.Cache.
func NewProcessorCache(state model.ProcessingState, name string) ProcessorCache {
	if state.Cache == nil {
		state = NormalizeState(nil)
	}
	return newSharedCache(state.Cache).forProcessor(name)
}

// Get returns the value stored under key for this processor
func (c *processorCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.shared.mu.Lock()
	defer c.shared.mu.Unlock()

	slot, ok := asObject(c.shared.cache[c.name])
	if !ok {
		return nil, false
	}
	value, ok := slot[key]
	return value, ok
}

// Set stores value under key for this processor.
// A malformed processor slot is replaced by a fresh one.
func (c *processorCache) Set(ctx context.Context, key string, value interface{}) {
	c.shared.mu.Lock()
	defer c.shared.mu.Unlock()

	slot, ok := c.shared.cache[c.name].(map[string]interface{})
	if !ok || slot == nil {
		converted, isObject := asObject(c.shared.cache[c.name])
		slot = make(map[string]interface{}, len(converted)+1)
		if isObject {
			for k, v := range converted {
				slot[k] = v
			}
		}
		c.shared.cache[c.name] = slot
	}
	slot[key] = value
}

func asObject(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, v != nil
	case model.Metadata:
		return map[string]interface{}(v), v != nil
	default:
		return nil, false
	}
}
