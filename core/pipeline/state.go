package pipeline

import (
	"encoding/json"
	"reflect"

	"github.com/siherrmann/cataloger/model"
)

// NormalizeState coerces any value into a well-formed processing state.
// It never fails: anything that is not an object with an object-valued
// cache becomes a state with an empty cache. A supplied cache map is used
// as-is, keeping entries of processors that are not configured.
// Serialized state ([]byte, json.RawMessage) is decoded first.
func NormalizeState(input interface{}) model.ProcessingState {
	switch state := input.(type) {
	case nil:
		return emptyState()
	case model.ProcessingState:
		return stateFromCache(state.Cache)
	case *model.ProcessingState:
		if state == nil {
			return emptyState()
		}
		return stateFromCache(state.Cache)
	case json.RawMessage:
		return normalizeSerialized(state)
	case []byte:
		return normalizeSerialized(state)
	case map[string]interface{}:
		return stateFromCache(state["cache"])
	case model.Metadata:
		return stateFromCache(state["cache"])
	}

	// Other string keyed maps, e.g. map[string]any aliases
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String {
		cache := v.MapIndex(reflect.ValueOf("cache").Convert(v.Type().Key()))
		if cache.IsValid() {
			return stateFromCache(cache.Interface())
		}
	}
	return emptyState()
}

func normalizeSerialized(data []byte) model.ProcessingState {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return emptyState()
	}
	if _, ok := decoded.(map[string]interface{}); !ok {
		return emptyState()
	}
	return NormalizeState(decoded)
}

func stateFromCache(cache interface{}) model.ProcessingState {
	switch c := cache.(type) {
	case map[string]interface{}:
		if c == nil {
			return emptyState()
		}
		return model.ProcessingState{Cache: c}
	case model.Metadata:
		if c == nil {
			return emptyState()
		}
		return model.ProcessingState{Cache: map[string]interface{}(c)}
	}

	v := reflect.ValueOf(cache)
	if !v.IsValid() || v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String || v.IsNil() {
		return emptyState()
	}
	converted := make(map[string]interface{}, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		converted[iter.Key().String()] = iter.Value().Interface()
	}
	return model.ProcessingState{Cache: converted}
}

func emptyState() model.ProcessingState {
	return model.ProcessingState{Cache: map[string]interface{}{}}
}
