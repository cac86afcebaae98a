package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataClone(t *testing.T) {
	t.Run("Clone copies nested structures", func(t *testing.T) {
		m := Metadata{
			"list":   []interface{}{map[string]interface{}{"inner": "value"}},
			"nested": Metadata{"key": "value"},
		}

		clone := m.Clone()
		clone["list"].([]interface{})[0].(map[string]interface{})["inner"] = "changed"
		clone["nested"].(Metadata)["key"] = "changed"

		assert.Equal(t, "value", m["list"].([]interface{})[0].(map[string]interface{})["inner"])
		assert.Equal(t, "value", m["nested"].(Metadata)["key"])
	})

	t.Run("Clone of nil metadata is nil", func(t *testing.T) {
		var m Metadata
		assert.Nil(t, m.Clone())
	})
}
