package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedError struct{}

func (namedError) Error() string { return "named failure" }
func (namedError) Name() string  { return "NamedError" }

func TestProcessingResultMarshalJSON(t *testing.T) {
	t.Run("Errors render as name and message", func(t *testing.T) {
		result := ProcessingResult{
			OK:     true,
			Errors: []error{errors.New("plain failure"), namedError{}, nil},
			State:  ProcessingState{Cache: map[string]interface{}{}},
		}

		bytes, err := json.Marshal(result)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes, &decoded))
		assert.Equal(t, true, decoded["ok"])
		assert.Equal(t, []interface{}{
			map[string]interface{}{"name": "Error", "message": "plain failure"},
			map[string]interface{}{"name": "NamedError", "message": "named failure"},
		}, decoded["errors"])
		assert.Equal(t, map[string]interface{}{"cache": map[string]interface{}{}}, decoded["state"])
	})

	t.Run("Empty result has empty error list", func(t *testing.T) {
		bytes, err := json.Marshal(ProcessingResult{})
		require.NoError(t, err)
		assert.Contains(t, string(bytes), `"errors":[]`)
	})
}

func TestProcessingStateMarshal(t *testing.T) {
	bytes, err := ProcessingState{}.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"cache":{}}`, string(bytes))
}
