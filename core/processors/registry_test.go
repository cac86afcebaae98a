package processors

import (
	"context"
	"testing"

	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	noRecognize := func(ctx context.Context, text string) ([]Mention, error) { return nil, nil }

	t.Run("Default registry names", func(t *testing.T) {
		assert.Equal(t, []string{"annotate-location", "builtin-kinds", "entity-recognition"}, DefaultRegistry().Names())
	})

	t.Run("Build keeps configured order", func(t *testing.T) {
		processors, err := DefaultRegistry().Build([]string{"builtin-kinds", "entity-recognition", "annotate-location"}, Dependencies{Recognizer: noRecognize})

		require.NoError(t, err)
		require.Len(t, processors, 3)
		assert.Equal(t, "builtin-kinds", processors[0].Name())
		assert.Equal(t, "entity-recognition", processors[1].Name())
		assert.Equal(t, "annotate-location", processors[2].Name())
		_, ok := processors[0].(pipeline.KindValidator)
		assert.True(t, ok, "Expected builtin-kinds to validate kinds")
		_, ok = processors[2].(pipeline.PreProcessor)
		assert.True(t, ok, "Expected annotate-location to pre-process")
	})

	t.Run("Unknown processor", func(t *testing.T) {
		_, err := DefaultRegistry().Build([]string{"nope"}, Dependencies{})

		assert.ErrorContains(t, err, "unknown processor")
	})

	t.Run("Duplicate processor in config", func(t *testing.T) {
		_, err := DefaultRegistry().Build([]string{"builtin-kinds", "builtin-kinds"}, Dependencies{})

		assert.Error(t, err)
	})

	t.Run("Register custom processor", func(t *testing.T) {
		registry := NewRegistry()
		err := registry.Register("builtin-kinds", func(deps Dependencies) (pipeline.Processor, error) {
			return NewBuiltinKinds(), nil
		})
		require.NoError(t, err)

		err = registry.Register("builtin-kinds", func(deps Dependencies) (pipeline.Processor, error) {
			return NewBuiltinKinds(), nil
		})
		assert.Error(t, err, "Expected duplicate registration to fail")
	})

	t.Run("Registered name must match processor name", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register("kinds", func(deps Dependencies) (pipeline.Processor, error) {
			return NewBuiltinKinds(), nil
		}))

		_, err := registry.Build([]string{"kinds"}, Dependencies{})

		assert.Error(t, err)
	})
}
