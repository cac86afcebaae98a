package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/siherrmann/cataloger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location = model.LocationSpec{Type: "url", Target: "https://example.com/catalog-info.yaml"}

func TestParseEntities(t *testing.T) {
	ctx := context.Background()

	t.Run("Parse multiple documents", func(t *testing.T) {
		data := []byte(`apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: service-a
  annotations:
    example.com/key: value
  tags: [go, api]
spec:
  type: service
  owner: team-a
  providesApis:
    - api-a
---
apiVersion: backstage.io/v1alpha1
kind: API
metadata:
  name: api-a
spec:
  type: openapi
`)

		entities, err := ParseEntities(ctx, data, location)

		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, "Component", entities[0].Kind)
		assert.Equal(t, "service-a", entities[0].Metadata.Name)
		assert.Equal(t, "value", entities[0].Metadata.Annotations["example.com/key"])
		assert.Equal(t, []string{"go", "api"}, entities[0].Metadata.Tags)
		assert.Equal(t, "team-a", entities[0].Spec["owner"])
		apis, err := entities[0].SpecStrings("providesApis")
		require.NoError(t, err)
		assert.Equal(t, []string{"api-a"}, apis)
		assert.Equal(t, "API", entities[1].Kind)
	})

	t.Run("Skip empty documents", func(t *testing.T) {
		data := []byte("---\n---\nkind: Group\nmetadata:\n  name: team-a\n---\n")

		entities, err := ParseEntities(ctx, data, location)

		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "team-a", entities[0].Metadata.Name)
	})

	t.Run("Report non-object documents and keep the rest", func(t *testing.T) {
		data := []byte("- a\n- b\n---\nkind: Group\nmetadata:\n  name: team-a\n---\njust a string\n")

		entities, err := ParseEntities(ctx, data, location)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "document 0")
		assert.Contains(t, err.Error(), "got array")
		assert.Contains(t, err.Error(), "document 2")
		require.Len(t, entities, 1)
		assert.Equal(t, "Group", entities[0].Kind)
	})

	t.Run("Syntax error ends the stream", func(t *testing.T) {
		data := []byte("kind: Group\nmetadata:\n  name: team-a\n---\nkind: [unclosed\n")

		entities, err := ParseEntities(ctx, data, location)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "YAML error")
		assert.Len(t, entities, 1)
	})

	t.Run("Empty input", func(t *testing.T) {
		entities, err := ParseEntities(ctx, []byte{}, location)

		require.NoError(t, err)
		assert.Empty(t, entities)
	})
}

func TestParseFile(t *testing.T) {
	t.Run("Parse file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog-info.yaml")
		err := os.WriteFile(path, []byte("kind: System\nmetadata:\n  name: sys\n"), 0600)
		require.NoError(t, err)

		entities, err := ParseFile(context.Background(), path)

		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "System", entities[0].Kind)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Error(t, err)
	})
}
