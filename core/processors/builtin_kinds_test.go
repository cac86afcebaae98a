package processors

import (
	"context"
	"testing"

	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location = model.LocationSpec{Type: "url", Target: "https://github.com/org/repo/blob/main/catalog-info.yaml"}

func component() *model.Entity {
	return &model.Entity{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       "Component",
		Metadata:   model.EntityMeta{Name: "service-a", Namespace: "payments"},
		Spec: model.Metadata{
			"type":         "service",
			"lifecycle":    "production",
			"owner":        "team-a",
			"system":       "billing",
			"providesApis": []interface{}{"api-a", "api:shared/api-b"},
			"dependsOn":    []interface{}{"resource:db"},
		},
	}
}

func TestBuiltinKindsValidate(t *testing.T) {
	ctx := context.Background()
	processor := NewBuiltinKinds()

	t.Run("Claim a valid component", func(t *testing.T) {
		ok, err := processor.ValidateEntityKind(ctx, component())

		require.NoError(t, err)
		assert.True(t, ok, "Expected component to be claimed")
	})

	t.Run("Claim ignores kind case", func(t *testing.T) {
		entity := component()
		entity.Kind = "component"

		ok, err := processor.ValidateEntityKind(ctx, entity)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Ignore unknown kind", func(t *testing.T) {
		entity := component()
		entity.Kind = "FooBar"

		ok, err := processor.ValidateEntityKind(ctx, entity)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Ignore foreign apiVersion", func(t *testing.T) {
		entity := component()
		entity.APIVersion = "example.com/v1"

		ok, err := processor.ValidateEntityKind(ctx, entity)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Reject component without owner", func(t *testing.T) {
		entity := component()
		delete(entity.Spec, "owner")

		_, err := processor.ValidateEntityKind(ctx, entity)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "spec.owner")
	})

	t.Run("Reject malformed relation field", func(t *testing.T) {
		entity := component()
		entity.Spec["providesApis"] = 12

		_, err := processor.ValidateEntityKind(ctx, entity)

		assert.Error(t, err)
	})

	t.Run("Reject location without targets", func(t *testing.T) {
		entity := &model.Entity{APIVersion: "backstage.io/v1alpha1", Kind: "Location", Metadata: model.EntityMeta{Name: "root"}}

		_, err := processor.ValidateEntityKind(ctx, entity)

		assert.Error(t, err)
	})

	t.Run("Claim user with empty spec", func(t *testing.T) {
		entity := &model.Entity{APIVersion: "backstage.io/v1alpha1", Kind: "User", Metadata: model.EntityMeta{Name: "jdoe"}}

		ok, err := processor.ValidateEntityKind(ctx, entity)

		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestBuiltinKindsRelations(t *testing.T) {
	ctx := context.Background()
	processor := NewBuiltinKinds()

	t.Run("Emit relation pairs", func(t *testing.T) {
		collector := pipeline.NewCollector()

		entity, err := processor.PostProcessEntity(ctx, component(), location, collector, nil)

		require.NoError(t, err)
		assert.Equal(t, component(), entity)

		self := model.EntityRef{Kind: "Component", Namespace: "payments", Name: "service-a"}
		team := model.EntityRef{Kind: "Group", Namespace: "payments", Name: "team-a"}
		system := model.EntityRef{Kind: "System", Namespace: "payments", Name: "billing"}
		apiA := model.EntityRef{Kind: "API", Namespace: "payments", Name: "api-a"}
		apiB := model.EntityRef{Kind: "api", Namespace: "shared", Name: "api-b"}
		db := model.EntityRef{Kind: "resource", Namespace: "payments", Name: "db"}

		relations := []model.Relation{}
		for _, output := range collector.Outputs() {
			require.Equal(t, pipeline.OutputRelation, output.Type)
			relations = append(relations, output.Relation)
		}
		assert.Equal(t, []model.Relation{
			{Type: model.RelationOwnedBy, Source: self, Target: team},
			{Type: model.RelationOwnerOf, Source: team, Target: self},
			{Type: model.RelationPartOf, Source: self, Target: system},
			{Type: model.RelationHasPart, Source: system, Target: self},
			{Type: model.RelationProvidesAPI, Source: self, Target: apiA},
			{Type: model.RelationAPIProvidedBy, Source: apiA, Target: self},
			{Type: model.RelationProvidesAPI, Source: self, Target: apiB},
			{Type: model.RelationAPIProvidedBy, Source: apiB, Target: self},
			{Type: model.RelationDependsOn, Source: self, Target: db},
			{Type: model.RelationDependencyOf, Source: db, Target: self},
		}, relations)
	})

	t.Run("Report reference without kind", func(t *testing.T) {
		entity := component()
		entity.Spec = model.Metadata{"type": "service", "lifecycle": "production", "owner": "team-a", "dependsOn": "db"}
		collector := pipeline.NewCollector()

		_, err := processor.PostProcessEntity(ctx, entity, location, collector, nil)

		require.NoError(t, err)
		outputs := collector.Outputs()
		require.Len(t, outputs, 3)
		assert.Equal(t, pipeline.OutputError, outputs[2].Type)
		assert.Contains(t, outputs[2].Err.Error(), "spec.dependsOn")
	})

	t.Run("Group members", func(t *testing.T) {
		entity := &model.Entity{
			APIVersion: "backstage.io/v1alpha1",
			Kind:       "Group",
			Metadata:   model.EntityMeta{Name: "team-a"},
			Spec:       model.Metadata{"type": "team", "members": []interface{}{"jdoe"}},
		}
		collector := pipeline.NewCollector()

		_, err := processor.PostProcessEntity(ctx, entity, location, collector, nil)

		require.NoError(t, err)
		outputs := collector.Outputs()
		require.Len(t, outputs, 2)
		assert.Equal(t, model.RelationHasMember, outputs[0].Relation.Type)
		assert.Equal(t, model.EntityRef{Kind: "User", Namespace: "default", Name: "jdoe"}, outputs[0].Relation.Target)
	})

	t.Run("Unknown kind emits nothing", func(t *testing.T) {
		entity := component()
		entity.Kind = "FooBar"
		collector := pipeline.NewCollector()

		_, err := processor.PostProcessEntity(ctx, entity, location, collector, nil)

		require.NoError(t, err)
		assert.Empty(t, collector.Outputs())
	})
}
