// Package processors holds the built-in processors and the registry used
// to build a processor list from configuration.
package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/model"
)

// kindSchema describes one built-in kind
type kindSchema struct {
	kind      string
	required  []string
	oneOf     []string
	relations []relationField
}

// relationField derives a relation pair from a spec field
type relationField struct {
	field       string
	defaultKind string
	forward     string
	reverse     string
}

var (
	ownerRelation  = relationField{"owner", "Group", model.RelationOwnedBy, model.RelationOwnerOf}
	systemRelation = relationField{"system", "System", model.RelationPartOf, model.RelationHasPart}
)

var builtinKinds = []kindSchema{
	{
		kind:     "Component",
		required: []string{"type", "lifecycle", "owner"},
		relations: []relationField{
			ownerRelation,
			systemRelation,
			{"subcomponentOf", "Component", model.RelationPartOf, model.RelationHasPart},
			{"providesApis", "API", model.RelationProvidesAPI, model.RelationAPIProvidedBy},
			{"consumesApis", "API", model.RelationConsumesAPI, model.RelationAPIConsumedBy},
			{"dependsOn", "", model.RelationDependsOn, model.RelationDependencyOf},
		},
	},
	{
		kind:      "API",
		required:  []string{"type", "lifecycle", "owner", "definition"},
		relations: []relationField{ownerRelation, systemRelation},
	},
	{
		kind:     "Resource",
		required: []string{"type", "owner"},
		relations: []relationField{
			ownerRelation,
			systemRelation,
			{"dependsOn", "", model.RelationDependsOn, model.RelationDependencyOf},
			{"dependencyOf", "", model.RelationDependencyOf, model.RelationDependsOn},
		},
	},
	{
		kind:     "System",
		required: []string{"owner"},
		relations: []relationField{
			ownerRelation,
			{"domain", "Domain", model.RelationPartOf, model.RelationHasPart},
		},
	},
	{
		kind:      "Domain",
		required:  []string{"owner"},
		relations: []relationField{ownerRelation},
	},
	{
		kind:     "Group",
		required: []string{"type"},
		relations: []relationField{
			{"parent", "Group", model.RelationChildOf, model.RelationParentOf},
			{"children", "Group", model.RelationParentOf, model.RelationChildOf},
			{"members", "User", model.RelationHasMember, model.RelationMemberOf},
		},
	},
	{
		kind: "User",
		relations: []relationField{
			{"memberOf", "Group", model.RelationMemberOf, model.RelationHasMember},
		},
	},
	{
		kind:  "Location",
		oneOf: []string{"target", "targets"},
	},
}

// BuiltinKinds validates the built-in kinds and emits the relations
// described by their spec fields
type BuiltinKinds struct {
	schemas map[string]kindSchema
}

// NewBuiltinKinds creates the built-in kinds processor
func NewBuiltinKinds() *BuiltinKinds {
	schemas := make(map[string]kindSchema, len(builtinKinds))
	for _, schema := range builtinKinds {
		schemas[strings.ToLower(schema.kind)] = schema
	}
	return &BuiltinKinds{schemas: schemas}
}

func (p *BuiltinKinds) Name() string { return "builtin-kinds" }

func (p *BuiltinKinds) schema(entity *model.Entity) (kindSchema, bool) {
	if !strings.HasPrefix(entity.APIVersion, "backstage.io/") {
		return kindSchema{}, false
	}
	schema, ok := p.schemas[strings.ToLower(entity.Kind)]
	return schema, ok
}

// ValidateEntityKind claims built-in kinds and rejects claimed entities
// that lack a required spec field
func (p *BuiltinKinds) ValidateEntityKind(ctx context.Context, entity *model.Entity) (bool, error) {
	schema, ok := p.schema(entity)
	if !ok {
		return false, nil
	}

	for _, field := range schema.required {
		if value, ok := entity.SpecString(field); !ok || value == "" {
			return false, fmt.Errorf("%s is missing required field spec.%s", schema.kind, field)
		}
	}
	if len(schema.oneOf) > 0 {
		found := false
		for _, field := range schema.oneOf {
			if entity.Spec != nil && entity.Spec[field] != nil {
				found = true
			}
		}
		if !found {
			return false, fmt.Errorf("%s needs one of spec.%s", schema.kind, strings.Join(schema.oneOf, ", spec."))
		}
	}
	for _, relation := range schema.relations {
		if _, err := entity.SpecStrings(relation.field); err != nil {
			return false, err
		}
	}
	return true, nil
}

// PostProcessEntity emits a relation and its reverse for every reference
// found in the entity's relation fields. Unparsable references are
// reported and skipped.
func (p *BuiltinKinds) PostProcessEntity(ctx context.Context, entity *model.Entity, location model.LocationSpec, emit pipeline.Emitter, cache pipeline.ProcessorCache) (*model.Entity, error) {
	schema, ok := p.schema(entity)
	if !ok {
		return entity, nil
	}

	self := entity.Ref()
	for _, relation := range schema.relations {
		targets, err := entity.SpecStrings(relation.field)
		if err != nil {
			emit.Error(location, err)
			continue
		}
		for _, target := range targets {
			ref, err := model.ParseEntityRef(target, relation.defaultKind, self.Namespace)
			if err != nil {
				emit.Error(location, fmt.Errorf("spec.%s: %w", relation.field, err))
				continue
			}
			emit.Relation(model.Relation{Type: relation.forward, Source: self, Target: ref})
			emit.Relation(model.Relation{Type: relation.reverse, Source: ref, Target: self})
		}
	}
	return entity, nil
}
