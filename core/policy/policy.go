// Package policy holds entity policies enforced on completed entities.
package policy

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/model"
)

const (
	maxNameLength      = 63
	maxNamespaceLength = 63
)

var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidFormat = errors.New("invalid field format")

	namePattern      = regexp.MustCompile(`^[a-zA-Z0-9]([-_.a-zA-Z0-9]*[a-zA-Z0-9])?$`)
	namespacePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)
	kindPattern      = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
)

// AllOf enforces policies in order, each one receiving the entity the
// previous one returned. It stops at the first error.
func AllOf(policies ...pipeline.EntityPolicy) pipeline.EntityPolicy {
	return pipeline.PolicyFunc(func(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
		for _, policy := range policies {
			if policy == nil {
				continue
			}
			next, err := policy.Enforce(ctx, entity)
			if err != nil {
				return nil, err
			}
			if next != nil {
				entity = next
			}
		}
		return entity, nil
	})
}

// RequiredFields rejects entities without apiVersion, kind or metadata.name
func RequiredFields() pipeline.EntityPolicy {
	return pipeline.PolicyFunc(func(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
		switch {
		case entity.APIVersion == "":
			return nil, fmt.Errorf("%w: apiVersion", ErrMissingField)
		case entity.Kind == "":
			return nil, fmt.Errorf("%w: kind", ErrMissingField)
		case entity.Metadata.Name == "":
			return nil, fmt.Errorf("%w: metadata.name", ErrMissingField)
		}
		return entity, nil
	})
}

// FieldFormat checks the format of kind, name, namespace and tags
func FieldFormat() pipeline.EntityPolicy {
	return pipeline.PolicyFunc(func(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
		if entity.Kind != "" && !kindPattern.MatchString(entity.Kind) {
			return nil, fmt.Errorf("%w: kind %q must be alphanumeric", ErrInvalidFormat, entity.Kind)
		}

		name := entity.Metadata.Name
		if name != "" && (len(name) > maxNameLength || !namePattern.MatchString(name)) {
			return nil, fmt.Errorf("%w: metadata.name %q must be 1-%d characters of [a-zA-Z0-9-_.] starting and ending alphanumeric", ErrInvalidFormat, name, maxNameLength)
		}

		namespace := entity.Metadata.Namespace
		if namespace != "" && (len(namespace) > maxNamespaceLength || !namespacePattern.MatchString(namespace)) {
			return nil, fmt.Errorf("%w: metadata.namespace %q must be 1-%d characters of [a-z0-9-]", ErrInvalidFormat, namespace, maxNamespaceLength)
		}

		for i, tag := range entity.Metadata.Tags {
			if !namespacePattern.MatchString(tag) {
				return nil, fmt.Errorf("%w: metadata.tags[%d] %q must be lowercase alphanumeric with dashes", ErrInvalidFormat, i, tag)
			}
		}
		return entity, nil
	})
}

// DefaultNamespace fills an empty namespace with model.DefaultNamespace
func DefaultNamespace() pipeline.EntityPolicy {
	return pipeline.PolicyFunc(func(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
		if entity.Metadata.Namespace == "" {
			entity.Metadata.Namespace = model.DefaultNamespace
		}
		return entity, nil
	})
}

// Factories maps configurable policy names to their constructors
var Factories = map[string]func() pipeline.EntityPolicy{
	"required-fields":   RequiredFields,
	"field-format":      FieldFormat,
	"default-namespace": DefaultNamespace,
}

// Build combines the named policies in order, nil for no names
func Build(names []string) (pipeline.EntityPolicy, error) {
	if len(names) == 0 {
		return nil, nil
	}
	policies := make([]pipeline.EntityPolicy, 0, len(names))
	for _, name := range names {
		factory, ok := Factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown policy %q", name)
		}
		policies = append(policies, factory())
	}
	return AllOf(policies...), nil
}
