package model

import (
	"fmt"
	"strings"
)

const (
	// DefaultNamespace is used for entities that do not declare a namespace
	DefaultNamespace = "default"

	// LocationAnnotation holds the location the entity's definition currently lives at
	LocationAnnotation = "backstage.io/managed-by-location"
	// OriginLocationAnnotation holds the location the entity was first discovered at
	OriginLocationAnnotation = "backstage.io/managed-by-origin-location"
)

// EntityMeta holds the metadata block of an entity
type EntityMeta struct {
	UID         string            `json:"uid,omitempty" yaml:"uid,omitempty"`
	Name        string            `json:"name" yaml:"name"`
	Namespace   string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Entity represents a versioned, kinded catalog record
type Entity struct {
	APIVersion string     `json:"apiVersion" yaml:"apiVersion"`
	Kind       string     `json:"kind" yaml:"kind"`
	Metadata   EntityMeta `json:"metadata" yaml:"metadata"`
	Spec       Metadata   `json:"spec,omitempty" yaml:"spec,omitempty"`
}

// Ref returns the reference identifying the entity.
// An empty namespace resolves to DefaultNamespace.
func (e *Entity) Ref() EntityRef {
	namespace := e.Metadata.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return EntityRef{
		Kind:      e.Kind,
		Namespace: namespace,
		Name:      e.Metadata.Name,
	}
}

// Annotation returns the annotation value and whether it is set
func (e *Entity) Annotation(key string) (string, bool) {
	if e.Metadata.Annotations == nil {
		return "", false
	}
	value, ok := e.Metadata.Annotations[key]
	return value, ok
}

// SetAnnotation sets an annotation, creating the annotation map if needed
func (e *Entity) SetAnnotation(key string, value string) {
	if e.Metadata.Annotations == nil {
		e.Metadata.Annotations = map[string]string{}
	}
	e.Metadata.Annotations[key] = value
}

// Clone returns a deep copy of the entity.
// Nil maps and slices stay nil so clones compare equal to their source.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}

	clone := &Entity{
		APIVersion: e.APIVersion,
		Kind:       e.Kind,
		Metadata: EntityMeta{
			UID:         e.Metadata.UID,
			Name:        e.Metadata.Name,
			Namespace:   e.Metadata.Namespace,
			Title:       e.Metadata.Title,
			Description: e.Metadata.Description,
			Labels:      cloneStringMap(e.Metadata.Labels),
			Annotations: cloneStringMap(e.Metadata.Annotations),
		},
	}
	if e.Metadata.Tags != nil {
		clone.Metadata.Tags = append([]string{}, e.Metadata.Tags...)
	}
	clone.Spec = e.Spec.Clone()

	return clone
}

// SpecString returns a string field of the spec, trimmed
func (e *Entity) SpecString(field string) (string, bool) {
	if e.Spec == nil {
		return "", false
	}
	value, ok := e.Spec[field].(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// SpecStrings returns a string list field of the spec.
// Single strings are returned as a one element list.
func (e *Entity) SpecStrings(field string) ([]string, error) {
	if e.Spec == nil {
		return nil, nil
	}

	switch value := e.Spec[field].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{value}, nil
	case []string:
		return value, nil
	case []interface{}:
		values := make([]string, 0, len(value))
		for i, v := range value {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("spec.%s[%d] is not a string", field, i)
			}
			values = append(values, s)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("spec.%s must be a string or a list of strings", field)
	}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	clone := make(map[string]string, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		clone := make(map[string]interface{}, len(v))
		for key, inner := range v {
			clone[key] = cloneValue(inner)
		}
		return clone
	case Metadata:
		return v.Clone()
	case []interface{}:
		clone := make([]interface{}, len(v))
		for i, inner := range v {
			clone[i] = cloneValue(inner)
		}
		return clone
	case []string:
		return append([]string{}, v...)
	default:
		return v
	}
}
