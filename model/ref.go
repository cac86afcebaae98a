package model

import (
	"fmt"
	"strings"
)

// EntityRef identifies an entity by kind, namespace and name
type EntityRef struct {
	Kind      string `json:"kind" yaml:"kind"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
}

// String renders the reference as kind:namespace/name
func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s/%s", r.Kind, r.Namespace, r.Name)
}

// ParseEntityRef parses a reference of the form [kind:][namespace/]name.
// Missing parts are filled from the defaults; a missing kind without a
// default kind is an error.
func ParseEntityRef(ref string, defaultKind string, defaultNamespace string) (EntityRef, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return EntityRef{}, fmt.Errorf("entity reference is empty")
	}

	kind := defaultKind
	rest := trimmed
	if i := strings.Index(rest, ":"); i >= 0 {
		kind = rest[:i]
		rest = rest[i+1:]
	}

	namespace := defaultNamespace
	if i := strings.Index(rest, "/"); i >= 0 {
		namespace = rest[:i]
		rest = rest[i+1:]
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	if kind == "" {
		return EntityRef{}, fmt.Errorf("entity reference %q has no kind and no default kind was given", ref)
	}
	if rest == "" || strings.ContainsAny(rest, ":/") {
		return EntityRef{}, fmt.Errorf("entity reference %q has an invalid name", ref)
	}

	return EntityRef{Kind: kind, Namespace: namespace, Name: rest}, nil
}
