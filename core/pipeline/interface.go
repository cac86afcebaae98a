package pipeline

import (
	"context"
	"strings"

	"github.com/siherrmann/cataloger/model"
)

// Processor is the one capability every processor has: a stable name.
// The name namespaces the processor's cache and attributes its errors.
// All other capabilities are optional and discovered by type assertion.
type Processor interface {
	Name() string
}

// KindValidator claims or rejects entity kinds.
// Returning true claims the entity, false means no opinion, and a
// non-nil error rejects the entity, which is fatal for the run.
type KindValidator interface {
	Processor
	ValidateEntityKind(ctx context.Context, entity *model.Entity) (bool, error)
}

// PreProcessor transforms the entity before kind validation
type PreProcessor interface {
	Processor
	PreProcessEntity(ctx context.Context, entity *model.Entity, location model.LocationSpec, emit Emitter, cache ProcessorCache) (*model.Entity, error)
}

// PostProcessor transforms the entity after kind validation.
// Returning a nil entity keeps the input unchanged.
type PostProcessor interface {
	Processor
	PostProcessEntity(ctx context.Context, entity *model.Entity, location model.LocationSpec, emit Emitter, cache ProcessorCache) (*model.Entity, error)
}

// EntityPolicy is enforced once on the completed entity.
// It returns the entity to use, which may be modified.
type EntityPolicy interface {
	Enforce(ctx context.Context, entity *model.Entity) (*model.Entity, error)
}

// PolicyFunc adapts a function to EntityPolicy
type PolicyFunc func(ctx context.Context, entity *model.Entity) (*model.Entity, error)

// Enforce calls f
func (f PolicyFunc) Enforce(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	return f(ctx, entity)
}

// EntityParser parses raw entity data read from location.
// It may return parsed entities together with an error describing the
// documents it could not parse.
type EntityParser func(ctx context.Context, data []byte, location model.LocationSpec) ([]*model.Entity, error)

// KindIs reports whether the entity's kind matches one of kinds, ignoring case
func KindIs(entity *model.Entity, kinds ...string) bool {
	for _, kind := range kinds {
		if strings.EqualFold(entity.Kind, kind) {
			return true
		}
	}
	return false
}
