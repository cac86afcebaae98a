package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/siherrmann/cataloger/metrics"
	"github.com/siherrmann/cataloger/model"
)

// Pipeline runs an ordered list of processors over one entity at a time.
// A Pipeline holds no per-entity state and may be used concurrently.
type Pipeline struct {
	Processors []Processor
	Policy     EntityPolicy // Optional
	Parser     EntityParser // Optional - needed for emitted raw data
	log        *slog.Logger
}

// NewPipeline creates a new processing pipeline.
// Processors run in the given order in every stage.
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{
		Processors: processors,
		log:        slog.New(slog.DiscardHandler),
	}
}

// SetPolicy sets the policy enforced on completed entities
func (p *Pipeline) SetPolicy(policy EntityPolicy) {
	p.Policy = policy
}

// SetParser sets the parser used for emitted raw entity data
func (p *Pipeline) SetParser(parser EntityParser) {
	p.Parser = parser
}

// SetLogger sets the logger, nil discards all logs
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p.log = logger
}

// emitted is an output attributed to the processor stage that emitted it
type emitted struct {
	Output
	processor string
	stage     Stage
}

// run holds the state of processing one entity
type run struct {
	pipeline *Pipeline
	parent   *model.Entity
	ref      model.EntityRef
	location model.LocationSpec
	cache    *sharedCache
	outputs  []emitted
	errors   []error
	log      *slog.Logger
}

// Process runs all processors over entity read from location.
// It never fails: problems are reported in the result's errors and a
// fatal problem sets OK to false. The input entity is not modified.
func (p *Pipeline) Process(ctx context.Context, entity *model.Entity, location model.LocationSpec, state interface{}) *model.ProcessingResult {
	normalized := NormalizeState(state)
	if entity == nil {
		return FatalResult(nil, normalized, &FatalError{Err: ErrMissingEntity})
	}

	logger := p.log
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &run{
		pipeline: p,
		parent:   entity,
		ref:      entity.Ref(),
		location: location,
		cache:    newSharedCache(normalized.Cache),
		log: logger.With(
			slog.String("processing_id", uuid.New().String()),
			slog.String("entity", entity.Ref().String()),
		),
	}

	current := r.stage(ctx, StagePreProcess, entity.Clone())

	if err := r.validateKind(ctx, current); err != nil {
		r.log.Warn("Entity processing aborted", slog.String("error", err.Error()))
		return FatalResult(entity, normalized, err)
	}

	current = r.stage(ctx, StagePostProcess, current)
	current = r.enforcePolicy(ctx, current)

	deferred, relations := r.resolveOutputs(ctx)

	metrics.RecordProcess(true, len(r.errors))
	r.log.Debug("Processed entity",
		slog.Int("deferred", len(deferred)),
		slog.Int("relations", len(relations)),
		slog.Int("errors", len(r.errors)),
	)

	return &model.ProcessingResult{
		OK:               true,
		CompletedEntity:  current,
		Errors:           r.errors,
		Relations:        relations,
		DeferredEntities: deferred,
		State:            normalized,
	}
}

// FatalResult builds the result of a run aborted by err.
// It carries a copy of the unprocessed entity, no outputs and the
// normalized input state.
func FatalResult(entity *model.Entity, state interface{}, err error) *model.ProcessingResult {
	metrics.RecordProcess(false, 1)
	return &model.ProcessingResult{
		OK:               false,
		CompletedEntity:  entity.Clone(),
		Errors:           []error{err},
		Relations:        []model.Relation{},
		DeferredEntities: []model.DeferredEntity{},
		State:            NormalizeState(state),
	}
}

// stage threads entity through every processor implementing stage.
// A failing processor leaves the entity as it was before the call.
func (r *run) stage(ctx context.Context, stage Stage, entity *model.Entity) *model.Entity {
	for _, processor := range r.pipeline.Processors {
		next, handled, err := r.invoke(ctx, processor, stage, entity)
		if !handled {
			continue
		}
		if err != nil {
			r.fail(&ProcessorError{
				Processor: processor.Name(),
				Stage:     stage,
				EntityRef: r.ref,
				Err:       err,
			})
			continue
		}
		if next != nil {
			entity = next
		}
	}
	return entity
}

func (r *run) invoke(ctx context.Context, processor Processor, stage Stage, entity *model.Entity) (next *model.Entity, handled bool, err error) {
	var call func(emit Emitter, cache ProcessorCache) (*model.Entity, error)
	switch stage {
	case StagePreProcess:
		pre, ok := processor.(PreProcessor)
		if !ok {
			return nil, false, nil
		}
		call = func(emit Emitter, cache ProcessorCache) (*model.Entity, error) {
			return pre.PreProcessEntity(ctx, entity.Clone(), r.location, emit, cache)
		}
	case StagePostProcess:
		post, ok := processor.(PostProcessor)
		if !ok {
			return nil, false, nil
		}
		call = func(emit Emitter, cache ProcessorCache) (*model.Entity, error) {
			return post.PostProcessEntity(ctx, entity.Clone(), r.location, emit, cache)
		}
	default:
		return nil, false, nil
	}

	name := processor.Name()
	collector := NewCollector()
	done := metrics.TimeStage(name, string(stage))
	defer func() {
		if rec := recover(); rec != nil {
			next, handled, err = nil, true, fmt.Errorf("%w: %v", ErrProcessorPanic, rec)
		}
		done(err == nil)
		for _, output := range collector.Outputs() {
			r.outputs = append(r.outputs, emitted{Output: output, processor: name, stage: stage})
		}
	}()

	r.log.Debug("Running processor", slog.String("processor", name), slog.String("stage", string(stage)))
	next, err = call(collector, r.cache.forProcessor(name))
	return next, true, err
}

// validateKind requires at least one claim and no rejection
func (r *run) validateKind(ctx context.Context, entity *model.Entity) error {
	claimed := false
	for _, processor := range r.pipeline.Processors {
		validator, ok := processor.(KindValidator)
		if !ok {
			continue
		}

		accepted, err := r.validate(ctx, validator, entity)
		if err != nil {
			return &FatalError{
				EntityRef: r.ref,
				Processor: processor.Name(),
				Err:       fmt.Errorf("%w: %w", ErrKindRejected, err),
			}
		}
		claimed = claimed || accepted
	}

	if !claimed {
		return &FatalError{
			EntityRef: r.ref,
			Err:       fmt.Errorf("%w: no processor claimed kind %q of apiVersion %q", ErrKindNotRecognized, entity.Kind, entity.APIVersion),
		}
	}
	return nil
}

func (r *run) validate(ctx context.Context, validator KindValidator, entity *model.Entity) (accepted bool, err error) {
	done := metrics.TimeStage(validator.Name(), string(StageValidateKind))
	defer func() {
		if rec := recover(); rec != nil {
			accepted, err = false, fmt.Errorf("%w: %v", ErrProcessorPanic, rec)
		}
		done(err == nil)
	}()
	return validator.ValidateEntityKind(ctx, entity.Clone())
}

func (r *run) enforcePolicy(ctx context.Context, entity *model.Entity) *model.Entity {
	if r.pipeline.Policy == nil {
		return entity
	}

	checked, err := func() (checked *model.Entity, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				checked, err = nil, fmt.Errorf("policy panicked: %v", rec)
			}
		}()
		return r.pipeline.Policy.Enforce(ctx, entity.Clone())
	}()
	if err != nil {
		r.fail(&PolicyError{EntityRef: r.ref, Err: err})
		return entity
	}
	if checked == nil {
		return entity
	}
	return checked
}

// resolveOutputs turns the emitted outputs into deferred entities,
// relations and errors, keeping emission order.
func (r *run) resolveOutputs(ctx context.Context) ([]model.DeferredEntity, []model.Relation) {
	deferred := []model.DeferredEntity{}
	relations := []model.Relation{}

	for _, output := range r.outputs {
		switch output.Type {
		case OutputEntity:
			if d, ok := r.deferEntity(output.processor, output.Location, output.Entity); ok {
				deferred = append(deferred, d)
			}
		case OutputRelation:
			relations = append(relations, output.Relation)
		case OutputData:
			for _, entity := range r.parse(ctx, output) {
				if d, ok := r.deferEntity(output.processor, output.Location, entity); ok {
					deferred = append(deferred, d)
				}
			}
		case OutputError:
			r.fail(&ProcessorError{
				Processor: output.processor,
				Stage:     output.stage,
				EntityRef: r.ref,
				Err:       fmt.Errorf("%w (at %s)", output.Err, output.Location),
			})
		}
	}
	return deferred, relations
}

// deferEntity stamps the emission location and the origin location of
// the entity being processed onto an emitted entity.
func (r *run) deferEntity(processor string, location model.LocationSpec, entity *model.Entity) (model.DeferredEntity, bool) {
	if entity == nil {
		r.fail(&LocationError{Processor: processor, EntityRef: r.ref, Location: location.String(), Err: ErrEmptyEmission})
		return model.DeferredEntity{}, false
	}
	if location.Type == "" || location.Target == "" {
		r.fail(&LocationError{Processor: processor, EntityRef: r.ref, Location: location.String(), Err: ErrInvalidLocation})
		return model.DeferredEntity{}, false
	}
	origin, ok := r.parent.Annotation(model.OriginLocationAnnotation)
	if !ok || origin == "" {
		r.fail(&LocationError{Processor: processor, EntityRef: r.ref, Location: location.String(), Err: ErrMissingOriginLocation})
		return model.DeferredEntity{}, false
	}

	stamped := entity.Clone()
	stamped.SetAnnotation(model.LocationAnnotation, location.String())
	stamped.SetAnnotation(model.OriginLocationAnnotation, origin)
	return model.DeferredEntity{Entity: stamped, LocationKey: location.String()}, true
}

func (r *run) parse(ctx context.Context, output emitted) []*model.Entity {
	if r.pipeline.Parser == nil {
		r.fail(&ParseError{Processor: output.processor, EntityRef: r.ref, Location: output.Location.String(), Err: ErrNoParser})
		return nil
	}
	entities, err := r.pipeline.Parser(ctx, output.Data, output.Location)
	if err != nil {
		r.fail(&ParseError{Processor: output.processor, EntityRef: r.ref, Location: output.Location.String(), Err: err})
	}
	return entities
}

func (r *run) fail(err error) {
	r.log.Warn("Processing error", slog.String("error", err.Error()))
	r.errors = append(r.errors, err)
}
