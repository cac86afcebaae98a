package cataloger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/cataloger/core/parser"
	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/core/policy"
	"github.com/siherrmann/cataloger/core/processors"
	"github.com/siherrmann/cataloger/database"
	"github.com/siherrmann/cataloger/helper"
	"github.com/siherrmann/cataloger/model"
	loadSql "github.com/siherrmann/cataloger/sql"
)

// StateStore persists the processing state of entities between runs.
// SelectState returns nil without error when nothing is stored.
type StateStore interface {
	SelectState(ctx context.Context, entityRef string) (*model.StoredState, error)
	UpsertState(ctx context.Context, entityRef string, state model.ProcessingState) (*model.StoredState, error)
}

// Options configure an Orchestrator
type Options struct {
	Processors   []pipeline.Processor
	Policy       pipeline.EntityPolicy // Optional
	Parser       pipeline.EntityParser // Optional - defaults to the YAML parser
	Integrations *model.Integrations   // Optional
	Logger       *slog.Logger          // Optional - logs are discarded when nil
}

// Orchestrator processes entities through a configured processor pipeline
type Orchestrator struct {
	DB           *helper.Database // Optional - set by ConnectDatabase
	States       StateStore       // Optional - needed for ProcessStored
	Pipeline     *pipeline.Pipeline
	Integrations *model.Integrations
	// Logging
	log *slog.Logger
}

// ProcessRequest is one entity to process.
// Location is optional and read from the entity's location annotation
// when nil. State is the state returned by the previous run, in any shape.
type ProcessRequest struct {
	Entity   *model.Entity
	Location *model.LocationSpec
	State    interface{}
}

// NewOrchestrator creates an orchestrator from options
func NewOrchestrator(options Options) *Orchestrator {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	entityParser := options.Parser
	if entityParser == nil {
		entityParser = parser.ParseEntities
	}

	p := pipeline.NewPipeline(options.Processors...)
	p.SetPolicy(options.Policy)
	p.SetParser(entityParser)
	p.SetLogger(logger)

	return &Orchestrator{
		Pipeline:     p,
		Integrations: options.Integrations,
		log:          logger,
	}
}

// NewOrchestratorFromConfig creates an orchestrator running the configured
// processors and policies. A nil config uses model.DefaultConfig and a nil
// registry uses processors.DefaultRegistry.
func NewOrchestratorFromConfig(config *model.Config, registry *processors.Registry) (*Orchestrator, error) {
	if config == nil {
		defaultConfig := model.DefaultConfig()
		config = &defaultConfig
	}
	if registry == nil {
		registry = processors.DefaultRegistry()
	}

	level, err := config.Level()
	if err != nil {
		return nil, helper.NewError("log level", err)
	}
	logger := helper.NewLogger(os.Stdout, level)

	integrations := model.NewIntegrations(config.Integrations)

	configured, err := registry.Build(config.Processors, processors.Dependencies{Integrations: integrations})
	if err != nil {
		return nil, helper.NewError("build processors", err)
	}

	entityPolicy, err := policy.Build(config.Policies)
	if err != nil {
		return nil, helper.NewError("build policies", err)
	}

	logger.Info("Created orchestrator", slog.Any("processors", config.Processors), slog.Any("policies", config.Policies))

	return NewOrchestrator(Options{
		Processors:   configured,
		Policy:       entityPolicy,
		Integrations: integrations,
		Logger:       logger,
	}), nil
}

// ConnectDatabase connects to PostgreSQL and stores states there
func (o *Orchestrator) ConnectDatabase(config *helper.DatabaseConfiguration) error {
	db, err := helper.NewDatabase("cataloger", config, o.log)
	if err != nil {
		return helper.NewError("connect database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		db.Close()
		return helper.NewError("initialize database extensions", err)
	}

	states, err := database.NewStatesDBHandler(db, false)
	if err != nil {
		db.Close()
		return helper.NewError("create states handler", err)
	}

	o.DB = db
	o.States = states
	return nil
}

// Close closes the database connection
func (o *Orchestrator) Close() error {
	if o.DB != nil {
		return o.DB.Close()
	}
	return nil
}

// Process runs the pipeline for one entity. It never fails: all problems
// are reported in the result, a fatal one with OK set to false.
func (o *Orchestrator) Process(ctx context.Context, request ProcessRequest) *model.ProcessingResult {
	if request.Entity == nil {
		return pipeline.FatalResult(nil, request.State, &pipeline.FatalError{Err: pipeline.ErrMissingEntity})
	}

	location, err := o.location(request)
	if err != nil {
		o.log.Warn("Entity has no location", slog.String("entity", request.Entity.Ref().String()), slog.String("error", err.Error()))
		return pipeline.FatalResult(request.Entity, request.State, &pipeline.FatalError{EntityRef: request.Entity.Ref(), Err: err})
	}

	return o.Pipeline.Process(ctx, request.Entity, location, request.State)
}

func (o *Orchestrator) location(request ProcessRequest) (model.LocationSpec, error) {
	if request.Location != nil {
		return *request.Location, nil
	}

	ref, ok := request.Entity.Annotation(model.LocationAnnotation)
	if !ok {
		return model.LocationSpec{}, fmt.Errorf("%w: annotation %s is not set", pipeline.ErrMissingLocation, model.LocationAnnotation)
	}
	location, err := model.ParseLocationRef(ref)
	if err != nil {
		return model.LocationSpec{}, fmt.Errorf("%w: %w", pipeline.ErrMissingLocation, err)
	}
	return location, nil
}

// ProcessStored processes an entity with the state stored for it and
// stores the returned state if processing succeeded.
func (o *Orchestrator) ProcessStored(ctx context.Context, entity *model.Entity, location *model.LocationSpec) (*model.ProcessingResult, error) {
	if o.States == nil {
		return nil, helper.NewError("process stored", fmt.Errorf("no state store set, use ConnectDatabase() first"))
	}
	if entity == nil {
		return nil, helper.NewError("process stored", pipeline.ErrMissingEntity)
	}

	ref := entity.Ref().String()
	stored, err := o.States.SelectState(ctx, ref)
	if err != nil {
		return nil, helper.NewError("select state", err)
	}

	var state interface{}
	if stored != nil {
		state = stored.State
	}

	result := o.Process(ctx, ProcessRequest{Entity: entity, Location: location, State: state})
	if !result.OK {
		o.log.Warn("Skipped storing state of failed entity", slog.String("entity", ref))
		return result, nil
	}

	_, err = o.States.UpsertState(ctx, ref, result.State)
	if err != nil {
		return result, helper.NewError("upsert state", err)
	}

	o.log.Info("Processed stored entity",
		slog.String("entity", ref),
		slog.Int("deferred", len(result.DeferredEntities)),
		slog.Int("errors", len(result.Errors)),
	)

	return result, nil
}
