package pipeline

import (
	"errors"
	"fmt"

	"github.com/siherrmann/cataloger/model"
)

// Stage names a processor capability invoked by the runner
type Stage string

const (
	StagePreProcess   Stage = "preProcessEntity"
	StageValidateKind Stage = "validateEntityKind"
	StagePostProcess  Stage = "postProcessEntity"
)

var (
	ErrMissingEntity         = errors.New("no entity given")
	ErrMissingLocation       = errors.New("entity location unknown")
	ErrKindNotRecognized     = errors.New("entity kind not recognized")
	ErrKindRejected          = errors.New("entity kind rejected")
	ErrMissingOriginLocation = errors.New("entity has no origin location")
	ErrInvalidLocation       = errors.New("invalid location")
	ErrEmptyEmission         = errors.New("processor emitted a nil entity")
	ErrNoParser              = errors.New("no entity parser configured")
	ErrProcessorPanic        = errors.New("processor panicked")
)

// FatalError aborts processing of an entity; the result has OK false
type FatalError struct {
	EntityRef model.EntityRef
	Processor string
	Err       error
}

func (e *FatalError) Error() string {
	if e.Processor != "" {
		return fmt.Sprintf("processor %s rejected entity %s: %v", e.Processor, e.EntityRef, e.Err)
	}
	return fmt.Sprintf("processing of entity %s failed: %v", e.EntityRef, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Name identifies the error in serialized results
func (e *FatalError) Name() string { return "InputError" }

// ProcessorError is a non-fatal failure raised by or reported from a processor stage
type ProcessorError struct {
	Processor string
	Stage     Stage
	EntityRef model.EntityRef
	Err       error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s threw an error in %s for entity %s: %v", e.Processor, e.Stage, e.EntityRef, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// Name identifies the error in serialized results
func (e *ProcessorError) Name() string { return "ProcessorError" }

// PolicyError is a failed entity policy check on the completed entity
type PolicyError struct {
	EntityRef model.EntityRef
	Err       error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy check failed for entity %s: %v", e.EntityRef, e.Err)
}

func (e *PolicyError) Unwrap() error { return e.Err }

// Name identifies the error in serialized results
func (e *PolicyError) Name() string { return "PolicyError" }

// LocationError means an emitted entity could not be given a location
type LocationError struct {
	Processor string
	EntityRef model.EntityRef
	Location  string
	Err       error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("processor %s emitted an entity at %q while processing %s that could not be located: %v", e.Processor, e.Location, e.EntityRef, e.Err)
}

func (e *LocationError) Unwrap() error { return e.Err }

// Name identifies the error in serialized results
func (e *LocationError) Name() string { return "LocationError" }

// ParseError means emitted raw entity data could not be parsed
type ParseError struct {
	Processor string
	EntityRef model.EntityRef
	Location  string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse data at %s emitted by processor %s for entity %s: %v", e.Location, e.Processor, e.EntityRef, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Name identifies the error in serialized results
func (e *ParseError) Name() string { return "ParseError" }
