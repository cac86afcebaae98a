package model

import (
	"encoding/json"
	"errors"
)

// DeferredEntity is a derived entity queued for processing at LocationKey
type DeferredEntity struct {
	Entity      *Entity `json:"entity"`
	LocationKey string  `json:"locationKey"`
}

// ProcessingResult is the outcome of processing one entity.
// OK is false only for entity-fatal failures; non-fatal processor errors
// are collected in Errors while OK stays true.
type ProcessingResult struct {
	OK               bool             `json:"ok"`
	CompletedEntity  *Entity          `json:"completedEntity,omitempty"`
	Errors           []error          `json:"-"`
	Relations        []Relation       `json:"relations"`
	DeferredEntities []DeferredEntity `json:"deferredEntities"`
	State            ProcessingState  `json:"state"`
}

// ResultError is the serialized form of an accumulated error
type ResultError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// namer is implemented by errors that carry a stable name
type namer interface {
	Name() string
}

// MarshalJSON renders errors as name/message objects
func (r ProcessingResult) MarshalJSON() ([]byte, error) {
	type alias ProcessingResult
	resultErrors := make([]ResultError, 0, len(r.Errors))
	for _, err := range r.Errors {
		if err == nil {
			continue
		}
		name := "Error"
		var n namer
		if errors.As(err, &n) {
			name = n.Name()
		}
		resultErrors = append(resultErrors, ResultError{Name: name, Message: err.Error()})
	}

	return json.Marshal(struct {
		alias
		Errors []ResultError `json:"errors"`
	}{
		alias:  alias(r),
		Errors: resultErrors,
	})
}
