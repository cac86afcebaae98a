package pipeline

import (
	"sync"

	"github.com/siherrmann/cataloger/model"
)

// Emitter receives the side outputs of one processor stage invocation.
// Emitting never fails; problems with emitted outputs are reported as
// processing errors once the stage loop has finished.
type Emitter interface {
	// Entity emits a derived entity to be processed later from location
	Entity(location model.LocationSpec, entity *model.Entity)
	// Relation emits a relation between two entities
	Relation(relation model.Relation)
	// Data emits raw entity data read from location
	Data(location model.LocationSpec, data []byte)
	// Error reports a non-fatal problem found while processing
	Error(location model.LocationSpec, err error)
}

// OutputType tells which field of an Output is set
type OutputType int

const (
	OutputEntity OutputType = iota
	OutputRelation
	OutputData
	OutputError
)

// Output is one emitted item
type Output struct {
	Type     OutputType
	Location model.LocationSpec
	Entity   *model.Entity
	Relation model.Relation
	Data     []byte
	Err      error
}

// Collector is an append-only Emitter keeping outputs in emission order
type Collector struct {
	mu      sync.Mutex
	outputs []Output
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Entity appends a copy of entity
func (c *Collector) Entity(location model.LocationSpec, entity *model.Entity) {
	if entity == nil {
		c.append(Output{Type: OutputError, Location: location, Err: ErrEmptyEmission})
		return
	}
	c.append(Output{Type: OutputEntity, Location: location, Entity: entity.Clone()})
}

// Relation appends relation
func (c *Collector) Relation(relation model.Relation) {
	c.append(Output{Type: OutputRelation, Relation: relation})
}

// Data appends a copy of data
func (c *Collector) Data(location model.LocationSpec, data []byte) {
	c.append(Output{Type: OutputData, Location: location, Data: append([]byte(nil), data...)})
}

// Error appends err
func (c *Collector) Error(location model.LocationSpec, err error) {
	if err == nil {
		return
	}
	c.append(Output{Type: OutputError, Location: location, Err: err})
}

// Outputs returns the emitted items in emission order
func (c *Collector) Outputs() []Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Output(nil), c.outputs...)
}

func (c *Collector) append(output Output) {
	c.mu.Lock()
	c.outputs = append(c.outputs, output)
	c.mu.Unlock()
}
