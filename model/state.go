package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessingState is the opaque envelope persisted between processing runs.
// Cache maps a processor name to that processor's cache value.
type ProcessingState struct {
	Cache map[string]interface{} `json:"cache"`
}

// Marshal converts the state to JSON bytes
func (s ProcessingState) Marshal() ([]byte, error) {
	if s.Cache == nil {
		s.Cache = map[string]interface{}{}
	}
	return json.Marshal(s)
}

// StoredState is a processing state persisted for one entity
type StoredState struct {
	ID        int64           `json:"id"`
	RID       uuid.UUID       `json:"rid"`
	EntityRef string          `json:"entity_ref"`
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
