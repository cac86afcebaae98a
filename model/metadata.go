package model

// Metadata represents a free-form JSON object such as an entity spec
type Metadata map[string]interface{}

// Clone returns a deep copy of the metadata
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return Metadata(cloneValue(map[string]interface{}(m)).(map[string]interface{}))
}
