package model

import (
	"fmt"
	"strings"
)

// LocationSpec identifies a source of entity data, e.g. type "url" with a URL target
type LocationSpec struct {
	Type   string `json:"type" yaml:"type"`
	Target string `json:"target" yaml:"target"`
}

// String renders the location as type:target
func (l LocationSpec) String() string {
	return l.Type + ":" + l.Target
}

// ParseLocationRef parses a type:target location reference.
// The type ends at the first colon, so targets may contain colons.
func ParseLocationRef(ref string) (LocationSpec, error) {
	i := strings.Index(ref, ":")
	if i <= 0 || i == len(ref)-1 {
		return LocationSpec{}, fmt.Errorf("invalid location reference %q, expected <type>:<target>", ref)
	}
	return LocationSpec{Type: ref[:i], Target: ref[i+1:]}, nil
}
