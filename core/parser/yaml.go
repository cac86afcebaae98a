// Package parser reads catalog entities from YAML descriptor files.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/siherrmann/cataloger/model"
	"gopkg.in/yaml.v3"
)

// ParseEntities parses every document of a multi-document YAML stream.
// Empty documents are skipped. Documents that are not objects or do not
// decode into an entity are reported in the joined error while the
// remaining documents are still returned. A syntax error ends the stream.
func ParseEntities(ctx context.Context, data []byte, location model.LocationSpec) ([]*model.Entity, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	entities := []*model.Entity{}
	var errs []error
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return entities, errors.Join(append(errs, err)...)
		}

		var document yaml.Node
		err := decoder.Decode(&document)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("YAML error at %s: %w", location, err))
			break
		}

		entity, err := decodeDocument(&document)
		if err != nil {
			errs = append(errs, fmt.Errorf("document %d at %s: %w", index, location, err))
			continue
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}

	return entities, errors.Join(errs...)
}

// ParseFile reads and parses the entity file at path
func ParseFile(ctx context.Context, path string) ([]*model.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity file: %w", err)
	}
	return ParseEntities(ctx, data, model.LocationSpec{Type: "file", Target: path})
}

func decodeDocument(document *yaml.Node) (*model.Entity, error) {
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return nil, nil
	}

	root := document.Content[0]
	if root.ShortTag() == "!!null" {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected object at root, got %s", nodeKind(root))
	}

	entity := &model.Entity{}
	if err := root.Decode(entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		return "scalar " + node.ShortTag()
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
