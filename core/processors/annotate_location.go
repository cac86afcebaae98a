package processors

import (
	"context"
	"net/url"

	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/model"
)

const (
	ViewURLAnnotation        = "backstage.io/view-url"
	EditURLAnnotation        = "backstage.io/edit-url"
	SourceLocationAnnotation = "backstage.io/source-location"
)

// AnnotateLocation adds view, edit and source annotations to entities
// read from url locations. Existing annotations are kept.
type AnnotateLocation struct {
	integrations *model.Integrations
}

// NewAnnotateLocation creates the processor, integrations may be nil
func NewAnnotateLocation(integrations *model.Integrations) *AnnotateLocation {
	return &AnnotateLocation{integrations: integrations}
}

func (p *AnnotateLocation) Name() string { return "annotate-location" }

// PreProcessEntity annotates the entity
func (p *AnnotateLocation) PreProcessEntity(ctx context.Context, entity *model.Entity, location model.LocationSpec, emit pipeline.Emitter, cache pipeline.ProcessorCache) (*model.Entity, error) {
	if location.Type != "url" {
		return entity, nil
	}

	target, err := url.Parse(location.Target)
	if err != nil || !target.IsAbs() {
		return entity, nil
	}

	setDefault(entity, ViewURLAnnotation, location.Target)
	if editURL, ok := p.integrations.EditURL(location.Target); ok {
		setDefault(entity, EditURLAnnotation, editURL)
	}
	source := target.ResolveReference(&url.URL{Path: "./"})
	setDefault(entity, SourceLocationAnnotation, "url:"+source.String())

	return entity, nil
}

func setDefault(entity *model.Entity, key string, value string) {
	if _, ok := entity.Annotation(key); ok {
		return
	}
	entity.SetAnnotation(key, value)
}
