package processors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/helper"
	"github.com/siherrmann/cataloger/model"
)

// MentionsAnnotation lists the named entities found in the description
const MentionsAnnotation = "cataloger.io/mentions"

// Mention is a named entity found in a text
type Mention struct {
	Text  string
	Label string
	Score float32
}

// RecognizeFunc finds named entities in text
type RecognizeFunc func(ctx context.Context, text string) ([]Mention, error)

// DefaultRecognizer creates a recognizer using a NER model
// Uses distilbert-NER for named entity recognition
// Detects: PER, ORG, LOC, MISC entities
func DefaultRecognizer() (RecognizeFunc, error) {
	modelPath, err := helper.PrepareModel("KnightsAnalytics/distilbert-NER", "model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "mentions-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(ctx context.Context, text string) ([]Mention, error) {
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}
		if len(result.Entities) == 0 {
			return nil, nil
		}

		mentions := make([]Mention, 0, len(result.Entities[0]))
		for _, entity := range result.Entities[0] {
			mentions = append(mentions, Mention{
				Text:  strings.TrimSpace(entity.Word),
				Label: normalizeLabel(entity.Entity),
				Score: entity.Score,
			})
		}
		return mentions, nil
	}, nil
}

// normalizeLabel removes BIO prefixes from NER labels
func normalizeLabel(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}

// EntityRecognition annotates entities with the names mentioned in
// their description. The last result is cached per description so the
// model only runs when the description changes.
type EntityRecognition struct {
	recognize RecognizeFunc
	minScore  float32
}

// NewEntityRecognition creates the processor.
// Mentions scoring below minScore are dropped.
func NewEntityRecognition(recognize RecognizeFunc, minScore float32) *EntityRecognition {
	return &EntityRecognition{recognize: recognize, minScore: minScore}
}

func (p *EntityRecognition) Name() string { return "entity-recognition" }

// PostProcessEntity sets the mentions annotation
func (p *EntityRecognition) PostProcessEntity(ctx context.Context, entity *model.Entity, location model.LocationSpec, emit pipeline.Emitter, cache pipeline.ProcessorCache) (*model.Entity, error) {
	description := strings.TrimSpace(entity.Metadata.Description)
	if description == "" {
		return entity, nil
	}

	sum := sha256.Sum256([]byte(description))
	hash := hex.EncodeToString(sum[:])

	mentions, ok := cachedMentions(ctx, cache, hash)
	if !ok {
		found, err := p.recognize(ctx, description)
		if err != nil {
			return nil, helper.NewError("recognize mentions", err)
		}
		mentions = p.filter(found)
		cache.Set(ctx, "hash", hash)
		cache.Set(ctx, "mentions", mentions)
	}

	if len(mentions) > 0 {
		entity.SetAnnotation(MentionsAnnotation, strings.Join(mentions, ","))
	}
	return entity, nil
}

// filter drops low scores and duplicates, keeping first occurrence order
func (p *EntityRecognition) filter(found []Mention) []string {
	seen := map[string]bool{}
	mentions := []string{}
	for _, mention := range found {
		if mention.Score < p.minScore || mention.Text == "" {
			continue
		}
		value := mention.Label + ":" + mention.Text
		if seen[value] {
			continue
		}
		seen[value] = true
		mentions = append(mentions, value)
	}
	return mentions
}

// cachedMentions returns the mentions cached for hash.
// Cached values may come back from JSON as []interface{}.
func cachedMentions(ctx context.Context, cache pipeline.ProcessorCache, hash string) ([]string, bool) {
	cachedHash, ok := cache.Get(ctx, "hash")
	if !ok || cachedHash != hash {
		return nil, false
	}
	cached, ok := cache.Get(ctx, "mentions")
	if !ok {
		return nil, false
	}

	switch values := cached.(type) {
	case []string:
		return values, true
	case []interface{}:
		mentions := make([]string, 0, len(values))
		for _, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			mentions = append(mentions, s)
		}
		return mentions, true
	default:
		return nil, false
	}
}
