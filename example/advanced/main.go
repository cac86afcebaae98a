package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/siherrmann/cataloger"
	"github.com/siherrmann/cataloger/core/pipeline"
	"github.com/siherrmann/cataloger/core/policy"
	"github.com/siherrmann/cataloger/core/processors"
	"github.com/siherrmann/cataloger/helper"
	"github.com/siherrmann/cataloger/model"
)

func main() {
	// Downloads the NER model on first use
	recognize, err := processors.DefaultRecognizer()
	if err != nil {
		log.Fatalf("Failed to create recognizer: %v", err)
	}

	orchestrator := cataloger.NewOrchestrator(cataloger.Options{
		Processors: []pipeline.Processor{
			processors.NewBuiltinKinds(),
			processors.NewEntityRecognition(recognize, 0.8),
		},
		Policy: policy.AllOf(policy.RequiredFields(), policy.DefaultNamespace()),
		Logger: helper.NewLogger(os.Stdout, slog.LevelDebug),
	})

	entity := &model.Entity{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       "System",
		Metadata: model.EntityMeta{
			Name:        "billing",
			Description: "Billing runs in Frankfurt and settles card payments with Stripe and Adyen.",
		},
		Spec: model.Metadata{"owner": "team-payments"},
	}
	location := model.LocationSpec{Type: "file", Target: "/catalog/systems.yaml"}

	// The state of the first run lets the second one skip the model
	var state interface{}
	for run := 1; run <= 2; run++ {
		result := orchestrator.Process(context.Background(), cataloger.ProcessRequest{Entity: entity, Location: &location, State: state})
		mentions, _ := result.CompletedEntity.Annotation(processors.MentionsAnnotation)
		fmt.Printf("Run %d: ok=%v mentions=%q\n", run, result.OK, mentions)
		state = result.State
	}
}
