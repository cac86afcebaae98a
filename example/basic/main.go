package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/siherrmann/cataloger"
	"github.com/siherrmann/cataloger/core/parser"
	"github.com/siherrmann/cataloger/metrics"
	"github.com/siherrmann/cataloger/model"
)

const catalogInfo = `apiVersion: backstage.io/v1alpha1
kind: Component
metadata:
  name: payments-service
  description: Handles card payments
spec:
  type: service
  lifecycle: production
  owner: team-payments
  system: billing
  providesApis:
    - payments-api
---
apiVersion: backstage.io/v1alpha1
kind: API
metadata:
  name: payments-api
spec:
  type: openapi
  lifecycle: production
  owner: team-payments
  definition: openapi.yaml
---
apiVersion: example.com/v1
kind: Unknown
metadata:
  name: not-claimed
`

func main() {
	metrics.InitFromEnv()

	// Use a config file if given, the built-in processors otherwise
	var config *model.Config
	if len(os.Args) > 1 {
		loaded, err := model.LoadConfig(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		config = loaded
	}

	orchestrator, err := cataloger.NewOrchestratorFromConfig(config, nil)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}
	defer orchestrator.Close()

	ctx := context.Background()
	location := model.LocationSpec{Type: "url", Target: "https://github.com/example/payments/blob/main/catalog-info.yaml"}

	entities, err := parser.ParseEntities(ctx, []byte(catalogInfo), location)
	if err != nil {
		log.Fatalf("Failed to parse catalog info: %v", err)
	}

	for _, entity := range entities {
		// Entities found at a location are their own origin
		entity.SetAnnotation(model.OriginLocationAnnotation, location.String())

		result := orchestrator.Process(ctx, cataloger.ProcessRequest{Entity: entity, Location: &location})

		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		fmt.Printf("%s\n%s\n\n", entity.Ref(), output)
	}
}
