package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/cataloger"
	"github.com/siherrmann/cataloger/helper"
	"github.com/siherrmann/cataloger/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	orchestrator, err := cataloger.NewOrchestratorFromConfig(nil, nil)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}
	defer orchestrator.Close()

	if err := orchestrator.ConnectDatabase(dbConfig); err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	entity := &model.Entity{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       "Group",
		Metadata: model.EntityMeta{
			Name: "team-payments",
			Annotations: map[string]string{
				model.LocationAnnotation:       "file:/catalog/groups.yaml",
				model.OriginLocationAnnotation: "file:/catalog/groups.yaml",
			},
		},
		Spec: model.Metadata{
			"type":    "team",
			"members": []interface{}{"alice", "bob"},
		},
	}

	// Each run loads the state stored by the previous one
	ctx := context.Background()
	for run := 1; run <= 2; run++ {
		result, err := orchestrator.ProcessStored(ctx, entity, nil)
		if err != nil {
			log.Fatalf("Failed to process entity: %v", err)
		}
		fmt.Printf("Run %d: ok=%v relations=%d errors=%d\n", run, result.OK, len(result.Relations), len(result.Errors))
	}

	stored, err := orchestrator.States.SelectState(ctx, entity.Ref().String())
	if err != nil {
		log.Fatalf("Failed to select state: %v", err)
	}
	fmt.Printf("Stored state for %s: %s\n", stored.EntityRef, stored.State)
}
