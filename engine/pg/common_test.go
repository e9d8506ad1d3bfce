package pg

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/pg/pgtest"
)

func mustCreateEngine(t *testing.T, customizers ...func(*Options)) engine.Engine {
	databaseUrl, _ := pgtest.CreateSchema(t, pgtest.DatabaseUrl(t), "test_pg")

	customizers = append(customizers, func(o *Options) {
		o.Common.Registry = engine.NewRegistry()
	})

	e, err := New(databaseUrl, customizers...)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	return e
}

func mustCreateProcessDefinition(t *testing.T, e engine.Engine, key string, activities ...engine.Activity) engine.ProcessDefinition {
	processDefinition, err := e.CreateProcessDefinition(context.Background(), engine.CreateProcessDefinitionCmd{
		Activities: activities,
		Key:        key,
		WorkerId:   "test",
	})
	if err != nil {
		t.Fatalf("failed to create process definition: %v", err)
	}
	return processDefinition
}
