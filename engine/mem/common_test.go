package mem

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

func mustCreateEngine(t *testing.T) engine.Engine {
	e, err := New(func(o *Options) {
		o.Common.Registry = engine.NewRegistry()
	})
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
