package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/mem"
	"github.com/gclaussn/go-bpmn-assert/engine/pg"
	"github.com/gclaussn/go-bpmn-assert/engine/pg/pgtest"
	"github.com/jackc/pgx/v5"
)

const testWorkerId = "test-worker"

var databaseSchema string

func mustCreateEngines(t *testing.T) ([]engine.Engine, []string) {
	var engines []engine.Engine
	var engineTypes []string

	// create mem engine
	memEngine, err := mem.New(func(o *mem.Options) {
		o.Common.Registry = nil
	})
	if err != nil {
		t.Fatalf("failed to create mem engine: %v", err)
	}

	engines = append(engines, memEngine)
	engineTypes = append(engineTypes, "mem_")

	databaseUrl, ok := pgtest.LookUp(t)
	if !ok {
		return engines, engineTypes
	}

	if databaseSchema == "" {
		databaseUrl, databaseSchema = pgtest.CreateSchema(t, databaseUrl, "test")
	} else {
		mustTruncateTables(t, databaseUrl)
		databaseUrl = pgtest.WithSearchPath(t, databaseUrl, databaseSchema)
	}

	pgEngine, err := pg.New(databaseUrl, func(o *pg.Options) {
		o.Common.Registry = nil
	})
	if err != nil {
		t.Fatalf("failed to create pg engine: %v", err)
	}

	engines = append(engines, pgEngine)
	engineTypes = append(engineTypes, "pg_")

	return engines, engineTypes
}

func mustCreateProcessDefinition(t *testing.T, e engine.Engine, key string, activities ...engine.Activity) engine.ProcessDefinition {
	processDefinition, err := e.CreateProcessDefinition(context.Background(), engine.CreateProcessDefinitionCmd{
		Activities: activities,
		Key:        key,
		WorkerId:   testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create process definition: %v", err)
	}
	return processDefinition
}

func mustCreateProcessInstance(t *testing.T, e engine.Engine, processDefinition engine.ProcessDefinition) engine.ProcessInstance {
	processInstance, err := e.CreateProcessInstance(context.Background(), engine.CreateProcessInstanceCmd{
		ProcessDefinitionKey: processDefinition.Key,
		Version:              processDefinition.Version,
		WorkerId:             testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create process instance: %v", err)
	}
	return processInstance
}

func mustCreateCaseInstance(t *testing.T, e engine.Engine, key string, planItems ...engine.PlanItem) engine.CaseInstance {
	_, err := e.CreateCaseDefinition(context.Background(), engine.CreateCaseDefinitionCmd{
		Key:       key,
		PlanItems: planItems,
		WorkerId:  testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create case definition: %v", err)
	}

	caseInstance, err := e.CreateCaseInstance(context.Background(), engine.CreateCaseInstanceCmd{
		CaseDefinitionKey: key,
		WorkerId:          testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create case instance: %v", err)
	}
	return caseInstance
}

func mustQueryCaseExecution(t *testing.T, e engine.Engine, caseInstanceId string, activityId string) engine.CaseExecution {
	results, err := e.CreateQuery().QueryCaseExecutions(context.Background(), engine.CaseExecutionCriteria{
		CaseInstanceId: caseInstanceId,
		ActivityId:     activityId,
	})
	if err != nil {
		t.Fatalf("failed to query case execution: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one case execution %s, but got %d", activityId, len(results))
	}
	return results[0]
}

func mustQueryProcessInstance(t *testing.T, e engine.Engine, id string) engine.ProcessInstance {
	results, err := e.CreateQuery().QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{Id: id})
	if err != nil {
		t.Fatalf("failed to query process instance: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one process instance %s, but got %d", id, len(results))
	}
	return results[0]
}

func mustQueryJob(t *testing.T, e engine.Engine, processInstanceId string) engine.Job {
	results, err := e.CreateQuery().QueryJobs(context.Background(), engine.JobCriteria{
		ProcessInstanceId: processInstanceId,
		ExcludeCompleted:  true,
	})
	if err != nil {
		t.Fatalf("failed to query job: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one open job, but got %d", len(results))
	}
	return results[0]
}

func mustQueryTask(t *testing.T, e engine.Engine, processInstanceId string) engine.Task {
	results, err := e.CreateQuery().QueryTasks(context.Background(), engine.TaskCriteria{
		ProcessInstanceId: processInstanceId,
		ExcludeCompleted:  true,
	})
	if err != nil {
		t.Fatalf("failed to query task: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one open task, but got %d", len(results))
	}
	return results[0]
}

func mustTruncateTables(t *testing.T, databaseUrl string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseUrl)
	if err != nil {
		t.Fatalf("failed to establish database connection: %v", err)
	}

	defer conn.Close(ctx)

	for _, table := range pg.Tables {
		if _, err := conn.Exec(ctx, fmt.Sprintf("TRUNCATE %s.%s", databaseSchema, table)); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}
