package pg

import (
	"context"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type pgContext struct {
	options Options

	time time.Time

	tx    pgx.Tx
	txCtx context.Context
}

func (c *pgContext) Options() engine.Options {
	return c.options.Common
}

func (c *pgContext) Time() time.Time {
	return c.time
}

func (c *pgContext) ActivityInstances() internal.ActivityInstanceRepository {
	return &activityInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) CaseDefinitions() internal.CaseDefinitionRepository {
	return &caseDefinitionRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) CaseExecutions() internal.CaseExecutionRepository {
	return &caseExecutionRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) CaseInstances() internal.CaseInstanceRepository {
	return &caseInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) Jobs() internal.JobRepository {
	return &jobRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) ProcessDefinitions() internal.ProcessDefinitionRepository {
	return &processDefinitionRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) ProcessInstances() internal.ProcessInstanceRepository {
	return &processInstanceRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) Tasks() internal.TaskRepository {
	return &taskRepository{tx: c.tx, txCtx: c.txCtx}
}

func (c *pgContext) Variables() internal.VariableRepository {
	return &variableRepository{tx: c.tx, txCtx: c.txCtx}
}
