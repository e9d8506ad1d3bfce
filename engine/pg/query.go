package pg

import (
	"context"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

type query struct {
	e *pgEngine

	defaultQueryLimit int
	options           engine.QueryOptions
}

func (q *query) QueryActivityInstances(ctx context.Context, criteria engine.ActivityInstanceCriteria) ([]engine.ActivityInstance, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.ActivityInstances().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryCaseDefinitions(ctx context.Context, criteria engine.CaseDefinitionCriteria) ([]engine.CaseDefinition, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.CaseDefinitions().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryCaseExecutions(ctx context.Context, criteria engine.CaseExecutionCriteria) ([]engine.CaseExecution, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.CaseExecutions().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryCaseInstances(ctx context.Context, criteria engine.CaseInstanceCriteria) ([]engine.CaseInstance, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.CaseInstances().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryJobs(ctx context.Context, criteria engine.JobCriteria) ([]engine.Job, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.Jobs().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryProcessDefinitions(ctx context.Context, criteria engine.ProcessDefinitionCriteria) ([]engine.ProcessDefinition, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.ProcessDefinitions().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryProcessInstances(ctx context.Context, criteria engine.ProcessInstanceCriteria) ([]engine.ProcessInstance, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.ProcessInstances().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryTasks(ctx context.Context, criteria engine.TaskCriteria) ([]engine.Task, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.Tasks().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) QueryVariables(ctx context.Context, criteria engine.VariableCriteria) ([]engine.Variable, error) {
	pgCtx, cancel, err := q.e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer cancel()
	results, err := pgCtx.Variables().Query(criteria, q.options)
	return results, q.e.release(pgCtx, err)
}

func (q *query) SetOptions(options engine.QueryOptions) {
	if options.Limit <= 0 {
		options.Limit = q.defaultQueryLimit
	}

	q.options = options
}
