package mem

import (
	"context"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

type query struct {
	e *memEngine

	defaultQueryLimit int
	options           engine.QueryOptions
}

func (q *query) QueryActivityInstances(_ context.Context, criteria engine.ActivityInstanceCriteria) ([]engine.ActivityInstance, error) {
	defer q.e.runlock()
	return q.e.rlock().ActivityInstances().Query(criteria, q.options)
}

func (q *query) QueryCaseDefinitions(_ context.Context, criteria engine.CaseDefinitionCriteria) ([]engine.CaseDefinition, error) {
	defer q.e.runlock()
	return q.e.rlock().CaseDefinitions().Query(criteria, q.options)
}

func (q *query) QueryCaseExecutions(_ context.Context, criteria engine.CaseExecutionCriteria) ([]engine.CaseExecution, error) {
	defer q.e.runlock()
	return q.e.rlock().CaseExecutions().Query(criteria, q.options)
}

func (q *query) QueryCaseInstances(_ context.Context, criteria engine.CaseInstanceCriteria) ([]engine.CaseInstance, error) {
	defer q.e.runlock()
	return q.e.rlock().CaseInstances().Query(criteria, q.options)
}

func (q *query) QueryJobs(_ context.Context, criteria engine.JobCriteria) ([]engine.Job, error) {
	defer q.e.runlock()
	return q.e.rlock().Jobs().Query(criteria, q.options)
}

func (q *query) QueryProcessDefinitions(_ context.Context, criteria engine.ProcessDefinitionCriteria) ([]engine.ProcessDefinition, error) {
	defer q.e.runlock()
	return q.e.rlock().ProcessDefinitions().Query(criteria, q.options)
}

func (q *query) QueryProcessInstances(_ context.Context, criteria engine.ProcessInstanceCriteria) ([]engine.ProcessInstance, error) {
	defer q.e.runlock()
	return q.e.rlock().ProcessInstances().Query(criteria, q.options)
}

func (q *query) QueryTasks(_ context.Context, criteria engine.TaskCriteria) ([]engine.Task, error) {
	defer q.e.runlock()
	return q.e.rlock().Tasks().Query(criteria, q.options)
}

func (q *query) QueryVariables(_ context.Context, criteria engine.VariableCriteria) ([]engine.Variable, error) {
	defer q.e.runlock()
	return q.e.rlock().Variables().Query(criteria, q.options)
}

func (q *query) SetOptions(options engine.QueryOptions) {
	if options.Limit <= 0 {
		options.Limit = q.defaultQueryLimit
	}

	q.options = options
}
