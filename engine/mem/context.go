package mem

import (
	"slices"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
)

func newMemContext(options Options) *memContext {
	return &memContext{options: options}
}

type memContext struct {
	repositories

	options Options

	time time.Time
}

type repositories struct {
	activityInstances  activityInstanceRepository
	caseDefinitions    caseDefinitionRepository
	caseExecutions     caseExecutionRepository
	caseInstances      caseInstanceRepository
	jobs               jobRepository
	processDefinitions processDefinitionRepository
	processInstances   processInstanceRepository
	tasks              taskRepository
	variables          variableRepository
}

// clone copies all entity slices, so that in-place updates do not affect the copy.
func (r repositories) clone() repositories {
	return repositories{
		activityInstances:  activityInstanceRepository{entities: slices.Clone(r.activityInstances.entities)},
		caseDefinitions:    caseDefinitionRepository{entities: slices.Clone(r.caseDefinitions.entities)},
		caseExecutions:     caseExecutionRepository{entities: slices.Clone(r.caseExecutions.entities)},
		caseInstances:      caseInstanceRepository{entities: slices.Clone(r.caseInstances.entities)},
		jobs:               jobRepository{entities: slices.Clone(r.jobs.entities)},
		processDefinitions: processDefinitionRepository{entities: slices.Clone(r.processDefinitions.entities)},
		processInstances:   processInstanceRepository{entities: slices.Clone(r.processInstances.entities)},
		tasks:              taskRepository{entities: slices.Clone(r.tasks.entities)},
		variables:          variableRepository{entities: slices.Clone(r.variables.entities)},
	}
}

func (c *memContext) Options() engine.Options {
	return c.options.Common
}

func (c *memContext) Time() time.Time {
	return c.time
}

func (c *memContext) ActivityInstances() internal.ActivityInstanceRepository {
	return &c.activityInstances
}

func (c *memContext) CaseDefinitions() internal.CaseDefinitionRepository {
	return &c.caseDefinitions
}

func (c *memContext) CaseExecutions() internal.CaseExecutionRepository {
	return &c.caseExecutions
}

func (c *memContext) CaseInstances() internal.CaseInstanceRepository {
	return &c.caseInstances
}

func (c *memContext) Jobs() internal.JobRepository {
	return &c.jobs
}

func (c *memContext) ProcessDefinitions() internal.ProcessDefinitionRepository {
	return &c.processDefinitions
}

func (c *memContext) ProcessInstances() internal.ProcessInstanceRepository {
	return &c.processInstances
}

func (c *memContext) Tasks() internal.TaskRepository {
	return &c.tasks
}

func (c *memContext) Variables() internal.VariableRepository {
	return &c.variables
}

func (c *memContext) clear() {
	c.repositories = repositories{}
}

// paginate applies the query options to all entities, matching a criteria.
func paginate[E any, R any](entities []E, o engine.QueryOptions, match func(E) bool, result func(E) R) []R {
	var offset int

	results := make([]R, 0)
	for _, e := range entities {
		if !match(e) {
			continue
		}

		if offset < o.Offset {
			offset++
			continue
		}

		results = append(results, result(e))

		if o.Limit > 0 && len(results) == o.Limit {
			break
		}
	}

	return results
}

func matchStates(states []engine.InstanceState, state engine.InstanceState) bool {
	return len(states) == 0 || slices.Contains(states, state)
}
