package internal

import (
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

// Context provides the engine time and the repositories, a command is executed with.
// An implementation must ensure that all changes of a command are applied atomically.
type Context interface {
	Options() engine.Options

	Time() time.Time

	ActivityInstances() ActivityInstanceRepository
	CaseDefinitions() CaseDefinitionRepository
	CaseExecutions() CaseExecutionRepository
	CaseInstances() CaseInstanceRepository
	Jobs() JobRepository
	ProcessDefinitions() ProcessDefinitionRepository
	ProcessInstances() ProcessInstanceRepository
	Tasks() TaskRepository
	Variables() VariableRepository
}
