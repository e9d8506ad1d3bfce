package engine

import (
	"time"
)

// ClaimTaskCmd assigns an open task to a user.
type ClaimTaskCmd struct {
	// Task ID.
	Id string `json:"-" validate:"required"`

	// User, the task is assigned to.
	Assignee string `json:"assignee" validate:"required"`
	// ID of the worker that claims the task.
	WorkerId string `json:"workerId" validate:"required"`
}

// CompleteJobCmd provides data for the completion of a job.
type CompleteJobCmd struct {
	// Job ID.
	Id string `json:"-" validate:"required"`

	// Optional error, used to fail a job due to a technical problem. A failed job loses one retry.
	Error string `json:"error,omitempty"`
	// Variables to set or delete at process instance scope. For a variable deletion, no data must be provided.
	Variables map[string]*Data `json:"variables,omitempty" validate:"max=100,dive,keys,variable_name,endkeys"`
	// ID of the worker that completed the job.
	WorkerId string `json:"workerId" validate:"required"`
}

// CompleteTaskCmd provides data for the completion of an open task.
type CompleteTaskCmd struct {
	// Task ID.
	Id string `json:"-" validate:"required"`

	// Variables to set or delete at process instance scope. For a variable deletion, no data must be provided.
	Variables map[string]*Data `json:"variables,omitempty" validate:"max=100,dive,keys,variable_name,endkeys"`
	// ID of the worker that completed the task.
	WorkerId string `json:"workerId" validate:"required"`
}

// CreateCaseDefinitionCmd provides data for the creation of a case definition.
type CreateCaseDefinitionCmd struct {
	// Key of the case definition.
	Key string `json:"key" validate:"required,activity_id"`
	// Human-readable name.
	Name string `json:"name,omitempty"`
	// Plan items. Items with a parent ID belong to the stage with that ID.
	PlanItems []PlanItem `json:"planItems" validate:"required,min=1,max=100,dive"`
	// ID of the worker that created the case definition.
	WorkerId string `json:"workerId" validate:"required"`
}

// CreateCaseInstanceCmd provides data for the creation of a case instance.
type CreateCaseInstanceCmd struct {
	// Key of an existing case definition.
	CaseDefinitionKey string `json:"caseDefinitionKey" validate:"required"`
	// Optional key, used to correlate a case instance with a business entity.
	BusinessKey string `json:"businessKey,omitempty"`
	// Variables to set at case instance scope.
	Variables map[string]*Data `json:"variables,omitempty" validate:"max=100,dive,keys,variable_name,endkeys"`
	// Version of an existing case definition. If 0, the latest version is used.
	Version int `json:"version,omitempty" validate:"gte=0"`
	// ID of the worker that created the case instance.
	WorkerId string `json:"workerId" validate:"required"`
}

// CreateProcessDefinitionCmd provides data for the creation of a process definition.
type CreateProcessDefinitionCmd struct {
	// Activities, executed in sequence.
	Activities []Activity `json:"activities" validate:"required,min=1,max=100,dive"`
	// Key of the process definition.
	Key string `json:"key" validate:"required,activity_id"`
	// Human-readable name.
	Name string `json:"name,omitempty"`
	// ID of the worker that created the process definition.
	WorkerId string `json:"workerId" validate:"required"`
}

// CreateProcessInstanceCmd provides data for the creation of a process instance.
type CreateProcessInstanceCmd struct {
	// Key of an existing process definition.
	ProcessDefinitionKey string `json:"processDefinitionKey" validate:"required"`
	// Optional key, used to correlate a process instance with a business entity.
	BusinessKey string `json:"businessKey,omitempty"`
	// Variables to set at process instance scope.
	Variables map[string]*Data `json:"variables,omitempty" validate:"max=100,dive,keys,variable_name,endkeys"`
	// Version of an existing process definition. If 0, the latest version is used.
	Version int `json:"version,omitempty" validate:"gte=0"`
	// ID of the worker that created the process instance.
	WorkerId string `json:"workerId" validate:"required"`
}

type ResumeProcessDefinitionCmd struct {
	// Process definition ID.
	Id string `json:"-" validate:"required"`
}

type ResumeProcessInstanceCmd struct {
	// Process instance ID.
	Id string `json:"-" validate:"required"`
}

// SetTimeCmd is used to increase the engine's time for testing purposes.
type SetTimeCmd struct {
	// A future point in time.
	Time time.Time `json:"time" validate:"required"`
}

// SetVariablesCmd sets or deletes variables of a process instance or case instance.
// Exactly one of ProcessInstanceId and CaseInstanceId must be provided.
type SetVariablesCmd struct {
	// Case instance ID.
	CaseInstanceId string `json:"-" validate:"required_without=ProcessInstanceId,excluded_with=ProcessInstanceId"`
	// Process instance ID.
	ProcessInstanceId string `json:"-" validate:"required_without=CaseInstanceId,excluded_with=CaseInstanceId"`

	// Variables to set or delete. For a variable deletion, no data must be provided.
	Variables map[string]*Data `json:"variables" validate:"required,max=100,dive,keys,variable_name,endkeys"`
	// ID of the worker that sets the variables.
	WorkerId string `json:"workerId" validate:"required"`
}

type SuspendProcessDefinitionCmd struct {
	// Process definition ID.
	Id string `json:"-" validate:"required"`
}

type SuspendProcessInstanceCmd struct {
	// Process instance ID.
	Id string `json:"-" validate:"required"`
}

type TerminateProcessInstanceCmd struct {
	// Process instance ID.
	Id string `json:"-" validate:"required"`
}

// TransitionCaseExecutionCmd performs a lifecycle transition of a case execution.
type TransitionCaseExecutionCmd struct {
	// Case execution ID.
	Id string `json:"-" validate:"required"`

	// Transition to perform.
	Transition CaseTransition `json:"transition" validate:"required"`
}

// TransitionCaseInstanceCmd performs a lifecycle transition of a case instance.
type TransitionCaseInstanceCmd struct {
	// Case instance ID.
	Id string `json:"-" validate:"required"`

	// Transition to perform.
	Transition CaseTransition `json:"transition" validate:"required"`
}
