package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultEngineId = "default-engine" // Default ID of an engine, used when no specific ID is provided via [Options].
)

// An Engine creates and manages process instances and case instances.
//
// Process instances execute the activities of a process definition in sequence.
// Case instances consist of case executions, one per plan item of the case definition, that are driven by explicit transitions.
type Engine interface {
	// ClaimTask assigns an open task to a user.
	ClaimTask(context.Context, ClaimTaskCmd) (Task, error)

	// CompleteJob completes a due job or fails it, when an error is provided.
	//
	// A failed job is retried until its retries are exhausted.
	CompleteJob(context.Context, CompleteJobCmd) (Job, error)

	// CompleteTask completes an open task and continues the process instance.
	CompleteTask(context.Context, CompleteTaskCmd) (Task, error)

	// CreateCaseDefinition creates a case definition.
	//
	// If a case definition with the same key exists, the next version is created.
	CreateCaseDefinition(context.Context, CreateCaseDefinitionCmd) (CaseDefinition, error)

	// CreateCaseInstance creates an instance of an existing case definition, including a case execution per plan item.
	CreateCaseInstance(context.Context, CreateCaseInstanceCmd) (CaseInstance, error)

	// CreateProcessDefinition creates a process definition.
	//
	// If a process definition with the same key exists, the next version is created.
	CreateProcessDefinition(context.Context, CreateProcessDefinitionCmd) (ProcessDefinition, error)

	// CreateProcessInstance creates an instance of an existing process definition and enters its first activity.
	CreateProcessInstance(context.Context, CreateProcessInstanceCmd) (ProcessInstance, error)

	// CreateQuery creates a query with default options.
	CreateQuery() Query

	// ResumeProcessDefinition resumes a suspended process definition.
	ResumeProcessDefinition(context.Context, ResumeProcessDefinitionCmd) error

	// ResumeProcessInstance resumes a suspended process instance.
	ResumeProcessInstance(context.Context, ResumeProcessInstanceCmd) error

	// SetTime increases the engine's time for testing purposes.
	SetTime(context.Context, SetTimeCmd) error

	// SetVariables sets or deletes variables of an active process instance or case instance.
	SetVariables(context.Context, SetVariablesCmd) error

	// SuspendProcessDefinition suspends a process definition. A suspended process definition cannot be instantiated.
	SuspendProcessDefinition(context.Context, SuspendProcessDefinitionCmd) error

	// SuspendProcessInstance suspends an active process instance and its open jobs.
	SuspendProcessInstance(context.Context, SuspendProcessInstanceCmd) error

	// TerminateProcessInstance terminates an active or suspended process instance, including called process instances.
	TerminateProcessInstance(context.Context, TerminateProcessInstanceCmd) error

	// TransitionCaseExecution performs a lifecycle transition of a case execution.
	//
	// If the transition is not allowed in the current state, an error of type [ErrorConflict] is returned.
	TransitionCaseExecution(context.Context, TransitionCaseExecutionCmd) (CaseExecution, error)

	// TransitionCaseInstance performs a lifecycle transition of a case instance.
	//
	// If the transition is not allowed in the current state, an error of type [ErrorConflict] is returned.
	TransitionCaseInstance(context.Context, TransitionCaseInstanceCmd) (CaseInstance, error)

	// Shutdown shuts the engine down and removes it from the registry it is registered with.
	Shutdown()
}

// A Query allows to query entities, using query options.
type Query interface {
	QueryActivityInstances(context.Context, ActivityInstanceCriteria) ([]ActivityInstance, error)
	QueryCaseDefinitions(context.Context, CaseDefinitionCriteria) ([]CaseDefinition, error)
	QueryCaseExecutions(context.Context, CaseExecutionCriteria) ([]CaseExecution, error)
	QueryCaseInstances(context.Context, CaseInstanceCriteria) ([]CaseInstance, error)
	QueryJobs(context.Context, JobCriteria) ([]Job, error)
	QueryProcessDefinitions(context.Context, ProcessDefinitionCriteria) ([]ProcessDefinition, error)
	QueryProcessInstances(context.Context, ProcessInstanceCriteria) ([]ProcessInstance, error)
	QueryTasks(context.Context, TaskCriteria) ([]Task, error)
	QueryVariables(context.Context, VariableCriteria) ([]Variable, error)

	// SetOptions sets options that are used when performing a query.
	SetOptions(QueryOptions)
}

// Options are common configuration options that are shared between engine implementations.
type Options struct {
	DefaultQueryLimit int         // Default limit for queries, executed without an explicit limit.
	EngineId          string      // ID of the engine, used as registry key.
	JobRetries        int         // Number of retries, a job gets when its activity does not specify any.
	Logger            *zap.Logger // Logger for command execution and engine lifecycle events.
	Registry          *Registry   // Registry, the engine registers itself with. If nil, the engine is not registered.
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.EngineId) == "" {
		return errors.New("engine ID must not be empty or blank")
	}
	if o.DefaultQueryLimit < 1 {
		return errors.New("default query limit must be greater than or equal to 1")
	}
	if o.JobRetries < 1 {
		return errors.New("job retries must be greater than or equal to 1")
	}
	if o.Logger == nil {
		return errors.New("logger must not be nil")
	}
	return nil
}

// QueryOptions are used to limit or offset query results.
// The zero value does not affect a query.
type QueryOptions struct {
	// Limit specifies the maximum number of results to return.
	// If Limit <= 0, the option's DefaultQueryLimit is applied.
	Limit int
	// Offset specifies the number of results to skip, before returning any result.
	// If Offset <= 0, no results are skipped.
	Offset int
}

type Error struct {
	Type   ErrorType
	Title  string
	Detail string
	Causes []ErrorCause
}

func (e Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s: %s", e.Type, e.Title, e.Detail))

	for _, cause := range e.Causes {
		sb.WriteRune('\n')
		sb.WriteString(cause.String())
	}

	return sb.String()
}

type ErrorType int

const (
	ErrorBug ErrorType = iota + 1
	ErrorConflict
	ErrorNotFound
	ErrorQuery
	ErrorValidation
)

func MapErrorType(s string) ErrorType {
	switch s {
	case "BUG":
		return ErrorBug
	case "CONFLICT":
		return ErrorConflict
	case "NOT_FOUND":
		return ErrorNotFound
	case "QUERY":
		return ErrorQuery
	case "VALIDATION":
		return ErrorValidation
	default:
		return 0
	}
}

func (v ErrorType) String() string {
	switch v {
	case ErrorBug:
		return "BUG"
	case ErrorConflict:
		return "CONFLICT"
	case ErrorNotFound:
		return "NOT_FOUND"
	case ErrorQuery:
		return "QUERY"
	case ErrorValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// A cause of a validation [Error] like a missing command field or an unknown parent plan item.
type ErrorCause struct {
	Pointer string // A pointer, locating the invalid field - e.g. #/planItems/0/parentId.
	Type    string // Type indicator.
	Detail  string // Human-readable, detailed information about the cause.
}

func (e ErrorCause) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Pointer, e.Detail)
}
