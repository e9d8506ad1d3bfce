package cli

import (
	"time"

	"github.com/gclaussn/go-bpmn-assert/assertions"
	"github.com/gclaussn/go-bpmn-assert/engine"
	"gopkg.in/yaml.v3"
)

// applyStep applies a step to the current wrapper and returns the wrapper, the next step is applied to.
// A navigation step returns the wrapper of the sub entity.
func applyStep(t *checkT, current any, s step) any {
	var (
		next any
		ok   bool
	)

	switch a := current.(type) {
	case *assertions.ProcessDefinitionAssert:
		next, ok = applyProcessDefinitionStep(t, a, s)
	case *assertions.ProcessInstanceAssert:
		next, ok = applyProcessInstanceStep(t, a, s)
	case *assertions.TaskAssert:
		next, ok = applyTaskStep(t, a, s)
	case *assertions.JobAssert:
		next, ok = applyJobStep(t, a, s)
	case *assertions.CaseDefinitionAssert:
		next, ok = applyCaseDefinitionStep(t, a, s)
	case *assertions.CaseInstanceAssert:
		next, ok = applyCaseInstanceStep(t, a, s)
		if !ok {
			next, ok = applyNavigationStep(t, a, s)
		}
	case *assertions.CaseExecutionAssert:
		next, ok = applyCaseExecutionStep(t, a, s)
	case *assertions.CaseTaskAssert:
		next, ok = applyCaseExecutionStep(t, a, s)
	case *assertions.HumanTaskAssert:
		next, ok = applyCaseExecutionStep(t, a, s)
	case *assertions.MilestoneAssert:
		next, ok = applyCaseExecutionStep(t, a, s)
	case *assertions.ProcessTaskAssert:
		next, ok = applyCaseExecutionStep(t, a, s)
	case *assertions.StageAssert:
		next, ok = applyCaseExecutionStep(t, a, s)
		if !ok {
			next, ok = applyNavigationStep(t, a, s)
		}
	default:
		t.fatalf("unsupported wrapper %T", current)
	}

	if !ok {
		t.fatalf("unknown step %s for %s", s, wrapperName(current))
	}
	return next
}

func applyProcessDefinitionStep(t *checkT, a *assertions.ProcessDefinitionAssert, s step) (any, bool) {
	switch s.name {
	case "hasActiveInstances":
		return a.HasActiveInstances(s.int(t)), true
	case "hasKey":
		return a.HasKey(s.string(t)), true
	case "hasVersion":
		return a.HasVersion(s.int(t)), true
	case "isActive":
		return a.IsActive(), true
	case "isSuspended":
		return a.IsSuspended(), true
	default:
		return nil, false
	}
}

func applyProcessInstanceStep(t *checkT, a *assertions.ProcessInstanceAssert, s step) (any, bool) {
	switch s.name {
	case "calledProcessInstance":
		return a.CalledProcessInstance(s.string(t)), true
	case "hasBusinessKey":
		return a.HasBusinessKey(s.string(t)), true
	case "hasNotPassed":
		return a.HasNotPassed(s.strings(t)...), true
	case "hasNoVariables":
		return a.HasNoVariables(), true
	case "hasPassed":
		return a.HasPassed(s.strings(t)...), true
	case "hasProcessDefinitionKey":
		return a.HasProcessDefinitionKey(s.string(t)), true
	case "hasVariables":
		return a.HasVariables(s.strings(t)...), true
	case "isActive":
		return a.IsActive(), true
	case "isCompleted":
		return a.IsCompleted(), true
	case "isEnded":
		return a.IsEnded(), true
	case "isNotEnded":
		return a.IsNotEnded(), true
	case "isNotWaitingAt":
		return a.IsNotWaitingAt(s.strings(t)...), true
	case "isSuspended":
		return a.IsSuspended(), true
	case "isTerminated":
		return a.IsTerminated(), true
	case "isWaitingAt":
		return a.IsWaitingAt(s.strings(t)...), true
	case "job":
		return a.Job(s.string(t)), true
	case "task":
		return a.Task(s.string(t)), true
	default:
		return nil, false
	}
}

func applyTaskStep(t *checkT, a *assertions.TaskAssert, s step) (any, bool) {
	switch s.name {
	case "hasCandidateGroup":
		return a.HasCandidateGroup(s.string(t)), true
	case "hasCandidateUser":
		return a.HasCandidateUser(s.string(t)), true
	case "hasDefinitionKey":
		return a.HasDefinitionKey(s.string(t)), true
	case "hasDescription":
		return a.HasDescription(s.string(t)), true
	case "hasDueDate":
		return a.HasDueDate(s.time(t)), true
	case "hasFollowUpDate":
		return a.HasFollowUpDate(s.time(t)), true
	case "hasName":
		return a.HasName(s.string(t)), true
	case "isAssignedTo":
		return a.IsAssignedTo(s.string(t)), true
	case "isCompleted":
		return a.IsCompleted(), true
	case "isNotAssigned":
		return a.IsNotAssigned(), true
	case "isNotCompleted":
		return a.IsNotCompleted(), true
	default:
		return nil, false
	}
}

func applyJobStep(t *checkT, a *assertions.JobAssert, s step) (any, bool) {
	switch s.name {
	case "hasActivityId":
		return a.HasActivityId(s.string(t)), true
	case "hasDueDate":
		return a.HasDueDate(s.time(t)), true
	case "hasError":
		return a.HasError(s.string(t)), true
	case "hasRetries":
		return a.HasRetries(s.int(t)), true
	case "isCompleted":
		return a.IsCompleted(), true
	case "isNotCompleted":
		return a.IsNotCompleted(), true
	case "isSuspended":
		return a.IsSuspended(), true
	default:
		return nil, false
	}
}

func applyCaseDefinitionStep(t *checkT, a *assertions.CaseDefinitionAssert, s step) (any, bool) {
	switch s.name {
	case "hasActiveInstances":
		return a.HasActiveInstances(s.int(t)), true
	case "hasKey":
		return a.HasKey(s.string(t)), true
	case "hasVersion":
		return a.HasVersion(s.int(t)), true
	default:
		return nil, false
	}
}

func applyCaseInstanceStep(t *checkT, a *assertions.CaseInstanceAssert, s step) (any, bool) {
	switch s.name {
	case "hasBusinessKey":
		return a.HasBusinessKey(s.string(t)), true
	case "hasCaseDefinitionKey":
		return a.HasCaseDefinitionKey(s.string(t)), true
	case "hasNoVariables":
		return a.HasNoVariables(), true
	case "hasVariables":
		return a.HasVariables(s.strings(t)...), true
	case "isActive":
		return a.IsActive(), true
	case "isClosed":
		return a.IsClosed(), true
	case "isCompleted":
		return a.IsCompleted(), true
	case "isFailed":
		return a.IsFailed(), true
	case "isSuspended":
		return a.IsSuspended(), true
	case "isTerminated":
		return a.IsTerminated(), true
	default:
		return nil, false
	}
}

// caseExecutionSteps is implemented by all case execution wrappers.
type caseExecutionSteps[S any] interface {
	HasActivityId(string) S
	IsActive() S
	IsAvailable() S
	IsClosed() S
	IsCompleted() S
	IsDisabled() S
	IsEnabled() S
	IsFailed() S
	IsRequired() S
	IsSuspended() S
	IsTerminated() S
}

func applyCaseExecutionStep[S caseExecutionSteps[S]](t *checkT, a S, s step) (any, bool) {
	switch s.name {
	case "hasActivityId":
		return a.HasActivityId(s.string(t)), true
	case "isActive":
		return a.IsActive(), true
	case "isAvailable":
		return a.IsAvailable(), true
	case "isClosed":
		return a.IsClosed(), true
	case "isCompleted":
		return a.IsCompleted(), true
	case "isDisabled":
		return a.IsDisabled(), true
	case "isEnabled":
		return a.IsEnabled(), true
	case "isFailed":
		return a.IsFailed(), true
	case "isRequired":
		return a.IsRequired(), true
	case "isSuspended":
		return a.IsSuspended(), true
	case "isTerminated":
		return a.IsTerminated(), true
	default:
		return nil, false
	}
}

// planItemNavigator is implemented by case instance and stage wrappers.
type planItemNavigator interface {
	CaseExecution(engine.CaseExecutionCriteria) *assertions.CaseExecutionAssert
	CaseTask(string) *assertions.CaseTaskAssert
	HumanTask(string) *assertions.HumanTaskAssert
	Milestone(string) *assertions.MilestoneAssert
	ProcessTask(string) *assertions.ProcessTaskAssert
	Stage(string) *assertions.StageAssert
}

func applyNavigationStep(t *checkT, a planItemNavigator, s step) (any, bool) {
	switch s.name {
	case "caseExecution":
		return a.CaseExecution(engine.CaseExecutionCriteria{ActivityId: s.string(t)}), true
	case "caseTask":
		return a.CaseTask(s.string(t)), true
	case "humanTask":
		return a.HumanTask(s.string(t)), true
	case "milestone":
		return a.Milestone(s.string(t)), true
	case "processTask":
		return a.ProcessTask(s.string(t)), true
	case "stage":
		return a.Stage(s.string(t)), true
	default:
		return nil, false
	}
}

func wrapperName(v any) string {
	switch v.(type) {
	case *assertions.ProcessDefinitionAssert:
		return "process definition"
	case *assertions.ProcessInstanceAssert:
		return "process instance"
	case *assertions.TaskAssert:
		return "task"
	case *assertions.JobAssert:
		return "job"
	case *assertions.CaseDefinitionAssert:
		return "case definition"
	case *assertions.CaseInstanceAssert:
		return "case instance"
	case *assertions.CaseTaskAssert:
		return "case task"
	case *assertions.HumanTaskAssert:
		return "human task"
	case *assertions.MilestoneAssert:
		return "milestone"
	case *assertions.ProcessTaskAssert:
		return "process task"
	case *assertions.StageAssert:
		return "stage"
	default:
		return "case execution"
	}
}

// isEmpty determines if a step has no argument, like "isActive", "isActive: {}" or "isActive: null".
func (s step) isEmpty() bool {
	if s.arg == nil {
		return true
	}
	switch s.arg.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		return len(s.arg.Content) == 0
	case yaml.ScalarNode:
		return s.arg.Tag == "!!null"
	default:
		return false
	}
}

func (s step) decode(t *checkT, v any) {
	if err := s.arg.Decode(v); err != nil {
		t.fatalf("invalid argument of step %s: %v", s, err)
	}
}

func (s step) int(t *checkT) int {
	if s.isEmpty() {
		t.fatalf("step %s requires a number", s)
	}

	var v int
	s.decode(t, &v)
	return v
}

func (s step) string(t *checkT) string {
	if s.isEmpty() {
		return ""
	}

	var v string
	s.decode(t, &v)
	return v
}

// strings accepts a single value or a list of values.
func (s step) strings(t *checkT) []string {
	if s.isEmpty() {
		return nil
	}
	if s.arg.Kind == yaml.ScalarNode {
		return []string{s.string(t)}
	}

	var v []string
	s.decode(t, &v)
	return v
}

func (s step) time(t *checkT) time.Time {
	v := s.string(t)

	tv, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t.fatalf("step %s requires an RFC 3339 time, but was %q", s, v)
	}
	return tv
}
