package assertions

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

// ProcessDefinitionAssert provides assertions for a process definition.
type ProcessDefinitionAssert struct {
	*assertion
}

// Actual queries and returns the current state of the process definition.
func (a *ProcessDefinitionAssert) Actual() engine.ProcessDefinition {
	a.t.Helper()

	processDefinition, err := a.actual()
	if err != nil {
		fail(a.t, err, a.chain)
	}
	return processDefinition
}

func (a *ProcessDefinitionAssert) HasActiveInstances(n int) *ProcessDefinitionAssert {
	a.t.Helper()

	processInstances, err := a.q.QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{
		ProcessDefinitionId: a.id,
		States:              []engine.InstanceState{engine.InstanceActive},
	})
	if err != nil {
		err = a.queryError(err)
	} else if len(processInstances) != n {
		err = a.mismatch(fmt.Sprintf("to have %d active instances", n), strconv.Itoa(len(processInstances)))
	}

	a.check(signature("HasActiveInstances", n), err)
	return a
}

func (a *ProcessDefinitionAssert) HasKey(key string) *ProcessDefinitionAssert {
	a.t.Helper()

	processDefinition, err := a.actual()
	if err == nil && processDefinition.Key != key {
		err = a.mismatch(fmt.Sprintf("to have key %q", key), strconv.Quote(processDefinition.Key))
	}

	a.check(signature("HasKey", key), err)
	return a
}

func (a *ProcessDefinitionAssert) HasVersion(version int) *ProcessDefinitionAssert {
	a.t.Helper()

	processDefinition, err := a.actual()
	if err == nil && processDefinition.Version != version {
		err = a.mismatch(fmt.Sprintf("to have version %d", version), strconv.Itoa(processDefinition.Version))
	}

	a.check(signature("HasVersion", version), err)
	return a
}

func (a *ProcessDefinitionAssert) IsActive() *ProcessDefinitionAssert {
	a.t.Helper()

	processDefinition, err := a.actual()
	if err == nil && processDefinition.IsSuspended {
		err = a.mismatch("to be active", "suspended")
	}

	a.check(signature("IsActive"), err)
	return a
}

func (a *ProcessDefinitionAssert) IsSuspended() *ProcessDefinitionAssert {
	a.t.Helper()

	processDefinition, err := a.actual()
	if err == nil && !processDefinition.IsSuspended {
		err = a.mismatch("to be suspended", "active")
	}

	a.check(signature("IsSuspended"), err)
	return a
}

func (a *ProcessDefinitionAssert) actual() (engine.ProcessDefinition, error) {
	results, err := a.q.QueryProcessDefinitions(context.Background(), engine.ProcessDefinitionCriteria{Id: a.id})
	if err != nil {
		return engine.ProcessDefinition{}, a.queryError(err)
	}
	if len(results) == 0 {
		return engine.ProcessDefinition{}, a.notFound()
	}
	return results[0], nil
}

// ProcessInstanceAssert provides assertions for a process instance and navigation to its tasks, jobs and called process instances.
type ProcessInstanceAssert struct {
	*assertion
}

// Actual queries and returns the current state of the process instance.
func (a *ProcessInstanceAssert) Actual() engine.ProcessInstance {
	a.t.Helper()

	processInstance, err := a.actual()
	if err != nil {
		fail(a.t, err, a.chain)
	}
	return processInstance
}

// CalledProcessInstance navigates to the process instance, called by the process instance.
// If processDefinitionKey is empty, any called process instance matches.
func (a *ProcessInstanceAssert) CalledProcessInstance(processDefinitionKey string) *ProcessInstanceAssert {
	a.t.Helper()

	predicate := signature("CalledProcessInstance", processDefinitionKey)

	results, err := a.q.QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{
		ParentId:             a.id,
		ProcessDefinitionKey: processDefinitionKey,
	})
	if err != nil {
		err = a.queryError(err)
	} else {
		err = a.single(kindProcessInstance, predicate, len(results))
	}

	a.check(predicate, err)
	return &ProcessInstanceAssert{a.child(kindProcessInstance, results[0].Id)}
}

func (a *ProcessInstanceAssert) HasBusinessKey(businessKey string) *ProcessInstanceAssert {
	a.t.Helper()

	processInstance, err := a.actual()
	if err == nil && processInstance.BusinessKey != businessKey {
		err = a.mismatch(fmt.Sprintf("to have business key %q", businessKey), strconv.Quote(processInstance.BusinessKey))
	}

	a.check(signature("HasBusinessKey", businessKey), err)
	return a
}

// HasNotPassed asserts that none of the given activities has been completed.
func (a *ProcessInstanceAssert) HasNotPassed(activityIds ...string) *ProcessInstanceAssert {
	a.t.Helper()

	passed, err := a.activityIds(activityIds, engine.InstanceCompleted)
	if err == nil {
		for _, activityId := range activityIds {
			if slices.Contains(passed, activityId) {
				err = a.mismatch("not to have passed "+list(activityIds), "passed "+list(passed))
				break
			}
		}
	}

	a.check(signature("HasNotPassed", activityIds), err)
	return a
}

func (a *ProcessInstanceAssert) HasNoVariables() *ProcessInstanceAssert {
	a.t.Helper()

	variables, err := a.q.QueryVariables(context.Background(), engine.VariableCriteria{ProcessInstanceId: a.id})

	a.check(signature("HasNoVariables"), a.hasNoVariables(variables, err))
	return a
}

// HasPassed asserts that all given activities have been completed.
func (a *ProcessInstanceAssert) HasPassed(activityIds ...string) *ProcessInstanceAssert {
	a.t.Helper()

	passed, err := a.activityIds(activityIds, engine.InstanceCompleted)
	if err == nil {
		for _, activityId := range activityIds {
			if !slices.Contains(passed, activityId) {
				err = a.mismatch("to have passed "+list(activityIds), "passed "+list(passed))
				break
			}
		}
	}

	a.check(signature("HasPassed", activityIds), err)
	return a
}

func (a *ProcessInstanceAssert) HasProcessDefinitionKey(processDefinitionKey string) *ProcessInstanceAssert {
	a.t.Helper()

	processInstance, err := a.actual()
	if err == nil && processInstance.ProcessDefinitionKey != processDefinitionKey {
		err = a.mismatch(
			fmt.Sprintf("to have process definition key %q", processDefinitionKey),
			strconv.Quote(processInstance.ProcessDefinitionKey),
		)
	}

	a.check(signature("HasProcessDefinitionKey", processDefinitionKey), err)
	return a
}

// HasVariables asserts that the process instance has all given variables or any variable, if no names are given.
func (a *ProcessInstanceAssert) HasVariables(names ...string) *ProcessInstanceAssert {
	a.t.Helper()

	variables, err := a.q.QueryVariables(context.Background(), engine.VariableCriteria{ProcessInstanceId: a.id})

	a.check(signature("HasVariables", names), a.hasVariables(variables, err, names))
	return a
}

func (a *ProcessInstanceAssert) IsActive() *ProcessInstanceAssert {
	return a.isState("IsActive", engine.InstanceActive)
}

func (a *ProcessInstanceAssert) IsCompleted() *ProcessInstanceAssert {
	return a.isState("IsCompleted", engine.InstanceCompleted)
}

// IsEnded asserts that the process instance is completed or terminated.
func (a *ProcessInstanceAssert) IsEnded() *ProcessInstanceAssert {
	a.t.Helper()

	processInstance, err := a.actual()
	if err == nil && !processInstance.IsEnded() {
		err = a.mismatch("to be ended", processInstance.State.String())
	}

	a.check(signature("IsEnded"), err)
	return a
}

func (a *ProcessInstanceAssert) IsNotEnded() *ProcessInstanceAssert {
	a.t.Helper()

	processInstance, err := a.actual()
	if err == nil && processInstance.IsEnded() {
		err = a.mismatch("not to be ended", processInstance.State.String())
	}

	a.check(signature("IsNotEnded"), err)
	return a
}

// IsNotWaitingAt asserts that none of the given activities is active.
func (a *ProcessInstanceAssert) IsNotWaitingAt(activityIds ...string) *ProcessInstanceAssert {
	a.t.Helper()

	waiting, err := a.activityIds(activityIds, engine.InstanceActive)
	if err == nil {
		for _, activityId := range activityIds {
			if slices.Contains(waiting, activityId) {
				err = a.mismatch("not to be waiting at "+list(activityIds), "waiting at "+list(waiting))
				break
			}
		}
	}

	a.check(signature("IsNotWaitingAt", activityIds), err)
	return a
}

func (a *ProcessInstanceAssert) IsSuspended() *ProcessInstanceAssert {
	return a.isState("IsSuspended", engine.InstanceSuspended)
}

func (a *ProcessInstanceAssert) IsTerminated() *ProcessInstanceAssert {
	return a.isState("IsTerminated", engine.InstanceTerminated)
}

// IsWaitingAt asserts that all given activities are active.
func (a *ProcessInstanceAssert) IsWaitingAt(activityIds ...string) *ProcessInstanceAssert {
	a.t.Helper()

	waiting, err := a.activityIds(activityIds, engine.InstanceActive)
	if err == nil {
		for _, activityId := range activityIds {
			if !slices.Contains(waiting, activityId) {
				err = a.mismatch("to be waiting at "+list(activityIds), "waiting at "+list(waiting))
				break
			}
		}
	}

	a.check(signature("IsWaitingAt", activityIds), err)
	return a
}

// Job navigates to the open job of the given activity. If activityId is empty, any open job matches.
func (a *ProcessInstanceAssert) Job(activityId string) *JobAssert {
	a.t.Helper()
	return a.job(signature("Job", activityId), engine.JobCriteria{ActivityId: activityId, ExcludeCompleted: true})
}

// JobWhere navigates to the job, matching the given criteria. The process instance filter is always applied.
func (a *ProcessInstanceAssert) JobWhere(criteria engine.JobCriteria) *JobAssert {
	a.t.Helper()
	return a.job(fmt.Sprintf("JobWhere(%+v)", criteria), criteria)
}

// Task navigates to the open task of the given activity. If activityId is empty, any open task matches.
func (a *ProcessInstanceAssert) Task(activityId string) *TaskAssert {
	a.t.Helper()
	return a.task(signature("Task", activityId), engine.TaskCriteria{ActivityId: activityId, ExcludeCompleted: true})
}

// TaskWhere navigates to the task, matching the given criteria. The process instance filter is always applied.
func (a *ProcessInstanceAssert) TaskWhere(criteria engine.TaskCriteria) *TaskAssert {
	a.t.Helper()
	return a.task(fmt.Sprintf("TaskWhere(%+v)", criteria), criteria)
}

func (a *ProcessInstanceAssert) actual() (engine.ProcessInstance, error) {
	results, err := a.q.QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{Id: a.id})
	if err != nil {
		return engine.ProcessInstance{}, a.queryError(err)
	}
	if len(results) == 0 {
		return engine.ProcessInstance{}, a.notFound()
	}
	return results[0], nil
}

// activityIds returns the sorted IDs of all activity instances in the given state, after ensuring that the process definition has all expected activities.
func (a *ProcessInstanceAssert) activityIds(expected []string, state engine.InstanceState) ([]string, error) {
	processInstance, err := a.actual()
	if err != nil {
		return nil, err
	}

	processDefinitions, err := a.q.QueryProcessDefinitions(context.Background(), engine.ProcessDefinitionCriteria{
		Id: processInstance.ProcessDefinitionId,
	})
	if err != nil {
		return nil, a.queryError(err)
	}
	if len(processDefinitions) == 0 {
		return nil, fmt.Errorf("failed to query process definition %s: not found", processInstance.ProcessDefinitionId)
	}

	for _, activityId := range expected {
		if _, ok := processDefinitions[0].Activity(activityId); !ok {
			return nil, fmt.Errorf("process definition %s has no such activity %s", processDefinitions[0], activityId)
		}
	}

	activityInstances, err := a.q.QueryActivityInstances(context.Background(), engine.ActivityInstanceCriteria{
		ProcessInstanceId: a.id,
		States:            []engine.InstanceState{state},
	})
	if err != nil {
		return nil, a.queryError(err)
	}

	activityIds := make([]string, 0, len(activityInstances))
	for _, activityInstance := range activityInstances {
		if !slices.Contains(activityIds, activityInstance.ActivityId) {
			activityIds = append(activityIds, activityInstance.ActivityId)
		}
	}
	slices.Sort(activityIds)
	return activityIds, nil
}

func (a *ProcessInstanceAssert) isState(predicate string, state engine.InstanceState) *ProcessInstanceAssert {
	a.t.Helper()

	processInstance, err := a.actual()
	if err == nil {
		err = a.expectState(state, processInstance.State)
	}

	a.check(signature(predicate), err)
	return a
}

func (a *ProcessInstanceAssert) job(predicate string, criteria engine.JobCriteria) *JobAssert {
	a.t.Helper()

	criteria.ProcessInstanceId = a.id

	results, err := a.q.QueryJobs(context.Background(), criteria)
	if err != nil {
		err = a.queryError(err)
	} else {
		err = a.single(kindJob, predicate, len(results))
	}

	a.check(predicate, err)
	return &JobAssert{a.child(kindJob, results[0].Id)}
}

func (a *ProcessInstanceAssert) task(predicate string, criteria engine.TaskCriteria) *TaskAssert {
	a.t.Helper()

	criteria.ProcessInstanceId = a.id

	results, err := a.q.QueryTasks(context.Background(), criteria)
	if err != nil {
		err = a.queryError(err)
	} else {
		err = a.single(kindTask, predicate, len(results))
	}

	a.check(predicate, err)
	return &TaskAssert{a.child(kindTask, results[0].Id)}
}
