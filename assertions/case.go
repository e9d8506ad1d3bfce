package assertions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

// CaseDefinitionAssert provides assertions for a case definition.
type CaseDefinitionAssert struct {
	*assertion
}

// Actual queries and returns the current state of the case definition.
func (a *CaseDefinitionAssert) Actual() engine.CaseDefinition {
	a.t.Helper()

	caseDefinition, err := a.actual()
	if err != nil {
		fail(a.t, err, a.chain)
	}
	return caseDefinition
}

func (a *CaseDefinitionAssert) HasActiveInstances(n int) *CaseDefinitionAssert {
	a.t.Helper()

	caseInstances, err := a.q.QueryCaseInstances(context.Background(), engine.CaseInstanceCriteria{
		CaseDefinitionId: a.id,
		States:           []engine.InstanceState{engine.InstanceActive},
	})
	if err != nil {
		err = a.queryError(err)
	} else if len(caseInstances) != n {
		err = a.mismatch(fmt.Sprintf("to have %d active instances", n), strconv.Itoa(len(caseInstances)))
	}

	a.check(signature("HasActiveInstances", n), err)
	return a
}

func (a *CaseDefinitionAssert) HasKey(key string) *CaseDefinitionAssert {
	a.t.Helper()

	caseDefinition, err := a.actual()
	if err == nil && caseDefinition.Key != key {
		err = a.mismatch(fmt.Sprintf("to have key %q", key), strconv.Quote(caseDefinition.Key))
	}

	a.check(signature("HasKey", key), err)
	return a
}

func (a *CaseDefinitionAssert) HasVersion(version int) *CaseDefinitionAssert {
	a.t.Helper()

	caseDefinition, err := a.actual()
	if err == nil && caseDefinition.Version != version {
		err = a.mismatch(fmt.Sprintf("to have version %d", version), strconv.Itoa(caseDefinition.Version))
	}

	a.check(signature("HasVersion", version), err)
	return a
}

func (a *CaseDefinitionAssert) actual() (engine.CaseDefinition, error) {
	results, err := a.q.QueryCaseDefinitions(context.Background(), engine.CaseDefinitionCriteria{Id: a.id})
	if err != nil {
		return engine.CaseDefinition{}, a.queryError(err)
	}
	if len(results) == 0 {
		return engine.CaseDefinition{}, a.notFound()
	}
	return results[0], nil
}

// CaseInstanceAssert provides assertions for a case instance and navigation to its case executions.
type CaseInstanceAssert struct {
	*assertion
	planItems
}

func newCaseInstanceAssert(a *assertion) *CaseInstanceAssert {
	return &CaseInstanceAssert{assertion: a, planItems: planItems{a: a, caseInstanceId: a.id}}
}

// Actual queries and returns the current state of the case instance.
func (a *CaseInstanceAssert) Actual() engine.CaseInstance {
	a.t.Helper()

	caseInstance, err := a.actual()
	if err != nil {
		fail(a.t, err, a.chain)
	}
	return caseInstance
}

func (a *CaseInstanceAssert) HasBusinessKey(businessKey string) *CaseInstanceAssert {
	a.t.Helper()

	caseInstance, err := a.actual()
	if err == nil && caseInstance.BusinessKey != businessKey {
		err = a.mismatch(fmt.Sprintf("to have business key %q", businessKey), strconv.Quote(caseInstance.BusinessKey))
	}

	a.check(signature("HasBusinessKey", businessKey), err)
	return a
}

func (a *CaseInstanceAssert) HasCaseDefinitionKey(caseDefinitionKey string) *CaseInstanceAssert {
	a.t.Helper()

	caseInstance, err := a.actual()
	if err == nil && caseInstance.CaseDefinitionKey != caseDefinitionKey {
		err = a.mismatch(
			fmt.Sprintf("to have case definition key %q", caseDefinitionKey),
			strconv.Quote(caseInstance.CaseDefinitionKey),
		)
	}

	a.check(signature("HasCaseDefinitionKey", caseDefinitionKey), err)
	return a
}

func (a *CaseInstanceAssert) HasNoVariables() *CaseInstanceAssert {
	a.t.Helper()

	variables, err := a.q.QueryVariables(context.Background(), engine.VariableCriteria{CaseInstanceId: a.id})

	a.check(signature("HasNoVariables"), a.hasNoVariables(variables, err))
	return a
}

// HasVariables asserts that the case instance has all given variables or any variable, if no names are given.
func (a *CaseInstanceAssert) HasVariables(names ...string) *CaseInstanceAssert {
	a.t.Helper()

	variables, err := a.q.QueryVariables(context.Background(), engine.VariableCriteria{CaseInstanceId: a.id})

	a.check(signature("HasVariables", names), a.hasVariables(variables, err, names))
	return a
}

func (a *CaseInstanceAssert) IsActive() *CaseInstanceAssert {
	return a.isState("IsActive", engine.InstanceActive)
}

func (a *CaseInstanceAssert) IsClosed() *CaseInstanceAssert {
	return a.isState("IsClosed", engine.InstanceClosed)
}

func (a *CaseInstanceAssert) IsCompleted() *CaseInstanceAssert {
	return a.isState("IsCompleted", engine.InstanceCompleted)
}

func (a *CaseInstanceAssert) IsFailed() *CaseInstanceAssert {
	return a.isState("IsFailed", engine.InstanceFailed)
}

func (a *CaseInstanceAssert) IsSuspended() *CaseInstanceAssert {
	return a.isState("IsSuspended", engine.InstanceSuspended)
}

func (a *CaseInstanceAssert) IsTerminated() *CaseInstanceAssert {
	return a.isState("IsTerminated", engine.InstanceTerminated)
}

func (a *CaseInstanceAssert) actual() (engine.CaseInstance, error) {
	results, err := a.q.QueryCaseInstances(context.Background(), engine.CaseInstanceCriteria{Id: a.id})
	if err != nil {
		return engine.CaseInstance{}, a.queryError(err)
	}
	if len(results) == 0 {
		return engine.CaseInstance{}, a.notFound()
	}
	return results[0], nil
}

func (a *CaseInstanceAssert) isState(predicate string, state engine.InstanceState) *CaseInstanceAssert {
	a.t.Helper()

	caseInstance, err := a.actual()
	if err == nil {
		err = a.expectState(state, caseInstance.State)
	}

	a.check(signature(predicate), err)
	return a
}

// planItems navigates to the case executions of a case instance or a stage.
type planItems struct {
	a *assertion

	caseInstanceId string // Set, when navigating from a case instance.
	parentId       string // Set, when navigating from a stage.
}

// CaseExecution navigates to the case execution, matching the given criteria.
func (p planItems) CaseExecution(criteria engine.CaseExecutionCriteria) *CaseExecutionAssert {
	p.a.t.Helper()
	return newCaseExecutionAssert(p.find(fmt.Sprintf("CaseExecution(%+v)", criteria), kindCaseExecution, criteria))
}

// CaseTask navigates to the case execution of the case task with the given activity ID. If activityId is empty, any case task matches.
func (p planItems) CaseTask(activityId string) *CaseTaskAssert {
	p.a.t.Helper()
	return p.CaseTaskWhere(engine.CaseExecutionCriteria{ActivityId: activityId})
}

func (p planItems) CaseTaskWhere(criteria engine.CaseExecutionCriteria) *CaseTaskAssert {
	p.a.t.Helper()
	criteria.ActivityType = engine.PlanItemCaseTask
	return newCaseTaskAssert(p.find(p.selector("CaseTask", criteria), kindCaseTask, criteria))
}

// HumanTask navigates to the case execution of the human task with the given activity ID. If activityId is empty, any human task matches.
func (p planItems) HumanTask(activityId string) *HumanTaskAssert {
	p.a.t.Helper()
	return p.HumanTaskWhere(engine.CaseExecutionCriteria{ActivityId: activityId})
}

func (p planItems) HumanTaskWhere(criteria engine.CaseExecutionCriteria) *HumanTaskAssert {
	p.a.t.Helper()
	criteria.ActivityType = engine.PlanItemHumanTask
	return newHumanTaskAssert(p.find(p.selector("HumanTask", criteria), kindHumanTask, criteria))
}

// Milestone navigates to the case execution of the milestone with the given activity ID. If activityId is empty, any milestone matches.
func (p planItems) Milestone(activityId string) *MilestoneAssert {
	p.a.t.Helper()
	return p.MilestoneWhere(engine.CaseExecutionCriteria{ActivityId: activityId})
}

func (p planItems) MilestoneWhere(criteria engine.CaseExecutionCriteria) *MilestoneAssert {
	p.a.t.Helper()
	criteria.ActivityType = engine.PlanItemMilestone
	return newMilestoneAssert(p.find(p.selector("Milestone", criteria), kindMilestone, criteria))
}

// ProcessTask navigates to the case execution of the process task with the given activity ID. If activityId is empty, any process task matches.
func (p planItems) ProcessTask(activityId string) *ProcessTaskAssert {
	p.a.t.Helper()
	return p.ProcessTaskWhere(engine.CaseExecutionCriteria{ActivityId: activityId})
}

func (p planItems) ProcessTaskWhere(criteria engine.CaseExecutionCriteria) *ProcessTaskAssert {
	p.a.t.Helper()
	criteria.ActivityType = engine.PlanItemProcessTask
	return newProcessTaskAssert(p.find(p.selector("ProcessTask", criteria), kindProcessTask, criteria))
}

// Stage navigates to the case execution of the stage with the given activity ID. If activityId is empty, any stage matches.
func (p planItems) Stage(activityId string) *StageAssert {
	p.a.t.Helper()
	return p.StageWhere(engine.CaseExecutionCriteria{ActivityId: activityId})
}

func (p planItems) StageWhere(criteria engine.CaseExecutionCriteria) *StageAssert {
	p.a.t.Helper()
	criteria.ActivityType = engine.PlanItemStage
	return newStageAssert(p.find(p.selector("Stage", criteria), kindStage, criteria))
}

// find queries the case executions within the scope and returns the assertion of the single match.
func (p planItems) find(predicate string, kind string, criteria engine.CaseExecutionCriteria) *assertion {
	p.a.t.Helper()

	if p.caseInstanceId != "" {
		criteria.CaseInstanceId = p.caseInstanceId
	}
	if p.parentId != "" {
		criteria.ParentId = p.parentId
	}

	results, err := p.a.q.QueryCaseExecutions(context.Background(), criteria)
	if err != nil {
		err = p.a.queryError(err)
	} else {
		err = p.a.single(kind, predicate, len(results))
	}

	p.a.check(predicate, err)
	return p.a.child(kind, results[0].Id)
}

// selector formats a navigation by activity ID as signature and any other navigation by its criteria.
func (p planItems) selector(name string, criteria engine.CaseExecutionCriteria) string {
	if criteria.Id == "" && criteria.ParentId == "" && criteria.CaseInstanceId == "" && len(criteria.States) == 0 {
		return signature(name, criteria.ActivityId)
	}
	criteria.ActivityType = 0
	return fmt.Sprintf("%sWhere(%+v)", name, criteria)
}
