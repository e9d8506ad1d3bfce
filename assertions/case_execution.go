package assertions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

// caseExecutionAssert implements the assertions, shared by all case execution kinds.
// S is the concrete wrapper type, returned to allow chaining.
type caseExecutionAssert[S any] struct {
	*assertion
	self S
}

// Actual queries and returns the current state of the case execution.
func (a *caseExecutionAssert[S]) Actual() engine.CaseExecution {
	a.t.Helper()

	caseExecution, err := a.actual()
	if err != nil {
		fail(a.t, err, a.chain)
	}
	return caseExecution
}

func (a *caseExecutionAssert[S]) HasActivityId(activityId string) S {
	a.t.Helper()

	caseExecution, err := a.actual()
	if err == nil && caseExecution.ActivityId != activityId {
		err = a.mismatch(fmt.Sprintf("to have activity ID %q", activityId), strconv.Quote(caseExecution.ActivityId))
	}

	a.check(signature("HasActivityId", activityId), err)
	return a.self
}

func (a *caseExecutionAssert[S]) IsActive() S {
	return a.isState("IsActive", engine.InstanceActive)
}

func (a *caseExecutionAssert[S]) IsAvailable() S {
	return a.isState("IsAvailable", engine.InstanceAvailable)
}

func (a *caseExecutionAssert[S]) IsClosed() S {
	return a.isState("IsClosed", engine.InstanceClosed)
}

func (a *caseExecutionAssert[S]) IsCompleted() S {
	return a.isState("IsCompleted", engine.InstanceCompleted)
}

func (a *caseExecutionAssert[S]) IsDisabled() S {
	return a.isState("IsDisabled", engine.InstanceDisabled)
}

func (a *caseExecutionAssert[S]) IsEnabled() S {
	return a.isState("IsEnabled", engine.InstanceEnabled)
}

func (a *caseExecutionAssert[S]) IsFailed() S {
	return a.isState("IsFailed", engine.InstanceFailed)
}

// IsRequired asserts that the plan item of the case execution is required to complete its enclosing scope.
func (a *caseExecutionAssert[S]) IsRequired() S {
	a.t.Helper()

	caseExecution, err := a.actual()
	if err == nil && !caseExecution.IsRequired {
		err = a.mismatch("to be required", "optional")
	}

	a.check(signature("IsRequired"), err)
	return a.self
}

func (a *caseExecutionAssert[S]) IsSuspended() S {
	return a.isState("IsSuspended", engine.InstanceSuspended)
}

func (a *caseExecutionAssert[S]) IsTerminated() S {
	return a.isState("IsTerminated", engine.InstanceTerminated)
}

func (a *caseExecutionAssert[S]) actual() (engine.CaseExecution, error) {
	results, err := a.q.QueryCaseExecutions(context.Background(), engine.CaseExecutionCriteria{Id: a.id})
	if err != nil {
		return engine.CaseExecution{}, a.queryError(err)
	}
	if len(results) == 0 {
		return engine.CaseExecution{}, a.notFound()
	}
	return results[0], nil
}

func (a *caseExecutionAssert[S]) isState(predicate string, state engine.InstanceState) S {
	a.t.Helper()

	caseExecution, err := a.actual()
	if err == nil {
		err = a.expectState(state, caseExecution.State)
	}

	a.check(signature(predicate), err)
	return a.self
}

// CaseExecutionAssert provides assertions for a case execution of any kind.
type CaseExecutionAssert struct {
	caseExecutionAssert[*CaseExecutionAssert]
}

func newCaseExecutionAssert(a *assertion) *CaseExecutionAssert {
	w := &CaseExecutionAssert{}
	w.caseExecutionAssert = caseExecutionAssert[*CaseExecutionAssert]{a, w}
	return w
}

// CaseTaskAssert provides assertions for the case execution of a case task.
type CaseTaskAssert struct {
	caseExecutionAssert[*CaseTaskAssert]
}

func newCaseTaskAssert(a *assertion) *CaseTaskAssert {
	w := &CaseTaskAssert{}
	w.caseExecutionAssert = caseExecutionAssert[*CaseTaskAssert]{a, w}
	return w
}

// HumanTaskAssert provides assertions for the case execution of a human task.
type HumanTaskAssert struct {
	caseExecutionAssert[*HumanTaskAssert]
}

func newHumanTaskAssert(a *assertion) *HumanTaskAssert {
	w := &HumanTaskAssert{}
	w.caseExecutionAssert = caseExecutionAssert[*HumanTaskAssert]{a, w}
	return w
}

// MilestoneAssert provides assertions for the case execution of a milestone.
type MilestoneAssert struct {
	caseExecutionAssert[*MilestoneAssert]
}

func newMilestoneAssert(a *assertion) *MilestoneAssert {
	w := &MilestoneAssert{}
	w.caseExecutionAssert = caseExecutionAssert[*MilestoneAssert]{a, w}
	return w
}

// ProcessTaskAssert provides assertions for the case execution of a process task.
type ProcessTaskAssert struct {
	caseExecutionAssert[*ProcessTaskAssert]
}

func newProcessTaskAssert(a *assertion) *ProcessTaskAssert {
	w := &ProcessTaskAssert{}
	w.caseExecutionAssert = caseExecutionAssert[*ProcessTaskAssert]{a, w}
	return w
}

// StageAssert provides assertions for the case execution of a stage and navigation to the case executions of its children.
type StageAssert struct {
	caseExecutionAssert[*StageAssert]
	planItems
}

func newStageAssert(a *assertion) *StageAssert {
	w := &StageAssert{planItems: planItems{a: a, parentId: a.id}}
	w.caseExecutionAssert = caseExecutionAssert[*StageAssert]{a, w}
	return w
}
