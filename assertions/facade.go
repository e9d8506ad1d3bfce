package assertions

import "github.com/gclaussn/go-bpmn-assert/engine"

// CaseDefinition starts an assertion statement for a case definition.
func CaseDefinition(t T, caseDefinition engine.CaseDefinition) *CaseDefinitionAssert {
	t.Helper()
	return &CaseDefinitionAssert{start(t, kindCaseDefinition, caseDefinition.Id)}
}

// CaseExecution starts an assertion statement for a case execution of any kind.
func CaseExecution(t T, caseExecution engine.CaseExecution) *CaseExecutionAssert {
	t.Helper()
	return newCaseExecutionAssert(start(t, kindCaseExecution, caseExecution.Id))
}

// CaseInstance starts an assertion statement for a case instance.
func CaseInstance(t T, caseInstance engine.CaseInstance) *CaseInstanceAssert {
	t.Helper()
	return newCaseInstanceAssert(start(t, kindCaseInstance, caseInstance.Id))
}

// CaseTask starts an assertion statement for the case execution of a case task.
func CaseTask(t T, caseExecution engine.CaseExecution) *CaseTaskAssert {
	t.Helper()
	return newCaseTaskAssert(startCaseExecution(t, kindCaseTask, caseExecution, engine.PlanItemCaseTask))
}

// HumanTask starts an assertion statement for the case execution of a human task.
func HumanTask(t T, caseExecution engine.CaseExecution) *HumanTaskAssert {
	t.Helper()
	return newHumanTaskAssert(startCaseExecution(t, kindHumanTask, caseExecution, engine.PlanItemHumanTask))
}

// Job starts an assertion statement for a job.
func Job(t T, job engine.Job) *JobAssert {
	t.Helper()
	return &JobAssert{start(t, kindJob, job.Id)}
}

// Milestone starts an assertion statement for the case execution of a milestone.
func Milestone(t T, caseExecution engine.CaseExecution) *MilestoneAssert {
	t.Helper()
	return newMilestoneAssert(startCaseExecution(t, kindMilestone, caseExecution, engine.PlanItemMilestone))
}

// ProcessDefinition starts an assertion statement for a process definition.
func ProcessDefinition(t T, processDefinition engine.ProcessDefinition) *ProcessDefinitionAssert {
	t.Helper()
	return &ProcessDefinitionAssert{start(t, kindProcessDefinition, processDefinition.Id)}
}

// ProcessInstance starts an assertion statement for a process instance.
func ProcessInstance(t T, processInstance engine.ProcessInstance) *ProcessInstanceAssert {
	t.Helper()
	return &ProcessInstanceAssert{start(t, kindProcessInstance, processInstance.Id)}
}

// ProcessTask starts an assertion statement for the case execution of a process task.
func ProcessTask(t T, caseExecution engine.CaseExecution) *ProcessTaskAssert {
	t.Helper()
	return newProcessTaskAssert(startCaseExecution(t, kindProcessTask, caseExecution, engine.PlanItemProcessTask))
}

// Stage starts an assertion statement for the case execution of a stage.
func Stage(t T, caseExecution engine.CaseExecution) *StageAssert {
	t.Helper()
	return newStageAssert(startCaseExecution(t, kindStage, caseExecution, engine.PlanItemStage))
}

// Task starts an assertion statement for a task.
func Task(t T, task engine.Task) *TaskAssert {
	t.Helper()
	return &TaskAssert{start(t, kindTask, task.Id)}
}

// startCaseExecution starts an assertion statement and fails, if the case execution is not of the expected type.
func startCaseExecution(t T, kind string, caseExecution engine.CaseExecution, planItemType engine.PlanItemType) *assertion {
	t.Helper()

	a := start(t, kind, caseExecution.Id)
	if caseExecution.ActivityType != planItemType {
		a.check(signature("HasActivityType", planItemType), a.mismatch("to be a "+planItemType.String(), caseExecution.ActivityType.String()))
	}
	return a
}
