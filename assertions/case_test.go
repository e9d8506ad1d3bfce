package assertions

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseDefinitionAssert(t *testing.T) {
	assert := assert.New(t)

	// given
	e := mustCreateEngine(t)

	mustCreateCaseDefinition(t, e, "claim", engine.PlanItem{Id: "assess", Type: engine.PlanItemHumanTask})
	caseDefinition := mustCreateCaseDefinition(t, e, "claim", engine.PlanItem{Id: "assess", Type: engine.PlanItemHumanTask})
	mustCreateCaseInstance(t, e, "claim")

	rt := newRecordingT(t)
	Init(rt, e)

	// when
	rt.run(func() {
		CaseDefinition(rt, caseDefinition).HasKey("claim").HasVersion(2).HasActiveInstances(1)
	})

	// then
	assert.False(rt.hasFailed())

	// when
	rt.run(func() {
		CaseDefinition(rt, caseDefinition).HasVersion(1)
	})

	// then
	assert.True(rt.hasFailed())
	assert.Contains(rt.message(), "to have version 1, but was 2")
}

func TestCaseInstanceAssert(t *testing.T) {
	e := mustCreateEngine(t)

	mustCreateCaseDefinition(t, e, "claim",
		engine.PlanItem{Id: "assess", Type: engine.PlanItemHumanTask, IsRequired: true},
		engine.PlanItem{Id: "review", Type: engine.PlanItemHumanTask, IsManualActivation: true},
		engine.PlanItem{Id: "approved", Type: engine.PlanItemMilestone},
		engine.PlanItem{Id: "stage", Type: engine.PlanItemStage, IsManualActivation: true},
		engine.PlanItem{Id: "investigate", Type: engine.PlanItemProcessTask, ParentId: "stage"},
		engine.PlanItem{Id: "appeal", Type: engine.PlanItemCaseTask, ParentId: "stage"},
	)

	t.Run("passes", func(t *testing.T) {
		assert := assert.New(t)

		// given
		caseInstance := mustCreateCaseInstance(t, e, "claim")

		err := e.SetVariables(context.Background(), engine.SetVariablesCmd{
			CaseInstanceId: caseInstance.Id,
			Variables:      map[string]*engine.Data{"amount": {Encoding: "json", Value: "100"}},
			WorkerId:       testWorkerId,
		})
		assert.Nil(err)

		rt := newRecordingT(t)
		Init(rt, e)

		// when
		rt.run(func() {
			c := CaseInstance(rt, caseInstance).
				IsActive().
				HasBusinessKey("claim-7").
				HasCaseDefinitionKey("claim").
				HasVariables("amount")

			c.HumanTask("assess").IsActive().IsRequired().HasActivityId("assess")
			c.HumanTask("review").IsEnabled()
			c.Milestone("").IsAvailable()
			c.Stage("stage").IsEnabled().ProcessTask("investigate").IsAvailable()
		})

		// then
		assert.False(rt.hasFailed())
		assert.Len(LastAssertions(rt), 16)
	})

	t.Run("navigates to children of stage", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)

		// given
		caseInstance := mustCreateCaseInstance(t, e, "claim")
		stage := mustQueryCaseExecution(t, e, caseInstance.Id, "stage")

		mustTransitionCaseExecution(t, e, stage.Id, engine.TransitionStart)

		rt := newRecordingT(t)
		Init(rt, e)

		// when
		var investigate engine.CaseExecution
		rt.run(func() {
			s := Stage(rt, stage).IsActive()

			investigate = s.ProcessTask("").IsActive().Actual()
			s.CaseTask("appeal").IsActive()
			s.CaseExecution(engine.CaseExecutionCriteria{States: []engine.InstanceState{engine.InstanceActive}})
		})

		// then
		assert.True(rt.hasFailed())
		assert.Equal(stage.Id, investigate.ParentId)

		entries := LastAssertions(rt)
		require.Len(entries, 6)
		assert.False(entries[5].Passed)
		assert.Contains(rt.message(), "to have exactly one case execution matching CaseExecution(")
		assert.Contains(rt.message(), "but found 2")
	})

	t.Run("passes when case execution is ended", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)

		// given
		caseInstance := mustCreateCaseInstance(t, e, "claim")

		review := mustQueryCaseExecution(t, e, caseInstance.Id, "review")
		approved := mustQueryCaseExecution(t, e, caseInstance.Id, "approved")

		mustTransitionCaseExecution(t, e, review.Id, engine.TransitionDisable)
		mustTransitionCaseExecution(t, e, approved.Id, engine.TransitionOccur)

		rt := newRecordingT(t)
		Init(rt, e)

		rt.run(func() {
			HumanTask(rt, review).IsDisabled()
			Milestone(rt, approved).IsCompleted()
		})
		require.False(rt.hasFailed())

		_, err := e.TransitionCaseInstance(context.Background(), engine.TransitionCaseInstanceCmd{
			Id:         caseInstance.Id,
			Transition: engine.TransitionTerminate,
		})
		require.Nil(err)

		assess := mustQueryCaseExecution(t, e, caseInstance.Id, "assess")

		// when
		rt.run(func() {
			CaseInstance(rt, caseInstance).IsTerminated().HasNoVariables()
			HumanTask(rt, review).IsTerminated()
			Milestone(rt, approved).IsCompleted()
			CaseExecution(rt, assess).IsTerminated()
		})

		// then
		assert.False(rt.hasFailed())
	})

	t.Run("fails with expected and actual state", func(t *testing.T) {
		assert := assert.New(t)

		// given
		caseInstance := mustCreateCaseInstance(t, e, "claim")
		review := mustQueryCaseExecution(t, e, caseInstance.Id, "review")

		rt := newRecordingT(t)
		Init(rt, e)

		// when
		rt.run(func() {
			CaseInstance(rt, caseInstance).IsActive().HumanTask("review").IsActive()
		})

		// then
		assert.True(rt.hasFailed())

		assertGolden(t, "case_execution_failure", rt.message(),
			caseInstance.Id, "<caseInstanceId>",
			review.Id, "<reviewId>",
		)
	})

	t.Run("fails when navigation is ambiguous", func(t *testing.T) {
		assert := assert.New(t)

		// given
		caseInstance := mustCreateCaseInstance(t, e, "claim")

		rt := newRecordingT(t)
		Init(rt, e)

		// when
		rt.run(func() {
			CaseInstance(rt, caseInstance).HumanTask("")
		})

		// then
		assert.True(rt.hasFailed())
		assert.Contains(rt.message(), `to have exactly one human task matching HumanTask(""), but found 2`)
	})

	t.Run("fails when case execution is of another kind", func(t *testing.T) {
		assert := assert.New(t)

		// given
		caseInstance := mustCreateCaseInstance(t, e, "claim")
		approved := mustQueryCaseExecution(t, e, caseInstance.Id, "approved")

		rt := newRecordingT(t)
		Init(rt, e)

		// when
		rt.run(func() {
			HumanTask(rt, approved).IsAvailable()
		})

		// then
		assert.True(rt.hasFailed())
		assert.Contains(rt.message(), "human task "+approved.Id+": HasActivityType(HUMAN_TASK) failed")
		assert.Contains(rt.message(), "to be a HUMAN_TASK, but was MILESTONE")
	})
}
