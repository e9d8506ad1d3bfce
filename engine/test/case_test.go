package test

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCaseDefinition(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		t.Run(engineTypes[i]+"returns error when parent is not a stage", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// when
			_, err := e.CreateCaseDefinition(context.Background(), engine.CreateCaseDefinitionCmd{
				Key: "invalid",
				PlanItems: []engine.PlanItem{
					{Id: "humanTask", Type: engine.PlanItemHumanTask},
					{Id: "milestone", Type: engine.PlanItemMilestone, ParentId: "humanTask"},
				},
				WorkerId: testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)

			engineErr := err.(engine.Error)
			assert.Equal(engine.ErrorValidation, engineErr.Type)
			require.Len(engineErr.Causes, 1)
			assert.Equal("#/planItems/1/parentId", engineErr.Causes[0].Pointer)
		})
	}
}

func TestCaseInstance(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	planItems := []engine.PlanItem{
		{Id: "assess", Type: engine.PlanItemHumanTask, IsRequired: true},
		{Id: "review", Type: engine.PlanItemHumanTask, IsManualActivation: true},
		{Id: "approved", Type: engine.PlanItemMilestone},
		{Id: "stage", Type: engine.PlanItemStage, IsManualActivation: true},
		{Id: "investigate", Type: engine.PlanItemProcessTask, ParentId: "stage"},
	}

	for i, e := range engines {
		e := e
		t.Run(engineTypes[i]+"creates case executions", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// when
			caseInstance := mustCreateCaseInstance(t, e, "claim", planItems...)

			// then
			assert.Equal(engine.InstanceActive, caseInstance.State)

			caseExecutions, err := e.CreateQuery().QueryCaseExecutions(context.Background(), engine.CaseExecutionCriteria{
				CaseInstanceId: caseInstance.Id,
			})
			require.Nil(err)
			require.Len(caseExecutions, 5)

			states := make(map[string]engine.InstanceState, len(caseExecutions))
			for _, caseExecution := range caseExecutions {
				states[caseExecution.ActivityId] = caseExecution.State
			}

			assert.Equal(map[string]engine.InstanceState{
				"assess":      engine.InstanceActive,
				"review":      engine.InstanceEnabled,
				"approved":    engine.InstanceAvailable,
				"stage":       engine.InstanceEnabled,
				"investigate": engine.InstanceAvailable,
			}, states)

			assess := mustQueryCaseExecution(t, e, caseInstance.Id, "assess")
			assert.True(assess.IsRequired)
			assert.Equal(engine.PlanItemHumanTask, assess.ActivityType)
		})

		t.Run(engineTypes[i]+"starting a stage activates its children", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			caseInstance := mustCreateCaseInstance(t, e, "claim", planItems...)
			stage := mustQueryCaseExecution(t, e, caseInstance.Id, "stage")

			// when
			started, err := e.TransitionCaseExecution(context.Background(), engine.TransitionCaseExecutionCmd{
				Id:         stage.Id,
				Transition: engine.TransitionStart,
			})

			// then
			require.Nil(err)
			assert.Equal(engine.InstanceActive, started.State)
			assert.Equal(engine.InstanceEnabled, started.PreviousState)

			investigate := mustQueryCaseExecution(t, e, caseInstance.Id, "investigate")
			assert.Equal(engine.InstanceActive, investigate.State)
			assert.Equal(stage.Id, investigate.ParentId)

			// when terminated
			_, err = e.TransitionCaseExecution(context.Background(), engine.TransitionCaseExecutionCmd{
				Id:         stage.Id,
				Transition: engine.TransitionTerminate,
			})
			require.Nil(err)

			// then
			assert.Equal(engine.InstanceTerminated, mustQueryCaseExecution(t, e, caseInstance.Id, "investigate").State)
		})

		t.Run(engineTypes[i]+"performs case execution transitions", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			caseInstance := mustCreateCaseInstance(t, e, "claim", planItems...)

			review := mustQueryCaseExecution(t, e, caseInstance.Id, "review")
			approved := mustQueryCaseExecution(t, e, caseInstance.Id, "approved")

			transition := func(id string, transition engine.CaseTransition) (engine.CaseExecution, error) {
				return e.TransitionCaseExecution(context.Background(), engine.TransitionCaseExecutionCmd{Id: id, Transition: transition})
			}

			// when
			caseExecution, err := transition(review.Id, engine.TransitionDisable)
			require.Nil(err)
			assert.Equal(engine.InstanceDisabled, caseExecution.State)

			caseExecution, err = transition(review.Id, engine.TransitionReenable)
			require.Nil(err)
			assert.Equal(engine.InstanceEnabled, caseExecution.State)

			caseExecution, err = transition(review.Id, engine.TransitionSuspend)
			require.Nil(err)
			assert.Equal(engine.InstanceSuspended, caseExecution.State)

			caseExecution, err = transition(review.Id, engine.TransitionResume)
			require.Nil(err)
			assert.Equal(engine.InstanceEnabled, caseExecution.State)

			caseExecution, err = transition(approved.Id, engine.TransitionOccur)
			require.Nil(err)
			assert.Equal(engine.InstanceCompleted, caseExecution.State)
			assert.NotNil(caseExecution.EndedAt)

			// when invalid
			_, err = transition(review.Id, engine.TransitionComplete)

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)

			_, err = transition(review.Id, engine.TransitionOccur)
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})

		t.Run(engineTypes[i]+"performs case instance transitions", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			caseInstance := mustCreateCaseInstance(t, e, "claim", planItems...)

			transition := func(transition engine.CaseTransition) (engine.CaseInstance, error) {
				return e.TransitionCaseInstance(context.Background(), engine.TransitionCaseInstanceCmd{Id: caseInstance.Id, Transition: transition})
			}

			// when completed while a case execution is active
			_, err := transition(engine.TransitionComplete)

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)

			// when
			suspended, err := transition(engine.TransitionSuspend)
			require.Nil(err)
			assert.Equal(engine.InstanceSuspended, suspended.State)

			_, err = e.TransitionCaseExecution(context.Background(), engine.TransitionCaseExecutionCmd{
				Id:         mustQueryCaseExecution(t, e, caseInstance.Id, "assess").Id,
				Transition: engine.TransitionComplete,
			})
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)

			resumed, err := transition(engine.TransitionResume)
			require.Nil(err)
			assert.Equal(engine.InstanceActive, resumed.State)

			terminated, err := transition(engine.TransitionTerminate)
			require.Nil(err)
			assert.Equal(engine.InstanceTerminated, terminated.State)
			assert.NotNil(terminated.EndedAt)

			assert.Equal(engine.InstanceTerminated, mustQueryCaseExecution(t, e, caseInstance.Id, "assess").State)

			closed, err := transition(engine.TransitionClose)
			require.Nil(err)
			assert.Equal(engine.InstanceClosed, closed.State)
			assert.Equal(engine.InstanceTerminated, closed.PreviousState)
		})

		t.Run(engineTypes[i]+"returns error when case definition not exists", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			_, err := e.CreateCaseInstance(context.Background(), engine.CreateCaseInstanceCmd{
				CaseDefinitionKey: "not-existing",
				WorkerId:          testWorkerId,
			})

			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)
		})
	}
}
