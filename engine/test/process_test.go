package test

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProcessDefinition(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		t.Run(engineTypes[i]+"creates next version", func(t *testing.T) {
			assert := assert.New(t)

			// given
			v1 := mustCreateProcessDefinition(t, e, "versioned", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})

			// when
			v2 := mustCreateProcessDefinition(t, e, "versioned", engine.Activity{Id: "serviceTask", Type: engine.ActivityServiceTask})

			// then
			assert.Equal(1, v1.Version)
			assert.Equal(2, v2.Version)
			assert.NotEqual(v1.Id, v2.Id)
			if assert.Len(v2.Activities, 1) {
				assert.Equal("serviceTask", v2.Activities[0].Id)
				assert.Equal(engine.ActivityServiceTask, v2.Activities[0].Type)
			}
		})

		t.Run(engineTypes[i]+"returns error when command is invalid", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// when
			_, err := e.CreateProcessDefinition(context.Background(), engine.CreateProcessDefinitionCmd{
				Activities: []engine.Activity{{Id: "a b", Type: engine.ActivityUserTask}},
				Key:        "invalid",
				WorkerId:   testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)

			engineErr := err.(engine.Error)
			assert.Equal(engine.ErrorValidation, engineErr.Type)
			require.Len(engineErr.Causes, 1)
			assert.Equal("#/activities/0/id", engineErr.Causes[0].Pointer)
		})
	}
}

func TestSuspendProcessDefinition(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		t.Run(engineTypes[i]+"rejects new instances", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processDefinition := mustCreateProcessDefinition(t, e, "suspended", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})

			// when
			err := e.SuspendProcessDefinition(context.Background(), engine.SuspendProcessDefinitionCmd{Id: processDefinition.Id})
			require.Nil(err)

			_, err = e.CreateProcessInstance(context.Background(), engine.CreateProcessInstanceCmd{
				ProcessDefinitionKey: "suspended",
				WorkerId:             testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)

			// when
			err = e.ResumeProcessDefinition(context.Background(), engine.ResumeProcessDefinitionCmd{Id: processDefinition.Id})
			require.Nil(err)

			// then
			mustCreateProcessInstance(t, e, processDefinition)
		})
	}
}

func TestProcessInstance(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		processDefinition := mustCreateProcessDefinition(t, e, "sequence",
			engine.Activity{Id: "userTask", Name: "Review", Type: engine.ActivityUserTask, CandidateGroups: []string{"reviewers"}},
			engine.Activity{Id: "serviceTask", Type: engine.ActivityServiceTask},
		)

		t.Run(engineTypes[i]+"creates process instance", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// when
			processInstance, err := e.CreateProcessInstance(context.Background(), engine.CreateProcessInstanceCmd{
				BusinessKey:          "bk",
				ProcessDefinitionKey: "sequence",
				Variables: map[string]*engine.Data{
					"a": {Encoding: "text", Value: "valueA"},
				},
				WorkerId: testWorkerId,
			})

			// then
			require.Nil(err)

			assert.NotEmpty(processInstance.Id)
			assert.Equal(processDefinition.Id, processInstance.ProcessDefinitionId)
			assert.Equal("sequence", processInstance.ProcessDefinitionKey)
			assert.Equal("bk", processInstance.BusinessKey)
			assert.Equal("userTask", processInstance.ActivityId)
			assert.Equal(engine.InstanceActive, processInstance.State)
			assert.Nil(processInstance.EndedAt)

			task := mustQueryTask(t, e, processInstance.Id)
			assert.Equal("userTask", task.ActivityId)
			assert.Equal("Review", task.Name)
			assert.Equal([]string{"reviewers"}, task.CandidateGroups)

			variables, err := e.CreateQuery().QueryVariables(context.Background(), engine.VariableCriteria{ProcessInstanceId: processInstance.Id})
			require.Nil(err)
			require.Len(variables, 1)
			assert.Equal("valueA", variables[0].Value)
		})

		t.Run(engineTypes[i]+"executes activities in sequence", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)

			// when
			_, err := e.CompleteTask(context.Background(), engine.CompleteTaskCmd{
				Id:       mustQueryTask(t, e, processInstance.Id).Id,
				WorkerId: testWorkerId,
			})
			require.Nil(err)

			// then
			assert.Equal("serviceTask", mustQueryProcessInstance(t, e, processInstance.Id).ActivityId)

			// when
			_, err = e.CompleteJob(context.Background(), engine.CompleteJobCmd{
				Id:       mustQueryJob(t, e, processInstance.Id).Id,
				WorkerId: testWorkerId,
			})
			require.Nil(err)

			// then
			completed := mustQueryProcessInstance(t, e, processInstance.Id)
			assert.Equal(engine.InstanceCompleted, completed.State)
			assert.Empty(completed.ActivityId)
			assert.NotNil(completed.EndedAt)

			activityInstances, err := e.CreateQuery().QueryActivityInstances(context.Background(), engine.ActivityInstanceCriteria{
				ProcessInstanceId: processInstance.Id,
			})
			require.Nil(err)
			require.Len(activityInstances, 2)
			assert.Equal("userTask", activityInstances[0].ActivityId)
			assert.Equal(engine.InstanceCompleted, activityInstances[0].State)
			assert.Equal("serviceTask", activityInstances[1].ActivityId)
			assert.Equal(engine.InstanceCompleted, activityInstances[1].State)
		})

		t.Run(engineTypes[i]+"suspends and resumes", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)

			// when
			err := e.SuspendProcessInstance(context.Background(), engine.SuspendProcessInstanceCmd{Id: processInstance.Id})
			require.Nil(err)

			// then
			assert.Equal(engine.InstanceSuspended, mustQueryProcessInstance(t, e, processInstance.Id).State)

			_, err = e.CompleteTask(context.Background(), engine.CompleteTaskCmd{
				Id:       mustQueryTask(t, e, processInstance.Id).Id,
				WorkerId: testWorkerId,
			})
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)

			// when suspended again
			err = e.SuspendProcessInstance(context.Background(), engine.SuspendProcessInstanceCmd{Id: processInstance.Id})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)

			// when
			err = e.ResumeProcessInstance(context.Background(), engine.ResumeProcessInstanceCmd{Id: processInstance.Id})
			require.Nil(err)

			// then
			assert.Equal(engine.InstanceActive, mustQueryProcessInstance(t, e, processInstance.Id).State)
		})

		t.Run(engineTypes[i]+"terminates", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)

			// when
			err := e.TerminateProcessInstance(context.Background(), engine.TerminateProcessInstanceCmd{Id: processInstance.Id})
			require.Nil(err)

			// then
			terminated := mustQueryProcessInstance(t, e, processInstance.Id)
			assert.Equal(engine.InstanceTerminated, terminated.State)
			assert.NotNil(terminated.EndedAt)

			activityInstances, err := e.CreateQuery().QueryActivityInstances(context.Background(), engine.ActivityInstanceCriteria{
				ProcessInstanceId: processInstance.Id,
				States:            []engine.InstanceState{engine.InstanceTerminated},
			})
			require.Nil(err)
			assert.Len(activityInstances, 1)

			// when terminated again
			err = e.TerminateProcessInstance(context.Background(), engine.TerminateProcessInstanceCmd{Id: processInstance.Id})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})

		t.Run(engineTypes[i]+"returns error when process instance not exists", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			err := e.SuspendProcessInstance(context.Background(), engine.SuspendProcessInstanceCmd{Id: "not-existing"})

			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)
		})
	}
}

func TestCallActivity(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		mustCreateProcessDefinition(t, e, "called", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})

		caller := mustCreateProcessDefinition(t, e, "caller",
			engine.Activity{Id: "callActivity", Type: engine.ActivityCallActivity, CalledProcessDefinitionKey: "called"},
			engine.Activity{Id: "end", Type: engine.ActivityUserTask},
		)

		t.Run(engineTypes[i]+"continues when called process instance is completed", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, caller)

			children, err := e.CreateQuery().QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{ParentId: processInstance.Id})
			require.Nil(err)
			require.Len(children, 1)
			assert.Equal("called", children[0].ProcessDefinitionKey)

			// when
			_, err = e.CompleteTask(context.Background(), engine.CompleteTaskCmd{
				Id:       mustQueryTask(t, e, children[0].Id).Id,
				WorkerId: testWorkerId,
			})
			require.Nil(err)

			// then
			assert.Equal(engine.InstanceCompleted, mustQueryProcessInstance(t, e, children[0].Id).State)
			assert.Equal("end", mustQueryProcessInstance(t, e, processInstance.Id).ActivityId)
		})

		t.Run(engineTypes[i]+"terminates called process instance", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, caller)

			// when
			err := e.TerminateProcessInstance(context.Background(), engine.TerminateProcessInstanceCmd{Id: processInstance.Id})
			require.Nil(err)

			// then
			children, err := e.CreateQuery().QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{ParentId: processInstance.Id})
			require.Nil(err)
			require.Len(children, 1)
			assert.Equal(engine.InstanceTerminated, children[0].State)
		})
	}
}
