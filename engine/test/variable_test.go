package test

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVariables(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		processDefinition := mustCreateProcessDefinition(t, e, "variables", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})

		t.Run(engineTypes[i]+"sets, updates and deletes process variables", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)

			// when
			err := e.SetVariables(context.Background(), engine.SetVariablesCmd{
				ProcessInstanceId: processInstance.Id,
				Variables: map[string]*engine.Data{
					"a": {Encoding: "text", Value: "valueA"},
					"b": {Encoding: "json", Value: `{"b":true}`},
				},
				WorkerId: testWorkerId,
			})
			require.Nil(err)

			err = e.SetVariables(context.Background(), engine.SetVariablesCmd{
				ProcessInstanceId: processInstance.Id,
				Variables: map[string]*engine.Data{
					"a": nil,
					"b": {Encoding: "text", Value: "valueB"},
				},
				WorkerId: "updater",
			})
			require.Nil(err)

			// then
			variables, err := e.CreateQuery().QueryVariables(context.Background(), engine.VariableCriteria{ProcessInstanceId: processInstance.Id})
			require.Nil(err)
			require.Len(variables, 1)

			assert.Equal(processInstance.Id, variables[0].ProcessInstanceId)
			assert.Empty(variables[0].CaseInstanceId)
			assert.Equal("b", variables[0].Name)
			assert.Equal("text", variables[0].Encoding)
			assert.Equal("valueB", variables[0].Value)
			assert.Equal(testWorkerId, variables[0].CreatedBy)
			assert.Equal("updater", variables[0].UpdatedBy)
		})

		t.Run(engineTypes[i]+"sets case variables", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			caseInstance := mustCreateCaseInstance(t, e, "variables", engine.PlanItem{Id: "humanTask", Type: engine.PlanItemHumanTask})

			// when
			err := e.SetVariables(context.Background(), engine.SetVariablesCmd{
				CaseInstanceId: caseInstance.Id,
				Variables: map[string]*engine.Data{
					"c": {Encoding: "text", Value: "valueC"},
				},
				WorkerId: testWorkerId,
			})
			require.Nil(err)

			// then
			variables, err := e.CreateQuery().QueryVariables(context.Background(), engine.VariableCriteria{
				CaseInstanceId: caseInstance.Id,
				Names:          []string{"c", "d"},
			})
			require.Nil(err)
			require.Len(variables, 1)
			assert.Equal(caseInstance.Id, variables[0].CaseInstanceId)
			assert.Empty(variables[0].ProcessInstanceId)
		})

		t.Run(engineTypes[i]+"returns error when process instance is ended", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)

			err := e.TerminateProcessInstance(context.Background(), engine.TerminateProcessInstanceCmd{Id: processInstance.Id})
			require.Nil(err)

			// when
			err = e.SetVariables(context.Background(), engine.SetVariablesCmd{
				ProcessInstanceId: processInstance.Id,
				Variables:         map[string]*engine.Data{"a": {Encoding: "text", Value: "valueA"}},
				WorkerId:          testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})

		t.Run(engineTypes[i]+"returns error when both scopes are given", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			err := e.SetVariables(context.Background(), engine.SetVariablesCmd{
				CaseInstanceId:    "a",
				ProcessInstanceId: "b",
				Variables:         map[string]*engine.Data{"a": nil},
				WorkerId:          testWorkerId,
			})

			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorValidation, err.(engine.Error).Type)
		})
	}
}
