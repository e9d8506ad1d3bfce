package test

import (
	"context"
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimTask(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		processDefinition := mustCreateProcessDefinition(t, e, "claim", engine.Activity{
			Id:           "userTask",
			Type:         engine.ActivityUserTask,
			DueDate:      engine.ISO8601Duration("P1D"),
			FollowUpDate: engine.ISO8601Duration("PT12H"),
		})

		t.Run(engineTypes[i]+"claims task", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)
			task := mustQueryTask(t, e, processInstance.Id)

			require.NotNil(task.DueAt)
			require.NotNil(task.FollowUpAt)
			assert.Equal(task.CreatedAt.AddDate(0, 0, 1), *task.DueAt)
			assert.Equal(task.CreatedAt.Add(12*time.Hour), *task.FollowUpAt)

			// when
			claimed, err := e.ClaimTask(context.Background(), engine.ClaimTaskCmd{
				Id:       task.Id,
				Assignee: "userA",
				WorkerId: testWorkerId,
			})

			// then
			require.Nil(err)
			assert.Equal("userA", claimed.Assignee)

			// when claimed by another user
			_, err = e.ClaimTask(context.Background(), engine.ClaimTaskCmd{
				Id:       task.Id,
				Assignee: "userB",
				WorkerId: testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})

		t.Run(engineTypes[i]+"returns error when task is completed", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)
			task := mustQueryTask(t, e, processInstance.Id)

			completed, err := e.CompleteTask(context.Background(), engine.CompleteTaskCmd{
				Id:       task.Id,
				WorkerId: "userA",
			})
			require.Nil(err)
			require.NotNil(completed.CompletedAt)
			assert.Equal("userA", completed.CompletedBy)

			// when
			_, err = e.ClaimTask(context.Background(), engine.ClaimTaskCmd{
				Id:       task.Id,
				Assignee: "userA",
				WorkerId: testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})

		t.Run(engineTypes[i]+"returns error when task not exists", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			_, err := e.CompleteTask(context.Background(), engine.CompleteTaskCmd{
				Id:       "not-existing",
				WorkerId: testWorkerId,
			})

			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)
		})
	}
}

func TestCompleteJob(t *testing.T) {
	engines, engineTypes := mustCreateEngines(t)
	for _, e := range engines {
		defer e.Shutdown()
	}

	for i, e := range engines {
		e := e
		processDefinition := mustCreateProcessDefinition(t, e, "job",
			engine.Activity{Id: "serviceTask", Type: engine.ActivityServiceTask, Retries: 1},
			engine.Activity{Id: "timerEvent", Type: engine.ActivityTimerEvent, Timer: &engine.Timer{TimeDuration: engine.ISO8601Duration("PT1H")}},
		)

		t.Run(engineTypes[i]+"decrements retries when job failed", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)
			job := mustQueryJob(t, e, processInstance.Id)

			assert.Equal(engine.JobExecute, job.Type)
			assert.Equal(1, job.Retries)

			// when
			failed, err := e.CompleteJob(context.Background(), engine.CompleteJobCmd{
				Id:       job.Id,
				Error:    "test-error",
				WorkerId: testWorkerId,
			})

			// then
			require.Nil(err)
			assert.Equal("test-error", failed.Error)
			assert.Equal(0, failed.Retries)
			assert.Nil(failed.CompletedAt)

			// when failed again
			_, err = e.CompleteJob(context.Background(), engine.CompleteJobCmd{
				Id:       job.Id,
				Error:    "test-error",
				WorkerId: testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})

		t.Run(engineTypes[i]+"creates timer job", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)

			_, err := e.CompleteJob(context.Background(), engine.CompleteJobCmd{
				Id:       mustQueryJob(t, e, processInstance.Id).Id,
				WorkerId: testWorkerId,
			})
			require.Nil(err)

			// when
			timerJob := mustQueryJob(t, e, processInstance.Id)

			// then
			assert.Equal("timerEvent", timerJob.ActivityId)
			assert.Equal(engine.JobTimer, timerJob.Type)
			assert.Equal(timerJob.CreatedAt.Add(time.Hour), timerJob.DueAt)

			// when completed before due date
			_, err = e.CompleteJob(context.Background(), engine.CompleteJobCmd{
				Id:       timerJob.Id,
				WorkerId: testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})

		t.Run(engineTypes[i]+"returns error when job is suspended", func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)

			// given
			processInstance := mustCreateProcessInstance(t, e, processDefinition)

			err := e.SuspendProcessInstance(context.Background(), engine.SuspendProcessInstanceCmd{Id: processInstance.Id})
			require.Nil(err)

			job := mustQueryJob(t, e, processInstance.Id)
			assert.True(job.IsSuspended)

			// when
			_, err = e.CompleteJob(context.Background(), engine.CompleteJobCmd{
				Id:       job.Id,
				WorkerId: testWorkerId,
			})

			// then
			require.IsType(engine.Error{}, err)
			assert.Equal(engine.ErrorConflict, err.(engine.Error).Type)
		})
	}
}
