package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type TaskEntity struct {
	Id string

	ProcessDefinitionId string
	ProcessInstanceId   string

	ActivityId      string
	Assignee        pgtype.Text
	CandidateGroups []string
	CandidateUsers  []string
	CompletedAt     pgtype.Timestamp
	CompletedBy     pgtype.Text
	CreatedAt       time.Time
	Description     pgtype.Text
	DueAt           pgtype.Timestamp
	FollowUpAt      pgtype.Timestamp
	Name            pgtype.Text
}

func (e TaskEntity) Task() engine.Task {
	return engine.Task{
		Id: e.Id,

		ProcessDefinitionId: e.ProcessDefinitionId,
		ProcessInstanceId:   e.ProcessInstanceId,

		ActivityId:      e.ActivityId,
		Assignee:        e.Assignee.String,
		CandidateGroups: e.CandidateGroups,
		CandidateUsers:  e.CandidateUsers,
		CompletedAt:     timeOrNil(e.CompletedAt),
		CompletedBy:     e.CompletedBy.String,
		CreatedAt:       e.CreatedAt,
		Description:     e.Description.String,
		DueAt:           timeOrNil(e.DueAt),
		FollowUpAt:      timeOrNil(e.FollowUpAt),
		Name:            e.Name.String,
	}
}

type TaskRepository interface {
	Insert(*TaskEntity) error
	Select(id string) (*TaskEntity, error)
	Update(*TaskEntity) error

	Query(engine.TaskCriteria, engine.QueryOptions) ([]engine.Task, error)
}

func ClaimTask(ctx Context, cmd engine.ClaimTaskCmd) (engine.Task, error) {
	const title = "failed to claim task"

	if err := validateCmd(title, cmd); err != nil {
		return engine.Task{}, err
	}

	task, err := selectOpenTask(ctx, title, cmd.Id)
	if err != nil {
		return engine.Task{}, err
	}

	if task.Assignee.Valid && task.Assignee.String != cmd.Assignee {
		return engine.Task{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("task %s is already assigned to %s", task.Id, task.Assignee.String),
		}
	}

	task.Assignee = text(cmd.Assignee)
	if err := ctx.Tasks().Update(task); err != nil {
		return engine.Task{}, err
	}

	return task.Task(), nil
}

func CompleteTask(ctx Context, cmd engine.CompleteTaskCmd) (engine.Task, error) {
	const title = "failed to complete task"

	if err := validateCmd(title, cmd); err != nil {
		return engine.Task{}, err
	}

	task, err := selectOpenTask(ctx, title, cmd.Id)
	if err != nil {
		return engine.Task{}, err
	}

	processInstance, err := selectActiveProcessInstance(ctx, title, task.ProcessInstanceId)
	if err != nil {
		return engine.Task{}, err
	}

	if err := setVariables(ctx, variableScope{processInstanceId: processInstance.Id}, cmd.Variables, cmd.WorkerId); err != nil {
		return engine.Task{}, err
	}

	task.CompletedAt = timestamp(ctx.Time())
	task.CompletedBy = text(cmd.WorkerId)
	if err := ctx.Tasks().Update(task); err != nil {
		return engine.Task{}, err
	}

	if err := leaveActivity(ctx, processInstance, task.ActivityId); err != nil {
		return engine.Task{}, err
	}

	return task.Task(), nil
}

func selectOpenTask(ctx Context, title string, id string) (*TaskEntity, error) {
	task, err := ctx.Tasks().Select(id)
	if err == pgx.ErrNoRows {
		return nil, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("task %s could not be found", id),
		}
	}
	if err != nil {
		return nil, err
	}

	if task.CompletedAt.Valid {
		return nil, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("task %s is completed", task.Id),
		}
	}

	return task, nil
}

// selectActiveProcessInstance selects the process instance, a task or job belongs to.
// Suspended or ended process instances cannot be continued.
func selectActiveProcessInstance(ctx Context, title string, id string) (*ProcessInstanceEntity, error) {
	processInstance, err := ctx.ProcessInstances().Select(id)
	if err != nil {
		return nil, fmt.Errorf("failed to select process instance %s: %v", id, err)
	}

	if processInstance.State != engine.InstanceActive {
		return nil, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process instance %s is not active, but %s", processInstance.Id, processInstance.State),
		}
	}

	return processInstance, nil
}
