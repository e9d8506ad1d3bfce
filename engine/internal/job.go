package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type JobEntity struct {
	Id string

	ProcessDefinitionId string
	ProcessInstanceId   string

	ActivityId  string
	CompletedAt pgtype.Timestamp
	CreatedAt   time.Time
	DueAt       time.Time
	Error       pgtype.Text
	IsSuspended bool
	Retries     int
	Type        engine.JobType
}

func (e JobEntity) Job() engine.Job {
	return engine.Job{
		Id: e.Id,

		ProcessDefinitionId: e.ProcessDefinitionId,
		ProcessInstanceId:   e.ProcessInstanceId,

		ActivityId:  e.ActivityId,
		CompletedAt: timeOrNil(e.CompletedAt),
		CreatedAt:   e.CreatedAt,
		DueAt:       e.DueAt,
		Error:       e.Error.String,
		IsSuspended: e.IsSuspended,
		Retries:     e.Retries,
		Type:        e.Type,
	}
}

type JobRepository interface {
	Insert(*JobEntity) error
	Select(id string) (*JobEntity, error)
	SelectOpen(processInstanceId string) ([]*JobEntity, error)
	Update(*JobEntity) error

	Query(engine.JobCriteria, engine.QueryOptions) ([]engine.Job, error)
}

func CompleteJob(ctx Context, cmd engine.CompleteJobCmd) (engine.Job, error) {
	const title = "failed to complete job"

	if err := validateCmd(title, cmd); err != nil {
		return engine.Job{}, err
	}

	job, err := ctx.Jobs().Select(cmd.Id)
	if err == pgx.ErrNoRows {
		return engine.Job{}, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("job %s could not be found", cmd.Id),
		}
	}
	if err != nil {
		return engine.Job{}, err
	}

	if job.CompletedAt.Valid {
		return engine.Job{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("job %s is completed", job.Id),
		}
	}
	if job.IsSuspended {
		return engine.Job{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("job %s is suspended", job.Id),
		}
	}
	if job.DueAt.After(ctx.Time()) {
		return engine.Job{}, engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("job %s is due at %s", job.Id, job.DueAt.Format(time.RFC3339)),
		}
	}

	processInstance, err := selectActiveProcessInstance(ctx, title, job.ProcessInstanceId)
	if err != nil {
		return engine.Job{}, err
	}

	if cmd.Error != "" {
		if job.Retries == 0 {
			return engine.Job{}, engine.Error{
				Type:   engine.ErrorConflict,
				Title:  title,
				Detail: fmt.Sprintf("job %s has no retries left", job.Id),
			}
		}

		job.Error = text(cmd.Error)
		job.Retries--

		if err := ctx.Jobs().Update(job); err != nil {
			return engine.Job{}, err
		}
		return job.Job(), nil
	}

	if err := setVariables(ctx, variableScope{processInstanceId: processInstance.Id}, cmd.Variables, cmd.WorkerId); err != nil {
		return engine.Job{}, err
	}

	job.CompletedAt = timestamp(ctx.Time())
	if err := ctx.Jobs().Update(job); err != nil {
		return engine.Job{}, err
	}

	if err := leaveActivity(ctx, processInstance, job.ActivityId); err != nil {
		return engine.Job{}, err
	}

	return job.Job(), nil
}

func setJobsSuspended(ctx Context, processInstanceId string, suspended bool) error {
	jobs, err := ctx.Jobs().SelectOpen(processInstanceId)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		job.IsSuspended = suspended
		if err := ctx.Jobs().Update(job); err != nil {
			return err
		}
	}

	return nil
}
