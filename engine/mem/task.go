package mem

import (
	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type taskRepository struct {
	entities []internal.TaskEntity
}

func (r *taskRepository) Insert(entity *internal.TaskEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *taskRepository) Select(id string) (*internal.TaskEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *taskRepository) Update(entity *internal.TaskEntity) error {
	for i, e := range r.entities {
		if e.Id == entity.Id {
			r.entities[i] = *entity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *taskRepository) Query(c engine.TaskCriteria, o engine.QueryOptions) ([]engine.Task, error) {
	return paginate(r.entities, o, func(e internal.TaskEntity) bool {
		if c.Id != "" && c.Id != e.Id {
			return false
		}
		if c.ProcessInstanceId != "" && c.ProcessInstanceId != e.ProcessInstanceId {
			return false
		}
		if c.ActivityId != "" && c.ActivityId != e.ActivityId {
			return false
		}
		if c.Assignee != "" && c.Assignee != e.Assignee.String {
			return false
		}
		return !c.ExcludeCompleted || !e.CompletedAt.Valid
	}, internal.TaskEntity.Task), nil
}
