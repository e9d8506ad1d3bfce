package mem

import (
	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type jobRepository struct {
	entities []internal.JobEntity
}

func (r *jobRepository) Insert(entity *internal.JobEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *jobRepository) Select(id string) (*internal.JobEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *jobRepository) SelectOpen(processInstanceId string) ([]*internal.JobEntity, error) {
	var results []*internal.JobEntity
	for _, e := range r.entities {
		e := e
		if e.ProcessInstanceId == processInstanceId && !e.CompletedAt.Valid {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r *jobRepository) Update(entity *internal.JobEntity) error {
	for i, e := range r.entities {
		if e.Id == entity.Id {
			r.entities[i] = *entity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *jobRepository) Query(c engine.JobCriteria, o engine.QueryOptions) ([]engine.Job, error) {
	return paginate(r.entities, o, func(e internal.JobEntity) bool {
		if c.Id != "" && c.Id != e.Id {
			return false
		}
		if c.ProcessInstanceId != "" && c.ProcessInstanceId != e.ProcessInstanceId {
			return false
		}
		if c.ActivityId != "" && c.ActivityId != e.ActivityId {
			return false
		}
		return !c.ExcludeCompleted || !e.CompletedAt.Valid
	}, internal.JobEntity.Job), nil
}
