package mem

import (
	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type processDefinitionRepository struct {
	entities []internal.ProcessDefinitionEntity
}

func (r *processDefinitionRepository) Insert(entity *internal.ProcessDefinitionEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *processDefinitionRepository) Select(id string) (*internal.ProcessDefinitionEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *processDefinitionRepository) SelectByKey(key string, version int) (*internal.ProcessDefinitionEntity, error) {
	var result *internal.ProcessDefinitionEntity
	for _, e := range r.entities {
		e := e
		if e.Key != key {
			continue
		}
		if version != 0 && e.Version == version {
			return &e, nil
		}
		if version == 0 && (result == nil || e.Version > result.Version) {
			result = &e
		}
	}

	if result == nil {
		return nil, pgx.ErrNoRows
	}
	return result, nil
}

func (r *processDefinitionRepository) Update(entity *internal.ProcessDefinitionEntity) error {
	for i, e := range r.entities {
		if e.Id == entity.Id {
			r.entities[i] = *entity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *processDefinitionRepository) Query(c engine.ProcessDefinitionCriteria, o engine.QueryOptions) ([]engine.ProcessDefinition, error) {
	return paginate(r.entities, o, func(e internal.ProcessDefinitionEntity) bool {
		if c.Id != "" && c.Id != e.Id {
			return false
		}
		if c.Key != "" && c.Key != e.Key {
			return false
		}
		return c.Version == 0 || c.Version == e.Version
	}, internal.ProcessDefinitionEntity.ProcessDefinition), nil
}

type processInstanceRepository struct {
	entities []internal.ProcessInstanceEntity
}

func (r *processInstanceRepository) Insert(entity *internal.ProcessInstanceEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *processInstanceRepository) Select(id string) (*internal.ProcessInstanceEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *processInstanceRepository) SelectByParent(parentId string) ([]*internal.ProcessInstanceEntity, error) {
	var results []*internal.ProcessInstanceEntity
	for _, e := range r.entities {
		e := e
		if e.ParentId.String == parentId {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r *processInstanceRepository) Update(entity *internal.ProcessInstanceEntity) error {
	for i, e := range r.entities {
		if e.Id == entity.Id {
			r.entities[i] = *entity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *processInstanceRepository) Query(c engine.ProcessInstanceCriteria, o engine.QueryOptions) ([]engine.ProcessInstance, error) {
	return paginate(r.entities, o, func(e internal.ProcessInstanceEntity) bool {
		if c.Id != "" && c.Id != e.Id {
			return false
		}
		if c.ParentId != "" && c.ParentId != e.ParentId.String {
			return false
		}
		if c.ProcessDefinitionId != "" && c.ProcessDefinitionId != e.ProcessDefinitionId {
			return false
		}
		if c.ProcessDefinitionKey != "" && c.ProcessDefinitionKey != e.ProcessDefinitionKey {
			return false
		}
		if c.BusinessKey != "" && c.BusinessKey != e.BusinessKey.String {
			return false
		}
		return matchStates(c.States, e.State)
	}, internal.ProcessInstanceEntity.ProcessInstance), nil
}

type activityInstanceRepository struct {
	entities []internal.ActivityInstanceEntity
}

func (r *activityInstanceRepository) Insert(entity *internal.ActivityInstanceEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *activityInstanceRepository) SelectActive(processInstanceId string) ([]*internal.ActivityInstanceEntity, error) {
	var results []*internal.ActivityInstanceEntity
	for _, e := range r.entities {
		e := e
		if e.ProcessInstanceId == processInstanceId && e.State == engine.InstanceActive {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r *activityInstanceRepository) Update(entity *internal.ActivityInstanceEntity) error {
	for i, e := range r.entities {
		if e.Id == entity.Id {
			r.entities[i] = *entity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *activityInstanceRepository) Query(c engine.ActivityInstanceCriteria, o engine.QueryOptions) ([]engine.ActivityInstance, error) {
	return paginate(r.entities, o, func(e internal.ActivityInstanceEntity) bool {
		if c.ProcessInstanceId != "" && c.ProcessInstanceId != e.ProcessInstanceId {
			return false
		}
		if c.ActivityId != "" && c.ActivityId != e.ActivityId {
			return false
		}
		return matchStates(c.States, e.State)
	}, internal.ActivityInstanceEntity.ActivityInstance), nil
}
