package mem

import (
	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type caseDefinitionRepository struct {
	entities []internal.CaseDefinitionEntity
}

func (r *caseDefinitionRepository) Insert(entity *internal.CaseDefinitionEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *caseDefinitionRepository) Select(id string) (*internal.CaseDefinitionEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *caseDefinitionRepository) SelectByKey(key string, version int) (*internal.CaseDefinitionEntity, error) {
	var result *internal.CaseDefinitionEntity
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

func (r *caseDefinitionRepository) Query(c engine.CaseDefinitionCriteria, o engine.QueryOptions) ([]engine.CaseDefinition, error) {
	return paginate(r.entities, o, func(e internal.CaseDefinitionEntity) bool {
		if c.Id != "" && c.Id != e.Id {
			return false
		}
		if c.Key != "" && c.Key != e.Key {
			return false
		}
		return c.Version == 0 || c.Version == e.Version
	}, internal.CaseDefinitionEntity.CaseDefinition), nil
}

type caseInstanceRepository struct {
	entities []internal.CaseInstanceEntity
}

func (r *caseInstanceRepository) Insert(entity *internal.CaseInstanceEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *caseInstanceRepository) Select(id string) (*internal.CaseInstanceEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *caseInstanceRepository) Update(entity *internal.CaseInstanceEntity) error {
	for i, e := range r.entities {
		if e.Id == entity.Id {
			r.entities[i] = *entity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *caseInstanceRepository) Query(c engine.CaseInstanceCriteria, o engine.QueryOptions) ([]engine.CaseInstance, error) {
	return paginate(r.entities, o, func(e internal.CaseInstanceEntity) bool {
		if c.Id != "" && c.Id != e.Id {
			return false
		}
		if c.CaseDefinitionId != "" && c.CaseDefinitionId != e.CaseDefinitionId {
			return false
		}
		if c.CaseDefinitionKey != "" && c.CaseDefinitionKey != e.CaseDefinitionKey {
			return false
		}
		if c.BusinessKey != "" && c.BusinessKey != e.BusinessKey.String {
			return false
		}
		return matchStates(c.States, e.State)
	}, internal.CaseInstanceEntity.CaseInstance), nil
}

type caseExecutionRepository struct {
	entities []internal.CaseExecutionEntity
}

func (r *caseExecutionRepository) Insert(entity *internal.CaseExecutionEntity) error {
	r.entities = append(r.entities, *entity)
	return nil
}

func (r *caseExecutionRepository) Select(id string) (*internal.CaseExecutionEntity, error) {
	for _, e := range r.entities {
		if e.Id == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *caseExecutionRepository) SelectByCaseInstance(caseInstanceId string) ([]*internal.CaseExecutionEntity, error) {
	var results []*internal.CaseExecutionEntity
	for _, e := range r.entities {
		e := e
		if e.CaseInstanceId == caseInstanceId {
			results = append(results, &e)
		}
	}
	return results, nil
}

func (r *caseExecutionRepository) Update(entity *internal.CaseExecutionEntity) error {
	for i, e := range r.entities {
		if e.Id == entity.Id {
			r.entities[i] = *entity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *caseExecutionRepository) Query(c engine.CaseExecutionCriteria, o engine.QueryOptions) ([]engine.CaseExecution, error) {
	return paginate(r.entities, o, func(e internal.CaseExecutionEntity) bool {
		if c.Id != "" && c.Id != e.Id {
			return false
		}
		if c.CaseInstanceId != "" && c.CaseInstanceId != e.CaseInstanceId {
			return false
		}
		if c.ParentId != "" && c.ParentId != e.ParentId.String {
			return false
		}
		if c.ActivityId != "" && c.ActivityId != e.ActivityId {
			return false
		}
		if c.ActivityType != 0 && c.ActivityType != e.ActivityType {
			return false
		}
		return matchStates(c.States, e.State)
	}, internal.CaseExecutionEntity.CaseExecution), nil
}
