package mem

import (
	"slices"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
)

type variableRepository struct {
	entities []internal.VariableEntity
}

func (r *variableRepository) Delete(entity *internal.VariableEntity) error {
	r.entities = slices.DeleteFunc(r.entities, func(e internal.VariableEntity) bool {
		return sameVariable(e, *entity)
	})
	return nil
}

func (r *variableRepository) Upsert(entity *internal.VariableEntity) error {
	for i, e := range r.entities {
		if sameVariable(e, *entity) {
			entity.CreatedAt = e.CreatedAt
			entity.CreatedBy = e.CreatedBy
			r.entities[i] = *entity
			return nil
		}
	}

	r.entities = append(r.entities, *entity)
	return nil
}

func (r *variableRepository) Query(c engine.VariableCriteria, o engine.QueryOptions) ([]engine.Variable, error) {
	return paginate(r.entities, o, func(e internal.VariableEntity) bool {
		if c.CaseInstanceId != "" && c.CaseInstanceId != e.CaseInstanceId.String {
			return false
		}
		if c.ProcessInstanceId != "" && c.ProcessInstanceId != e.ProcessInstanceId.String {
			return false
		}
		return len(c.Names) == 0 || slices.Contains(c.Names, e.Name)
	}, internal.VariableEntity.Variable), nil
}

func sameVariable(a internal.VariableEntity, b internal.VariableEntity) bool {
	return a.CaseInstanceId.String == b.CaseInstanceId.String &&
		a.ProcessInstanceId.String == b.ProcessInstanceId.String &&
		a.Name == b.Name
}
