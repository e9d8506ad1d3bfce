package internal

import (
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5/pgtype"
)

type ActivityInstanceEntity struct {
	Id string

	ProcessInstanceId string

	ActivityId   string
	ActivityType engine.ActivityType
	CreatedAt    time.Time
	EndedAt      pgtype.Timestamp
	State        engine.InstanceState
}

func (e ActivityInstanceEntity) ActivityInstance() engine.ActivityInstance {
	return engine.ActivityInstance{
		Id: e.Id,

		ProcessInstanceId: e.ProcessInstanceId,

		ActivityId:   e.ActivityId,
		ActivityType: e.ActivityType,
		CreatedAt:    e.CreatedAt,
		EndedAt:      timeOrNil(e.EndedAt),
		State:        e.State,
	}
}

type ActivityInstanceRepository interface {
	Insert(*ActivityInstanceEntity) error
	SelectActive(processInstanceId string) ([]*ActivityInstanceEntity, error)
	Update(*ActivityInstanceEntity) error

	Query(engine.ActivityInstanceCriteria, engine.QueryOptions) ([]engine.ActivityInstance, error)
}
