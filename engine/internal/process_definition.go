package internal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProcessDefinitionEntity struct {
	Id string

	Activities  string // JSON encoded []engine.Activity
	CreatedAt   time.Time
	CreatedBy   string
	IsSuspended bool
	Key         string
	Name        pgtype.Text
	Version     int
}

func (e ProcessDefinitionEntity) ProcessDefinition() engine.ProcessDefinition {
	var activities []engine.Activity
	_ = json.Unmarshal([]byte(e.Activities), &activities)

	return engine.ProcessDefinition{
		Id: e.Id,

		Activities:  activities,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
		IsSuspended: e.IsSuspended,
		Key:         e.Key,
		Name:        e.Name.String,
		Version:     e.Version,
	}
}

type ProcessDefinitionRepository interface {
	Insert(*ProcessDefinitionEntity) error
	Select(id string) (*ProcessDefinitionEntity, error)
	// SelectByKey selects a process definition in a specific version. If version is 0, the latest version is selected.
	SelectByKey(key string, version int) (*ProcessDefinitionEntity, error)
	Update(*ProcessDefinitionEntity) error

	Query(engine.ProcessDefinitionCriteria, engine.QueryOptions) ([]engine.ProcessDefinition, error)
}

func CreateProcessDefinition(ctx Context, cmd engine.CreateProcessDefinitionCmd) (engine.ProcessDefinition, error) {
	const title = "failed to create process definition"

	if err := validateCmd(title, cmd); err != nil {
		return engine.ProcessDefinition{}, err
	}
	if err := validateActivities(title, cmd.Activities); err != nil {
		return engine.ProcessDefinition{}, err
	}

	version := 1

	latest, err := ctx.ProcessDefinitions().SelectByKey(cmd.Key, 0)
	if err != nil && err != pgx.ErrNoRows {
		return engine.ProcessDefinition{}, err
	}
	if latest != nil {
		version = latest.Version + 1
	}

	b, err := json.Marshal(cmd.Activities)
	if err != nil {
		return engine.ProcessDefinition{}, fmt.Errorf("failed to marshal activities: %v", err)
	}

	entity := ProcessDefinitionEntity{
		Id: newId(),

		Activities: string(b),
		CreatedAt:  ctx.Time(),
		CreatedBy:  cmd.WorkerId,
		Key:        cmd.Key,
		Name:       text(cmd.Name),
		Version:    version,
	}

	if err := ctx.ProcessDefinitions().Insert(&entity); err != nil {
		return engine.ProcessDefinition{}, err
	}

	return entity.ProcessDefinition(), nil
}

func ResumeProcessDefinition(ctx Context, cmd engine.ResumeProcessDefinitionCmd) error {
	const title = "failed to resume process definition"
	if err := validateCmd(title, cmd); err != nil {
		return err
	}
	return setProcessDefinitionSuspended(ctx, title, cmd.Id, false)
}

func SuspendProcessDefinition(ctx Context, cmd engine.SuspendProcessDefinitionCmd) error {
	const title = "failed to suspend process definition"
	if err := validateCmd(title, cmd); err != nil {
		return err
	}
	return setProcessDefinitionSuspended(ctx, title, cmd.Id, true)
}

func setProcessDefinitionSuspended(ctx Context, title string, id string, suspended bool) error {
	entity, err := ctx.ProcessDefinitions().Select(id)
	if err == pgx.ErrNoRows {
		return engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("process definition %s could not be found", id),
		}
	}
	if err != nil {
		return err
	}

	if entity.IsSuspended == suspended {
		state := "active"
		if suspended {
			state = "suspended"
		}
		return engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("process definition %s:%d is already %s", entity.Key, entity.Version, state),
		}
	}

	entity.IsSuspended = suspended
	return ctx.ProcessDefinitions().Update(entity)
}

// validateActivities checks the rules that cannot be expressed by struct tags.
func validateActivities(title string, activities []engine.Activity) error {
	var causes []engine.ErrorCause

	ids := make(map[string]bool, len(activities))
	for i, activity := range activities {
		if ids[activity.Id] {
			causes = append(causes, engine.ErrorCause{
				Pointer: fmt.Sprintf("#/activities/%d/id", i),
				Type:    "unique",
				Detail:  "must be unique",
			})
		}
		ids[activity.Id] = true

		switch activity.Type {
		case engine.ActivityCallActivity:
			if activity.CalledProcessDefinitionKey == "" {
				causes = append(causes, engine.ErrorCause{
					Pointer: fmt.Sprintf("#/activities/%d/calledProcessDefinitionKey", i),
					Type:    "required",
					Detail:  "is required",
				})
			}
		case engine.ActivityTimerEvent:
			if activity.Timer == nil {
				causes = append(causes, engine.ErrorCause{
					Pointer: fmt.Sprintf("#/activities/%d/timer", i),
					Type:    "required",
					Detail:  "is required",
				})
			} else if activity.Timer.String() == "" {
				causes = append(causes, engine.ErrorCause{
					Pointer: fmt.Sprintf("#/activities/%d/timer", i),
					Type:    "timer",
					Detail:  "must specify a time, time cycle or time duration",
				})
			}
		}
	}

	if len(causes) == 0 {
		return nil
	}

	return engine.Error{
		Type:   engine.ErrorValidation,
		Title:  title,
		Detail: "invalid activities",
		Causes: causes,
	}
}
