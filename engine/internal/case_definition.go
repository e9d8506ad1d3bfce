package internal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CaseDefinitionEntity struct {
	Id string

	CreatedAt time.Time
	CreatedBy string
	Key       string
	Name      pgtype.Text
	PlanItems string // JSON encoded []engine.PlanItem
	Version   int
}

func (e CaseDefinitionEntity) CaseDefinition() engine.CaseDefinition {
	var planItems []engine.PlanItem
	_ = json.Unmarshal([]byte(e.PlanItems), &planItems)

	return engine.CaseDefinition{
		Id: e.Id,

		CreatedAt: e.CreatedAt,
		CreatedBy: e.CreatedBy,
		Key:       e.Key,
		Name:      e.Name.String,
		PlanItems: planItems,
		Version:   e.Version,
	}
}

type CaseDefinitionRepository interface {
	Insert(*CaseDefinitionEntity) error
	Select(id string) (*CaseDefinitionEntity, error)
	// SelectByKey selects a case definition in a specific version. If version is 0, the latest version is selected.
	SelectByKey(key string, version int) (*CaseDefinitionEntity, error)

	Query(engine.CaseDefinitionCriteria, engine.QueryOptions) ([]engine.CaseDefinition, error)
}

func CreateCaseDefinition(ctx Context, cmd engine.CreateCaseDefinitionCmd) (engine.CaseDefinition, error) {
	const title = "failed to create case definition"

	if err := validateCmd(title, cmd); err != nil {
		return engine.CaseDefinition{}, err
	}
	if err := validatePlanItems(title, cmd.PlanItems); err != nil {
		return engine.CaseDefinition{}, err
	}

	version := 1

	latest, err := ctx.CaseDefinitions().SelectByKey(cmd.Key, 0)
	if err != nil && err != pgx.ErrNoRows {
		return engine.CaseDefinition{}, err
	}
	if latest != nil {
		version = latest.Version + 1
	}

	b, err := json.Marshal(cmd.PlanItems)
	if err != nil {
		return engine.CaseDefinition{}, fmt.Errorf("failed to marshal plan items: %v", err)
	}

	entity := CaseDefinitionEntity{
		Id: newId(),

		CreatedAt: ctx.Time(),
		CreatedBy: cmd.WorkerId,
		Key:       cmd.Key,
		Name:      text(cmd.Name),
		PlanItems: string(b),
		Version:   version,
	}

	if err := ctx.CaseDefinitions().Insert(&entity); err != nil {
		return engine.CaseDefinition{}, err
	}

	return entity.CaseDefinition(), nil
}

// validatePlanItems checks that plan item IDs are unique and that a parent ID refers to a stage.
// Since a parent must be declared before its children, cycles are not possible.
func validatePlanItems(title string, planItems []engine.PlanItem) error {
	var causes []engine.ErrorCause

	types := make(map[string]engine.PlanItemType, len(planItems))
	for i, planItem := range planItems {
		if _, ok := types[planItem.Id]; ok {
			causes = append(causes, engine.ErrorCause{
				Pointer: fmt.Sprintf("#/planItems/%d/id", i),
				Type:    "unique",
				Detail:  "must be unique",
			})
			continue
		}

		if planItem.ParentId != "" {
			parentType, ok := types[planItem.ParentId]
			if !ok {
				causes = append(causes, engine.ErrorCause{
					Pointer: fmt.Sprintf("#/planItems/%d/parentId", i),
					Type:    "parent_id",
					Detail:  fmt.Sprintf("must refer to a preceding plan item, but is %s", planItem.ParentId),
				})
			} else if parentType != engine.PlanItemStage {
				causes = append(causes, engine.ErrorCause{
					Pointer: fmt.Sprintf("#/planItems/%d/parentId", i),
					Type:    "parent_id",
					Detail:  fmt.Sprintf("must refer to a %s, but is %s", engine.PlanItemStage, parentType),
				})
			}
		}

		types[planItem.Id] = planItem.Type
	}

	if len(causes) == 0 {
		return nil
	}

	return engine.Error{
		Type:   engine.ErrorValidation,
		Title:  title,
		Detail: "invalid plan items",
		Causes: causes,
	}
}
