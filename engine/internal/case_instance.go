package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CaseInstanceEntity struct {
	Id string

	CaseDefinitionId  string
	CaseDefinitionKey string

	BusinessKey   pgtype.Text
	CreatedAt     time.Time
	CreatedBy     string
	EndedAt       pgtype.Timestamp
	PreviousState engine.InstanceState
	State         engine.InstanceState
}

func (e CaseInstanceEntity) CaseInstance() engine.CaseInstance {
	return engine.CaseInstance{
		Id: e.Id,

		CaseDefinitionId:  e.CaseDefinitionId,
		CaseDefinitionKey: e.CaseDefinitionKey,

		BusinessKey:   e.BusinessKey.String,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		EndedAt:       timeOrNil(e.EndedAt),
		PreviousState: e.PreviousState,
		State:         e.State,
	}
}

type CaseInstanceRepository interface {
	Insert(*CaseInstanceEntity) error
	Select(id string) (*CaseInstanceEntity, error)
	Update(*CaseInstanceEntity) error

	Query(engine.CaseInstanceCriteria, engine.QueryOptions) ([]engine.CaseInstance, error)
}

func CreateCaseInstance(ctx Context, cmd engine.CreateCaseInstanceCmd) (engine.CaseInstance, error) {
	const title = "failed to create case instance"

	if err := validateCmd(title, cmd); err != nil {
		return engine.CaseInstance{}, err
	}

	definitionEntity, err := ctx.CaseDefinitions().SelectByKey(cmd.CaseDefinitionKey, cmd.Version)
	if err == pgx.ErrNoRows {
		versionString := "latest"
		if cmd.Version != 0 {
			versionString = fmt.Sprintf("%d", cmd.Version)
		}
		return engine.CaseInstance{}, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("case definition %s:%s could not be found", cmd.CaseDefinitionKey, versionString),
		}
	}
	if err != nil {
		return engine.CaseInstance{}, err
	}

	caseDefinition := definitionEntity.CaseDefinition()

	caseInstance := CaseInstanceEntity{
		Id: newId(),

		CaseDefinitionId:  caseDefinition.Id,
		CaseDefinitionKey: caseDefinition.Key,

		BusinessKey: text(cmd.BusinessKey),
		CreatedAt:   ctx.Time(),
		CreatedBy:   cmd.WorkerId,
		State:       engine.InstanceActive,
	}

	if err := ctx.CaseInstances().Insert(&caseInstance); err != nil {
		return engine.CaseInstance{}, err
	}

	if err := setVariables(ctx, variableScope{caseInstanceId: caseInstance.Id}, cmd.Variables, cmd.WorkerId); err != nil {
		return engine.CaseInstance{}, err
	}

	// plan item ID -> case execution ID, since parents precede their children
	executionIds := make(map[string]string, len(caseDefinition.PlanItems))

	var topLevel []*CaseExecutionEntity
	for _, planItem := range caseDefinition.PlanItems {
		caseExecution := CaseExecutionEntity{
			Id: newId(),

			CaseDefinitionId: caseDefinition.Id,
			CaseInstanceId:   caseInstance.Id,
			ParentId:         text(executionIds[planItem.ParentId]),

			ActivityId:         planItem.Id,
			ActivityName:       text(planItem.Name),
			ActivityType:       planItem.Type,
			CreatedAt:          ctx.Time(),
			IsManualActivation: planItem.IsManualActivation,
			IsRequired:         planItem.IsRequired,
			State:              engine.InstanceAvailable,
		}

		if err := ctx.CaseExecutions().Insert(&caseExecution); err != nil {
			return engine.CaseInstance{}, err
		}

		executionIds[planItem.Id] = caseExecution.Id

		if planItem.ParentId == "" {
			topLevel = append(topLevel, &caseExecution)
		}
	}

	for _, caseExecution := range topLevel {
		if err := activateCaseExecution(ctx, caseExecution); err != nil {
			return engine.CaseInstance{}, err
		}
	}

	return caseInstance.CaseInstance(), nil
}

func TransitionCaseInstance(ctx Context, cmd engine.TransitionCaseInstanceCmd) (engine.CaseInstance, error) {
	const title = "failed to transition case instance"

	if err := validateCmd(title, cmd); err != nil {
		return engine.CaseInstance{}, err
	}

	caseInstance, err := ctx.CaseInstances().Select(cmd.Id)
	if err == pgx.ErrNoRows {
		return engine.CaseInstance{}, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("case instance %s could not be found", cmd.Id),
		}
	}
	if err != nil {
		return engine.CaseInstance{}, err
	}

	conflict := func(detail string) error {
		return engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("case instance %s: %s", caseInstance.Id, detail),
		}
	}

	state := caseInstance.State

	var newState engine.InstanceState
	switch cmd.Transition {
	case engine.TransitionClose:
		if state != engine.InstanceCompleted && state != engine.InstanceTerminated && state != engine.InstanceFailed {
			return engine.CaseInstance{}, conflict(fmt.Sprintf("cannot close %s instance", state))
		}
		newState = engine.InstanceClosed
	case engine.TransitionComplete:
		if state != engine.InstanceActive {
			return engine.CaseInstance{}, conflict(fmt.Sprintf("cannot complete %s instance", state))
		}

		caseExecutions, err := ctx.CaseExecutions().SelectByCaseInstance(caseInstance.Id)
		if err != nil {
			return engine.CaseInstance{}, err
		}
		for _, caseExecution := range caseExecutions {
			if caseExecution.State == engine.InstanceActive {
				return engine.CaseInstance{}, conflict(fmt.Sprintf("case execution %s is active", caseExecution.ActivityId))
			}
		}
		newState = engine.InstanceCompleted
	case engine.TransitionFault:
		if state != engine.InstanceActive {
			return engine.CaseInstance{}, conflict(fmt.Sprintf("cannot fault %s instance", state))
		}
		newState = engine.InstanceFailed
	case engine.TransitionResume:
		if state != engine.InstanceSuspended {
			return engine.CaseInstance{}, conflict(fmt.Sprintf("cannot resume %s instance", state))
		}
		newState = caseInstance.PreviousState
	case engine.TransitionSuspend:
		if state != engine.InstanceActive {
			return engine.CaseInstance{}, conflict(fmt.Sprintf("cannot suspend %s instance", state))
		}
		newState = engine.InstanceSuspended
	case engine.TransitionTerminate:
		if state != engine.InstanceActive && state != engine.InstanceSuspended {
			return engine.CaseInstance{}, conflict(fmt.Sprintf("cannot terminate %s instance", state))
		}
		newState = engine.InstanceTerminated
	default:
		return engine.CaseInstance{}, conflict(fmt.Sprintf("transition %s is not supported", cmd.Transition))
	}

	if newState == engine.InstanceCompleted || newState == engine.InstanceTerminated || newState == engine.InstanceFailed {
		caseExecutions, err := ctx.CaseExecutions().SelectByCaseInstance(caseInstance.Id)
		if err != nil {
			return engine.CaseInstance{}, err
		}
		for _, caseExecution := range caseExecutions {
			if caseExecution.State.IsEnded() {
				continue
			}
			if err := setCaseExecutionState(ctx, caseExecution, engine.InstanceTerminated); err != nil {
				return engine.CaseInstance{}, err
			}
		}
	}

	caseInstance.PreviousState = state
	caseInstance.State = newState
	if newState.IsEnded() && !caseInstance.EndedAt.Valid {
		caseInstance.EndedAt = timestamp(ctx.Time())
	}

	if err := ctx.CaseInstances().Update(caseInstance); err != nil {
		return engine.CaseInstance{}, err
	}

	return caseInstance.CaseInstance(), nil
}
