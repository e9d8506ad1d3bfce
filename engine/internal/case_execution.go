package internal

import (
	"fmt"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CaseExecutionEntity struct {
	Id string

	CaseDefinitionId string
	CaseInstanceId   string
	ParentId         pgtype.Text

	ActivityId         string
	ActivityName       pgtype.Text
	ActivityType       engine.PlanItemType
	CreatedAt          time.Time
	EndedAt            pgtype.Timestamp
	IsManualActivation bool
	IsRequired         bool
	PreviousState      engine.InstanceState
	State              engine.InstanceState
}

func (e CaseExecutionEntity) CaseExecution() engine.CaseExecution {
	return engine.CaseExecution{
		Id: e.Id,

		CaseDefinitionId: e.CaseDefinitionId,
		CaseInstanceId:   e.CaseInstanceId,
		ParentId:         e.ParentId.String,

		ActivityId:    e.ActivityId,
		ActivityName:  e.ActivityName.String,
		ActivityType:  e.ActivityType,
		CreatedAt:     e.CreatedAt,
		EndedAt:       timeOrNil(e.EndedAt),
		IsRequired:    e.IsRequired,
		PreviousState: e.PreviousState,
		State:         e.State,
	}
}

type CaseExecutionRepository interface {
	Insert(*CaseExecutionEntity) error
	Select(id string) (*CaseExecutionEntity, error)
	// SelectByCaseInstance selects all case executions of a case instance, ordered by creation.
	SelectByCaseInstance(caseInstanceId string) ([]*CaseExecutionEntity, error)
	Update(*CaseExecutionEntity) error

	Query(engine.CaseExecutionCriteria, engine.QueryOptions) ([]engine.CaseExecution, error)
}

func TransitionCaseExecution(ctx Context, cmd engine.TransitionCaseExecutionCmd) (engine.CaseExecution, error) {
	const title = "failed to transition case execution"

	if err := validateCmd(title, cmd); err != nil {
		return engine.CaseExecution{}, err
	}

	caseExecution, err := ctx.CaseExecutions().Select(cmd.Id)
	if err == pgx.ErrNoRows {
		return engine.CaseExecution{}, engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("case execution %s could not be found", cmd.Id),
		}
	}
	if err != nil {
		return engine.CaseExecution{}, err
	}

	caseInstance, err := ctx.CaseInstances().Select(caseExecution.CaseInstanceId)
	if err != nil {
		return engine.CaseExecution{}, fmt.Errorf("failed to select case instance %s: %v", caseExecution.CaseInstanceId, err)
	}

	conflict := func(detail string) error {
		return engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("case execution %s:%s: %s", caseExecution.Id, caseExecution.ActivityId, detail),
		}
	}

	if caseInstance.State != engine.InstanceActive {
		return engine.CaseExecution{}, conflict(fmt.Sprintf("case instance %s is not active, but %s", caseInstance.Id, caseInstance.State))
	}

	state := caseExecution.State
	isStage := caseExecution.ActivityType == engine.PlanItemStage

	switch cmd.Transition {
	case engine.TransitionComplete:
		if state != engine.InstanceActive {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot complete %s execution", state))
		}
		if isStage {
			children, err := selectChildren(ctx, caseExecution)
			if err != nil {
				return engine.CaseExecution{}, err
			}
			for _, child := range children {
				if child.State == engine.InstanceActive {
					return engine.CaseExecution{}, conflict(fmt.Sprintf("child %s is active", child.ActivityId))
				}
			}
			if err := terminateChildren(ctx, caseExecution); err != nil {
				return engine.CaseExecution{}, err
			}
		}
		err = setCaseExecutionState(ctx, caseExecution, engine.InstanceCompleted)
	case engine.TransitionDisable:
		if state != engine.InstanceEnabled {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot disable %s execution", state))
		}
		err = setCaseExecutionState(ctx, caseExecution, engine.InstanceDisabled)
	case engine.TransitionFault:
		if state != engine.InstanceActive {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot fault %s execution", state))
		}
		err = setCaseExecutionState(ctx, caseExecution, engine.InstanceFailed)
	case engine.TransitionOccur:
		if caseExecution.ActivityType != engine.PlanItemMilestone {
			return engine.CaseExecution{}, conflict("only a milestone can occur")
		}
		if state != engine.InstanceAvailable {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot occur %s milestone", state))
		}
		err = setCaseExecutionState(ctx, caseExecution, engine.InstanceCompleted)
	case engine.TransitionReenable:
		if state != engine.InstanceDisabled {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot reenable %s execution", state))
		}
		err = setCaseExecutionState(ctx, caseExecution, engine.InstanceEnabled)
	case engine.TransitionResume:
		if state != engine.InstanceSuspended {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot resume %s execution", state))
		}
		err = setCaseExecutionState(ctx, caseExecution, caseExecution.PreviousState)
	case engine.TransitionStart:
		if state != engine.InstanceEnabled {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot start %s execution", state))
		}
		err = startCaseExecution(ctx, caseExecution)
	case engine.TransitionSuspend:
		if state != engine.InstanceActive && state != engine.InstanceAvailable && state != engine.InstanceEnabled {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot suspend %s execution", state))
		}
		err = setCaseExecutionState(ctx, caseExecution, engine.InstanceSuspended)
	case engine.TransitionTerminate:
		if state.IsEnded() {
			return engine.CaseExecution{}, conflict(fmt.Sprintf("cannot terminate %s execution", state))
		}
		if err := terminateChildren(ctx, caseExecution); err != nil {
			return engine.CaseExecution{}, err
		}
		err = setCaseExecutionState(ctx, caseExecution, engine.InstanceTerminated)
	default:
		return engine.CaseExecution{}, conflict(fmt.Sprintf("transition %s is not supported", cmd.Transition))
	}

	if err != nil {
		return engine.CaseExecution{}, err
	}

	return caseExecution.CaseExecution(), nil
}

// activateCaseExecution moves an available case execution into its initial state, when the enclosing scope becomes active.
// A milestone stays AVAILABLE until it occurs, a plan item with manual activation becomes ENABLED and any other plan item ACTIVE.
func activateCaseExecution(ctx Context, caseExecution *CaseExecutionEntity) error {
	switch {
	case caseExecution.ActivityType == engine.PlanItemMilestone:
		return nil
	case caseExecution.IsManualActivation:
		return setCaseExecutionState(ctx, caseExecution, engine.InstanceEnabled)
	default:
		return startCaseExecution(ctx, caseExecution)
	}
}

// startCaseExecution sets a case execution ACTIVE. The children of a stage are activated.
func startCaseExecution(ctx Context, caseExecution *CaseExecutionEntity) error {
	if err := setCaseExecutionState(ctx, caseExecution, engine.InstanceActive); err != nil {
		return err
	}

	if caseExecution.ActivityType != engine.PlanItemStage {
		return nil
	}

	children, err := selectChildren(ctx, caseExecution)
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.State != engine.InstanceAvailable {
			continue
		}
		if err := activateCaseExecution(ctx, child); err != nil {
			return err
		}
	}

	return nil
}

// terminateChildren terminates all open descendants of a case execution.
func terminateChildren(ctx Context, caseExecution *CaseExecutionEntity) error {
	children, err := selectChildren(ctx, caseExecution)
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.State.IsEnded() {
			continue
		}
		if err := terminateChildren(ctx, child); err != nil {
			return err
		}
		if err := setCaseExecutionState(ctx, child, engine.InstanceTerminated); err != nil {
			return err
		}
	}

	return nil
}

func selectChildren(ctx Context, caseExecution *CaseExecutionEntity) ([]*CaseExecutionEntity, error) {
	caseExecutions, err := ctx.CaseExecutions().SelectByCaseInstance(caseExecution.CaseInstanceId)
	if err != nil {
		return nil, err
	}

	var children []*CaseExecutionEntity
	for _, e := range caseExecutions {
		if e.ParentId.String == caseExecution.Id {
			children = append(children, e)
		}
	}
	return children, nil
}

func setCaseExecutionState(ctx Context, caseExecution *CaseExecutionEntity, state engine.InstanceState) error {
	caseExecution.PreviousState = caseExecution.State
	caseExecution.State = state
	if state.IsEnded() && !caseExecution.EndedAt.Valid {
		caseExecution.EndedAt = timestamp(ctx.Time())
	}
	return ctx.CaseExecutions().Update(caseExecution)
}
