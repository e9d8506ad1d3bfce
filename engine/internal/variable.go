package internal

import (
	"fmt"
	"slices"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type VariableEntity struct {
	CaseInstanceId    pgtype.Text
	ProcessInstanceId pgtype.Text

	CreatedAt time.Time
	CreatedBy string
	Encoding  string
	Name      string
	UpdatedAt time.Time
	UpdatedBy string
	Value     string
}

func (e VariableEntity) Variable() engine.Variable {
	return engine.Variable{
		CaseInstanceId:    e.CaseInstanceId.String,
		ProcessInstanceId: e.ProcessInstanceId.String,

		CreatedAt: e.CreatedAt,
		CreatedBy: e.CreatedBy,
		Encoding:  e.Encoding,
		Name:      e.Name,
		UpdatedAt: e.UpdatedAt,
		UpdatedBy: e.UpdatedBy,
		Value:     e.Value,
	}
}

type VariableRepository interface {
	// Delete deletes a variable, identified by scope and name.
	Delete(*VariableEntity) error
	// Upsert inserts a variable or updates encoding, value, update time and worker of an existing one.
	Upsert(*VariableEntity) error

	Query(engine.VariableCriteria, engine.QueryOptions) ([]engine.Variable, error)
}

// variableScope identifies the instance, variables belong to. Exactly one ID is set.
type variableScope struct {
	caseInstanceId    string
	processInstanceId string
}

func SetVariables(ctx Context, cmd engine.SetVariablesCmd) error {
	const title = "failed to set variables"

	if err := validateCmd(title, cmd); err != nil {
		return err
	}

	if cmd.ProcessInstanceId != "" {
		processInstance, err := selectProcessInstance(ctx, title, cmd.ProcessInstanceId)
		if err != nil {
			return err
		}
		if processInstance.State.IsEnded() {
			return engine.Error{
				Type:   engine.ErrorConflict,
				Title:  title,
				Detail: fmt.Sprintf("process instance %s is ended", processInstance.Id),
			}
		}

		return setVariables(ctx, variableScope{processInstanceId: processInstance.Id}, cmd.Variables, cmd.WorkerId)
	}

	caseInstance, err := ctx.CaseInstances().Select(cmd.CaseInstanceId)
	if err == pgx.ErrNoRows {
		return engine.Error{
			Type:   engine.ErrorNotFound,
			Title:  title,
			Detail: fmt.Sprintf("case instance %s could not be found", cmd.CaseInstanceId),
		}
	}
	if err != nil {
		return err
	}

	if caseInstance.State.IsEnded() {
		return engine.Error{
			Type:   engine.ErrorConflict,
			Title:  title,
			Detail: fmt.Sprintf("case instance %s is ended", caseInstance.Id),
		}
	}

	return setVariables(ctx, variableScope{caseInstanceId: caseInstance.Id}, cmd.Variables, cmd.WorkerId)
}

// setVariables upserts the given variables and deletes variables without data.
// Variables are processed in name order.
func setVariables(ctx Context, scope variableScope, variables map[string]*engine.Data, workerId string) error {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		variable := VariableEntity{
			CaseInstanceId:    text(scope.caseInstanceId),
			ProcessInstanceId: text(scope.processInstanceId),

			Name: name,
		}

		data := variables[name]
		if data == nil {
			if err := ctx.Variables().Delete(&variable); err != nil {
				return err
			}
			continue
		}

		variable.CreatedAt = ctx.Time()
		variable.CreatedBy = workerId
		variable.Encoding = data.Encoding
		variable.UpdatedAt = ctx.Time()
		variable.UpdatedBy = workerId
		variable.Value = data.Value

		if err := ctx.Variables().Upsert(&variable); err != nil {
			return fmt.Errorf("failed to set variable %s: %v", name, err)
		}
	}

	return nil
}
