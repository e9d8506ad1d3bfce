package pg

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type caseDefinitionRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r caseDefinitionRepository) Insert(entity *internal.CaseDefinitionEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO case_definition (
	id,

	created_at,
	created_by,
	key,
	name,
	plan_items,
	version
) VALUES (
	$1,

	$2,
	$3,
	$4,
	$5,
	$6,
	$7
)
`,
		entity.Id,

		entity.CreatedAt,
		entity.CreatedBy,
		entity.Key,
		entity.Name,
		entity.PlanItems,
		entity.Version,
	); err != nil {
		return fmt.Errorf("failed to insert case definition %s:%d: %v", entity.Key, entity.Version, err)
	}

	return nil
}

func (r caseDefinitionRepository) Select(id string) (*internal.CaseDefinitionEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	created_at,
	created_by,
	key,
	name,
	plan_items,
	version
FROM
	case_definition
WHERE
	id = $1
`, id)

	var entity internal.CaseDefinitionEntity
	if err := row.Scan(
		&entity.CreatedAt,
		&entity.CreatedBy,
		&entity.Key,
		&entity.Name,
		&entity.PlanItems,
		&entity.Version,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select case definition %s: %v", id, err)
		}
	}

	entity.Id = id

	return &entity, nil
}

func (r caseDefinitionRepository) SelectByKey(key string, version int) (*internal.CaseDefinitionEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	id,

	created_at,
	created_by,
	name,
	plan_items,
	version
FROM
	case_definition
WHERE
	key = $1 AND
	($2 = 0 OR version = $2)
ORDER BY
	version DESC
LIMIT 1
`, key, version)

	var entity internal.CaseDefinitionEntity
	if err := row.Scan(
		&entity.Id,

		&entity.CreatedAt,
		&entity.CreatedBy,
		&entity.Name,
		&entity.PlanItems,
		&entity.Version,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select case definition %s:%d: %v", key, version, err)
		}
	}

	entity.Key = key

	return &entity, nil
}

func (r caseDefinitionRepository) Query(criteria engine.CaseDefinitionCriteria, options engine.QueryOptions) ([]engine.CaseDefinition, error) {
	var sql bytes.Buffer
	if err := sqlCaseDefinitionQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute case definition query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute case definition query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.CaseDefinition, 0)
	for rows.Next() {
		var entity internal.CaseDefinitionEntity

		if err := rows.Scan(
			&entity.Id,

			&entity.CreatedAt,
			&entity.CreatedBy,
			&entity.Key,
			&entity.Name,
			&entity.PlanItems,
			&entity.Version,
		); err != nil {
			return nil, fmt.Errorf("failed to scan case definition row: %v", err)
		}

		results = append(results, entity.CaseDefinition())
	}

	return results, nil
}

type caseInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r caseInstanceRepository) Insert(entity *internal.CaseInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO case_instance (
	id,

	case_definition_id,
	case_definition_key,

	business_key,
	created_at,
	created_by,
	ended_at,
	previous_state,
	state
) VALUES (
	$1,

	$2,
	$3,

	$4,
	$5,
	$6,
	$7,
	$8,
	$9
)
`,
		entity.Id,

		entity.CaseDefinitionId,
		entity.CaseDefinitionKey,

		entity.BusinessKey,
		entity.CreatedAt,
		entity.CreatedBy,
		entity.EndedAt,
		entity.PreviousState.String(),
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to insert case instance %s: %v", entity.Id, err)
	}

	return nil
}

func (r caseInstanceRepository) Select(id string) (*internal.CaseInstanceEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	case_definition_id,
	case_definition_key,

	business_key,
	created_at,
	created_by,
	ended_at,
	previous_state,
	state
FROM
	case_instance
WHERE
	id = $1
FOR UPDATE
`, id)

	var (
		entity             internal.CaseInstanceEntity
		previousStateValue string
		stateValue         string
	)

	if err := row.Scan(
		&entity.CaseDefinitionId,
		&entity.CaseDefinitionKey,

		&entity.BusinessKey,
		&entity.CreatedAt,
		&entity.CreatedBy,
		&entity.EndedAt,
		&previousStateValue,
		&stateValue,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select case instance %s: %v", id, err)
		}
	}

	entity.Id = id
	entity.PreviousState = engine.MapInstanceState(previousStateValue)
	entity.State = engine.MapInstanceState(stateValue)

	return &entity, nil
}

func (r caseInstanceRepository) Update(entity *internal.CaseInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
UPDATE
	case_instance
SET
	ended_at = $2,
	previous_state = $3,
	state = $4
WHERE
	id = $1
`,
		entity.Id,

		entity.EndedAt,
		entity.PreviousState.String(),
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to update case instance %s: %v", entity.Id, err)
	}

	return nil
}

func (r caseInstanceRepository) Query(criteria engine.CaseInstanceCriteria, options engine.QueryOptions) ([]engine.CaseInstance, error) {
	var sql bytes.Buffer
	if err := sqlCaseInstanceQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute case instance query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute case instance query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.CaseInstance, 0)
	for rows.Next() {
		var (
			entity             internal.CaseInstanceEntity
			previousStateValue string
			stateValue         string
		)

		if err := rows.Scan(
			&entity.Id,

			&entity.CaseDefinitionId,
			&entity.CaseDefinitionKey,

			&entity.BusinessKey,
			&entity.CreatedAt,
			&entity.CreatedBy,
			&entity.EndedAt,
			&previousStateValue,
			&stateValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan case instance row: %v", err)
		}

		entity.PreviousState = engine.MapInstanceState(previousStateValue)
		entity.State = engine.MapInstanceState(stateValue)

		results = append(results, entity.CaseInstance())
	}

	return results, nil
}

type caseExecutionRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r caseExecutionRepository) Insert(entity *internal.CaseExecutionEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO case_execution (
	id,

	case_definition_id,
	case_instance_id,
	parent_id,

	activity_id,
	activity_name,
	activity_type,
	created_at,
	ended_at,
	is_manual_activation,
	is_required,
	previous_state,
	state
) VALUES (
	$1,

	$2,
	$3,
	$4,

	$5,
	$6,
	$7,
	$8,
	$9,
	$10,
	$11,
	$12,
	$13
)
`,
		entity.Id,

		entity.CaseDefinitionId,
		entity.CaseInstanceId,
		entity.ParentId,

		entity.ActivityId,
		entity.ActivityName,
		entity.ActivityType.String(),
		entity.CreatedAt,
		entity.EndedAt,
		entity.IsManualActivation,
		entity.IsRequired,
		entity.PreviousState.String(),
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to insert case execution %s: %v", entity.Id, err)
	}

	return nil
}

func (r caseExecutionRepository) Select(id string) (*internal.CaseExecutionEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	case_definition_id,
	case_instance_id,
	parent_id,

	activity_id,
	activity_name,
	activity_type,
	created_at,
	ended_at,
	is_manual_activation,
	is_required,
	previous_state,
	state
FROM
	case_execution
WHERE
	id = $1
FOR UPDATE
`, id)

	var entity internal.CaseExecutionEntity
	if err := scanCaseExecution(row, &entity, false); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select case execution %s: %v", id, err)
		}
	}

	entity.Id = id

	return &entity, nil
}

func (r caseExecutionRepository) SelectByCaseInstance(caseInstanceId string) ([]*internal.CaseExecutionEntity, error) {
	rows, err := r.tx.Query(r.txCtx, `
SELECT
	id,

	case_definition_id,
	case_instance_id,
	parent_id,

	activity_id,
	activity_name,
	activity_type,
	created_at,
	ended_at,
	is_manual_activation,
	is_required,
	previous_state,
	state
FROM
	case_execution
WHERE
	case_instance_id = $1
ORDER BY
	seq
`, caseInstanceId)
	if err != nil {
		return nil, fmt.Errorf("failed to select case executions of %s: %v", caseInstanceId, err)
	}

	defer rows.Close()

	var results []*internal.CaseExecutionEntity
	for rows.Next() {
		var entity internal.CaseExecutionEntity
		if err := scanCaseExecution(rows, &entity, true); err != nil {
			return nil, fmt.Errorf("failed to scan case execution row: %v", err)
		}

		results = append(results, &entity)
	}

	return results, nil
}

func (r caseExecutionRepository) Update(entity *internal.CaseExecutionEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
UPDATE
	case_execution
SET
	ended_at = $2,
	previous_state = $3,
	state = $4
WHERE
	id = $1
`,
		entity.Id,

		entity.EndedAt,
		entity.PreviousState.String(),
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to update case execution %s: %v", entity.Id, err)
	}

	return nil
}

func (r caseExecutionRepository) Query(criteria engine.CaseExecutionCriteria, options engine.QueryOptions) ([]engine.CaseExecution, error) {
	var sql bytes.Buffer
	if err := sqlCaseExecutionQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute case execution query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute case execution query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.CaseExecution, 0)
	for rows.Next() {
		var entity internal.CaseExecutionEntity
		if err := scanCaseExecution(rows, &entity, true); err != nil {
			return nil, fmt.Errorf("failed to scan case execution row: %v", err)
		}

		results = append(results, entity.CaseExecution())
	}

	return results, nil
}

// scanCaseExecution scans a case execution row. withId indicates that the row starts with the ID column.
func scanCaseExecution(row pgx.Row, entity *internal.CaseExecutionEntity, withId bool) error {
	var (
		activityTypeValue  string
		previousStateValue string
		stateValue         string
	)

	dest := []any{
		&entity.CaseDefinitionId,
		&entity.CaseInstanceId,
		&entity.ParentId,

		&entity.ActivityId,
		&entity.ActivityName,
		&activityTypeValue,
		&entity.CreatedAt,
		&entity.EndedAt,
		&entity.IsManualActivation,
		&entity.IsRequired,
		&previousStateValue,
		&stateValue,
	}
	if withId {
		dest = append([]any{&entity.Id}, dest...)
	}

	if err := row.Scan(dest...); err != nil {
		return err
	}

	entity.ActivityType = engine.MapPlanItemType(activityTypeValue)
	entity.PreviousState = engine.MapInstanceState(previousStateValue)
	entity.State = engine.MapInstanceState(stateValue)
	return nil
}
