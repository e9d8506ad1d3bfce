package pg

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type processDefinitionRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r processDefinitionRepository) Insert(entity *internal.ProcessDefinitionEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO process_definition (
	id,

	activities,
	created_at,
	created_by,
	is_suspended,
	key,
	name,
	version
) VALUES (
	$1,

	$2,
	$3,
	$4,
	$5,
	$6,
	$7,
	$8
)
`,
		entity.Id,

		entity.Activities,
		entity.CreatedAt,
		entity.CreatedBy,
		entity.IsSuspended,
		entity.Key,
		entity.Name,
		entity.Version,
	); err != nil {
		return fmt.Errorf("failed to insert process definition %s:%d: %v", entity.Key, entity.Version, err)
	}

	return nil
}

func (r processDefinitionRepository) Select(id string) (*internal.ProcessDefinitionEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	activities,
	created_at,
	created_by,
	is_suspended,
	key,
	name,
	version
FROM
	process_definition
WHERE
	id = $1
`, id)

	var entity internal.ProcessDefinitionEntity
	if err := row.Scan(
		&entity.Activities,
		&entity.CreatedAt,
		&entity.CreatedBy,
		&entity.IsSuspended,
		&entity.Key,
		&entity.Name,
		&entity.Version,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select process definition %s: %v", id, err)
		}
	}

	entity.Id = id

	return &entity, nil
}

func (r processDefinitionRepository) SelectByKey(key string, version int) (*internal.ProcessDefinitionEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	id,

	activities,
	created_at,
	created_by,
	is_suspended,
	version
FROM
	process_definition
WHERE
	key = $1 AND
	($2 = 0 OR version = $2)
ORDER BY
	version DESC
LIMIT 1
`, key, version)

	var entity internal.ProcessDefinitionEntity
	if err := row.Scan(
		&entity.Id,

		&entity.Activities,
		&entity.CreatedAt,
		&entity.CreatedBy,
		&entity.IsSuspended,
		&entity.Version,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select process definition %s:%d: %v", key, version, err)
		}
	}

	entity.Key = key

	return &entity, nil
}

func (r processDefinitionRepository) Update(entity *internal.ProcessDefinitionEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
UPDATE
	process_definition
SET
	is_suspended = $2
WHERE
	id = $1
`,
		entity.Id,

		entity.IsSuspended,
	); err != nil {
		return fmt.Errorf("failed to update process definition %s: %v", entity.Id, err)
	}

	return nil
}

func (r processDefinitionRepository) Query(criteria engine.ProcessDefinitionCriteria, options engine.QueryOptions) ([]engine.ProcessDefinition, error) {
	var sql bytes.Buffer
	if err := sqlProcessDefinitionQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute process definition query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute process definition query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.ProcessDefinition, 0)
	for rows.Next() {
		var entity internal.ProcessDefinitionEntity

		if err := rows.Scan(
			&entity.Id,

			&entity.Activities,
			&entity.CreatedAt,
			&entity.CreatedBy,
			&entity.IsSuspended,
			&entity.Key,
			&entity.Name,
			&entity.Version,
		); err != nil {
			return nil, fmt.Errorf("failed to scan process definition row: %v", err)
		}

		results = append(results, entity.ProcessDefinition())
	}

	return results, nil
}

type processInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r processInstanceRepository) Insert(entity *internal.ProcessInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO process_instance (
	id,

	parent_id,

	process_definition_id,
	process_definition_key,

	activity_id,
	business_key,
	created_at,
	created_by,
	ended_at,
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
	$10
)
`,
		entity.Id,

		entity.ParentId,

		entity.ProcessDefinitionId,
		entity.ProcessDefinitionKey,

		entity.ActivityId,
		entity.BusinessKey,
		entity.CreatedAt,
		entity.CreatedBy,
		entity.EndedAt,
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to insert process instance %s: %v", entity.Id, err)
	}

	return nil
}

func (r processInstanceRepository) Select(id string) (*internal.ProcessInstanceEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	parent_id,

	process_definition_id,
	process_definition_key,

	activity_id,
	business_key,
	created_at,
	created_by,
	ended_at,
	state
FROM
	process_instance
WHERE
	id = $1
FOR UPDATE
`, id)

	var (
		entity     internal.ProcessInstanceEntity
		stateValue string
	)

	if err := row.Scan(
		&entity.ParentId,

		&entity.ProcessDefinitionId,
		&entity.ProcessDefinitionKey,

		&entity.ActivityId,
		&entity.BusinessKey,
		&entity.CreatedAt,
		&entity.CreatedBy,
		&entity.EndedAt,
		&stateValue,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select process instance %s: %v", id, err)
		}
	}

	entity.Id = id
	entity.State = engine.MapInstanceState(stateValue)

	return &entity, nil
}

func (r processInstanceRepository) SelectByParent(parentId string) ([]*internal.ProcessInstanceEntity, error) {
	rows, err := r.tx.Query(r.txCtx, `
SELECT
	id,

	process_definition_id,
	process_definition_key,

	activity_id,
	business_key,
	created_at,
	created_by,
	ended_at,
	state
FROM
	process_instance
WHERE
	parent_id = $1
ORDER BY
	seq
`, parentId)
	if err != nil {
		return nil, fmt.Errorf("failed to select process instances by parent %s: %v", parentId, err)
	}

	defer rows.Close()

	var results []*internal.ProcessInstanceEntity
	for rows.Next() {
		var (
			entity     internal.ProcessInstanceEntity
			stateValue string
		)

		if err := rows.Scan(
			&entity.Id,

			&entity.ProcessDefinitionId,
			&entity.ProcessDefinitionKey,

			&entity.ActivityId,
			&entity.BusinessKey,
			&entity.CreatedAt,
			&entity.CreatedBy,
			&entity.EndedAt,
			&stateValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan process instance row: %v", err)
		}

		entity.ParentId = pgtype.Text{String: parentId, Valid: true}
		entity.State = engine.MapInstanceState(stateValue)

		results = append(results, &entity)
	}

	return results, nil
}

func (r processInstanceRepository) Update(entity *internal.ProcessInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
UPDATE
	process_instance
SET
	activity_id = $2,
	ended_at = $3,
	state = $4
WHERE
	id = $1
`,
		entity.Id,

		entity.ActivityId,
		entity.EndedAt,
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to update process instance %s: %v", entity.Id, err)
	}

	return nil
}

func (r processInstanceRepository) Query(criteria engine.ProcessInstanceCriteria, options engine.QueryOptions) ([]engine.ProcessInstance, error) {
	var sql bytes.Buffer
	if err := sqlProcessInstanceQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute process instance query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute process instance query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.ProcessInstance, 0)
	for rows.Next() {
		var (
			entity     internal.ProcessInstanceEntity
			stateValue string
		)

		if err := rows.Scan(
			&entity.Id,

			&entity.ParentId,

			&entity.ProcessDefinitionId,
			&entity.ProcessDefinitionKey,

			&entity.ActivityId,
			&entity.BusinessKey,
			&entity.CreatedAt,
			&entity.CreatedBy,
			&entity.EndedAt,
			&stateValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan process instance row: %v", err)
		}

		entity.State = engine.MapInstanceState(stateValue)

		results = append(results, entity.ProcessInstance())
	}

	return results, nil
}

type activityInstanceRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r activityInstanceRepository) Insert(entity *internal.ActivityInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO activity_instance (
	id,

	process_instance_id,

	activity_id,
	activity_type,
	created_at,
	ended_at,
	state
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

		entity.ProcessInstanceId,

		entity.ActivityId,
		entity.ActivityType.String(),
		entity.CreatedAt,
		entity.EndedAt,
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to insert activity instance %s: %v", entity.Id, err)
	}

	return nil
}

func (r activityInstanceRepository) SelectActive(processInstanceId string) ([]*internal.ActivityInstanceEntity, error) {
	rows, err := r.tx.Query(r.txCtx, `
SELECT
	id,

	activity_id,
	activity_type,
	created_at
FROM
	activity_instance
WHERE
	process_instance_id = $1 AND
	state = $2
ORDER BY
	seq
`, processInstanceId, engine.InstanceActive.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select active activity instances of %s: %v", processInstanceId, err)
	}

	defer rows.Close()

	var results []*internal.ActivityInstanceEntity
	for rows.Next() {
		var (
			entity            internal.ActivityInstanceEntity
			activityTypeValue string
		)

		if err := rows.Scan(
			&entity.Id,

			&entity.ActivityId,
			&activityTypeValue,
			&entity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity instance row: %v", err)
		}

		entity.ProcessInstanceId = processInstanceId
		entity.ActivityType = engine.MapActivityType(activityTypeValue)
		entity.State = engine.InstanceActive

		results = append(results, &entity)
	}

	return results, nil
}

func (r activityInstanceRepository) Update(entity *internal.ActivityInstanceEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
UPDATE
	activity_instance
SET
	ended_at = $2,
	state = $3
WHERE
	id = $1
`,
		entity.Id,

		entity.EndedAt,
		entity.State.String(),
	); err != nil {
		return fmt.Errorf("failed to update activity instance %s: %v", entity.Id, err)
	}

	return nil
}

func (r activityInstanceRepository) Query(criteria engine.ActivityInstanceCriteria, options engine.QueryOptions) ([]engine.ActivityInstance, error) {
	var sql bytes.Buffer
	if err := sqlActivityInstanceQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute activity instance query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute activity instance query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.ActivityInstance, 0)
	for rows.Next() {
		var (
			entity            internal.ActivityInstanceEntity
			activityTypeValue string
			stateValue        string
		)

		if err := rows.Scan(
			&entity.Id,

			&entity.ProcessInstanceId,

			&entity.ActivityId,
			&activityTypeValue,
			&entity.CreatedAt,
			&entity.EndedAt,
			&stateValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity instance row: %v", err)
		}

		entity.ActivityType = engine.MapActivityType(activityTypeValue)
		entity.State = engine.MapInstanceState(stateValue)

		results = append(results, entity.ActivityInstance())
	}

	return results, nil
}
