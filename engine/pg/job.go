package pg

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type jobRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r jobRepository) Insert(entity *internal.JobEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO job (
	id,

	process_definition_id,
	process_instance_id,

	activity_id,
	completed_at,
	created_at,
	due_at,
	error,
	is_suspended,
	retries,
	type
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
	$11
)
`,
		entity.Id,

		entity.ProcessDefinitionId,
		entity.ProcessInstanceId,

		entity.ActivityId,
		entity.CompletedAt,
		entity.CreatedAt,
		entity.DueAt,
		entity.Error,
		entity.IsSuspended,
		entity.Retries,
		entity.Type.String(),
	); err != nil {
		return fmt.Errorf("failed to insert job %s: %v", entity.Id, err)
	}

	return nil
}

func (r jobRepository) Select(id string) (*internal.JobEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	id,

	process_definition_id,
	process_instance_id,

	activity_id,
	completed_at,
	created_at,
	due_at,
	error,
	is_suspended,
	retries,
	type
FROM
	job
WHERE
	id = $1
FOR UPDATE
`, id)

	var entity internal.JobEntity
	if err := scanJob(row, &entity); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select job %s: %v", id, err)
		}
	}

	return &entity, nil
}

func (r jobRepository) SelectOpen(processInstanceId string) ([]*internal.JobEntity, error) {
	rows, err := r.tx.Query(r.txCtx, `
SELECT
	id,

	process_definition_id,
	process_instance_id,

	activity_id,
	completed_at,
	created_at,
	due_at,
	error,
	is_suspended,
	retries,
	type
FROM
	job
WHERE
	process_instance_id = $1 AND
	completed_at IS NULL
ORDER BY
	seq
`, processInstanceId)
	if err != nil {
		return nil, fmt.Errorf("failed to select open jobs of %s: %v", processInstanceId, err)
	}

	defer rows.Close()

	var results []*internal.JobEntity
	for rows.Next() {
		var entity internal.JobEntity
		if err := scanJob(rows, &entity); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %v", err)
		}

		results = append(results, &entity)
	}

	return results, nil
}

func (r jobRepository) Update(entity *internal.JobEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
UPDATE
	job
SET
	completed_at = $2,
	error = $3,
	is_suspended = $4,
	retries = $5
WHERE
	id = $1
`,
		entity.Id,

		entity.CompletedAt,
		entity.Error,
		entity.IsSuspended,
		entity.Retries,
	); err != nil {
		return fmt.Errorf("failed to update job %s: %v", entity.Id, err)
	}

	return nil
}

func (r jobRepository) Query(criteria engine.JobCriteria, options engine.QueryOptions) ([]engine.Job, error) {
	var sql bytes.Buffer
	if err := sqlJobQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute job query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute job query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.Job, 0)
	for rows.Next() {
		var entity internal.JobEntity
		if err := scanJob(rows, &entity); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %v", err)
		}

		results = append(results, entity.Job())
	}

	return results, nil
}

func scanJob(row pgx.Row, entity *internal.JobEntity) error {
	var typeValue string
	if err := row.Scan(
		&entity.Id,

		&entity.ProcessDefinitionId,
		&entity.ProcessInstanceId,

		&entity.ActivityId,
		&entity.CompletedAt,
		&entity.CreatedAt,
		&entity.DueAt,
		&entity.Error,
		&entity.IsSuspended,
		&entity.Retries,
		&typeValue,
	); err != nil {
		return err
	}

	entity.Type = engine.MapJobType(typeValue)
	return nil
}
