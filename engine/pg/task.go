package pg

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5"
)

type taskRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r taskRepository) Insert(entity *internal.TaskEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO task (
	id,

	process_definition_id,
	process_instance_id,

	activity_id,
	assignee,
	candidate_groups,
	candidate_users,
	completed_at,
	completed_by,
	created_at,
	description,
	due_at,
	follow_up_at,
	name
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
	$13,
	$14
)
`,
		entity.Id,

		entity.ProcessDefinitionId,
		entity.ProcessInstanceId,

		entity.ActivityId,
		entity.Assignee,
		entity.CandidateGroups,
		entity.CandidateUsers,
		entity.CompletedAt,
		entity.CompletedBy,
		entity.CreatedAt,
		entity.Description,
		entity.DueAt,
		entity.FollowUpAt,
		entity.Name,
	); err != nil {
		return fmt.Errorf("failed to insert task %s: %v", entity.Id, err)
	}

	return nil
}

func (r taskRepository) Select(id string) (*internal.TaskEntity, error) {
	row := r.tx.QueryRow(r.txCtx, `
SELECT
	id,

	process_definition_id,
	process_instance_id,

	activity_id,
	assignee,
	candidate_groups,
	candidate_users,
	completed_at,
	completed_by,
	created_at,
	description,
	due_at,
	follow_up_at,
	name
FROM
	task
WHERE
	id = $1
FOR UPDATE
`, id)

	var entity internal.TaskEntity
	if err := scanTask(row, &entity); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		} else {
			return nil, fmt.Errorf("failed to select task %s: %v", id, err)
		}
	}

	return &entity, nil
}

func (r taskRepository) Update(entity *internal.TaskEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
UPDATE
	task
SET
	assignee = $2,
	completed_at = $3,
	completed_by = $4
WHERE
	id = $1
`,
		entity.Id,

		entity.Assignee,
		entity.CompletedAt,
		entity.CompletedBy,
	); err != nil {
		return fmt.Errorf("failed to update task %s: %v", entity.Id, err)
	}

	return nil
}

func (r taskRepository) Query(criteria engine.TaskCriteria, options engine.QueryOptions) ([]engine.Task, error) {
	var sql bytes.Buffer
	if err := sqlTaskQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute task query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute task query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.Task, 0)
	for rows.Next() {
		var entity internal.TaskEntity
		if err := scanTask(rows, &entity); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %v", err)
		}

		results = append(results, entity.Task())
	}

	return results, nil
}

func scanTask(row pgx.Row, entity *internal.TaskEntity) error {
	return row.Scan(
		&entity.Id,

		&entity.ProcessDefinitionId,
		&entity.ProcessInstanceId,

		&entity.ActivityId,
		&entity.Assignee,
		&entity.CandidateGroups,
		&entity.CandidateUsers,
		&entity.CompletedAt,
		&entity.CompletedBy,
		&entity.CreatedAt,
		&entity.Description,
		&entity.DueAt,
		&entity.FollowUpAt,
		&entity.Name,
	)
}
