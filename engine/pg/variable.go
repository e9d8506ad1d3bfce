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

// variableRepository stores the scope IDs as empty strings, when not set, since they are part of the primary key.
type variableRepository struct {
	tx    pgx.Tx
	txCtx context.Context
}

func (r variableRepository) Delete(entity *internal.VariableEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
DELETE FROM
	variable
WHERE
	case_instance_id = $1 AND
	process_instance_id = $2 AND
	name = $3
`,
		entity.CaseInstanceId.String,
		entity.ProcessInstanceId.String,
		entity.Name,
	); err != nil {
		return fmt.Errorf("failed to delete variable %s: %v", entity.Name, err)
	}

	return nil
}

func (r variableRepository) Upsert(entity *internal.VariableEntity) error {
	if _, err := r.tx.Exec(r.txCtx, `
INSERT INTO variable (
	case_instance_id,
	process_instance_id,

	created_at,
	created_by,
	encoding,
	name,
	updated_at,
	updated_by,
	value
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
) ON CONFLICT (case_instance_id, process_instance_id, name) DO UPDATE SET
	encoding = EXCLUDED.encoding,
	updated_at = EXCLUDED.updated_at,
	updated_by = EXCLUDED.updated_by,
	value = EXCLUDED.value
`,
		entity.CaseInstanceId.String,
		entity.ProcessInstanceId.String,

		entity.CreatedAt,
		entity.CreatedBy,
		entity.Encoding,
		entity.Name,
		entity.UpdatedAt,
		entity.UpdatedBy,
		entity.Value,
	); err != nil {
		return fmt.Errorf("failed to upsert variable %s: %v", entity.Name, err)
	}

	return nil
}

func (r variableRepository) Query(criteria engine.VariableCriteria, options engine.QueryOptions) ([]engine.Variable, error) {
	var sql bytes.Buffer
	if err := sqlVariableQuery.Execute(&sql, map[string]any{
		"c": criteria,
		"o": options,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute variable query template: %v", err)
	}

	rows, err := r.tx.Query(r.txCtx, sql.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute variable query: %v", err)
	}

	defer rows.Close()

	results := make([]engine.Variable, 0)
	for rows.Next() {
		var (
			entity                 internal.VariableEntity
			caseInstanceIdValue    string
			processInstanceIdValue string
		)

		if err := rows.Scan(
			&caseInstanceIdValue,
			&processInstanceIdValue,

			&entity.CreatedAt,
			&entity.CreatedBy,
			&entity.Encoding,
			&entity.Name,
			&entity.UpdatedAt,
			&entity.UpdatedBy,
			&entity.Value,
		); err != nil {
			return nil, fmt.Errorf("failed to scan variable row: %v", err)
		}

		entity.CaseInstanceId = pgtype.Text{String: caseInstanceIdValue, Valid: caseInstanceIdValue != ""}
		entity.ProcessInstanceId = pgtype.Text{String: processInstanceIdValue, Valid: processInstanceIdValue != ""}

		results = append(results, entity.Variable())
	}

	return results, nil
}
