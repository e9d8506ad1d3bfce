package pg

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var Tables = []string{
	"activity_instance",
	"case_definition",
	"case_execution",
	"case_instance",
	"job",
	"process_definition",
	"process_instance",
	"task",
	"variable",
}

//go:embed ddl migration sql
var resources embed.FS

// migrateDatabase creates all tables, if the schema has no version yet.
// The schema version is stored as comment on table process_definition.
func migrateDatabase(ctx *pgContext) (string, error) {
	b, err := resources.ReadFile("migration/version.txt")
	if err != nil {
		return "", fmt.Errorf("failed to read resource migration/version.txt: %v", err)
	}

	versions := make([]string, 0, 1)

	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		versions = append(versions, scanner.Text())
	}

	schemaVersion, err := selectSchemaVersion(ctx)
	if err != nil {
		return "", err
	}

	if schemaVersion != "" {
		return schemaVersion, nil
	}

	ddl, err := resources.ReadDir("ddl")
	if err != nil {
		return "", fmt.Errorf("failed to list resources under ddl: %v", err)
	}

	for _, entry := range ddl {
		if entry.IsDir() {
			continue
		}

		name := "ddl/" + entry.Name()
		b, err := resources.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("failed to read resource %s: %v", name, err)
		}

		if _, err := ctx.tx.Exec(ctx.txCtx, string(b)); err != nil {
			return "", fmt.Errorf("failed to execute %s: %v", name, err)
		}
	}

	schemaVersion = versions[len(versions)-1]

	commentOnTable := fmt.Sprintf("COMMENT ON TABLE process_definition IS %s", quoteString(schemaVersion))
	if _, err := ctx.tx.Exec(ctx.txCtx, commentOnTable); err != nil {
		return "", fmt.Errorf("failed to set schema version: %v", err)
	}

	return schemaVersion, nil
}

func selectSchemaVersion(ctx *pgContext) (string, error) {
	row := ctx.tx.QueryRow(ctx.txCtx, `
SELECT
	description
FROM
	pg_description
INNER JOIN
	pg_class
ON
	pg_description.objoid = pg_class.oid
INNER JOIN
	pg_namespace
ON
	pg_class.relnamespace = pg_namespace.oid
WHERE
	nspname = $1 AND
	relname = $2
`, ctx.options.databaseSchema, "process_definition")

	var schemaVersion string
	if err := row.Scan(&schemaVersion); err != nil {
		if err != pgx.ErrNoRows {
			return "", fmt.Errorf("failed to select schema version: %v", err)
		}
	}

	return schemaVersion, nil
}
