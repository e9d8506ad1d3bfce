package pg

import (
	"strings"
	"text/template"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

var (
	sqlTemplateFunctions = template.FuncMap{
		"joinInstanceState": joinInstanceState,
		"joinString":        joinString,
		"quoteString":       quoteString,
	}

	sqlActivityInstanceQuery  *template.Template = newSqlTemplate("activity_instance_query.sql")
	sqlCaseDefinitionQuery    *template.Template = newSqlTemplate("case_definition_query.sql")
	sqlCaseExecutionQuery     *template.Template = newSqlTemplate("case_execution_query.sql")
	sqlCaseInstanceQuery      *template.Template = newSqlTemplate("case_instance_query.sql")
	sqlJobQuery               *template.Template = newSqlTemplate("job_query.sql")
	sqlProcessDefinitionQuery *template.Template = newSqlTemplate("process_definition_query.sql")
	sqlProcessInstanceQuery   *template.Template = newSqlTemplate("process_instance_query.sql")
	sqlTaskQuery              *template.Template = newSqlTemplate("task_query.sql")
	sqlVariableQuery          *template.Template = newSqlTemplate("variable_query.sql")
)

func newSqlTemplate(name string) *template.Template {
	return template.Must(template.New(name).Funcs(sqlTemplateFunctions).ParseFS(resources, "sql/"+name))
}

func joinInstanceState(values []engine.InstanceState) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = quoteString(v.String())
	}
	return strings.Join(s, ",")
}

func joinString(values []string) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = quoteString(v)
	}
	return strings.Join(s, ",")
}

// copied from https://github.com/jackc/pgx/blob/v5.5.0/internal/sanitize/sanitize.go#L90
func quoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
