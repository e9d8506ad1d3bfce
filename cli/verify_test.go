package cli

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t)

		// when
		out, err := execute(e, "verify", "--mem", "--file", "testdata/order.yaml")

		// then
		assert.NoError(err)
		assert.NotContains(out, "--- FAIL")
		assert.Contains(out, "order approval   order is waiting for approval   PASS")
		assert.Contains(out, "order approval   #5 ")
		assert.Contains(out, "PASS: 6 checks passed")
	})

	t.Run("fails", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)

		// given
		e := mustCreateEngine(t)

		// when
		out, err := execute(e, "verify", "--mem", "-f", "testdata/failing.yaml")

		// then
		assert.EqualError(err, "3 checks failed")

		processInstances, qErr := e.CreateQuery().QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{BusinessKey: "order-2"})
		require.NoError(qErr)
		require.Len(processInstances, 1)

		processInstanceId := processInstances[0].Id

		assert.Contains(out, "--- FAIL: failing/wrong business key\n"+
			"    Assertions:\n"+
			"    \tprocess instance "+processInstanceId+": HasBusinessKey(\"order-3\") failed\n"+
			"    Error: expected process instance "+processInstanceId+" to have business key \"order-3\", but was \"order-2\"\n",
		)
		assert.Contains(out, "--- FAIL: failing/not existing\n"+
			"    Error: no process instance matches {BusinessKey:order-4 ProcessDefinitionKey: State:}\n",
		)
		assert.Contains(out, "--- FAIL: failing/unknown step\n"+
			"    Error: unknown step hasCandidates (line 25) for process instance\n",
		)
		assert.NotContains(out, "--- FAIL: failing/passes")
		assert.Contains(out, "FAIL: 3 of 4 checks failed")
	})

	t.Run("runs multiple files against the same engine", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t)

		// when
		out, err := execute(e, "verify", "--mem", "-f", "testdata/order.yaml", "-f", "testdata/failing.yaml")

		// then
		assert.Error(err)
		assert.Contains(out, "FAIL: 3 of 10 checks failed")
		assert.NotContains(out, "--- FAIL: order approval")
		assert.Contains(out, "--- FAIL: failing/wrong business key\n"+
			"    Error: expected exactly one process instance to match {BusinessKey: ProcessDefinitionKey:order State:}, but found 2\n",
		)
	})

	t.Run("selects from all matches beyond query limit", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t, func(o *mem.Options) {
			o.Common.DefaultQueryLimit = 1
		})

		// when
		out, err := execute(e, "verify", "--mem", "-f", "testdata/order.yaml", "-f", "testdata/failing.yaml")

		// then
		assert.Error(err)
		assert.Contains(out, "FAIL: 3 of 10 checks failed")
		assert.Contains(out, "but found 2\n")
	})

	t.Run("requires file", func(t *testing.T) {
		assert := assert.New(t)

		_, err := execute(mustCreateEngine(t), "verify", "--mem")
		assert.ErrorContains(err, `required flag(s) "file" not set`)
	})

	t.Run("requires database URL or mem", func(t *testing.T) {
		assert := assert.New(t)

		_, err := execute(nil, "verify", "--file", "testdata/order.yaml")
		assert.ErrorContains(err, "no database URL set")
	})

	t.Run("rejects database URL and mem", func(t *testing.T) {
		assert := assert.New(t)

		_, err := execute(nil, "verify", "--mem", "--database-url", "postgres://localhost/test", "--file", "testdata/order.yaml")
		assert.ErrorContains(err, "none of the others can be")
	})

	t.Run("fails when setup fails", func(t *testing.T) {
		assert := assert.New(t)

		// given
		path := mustWriteFile(t, `
name: setup
setup:
  processInstances:
    - definitionKey: not-existing
checks:
  - processDefinition:
      key: not-existing
`)

		// when
		_, err := execute(mustCreateEngine(t), "verify", "--mem", "--file", path)

		// then
		assert.ErrorContains(err, "scenario setup: failed to create process instance of not-existing")
	})
}
