package pg

import (
	"context"
	"testing"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("returns error when database URL is empty", func(t *testing.T) {
		_, err := New("")
		assert.NotNil(t, err)
	})

	t.Run("returns error when timeout is invalid", func(t *testing.T) {
		_, err := New("postgres://localhost:5432/test", func(o *Options) {
			o.Timeout = 0
		})
		assert.NotNil(t, err)
	})
}

func TestMigrateDatabase(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	e := mustCreateEngine(t)
	defer e.Shutdown()

	pgEngine := e.(*pgEngine)

	pgCtx, cancel, err := pgEngine.acquire(context.Background())
	require.Nil(err)

	defer cancel()

	// when
	schemaVersion, err := selectSchemaVersion(pgCtx)
	require.Nil(err)

	var tableCount int
	row := pgCtx.tx.QueryRow(pgCtx.txCtx, "SELECT count(*) FROM information_schema.tables WHERE table_schema = $1", pgCtx.options.databaseSchema)
	err = row.Scan(&tableCount)

	// then
	require.Nil(pgEngine.release(pgCtx, err))

	assert.Equal("1.0.0", schemaVersion)
	assert.Equal(len(Tables), tableCount)

	// when migrated again
	pgCtx, cancel, err = pgEngine.acquire(context.Background())
	require.Nil(err)

	defer cancel()

	schemaVersion, err = migrateDatabase(pgCtx)

	// then
	require.Nil(pgEngine.release(pgCtx, err))
	assert.Equal("1.0.0", schemaVersion)
}

func TestSetTime(t *testing.T) {
	assert := assert.New(t)

	e := mustCreateEngine(t)
	defer e.Shutdown()

	t.Run("returns error when time is before engine time", func(t *testing.T) {
		err := e.SetTime(context.Background(), engine.SetTimeCmd{})
		assert.IsTypef(engine.Error{}, err, "expected engine error")

		engineErr := err.(engine.Error)
		assert.Equal(engine.ErrorConflict, engineErr.Type)
	})

	t.Run("set time", func(t *testing.T) {
		// given
		newTime := time.Now().AddDate(0, 0, 7).UTC()

		// when
		err := e.SetTime(context.Background(), engine.SetTimeCmd{Time: newTime})

		// then
		assert.Nil(err)

		processDefinition := mustCreateProcessDefinition(t, e, "setTime", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})
		assert.False(processDefinition.CreatedAt.Before(newTime.Truncate(time.Millisecond)))

		// when called again
		time.Sleep(time.Millisecond * 10)
		err = e.SetTime(context.Background(), engine.SetTimeCmd{Time: newTime})

		// then
		assert.IsTypef(engine.Error{}, err, "expected engine error")

		engineErr := err.(engine.Error)
		assert.Equal(engine.ErrorConflict, engineErr.Type)
	})
}

func TestFailedCommandIsRolledBack(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	e := mustCreateEngine(t)
	defer e.Shutdown()

	// given
	mustCreateProcessDefinition(t, e, "caller", engine.Activity{
		Id:                         "callActivity",
		Type:                       engine.ActivityCallActivity,
		CalledProcessDefinitionKey: "unknown",
	})

	// when
	_, err := e.CreateProcessInstance(context.Background(), engine.CreateProcessInstanceCmd{
		ProcessDefinitionKey: "caller",
		WorkerId:             "test",
	})

	// then
	require.IsType(engine.Error{}, err)
	assert.Equal(engine.ErrorNotFound, err.(engine.Error).Type)

	processInstances, err := e.CreateQuery().QueryProcessInstances(context.Background(), engine.ProcessInstanceCriteria{})
	require.Nil(err)
	assert.Empty(processInstances)
}

func TestShutdown(t *testing.T) {
	assert := assert.New(t)

	e := mustCreateEngine(t)

	// when
	e.Shutdown()

	// then
	_, err := e.CreateProcessDefinition(context.Background(), engine.CreateProcessDefinitionCmd{
		Activities: []engine.Activity{{Id: "userTask", Type: engine.ActivityUserTask}},
		Key:        "shutdown",
		WorkerId:   "test",
	})
	assert.ErrorContains(err, "engine is shut down")
}
