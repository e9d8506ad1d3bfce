package pg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func New(databaseUrl string, customizers ...func(*Options)) (engine.Engine, error) {
	if databaseUrl == "" {
		return nil, errors.New("database URL is empty")
	}

	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	pgPoolConfig, err := pgxpool.ParseConfig(databaseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %v", err)
	}

	if _, ok := pgPoolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		pgPoolConfig.ConnConfig.RuntimeParams["application_name"] = options.Common.EngineId
	}

	if databaseSchema, ok := pgPoolConfig.ConnConfig.RuntimeParams["search_path"]; ok {
		options.databaseSchema = databaseSchema
	}

	pgPoolCtx, pgPoolCancel := context.WithTimeout(context.Background(), options.Timeout)
	defer pgPoolCancel()

	pgPool, err := pgxpool.NewWithConfig(pgPoolCtx, pgPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %v", err)
	}

	pgCtxPoolSize := int(pgPoolConfig.MaxConns)
	pgCtxPool := make(chan *pgContext, pgCtxPoolSize)

	for i := 0; i < pgCtxPoolSize; i++ {
		pgCtxPool <- &pgContext{options: options}
	}

	acquireCtx, acquireCancel := context.WithCancel(context.Background())

	pgEngine := pgEngine{
		acquireCtx:    acquireCtx,
		acquireCancel: acquireCancel,

		logger: options.Common.Logger.With(zap.String("engineId", options.Common.EngineId)),

		defaultQueryLimit: options.Common.DefaultQueryLimit,
		engineId:          options.Common.EngineId,
		registry:          options.Common.Registry,

		pgCtxPool: pgCtxPool,
		pgPool:    pgPool,
		txTimeout: options.Timeout,
	}

	if err := pgEngine.migrateDatabase(); err != nil {
		pgEngine.Shutdown()
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	if pgEngine.registry != nil {
		if err := pgEngine.registry.Register(pgEngine.engineId, &pgEngine); err != nil {
			pgEngine.Shutdown()
			return nil, err
		}
	}

	return &pgEngine, nil
}

func NewOptions() Options {
	return Options{
		Common: engine.Options{
			DefaultQueryLimit: 1000,
			EngineId:          engine.DefaultEngineId,
			JobRetries:        3,
			Logger:            zap.NewNop(),
			Registry:          engine.DefaultRegistry,
		},

		Timeout: 30 * time.Second,

		databaseSchema: "public",
	}
}

type Options struct {
	Common engine.Options // Common engine options.

	Timeout time.Duration // Time limit for database transactions, utilized when the given context has no deadline.

	databaseSchema string // derived from database URL - see runtime parameter "search_path"
}

func (o Options) Validate() error {
	if err := o.Common.Validate(); err != nil {
		return err
	}
	if o.Timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	return nil
}

type pgEngine struct {
	acquireCtx    context.Context    // used to prevent the acquiring of a context, when the engine is shut down
	acquireCancel context.CancelFunc // invoked when a shutdown is initiated
	shutdownOnce  sync.Once          // used to prevent more than one shutdown

	logger *zap.Logger

	defaultQueryLimit int
	engineId          string
	registry          *engine.Registry

	pgCtxPool chan *pgContext
	pgPool    *pgxpool.Pool
	txTimeout time.Duration // utilized when the given context has no deadline

	offsetMutex sync.RWMutex  // guards offset and serializes SetTime calls
	offset      time.Duration // engine time offset
}

func (e *pgEngine) migrateDatabase() error {
	pgCtx, cancel, err := e.acquire(context.Background())
	if err != nil {
		return err
	}

	defer cancel()

	schemaVersion, err := migrateDatabase(pgCtx)
	if err != nil {
		return e.release(pgCtx, err)
	}

	e.logger.Debug("database migrated", zap.String("schema", pgCtx.options.databaseSchema), zap.String("version", schemaVersion))
	return e.release(pgCtx, nil)
}

// acquire takes a context from the pool and begins a transaction.
// If ctx has no deadline, the engine's transaction timeout is applied.
func (e *pgEngine) acquire(ctx context.Context) (*pgContext, context.CancelFunc, error) {
	now := time.Now()

	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); ok {
		ctx, cancel = context.WithCancel(ctx)
	} else {
		ctx, cancel = context.WithTimeout(ctx, e.txTimeout)
	}

	select {
	case <-e.acquireCtx.Done():
		cancel()
		return nil, nil, errors.New("engine is shut down")
	case <-ctx.Done():
		cancel()
		return nil, nil, ctx.Err()
	case pgCtx, ok := <-e.pgCtxPool:
		if !ok {
			cancel()
			return nil, nil, errors.New("engine is shut down")
		}

		tx, err := e.pgPool.Begin(ctx)
		if err != nil {
			e.pgCtxPool <- pgCtx
			cancel()
			return nil, nil, err
		}

		e.offsetMutex.RLock()
		offset := e.offset
		e.offsetMutex.RUnlock()

		// must be UTC and truncated to millis, since TIMESTAMP(3) is used
		// otherwise tests are flaky
		pgCtx.time = now.UTC().Add(offset).Truncate(time.Millisecond)

		pgCtx.tx = tx
		pgCtx.txCtx = ctx

		return pgCtx, cancel, nil
	}
}

// release commits the transaction, if err is nil. Otherwise the transaction is rolled back.
func (e *pgEngine) release(pgCtx *pgContext, err error) error {
	if err != nil {
		_ = pgCtx.tx.Rollback(pgCtx.txCtx)
		e.logger.Debug("transaction rolled back", zap.Error(err))
	} else {
		err = pgCtx.tx.Commit(pgCtx.txCtx)
	}

	pgCtx.tx = nil
	pgCtx.txCtx = nil

	e.pgCtxPool <- pgCtx
	return err
}

func (e *pgEngine) ClaimTask(ctx context.Context, cmd engine.ClaimTaskCmd) (engine.Task, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.Task{}, err
	}

	defer cancel()
	task, err := internal.ClaimTask(pgCtx, cmd)
	return task, e.release(pgCtx, err)
}

func (e *pgEngine) CompleteJob(ctx context.Context, cmd engine.CompleteJobCmd) (engine.Job, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.Job{}, err
	}

	defer cancel()
	job, err := internal.CompleteJob(pgCtx, cmd)
	return job, e.release(pgCtx, err)
}

func (e *pgEngine) CompleteTask(ctx context.Context, cmd engine.CompleteTaskCmd) (engine.Task, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.Task{}, err
	}

	defer cancel()
	task, err := internal.CompleteTask(pgCtx, cmd)
	return task, e.release(pgCtx, err)
}

func (e *pgEngine) CreateCaseDefinition(ctx context.Context, cmd engine.CreateCaseDefinitionCmd) (engine.CaseDefinition, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.CaseDefinition{}, err
	}

	defer cancel()
	caseDefinition, err := internal.CreateCaseDefinition(pgCtx, cmd)
	return caseDefinition, e.release(pgCtx, err)
}

func (e *pgEngine) CreateCaseInstance(ctx context.Context, cmd engine.CreateCaseInstanceCmd) (engine.CaseInstance, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.CaseInstance{}, err
	}

	defer cancel()
	caseInstance, err := internal.CreateCaseInstance(pgCtx, cmd)
	return caseInstance, e.release(pgCtx, err)
}

func (e *pgEngine) CreateProcessDefinition(ctx context.Context, cmd engine.CreateProcessDefinitionCmd) (engine.ProcessDefinition, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.ProcessDefinition{}, err
	}

	defer cancel()
	processDefinition, err := internal.CreateProcessDefinition(pgCtx, cmd)
	return processDefinition, e.release(pgCtx, err)
}

func (e *pgEngine) CreateProcessInstance(ctx context.Context, cmd engine.CreateProcessInstanceCmd) (engine.ProcessInstance, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.ProcessInstance{}, err
	}

	defer cancel()
	processInstance, err := internal.CreateProcessInstance(pgCtx, cmd)
	return processInstance, e.release(pgCtx, err)
}

func (e *pgEngine) CreateQuery() engine.Query {
	return &query{
		e: e,

		defaultQueryLimit: e.defaultQueryLimit,
		options:           engine.QueryOptions{Limit: e.defaultQueryLimit},
	}
}

func (e *pgEngine) ResumeProcessDefinition(ctx context.Context, cmd engine.ResumeProcessDefinitionCmd) error {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return err
	}

	defer cancel()
	return e.release(pgCtx, internal.ResumeProcessDefinition(pgCtx, cmd))
}

func (e *pgEngine) ResumeProcessInstance(ctx context.Context, cmd engine.ResumeProcessInstanceCmd) error {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return err
	}

	defer cancel()
	return e.release(pgCtx, internal.ResumeProcessInstance(pgCtx, cmd))
}

func (e *pgEngine) SetTime(_ context.Context, cmd engine.SetTimeCmd) error {
	e.offsetMutex.Lock()
	defer e.offsetMutex.Unlock()

	old := time.Now().UTC().Add(e.offset).Truncate(time.Millisecond)
	new := cmd.Time.UTC().Truncate(time.Millisecond)

	sub := new.Sub(old)
	if sub.Milliseconds() < 0 {
		return engine.Error{
			Type:  engine.ErrorConflict,
			Title: "failed to set time",
			Detail: fmt.Sprintf(
				"time %s is before engine time %s",
				new.Format(time.RFC3339),
				old.Format(time.RFC3339),
			),
		}
	}

	e.offset = e.offset + sub
	return nil
}

func (e *pgEngine) SetVariables(ctx context.Context, cmd engine.SetVariablesCmd) error {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return err
	}

	defer cancel()
	return e.release(pgCtx, internal.SetVariables(pgCtx, cmd))
}

func (e *pgEngine) SuspendProcessDefinition(ctx context.Context, cmd engine.SuspendProcessDefinitionCmd) error {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return err
	}

	defer cancel()
	return e.release(pgCtx, internal.SuspendProcessDefinition(pgCtx, cmd))
}

func (e *pgEngine) SuspendProcessInstance(ctx context.Context, cmd engine.SuspendProcessInstanceCmd) error {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return err
	}

	defer cancel()
	return e.release(pgCtx, internal.SuspendProcessInstance(pgCtx, cmd))
}

func (e *pgEngine) TerminateProcessInstance(ctx context.Context, cmd engine.TerminateProcessInstanceCmd) error {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return err
	}

	defer cancel()
	return e.release(pgCtx, internal.TerminateProcessInstance(pgCtx, cmd))
}

func (e *pgEngine) TransitionCaseExecution(ctx context.Context, cmd engine.TransitionCaseExecutionCmd) (engine.CaseExecution, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.CaseExecution{}, err
	}

	defer cancel()
	caseExecution, err := internal.TransitionCaseExecution(pgCtx, cmd)
	return caseExecution, e.release(pgCtx, err)
}

func (e *pgEngine) TransitionCaseInstance(ctx context.Context, cmd engine.TransitionCaseInstanceCmd) (engine.CaseInstance, error) {
	pgCtx, cancel, err := e.acquire(ctx)
	if err != nil {
		return engine.CaseInstance{}, err
	}

	defer cancel()
	caseInstance, err := internal.TransitionCaseInstance(pgCtx, cmd)
	return caseInstance, e.release(pgCtx, err)
}

func (e *pgEngine) Shutdown() {
	e.shutdownOnce.Do(func() {
		if e.registry != nil {
			e.registry.Unregister(e.engineId, e)
		}

		e.acquireCancel()
		e.pgPool.Close()

		for len(e.pgCtxPool) > 0 {
			<-e.pgCtxPool
		}

		close(e.pgCtxPool)

		e.logger.Debug("engine shut down")
	})
}
