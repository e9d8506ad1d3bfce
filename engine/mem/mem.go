package mem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/internal"
	"go.uber.org/zap"
)

func New(customizers ...func(*Options)) (engine.Engine, error) {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	memEngine := memEngine{
		ctx:    newMemContext(options),
		logger: options.Common.Logger.With(zap.String("engineId", options.Common.EngineId)),

		defaultQueryLimit: options.Common.DefaultQueryLimit,
		registry:          options.Common.Registry,
	}

	if memEngine.registry != nil {
		if err := memEngine.registry.Register(options.Common.EngineId, &memEngine); err != nil {
			return nil, err
		}
	}

	memEngine.logger.Debug("engine created")
	return &memEngine, nil
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
	}
}

type Options struct {
	Common engine.Options // Common options
}

func (o Options) Validate() error {
	return o.Common.Validate()
}

type memEngine struct {
	ctxMutex sync.RWMutex
	ctx      *memContext
	snapshot repositories // state before the current write, restored when a command fails

	logger *zap.Logger

	defaultQueryLimit int
	registry          *engine.Registry

	offset time.Duration
}

func (e *memEngine) ClaimTask(_ context.Context, cmd engine.ClaimTaskCmd) (engine.Task, error) {
	defer e.unlock()
	task, err := internal.ClaimTask(e.wlock(), cmd)
	return task, e.done("claim task", err)
}

func (e *memEngine) CompleteJob(_ context.Context, cmd engine.CompleteJobCmd) (engine.Job, error) {
	defer e.unlock()
	job, err := internal.CompleteJob(e.wlock(), cmd)
	return job, e.done("complete job", err)
}

func (e *memEngine) CompleteTask(_ context.Context, cmd engine.CompleteTaskCmd) (engine.Task, error) {
	defer e.unlock()
	task, err := internal.CompleteTask(e.wlock(), cmd)
	return task, e.done("complete task", err)
}

func (e *memEngine) CreateCaseDefinition(_ context.Context, cmd engine.CreateCaseDefinitionCmd) (engine.CaseDefinition, error) {
	defer e.unlock()
	caseDefinition, err := internal.CreateCaseDefinition(e.wlock(), cmd)
	return caseDefinition, e.done("create case definition", err)
}

func (e *memEngine) CreateCaseInstance(_ context.Context, cmd engine.CreateCaseInstanceCmd) (engine.CaseInstance, error) {
	defer e.unlock()
	caseInstance, err := internal.CreateCaseInstance(e.wlock(), cmd)
	return caseInstance, e.done("create case instance", err)
}

func (e *memEngine) CreateProcessDefinition(_ context.Context, cmd engine.CreateProcessDefinitionCmd) (engine.ProcessDefinition, error) {
	defer e.unlock()
	processDefinition, err := internal.CreateProcessDefinition(e.wlock(), cmd)
	return processDefinition, e.done("create process definition", err)
}

func (e *memEngine) CreateProcessInstance(_ context.Context, cmd engine.CreateProcessInstanceCmd) (engine.ProcessInstance, error) {
	defer e.unlock()
	processInstance, err := internal.CreateProcessInstance(e.wlock(), cmd)
	return processInstance, e.done("create process instance", err)
}

func (e *memEngine) CreateQuery() engine.Query {
	return &query{
		e: e,

		defaultQueryLimit: e.defaultQueryLimit,
		options:           engine.QueryOptions{Limit: e.defaultQueryLimit},
	}
}

func (e *memEngine) ResumeProcessDefinition(_ context.Context, cmd engine.ResumeProcessDefinitionCmd) error {
	defer e.unlock()
	return e.done("resume process definition", internal.ResumeProcessDefinition(e.wlock(), cmd))
}

func (e *memEngine) ResumeProcessInstance(_ context.Context, cmd engine.ResumeProcessInstanceCmd) error {
	defer e.unlock()
	return e.done("resume process instance", internal.ResumeProcessInstance(e.wlock(), cmd))
}

func (e *memEngine) SetTime(_ context.Context, cmd engine.SetTimeCmd) error {
	defer e.unlock()
	ctx := e.wlock()

	old := ctx.Time()
	new := cmd.Time.UTC().Truncate(time.Millisecond)

	sub := new.Sub(old)
	if sub.Milliseconds() < 0 {
		return e.done("set time", engine.Error{
			Type:  engine.ErrorConflict,
			Title: "failed to set time",
			Detail: fmt.Sprintf(
				"time %s is before engine time %s",
				new.Format(time.RFC3339),
				old.Format(time.RFC3339),
			),
		})
	}

	e.offset = e.offset + sub
	return e.done("set time", nil)
}

func (e *memEngine) SetVariables(_ context.Context, cmd engine.SetVariablesCmd) error {
	defer e.unlock()
	return e.done("set variables", internal.SetVariables(e.wlock(), cmd))
}

func (e *memEngine) SuspendProcessDefinition(_ context.Context, cmd engine.SuspendProcessDefinitionCmd) error {
	defer e.unlock()
	return e.done("suspend process definition", internal.SuspendProcessDefinition(e.wlock(), cmd))
}

func (e *memEngine) SuspendProcessInstance(_ context.Context, cmd engine.SuspendProcessInstanceCmd) error {
	defer e.unlock()
	return e.done("suspend process instance", internal.SuspendProcessInstance(e.wlock(), cmd))
}

func (e *memEngine) TerminateProcessInstance(_ context.Context, cmd engine.TerminateProcessInstanceCmd) error {
	defer e.unlock()
	return e.done("terminate process instance", internal.TerminateProcessInstance(e.wlock(), cmd))
}

func (e *memEngine) TransitionCaseExecution(_ context.Context, cmd engine.TransitionCaseExecutionCmd) (engine.CaseExecution, error) {
	defer e.unlock()
	caseExecution, err := internal.TransitionCaseExecution(e.wlock(), cmd)
	return caseExecution, e.done("transition case execution", err)
}

func (e *memEngine) TransitionCaseInstance(_ context.Context, cmd engine.TransitionCaseInstanceCmd) (engine.CaseInstance, error) {
	defer e.unlock()
	caseInstance, err := internal.TransitionCaseInstance(e.wlock(), cmd)
	return caseInstance, e.done("transition case instance", err)
}

func (e *memEngine) Shutdown() {
	if e.registry != nil {
		e.registry.Unregister(e.ctx.options.Common.EngineId, e)
	}

	e.ctxMutex.Lock()
	defer e.ctxMutex.Unlock()

	e.ctx.clear()
	e.logger.Debug("engine shut down")
}

// done must be called by a command, holding the write lock. It restores the state before a failed write and logs the command result.
func (e *memEngine) done(command string, err error) error {
	if err == nil {
		e.logger.Debug("command executed", zap.String("command", command))
		return nil
	}

	e.ctx.repositories = e.snapshot

	e.logger.Debug("command failed", zap.String("command", command), zap.Error(err))
	return err
}

// rlock is used by queries, which do not depend on the engine time.
func (e *memEngine) rlock() *memContext {
	e.ctxMutex.RLock()
	return e.ctx
}

func (e *memEngine) runlock() {
	e.ctxMutex.RUnlock()
}

func (e *memEngine) wlock() *memContext {
	now := time.Now()

	e.ctxMutex.Lock()
	e.snapshot = e.ctx.repositories.clone()

	// must be UTC and truncated to millis (see engine/pg/pg.go:pgEngine#acquire)
	e.ctx.time = now.UTC().Add(e.offset).Truncate(time.Millisecond)

	return e.ctx
}

func (e *memEngine) unlock() {
	e.snapshot = repositories{}
	e.ctxMutex.Unlock()
}
