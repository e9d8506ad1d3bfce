package cli

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/gclaussn/go-bpmn-assert/assertions"
	"github.com/gclaussn/go-bpmn-assert/engine"
	"go.uber.org/zap"
)

// checkT implements [assertions.T] for a single check, executed by [runCheck].
type checkT struct {
	name string

	cleanups []func()
	failed   bool
	messages []string
}

func (t *checkT) Cleanup(f func()) {
	t.cleanups = append(t.cleanups, f)
}

func (t *checkT) Errorf(format string, args ...any) {
	t.messages = append(t.messages, fmt.Sprintf(format, args...))
}

func (t *checkT) FailNow() {
	t.failed = true
	runtime.Goexit()
}

func (t *checkT) Helper() {
}

func (t *checkT) Name() string {
	return t.name
}

// fatalf fails the check with a message, which is formatted like an assertion failure.
func (t *checkT) fatalf(format string, args ...any) {
	t.Errorf("\nError: "+format, args...)
	t.FailNow()
}

func (t *checkT) cleanup() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
	t.cleanups = nil
}

// message returns the failure messages, with stack traces removed.
func (t *checkT) message() string {
	var sb strings.Builder
	for _, message := range t.messages {
		message, _, _ = strings.Cut(message, "\nError Trace:")
		sb.WriteString(strings.TrimPrefix(message, "\n"))
		sb.WriteRune('\n')
	}
	return sb.String()
}

type checkResult struct {
	name    string
	passed  bool
	message string
}

// runCheck selects the entity of a check and applies the expected steps in order.
//
// The check runs in its own goroutine, since a failing step stops the goroutine via [checkT.FailNow].
func runCheck(e engine.Engine, logger *zap.Logger, name string, c check) checkResult {
	t := &checkT{name: name}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				t.failed = true
				t.Errorf("\nError: %v", r)
			}
		}()

		assertions.Init(t, e)

		current := selectEntity(t, e, c)
		for _, s := range c.Expect {
			logger.Debug("applying step", zap.String("check", name), zap.String("step", s.String()))
			current = applyStep(t, current, s)
		}
	}()
	<-done

	t.cleanup()

	return checkResult{name: name, passed: !t.failed, message: t.message()}
}

// selectEntity queries the entity, a check is selecting, and wraps it.
func selectEntity(t *checkT, e engine.Engine, c check) any {
	ctx := context.Background()
	q := e.CreateQuery()
	q.SetOptions(engine.QueryOptions{Limit: math.MaxInt32}) // all matches must be counted

	switch {
	case c.ProcessDefinition != nil:
		sel := c.ProcessDefinition
		results, err := q.QueryProcessDefinitions(ctx, engine.ProcessDefinitionCriteria{Key: sel.Key, Version: sel.Version})
		if err != nil {
			t.fatalf("failed to query process definitions: %v", err)
		}
		if len(results) == 0 {
			t.fatalf("no process definition matches key %q and version %d", sel.Key, sel.Version)
		}
		latest := results[0]
		for _, result := range results[1:] {
			if result.Version > latest.Version {
				latest = result
			}
		}
		return assertions.ProcessDefinition(t, latest)
	case c.ProcessInstance != nil:
		sel := c.ProcessInstance
		criteria := engine.ProcessInstanceCriteria{
			BusinessKey:          sel.BusinessKey,
			ProcessDefinitionKey: sel.ProcessDefinitionKey,
			States:               mapState(t, sel.State),
		}
		results, err := q.QueryProcessInstances(ctx, criteria)
		if err != nil {
			t.fatalf("failed to query process instances: %v", err)
		}
		mustBeSingle(t, "process instance", *sel, len(results))
		return assertions.ProcessInstance(t, results[0])
	case c.CaseDefinition != nil:
		sel := c.CaseDefinition
		results, err := q.QueryCaseDefinitions(ctx, engine.CaseDefinitionCriteria{Key: sel.Key, Version: sel.Version})
		if err != nil {
			t.fatalf("failed to query case definitions: %v", err)
		}
		if len(results) == 0 {
			t.fatalf("no case definition matches key %q and version %d", sel.Key, sel.Version)
		}
		latest := results[0]
		for _, result := range results[1:] {
			if result.Version > latest.Version {
				latest = result
			}
		}
		return assertions.CaseDefinition(t, latest)
	default:
		sel := c.CaseInstance
		criteria := engine.CaseInstanceCriteria{
			BusinessKey:       sel.BusinessKey,
			CaseDefinitionKey: sel.CaseDefinitionKey,
			States:            mapState(t, sel.State),
		}
		results, err := q.QueryCaseInstances(ctx, criteria)
		if err != nil {
			t.fatalf("failed to query case instances: %v", err)
		}
		mustBeSingle(t, "case instance", *sel, len(results))
		return assertions.CaseInstance(t, results[0])
	}
}

func mapState(t *checkT, s string) []engine.InstanceState {
	if s == "" {
		return nil
	}

	state := engine.MapInstanceState(s)
	if state == 0 {
		t.fatalf("invalid state %q", s)
	}
	return []engine.InstanceState{state}
}

func mustBeSingle(t *checkT, kind string, selector any, count int) {
	switch count {
	case 0:
		t.fatalf("no %s matches %+v", kind, selector)
	case 1:
	default:
		t.fatalf("expected exactly one %s to match %+v, but found %d", kind, selector, count)
	}
}
