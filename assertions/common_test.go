package assertions

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/mem"
	"github.com/sebdah/goldie/v2"
)

const testWorkerId = "test-worker"

// recordingT records failures instead of failing the test, it is created for.
type recordingT struct {
	name string

	mutex    sync.Mutex
	cleanups []func()
	failed   bool
	messages []string
}

func newRecordingT(t *testing.T) *recordingT {
	return newRecordingTWithName(t, t.Name())
}

func newRecordingTWithName(t *testing.T, name string) *recordingT {
	rt := &recordingT{name: name}
	t.Cleanup(rt.cleanup)
	return rt
}

func (t *recordingT) Cleanup(f func()) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.cleanups = append(t.cleanups, f)
}

func (t *recordingT) Errorf(format string, args ...any) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.messages = append(t.messages, fmt.Sprintf(format, args...))
}

func (t *recordingT) FailNow() {
	t.mutex.Lock()
	t.failed = true
	t.mutex.Unlock()

	runtime.Goexit()
}

func (t *recordingT) Helper() {
}

func (t *recordingT) Name() string {
	return t.name
}

func (t *recordingT) cleanup() {
	t.mutex.Lock()
	cleanups := t.cleanups
	t.cleanups = nil
	t.mutex.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (t *recordingT) hasFailed() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.failed
}

// message returns the recorded failure message without stack trace and test name.
func (t *recordingT) message() string {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	message := strings.Join(t.messages, "\n")
	if i := strings.Index(message, "\nError Trace:"); i != -1 {
		message = message[:i]
	}
	return strings.TrimPrefix(message, "\n")
}

// run runs f in a separate goroutine, since FailNow stops the calling goroutine.
func (t *recordingT) run(f func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	<-done
}

func assertGolden(t *testing.T, name string, message string, replacements ...string) {
	message = strings.NewReplacer(replacements...).Replace(message)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(message+"\n"))
}

func mustCreateEngine(t *testing.T, customizers ...func(*mem.Options)) engine.Engine {
	e, err := mem.New(append([]func(*mem.Options){func(o *mem.Options) {
		o.Common.Registry = nil
	}}, customizers...)...)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(e.Shutdown)
	return e
}

func mustCreateProcessDefinition(t *testing.T, e engine.Engine, key string, activities ...engine.Activity) engine.ProcessDefinition {
	processDefinition, err := e.CreateProcessDefinition(context.Background(), engine.CreateProcessDefinitionCmd{
		Activities: activities,
		Key:        key,
		WorkerId:   testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create process definition: %v", err)
	}
	return processDefinition
}

func mustCreateProcessInstance(t *testing.T, e engine.Engine, key string, businessKey string, variables map[string]*engine.Data) engine.ProcessInstance {
	processInstance, err := e.CreateProcessInstance(context.Background(), engine.CreateProcessInstanceCmd{
		BusinessKey:          businessKey,
		ProcessDefinitionKey: key,
		Variables:            variables,
		WorkerId:             testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create process instance: %v", err)
	}
	return processInstance
}

func mustCreateCaseDefinition(t *testing.T, e engine.Engine, key string, planItems ...engine.PlanItem) engine.CaseDefinition {
	caseDefinition, err := e.CreateCaseDefinition(context.Background(), engine.CreateCaseDefinitionCmd{
		Key:       key,
		PlanItems: planItems,
		WorkerId:  testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create case definition: %v", err)
	}
	return caseDefinition
}

func mustCreateCaseInstance(t *testing.T, e engine.Engine, key string) engine.CaseInstance {
	caseInstance, err := e.CreateCaseInstance(context.Background(), engine.CreateCaseInstanceCmd{
		BusinessKey:       "claim-7",
		CaseDefinitionKey: key,
		WorkerId:          testWorkerId,
	})
	if err != nil {
		t.Fatalf("failed to create case instance: %v", err)
	}
	return caseInstance
}

func mustQueryCaseExecution(t *testing.T, e engine.Engine, caseInstanceId string, activityId string) engine.CaseExecution {
	results, err := e.CreateQuery().QueryCaseExecutions(context.Background(), engine.CaseExecutionCriteria{
		CaseInstanceId: caseInstanceId,
		ActivityId:     activityId,
	})
	if err != nil {
		t.Fatalf("failed to query case execution: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one case execution %s, but got %d", activityId, len(results))
	}
	return results[0]
}

func mustTransitionCaseExecution(t *testing.T, e engine.Engine, id string, transition engine.CaseTransition) {
	_, err := e.TransitionCaseExecution(context.Background(), engine.TransitionCaseExecutionCmd{
		Id:         id,
		Transition: transition,
	})
	if err != nil {
		t.Fatalf("failed to transition case execution: %v", err)
	}
}
