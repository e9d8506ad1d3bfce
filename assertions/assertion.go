package assertions

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"slices"
	"sort"
	"strings"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

const (
	kindCaseDefinition    = "case definition"
	kindCaseExecution     = "case execution"
	kindCaseInstance      = "case instance"
	kindCaseTask          = "case task"
	kindHumanTask         = "human task"
	kindJob               = "job"
	kindMilestone         = "milestone"
	kindProcessDefinition = "process definition"
	kindProcessInstance   = "process instance"
	kindProcessTask       = "process task"
	kindStage             = "stage"
	kindTask              = "task"
)

// assertion is the state, shared by all wrappers: the test, the engine query, the chain and the wrapped entity.
type assertion struct {
	t     T
	q     engine.Query
	chain *chain
	kind  string
	id    string
}

// start resolves the engine of the test and starts a new chain.
func start(t T, kind string, id string) *assertion {
	t.Helper()

	state, err := resolveState(t)
	if err != nil {
		fail(t, err, nil)
		return nil
	}

	c := &chain{}

	bindings.mutex.Lock()
	state.chain = c
	bindings.mutex.Unlock()

	return &assertion{t: t, q: newUnlimitedQuery(state.engine), chain: c, kind: kind, id: id}
}

// newUnlimitedQuery creates a query, which is not capped by the engine's default query limit.
// Navigations and counts must see every match.
func newUnlimitedQuery(e engine.Engine) engine.Query {
	q := e.CreateQuery()
	q.SetOptions(engine.QueryOptions{Limit: math.MaxInt32})
	return q
}

// child creates the assertion of a navigated sub-entity, which continues the chain.
func (a *assertion) child(kind string, id string) *assertion {
	return &assertion{t: a.t, q: a.q, chain: a.chain, kind: kind, id: id}
}

// check records the outcome of a predicate and fails the test, if err is not nil.
func (a *assertion) check(predicate string, err error) {
	a.t.Helper()

	a.chain.record(Entry{Kind: a.kind, Id: a.id, Predicate: predicate, Passed: err == nil})
	if err == nil {
		return
	}

	var failure *Failure
	if errors.As(err, &failure) {
		failure.Predicate = predicate
	}

	fail(a.t, err, a.chain)
}

func (a *assertion) mismatch(expected string, actual string) *Failure {
	return &Failure{Kind: a.kind, Id: a.id, Expected: expected, Actual: actual}
}

func (a *assertion) queryError(err error) error {
	return fmt.Errorf("failed to query %s %s: %v", a.kind, a.id, err)
}

func (a *assertion) notFound() error {
	return fmt.Errorf("failed to query %s %s: not found", a.kind, a.id)
}

// single returns a NavigationError, unless exactly one sub-entity has been found.
func (a *assertion) single(kind string, selector string, count int) error {
	if count == 1 {
		return nil
	}
	return &NavigationError{
		Kind:     kind,
		Parent:   a.kind + " " + a.id,
		Selector: selector,
		Count:    count,
	}
}

func (a *assertion) expectState(expected engine.InstanceState, actual engine.InstanceState) error {
	if actual == expected {
		return nil
	}
	return a.mismatch("to be "+expected.String(), actual.String())
}

// hasVariables checks that the scope has the given variables or any, if no names are given.
func (a *assertion) hasVariables(variables []engine.Variable, err error, names []string) error {
	if err != nil {
		return a.queryError(err)
	}

	actual := make([]string, len(variables))
	for i, variable := range variables {
		actual[i] = variable.Name
	}
	slices.Sort(actual)

	if len(names) == 0 {
		if len(variables) == 0 {
			return a.mismatch("to have variables", "none")
		}
		return nil
	}

	for _, name := range names {
		if !slices.Contains(actual, name) {
			return a.mismatch("to have variables "+list(names), list(actual))
		}
	}
	return nil
}

func (a *assertion) hasNoVariables(variables []engine.Variable, err error) error {
	if err != nil {
		return a.queryError(err)
	}
	if len(variables) == 0 {
		return nil
	}

	actual := make([]string, len(variables))
	for i, variable := range variables {
		actual[i] = variable.Name
	}
	slices.Sort(actual)

	return a.mismatch("to have no variables", list(actual))
}

// fail reports an error via the failure channel of the test and stops its execution.
func fail(t T, err error, c *chain) {
	t.Helper()

	data := map[string]string{
		"Error Trace": string(debug.Stack()),
		"Error":       err.Error(),
		"Test":        t.Name(),
	}

	if c != nil {
		rendered := c.render()
		if rendered != "" {
			data["Assertions"] = "\n\t" + strings.ReplaceAll(rendered, "\n", "\n\t")
		}

		var failure *Failure
		if errors.As(err, &failure) {
			failure.Chain = rendered
		}
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if v := data[k]; strings.HasPrefix(v, "\n") {
			sb.WriteString(fmt.Sprintf("\n%s:%s", k, v))
		} else {
			sb.WriteString(fmt.Sprintf("\n%s: %s", k, v))
		}
	}

	t.Errorf("%s", sb.String())
	t.FailNow()
}

// list formats strings as a bracketed, comma separated list.
func list(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}
