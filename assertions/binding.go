package assertions

import (
	"strings"
	"sync"

	"github.com/gclaussn/go-bpmn-assert/engine"
)

// T is the subset of [testing.TB], used by assertions to fail a test.
//
// FailNow must stop the execution of the calling goroutine, as [testing.T.FailNow] does.
type T interface {
	Cleanup(func())
	Errorf(format string, args ...any)
	FailNow()
	Helper()
	Name() string
}

type boundState struct {
	engine engine.Engine
	chain  *chain // chain of the last top-level assertion statement
}

var bindings = struct {
	mutex      sync.Mutex
	states     map[string]*boundState
	registries map[string]*engine.Registry
}{
	states:     make(map[string]*boundState),
	registries: make(map[string]*engine.Registry),
}

// Init binds an engine to the test. Subtests inherit the binding, unless they bind an engine themselves.
// The binding is released, when the test finishes.
//
// A nil engine leaves the test unbound, so that the engine is resolved as if Init had not been called.
func Init(t T, e engine.Engine) {
	bindings.mutex.Lock()
	defer bindings.mutex.Unlock()

	if e == nil {
		delete(bindings.states, t.Name())
		return
	}

	bind(t, e)
}

// Engine returns the engine, bound to the test.
//
// If no engine is bound, the engine registry is consulted: when exactly one engine is registered, it is bound and returned.
// Otherwise the test fails with a [BindingError].
func Engine(t T) engine.Engine {
	t.Helper()

	e, err := resolve(t)
	if err != nil {
		fail(t, err, nil)
	}
	return e
}

// Reset releases the engine binding of the test and clears its assertion chain.
func Reset(t T) {
	bindings.mutex.Lock()
	defer bindings.mutex.Unlock()

	delete(bindings.states, t.Name())
}

// UseRegistry replaces [engine.DefaultRegistry] as the registry, consulted when the test or one of its subtests resolves an engine.
func UseRegistry(t T, registry *engine.Registry) {
	bindings.mutex.Lock()
	defer bindings.mutex.Unlock()

	name := t.Name()
	bindings.registries[name] = registry

	t.Cleanup(func() {
		bindings.mutex.Lock()
		defer bindings.mutex.Unlock()

		delete(bindings.registries, name)
	})
}

// LastAssertions returns the assertions of the last top-level statement, evaluated within the test.
func LastAssertions(t T) []Entry {
	bindings.mutex.Lock()
	defer bindings.mutex.Unlock()

	state, ok := bindings.states[t.Name()]
	if !ok || state.chain == nil {
		return nil
	}
	return state.chain.list()
}

// bind must be called with the mutex held.
func bind(t T, e engine.Engine) *boundState {
	name := t.Name()

	state := &boundState{engine: e}
	bindings.states[name] = state

	t.Cleanup(func() {
		bindings.mutex.Lock()
		defer bindings.mutex.Unlock()

		if bindings.states[name] == state {
			delete(bindings.states, name)
		}
	})

	return state
}

func resolve(t T) (engine.Engine, error) {
	state, err := resolveState(t)
	if err != nil {
		return nil, err
	}
	return state.engine, nil
}

// resolveState returns the bound state of the test, binding an inherited or the single registered engine, if needed.
func resolveState(t T) (*boundState, error) {
	bindings.mutex.Lock()
	defer bindings.mutex.Unlock()

	name := t.Name()
	if state, ok := bindings.states[name]; ok {
		return state, nil
	}

	for parent := parentName(name); parent != ""; parent = parentName(parent) {
		if state, ok := bindings.states[parent]; ok {
			return bind(t, state.engine), nil
		}
	}

	engines := registryOf(name).Engines()
	if len(engines) != 1 {
		return nil, &BindingError{Count: len(engines)}
	}

	return bind(t, engines[0]), nil
}

// registryOf must be called with the mutex held.
func registryOf(name string) *engine.Registry {
	for n := name; n != ""; n = parentName(n) {
		if registry, ok := bindings.registries[n]; ok {
			return registry
		}
	}
	return engine.DefaultRegistry
}

// parentName returns the name of the parent test or an empty string, if the test is a top-level test.
func parentName(name string) string {
	i := strings.LastIndex(name, "/")
	if i == -1 {
		return ""
	}
	return name[:i]
}
