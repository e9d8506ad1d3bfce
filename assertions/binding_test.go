package assertions

import (
	"context"
	"testing"

	"github.com/gclaussn/go-bpmn-assert/engine"
	"github.com/gclaussn/go-bpmn-assert/engine/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine(t *testing.T) {
	t.Run("returns bound engine", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t)
		rt := newRecordingT(t)

		Init(rt, e)

		// when
		var resolved1, resolved2 engine.Engine
		rt.run(func() {
			resolved1 = Engine(rt)
			resolved2 = Engine(rt)
		})

		// then
		assert.False(rt.hasFailed())
		assert.Same(e, resolved1)
		assert.Same(e, resolved2)
	})

	t.Run("inherits engine of parent test", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t)

		parent := newRecordingTWithName(t, "TestParent")
		child := newRecordingTWithName(t, "TestParent/child/grandchild")

		Init(parent, e)

		// when
		var resolved engine.Engine
		child.run(func() {
			resolved = Engine(child)
		})

		// then
		assert.False(child.hasFailed())
		assert.Same(e, resolved)
	})

	t.Run("prefers own binding over binding of parent test", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e1 := mustCreateEngine(t)
		e2 := mustCreateEngine(t)

		parent := newRecordingTWithName(t, "TestOwnBinding")
		child := newRecordingTWithName(t, "TestOwnBinding/child")

		Init(parent, e1)
		Init(child, e2)

		// when
		var resolved engine.Engine
		child.run(func() {
			resolved = Engine(child)
		})

		// then
		assert.Same(e2, resolved)
	})

	t.Run("resolves single registered engine", func(t *testing.T) {
		assert := assert.New(t)

		// given
		registry := engine.NewRegistry()

		e := mustCreateEngine(t, func(o *mem.Options) {
			o.Common.Registry = registry
		})

		rt := newRecordingT(t)
		UseRegistry(rt, registry)

		// when
		var resolved engine.Engine
		rt.run(func() {
			resolved = Engine(rt)
		})

		// then
		assert.False(rt.hasFailed())
		assert.Same(e, resolved)

		// when engine is unregistered
		e.Shutdown()

		// then
		rt.run(func() {
			resolved = Engine(rt)
		})

		assert.False(rt.hasFailed())
		assert.Same(e, resolved)
	})

	t.Run("resolves registered engine for assertion statements", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)

		// given
		registry := engine.NewRegistry()

		e := mustCreateEngine(t, func(o *mem.Options) {
			o.Common.Registry = registry
		})

		mustCreateProcessDefinition(t, e, "order", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})
		processInstance := mustCreateProcessInstance(t, e, "order", "aBusinessKey", nil)

		newT := func(name string) *recordingT {
			rt := newRecordingTWithName(t, t.Name()+"/"+name)
			UseRegistry(rt, registry)
			return rt
		}

		// when
		rt := newT("implicit")
		rt.run(func() {
			ProcessInstance(rt, processInstance).HasBusinessKey("aBusinessKey")
		})

		// then
		require.False(rt.hasFailed())
		require.Len(LastAssertions(rt), 1)

		// when business key differs
		mismatch := newT("mismatch")
		mismatch.run(func() {
			ProcessInstance(mismatch, processInstance).HasBusinessKey("other")
		})

		// then
		assert.True(mismatch.hasFailed())
		assert.Contains(mismatch.message(), `"other"`)
		assert.Contains(mismatch.message(), `"aBusinessKey"`)

		// when suspended
		err := e.SuspendProcessInstance(context.Background(), engine.SuspendProcessInstanceCmd{Id: processInstance.Id})
		require.Nil(err)

		suspended := newT("suspended")
		suspended.run(func() {
			ProcessInstance(suspended, processInstance).IsActive()
		})

		// then
		assert.True(suspended.hasFailed())
		assert.Contains(suspended.message(), "Error: expected process instance "+processInstance.Id+" to be ACTIVE, but was SUSPENDED")

		// when reset
		Reset(rt)

		var resolved engine.Engine
		rt.run(func() {
			resolved = Engine(rt)
			ProcessInstance(rt, processInstance).IsSuspended()
		})

		// then
		assert.False(rt.hasFailed())
		assert.Same(e, resolved)
		assert.Len(LastAssertions(rt), 1)
	})

	t.Run("resolves registered engine when initialized with nil", func(t *testing.T) {
		assert := assert.New(t)

		// given
		registry := engine.NewRegistry()

		e := mustCreateEngine(t, func(o *mem.Options) {
			o.Common.Registry = registry
		})

		rt := newRecordingT(t)
		UseRegistry(rt, registry)

		Init(rt, nil)

		// when
		var resolved engine.Engine
		rt.run(func() {
			resolved = Engine(rt)
		})

		// then
		assert.False(rt.hasFailed())
		assert.Same(e, resolved)
	})

	t.Run("fails when initialized with nil and no engine is registered", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t)
		processDefinition := mustCreateProcessDefinition(t, e, "unbound", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})

		rt := newRecordingT(t)
		UseRegistry(rt, engine.NewRegistry())

		Init(rt, e)
		Init(rt, nil)

		// when
		rt.run(func() {
			ProcessDefinition(rt, processDefinition).HasKey("unbound")
		})

		// then
		assert.True(rt.hasFailed())
		assert.Equal("Error: no engine registered", rt.message())
	})

	t.Run("fails when no engine is registered", func(t *testing.T) {
		assert := assert.New(t)

		// given
		rt := newRecordingT(t)
		UseRegistry(rt, engine.NewRegistry())

		// when
		rt.run(func() {
			Engine(rt)
		})

		// then
		assert.True(rt.hasFailed())
		assert.Equal("Error: no engine registered", rt.message())
	})

	t.Run("fails when multiple engines are registered", func(t *testing.T) {
		assert := assert.New(t)

		// given
		registry := engine.NewRegistry()

		mustCreateEngine(t, func(o *mem.Options) {
			o.Common.EngineId = "engine-a"
			o.Common.Registry = registry
		})
		mustCreateEngine(t, func(o *mem.Options) {
			o.Common.EngineId = "engine-b"
			o.Common.Registry = registry
		})

		rt := newRecordingT(t)
		UseRegistry(rt, registry)

		// when
		rt.run(func() {
			Engine(rt)
		})

		// then
		assert.True(rt.hasFailed())
		assert.Equal("Error: 2 engines registered, call assertions.Init first", rt.message())
	})

	t.Run("subtest uses registry of parent test", func(t *testing.T) {
		assert := assert.New(t)

		// given
		registry := engine.NewRegistry()

		e := mustCreateEngine(t, func(o *mem.Options) {
			o.Common.Registry = registry
		})

		parent := newRecordingTWithName(t, "TestRegistry")
		child := newRecordingTWithName(t, "TestRegistry/child")

		UseRegistry(parent, registry)

		// when
		var resolved engine.Engine
		child.run(func() {
			resolved = Engine(child)
		})

		// then
		assert.Same(e, resolved)
	})
}

func TestReset(t *testing.T) {
	t.Run("releases binding", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t)
		rt := newRecordingT(t)
		UseRegistry(rt, engine.NewRegistry())

		Init(rt, e)

		// when
		Reset(rt)

		// then
		rt.run(func() {
			Engine(rt)
		})

		assert.True(rt.hasFailed())
		assert.Equal("Error: no engine registered", rt.message())
	})

	t.Run("clears last assertions", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)

		// given
		e := mustCreateEngine(t)
		processDefinition := mustCreateProcessDefinition(t, e, "reset", engine.Activity{Id: "userTask", Type: engine.ActivityUserTask})

		rt := newRecordingT(t)
		Init(rt, e)

		rt.run(func() {
			ProcessDefinition(rt, processDefinition).HasKey("reset")
		})
		require.Len(LastAssertions(rt), 1)

		// when
		Reset(rt)

		// then
		assert.Empty(LastAssertions(rt))
	})

	t.Run("releases binding when test finishes", func(t *testing.T) {
		assert := assert.New(t)

		// given
		e := mustCreateEngine(t)
		rt := newRecordingTWithName(t, "TestFinished")

		Init(rt, e)

		// when
		rt.cleanup()

		// then
		bindings.mutex.Lock()
		_, ok := bindings.states["TestFinished"]
		bindings.mutex.Unlock()

		assert.False(ok)
	})
}
