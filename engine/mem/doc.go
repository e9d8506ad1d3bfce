// Package mem implements an in-memory engine, used for testing purposes.
/*
mem provides a full implementation of the [engine.Engine] interface. All commands are executed sequentially.
A command that fails leaves no changes behind.

Create an Engine

A mem engine registers itself with [engine.DefaultRegistry], so that assertions can resolve it.
Tests that run engines in parallel should use distinct engine IDs or a private registry.

	e, err := mem.New(func(o *mem.Options) {
		o.Common.EngineId = "my-mem-engine"
	})
	if err != nil {
		log.Fatalf("failed to create mem engine: %v", err)
	}

	defer e.Shutdown()
*/
package mem
