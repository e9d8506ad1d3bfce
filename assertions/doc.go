/*
Package assertions provides fluent assertions for process and case entities of an [engine.Engine].

An assertion statement starts with a facade function, which wraps an entity, and continues with chained predicates.
Each predicate queries the current state of the entity, using the engine that is bound to the test:

	assertions.Init(t, e)

	assertions.ProcessInstance(t, processInstance).
		IsActive().
		HasBusinessKey("order-1").
		IsWaitingAt("approveOrder").
		Task("approveOrder").
		HasCandidateGroup("approvers")

If no engine is bound, the single engine of [engine.DefaultRegistry] is used.

A failing predicate stops the test. The failure message includes the assertions of the statement, evaluated so far.
*/
package assertions
