package assertions

import "fmt"

// BindingError is returned, when no engine is bound to a test and the registry does not contain exactly one engine.
type BindingError struct {
	Count int // Number of registered engines.
}

func (e *BindingError) Error() string {
	if e.Count == 0 {
		return "no engine registered"
	}
	return fmt.Sprintf("%d engines registered, call assertions.Init first", e.Count)
}

// Failure is returned, when the actual state of an entity does not match the expected state.
type Failure struct {
	Kind      string // Entity kind.
	Id        string // Entity ID.
	Predicate string // Failed predicate.
	Expected  string
	Actual    string
	Chain     string // Rendered assertion chain, including the failed predicate.
}

func (e *Failure) Error() string {
	return fmt.Sprintf("expected %s %s %s, but was %s", e.Kind, e.Id, e.Expected, e.Actual)
}

// NavigationError is returned, when a navigation does not find exactly one sub-entity.
type NavigationError struct {
	Kind     string // Kind of the sub-entity.
	Parent   string // Kind and ID of the entity, navigated from.
	Selector string // Navigation, including its arguments.
	Count    int    // Number of matching sub-entities.
}

func (e *NavigationError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("expected %s to have a %s matching %s, but found none", e.Parent, e.Kind, e.Selector)
	}
	return fmt.Sprintf("expected %s to have exactly one %s matching %s, but found %d", e.Parent, e.Kind, e.Selector, e.Count)
}
