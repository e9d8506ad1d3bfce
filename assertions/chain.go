package assertions

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is an evaluated assertion.
type Entry struct {
	Kind      string // Entity kind - e.g. "process instance".
	Id        string // Entity ID.
	Predicate string // Predicate, including its arguments - e.g. `HasBusinessKey("order-1")`.
	Passed    bool
}

func (e Entry) String() string {
	outcome := "passed"
	if !e.Passed {
		outcome = "failed"
	}
	return fmt.Sprintf("%s %s: %s %s", e.Kind, e.Id, e.Predicate, outcome)
}

// chain records the assertions of a top-level statement, including the assertions of navigated sub-entities.
type chain struct {
	mutex   sync.Mutex
	entries []Entry
}

func (c *chain) clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = nil
}

func (c *chain) list() []Entry {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

func (c *chain) record(entry Entry) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = append(c.entries, entry)
}

// render renders one line per entry.
func (c *chain) render() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var sb strings.Builder
	for i, entry := range c.entries {
		if i != 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(entry.String())
	}
	return sb.String()
}

// signature formats a predicate and its arguments. Strings are quoted.
func signature(predicate string, args ...any) string {
	var sb strings.Builder
	sb.WriteString(predicate)
	sb.WriteRune('(')
	for i, arg := range args {
		if i != 0 {
			sb.WriteString(", ")
		}
		switch v := arg.(type) {
		case string:
			sb.WriteString(fmt.Sprintf("%q", v))
		case []string:
			for j, s := range v {
				if j != 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(fmt.Sprintf("%q", s))
			}
		default:
			sb.WriteString(fmt.Sprintf("%v", v))
		}
	}
	sb.WriteRune(')')
	return sb.String()
}
