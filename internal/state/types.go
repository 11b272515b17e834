// Package state models one poll response of the agent's state endpoint.
//
// A Snapshot is built fresh from every response, consumed by exactly one
// render pass and then dropped. Nothing here keeps history.
package state

// InitialCursor is sent with the very first state request.
const InitialCursor = "0"

// Snapshot is the parsed, immutable view of one state document.
type Snapshot struct {
	// Cursor identifies the snapshot's position in the agent's state
	// sequence. Empty when the document did not carry one.
	Cursor       string
	DaemonActive bool
	Activities   []Activity
	// Test is nil when the document has no test section.
	Test *Test
}

// Activity is one phase the agent reports, e.g. "idle" or "negotiate".
type Activity struct {
	Label   string
	Current bool
}

// Test holds the detail of the current (or latest) test.
type Test struct {
	Name    string
	Tasks   []Task
	Results map[string]Result
}

// Task is one step of a test, such as "download".
type Task struct {
	Label string
	State string
}

// Result is the measured outcome of a task, keyed by tag.
type Result struct {
	Value string
	Unit  string
}

// String renders the result as "<value> <unit>".
func (r Result) String() string {
	return r.Value + " " + r.Unit
}

// ResultFor looks up the result whose tag equals the task label.
func (t *Test) ResultFor(label string) (Result, bool) {
	if t == nil || t.Results == nil {
		return Result{}, false
	}
	r, ok := t.Results[label]
	return r, ok
}

// CurrentActivity returns the activity marked current, if any.
func (s Snapshot) CurrentActivity() (Activity, bool) {
	for _, a := range s.Activities {
		if a.Current {
			return a, true
		}
	}
	return Activity{}, false
}
