package flow

import (
	"reflect"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// modulePath is the import path prefix of this program's packages.
var modulePath = strings.TrimSuffix(reflect.TypeOf(Event{}).PkgPath(), "/internal/flow")

// Wrapped is implemented by parent actions that carry a child action.
type Wrapped interface {
	Unwrap() (child string, msg tea.Msg)
}

// Event describes one dispatched action. It never carries the action's
// payload, so credentials typed into a form cannot leak into observers.
type Event struct {
	// Flow is the dotted path of the flow the action is addressed to,
	// e.g. "tasks.create". The root flow is "root".
	Flow string

	// Action is the Go type of the innermost action, e.g. "auth.SubmitMsg".
	Action string

	// Owned is false for runtime and widget messages (key presses,
	// spinner ticks) that are not actions of this program.
	Owned bool
}

// Describe unwraps msg and reports which flow it targets.
func Describe(msg tea.Msg) Event {
	var path []string
	for {
		w, ok := msg.(Wrapped)
		if !ok {
			break
		}
		var child string
		child, msg = w.Unwrap()
		path = append(path, child)
	}

	e := Event{Flow: "root"}
	if len(path) > 0 {
		e.Flow = strings.Join(path, ".")
	}
	if msg == nil {
		return e
	}

	t := reflect.TypeOf(msg)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	e.Action = t.String()
	e.Owned = strings.HasPrefix(t.PkgPath(), modulePath+"/")
	return e
}

// Observer is notified by the dispatch path before each action is reduced.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// Observers fans an event out to several observers in order.
type Observers []Observer

// Observe implements Observer.
func (o Observers) Observe(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(e)
		}
	}
}
