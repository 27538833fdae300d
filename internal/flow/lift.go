package flow

import (
	"reflect"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	cmdType = reflect.TypeOf((*tea.Cmd)(nil)).Elem()
	teaPkg  = reflect.TypeOf(tea.QuitMsg{}).PkgPath()
	dropMsg = func(tea.Msg) tea.Msg { return nil }
)

// Map wraps every message produced by cmd with wrap, so that a child's
// effects come back to the parent as parent actions. Batches and
// sequences are mapped element-wise; Bubble Tea control messages such as
// tea.QuitMsg pass through untouched.
func Map(cmd tea.Cmd, wrap func(tea.Msg) tea.Msg) tea.Cmd {
	if cmd == nil {
		return nil
	}
	if wrap == nil {
		wrap = dropMsg
	}
	return func() tea.Msg {
		msg := cmd()
		if msg == nil {
			return nil
		}

		v := reflect.ValueOf(msg)
		t := v.Type()

		// tea.BatchMsg and tea's sequence message are both []tea.Cmd.
		if t.Kind() == reflect.Slice && t.Elem() == cmdType {
			out := reflect.MakeSlice(t, v.Len(), v.Len())
			for i := 0; i < v.Len(); i++ {
				inner, _ := v.Index(i).Interface().(tea.Cmd)
				out.Index(i).Set(reflect.ValueOf(Map(inner, wrap)))
			}
			return out.Interface()
		}

		if t.PkgPath() == teaPkg {
			return msg
		}
		return wrap(msg)
	}
}

// Lift runs a child update against an optional child state. A nil child
// means the child has been torn down and msg is dropped. The child's
// effects are wrapped back into parent actions with wrap.
func Lift[C any](
	child *C,
	msg tea.Msg,
	update func(C, tea.Msg) (C, tea.Cmd),
	wrap func(tea.Msg) tea.Msg,
) (*C, tea.Cmd) {
	if child == nil {
		return nil, nil
	}
	next, cmd := update(*child, msg)
	return &next, Map(cmd, wrap)
}
