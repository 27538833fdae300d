// Package flow holds the plumbing shared by every screen: request
// supersession, effect construction, child lifting, and dispatch observers.
package flow

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Ticket identifies one request issued for a request family. A result
// carrying a ticket is applied only while the ticket is still current.
type Ticket struct {
	family string
	gen    uint64
}

// Family returns the request family the ticket was issued for.
func (t Ticket) Family() string {
	return t.family
}

// Requests tracks the in-flight request of each family. Beginning a new
// request cancels the previous one of the same family.
//
// A Requests value is shared by pointer between copies of a flow model and
// must only be touched from the Bubble Tea update loop.
type Requests struct {
	gens    map[string]uint64
	cancels map[string]context.CancelFunc
}

// NewRequests returns an empty tracker.
func NewRequests() *Requests {
	return &Requests{
		gens:    make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Begin supersedes any in-flight request of family and returns the
// context and ticket for the new one.
func (r *Requests) Begin(family string) (context.Context, Ticket) {
	r.Cancel(family)

	ctx, cancel := context.WithCancel(context.Background())
	r.gens[family]++
	r.cancels[family] = cancel

	return ctx, Ticket{family: family, gen: r.gens[family]}
}

// Settle reports whether t is the current request of its family and, if
// so, marks the family idle. Stale tickets return false and change nothing.
func (r *Requests) Settle(t Ticket) bool {
	if r.gens[t.family] != t.gen {
		return false
	}
	if cancel, ok := r.cancels[t.family]; ok {
		cancel()
		delete(r.cancels, t.family)
	}
	return true
}

// InFlight reports whether family has an unsettled request.
func (r *Requests) InFlight(family string) bool {
	_, ok := r.cancels[family]
	return ok
}

// Cancel abandons the in-flight request of family, if any. Its result
// will never be delivered.
func (r *Requests) Cancel(family string) {
	if cancel, ok := r.cancels[family]; ok {
		cancel()
		delete(r.cancels, family)
		r.gens[family]++
	}
}

// CancelAll abandons every in-flight request. Flows call it when they are
// torn down.
func (r *Requests) CancelAll() {
	for family := range r.cancels {
		r.Cancel(family)
	}
}

// Effect runs call off the update loop and turns its outcome into a
// message with done. When ctx has been cancelled by the time call returns,
// the effect delivers nothing.
func Effect[T any](
	ctx context.Context,
	call func(context.Context) (T, error),
	done func(T, error) tea.Msg,
) tea.Cmd {
	return func() tea.Msg {
		v, err := call(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return done(v, err)
	}
}

// Emit returns a command that delivers msg.
func Emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
