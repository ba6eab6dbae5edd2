// Package gc implements the engine's root-tracking and mark-and-sweep
// collector. It depends on pkg/heap for the arenas being swept, and on
// nothing above heap — the VM, compiler, and runtime packages depend on
// gc, not the reverse, so a GC cycle can be invoked from anywhere in the
// call stack without a cycle.
package gc

import "ecmacore/pkg/value"

// Scoped roots one heap-resident value across a span of code that may
// allocate or trigger a GC cycle. Every reference retained across such a
// call must be wrapped; an un-scoped value.Value read right before use
// in a single non-allocating operation needs no wrapping (see
// SPEC_FULL.md 5.4).
//
// Scoped holds a (stack, index) pair rather than a copy of the value:
// a GC cycle rewrites root-stack entries in place when a swept subspace
// compacts, so a Scoped handle must read back through the stack to see
// the post-sweep index rather than the pre-sweep value it was created
// with.
type Scoped struct {
	stack *RootStack
	index int
}

// RootStack is the agent-local scoped-root stack (SPEC_FULL.md 4.3(i)).
// Push/Pop are LIFO; a Scope groups a span of pushes so its end can pop
// them all at once without the caller tracking individual handles.
type RootStack struct {
	entries []value.Value
}

func NewRootStack() *RootStack { return &RootStack{} }

// Scope is a LIFO span of root-stack entries opened by RootStack.Open
// and closed by Scope.Close (typically via defer).
type Scope struct {
	stack *RootStack
	base  int
}

func (r *RootStack) Open() *Scope {
	return &Scope{stack: r, base: len(r.entries)}
}

// New roots v for the lifetime of this scope and returns a handle that
// can be read back at any point before Close.
func (s *Scope) New(v value.Value) Scoped {
	s.stack.entries = append(s.stack.entries, v)
	return Scoped{stack: s.stack, index: len(s.stack.entries) - 1}
}

func (s *Scope) Close() {
	s.stack.entries = s.stack.entries[:s.base]
}

// Get reads the current value out of a Scoped handle. Scoped values are
// always safe to read; callers that need to hold the result across
// another allocating call must re-root it under a fresh scope (or reuse
// the handle, which stays valid until its owning Scope closes).
func (sc Scoped) Get() value.Value { return sc.stack.entries[sc.index] }

// RootCollection roots a slice of values as one unit (SPEC_FULL.md
// 4.3(ii), "scoped-root-collection stack" — a Vec<Value> rooted together
// rather than one Scoped per element).
type RootCollection struct {
	values []value.Value
}

func NewRootCollection(values []value.Value) *RootCollection {
	return &RootCollection{values: values}
}

func (c *RootCollection) Values() []value.Value { return c.values }
func (c *RootCollection) Push(v value.Value)     { c.values = append(c.values, v) }
