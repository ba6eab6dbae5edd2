package gc

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/value"
)

// GCVisitable lets an opaque payload stored behind an interface{} field
// (GeneratorRecord.Continuation, PromiseReaction.Continuation) still get
// traced during mark: the marker calls VisitRefs, which calls back with
// every value.Value the payload holds live. A payload that does not
// implement it is not traced; no type in this repository implements it.
type GCVisitable interface {
	VisitRefs(mark func(value.Value))
}

// RootSource lets packages above gc (pkg/runtime's execution-context
// stack, job queues; pkg/vm's active frames) contribute additional GC
// roots without gc importing them. Roots returns every value.Value the
// source currently holds live; RemapRoots is called once per sweep with
// a closure that rewrites a single value.Value through that cycle's
// shift tables, and must overwrite the source's own storage in place.
// EnvironmentRoots/RemapEnvironmentRoots let a RootSource additionally
// root raw heap.Environments indices directly: pkg/vm's active call
// frames hold the environment they're currently executing in, which is
// frequently a fresh child environment no heap Value has been made to
// point at yet (the closure that captured it lives on the frame, not
// the heap), so it can't be reached by marking Roots() values alone.
// Implementing this is optional; a source with nothing but value.Value
// roots can embed NoEnvironmentRoots.
type EnvironmentRoots interface {
	EnvironmentRoots() []uint32
	RemapEnvironmentRoots(remap func(uint32) uint32)
}

// NoEnvironmentRoots is embedded by a RootSource that never holds a
// bare environment index live outside the heap.
type NoEnvironmentRoots struct{}

func (NoEnvironmentRoots) EnvironmentRoots() []uint32                       { return nil }
func (NoEnvironmentRoots) RemapEnvironmentRoots(func(uint32) uint32) {}

type RootSource interface {
	Roots() []value.Value
	RemapRoots(remap func(value.Value) value.Value)
	EnvironmentRoots
}

// Stats reports what one collection cycle did, primarily for the GC
// reclamation testable property (SPEC_FULL.md 10, property 8).
type Stats struct {
	Retained map[string]int
}

// Run executes one full mark-and-sweep cycle: mark transitively from the
// root stack and every supplied RootSource, then sweep every subspace,
// rewriting all surviving cross-references through the resulting shift
// tables. See SPEC_FULL.md 6.3 / spec.md 4.3.
func Run(h *heap.Heap, stack *RootStack, sources ...RootSource) Stats {
	m := &marker{h: h, seen: make(map[markKey]bool)}
	for _, v := range stack.entries {
		m.mark(v)
	}
	for _, src := range sources {
		for _, v := range src.Roots() {
			m.mark(v)
		}
		for _, idx := range src.EnvironmentRoots() {
			m.markEnvironment(idx)
		}
	}

	shifts := sweepAll(h)
	envShift := sweepEnvironments(h)
	remap := makeRemapper(shifts)
	remapEnv := func(idx uint32) uint32 { return heap.Remap(envShift, idx) }

	for i := range stack.entries {
		stack.entries[i] = remap(stack.entries[i])
	}
	for _, src := range sources {
		src.RemapRoots(remap)
		src.RemapEnvironmentRoots(remapEnv)
	}

	rewriteAll(h, shifts, envShift, remap)

	return Stats{Retained: map[string]int{
		"objects":   h.Objects.Retained(),
		"arrays":    h.Arrays.Retained(),
		"strings":   h.Strings.Len(),
		"functions": h.ECMAScriptFunctions.Retained(),
	}}
}

// markKey identifies one heap slot across every subspace kind, used to
// avoid re-walking an already-visited object's children.
type markKey struct {
	tag   value.Tag
	index uint32
}

type marker struct {
	h    *heap.Heap
	seen map[markKey]bool
}

func (m *marker) visit(tag value.Tag, index uint32) bool {
	if index == 0 {
		return false
	}
	k := markKey{tag, index}
	if m.seen[k] {
		return false
	}
	m.seen[k] = true
	return true
}

// mark walks v and, transitively, every value.Value reachable from it.
func (m *marker) mark(v value.Value) {
	switch v.Tag() {
	case value.TagString:
		if m.h.Strings.Mark(v.HeapIndex()) {
			return
		}
	case value.TagNumber:
		m.h.Numbers.Mark(v.HeapIndex())
	case value.TagBigInt:
		m.h.BigInts.Mark(v.HeapIndex())
	case value.TagSymbol:
		m.h.Symbols.Mark(v.HeapIndex())

	case value.TagObject:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Objects.Mark(idx)
		rec := m.h.Objects.Get(idx)
		m.mark(rec.Prototype)
		for _, p := range rec.Properties {
			m.mark(p)
		}
		for _, g := range rec.Getters {
			m.mark(g)
		}
		for _, s := range rec.Setters {
			m.mark(s)
		}
		for _, f := range rec.PrivateFields {
			m.mark(f)
		}
		for _, f := range rec.PrivateMethods {
			m.mark(f)
		}

	case value.TagArray:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Arrays.Mark(idx)
		rec := m.h.Arrays.Get(idx)
		m.mark(rec.Prototype)
		for _, e := range rec.Elements.Dense {
			m.mark(e)
		}
		for _, e := range rec.Elements.Sparse {
			m.mark(e)
		}
		m.markBacking(rec.Backing)

	case value.TagArguments:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Arguments.Mark(idx)
		rec := m.h.Arguments.Get(idx)
		m.mark(rec.Prototype)
		for _, a := range rec.Args {
			m.mark(a)
		}
		m.mark(rec.Callee)
		m.markBacking(rec.Backing)

	case value.TagArrayBuffer, value.TagSharedArrayBuffer:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.ArrayBuffers.Mark(idx)
		rec := m.h.ArrayBuffers.Get(idx)
		m.mark(rec.Prototype)
		m.markBacking(rec.Backing)

	case value.TagDataView:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.DataViews.Mark(idx)
		rec := m.h.DataViews.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.Buffer)
		m.markBacking(rec.Backing)

	case value.TagTypedArray:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.TypedArrays.Mark(idx)
		rec := m.h.TypedArrays.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.Buffer)
		m.markBacking(rec.Backing)

	case value.TagDate:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Dates.Mark(idx)
		rec := m.h.Dates.Get(idx)
		m.mark(rec.Prototype)
		m.markBacking(rec.Backing)

	case value.TagError:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Errors.Mark(idx)
		rec := m.h.Errors.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.Message)
		m.mark(rec.Cause)
		m.markBacking(rec.Backing)

	case value.TagMap:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Maps.Mark(idx)
		rec := m.h.Maps.Get(idx)
		m.mark(rec.Prototype)
		for _, e := range rec.Entries {
			m.mark(e.Key)
			m.mark(e.Value)
		}
		m.markBacking(rec.Backing)

	case value.TagSet:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Sets.Mark(idx)
		rec := m.h.Sets.Get(idx)
		m.mark(rec.Prototype)
		for _, e := range rec.Entries {
			m.mark(e)
		}
		m.markBacking(rec.Backing)

	case value.TagWeakMap:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.WeakMaps.Mark(idx)
		m.mark(m.h.WeakMaps.Get(idx).Prototype)
		// Keys are weak: never marked through. Values are only kept
		// alive if their key survives, which the weak-sweep phase (not
		// the mark phase) decides — see sweepWeak.

	case value.TagWeakSet:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.WeakSets.Mark(idx)
		m.mark(m.h.WeakSets.Get(idx).Prototype)

	case value.TagWeakRef:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.WeakRefs.Mark(idx)
		m.mark(m.h.WeakRefs.Get(idx).Prototype)
		// Target is weak; not marked through.

	case value.TagFinalizationRegistry:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.FinRegistries.Mark(idx)
		rec := m.h.FinRegistries.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.CallbackFn)
		// Targets are weak; held values and unregister tokens are strong.
		for _, e := range rec.Entries {
			m.mark(e.HeldValue)
			if e.HasToken {
				m.mark(e.UnregisterToken)
			}
		}

	case value.TagRegExp:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.RegExps.Mark(idx)
		rec := m.h.RegExps.Get(idx)
		m.mark(rec.Prototype)
		m.markBacking(rec.Backing)

	case value.TagPromise:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Promises.Mark(idx)
		rec := m.h.Promises.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.Result)
		for _, r := range rec.FulfillReactions {
			m.markReaction(r)
		}
		for _, r := range rec.RejectReactions {
			m.markReaction(r)
		}
		m.markBacking(rec.Backing)

	case value.TagProxy:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Proxies.Mark(idx)
		rec := m.h.Proxies.Get(idx)
		m.mark(rec.Target)
		m.mark(rec.Handler)

	case value.TagModule:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Modules.Mark(idx)
		rec := m.h.Modules.Get(idx)
		m.mark(rec.Namespace)
		for _, e := range rec.Exports {
			m.mark(e)
		}
		m.markEnvironment(rec.Environment)
		m.h.Executables.Mark(rec.Executable)
		m.mark(rec.EvalError)

	case value.TagEmbedderObject:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.EmbedderObjects.Mark(idx)
		rec := m.h.EmbedderObjects.Get(idx)
		m.mark(rec.Prototype)
		m.markBacking(rec.Backing)

	case value.TagBoundFunction:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.BoundFunctions.Mark(idx)
		rec := m.h.BoundFunctions.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.HomeObject)
		m.mark(rec.Target)
		m.mark(rec.BoundThis)
		for _, a := range rec.BoundArgs {
			m.mark(a)
		}
		m.markBacking(rec.Backing)

	case value.TagBuiltinFunction:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.BuiltinFunctions.Mark(idx)
		rec := m.h.BuiltinFunctions.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.HomeObject)
		m.markBacking(rec.Backing)

	case value.TagECMAScriptFunction:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.ECMAScriptFunctions.Mark(idx)
		rec := m.h.ECMAScriptFunctions.Get(idx)
		m.mark(rec.Prototype)
		m.mark(rec.HomeObject)
		m.markBacking(rec.Backing)
		m.markEnvironment(rec.Environment)
		m.h.Executables.Mark(rec.Executable)
		for _, fi := range rec.FieldInitializers {
			m.h.Executables.Mark(fi)
		}

	case value.TagGenerator, value.TagAsyncGenerator:
		// Async generators reuse the Generators subspace's record shape
		// in this implementation (IsAsync flag distinguishes).
		idx := v.HeapIndex()
		if !m.visit(value.TagGenerator, idx) {
			return
		}
		m.h.Generators.Mark(idx)
		if gv, ok := m.h.Generators.Get(idx).Continuation.(GCVisitable); ok {
			gv.VisitRefs(m.mark)
		}

	case value.TagIterator:
		idx := v.HeapIndex()
		if !m.visit(v.Tag(), idx) {
			return
		}
		m.h.Iterators.Mark(idx)
		m.mark(m.h.Iterators.Get(idx).Target)
	}
}

func (m *marker) markReaction(r heap.PromiseReaction) {
	m.mark(r.Handler)
	m.mark(r.ResolveFn)
	m.mark(r.RejectFn)
	if gv, ok := r.Continuation.(GCVisitable); ok {
		gv.VisitRefs(m.mark)
	}
}

func (m *marker) markBacking(backing uint32) {
	if backing == 0 {
		return
	}
	m.mark(value.FromHeapIndex(value.TagObject, backing))
}

func (m *marker) markEnvironment(index uint32) {
	if index == 0 {
		return
	}
	k := markKey{tag: 255, index: index} // 255: not a real value.Tag, dedicated to environments
	if m.seen[k] {
		return
	}
	m.seen[k] = true
	m.h.Environments.Mark(index)
	env := m.h.Environments.Get(index)
	for _, v := range env.Bindings {
		m.mark(v)
	}
	m.mark(env.WithObject)
	m.mark(env.ThisValue)
	m.mark(env.NewTarget)
	m.markEnvironment(env.Outer)
}
