package runtime

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/modules"
	"ecmacore/pkg/value"
)

// Realm is "global environment + ~200-slot intrinsics table + per-realm
// source/template-object registry + optional host payload" (SPEC_FULL.md
// §5.5), reframed for Go as a plain struct rather than a GC'd heap
// subspace entry — see SPEC_FULL.md §6.2's "Clarification on Realms":
// a Realm is owned 1:1 by the Agent that created it and is itself a GC
// root (its Intrinsics/GlobalObject/TemplateCache values, and its
// GlobalEnv index, are walked by Agent.Roots/EnvironmentRoots), so it
// never needs compaction machinery of its own.
type Realm struct {
	// GlobalEnv is the outermost environment every top-level script or
	// module body compiled against this realm runs in.
	GlobalEnv uint32

	// GlobalObject backs `globalThis`; set once pkg/builtins bootstraps
	// intrinsics (left Undefined until then, matching pkg/vm's own
	// "undefined intrinsics are a valid, inert default" convention).
	GlobalObject value.Value

	// Intrinsics holds every well-known constructor/prototype/function
	// this realm was bootstrapped with, keyed by name ("Object",
	// "Object.prototype", "%ThrowTypeError%", ...) — a map rather than
	// the source's literal fixed-size slot table, since Go has no
	// zero-cost equivalent of "reserve slot 47 before its value exists"
	// and a map read is already O(1) for this engine's intrinsic count.
	Intrinsics map[string]value.Value

	// TemplateCache holds one cached template object per call-site
	// identity string (SPEC_FULL.md §8's "per-realm template-object
	// cache keyed by call site"); unused until pkg/compiler emits
	// tagged-template literals, kept here so the slot exists when it
	// does.
	TemplateCache map[string]value.Value

	// Modules is this realm's module registry, nil until
	// Instance.InitializeModuleMap configures one.
	Modules *modules.ModuleMap

	// Host is an opaque per-realm payload an embedder can attach
	// (e.g. a `*http.Client` behind a fetch() builtin); the engine
	// itself never reads it.
	Host interface{}
}

// NewRealm allocates a fresh global environment over h and returns an
// otherwise-empty Realm; pkg/builtins.Bootstrap populates Intrinsics
// and GlobalObject and must be called before running any script in it.
func NewRealm(h *heap.Heap) *Realm {
	envIdx, env := h.NewEnvironment(0)
	env.HasThis = true
	env.ThisValue = value.Undefined
	return &Realm{
		GlobalEnv:     envIdx,
		GlobalObject:  value.Undefined,
		Intrinsics:    make(map[string]value.Value),
		TemplateCache: make(map[string]value.Value),
	}
}

// Roots returns every value.Value this realm keeps alive independent
// of the execution-context stack — intrinsics, the global object, the
// template cache, and every cached module's namespace — for Agent.Roots to flatten into the GC's root
// set (SPEC_FULL.md §4.3 rule (iv): "every live realm's intrinsics...
// slot is explicitly a root set member").
func (r *Realm) Roots() []value.Value {
	roots := make([]value.Value, 0, len(r.Intrinsics)+len(r.TemplateCache)+1)
	roots = append(roots, r.GlobalObject)
	for _, v := range r.Intrinsics {
		roots = append(roots, v)
	}
	for _, v := range r.TemplateCache {
		roots = append(roots, v)
	}
	if r.Modules != nil {
		for _, p := range r.Modules.Paths() {
			if rec, ok := r.Modules.RecordAt(p); ok {
				roots = append(roots, rec.Namespace)
			}
		}
	}
	return roots
}

// RemapRoots rewrites every root Roots() reported, called once per GC
// cycle with the same remap closure Agent.RemapRoots receives.
func (r *Realm) RemapRoots(remap func(value.Value) value.Value) {
	r.GlobalObject = remap(r.GlobalObject)
	for k, v := range r.Intrinsics {
		r.Intrinsics[k] = remap(v)
	}
	for k, v := range r.TemplateCache {
		r.TemplateCache[k] = remap(v)
	}
}
