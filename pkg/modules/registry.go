package modules

import (
	"ecmacore/pkg/errors"
	"ecmacore/pkg/heap"
	"ecmacore/pkg/value"
)

// ModuleMap is the per-realm "persisted state... per-realm ModuleMap
// keyed by resolved specifier" SPEC_FULL.md §8 names: it owns the
// resolver/loader pair a realm was configured with and caches one
// heap.ModuleRecord per resolved path so importing the same module
// twice from different referrers returns the same Module Record
// (10.4.6's "one namespace object per module" invariant) instead of
// re-parsing and re-evaluating it.
type ModuleMap struct {
	h        *heap.Heap
	resolver Resolver
	loader   Loader

	byPath map[string]uint32 // resolved path -> heap.Modules index
}

func NewModuleMap(h *heap.Heap, resolver Resolver, loader Loader) *ModuleMap {
	return &ModuleMap{h: h, resolver: resolver, loader: loader, byPath: make(map[string]uint32)}
}

// Resolve delegates to the configured Resolver, wrapping a failure as
// a HostError the way every other module/host failure in this package
// surfaces (§9: "host errors... become thrown Error instances").
func (mm *ModuleMap) Resolve(specifier, referrerPath string) (string, *errors.HostError) {
	resolved, err := mm.resolver.Resolve(specifier, referrerPath)
	if err != nil {
		return "", &errors.HostError{Msg: err.Error()}
	}
	return resolved, nil
}

// Load reads resolvedPath's source text via the configured Loader.
func (mm *ModuleMap) Load(resolvedPath string) (string, *errors.HostError) {
	src, err := mm.loader.Load(resolvedPath)
	if err != nil {
		return "", &errors.HostError{Msg: err.Error()}
	}
	return src, nil
}

// Lookup returns the cached ModuleRecord for resolvedPath, if this
// ModuleMap has already created one (regardless of its link/evaluate
// status) — the cache-hit path that lets two importers of the same
// module observe the same Module Record.
func (mm *ModuleMap) Lookup(resolvedPath string) (*heap.ModuleRecord, value.Value, bool) {
	idx, ok := mm.byPath[resolvedPath]
	if !ok {
		return nil, value.Value{}, false
	}
	return mm.h.Modules.Get(idx), value.FromHeapIndex(value.TagModule, idx), true
}

// Reserve allocates a fresh, ModuleUnlinked ModuleRecord for
// resolvedPath and caches it, for a caller (pkg/runtime) that is about
// to parse and compile the module body. Reserving before compiling
// (rather than after) lets a circular import graph register its own
// module path before recursing into its dependencies, matching
// HostResolveImportedModule's "insert before recursing" shape (16.2.1.7).
func (mm *ModuleMap) Reserve(resolvedPath string) (uint32, *heap.ModuleRecord, value.Value) {
	rec := &heap.ModuleRecord{
		ResolvedPath: resolvedPath,
		Status:       heap.ModuleUnlinked,
		Namespace:    value.Undefined,
		Exports:      make(map[string]value.Value),
	}
	idx := mm.h.Modules.Alloc(rec)
	mm.byPath[resolvedPath] = idx
	modVal := value.FromHeapIndex(value.TagModule, idx)
	rec.Namespace = modVal
	return idx, rec, modVal
}

// Paths returns every resolved path currently cached, for diagnostics
// and for pkg/runtime.Realm.Roots, which roots every cached module's
// namespace so its record and Environment stay alive whether or not
// any script currently references the namespace object.
func (mm *ModuleMap) Paths() []string {
	paths := make([]string, 0, len(mm.byPath))
	for p := range mm.byPath {
		paths = append(paths, p)
	}
	return paths
}

func (mm *ModuleMap) RecordAt(resolvedPath string) (*heap.ModuleRecord, bool) {
	idx, ok := mm.byPath[resolvedPath]
	if !ok {
		return nil, false
	}
	return mm.h.Modules.Get(idx), true
}
