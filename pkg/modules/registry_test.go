package modules

import (
	"testing"

	"ecmacore/pkg/heap"
)

func newTestModuleMap() (*ModuleMap, *MemoryResolver) {
	r := NewMemoryResolver()
	mm := NewModuleMap(heap.New(), r, r)
	return mm, r
}

func TestModuleMapReserveThenLookup(t *testing.T) {
	mm, r := newTestModuleMap()
	r.Put("a.js", "var a = 1;")

	resolved, herr := mm.Resolve("./a.js", "")
	if herr != nil {
		t.Fatalf("Resolve: %v", herr)
	}

	if _, _, ok := mm.Lookup(resolved); ok {
		t.Fatalf("expected no cached record before Reserve")
	}

	idx, rec, modVal := mm.Reserve(resolved)
	if rec.Status != heap.ModuleUnlinked {
		t.Fatalf("freshly reserved record status = %v, want ModuleUnlinked", rec.Status)
	}
	if modVal.IsUndefined() {
		t.Fatalf("Reserve returned an undefined namespace value")
	}

	gotRec, gotVal, ok := mm.Lookup(resolved)
	if !ok {
		t.Fatalf("expected a cached record after Reserve")
	}
	if gotRec != rec {
		t.Fatalf("Lookup returned a different *ModuleRecord than Reserve")
	}
	if gotVal != modVal {
		t.Fatalf("Lookup returned a different namespace value than Reserve")
	}

	recAt, ok := mm.RecordAt(resolved)
	if !ok || recAt != rec {
		t.Fatalf("RecordAt did not return the reserved record")
	}

	if got := mm.Paths(); len(got) != 1 || got[0] != resolved {
		t.Fatalf("Paths() = %v, want [%q]", got, resolved)
	}

	_ = idx
}

func TestModuleMapResolveWrapsHostError(t *testing.T) {
	mm, _ := newTestModuleMap()
	_, herr := mm.Resolve("./missing.js", "")
	if herr == nil {
		t.Fatalf("expected a HostError resolving an unregistered specifier")
	}
}

func TestModuleMapLoadWrapsHostError(t *testing.T) {
	mm, r := newTestModuleMap()
	r.Put("a.js", "var a = 1;")

	src, herr := mm.Load("a.js")
	if herr != nil {
		t.Fatalf("Load: %v", herr)
	}
	if src != "var a = 1;" {
		t.Fatalf("Load returned %q", src)
	}

	if _, herr := mm.Load("nope.js"); herr == nil {
		t.Fatalf("expected a HostError loading an unregistered path")
	}
}

func TestModuleMapSharesRecordAcrossReferrers(t *testing.T) {
	mm, r := newTestModuleMap()
	r.Put("dir/util.js", "var x = 1;")

	r1, herr := mm.Resolve("./util.js", "dir/one.js")
	if herr != nil {
		t.Fatalf("Resolve from one.js: %v", herr)
	}
	r2, herr := mm.Resolve("./util.js", "dir/two.js")
	if herr != nil {
		t.Fatalf("Resolve from two.js: %v", herr)
	}
	if r1 != r2 {
		t.Fatalf("two referrers resolved to different paths: %q vs %q", r1, r2)
	}

	_, rec1, _ := mm.Reserve(r1)
	if rec2, _, ok := mm.Lookup(r2); !ok || rec2.ResolvedPath != rec1.ResolvedPath {
		t.Fatalf("expected the second referrer's Lookup to hit the same cached record")
	}
}
