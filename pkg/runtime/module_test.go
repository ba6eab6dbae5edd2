package runtime_test

import (
	"testing"

	"ecmacore/pkg/builtins"
	"ecmacore/pkg/modules"
	"ecmacore/pkg/runtime"
)

func newTestInstance(t *testing.T) (*runtime.Instance, *runtime.Realm) {
	t.Helper()
	inst := runtime.NewInstance(runtime.DefaultConfig())
	realm := runtime.NewRealm(inst.Agent.Heap)
	if err := builtins.Bootstrap(inst.Agent.VM, realm); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	inst.Agent.AddRealm(realm)
	return inst, realm
}

func TestLoadModuleExportsTopLevelBindings(t *testing.T) {
	inst, realm := newTestInstance(t)
	resolver := modules.NewMemoryResolver()
	resolver.Put("math.js", "var square = function(x) { return x * x; }; var PI = 3; ")
	inst.InitializeModuleMap(realm, resolver, resolver)

	rec, nsVal, errs := inst.LoadModule(realm, "", "math.js")
	if len(errs) > 0 {
		t.Fatalf("LoadModule: %v", errs[0])
	}
	if nsVal.IsUndefined() {
		t.Fatalf("expected a non-undefined module namespace value")
	}
	if rec.Exports["PI"].IsUndefined() {
		t.Fatalf("expected PI to be exported, got undefined")
	}
	piStr, thrown := inst.Agent.VM.ToDisplayString(rec.Exports["PI"])
	if thrown != nil {
		t.Fatalf("ToDisplayString(PI): %v", thrown)
	}
	if piStr != "3" {
		t.Fatalf("PI export: got %q, want \"3\"", piStr)
	}
	if rec.Exports["square"].IsUndefined() {
		t.Fatalf("expected square to be exported, got undefined")
	}
}

func TestLoadModuleCachesByResolvedPath(t *testing.T) {
	inst, realm := newTestInstance(t)
	resolver := modules.NewMemoryResolver()
	resolver.Put("a.js", "var x = 1;")
	inst.InitializeModuleMap(realm, resolver, resolver)

	rec1, ns1, errs := inst.LoadModule(realm, "", "a.js")
	if len(errs) > 0 {
		t.Fatalf("first load: %v", errs[0])
	}
	rec2, ns2, errs := inst.LoadModule(realm, "", "a.js")
	if len(errs) > 0 {
		t.Fatalf("second load: %v", errs[0])
	}
	if rec1 != rec2 {
		t.Fatalf("expected the same cached ModuleRecord on re-import")
	}
	if ns1 != ns2 {
		t.Fatalf("expected the same namespace value on re-import")
	}
}

func TestLoadModuleSurfacesHostErrorOnMissingFile(t *testing.T) {
	inst, realm := newTestInstance(t)
	resolver := modules.NewMemoryResolver()
	inst.InitializeModuleMap(realm, resolver, resolver)

	_, _, errs := inst.LoadModule(realm, "", "missing.js")
	if len(errs) == 0 {
		t.Fatalf("expected a resolution error for a missing module")
	}
	if errs[0].Kind() != "Host" {
		t.Fatalf("expected a Host error, got %s: %v", errs[0].Kind(), errs[0])
	}
}

func TestLoadModuleSurfacesEvaluationThrow(t *testing.T) {
	inst, realm := newTestInstance(t)
	resolver := modules.NewMemoryResolver()
	resolver.Put("throws.js", "throw new TypeError('boom');")
	inst.InitializeModuleMap(realm, resolver, resolver)

	rec, _, errs := inst.LoadModule(realm, "", "throws.js")
	if len(errs) == 0 {
		t.Fatalf("expected the module's throw to surface as an engine error")
	}
	if !rec.HasEvalError {
		t.Fatalf("expected rec.HasEvalError to be set")
	}
}
