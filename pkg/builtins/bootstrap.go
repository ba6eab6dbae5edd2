package builtins

import (
	"fmt"
	"sort"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/runtime"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// Standard returns every built-in module this engine ships, sorted by
// Priority — the Go shape of the teacher's GetStandardInitializers,
// with DateInitializer dropped (Date is a Non-goal per SPEC_FULL.md)
// and RegExpInitializer added (wiring dlclark/regexp2, which the
// teacher's own pack never got around to, per standard.go's commented-
// out NumberInitializer/BooleanInitializer lines showing work in
// progress left unfinished upstream too).
func Standard() []Initializer {
	inits := []Initializer{
		&ObjectInitializer{},
		&FunctionInitializer{},
		&ArrayInitializer{},
		&StringInitializer{},
		&NumberInitializer{},
		&BooleanInitializer{},
		&ErrorInitializer{},
		&RegExpInitializer{},
		&MathInitializer{},
		&JSONInitializer{},
		&ConsoleInitializer{},
		&GlobalsInitializer{},
	}
	sort.Slice(inits, func(i, j int) bool { return inits[i].Priority() < inits[j].Priority() })
	return inits
}

// Bootstrap runs every Standard() initializer against realm in
// priority order, the pkg/builtins equivalent of the teacher's
// driver.go initializeBuiltins loop. realm.GlobalObject is allocated
// here (a plain ordinary object whose prototype stays undefined while
// the initializers run; Bootstrap sets it to %Object.prototype% after
// the last one) since no initializer owns "create the global object"
// itself.
func Bootstrap(v *vm.VM, realm *runtime.Realm) error {
	realm.GlobalObject = v.Heap.NewOrdinaryObject(heap.RootShape(value.Undefined), value.Undefined)
	ctx := &Context{VM: v, Realm: realm, Heap: v.Heap}
	for _, init := range Standard() {
		if err := init.Init(ctx); err != nil {
			return fmt.Errorf("builtins: %s: %w", init.Name(), err)
		}
	}
	object.For(realm.GlobalObject).SetPrototypeOf(v.Heap, v.ObjectPrototype)
	ctx.Global("globalThis", realm.GlobalObject)
	return nil
}
