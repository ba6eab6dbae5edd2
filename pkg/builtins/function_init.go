package builtins

import (
	"strconv"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// FunctionInitializer builds %Function.prototype%, grounded on the
// teacher's function_init.go — call/apply/bind, plus a toString that
// reports "function name() { [native code] }" for builtins the way
// V8-lineage engines (and the teacher's own builtin Inspect) do.
type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string  { return "Function" }
func (f *FunctionInitializer) Priority() int { return PriorityFunction }

func (f *FunctionInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	vv := ctx.VM

	proto := h.NewOrdinaryObject(heap.RootShape(vv.ObjectPrototype), vv.ObjectPrototype)
	vv.FunctionPrototype = proto
	ctx.Intrinsic("Function.prototype", proto)

	ctx.Method(proto, "call", 1, func(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		thisArg := vmArg(args, 0)
		rest := args
		if len(rest) > 0 {
			rest = rest[1:]
		}
		return vmm.Call(this, thisArg, rest)
	})

	ctx.Method(proto, "apply", 2, func(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		thisArg := vmArg(args, 0)
		argList := vmArg(args, 1)
		callArgs, thrown := spreadArrayLike(vmm, argList)
		if thrown != nil {
			return value.Undefined, thrown
		}
		return vmm.Call(this, thisArg, callArgs)
	})

	ctx.Method(proto, "bind", 1, func(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		boundThis := vmArg(args, 0)
		var boundArgs []value.Value
		if len(args) > 1 {
			boundArgs = append(boundArgs, args[1:]...)
		}
		name := "bound"
		if nv, thrown := object.For(this).Get(vmm.Heap, vmm, heap.StringKey("name"), this); thrown == nil && nv.IsString() {
			name = "bound " + vmm.Heap.GoString(nv)
		}
		idx := vmm.Heap.BoundFunctions.Alloc(&heap.BoundFunctionRecord{
			FunctionCommon: heap.FunctionCommon{
				ExoticHeader: heap.ExoticHeader{Prototype: vmm.FunctionPrototype, Extensible: true},
				Name:         name,
			},
			Target:    this,
			BoundThis: boundThis,
			BoundArgs: boundArgs,
		})
		bound := value.FromHeapIndex(value.TagBoundFunction, idx)
		object.For(bound).DefineOwnProperty(vmm.Heap, heap.StringKey("name"), object.Descriptor{
			HasValue: true, Value: vmm.Heap.NewString(name), HasConfigurable: true, Configurable: true,
		})
		return bound, nil
	})

	ctx.Method(proto, "toString", 0, func(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
		name := "anonymous"
		if nv, thrown := object.For(this).Get(vmm.Heap, vmm, heap.StringKey("name"), this); thrown == nil && nv.IsString() {
			name = vmm.Heap.GoString(nv)
		}
		if this.Tag() == value.TagECMAScriptFunction {
			return vmm.Heap.NewString("function " + name + "() { ... }"), nil
		}
		return vmm.Heap.NewString("function " + name + "() { [native code] }"), nil
	})

	return nil
}

// spreadArrayLike reads an array-like value's "length" and indexed
// properties into a Go slice, the shared helper Function.apply and
// Reflect-style builtins need (22.1.3.23's CreateListFromArrayLike).
func spreadArrayLike(vmm *vm.VM, v value.Value) ([]value.Value, *object.Throw) {
	if v.IsNullish() {
		return nil, nil
	}
	lenVal, thrown := object.For(v).Get(vmm.Heap, vmm, heap.StringKey("length"), v)
	if thrown != nil {
		return nil, thrown
	}
	n, thrown := vmm.ToUint32(lenVal)
	if thrown != nil {
		return nil, thrown
	}
	out := make([]value.Value, n)
	for i := uint32(0); i < n; i++ {
		elem, thrown := object.For(v).Get(vmm.Heap, vmm, heap.StringKey(strconv.FormatUint(uint64(i), 10)), v)
		if thrown != nil {
			return nil, thrown
		}
		out[i] = elem
	}
	return out, nil
}
