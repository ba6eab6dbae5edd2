package builtins

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// BooleanInitializer builds %Boolean.prototype% and the Boolean
// constructor — the other initializer the teacher's standard.go left
// commented out; built here the same way Number's was.
type BooleanInitializer struct{}

func (b *BooleanInitializer) Name() string  { return "Boolean" }
func (b *BooleanInitializer) Priority() int { return PriorityBoolean }

func (b *BooleanInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	vv := ctx.VM

	proto := h.NewOrdinaryObject(heap.RootShape(vv.ObjectPrototype), vv.ObjectPrototype)
	vv.BooleanPrototype = proto
	ctx.Intrinsic("Boolean.prototype", proto)

	ctx.Method(proto, "toString", 0, func(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
		if vmm.ToBoolean(this) {
			return vmm.Heap.NewString("true"), nil
		}
		return vmm.Heap.NewString("false"), nil
	})
	ctx.Method(proto, "valueOf", 0, func(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return value.Boolean(vmm.ToBoolean(this)), nil
	})

	ctor := ctx.Constructor("Boolean", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return value.Boolean(vmm.ToBoolean(vmArg(args, 0))), nil
	})
	object.For(ctor).DefineOwnProperty(h, heap.StringKey("prototype"), object.Descriptor{HasValue: true, Value: proto})
	object.For(proto).DefineOwnProperty(h, heap.StringKey("constructor"), object.Descriptor{
		HasValue: true, Value: ctor, HasWritable: true, Writable: true, HasConfigurable: true, Configurable: true,
	})
	ctx.Intrinsic("Boolean", ctor)

	return nil
}
