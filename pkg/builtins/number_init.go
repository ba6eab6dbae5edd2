package builtins

import (
	"math"
	"strconv"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// NumberInitializer builds %Number.prototype% and the Number
// constructor, grounded on the teacher's (never-finished, per
// standard.go's commented-out line) number_init.go plan plus 21.1's
// own prescribed constants.
type NumberInitializer struct{}

func (n *NumberInitializer) Name() string  { return "Number" }
func (n *NumberInitializer) Priority() int { return PriorityNumber }

func (n *NumberInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	vv := ctx.VM

	proto := h.NewOrdinaryObject(heap.RootShape(vv.ObjectPrototype), vv.ObjectPrototype)
	vv.NumberPrototype = proto
	ctx.Intrinsic("Number.prototype", proto)

	ctx.Method(proto, "toString", 1, numberToString)
	ctx.Method(proto, "valueOf", 0, func(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
		if this.IsNumber() {
			return this, nil
		}
		return value.Undefined, vmm.Throw(vmm.TypeError("Number.prototype.valueOf requires a Number"))
	})
	ctx.Method(proto, "toFixed", 1, numberToFixed)

	ctor := ctx.Constructor("Number", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		if len(args) == 0 {
			return vmm.Heap.NewNumber(0), nil
		}
		f, thrown := vmm.ToNumber(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		return vmm.Heap.NewNumber(f), nil
	})
	object.For(ctor).DefineOwnProperty(h, heap.StringKey("prototype"), object.Descriptor{HasValue: true, Value: proto})
	object.For(proto).DefineOwnProperty(h, heap.StringKey("constructor"), object.Descriptor{
		HasValue: true, Value: ctor, HasWritable: true, Writable: true, HasConfigurable: true, Configurable: true,
	})
	ctx.Intrinsic("Number", ctor)

	ctx.Constant(ctor, "MAX_SAFE_INTEGER", h.NewNumber(9007199254740991))
	ctx.Constant(ctor, "MIN_SAFE_INTEGER", h.NewNumber(-9007199254740991))
	ctx.Constant(ctor, "MAX_VALUE", h.NewNumber(math.MaxFloat64))
	ctx.Constant(ctor, "MIN_VALUE", h.NewNumber(5e-324))
	ctx.Constant(ctor, "EPSILON", h.NewNumber(2.220446049250313e-16))
	ctx.Constant(ctor, "POSITIVE_INFINITY", h.NewNumber(math.Inf(1)))
	ctx.Constant(ctor, "NEGATIVE_INFINITY", h.NewNumber(math.Inf(-1)))
	ctx.Constant(ctor, "NaN", h.NewNumber(math.NaN()))
	ctx.Method(ctor, "isInteger", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		v := vmArg(args, 0)
		if !v.IsNumber() {
			return value.False, nil
		}
		f, _ := vmm.ToNumber(v)
		return value.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)), nil
	})
	ctx.Method(ctor, "isFinite", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		v := vmArg(args, 0)
		if !v.IsNumber() {
			return value.False, nil
		}
		f, _ := vmm.ToNumber(v)
		return value.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})
	ctx.Method(ctor, "isNaN", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		v := vmArg(args, 0)
		if !v.IsNumber() {
			return value.False, nil
		}
		f, _ := vmm.ToNumber(v)
		return value.Boolean(math.IsNaN(f)), nil
	})
	ctx.Method(ctor, "parseFloat", 1, globalParseFloat)
	ctx.Method(ctor, "parseInt", 2, globalParseInt)

	return nil
}

func numberToString(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	f, thrown := vmm.ToNumber(this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	radix := 10
	if len(args) > 0 && !args[0].IsUndefined() {
		n, thrown := vmm.ToNumber(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		radix = int(n)
	}
	if radix == 10 {
		s, thrown := vmm.ToDisplayString(this)
		_ = f
		if thrown != nil {
			return value.Undefined, thrown
		}
		return vmm.Heap.NewString(s), nil
	}
	return vmm.Heap.NewString(strconv.FormatInt(int64(f), radix)), nil
}

func numberToFixed(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	f, thrown := vmm.ToNumber(this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	digits := 0
	if len(args) > 0 && !args[0].IsUndefined() {
		n, thrown := vmm.ToNumber(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		digits = int(n)
	}
	return vmm.Heap.NewString(strconv.FormatFloat(f, 'f', digits, 64)), nil
}
