package builtins

import (
	"math"
	"math/rand"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// MathInitializer builds the Math namespace object, grounded on the
// teacher's math_init.go (one native function per Math.* method,
// wrapping math.* directly since no domain-specific numeric library
// exists anywhere in the pack for this).
type MathInitializer struct{}

func (m *MathInitializer) Name() string  { return "Math" }
func (m *MathInitializer) Priority() int { return PriorityMath }

func (m *MathInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	vv := ctx.VM

	mathObj := ctx.NewPlainObject(vv.ObjectPrototype)
	ctx.Global("Math", mathObj)
	ctx.Intrinsic("Math", mathObj)

	ctx.Constant(mathObj, "PI", h.NewNumber(math.Pi))
	ctx.Constant(mathObj, "E", h.NewNumber(math.E))
	ctx.Constant(mathObj, "LN2", h.NewNumber(math.Ln2))
	ctx.Constant(mathObj, "LN10", h.NewNumber(math.Log(10)))
	ctx.Constant(mathObj, "LOG2E", h.NewNumber(1/math.Ln2))
	ctx.Constant(mathObj, "LOG10E", h.NewNumber(1/math.Log(10)))
	ctx.Constant(mathObj, "SQRT2", h.NewNumber(math.Sqrt2))
	ctx.Constant(mathObj, "SQRT1_2", h.NewNumber(math.Sqrt(0.5)))

	unary := func(name string, fn func(float64) float64) {
		ctx.Method(mathObj, name, 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
			f, thrown := vmm.ToNumber(vmArg(args, 0))
			if thrown != nil {
				return value.Undefined, thrown
			}
			return vmm.Heap.NewNumber(fn(f)), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", func(f float64) float64 { return math.Floor(f + 0.5) })
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f):
			return math.NaN()
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	unary("exp", math.Exp)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)

	ctx.Method(mathObj, "pow", 2, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		base, thrown := vmm.ToNumber(vmArg(args, 0))
		if thrown != nil {
			return value.Undefined, thrown
		}
		exp, thrown := vmm.ToNumber(vmArg(args, 1))
		if thrown != nil {
			return value.Undefined, thrown
		}
		return vmm.Heap.NewNumber(math.Pow(base, exp)), nil
	})
	ctx.Method(mathObj, "atan2", 2, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		y, thrown := vmm.ToNumber(vmArg(args, 0))
		if thrown != nil {
			return value.Undefined, thrown
		}
		x, thrown := vmm.ToNumber(vmArg(args, 1))
		if thrown != nil {
			return value.Undefined, thrown
		}
		return vmm.Heap.NewNumber(math.Atan2(y, x)), nil
	})
	ctx.Method(mathObj, "hypot", 2, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		sum := 0.0
		for _, a := range args {
			f, thrown := vmm.ToNumber(a)
			if thrown != nil {
				return value.Undefined, thrown
			}
			sum += f * f
		}
		return vmm.Heap.NewNumber(math.Sqrt(sum)), nil
	})
	ctx.Method(mathObj, "max", 2, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return mathExtreme(vmm, args, math.Inf(-1), func(a, b float64) float64 { return math.Max(a, b) })
	})
	ctx.Method(mathObj, "min", 2, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return mathExtreme(vmm, args, math.Inf(1), func(a, b float64) float64 { return math.Min(a, b) })
	})
	ctx.Method(mathObj, "random", 0, func(vmm *vm.VM, _ value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return vmm.Heap.NewNumber(rand.Float64()), nil
	})

	return nil
}

func mathExtreme(vmm *vm.VM, args []value.Value, seed float64, combine func(a, b float64) float64) (value.Value, *object.Throw) {
	result := seed
	for _, a := range args {
		f, thrown := vmm.ToNumber(a)
		if thrown != nil {
			return value.Undefined, thrown
		}
		if math.IsNaN(f) {
			return vmm.Heap.NewNumber(math.NaN()), nil
		}
		result = combine(result, f)
	}
	return vmm.Heap.NewNumber(result), nil
}
