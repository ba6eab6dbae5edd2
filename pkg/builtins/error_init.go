package builtins

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// ErrorInitializer builds %Error.prototype% and every native error
// subtype's own prototype/constructor pair (TypeError, RangeError,
// ReferenceError, SyntaxError, EvalError, URIError), grounded on the
// teacher's error_init.go and populating exactly the "X.prototype" keys
// pkg/runtime.Agent.enterRealm already reads into vm.ErrorPrototypes.
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string  { return "Error" }
func (e *ErrorInitializer) Priority() int { return PriorityError }

var nativeErrorKinds = []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"}

func (e *ErrorInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	vv := ctx.VM

	errorProto := h.NewOrdinaryObject(heap.RootShape(vv.ObjectPrototype), vv.ObjectPrototype)
	ctx.Intrinsic("Error.prototype", errorProto)
	ctx.DataProperty(errorProto, "name", h.NewString("Error"))
	ctx.DataProperty(errorProto, "message", h.NewString(""))
	ctx.Method(errorProto, "toString", 0, errorToString)

	makeCtor := func(kind string, proto value.Value) value.Value {
		ctor := ctx.Constructor(kind, 1, func(vmm *vm.VM, this value.Value, args []value.Value, newTarget value.Value) (value.Value, *object.Throw) {
			msg := ""
			if len(args) > 0 && !args[0].IsUndefined() {
				s, thrown := vmm.ToDisplayString(args[0])
				if thrown != nil {
					return value.Undefined, thrown
				}
				msg = s
			}
			instanceProto := proto
			if newTarget.IsObjectLike() {
				if p, thrown := object.For(newTarget).Get(vmm.Heap, vmm, heap.StringKey("prototype"), newTarget); thrown == nil && p.IsObjectLike() {
					instanceProto = p
				}
			}
			errVal := vmm.Heap.NewError(kind, vmm.Heap.NewString(msg), instanceProto)
			if len(args) > 0 && !args[0].IsUndefined() {
				object.For(errVal).DefineOwnProperty(vmm.Heap, heap.StringKey("message"), object.Descriptor{
					HasValue: true, Value: vmm.Heap.NewString(msg), HasWritable: true, Writable: true, HasConfigurable: true, Configurable: true,
				})
			}
			return errVal, nil
		})
		object.For(ctor).DefineOwnProperty(h, heap.StringKey("prototype"), object.Descriptor{HasValue: true, Value: proto})
		object.For(proto).DefineOwnProperty(h, heap.StringKey("constructor"), object.Descriptor{
			HasValue: true, Value: ctor, HasWritable: true, Writable: true, HasConfigurable: true, Configurable: true,
		})
		ctx.Intrinsic(kind, ctor)
		return ctor
	}

	errorCtor := makeCtor("Error", errorProto)

	for _, kind := range nativeErrorKinds {
		proto := h.NewOrdinaryObject(heap.RootShape(errorProto), errorProto)
		ctx.Intrinsic(kind+".prototype", proto)
		ctx.DataProperty(proto, "name", h.NewString(kind))
		ctx.DataProperty(proto, "message", h.NewString(""))
		ctor := makeCtor(kind, proto)
		object.For(ctor).SetPrototypeOf(h, errorCtor)
	}

	return nil
}

func errorToString(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	name := "Error"
	if nv, thrown := object.For(this).Get(vmm.Heap, vmm, heap.StringKey("name"), this); thrown == nil && !nv.IsUndefined() {
		if s, thrown := vmm.ToDisplayString(nv); thrown == nil {
			name = s
		}
	}
	msg := ""
	if mv, thrown := object.For(this).Get(vmm.Heap, vmm, heap.StringKey("message"), this); thrown == nil && !mv.IsUndefined() {
		if s, thrown := vmm.ToDisplayString(mv); thrown == nil {
			msg = s
		}
	}
	if msg == "" {
		return vmm.Heap.NewString(name), nil
	}
	return vmm.Heap.NewString(name + ": " + msg), nil
}
