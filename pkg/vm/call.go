package vm

import (
	"ecmacore/pkg/bytecode"
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
)

// Call implements the object.Caller seam pkg/object's Get/Set/HasProperty
// dispatch to when an accessor or function value needs to run, and is
// also what OpEvaluateCall drives directly. Mirrors [[Call]] (10.2.1)
// over this engine's three function record kinds.
func (vm *VM) Call(fn, this value.Value, args []value.Value) (value.Value, *object.Throw) {
	switch fn.Tag() {
	case value.TagBoundFunction:
		rec := vm.Heap.BoundFunctions.Get(fn.HeapIndex())
		merged := append(append([]value.Value{}, rec.BoundArgs...), args...)
		return vm.Call(rec.Target, rec.BoundThis, merged)
	case value.TagBuiltinFunction:
		rec := vm.Heap.BuiltinFunctions.Get(fn.HeapIndex())
		if int(rec.NativeID) >= len(vm.NativeFns) {
			return value.Undefined, vm.newThrow(vm.typeError(rec.Name + " has no registered implementation"))
		}
		return vm.NativeFns[rec.NativeID](vm, this, args, value.Undefined)
	case value.TagECMAScriptFunction:
		rec := vm.Heap.ECMAScriptFunctions.Get(fn.HeapIndex())
		return vm.invoke(rec, this, args, value.Undefined)
	default:
		return value.Undefined, vm.newThrow(vm.typeError(describeNotAFunction(vm, fn) + " is not a function"))
	}
}

// Construct implements [[Construct]] (10.2.2): builtins decide their own
// construction behavior (passed a non-undefined newTarget to branch on),
// ECMAScript functions get a fresh ordinary object on their own
// "prototype" property, bound functions forward to their target with
// newTarget rewritten when the caller passed the bound function itself.
func (vm *VM) Construct(fn value.Value, args []value.Value, newTarget value.Value) (value.Value, *object.Throw) {
	switch fn.Tag() {
	case value.TagBoundFunction:
		rec := vm.Heap.BoundFunctions.Get(fn.HeapIndex())
		merged := append(append([]value.Value{}, rec.BoundArgs...), args...)
		nt := newTarget
		if value.SameValue(nt, fn, vm.Heap, vm.Heap, vm.Heap) {
			nt = rec.Target
		}
		return vm.Construct(rec.Target, merged, nt)
	case value.TagBuiltinFunction:
		rec := vm.Heap.BuiltinFunctions.Get(fn.HeapIndex())
		if !rec.IsConstructor {
			return value.Undefined, vm.newThrow(vm.typeError(rec.Name + " is not a constructor"))
		}
		if int(rec.NativeID) >= len(vm.NativeFns) {
			return value.Undefined, vm.newThrow(vm.typeError(rec.Name + " has no registered implementation"))
		}
		return vm.NativeFns[rec.NativeID](vm, value.Undefined, args, newTarget)
	case value.TagECMAScriptFunction:
		rec := vm.Heap.ECMAScriptFunctions.Get(fn.HeapIndex())
		if rec.ThisMode == heap.ThisModeLexical {
			return value.Undefined, vm.newThrow(vm.typeError(rec.Name + " is not a constructor"))
		}
		protoVal, thrown := object.For(fn).Get(vm.Heap, vm, heap.StringKey("prototype"), fn)
		if thrown != nil {
			return value.Undefined, thrown
		}
		proto := protoVal
		if !proto.IsObjectLike() {
			proto = vm.ObjectPrototype
		}
		thisObj := vm.Heap.NewOrdinaryObject(heap.RootShape(proto), proto)
		result, thrown := vm.invoke(rec, thisObj, args, newTarget)
		if thrown != nil {
			return value.Undefined, thrown
		}
		if result.IsObjectLike() {
			return result, nil
		}
		return thisObj, nil
	default:
		return value.Undefined, vm.newThrow(vm.typeError(describeNotAFunction(vm, fn) + " is not a constructor"))
	}
}

func describeNotAFunction(vm *VM, v value.Value) string {
	s, thrown := vm.toString(v)
	if thrown != nil {
		return "value"
	}
	return s
}

// invoke runs an ECMAScriptFunctionRecord's body in a fresh call
// environment: parameters bound positionally (missing args read as
// undefined, per OrdinaryCallBindThis/FunctionDeclarationInstantiation
// 10.2.11/10.2.12 simplified to this engine's single-environment-per-
// function-body model), `this`/newTarget set on that environment unless
// the function is an arrow (ThisModeLexical — no HasThis of its own, so
// OpResolveThisBinding transparently finds the enclosing scope's this).
func (vm *VM) invoke(rec *heap.ECMAScriptFunctionRecord, this value.Value, args []value.Value, newTarget value.Value) (value.Value, *object.Throw) {
	if len(vm.Frames) >= maxCallDepth {
		return value.Undefined, vm.newThrow(vm.rangeError("Maximum call stack size exceeded"))
	}
	exeAny := vm.Heap.Executables.Get(rec.Executable)
	exe := exeAny.(*bytecode.Executable)

	envIdx, env := vm.Heap.NewEnvironment(rec.Environment)
	for i, name := range exe.ParameterNames {
		v := Arg(args, i)
		env.Bindings[name] = v
		env.Mutable[name] = true
		env.Initialized[name] = true
	}
	if rec.ThisMode != heap.ThisModeLexical {
		env.HasThis = true
		env.ThisValue = this
		env.NewTarget = newTarget
	}

	frame := &Frame{
		exe:       exe,
		env:       envIdx,
		valueStack: make([]value.Value, 0, exe.StackSlots),
		function:  value.Undefined,
		newTarget: newTarget,
	}
	vm.Frames = append(vm.Frames, frame)
	result, thrown := vm.runFrame(frame)
	vm.Frames = vm.Frames[:len(vm.Frames)-1]
	return result, thrown
}

// newFunctionObject builds the heap records backing a function
// expression/declaration/arrow evaluated at runtime: an
// ECMAScriptFunctionRecord capturing env, plus (for non-arrows) the own
// "prototype" object [[Construct]] needs and the .length/.name data
// properties every function exposes (19.2.4/20.2).
func (vm *VM) newFunctionObject(desc bytecode.FunctionDescriptor, env uint32, isArrow bool) value.Value {
	h := vm.Heap
	execIdx := h.Executables.Alloc(desc.Executable)
	rec := &heap.ECMAScriptFunctionRecord{
		FunctionCommon: heap.FunctionCommon{
			ExoticHeader:   heap.ExoticHeader{Prototype: vm.FunctionPrototype, Extensible: true},
			Name:           desc.Name,
			ParameterCount: desc.ParameterCount,
		},
		Executable:  execIdx,
		Environment: env,
		IsStrict:    desc.IsStrict,
		IsGenerator: desc.IsGenerator,
		IsAsync:     desc.IsAsync,
	}
	if isArrow {
		rec.ThisMode = heap.ThisModeLexical
	} else {
		rec.ThisMode = heap.ThisModeStrict
	}
	fn := h.NewECMAScriptFunction(rec)

	if !isArrow {
		protoObj := h.NewOrdinaryObject(heap.RootShape(vm.ObjectPrototype), vm.ObjectPrototype)
		object.For(protoObj).DefineOwnProperty(h, heap.StringKey("constructor"), object.Descriptor{
			HasValue: true, Value: fn,
			HasWritable: true, Writable: true,
			HasConfigurable: true, Configurable: true,
		})
		object.For(fn).DefineOwnProperty(h, heap.StringKey("prototype"), object.Descriptor{
			HasValue: true, Value: protoObj,
			HasWritable: true, Writable: true,
		})
	}
	object.For(fn).DefineOwnProperty(h, heap.StringKey("length"), object.Descriptor{
		HasValue: true, Value: h.NewNumber(float64(desc.ParameterCount)),
		HasConfigurable: true, Configurable: true,
	})
	name := desc.Name
	object.For(fn).DefineOwnProperty(h, heap.StringKey("name"), object.Descriptor{
		HasValue: true, Value: h.NewString(name),
		HasConfigurable: true, Configurable: true,
	})
	return fn
}

var _ object.Caller = (*VM)(nil)
