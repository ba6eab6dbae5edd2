// Package vm executes pkg/bytecode Executables against pkg/heap records:
// the accumulator + value-stack + reference-stack machine SPEC_FULL.md
// 6.6/4.6.3 names. Grounded format-wise on the teacher's pkg/vm.VM (a
// CallFrame stack, a giant opcode switch in one dispatch loop, a
// runtimeError-style helper for surfacing failures) but built around a
// completely different execution model: the teacher dispatches over
// fixed-size register windows, this VM dispatches over one accumulator
// register, an explicit value stack, and an explicit reference stack,
// with every named binding routed through a heap.EnvironmentRecord chain
// instead of a register slot (see pkg/compiler's package doc for why).
package vm

import (
	"fmt"

	"ecmacore/pkg/bytecode"
	"ecmacore/pkg/gc"
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
)

// maxCallDepth bounds the Go call stack vm.invoke recurses through (one
// Go stack frame per active ECMAScript call), mirroring the teacher's
// MaxFrames guard against runaway recursion exhausting real stack space.
const maxCallDepth = 1024

// referenceKind distinguishes the two things a Reference can address —
// see SPEC_FULL.md 6.6's Reference Record.
type referenceKind uint8

const (
	refBinding referenceKind = iota
	refProperty
)

// Reference is the VM's reference-stack entry: either a resolved (or
// unresolved — env == 0) environment binding, or a property on a base
// value. OpGetValue/OpPutValue dereference whichever is on top without
// needing to know which kind it is until they get there.
type Reference struct {
	kind referenceKind
	env  uint32 // refBinding: resolved environment index; 0 == unresolved
	name string // refBinding: the identifier; refProperty: unused
	base value.Value
	key  value.Value
}

// handlerEntry is one exception-handler-stack entry: where to resume
// and how far to unwind both the value and reference stacks, recorded
// when OpPushExceptionJumpTarget runs.
type handlerEntry struct {
	handlerPC  int
	valueDepth int
	refDepth   int
}

// Frame is one active call's execution state. Unlike the teacher's
// CallFrame (a window into a shared register file), every Frame owns
// its value/reference stacks outright: nothing ever reaches across a
// frame boundary mid-expression, so there is no register-window
// bookkeeping to do at call/return time.
type Frame struct {
	exe *bytecode.Executable
	pc  int
	env uint32
	acc value.Value

	valueStack []value.Value
	refStack   []Reference

	exceptionHandlers  []handlerEntry
	pendingException   value.Value
	hasPendingException bool

	function  value.Value // the function record Value this frame executes, for diagnostics
	newTarget value.Value
}

// VM owns one heap and the realm-level intrinsic prototypes pkg/runtime
// wires in after bootstrapping; every one of these defaults to
// value.Undefined until then, which IsObjectLike() reports false for, so
// a lookup against it behaves like a null-prototype object (the
// practical fallback for running the VM's own tests before pkg/runtime
// exists to supply real intrinsics).
type VM struct {
	Heap *heap.Heap

	Frames []*Frame

	NativeFns []NativeFunc

	ObjectPrototype   value.Value
	FunctionPrototype value.Value
	ArrayPrototype    value.Value
	StringPrototype   value.Value
	NumberPrototype   value.Value
	BooleanPrototype  value.Value

	// ErrorPrototypes maps "TypeError"/"RangeError"/"ReferenceError"/
	// "SyntaxError"/"Error" to the realm's corresponding prototype
	// object. Looked up lazily so vm.typeError etc. keep working (with
	// a null-prototype Error object) before pkg/runtime has bootstrapped
	// the intrinsics that populate this map.
	ErrorPrototypes map[string]value.Value

	// GlobalEnv is the outermost environment every top-level script
	// Executable runs against; pkg/runtime creates one per Realm.
	GlobalEnv uint32
}

// New creates a VM with a fresh global environment over h. Prototypes
// are left at value.Undefined; a caller bootstrapping a full realm
// (pkg/runtime) sets them once intrinsics exist.
func New(h *heap.Heap) *VM {
	vm := &VM{Heap: h, ErrorPrototypes: make(map[string]value.Value)}
	idx, env := h.NewEnvironment(0)
	env.HasThis = true
	env.ThisValue = value.Undefined
	vm.GlobalEnv = idx
	return vm
}

// RunScript executes exe as a top-level script against vm.GlobalEnv,
// the way pkg/runtime drives a freshly compiled Program.
func (vm *VM) RunScript(exe *bytecode.Executable) (value.Value, *object.Throw) {
	frame := &Frame{exe: exe, env: vm.GlobalEnv, valueStack: make([]value.Value, 0, exe.StackSlots)}
	vm.Frames = append(vm.Frames, frame)
	result, thrown := vm.runFrame(frame)
	vm.Frames = vm.Frames[:len(vm.Frames)-1]
	return result, thrown
}

// raise looks for an enclosing handler in frame and, if one exists,
// rewinds frame's stacks and resumes at its handler PC; the caller's
// dispatch loop must `continue` in that case rather than fall through
// to whatever instruction it meant to run next. If no handler exists,
// the exception escapes this frame entirely.
func (vm *VM) raise(frame *Frame, thrown value.Value) bool {
	if len(frame.exceptionHandlers) == 0 {
		return false
	}
	h := frame.exceptionHandlers[len(frame.exceptionHandlers)-1]
	frame.exceptionHandlers = frame.exceptionHandlers[:len(frame.exceptionHandlers)-1]
	frame.valueStack = frame.valueStack[:h.valueDepth]
	frame.refStack = frame.refStack[:h.refDepth]
	frame.pc = h.handlerPC
	frame.pendingException = thrown
	frame.hasPendingException = true
	frame.acc = thrown
	return true
}

// unwind is the dispatch loop's single chokepoint for turning a failed
// abstract operation into either a resumed handler (ok==true, caller
// continues the loop) or a propagated Throw (ok==false, caller returns
// it up to vm.invoke's caller).
func (vm *VM) unwind(frame *Frame, thrown value.Value) (value.Value, *object.Throw, bool) {
	if vm.raise(frame, thrown) {
		return value.Value{}, nil, true
	}
	return value.Undefined, &object.Throw{Value: thrown}, false
}

func (vm *VM) readUint16(frame *Frame) uint16 {
	v := frame.exe.ReadUint16(frame.pc)
	frame.pc += 2
	return v
}

func (vm *VM) push(frame *Frame, v value.Value) { frame.valueStack = append(frame.valueStack, v) }

// runFrame is the dispatch loop: decode, execute, repeat until OpReturn
// or an uncaught throw produces a result. Grounded structurally on the
// teacher's run()'s for{switch{}} shape, but over this engine's
// accumulator/value-stack/reference-stack opcode set instead of
// register-addressed arithmetic.
func (vm *VM) runFrame(frame *Frame) (value.Value, *object.Throw) {
	h := vm.Heap
	for {
		if frame.pc >= len(frame.exe.Code) {
			return value.Undefined, nil
		}
		op := bytecode.Op(frame.exe.Code[frame.pc])
		frame.pc++

		switch op {
		case bytecode.OpApplyBinary:
			operator := bytecode.BinaryOperator(vm.readUint16(frame))
			left := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			result, thrown := vm.applyBinary(operator, left, frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = result

		case bytecode.OpBitwiseNot:
			n, thrown := vm.toInt32(frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = h.NewNumber(float64(^n))

		case bytecode.OpLogicalNot:
			frame.acc = value.Boolean(!vm.toBoolean(frame.acc))

		case bytecode.OpUnaryMinus:
			f, thrown := vm.toNumber(frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = h.NewNumber(-f)

		case bytecode.OpLessThan, bytecode.OpGreaterThan, bytecode.OpLessThanOrEqual, bytecode.OpGreaterThanOrEqual:
			left := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			result, thrown := vm.relationalCompare(op, left, frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = result

		case bytecode.OpIsStrictlyEqual, bytecode.OpIsStrictlyNotEqual:
			left := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			eq := value.StrictEquals(left, frame.acc, h, h, h)
			if op == bytecode.OpIsStrictlyNotEqual {
				eq = !eq
			}
			frame.acc = value.Boolean(eq)

		case bytecode.OpIsLooselyEqual, bytecode.OpIsLooselyNotEqual:
			left := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			eq, thrown := vm.looseEquals(left, frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			if op == bytecode.OpIsLooselyNotEqual {
				eq = !eq
			}
			frame.acc = value.Boolean(eq)

		case bytecode.OpToNumber:
			f, thrown := vm.toNumber(frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = h.NewNumber(f)

		case bytecode.OpToNumeric:
			if frame.acc.IsBigInt() {
				break
			}
			f, thrown := vm.toNumber(frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = h.NewNumber(f)

		case bytecode.OpTypeofValue:
			frame.acc = h.NewString(vm.typeofString(frame.acc))

		case bytecode.OpLoad:
			vm.push(frame, frame.acc)

		case bytecode.OpStore:
			top := len(frame.valueStack) - 1
			frame.acc = frame.valueStack[top]
			frame.valueStack = frame.valueStack[:top]

		case bytecode.OpLoadConstant:
			idx := vm.readUint16(frame)
			frame.acc = frame.exe.Constants[idx]

		case bytecode.OpResolveBinding:
			idx := vm.readUint16(frame)
			name := h.GoString(frame.exe.Constants[idx])
			found, ok := resolveBinding(h, frame.env, name)
			if !ok {
				found = 0
			}
			frame.refStack = append(frame.refStack, Reference{kind: refBinding, env: found, name: name})

		case bytecode.OpResolveThisBinding:
			frame.acc = thisValueOf(h, frame.env)

		case bytecode.OpGetValue:
			ref := frame.refStack[len(frame.refStack)-1]
			v, thrown := vm.getReferenceValue(ref)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = v

		case bytecode.OpPutValue:
			ref := frame.refStack[len(frame.refStack)-1]
			frame.refStack = frame.refStack[:len(frame.refStack)-1]
			_, thrown := vm.putReferenceValue(ref, frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}

		case bytecode.OpPushReference:
			key := frame.valueStack[len(frame.valueStack)-1]
			base := frame.valueStack[len(frame.valueStack)-2]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-2]
			frame.refStack = append(frame.refStack, Reference{kind: refProperty, base: base, key: key})

		case bytecode.OpPopReference:
			frame.refStack = frame.refStack[:len(frame.refStack)-1]

		case bytecode.OpArrayCreate:
			count := int(vm.readUint16(frame))
			sp := len(frame.valueStack)
			elems := append([]value.Value{}, frame.valueStack[sp-count:sp]...)
			frame.valueStack = frame.valueStack[:sp-count]
			arr := h.NewArray(uint32(len(elems)), vm.ArrayPrototype)
			h.Arrays.Get(arr.HeapIndex()).Elements.Dense = elems
			frame.acc = arr

		case bytecode.OpArraySetValue:
			index := vm.readUint16(frame)
			arr := frame.valueStack[len(frame.valueStack)-1]
			rec := h.Arrays.Get(arr.HeapIndex())
			for len(rec.Elements.Dense) <= int(index) {
				rec.Elements.Dense = append(rec.Elements.Dense, value.Hole)
			}
			rec.Elements.Dense[index] = frame.acc

		case bytecode.OpArraySetLength:
			arr := frame.valueStack[len(frame.valueStack)-1]
			n, thrown := vm.toNumber(frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			h.Arrays.Get(arr.HeapIndex()).Length = uint32(n)

		case bytecode.OpObjectCreate:
			frame.acc = h.NewOrdinaryObject(heap.RootShape(vm.ObjectPrototype), vm.ObjectPrototype)

		case bytecode.OpObjectSetProperty:
			idx := vm.readUint16(frame)
			name := h.GoString(frame.exe.Constants[idx])
			obj := frame.valueStack[len(frame.valueStack)-1]
			object.For(obj).DefineOwnProperty(h, heap.StringKey(name), object.Descriptor{
				HasValue: true, Value: frame.acc,
				HasWritable: true, Writable: true,
				HasEnumerable: true, Enumerable: true,
				HasConfigurable: true, Configurable: true,
			})

		case bytecode.OpGetPropertyIdentifier:
			idx := vm.readUint16(frame)
			name := h.GoString(frame.exe.Constants[idx])
			v, thrown := vm.getProperty(frame.acc, heap.StringKey(name))
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = v

		case bytecode.OpSetPropertyIdentifier:
			idx := vm.readUint16(frame)
			name := h.GoString(frame.exe.Constants[idx])
			obj := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			_, thrown := vm.setProperty(obj, heap.StringKey(name), frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}

		case bytecode.OpGetPropertyExpression:
			key := frame.acc
			obj := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			pk, thrown := vm.toPropertyKey(key)
			if thrown == nil {
				frame.acc, thrown = vm.getProperty(obj, pk)
			}
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}

		case bytecode.OpSetPropertyExpression:
			value_ := frame.acc
			key := frame.valueStack[len(frame.valueStack)-1]
			obj := frame.valueStack[len(frame.valueStack)-2]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-2]
			pk, thrown := vm.toPropertyKey(key)
			if thrown == nil {
				_, thrown = vm.setProperty(obj, pk, value_)
			}
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = value_

		case bytecode.OpHasProperty:
			key := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			base := frame.acc
			if !base.IsObjectLike() {
				if _, t, ok := vm.unwind(frame, vm.typeError("Cannot use 'in' operator to search for a key in a non-object value")); !ok {
					return value.Undefined, t
				}
				continue
			}
			pk, thrown := vm.toPropertyKey(key)
			var has bool
			if thrown == nil {
				has, thrown = object.For(base).HasProperty(h, vm, pk)
			}
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = value.Boolean(has)

		case bytecode.OpDeleteProperty:
			key := frame.valueStack[len(frame.valueStack)-1]
			obj := frame.valueStack[len(frame.valueStack)-2]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-2]
			pk, thrown := vm.toPropertyKey(key)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			if !obj.IsObjectLike() {
				frame.acc = value.True
				break
			}
			frame.acc = value.Boolean(object.For(obj).Delete(h, pk))

		case bytecode.OpEvaluateCall:
			argCount := int(vm.readUint16(frame))
			sp := len(frame.valueStack)
			fn := frame.valueStack[sp-argCount-1]
			thisVal := frame.valueStack[sp-argCount-2]
			args := append([]value.Value{}, frame.valueStack[sp-argCount:sp]...)
			frame.valueStack = frame.valueStack[:sp-argCount-2]
			result, thrown := vm.Call(fn, thisVal, args)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = result

		case bytecode.OpEvaluateNew:
			argCount := int(vm.readUint16(frame))
			sp := len(frame.valueStack)
			fn := frame.valueStack[sp-argCount-1]
			args := append([]value.Value{}, frame.valueStack[sp-argCount:sp]...)
			frame.valueStack = frame.valueStack[:sp-argCount-1]
			result, thrown := vm.Construct(fn, args, fn)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = result

		case bytecode.OpLoadThisValue:
			frame.acc = thisValueOf(h, frame.env)

		case bytecode.OpInstanceofOperator:
			left := frame.valueStack[len(frame.valueStack)-1]
			frame.valueStack = frame.valueStack[:len(frame.valueStack)-1]
			result, thrown := vm.instanceOf(left, frame.acc)
			if thrown != nil {
				if _, t, ok := vm.unwind(frame, thrown.Value); !ok {
					return value.Undefined, t
				}
				continue
			}
			frame.acc = result

		case bytecode.OpJump:
			target := int(vm.readUint16(frame))
			frame.pc = target

		case bytecode.OpJumpConditional:
			thenTarget := int(vm.readUint16(frame))
			elseTarget := int(vm.readUint16(frame))
			if vm.toBoolean(frame.acc) {
				frame.pc = thenTarget
			} else {
				frame.pc = elseTarget
			}

		case bytecode.OpReturn:
			return frame.acc, nil

		case bytecode.OpThrow:
			if !vm.raise(frame, frame.acc) {
				return value.Undefined, &object.Throw{Value: frame.acc}
			}

		case bytecode.OpPushExceptionJumpTarget:
			target := int(vm.readUint16(frame))
			frame.exceptionHandlers = append(frame.exceptionHandlers, handlerEntry{
				handlerPC:  target,
				valueDepth: len(frame.valueStack),
				refDepth:   len(frame.refStack),
			})

		case bytecode.OpPopExceptionJumpTarget:
			frame.exceptionHandlers = frame.exceptionHandlers[:len(frame.exceptionHandlers)-1]

		case bytecode.OpRethrowExceptionIfAny:
			if frame.hasPendingException {
				thrown := frame.pendingException
				frame.hasPendingException = false
				if !vm.raise(frame, thrown) {
					return value.Undefined, &object.Throw{Value: thrown}
				}
			}

		case bytecode.OpCreateCatchBinding:
			idx := vm.readUint16(frame)
			name := h.GoString(frame.exe.Constants[idx])
			env := h.Environments.Get(frame.env)
			env.Bindings[name] = frame.pendingException
			env.Mutable[name] = true
			env.Initialized[name] = true
			frame.hasPendingException = false

		case bytecode.OpCreateMutableBinding:
			idx := vm.readUint16(frame)
			name := h.GoString(frame.exe.Constants[idx])
			env := h.Environments.Get(frame.env)
			env.Bindings[name] = frame.acc
			env.Mutable[name] = true
			env.Initialized[name] = true

		case bytecode.OpCreateImmutableBinding:
			idx := vm.readUint16(frame)
			name := h.GoString(frame.exe.Constants[idx])
			env := h.Environments.Get(frame.env)
			env.Bindings[name] = frame.acc
			env.Mutable[name] = false
			env.Initialized[name] = true

		case bytecode.OpInitializeReferencedBinding:
			ref := frame.refStack[len(frame.refStack)-1]
			frame.refStack = frame.refStack[:len(frame.refStack)-1]
			env := h.Environments.Get(ref.env)
			env.Bindings[ref.name] = frame.acc
			env.Initialized[ref.name] = true

		case bytecode.OpInstantiateOrdinaryFunctionExpression:
			idx := vm.readUint16(frame)
			desc := frame.exe.FunctionExpressions[idx]
			frame.acc = vm.newFunctionObject(desc, frame.env, false)

		case bytecode.OpInstantiateArrowFunctionExpression:
			idx := vm.readUint16(frame)
			desc := frame.exe.ArrowFunctions[idx]
			frame.acc = vm.newFunctionObject(desc, frame.env, true)

		case bytecode.OpMakeClosure:
			idx := vm.readUint16(frame)
			desc := frame.exe.FunctionExpressions[idx]
			frame.acc = vm.newFunctionObject(desc, frame.env, desc.IsArrow)

		case bytecode.OpSuspend, bytecode.OpResume:
			// Generator/async suspension is out of scope for this pass
			// (see DESIGN.md); reaching either here is a compiler bug
			// since nothing currently emits them.
			panic(fmt.Sprintf("vm: unimplemented suspension opcode %s", op))

		default:
			panic(fmt.Sprintf("vm: unknown opcode %s", op))
		}
	}
}

// --- gc.RootSource ---

// Roots returns every value.Value the VM holds live outside the heap's
// own reachability graph: each frame's accumulator, value stack, and
// property-reference base/key pairs, plus the realm-level intrinsic
// prototypes. Binding references need nothing here — the environment
// index they carry is already kept alive by EnvironmentRoots, and the
// binding's own value lives in that environment's Bindings map, walked
// by gc's markEnvironment.
func (vm *VM) Roots() []value.Value {
	var roots []value.Value
	for _, f := range vm.Frames {
		roots = append(roots, f.acc, f.function, f.newTarget)
		roots = append(roots, f.valueStack...)
		for _, r := range f.refStack {
			if r.kind == refProperty {
				roots = append(roots, r.base, r.key)
			}
		}
		roots = append(roots, f.pendingException)
	}
	roots = append(roots,
		vm.ObjectPrototype, vm.FunctionPrototype, vm.ArrayPrototype,
		vm.StringPrototype, vm.NumberPrototype, vm.BooleanPrototype)
	for _, p := range vm.ErrorPrototypes {
		roots = append(roots, p)
	}
	return roots
}

// RemapRoots rewrites every location Roots() read from, in the same
// order side effects don't depend on — each field is addressed
// directly rather than replayed positionally.
func (vm *VM) RemapRoots(remap func(value.Value) value.Value) {
	for _, f := range vm.Frames {
		f.acc = remap(f.acc)
		f.function = remap(f.function)
		f.newTarget = remap(f.newTarget)
		for i := range f.valueStack {
			f.valueStack[i] = remap(f.valueStack[i])
		}
		for i := range f.refStack {
			if f.refStack[i].kind == refProperty {
				f.refStack[i].base = remap(f.refStack[i].base)
				f.refStack[i].key = remap(f.refStack[i].key)
			}
		}
		f.pendingException = remap(f.pendingException)
	}
	vm.ObjectPrototype = remap(vm.ObjectPrototype)
	vm.FunctionPrototype = remap(vm.FunctionPrototype)
	vm.ArrayPrototype = remap(vm.ArrayPrototype)
	vm.StringPrototype = remap(vm.StringPrototype)
	vm.NumberPrototype = remap(vm.NumberPrototype)
	vm.BooleanPrototype = remap(vm.BooleanPrototype)
	for k, p := range vm.ErrorPrototypes {
		vm.ErrorPrototypes[k] = remap(p)
	}
}

// EnvironmentRoots exposes every frame's currently executing environment
// plus the VM-wide global environment — see gc.EnvironmentRoots' doc
// comment for why these need separate rooting from Roots().
func (vm *VM) EnvironmentRoots() []uint32 {
	roots := make([]uint32, 0, len(vm.Frames)+1)
	for _, f := range vm.Frames {
		roots = append(roots, f.env)
	}
	roots = append(roots, vm.GlobalEnv)
	return roots
}

func (vm *VM) RemapEnvironmentRoots(remap func(uint32) uint32) {
	for _, f := range vm.Frames {
		f.env = remap(f.env)
	}
	vm.GlobalEnv = remap(vm.GlobalEnv)
}

var _ gc.RootSource = (*VM)(nil)
