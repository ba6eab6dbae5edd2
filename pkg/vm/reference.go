package vm

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
)

// resolveBinding walks the environment chain starting at envIdx looking
// for name, mirroring GetIdentifierReference (9.1.2.1) restricted to
// this engine's single environment-per-function-body model (see
// pkg/compiler's package doc). ok is false when no environment in the
// chain declares name — callers leave Reference.env at 0 in that case,
// which getReferenceValue/putReferenceValue treat as "unresolvable".
func resolveBinding(h *heap.Heap, envIdx uint32, name string) (uint32, bool) {
	for idx := envIdx; idx != 0; {
		env := h.Environments.Get(idx)
		if _, ok := env.Bindings[name]; ok {
			return idx, true
		}
		idx = env.Outer
	}
	return 0, false
}

// thisValueOf walks up from envIdx to the nearest environment carrying
// `this` (a function/global/module environment, per 8.1.1.3/8.1.1.4) —
// arrow functions capture no HasThis environment of their own, so the
// walk transparently finds the enclosing non-arrow scope's `this`.
func thisValueOf(h *heap.Heap, envIdx uint32) value.Value {
	for idx := envIdx; idx != 0; {
		env := h.Environments.Get(idx)
		if env.HasThis {
			return env.ThisValue
		}
		idx = env.Outer
	}
	return value.Undefined
}

func (vm *VM) getReferenceValue(ref Reference) (value.Value, *object.Throw) {
	if ref.kind == refBinding {
		if ref.env == 0 {
			return value.Undefined, vm.newThrow(vm.referenceError(ref.name + " is not defined"))
		}
		env := vm.Heap.Environments.Get(ref.env)
		if !env.Initialized[ref.name] {
			return value.Undefined, vm.newThrow(vm.referenceError("Cannot access '" + ref.name + "' before initialization"))
		}
		return env.Bindings[ref.name], nil
	}
	key, thrown := vm.toPropertyKey(ref.key)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vm.getProperty(ref.base, key)
}

func (vm *VM) putReferenceValue(ref Reference, v value.Value) (bool, *object.Throw) {
	if ref.kind == refBinding {
		if ref.env == 0 {
			return false, vm.newThrow(vm.referenceError(ref.name + " is not defined"))
		}
		env := vm.Heap.Environments.Get(ref.env)
		if !env.Mutable[ref.name] {
			return false, vm.newThrow(vm.typeError("Assignment to constant variable."))
		}
		env.Bindings[ref.name] = v
		env.Initialized[ref.name] = true
		return true, nil
	}
	key, thrown := vm.toPropertyKey(ref.key)
	if thrown != nil {
		return false, thrown
	}
	return vm.setProperty(ref.base, key, v)
}

// getProperty implements the [[Get]] side of property access for every
// base value kind a GetPropertyIdentifier/GetPropertyExpression opcode
// can see: objects dispatch through pkg/object; strings first get
// .length and integer-index character access (by rune); strings,
// numbers and booleans then look the key up on the VM's String, Number
// or Boolean prototype when one is set. Any other base (symbols,
// bigints, or a primitive whose prototype is unset) returns undefined.
func (vm *VM) getProperty(base value.Value, key heap.PropertyKey) (value.Value, *object.Throw) {
	if base.IsNullish() {
		return value.Undefined, vm.newThrow(vm.typeError("Cannot read properties of " + vm.typeofString(base) + " (reading '" + keyDisplay(key) + "')"))
	}
	if base.IsObjectLike() {
		return object.For(base).Get(vm.Heap, vm, key, base)
	}
	if base.IsString() {
		if v, ok := vm.stringGetProperty(base, key); ok {
			return v, nil
		}
	}
	if vm.StringPrototype.IsObjectLike() && base.IsString() {
		return object.For(vm.StringPrototype).Get(vm.Heap, vm, key, base)
	}
	if vm.NumberPrototype.IsObjectLike() && base.IsNumber() {
		return object.For(vm.NumberPrototype).Get(vm.Heap, vm, key, base)
	}
	if vm.BooleanPrototype.IsObjectLike() && base.IsBoolean() {
		return object.For(vm.BooleanPrototype).Get(vm.Heap, vm, key, base)
	}
	return value.Undefined, nil
}

func (vm *VM) setProperty(base value.Value, key heap.PropertyKey, v value.Value) (bool, *object.Throw) {
	if base.IsNullish() {
		return false, vm.newThrow(vm.typeError("Cannot set properties of " + vm.typeofString(base) + " (setting '" + keyDisplay(key) + "')"))
	}
	if !base.IsObjectLike() {
		// Writing a property through a primitive base is a silent no-op in
		// sloppy mode (a throwaway boxed wrapper absorbs the write) — this
		// engine has no boxed-primitive wrappers, so it just drops the
		// write, matching the net observable effect.
		return false, nil
	}
	return object.For(base).Set(vm.Heap, vm, key, v, base)
}

func keyDisplay(key heap.PropertyKey) string {
	if key.Kind == heap.KeySymbol {
		return "Symbol()"
	}
	return key.Name
}

func (vm *VM) stringGetProperty(base value.Value, key heap.PropertyKey) (value.Value, bool) {
	if key.Kind != heap.KeyString {
		return value.Value{}, false
	}
	s := vm.Heap.GoString(base)
	runes := []rune(s)
	if key.Name == "length" {
		return vm.Heap.NewNumber(float64(len(runes))), true
	}
	idx, ok := stringIndex(key.Name)
	if !ok || idx < 0 || idx >= len(runes) {
		return value.Value{}, false
	}
	return vm.Heap.NewString(string(runes[idx])), true
}

func stringIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
