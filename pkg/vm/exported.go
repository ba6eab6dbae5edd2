package vm

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
)

// This file exports the abstract-operation helpers pkg/builtins needs to
// implement intrinsics against arbitrary argument values, following the
// same thin-wrapper pattern as ToDisplayString in errors.go: the
// coercion logic itself stays unexported and unchanged, only reachable
// from outside this package through these names.

// ToNumber implements ToNumber (7.1.4).
func (vm *VM) ToNumber(v value.Value) (float64, *object.Throw) { return vm.toNumber(v) }

// ToBoolean implements ToBoolean (7.1.2); it never throws.
func (vm *VM) ToBoolean(v value.Value) bool { return vm.toBoolean(v) }

// ToInt32 implements ToInt32 (7.1.6).
func (vm *VM) ToInt32(v value.Value) (int32, *object.Throw) { return vm.toInt32(v) }

// ToUint32 implements ToUint32 (7.1.7).
func (vm *VM) ToUint32(v value.Value) (uint32, *object.Throw) { return vm.toUint32(v) }

// ToPropertyKey implements ToPropertyKey (7.1.19).
func (vm *VM) ToPropertyKey(v value.Value) (heap.PropertyKey, *object.Throw) { return vm.toPropertyKey(v) }

// ToPrimitive implements ToPrimitive (7.1.1); hint is "default", "string", or "number".
func (vm *VM) ToPrimitive(v value.Value, hint string) (value.Value, *object.Throw) {
	return vm.toPrimitive(v, hint)
}

// TypeOf implements the typeof operator's string result (13.5.3).
func (vm *VM) TypeOf(v value.Value) string { return vm.typeofString(v) }

// LooseEquals implements the Abstract Equality Comparison (7.2.14).
func (vm *VM) LooseEquals(a, b value.Value) (bool, *object.Throw) { return vm.looseEquals(a, b) }

// InstanceOf implements the instanceof operator (13.10.2), including the
// OrdinaryHasInstance fallback when constructor has no Symbol.hasInstance.
func (vm *VM) InstanceOf(v, constructor value.Value) (value.Value, *object.Throw) {
	return vm.instanceOf(v, constructor)
}

// MakeError allocates a new Error-kind object (TypeError/RangeError/...)
// the way this VM's own internal throws do, for builtins that need to
// construct one without duplicating vm.Heap.NewError plumbing.
func (vm *VM) MakeError(kind, message string) value.Value { return vm.makeError(kind, message) }

func (vm *VM) TypeError(message string) value.Value      { return vm.typeError(message) }
func (vm *VM) RangeError(message string) value.Value      { return vm.rangeError(message) }
func (vm *VM) ReferenceErrorValue(message string) value.Value { return vm.referenceError(message) }
func (vm *VM) SyntaxErrorValue(message string) value.Value    { return vm.syntaxError(message) }

// Throw wraps v in an *object.Throw, the uniform error-signaling value
// every VM-facing call (Call/Construct/native functions) returns.
func (vm *VM) Throw(v value.Value) *object.Throw { return vm.newThrow(v) }
