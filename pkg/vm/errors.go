package vm

import (
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
)

func (vm *VM) newThrow(v value.Value) *object.Throw { return &object.Throw{Value: v} }

// errorPrototype looks up kind's intrinsic prototype, falling back to
// value.Undefined (a null-prototype error object) before pkg/runtime has
// populated vm.ErrorPrototypes — lets the VM's own coercion/reference
// failures construct a usable error value even when run standalone.
func (vm *VM) errorPrototype(kind string) value.Value {
	if p, ok := vm.ErrorPrototypes[kind]; ok {
		return p
	}
	return vm.ErrorPrototypes["Error"]
}

func (vm *VM) makeError(kind, message string) value.Value {
	return vm.Heap.NewError(kind, vm.Heap.NewString(message), vm.errorPrototype(kind))
}

func (vm *VM) typeError(message string) value.Value      { return vm.makeError("TypeError", message) }
func (vm *VM) rangeError(message string) value.Value     { return vm.makeError("RangeError", message) }
func (vm *VM) referenceError(message string) value.Value { return vm.makeError("ReferenceError", message) }
func (vm *VM) syntaxError(message string) value.Value    { return vm.makeError("SyntaxError", message) }

// ToDisplayString implements ToString (7.1.17) over a value exported
// for hosts (pkg/runtime's uncaught-exception reporting, cmd/ecmacore's
// result printing) that need to render a Value without reaching
// into this package's unexported coercion helpers.
func (vm *VM) ToDisplayString(v value.Value) (string, *object.Throw) {
	return vm.toString(v)
}
