package vm

import "ecmacore/pkg/value"
import "ecmacore/pkg/object"

// NativeFunc is a Go-implemented function body reachable from bytecode
// through a heap.BuiltinFunctionRecord.NativeID index. this/args follow
// ordinary [[Call]] conventions; newTarget is value.Undefined for a
// plain call and the constructor being invoked for a [[Construct]] —
// builtins that serve as both (e.g. Error) branch on whether newTarget
// is undefined the way the teacher's native functions branched on an
// isConstructorCall flag.
type NativeFunc func(vm *VM, this value.Value, args []value.Value, newTarget value.Value) (value.Value, *object.Throw)

// RegisterNative appends fn to the VM's native table and returns the
// NativeID a BuiltinFunctionRecord should carry to reach it. pkg/builtins
// calls this once per intrinsic while bootstrapping a Realm.
func (vm *VM) RegisterNative(fn NativeFunc) uint32 {
	vm.NativeFns = append(vm.NativeFns, fn)
	return uint32(len(vm.NativeFns) - 1)
}

// Arg returns args[i], or undefined past the end — every native
// function reads its parameters this way rather than bounds-checking
// args directly, matching how OrdinaryCallBindThis pads missing
// arguments with undefined for ECMAScript functions.
func Arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}
