// Package builtins bootstraps a pkg/runtime.Realm's intrinsics: the
// Object/Function/Array/String/Number/Boolean/Error/Math/JSON/console
// objects every script expects on its global environment. Grounded on
// the teacher's pkg/builtins package (BuiltinInitializer/RuntimeContext/
// GetStandardInitializers), with its InitTypes half dropped entirely —
// this repo has no static type checker (SPEC_FULL.md names none), so
// only the InitRuntime half of the teacher's two-phase initializer
// survives, renamed Init.
package builtins

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/runtime"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// Initializer is implemented by each builtin module, one per well-known
// global (Object, Function, Array, ...). Mirrors the teacher's
// BuiltinInitializer with InitTypes removed.
type Initializer interface {
	// Name identifies the module for diagnostics ("Object", "Array", ...).
	Name() string

	// Priority returns initialization order; lower runs first. Object
	// and Function must precede everything else since every other
	// prototype chains to Object.prototype and every constructor
	// function's own prototype is Function.prototype.
	Priority() int

	// Init populates ctx.Realm's intrinsics and global bindings.
	Init(ctx *Context) error
}

// Priority constants, grounded 1:1 on the teacher's standard.go.
const (
	PriorityObject  = 0
	PriorityFunction = 1
	PriorityArray   = 3
	PriorityString  = 10
	PriorityNumber  = 11
	PriorityBoolean = 12
	PriorityRegExp  = 13
	PriorityError   = 20
	PriorityMath    = 100
	PriorityJSON    = 101
	PriorityConsole = 102
	PriorityGlobals = 103
)

// Context is what the teacher calls RuntimeContext: everything an
// Initializer needs to build intrinsic objects and register them both
// on realm.Intrinsics (for pkg/runtime.Agent.enterRealm to find) and on
// the realm's global object (for script-visible bindings like `Array`,
// `Math`, `console`).
type Context struct {
	VM    *vm.VM
	Realm *runtime.Realm
	Heap  *heap.Heap
}

// Intrinsic records a value under name in ctx.Realm.Intrinsics, for
// names pkg/runtime.Agent.enterRealm or a later initializer looks up
// directly (e.g. "Object.prototype", "%ThrowTypeError%").
func (c *Context) Intrinsic(name string, v value.Value) {
	c.Realm.Intrinsics[name] = v
}

// Global defines name as a non-enumerable, writable, configurable own
// data property of the realm's global object — the shape every builtin
// global (Array, Math, console, NaN, ...) takes, matching 19's "every
// value property of the global object... writable, non-enumerable,
// configurable unless otherwise specified".
func (c *Context) Global(name string, v value.Value) {
	object.For(c.Realm.GlobalObject).DefineOwnProperty(c.Heap, heap.StringKey(name), object.Descriptor{
		HasValue: true, Value: v,
		HasWritable: true, Writable: true,
		HasConfigurable: true, Configurable: true,
	})
}

// Method registers fn as a non-enumerable own method of target, the
// shape every prototype method (Object.prototype.toString,
// Array.prototype.map, ...) takes per 17's "every built-in function
// property... writable, non-enumerable, configurable".
func (c *Context) Method(target value.Value, name string, length int, fn vm.NativeFunc) {
	id := c.VM.RegisterNative(fn)
	fnVal := c.Heap.NewBuiltinFunction(&heap.BuiltinFunctionRecord{
		FunctionCommon: heap.FunctionCommon{
			ExoticHeader:   heap.ExoticHeader{Prototype: c.VM.FunctionPrototype, Extensible: true},
			Name:           name,
			ParameterCount: length,
		},
		NativeID: id,
	})
	c.defineLengthName(fnVal, name, length)
	object.For(target).DefineOwnProperty(c.Heap, heap.StringKey(name), object.Descriptor{
		HasValue: true, Value: fnVal,
		HasWritable: true, Writable: true,
		HasConfigurable: true, Configurable: true,
	})
}

// Constructor registers fn as a constructable builtin function bound to
// name on both the realm's global object and as the returned value, so
// callers can wire up a .prototype property and Intrinsic() it under
// the conventional "Name"/"Name.prototype" keys.
func (c *Context) Constructor(name string, length int, fn vm.NativeFunc) value.Value {
	id := c.VM.RegisterNative(fn)
	fnVal := c.Heap.NewBuiltinFunction(&heap.BuiltinFunctionRecord{
		FunctionCommon: heap.FunctionCommon{
			ExoticHeader:   heap.ExoticHeader{Prototype: c.VM.FunctionPrototype, Extensible: true},
			Name:           name,
			ParameterCount: length,
		},
		NativeID:      id,
		IsConstructor: true,
	})
	c.defineLengthName(fnVal, name, length)
	c.Global(name, fnVal)
	return fnVal
}

func (c *Context) defineLengthName(fnVal value.Value, name string, length int) {
	object.For(fnVal).DefineOwnProperty(c.Heap, heap.StringKey("length"), object.Descriptor{
		HasValue: true, Value: c.Heap.NewNumber(float64(length)),
		HasConfigurable: true, Configurable: true,
	})
	object.For(fnVal).DefineOwnProperty(c.Heap, heap.StringKey("name"), object.Descriptor{
		HasValue: true, Value: c.Heap.NewString(name),
		HasConfigurable: true, Configurable: true,
	})
}

// DataProperty defines a plain writable/enumerable/configurable own
// data property — the common case for object literal-shaped results
// (a module namespace-like Math/JSON object's own properties).
func (c *Context) DataProperty(target value.Value, key string, v value.Value) {
	object.For(target).DefineOwnProperty(c.Heap, heap.StringKey(key), object.Descriptor{
		HasValue: true, Value: v,
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: true,
		HasConfigurable: true, Configurable: true,
	})
}

// Constant defines a non-writable, non-enumerable, non-configurable own
// data property — used for things like Math.PI and Number.MAX_VALUE
// (20.2.1/20.3.1's "not writable, not enumerable, not configurable").
func (c *Context) Constant(target value.Value, key string, v value.Value) {
	object.For(target).DefineOwnProperty(c.Heap, heap.StringKey(key), object.Descriptor{
		HasValue: true, Value: v,
	})
}

// NewPlainObject allocates a fresh ordinary object with the given
// prototype, the builtin-module equivalent of an object literal.
func (c *Context) NewPlainObject(proto value.Value) value.Value {
	return c.Heap.NewOrdinaryObject(heap.RootShape(proto), proto)
}
