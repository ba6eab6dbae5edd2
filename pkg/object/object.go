// Package object implements the ordinary/exotic object internal-method
// protocol (ECMA-262 9.1/10.1) on top of pkg/heap's records. It is the
// layer pkg/vm's property-access opcodes call into; pkg/object never
// itself runs bytecode, but Get/Set on accessor properties call back
// into a Caller the VM supplies (calling an accessor function requires
// running bytecode, which pkg/object cannot do directly without
// depending on pkg/vm).
package object

import (
	"ecmacore/pkg/heap"
	"ecmacore/pkg/value"
)

// Caller lets pkg/object invoke an accessor getter/setter or a function
// value's [[Call]]/[[Construct]] behavior without importing pkg/vm.
// pkg/runtime wires a VM-backed implementation in; callers that never
// touch accessors or functions (plain data-property manipulation) can
// pass nil and get a panic only if one is actually needed.
type Caller interface {
	Call(fn, this value.Value, args []value.Value) (value.Value, *Throw)
	Construct(fn value.Value, args []value.Value, newTarget value.Value) (value.Value, *Throw)
}

// Throw carries a thrown JS value up through an internal-method call
// chain — the engine's throw-completion variant (SPEC_FULL.md 9).
type Throw struct {
	Value value.Value
}

func (t *Throw) Error() string { return "uncaught JS exception" }

func throwVal(v value.Value) *Throw { return &Throw{Value: v} }

// Descriptor mirrors ECMA-262's PropertyDescriptor record: every field
// has a Has flag since "absent" and "present but false/undefined" are
// distinct states DefineOwnProperty must tell apart.
type Descriptor struct {
	Value        value.Value
	HasValue     bool
	Get          value.Value
	HasGet       bool
	Set          value.Value
	HasSet       bool
	Writable     bool
	HasWritable  bool
	Enumerable   bool
	HasEnumerable bool
	Configurable bool
	HasConfigurable bool
}

func (d Descriptor) IsAccessor() bool { return d.HasGet || d.HasSet }
func (d Descriptor) IsData() bool     { return d.HasValue || d.HasWritable }
func (d Descriptor) IsGeneric() bool  { return !d.IsAccessor() && !d.IsData() }

// InternalMethods is the dispatch surface every object kind implements,
// per SPEC_FULL.md 6.4. Ordinary objects get one shared implementation
// (see ordinary.go); exotic kinds override selectively (see exotic.go).
type InternalMethods interface {
	GetPrototypeOf(h *heap.Heap) value.Value
	SetPrototypeOf(h *heap.Heap, proto value.Value) bool
	IsExtensible(h *heap.Heap) bool
	PreventExtensions(h *heap.Heap) bool
	GetOwnProperty(h *heap.Heap, key heap.PropertyKey) (Descriptor, bool)
	DefineOwnProperty(h *heap.Heap, key heap.PropertyKey, desc Descriptor) bool
	HasProperty(h *heap.Heap, c Caller, key heap.PropertyKey) (bool, *Throw)
	Get(h *heap.Heap, c Caller, key heap.PropertyKey, receiver value.Value) (value.Value, *Throw)
	Set(h *heap.Heap, c Caller, key heap.PropertyKey, v value.Value, receiver value.Value) (bool, *Throw)
	Delete(h *heap.Heap, key heap.PropertyKey) bool
	OwnPropertyKeys(h *heap.Heap) []heap.PropertyKey
}

// For lets a caller obtain the right InternalMethods implementation for
// any heap-resident object-like Value without a type switch at every
// call site.
func For(v value.Value) InternalMethods {
	switch v.Tag() {
	case value.TagArray:
		return ArrayExotic{Index: v.HeapIndex()}
	case value.TagArguments:
		return ArgumentsExotic{Index: v.HeapIndex()}
	case value.TagProxy:
		return ProxyExotic{Index: v.HeapIndex()}
	case value.TagModule:
		return ModuleExotic{Index: v.HeapIndex()}
	case value.TagBoundFunction, value.TagBuiltinFunction, value.TagECMAScriptFunction:
		return FunctionExotic{V: v}
	default:
		return Ordinary{V: v}
	}
}
