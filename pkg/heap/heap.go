package heap

import (
	"math/big"

	"ecmacore/pkg/value"
)

// EnvironmentRecord is a lexical environment: a chain of bindings
// resolved by name. The compiler has no register allocator, so every
// named binding (var/let/const, function declarations, parameters,
// catch parameters) lives in one of these. See spec 4.6.1.
type EnvironmentRecord struct {
	Outer       uint32 // index into Heap.Environments, 0 == none
	Bindings    map[string]value.Value
	Mutable     map[string]bool
	Initialized map[string]bool // TDZ: false until InitializeReferencedBinding runs
	WithObject  value.Value     // object environments (with-statements): the target object
	IsWithEnv   bool
	ThisValue   value.Value // function/global/module environments carry `this`
	HasThis     bool
	NewTarget   value.Value
}

func NewEnvironmentRecord(outer uint32) *EnvironmentRecord {
	return &EnvironmentRecord{
		Outer:       outer,
		Bindings:    make(map[string]value.Value),
		Mutable:     make(map[string]bool),
		Initialized: make(map[string]bool),
	}
}

func (e *EnvironmentRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	e.Outer = Remap(shift, e.Outer)
	for k, v := range e.Bindings {
		e.Bindings[k] = remap(v)
	}
	e.WithObject = remap(e.WithObject)
	e.ThisValue = remap(e.ThisValue)
	e.NewTarget = remap(e.NewTarget)
}

// Heap owns every typed arena the engine allocates into. A Value never
// embeds a pointer into any of these slices directly: it carries an
// index, and every subspace is free to compact out from under live
// indices during RunGC as long as every reference is rewritten through
// that cycle's ShiftTable in the same pass (see pkg/gc).
type Heap struct {
	Strings *StringTable
	Numbers *Subspace[float64]
	BigInts *Subspace[*big.Int]
	Symbols *Subspace[SymbolRecord]

	Environments *Subspace[*EnvironmentRecord]
	Executables  *Subspace[any] // concrete type *bytecode.Executable

	Objects      *Subspace[*ObjectRecord]
	Arrays       *Subspace[*ArrayRecord]
	Arguments    *Subspace[*ArgumentsRecord]
	ArrayBuffers *Subspace[*ArrayBufferRecord]
	DataViews    *Subspace[*DataViewRecord]
	TypedArrays  *Subspace[*TypedArrayRecord]
	Dates        *Subspace[*DateRecord]
	Errors       *Subspace[*ErrorRecord]
	Maps         *Subspace[*MapRecord]
	Sets         *Subspace[*SetRecord]
	WeakMaps     *Subspace[*WeakMapRecord]
	WeakSets     *Subspace[*WeakSetRecord]
	WeakRefs     *Subspace[*WeakRefRecord]
	FinRegistries *Subspace[*FinalizationRegistryRecord]
	RegExps      *Subspace[*RegExpRecord]
	Promises     *Subspace[*PromiseRecord]
	PromiseAlls  *Subspace[*PromiseAllRecord]
	Proxies      *Subspace[*ProxyRecord]
	Modules      *Subspace[*ModuleRecord]
	EmbedderObjects *Subspace[*EmbedderObjectRecord]

	BoundFunctions       *Subspace[*BoundFunctionRecord]
	BuiltinFunctions     *Subspace[*BuiltinFunctionRecord]
	ECMAScriptFunctions  *Subspace[*ECMAScriptFunctionRecord]

	Generators *Subspace[*GeneratorRecord]
	Iterators  *Subspace[*IteratorRecord]
	AwaitReactions *Subspace[*AwaitReactionRecord]
}

func New() *Heap {
	return &Heap{
		Strings: NewStringTable(),
		Numbers: NewSubspace[float64](),
		BigInts: NewSubspace[*big.Int](),
		Symbols: NewSubspace[SymbolRecord](),

		Environments: NewSubspace[*EnvironmentRecord](),
		Executables:  NewSubspace[any](),

		Objects:      NewSubspace[*ObjectRecord](),
		Arrays:       NewSubspace[*ArrayRecord](),
		Arguments:    NewSubspace[*ArgumentsRecord](),
		ArrayBuffers: NewSubspace[*ArrayBufferRecord](),
		DataViews:    NewSubspace[*DataViewRecord](),
		TypedArrays:  NewSubspace[*TypedArrayRecord](),
		Dates:        NewSubspace[*DateRecord](),
		Errors:       NewSubspace[*ErrorRecord](),
		Maps:         NewSubspace[*MapRecord](),
		Sets:         NewSubspace[*SetRecord](),
		WeakMaps:     NewSubspace[*WeakMapRecord](),
		WeakSets:     NewSubspace[*WeakSetRecord](),
		WeakRefs:     NewSubspace[*WeakRefRecord](),
		FinRegistries: NewSubspace[*FinalizationRegistryRecord](),
		RegExps:      NewSubspace[*RegExpRecord](),
		Promises:     NewSubspace[*PromiseRecord](),
		PromiseAlls:  NewSubspace[*PromiseAllRecord](),
		Proxies:      NewSubspace[*ProxyRecord](),
		Modules:      NewSubspace[*ModuleRecord](),
		EmbedderObjects: NewSubspace[*EmbedderObjectRecord](),

		BoundFunctions:      NewSubspace[*BoundFunctionRecord](),
		BuiltinFunctions:    NewSubspace[*BuiltinFunctionRecord](),
		ECMAScriptFunctions: NewSubspace[*ECMAScriptFunctionRecord](),

		Generators:     NewSubspace[*GeneratorRecord](),
		Iterators:      NewSubspace[*IteratorRecord](),
		AwaitReactions: NewSubspace[*AwaitReactionRecord](),
	}
}

// ExoticHeaderOf returns the shared Prototype/Extensible/Backing header
// for any heap-resident, non-ObjectRecord object-like value, the three
// function tags included (their FunctionCommon embeds the header). It
// panics for TagObject (an ObjectRecord carries its Prototype/Extensible
// directly, no ExoticHeader) and for tags with no header at all
// (TagProxy, the generator and iterator tags).
func (h *Heap) ExoticHeaderOf(v value.Value) *ExoticHeader {
	idx := v.HeapIndex()
	var holder HeaderHolder
	switch v.Tag() {
	case value.TagArray:
		holder = h.Arrays.Get(idx)
	case value.TagArguments:
		holder = h.Arguments.Get(idx)
	case value.TagArrayBuffer, value.TagSharedArrayBuffer:
		holder = h.ArrayBuffers.Get(idx)
	case value.TagDataView:
		holder = h.DataViews.Get(idx)
	case value.TagTypedArray:
		holder = h.TypedArrays.Get(idx)
	case value.TagDate:
		holder = h.Dates.Get(idx)
	case value.TagError:
		holder = h.Errors.Get(idx)
	case value.TagMap:
		holder = h.Maps.Get(idx)
	case value.TagSet:
		holder = h.Sets.Get(idx)
	case value.TagWeakMap:
		holder = h.WeakMaps.Get(idx)
	case value.TagWeakSet:
		holder = h.WeakSets.Get(idx)
	case value.TagWeakRef:
		holder = h.WeakRefs.Get(idx)
	case value.TagFinalizationRegistry:
		holder = h.FinRegistries.Get(idx)
	case value.TagRegExp:
		holder = h.RegExps.Get(idx)
	case value.TagPromise:
		holder = h.Promises.Get(idx)
	case value.TagModule:
		// ModuleRecord exposes no header: module namespace exotic objects
		// are always non-extensible and prototype-less (spec 10.4.6).
		return &ExoticHeader{Prototype: value.Null, Extensible: false}
	case value.TagEmbedderObject:
		holder = h.EmbedderObjects.Get(idx)
	case value.TagBoundFunction:
		holder = h.BoundFunctions.Get(idx)
	case value.TagBuiltinFunction:
		holder = h.BuiltinFunctions.Get(idx)
	case value.TagECMAScriptFunction:
		holder = h.ECMAScriptFunctions.Get(idx)
	default:
		panic("heap: ExoticHeaderOf called on tag with no ExoticHeader: " + v.Tag().String())
	}
	return holder.Header()
}

// --- value.StringReader / NumberReader / BigIntReader ---

func (h *Heap) StringAt(index uint32) string { return h.Strings.StringAt(index) }
func (h *Heap) NumberAt(index uint32) float64 { return h.Numbers.Get(index) }

// GoString extracts the Go string content of any string-tagged Value,
// inline or heap-resident. Callers that only hold a value.StringReader
// use v.AsSmallString()/strs.StringAt(v.HeapIndex()) directly instead;
// this is the *Heap-holding convenience for the common case.
func (h *Heap) GoString(v value.Value) string {
	if v.IsSmallString() {
		return v.AsSmallString()
	}
	return h.StringAt(v.HeapIndex())
}
func (h *Heap) BigIntAt(index uint32) value.BigIntLike {
	return BigIntBox{h.BigInts.Get(index)}
}

// --- allocation helpers ---

// NewNumber returns f inline when value.FromFloat64 can represent it and
// otherwise allocates a heap number slot for it.
func (h *Heap) NewNumber(f float64) value.Value {
	if v, ok := value.FromFloat64(f); ok {
		return v
	}
	return value.HeapNumber(h.Numbers.Alloc(f))
}

func (h *Heap) NewBigInt(b *big.Int) value.Value {
	if b.IsInt64() {
		i := b.Int64()
		const max56 = 1<<55 - 1
		const min56 = -(1 << 55)
		if i >= min56 && i <= max56 {
			return value.SmallBigInt(i)
		}
	}
	return value.HeapBigInt(h.BigInts.Alloc(b))
}

func (h *Heap) NewString(s string) value.Value { return h.Strings.Intern(s) }

func (h *Heap) NewSymbol(description string, has bool) value.Value {
	return value.Symbol(h.Symbols.Alloc(SymbolRecord{Description: description, HasDescription: has}))
}

// NewOrdinaryObject allocates a plain object on the given shape/prototype.
func (h *Heap) NewOrdinaryObject(shape *Shape, prototype value.Value) value.Value {
	rec := &ObjectRecord{
		Shape:      shape,
		Properties: make([]value.Value, len(shape.Fields)),
		Prototype:  prototype,
		Extensible: true,
	}
	return value.FromHeapIndex(value.TagObject, h.Objects.Alloc(rec))
}

func (h *Heap) NewArray(length uint32, prototype value.Value) value.Value {
	rec := &ArrayRecord{
		ExoticHeader:   ExoticHeader{Prototype: prototype, Extensible: true},
		Length:         length,
		LengthWritable: true,
	}
	return value.FromHeapIndex(value.TagArray, h.Arrays.Alloc(rec))
}

func (h *Heap) NewError(kind string, message value.Value, prototype value.Value) value.Value {
	rec := &ErrorRecord{
		ExoticHeader: ExoticHeader{Prototype: prototype, Extensible: true},
		Kind:         kind,
		Message:      message,
	}
	return value.FromHeapIndex(value.TagError, h.Errors.Alloc(rec))
}

func (h *Heap) NewEnvironment(outer uint32) (uint32, *EnvironmentRecord) {
	rec := NewEnvironmentRecord(outer)
	return h.Environments.Alloc(rec), rec
}

func (h *Heap) NewECMAScriptFunction(rec *ECMAScriptFunctionRecord) value.Value {
	return value.FromHeapIndex(value.TagECMAScriptFunction, h.ECMAScriptFunctions.Alloc(rec))
}

func (h *Heap) NewBuiltinFunction(rec *BuiltinFunctionRecord) value.Value {
	return value.FromHeapIndex(value.TagBuiltinFunction, h.BuiltinFunctions.Alloc(rec))
}

func (h *Heap) NewPromise(prototype value.Value) value.Value {
	rec := &PromiseRecord{
		ExoticHeader: ExoticHeader{Prototype: prototype, Extensible: true},
		State:        PromisePending,
		Result:       value.Undefined,
	}
	return value.FromHeapIndex(value.TagPromise, h.Promises.Alloc(rec))
}
