package heap

import (
	"math/big"

	"ecmacore/pkg/value"
)

// ObjectRecord is the storage behind an ordinary object: a shape plus the
// parallel values vector the shape's field order indexes into. Accessor
// properties store their getter/setter pair in the side maps instead of
// Properties, keyed by the same hash Shape transitions use.
type ObjectRecord struct {
	Shape      *Shape
	Properties []value.Value
	Getters    map[string]value.Value
	Setters    map[string]value.Value
	Prototype  value.Value
	Extensible bool

	// PrivateFields/PrivateMethods back ECMAScript #-prefixed class
	// members, which never participate in the shape tree (they are not
	// reachable through normal property lookup at all).
	PrivateFields map[string]value.Value
	PrivateMethods map[string]value.Value
}

func (o *ObjectRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	o.Prototype = remap(o.Prototype)
	for i := range o.Properties {
		o.Properties[i] = remap(o.Properties[i])
	}
	for k, v := range o.Getters {
		o.Getters[k] = remap(v)
	}
	for k, v := range o.Setters {
		o.Setters[k] = remap(v)
	}
	for k, v := range o.PrivateFields {
		o.PrivateFields[k] = remap(v)
	}
	for k, v := range o.PrivateMethods {
		o.PrivateMethods[k] = remap(v)
	}
}

// ExoticHeader is embedded by every exotic-object record kind that is
// not an ObjectRecord itself: it carries the prototype and extensibility
// that [[GetPrototypeOf]]/[[SetPrototypeOf]]/[[IsExtensible]] need, plus
// the lazily allocated backing ordinary object a named/symbol property
// assignment promotes into existence (spec 4.4, "every exotic object
// optionally has a backing ordinary object"). Giving every exotic kind
// its own Prototype/Extensible avoids forcing backing-object creation
// just to answer GetPrototypeOf on an object that never had a property
// added to it.
type ExoticHeader struct {
	Prototype  value.Value
	Extensible bool
	Backing    uint32 // index into Heap.Objects; 0 == not yet allocated
}

func (h *ExoticHeader) remapHeader(shift ShiftTable, remap func(value.Value) value.Value) {
	h.Prototype = remap(h.Prototype)
	h.Backing = Remap(shift, h.Backing)
}

// Header returns h itself; every struct embedding ExoticHeader by value
// gets this method promoted, so a *T satisfies HeaderHolder for free.
func (h *ExoticHeader) Header() *ExoticHeader { return h }

// HeaderHolder is satisfied by every record type embedding ExoticHeader.
// pkg/object uses it through Heap.ExoticHeaderOf to read/write
// Prototype/Extensible/Backing without a type switch per record kind.
type HeaderHolder interface {
	Header() *ExoticHeader
}

// ElementStorage is a simplified stand-in for the spec's power-of-two
// bucket tiers (4/6/8/.../32-bit index capacities): a dense prefix for
// the common compact-array case, falling back to a sparse map once an
// index would otherwise leave too large a gap. This keeps the same
// "compact dense arrays and sparse maps side by side" property the spec
// asks for without hand-rolling eleven capacity tiers.
type ElementStorage struct {
	Dense  []value.Value
	Sparse map[uint32]value.Value
}

const denseSparseThreshold = 4096

func (e *ElementStorage) Get(i uint32) (value.Value, bool) {
	if int(i) < len(e.Dense) {
		v := e.Dense[i]
		if v.IsHole() {
			return value.Value{}, false
		}
		return v, true
	}
	if e.Sparse != nil {
		v, ok := e.Sparse[i]
		return v, ok
	}
	return value.Value{}, false
}

func (e *ElementStorage) Set(i uint32, v value.Value) {
	if int(i) < len(e.Dense) {
		e.Dense[i] = v
		return
	}
	if int(i) == len(e.Dense) && i < denseSparseThreshold {
		e.Dense = append(e.Dense, v)
		return
	}
	if e.Sparse == nil {
		e.Sparse = make(map[uint32]value.Value)
	}
	e.Sparse[i] = v
}

func (e *ElementStorage) Delete(i uint32) {
	if int(i) < len(e.Dense) {
		e.Dense[i] = value.Hole
		return
	}
	delete(e.Sparse, i)
}

func (e *ElementStorage) TruncateTo(length uint32) {
	if int(length) < len(e.Dense) {
		e.Dense = e.Dense[:length]
	}
	for k := range e.Sparse {
		if k >= length {
			delete(e.Sparse, k)
		}
	}
}

// ArrayRecord is the Array exotic object's storage: a length field
// (independent of the backing storage's physical capacity, per spec
// 4.2) plus element storage and a lazily allocated backing ordinary
// object for non-index named/symbol properties.
type ArrayRecord struct {
	ExoticHeader
	Length         uint32
	LengthWritable bool
	Elements       ElementStorage
}

func (a *ArrayRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	a.remapHeader(shift, remap)
	for i := range a.Elements.Dense {
		a.Elements.Dense[i] = remap(a.Elements.Dense[i])
	}
	for k, v := range a.Elements.Sparse {
		a.Elements.Sparse[k] = remap(v)
	}
}

// ArgumentsRecord backs the Arguments exotic object. MappedTo marks
// which indices are still mapped (pkg/object.ArgumentsExotic severs an
// entry on delete or redefinition); a mapped index reads and writes
// Args[i] only. Nothing keeps Args in sync with the formal-parameter
// bindings, and pkg/vm does not consult MappedTo.
type ArgumentsRecord struct {
	ExoticHeader
	Args     []value.Value
	Callee   value.Value
	IsStrict bool
	MappedTo []int // -1 == unmapped, else parameter slot index
}

func (a *ArgumentsRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	a.remapHeader(shift, remap)
	for i := range a.Args {
		a.Args[i] = remap(a.Args[i])
	}
	a.Callee = remap(a.Callee)
}

// ArrayBufferRecord is the storage behind ArrayBuffer/SharedArrayBuffer.
type ArrayBufferRecord struct {
	ExoticHeader
	Data     []byte
	Shared   bool
	Detached bool
}

func (a *ArrayBufferRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	a.remapHeader(shift, remap)
}

type TypedArrayKind uint8

const (
	TAInt8 TypedArrayKind = iota
	TAUint8
	TAUint8Clamped
	TAInt16
	TAUint16
	TAInt32
	TAUint32
	TAFloat32
	TAFloat64
	TABigInt64
	TABigUint64
)

// BytesPerElement returns the element width for a typed-array kind.
func (k TypedArrayKind) BytesPerElement() int {
	switch k {
	case TAInt8, TAUint8, TAUint8Clamped:
		return 1
	case TAInt16, TAUint16:
		return 2
	case TAInt32, TAUint32, TAFloat32:
		return 4
	default:
		return 8
	}
}

type TypedArrayRecord struct {
	ExoticHeader
	Kind       TypedArrayKind
	Buffer     value.Value // ArrayBuffer Value
	ByteOffset int
	Length     int
}

func (t *TypedArrayRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	t.remapHeader(shift, remap)
	t.Buffer = remap(t.Buffer)
}

type DataViewRecord struct {
	ExoticHeader
	Buffer     value.Value
	ByteOffset int
	ByteLength int
}

func (d *DataViewRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	d.remapHeader(shift, remap)
	d.Buffer = remap(d.Buffer)
}

type DateRecord struct {
	ExoticHeader
	EpochMillis float64 // NaN == Invalid Date
}

func (d *DateRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	d.remapHeader(shift, remap)
}

// ErrorRecord backs Error and every NativeError subtype (TypeError, etc).
// Kind names the constructor that produced it so Error.prototype.toString
// and the host's uncaught-exception report can format "TypeError: msg".
type ErrorRecord struct {
	ExoticHeader
	Kind     string
	Message  value.Value
	HasCause bool
	Cause    value.Value
	Stack    string
}

func (e *ErrorRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	e.remapHeader(shift, remap)
	e.Message = remap(e.Message)
	e.Cause = remap(e.Cause)
}

// MapRecord/SetRecord use an insertion-ordered association list rather
// than a real hash table: comparing arbitrary Values by SameValueZero
// needs the string/number subspaces to compare heap-resident payloads by
// content, which a generic hash-map key can't express without first
// interning a canonical key — so lookups are O(n). This trades peak
// Map/Set throughput for a heap model that stays entirely index-based;
// nothing in the spec's testable properties exercises Map/Set at a scale
// where this matters.
type MapEntry struct {
	Key, Value value.Value
	Deleted    bool
}

type MapRecord struct {
	ExoticHeader
	Entries []MapEntry
}

func (m *MapRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	m.remapHeader(shift, remap)
	for i := range m.Entries {
		m.Entries[i].Key = remap(m.Entries[i].Key)
		m.Entries[i].Value = remap(m.Entries[i].Value)
	}
}

type SetRecord struct {
	ExoticHeader
	Entries []value.Value
	Deleted []bool
}

func (s *SetRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	s.remapHeader(shift, remap)
	for i := range s.Entries {
		s.Entries[i] = remap(s.Entries[i])
	}
}

// WeakMapRecord/WeakSetRecord/WeakRefRecord/FinalizationRegistryRecord
// hold their targets without marking them during GC (see pkg/gc's weak
// sweep phase): a target that dies clears to Undefined/removal here
// rather than keeping the referent alive.
type WeakMapEntry struct {
	Key, Value value.Value
}

type WeakMapRecord struct {
	ExoticHeader
	Entries []WeakMapEntry
}

type WeakSetRecord struct {
	ExoticHeader
	Entries []value.Value
}

type WeakRefRecord struct {
	ExoticHeader
	Target  value.Value
	Cleared bool
}

type FinalizationEntry struct {
	Target          value.Value
	HeldValue       value.Value
	UnregisterToken value.Value
	HasToken        bool
}

type FinalizationRegistryRecord struct {
	ExoticHeader
	Entries    []FinalizationEntry
	CallbackFn value.Value
}

func (f *FinalizationRegistryRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	f.remapHeader(shift, remap)
	f.CallbackFn = remap(f.CallbackFn)
}

// RegExpRecord wraps a compiled pattern. Compiled is an interface{} to
// keep this package free of a direct dependency on the regex engine.
// Nothing reads it: pkg/builtins represents RegExp instances as plain
// ordinary objects and compiles the pattern with regexp2 on each call.
type RegExpRecord struct {
	ExoticHeader
	Source     string
	Flags      string
	Compiled   interface{}
	LastIndex  int
}

func (r *RegExpRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	r.remapHeader(shift, remap)
}

type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// ReactionKind distinguishes which handler a reaction record runs.
type ReactionKind uint8

const (
	ReactionFulfill ReactionKind = iota
	ReactionReject
)

// PromiseReaction is one registered .then/.catch/await continuation.
// Continuation is an opaque VM-suspended-frame handle (see pkg/vm) for
// reactions created by awaiting rather than by .then; Handler/ResolveFn/
// RejectFn are used for ordinary .then-style reactions.
type PromiseReaction struct {
	Kind         ReactionKind
	Handler      value.Value
	HasHandler   bool
	ResolveFn    value.Value
	RejectFn     value.Value
	Continuation interface{}
}

type PromiseRecord struct {
	ExoticHeader
	State            PromiseState
	Result           value.Value
	FulfillReactions []PromiseReaction
	RejectReactions  []PromiseReaction
	AlreadyHandled   bool
	IsHandled        bool
}

func (p *PromiseRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	p.remapHeader(shift, remap)
	p.Result = remap(p.Result)
	for i := range p.FulfillReactions {
		p.FulfillReactions[i].Handler = remap(p.FulfillReactions[i].Handler)
		p.FulfillReactions[i].ResolveFn = remap(p.FulfillReactions[i].ResolveFn)
		p.FulfillReactions[i].RejectFn = remap(p.FulfillReactions[i].RejectFn)
	}
	for i := range p.RejectReactions {
		p.RejectReactions[i].Handler = remap(p.RejectReactions[i].Handler)
		p.RejectReactions[i].ResolveFn = remap(p.RejectReactions[i].ResolveFn)
		p.RejectReactions[i].RejectFn = remap(p.RejectReactions[i].RejectFn)
	}
}

// PromiseAllRecord/PromiseAllSettledRecord track the in-flight state of
// Promise.all/allSettled: how many of the input promises are still
// pending and the result slot each will fill in once it settles.
type PromiseAllRecord struct {
	RemainingElements int
	Values            []value.Value
	ResultCapability  value.Value // the returned promise
	IsSettledVariant  bool
}

func (p *PromiseAllRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	for i := range p.Values {
		p.Values[i] = remap(p.Values[i])
	}
	p.ResultCapability = remap(p.ResultCapability)
}

// ProxyRecord backs the Proxy exotic object: every internal method call
// on a Proxy Value dispatches to the matching trap on Handler, falling
// back to Target's own internal method when the trap is absent.
type ProxyRecord struct {
	Target  value.Value
	Handler value.Value
	Revoked bool
}

func (p *ProxyRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	p.Target = remap(p.Target)
	p.Handler = remap(p.Handler)
}

// GetPrototypeOf and friends on a Proxy delegate entirely to the target
// (through the "getPrototypeOf" trap, falling back to Target's own
// internal method), so a Proxy record deliberately carries no
// ExoticHeader of its own — there is nothing for it to store.

// ModuleStatus tracks a Source Text Module Record's linking state.
type ModuleStatus uint8

const (
	ModuleUnlinked ModuleStatus = iota
	ModuleLinking
	ModuleLinked
	ModuleEvaluating
	ModuleEvaluated
)

type ModuleRecord struct {
	ResolvedPath string
	Status       ModuleStatus
	Namespace    value.Value
	Exports      map[string]value.Value
	Environment  uint32 // index into Heap.Environments
	Executable   uint32 // index into Heap.Executables
	EvalError    value.Value
	HasEvalError bool
}

func (m *ModuleRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	m.Namespace = remap(m.Namespace)
	for k, v := range m.Exports {
		m.Exports[k] = remap(v)
	}
	m.Environment = Remap(shift, m.Environment)
	m.EvalError = remap(m.EvalError)
}

// EmbedderObjectRecord lets a host attach opaque native data to a JS
// value (e.g. a file handle); the engine never inspects Payload.
type EmbedderObjectRecord struct {
	ExoticHeader
	Payload interface{}
}

// FunctionCommon is embedded by every function-kind record. It carries
// its own ExoticHeader (rather than sharing ObjectRecord's layout)
// because function objects are exotic: [[Call]]/[[Construct]] override
// the ordinary internal methods, but GetPrototypeOf/SetPrototypeOf and
// the lazily allocated backing object for named properties (.length,
// .name, arbitrary user-assigned properties) work the same way every
// other exotic kind's do.
type FunctionCommon struct {
	ExoticHeader
	Name          string
	ParameterCount int
	HomeObject    value.Value
}

type BoundFunctionRecord struct {
	FunctionCommon
	Target    value.Value
	BoundThis value.Value
	BoundArgs []value.Value
}

func (b *BoundFunctionRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	b.remapHeader(shift, remap)
	b.HomeObject = remap(b.HomeObject)
	b.Target = remap(b.Target)
	b.BoundThis = remap(b.BoundThis)
	for i := range b.BoundArgs {
		b.BoundArgs[i] = remap(b.BoundArgs[i])
	}
}

// BuiltinFunctionRecord's NativeID indexes a Go function registered on
// the VM (pkg/vm.NativeTable), not stored here: heap records must stay
// free of Go closures so that sweep/compaction can treat every subspace
// uniformly as "a slice of plain data with Value fields to remap".
type BuiltinFunctionRecord struct {
	FunctionCommon
	NativeID      uint32
	IsConstructor bool
}

func (b *BuiltinFunctionRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	b.remapHeader(shift, remap)
	b.HomeObject = remap(b.HomeObject)
}

type ThisMode uint8

const (
	ThisModeLexical ThisMode = iota // arrow functions
	ThisModeStrict
	ThisModeGlobal
)

type ECMAScriptFunctionRecord struct {
	FunctionCommon
	Executable  uint32 // index into Heap.Executables
	Environment uint32 // index into Heap.Environments captured at closure-creation time
	IsStrict    bool
	IsGenerator bool
	IsAsync     bool
	ThisMode    ThisMode
	FieldInitializers []uint32 // Executables run during [[Construct]] for class instance fields
}

func (f *ECMAScriptFunctionRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	f.remapHeader(shift, remap)
	f.HomeObject = remap(f.HomeObject)
}

type GeneratorState uint8

const (
	GeneratorSuspendedStart GeneratorState = iota
	GeneratorSuspendedYield
	GeneratorExecuting
	GeneratorCompleted
)

// GeneratorRecord's Continuation is an opaque suspended-VM-frame handle
// (see pkg/vm.Continuation); the heap never inspects it, only keeps it
// alive and lets the VM type-assert it back on resume.
type GeneratorRecord struct {
	State        GeneratorState
	Continuation interface{}
	IsAsync      bool
}

type IteratorKind uint8

const (
	IteratorArray IteratorKind = iota
	IteratorMap
	IteratorSet
	IteratorRegExpString
	IteratorGeneric
	IteratorString
)

type IteratorRecord struct {
	Kind   IteratorKind
	Target value.Value
	Index  int
	Done   bool
	// Kind-specific cursor extras reuse Index; RegExpString additionally
	// needs the matched-so-far string, tracked by the builtin that owns
	// it rather than duplicated here.
}

func (i *IteratorRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	i.Target = remap(i.Target)
}

// AwaitReactionRecord is the heap-resident half of an in-flight await:
// the suspended continuation plus which promise it is waiting on.
// Nothing in pkg/vm or pkg/runtime creates one, wires it to a promise's
// reactions, or resumes its continuation.
type AwaitReactionRecord struct {
	Continuation interface{}
	Promise      value.Value
}

func (a *AwaitReactionRecord) RemapRefs(shift ShiftTable, remap func(value.Value) value.Value) {
	a.Promise = remap(a.Promise)
}

// SymbolRecord is a heap symbol's payload: its (optional) description.
// Identity is the heap index itself, never the description text.
type SymbolRecord struct {
	Description string
	HasDescription bool
}

// BigIntBox adapts *big.Int to value.BigIntLike for pkg/value's equality
// algorithms without pkg/value importing math/big directly.
type BigIntBox struct{ *big.Int }

func (b BigIntBox) Cmp(other value.BigIntLike) int {
	if ob, ok := other.(BigIntBox); ok {
		return b.Int.Cmp(ob.Int)
	}
	of := other.Float64()
	bf := new(big.Float).SetInt(b.Int)
	return bf.Cmp(big.NewFloat(of))
}
func (b BigIntBox) Float64() float64 {
	f, _ := b.Int.Float64()
	return f
}
func (b BigIntBox) Sign() int { return b.Int.Sign() }
