package object

import (
	"strconv"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/value"
)

// ArrayExotic implements the Array exotic object's one deviation from
// ordinary behavior: [[DefineOwnProperty]] on "length" (ArraySetLength,
// 10.4.2.1) and on array-index keys, which can grow or clip length as a
// side effect. Everything else — including arbitrary named properties
// like a user-assigned .foo — falls straight through to the backing
// object an Ordinary{V} lazily allocates, same as every other exotic
// kind (spec testable property 6).
type ArrayExotic struct {
	Index uint32
}

func (a ArrayExotic) rec(h *heap.Heap) *heap.ArrayRecord { return h.Arrays.Get(a.Index) }
func (a ArrayExotic) value(h *heap.Heap) value.Value {
	return value.FromHeapIndex(value.TagArray, a.Index)
}

func (a ArrayExotic) GetPrototypeOf(h *heap.Heap) value.Value {
	return Ordinary{V: a.value(h)}.GetPrototypeOf(h)
}
func (a ArrayExotic) SetPrototypeOf(h *heap.Heap, proto value.Value) bool {
	return Ordinary{V: a.value(h)}.SetPrototypeOf(h, proto)
}
func (a ArrayExotic) IsExtensible(h *heap.Heap) bool {
	return Ordinary{V: a.value(h)}.IsExtensible(h)
}
func (a ArrayExotic) PreventExtensions(h *heap.Heap) bool {
	return Ordinary{V: a.value(h)}.PreventExtensions(h)
}

// defaultElementDescriptor is the attribute set every array index
// carries until DefineOwnProperty asks for something else (10.4.2.4
// "every array index is {writable:true, enumerable:true,
// configurable:true} unless stated otherwise").
func defaultElementDescriptor(v value.Value) Descriptor {
	return Descriptor{
		HasValue: true, Value: v,
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: true,
		HasConfigurable: true, Configurable: true,
	}
}

// overridden reports whether idx has been given non-default attributes,
// in which case the backing Ordinary object — not Elements — is the
// authoritative source for it.
func (a ArrayExotic) overridden(h *heap.Heap, idx uint32) (Descriptor, bool) {
	return Ordinary{V: a.value(h)}.GetOwnProperty(h, heap.StringKey(strconv.FormatUint(uint64(idx), 10)))
}

func (a ArrayExotic) GetOwnProperty(h *heap.Heap, key heap.PropertyKey) (Descriptor, bool) {
	if key.Kind == heap.KeyString && key.Name == "length" {
		rec := a.rec(h)
		return Descriptor{
			HasValue: true, Value: h.NewNumber(float64(rec.Length)),
			HasWritable: true, Writable: rec.LengthWritable,
			HasEnumerable: true, Enumerable: false,
			HasConfigurable: true, Configurable: false,
		}, true
	}
	if idx, ok := asArrayIndex(key); ok {
		if d, ok := a.overridden(h, idx); ok {
			return d, true
		}
		if v, present := a.rec(h).Elements.Get(idx); present {
			return defaultElementDescriptor(v), true
		}
		return Descriptor{}, false
	}
	return Ordinary{V: a.value(h)}.GetOwnProperty(h, key)
}

// needsOverride reports whether desc asks for anything other than the
// default element attribute set, in which case the index must move out
// of Elements and into the backing object so its attributes can be
// tracked at all (Elements has no attribute storage of its own).
func needsOverride(desc Descriptor) bool {
	if desc.IsAccessor() {
		return true
	}
	return (desc.HasWritable && !desc.Writable) ||
		(desc.HasEnumerable && !desc.Enumerable) ||
		(desc.HasConfigurable && !desc.Configurable)
}

// DefineOwnProperty implements ArraySetLength (10.4.2.1) for the
// "length" key — including testable property 6's stop-at-the-first-
// non-configurable-entry behavior when shrinking — element writes for
// index keys (growing Length when an index at or beyond the current
// length is defined, per ArrayCreate's invariant that length always
// exceeds every present index, and moving an index out of the compact
// Elements storage into the backing object once it is given non-default
// attributes), and falls through to the backing object for everything
// else.
func (a ArrayExotic) DefineOwnProperty(h *heap.Heap, key heap.PropertyKey, desc Descriptor) bool {
	rec := a.rec(h)
	if key.Kind == heap.KeyString && key.Name == "length" {
		if !desc.HasValue {
			if desc.HasWritable {
				rec.LengthWritable = desc.Writable
			}
			return true
		}
		newLen, ok := toLengthValue(h, desc.Value)
		if !ok {
			return false
		}
		if !rec.LengthWritable && newLen != rec.Length {
			return false
		}
		if desc.HasWritable {
			rec.LengthWritable = desc.Writable
		}
		if newLen >= rec.Length {
			rec.Length = newLen
			return true
		}
		for idx := rec.Length; idx > newLen; idx-- {
			i := idx - 1
			d, present := a.GetOwnProperty(h, heap.StringKey(strconv.FormatUint(uint64(i), 10)))
			if !present {
				continue
			}
			if !d.Configurable {
				rec.Length = i + 1
				return false
			}
			a.deleteIndex(h, i)
		}
		rec.Length = newLen
		return true
	}
	if idx, ok := asArrayIndex(key); ok {
		if idx >= rec.Length && !rec.LengthWritable {
			return false
		}
		if existing, present := a.overridden(h, idx); present {
			if !existing.Configurable && needsOverride(desc) {
				return false
			}
			applied := Ordinary{V: a.value(h)}.DefineOwnProperty(h, key, desc)
			if applied && idx >= rec.Length {
				rec.Length = idx + 1
			}
			return applied
		}
		if needsOverride(desc) {
			base := defaultElementDescriptor(value.Undefined)
			if v, present := rec.Elements.Get(idx); present {
				base.Value = v
			}
			if desc.HasValue {
				base.Value = desc.Value
			}
			if desc.HasWritable {
				base.Writable = desc.Writable
			}
			if desc.HasEnumerable {
				base.Enumerable = desc.Enumerable
			}
			if desc.HasConfigurable {
				base.Configurable = desc.Configurable
			}
			if desc.IsAccessor() {
				base = desc
			}
			if !(Ordinary{V: a.value(h)}).DefineOwnProperty(h, key, base) {
				return false
			}
			rec.Elements.Delete(idx)
			if idx >= rec.Length {
				rec.Length = idx + 1
			}
			return true
		}
		if desc.HasValue {
			rec.Elements.Set(idx, desc.Value)
		} else if _, present := rec.Elements.Get(idx); !present {
			rec.Elements.Set(idx, value.Undefined)
		}
		if idx >= rec.Length {
			rec.Length = idx + 1
		}
		return true
	}
	return Ordinary{V: a.value(h)}.DefineOwnProperty(h, key, desc)
}

// deleteIndex removes idx from whichever storage currently holds it,
// used by the length-shrink loop once an entry is known configurable.
func (a ArrayExotic) deleteIndex(h *heap.Heap, idx uint32) {
	key := heap.StringKey(strconv.FormatUint(uint64(idx), 10))
	if _, present := a.overridden(h, idx); present {
		Ordinary{V: a.value(h)}.Delete(h, key)
		return
	}
	a.rec(h).Elements.Delete(idx)
}

func (a ArrayExotic) HasProperty(h *heap.Heap, c Caller, key heap.PropertyKey) (bool, *Throw) {
	if idx, ok := asArrayIndex(key); ok {
		if _, present := a.rec(h).Elements.Get(idx); present {
			return true, nil
		}
	}
	return Ordinary{V: a.value(h)}.HasProperty(h, c, key)
}

func (a ArrayExotic) Get(h *heap.Heap, c Caller, key heap.PropertyKey, receiver value.Value) (value.Value, *Throw) {
	if d, ok := a.GetOwnProperty(h, key); ok {
		return d.Value, nil
	}
	proto := a.GetPrototypeOf(h)
	if !proto.IsObjectLike() {
		return value.Undefined, nil
	}
	return For(proto).Get(h, c, key, receiver)
}

func (a ArrayExotic) Set(h *heap.Heap, c Caller, key heap.PropertyKey, v value.Value, receiver value.Value) (bool, *Throw) {
	return Ordinary{V: a.value(h)}.Set(h, c, key, v, receiver)
}

func (a ArrayExotic) Delete(h *heap.Heap, key heap.PropertyKey) bool {
	if idx, ok := asArrayIndex(key); ok {
		if d, present := a.overridden(h, idx); present {
			if !d.Configurable {
				return false
			}
			return Ordinary{V: a.value(h)}.Delete(h, key)
		}
		a.rec(h).Elements.Delete(idx)
		return true
	}
	return Ordinary{V: a.value(h)}.Delete(h, key)
}

func (a ArrayExotic) OwnPropertyKeys(h *heap.Heap) []heap.PropertyKey {
	rec := a.rec(h)
	indexSet := make(map[uint32]bool)
	for i := uint32(0); i < uint32(len(rec.Elements.Dense)); i++ {
		if v, ok := rec.Elements.Get(i); ok && !v.IsHole() {
			indexSet[i] = true
		}
	}
	for k := range rec.Elements.Sparse {
		indexSet[k] = true
	}
	backingKeys := Ordinary{V: a.value(h)}.OwnPropertyKeys(h)
	var backingRest []heap.PropertyKey
	for _, bk := range backingKeys {
		if idx, ok := asArrayIndex(bk); ok {
			indexSet[idx] = true
			continue
		}
		backingRest = append(backingRest, bk)
	}
	indices := make([]uint32, 0, len(indexSet))
	for k := range indexSet {
		indices = append(indices, k)
	}
	sortUint32s(indices)
	keys := make([]heap.PropertyKey, 0, len(indices)+1+len(backingRest))
	for _, i := range indices {
		keys = append(keys, heap.StringKey(strconv.FormatUint(uint64(i), 10)))
	}
	keys = append(keys, heap.StringKey("length"))
	keys = append(keys, backingRest...)
	return keys
}

func asArrayIndex(key heap.PropertyKey) (uint32, bool) {
	if key.Kind != heap.KeyString {
		return 0, false
	}
	if !isArrayIndexKey(key.Name) {
		return 0, false
	}
	return arrayIndexKeyValue(key.Name), true
}

// toLengthValue coerces a length-candidate value to a uint32, covering
// the number representations a caller can directly produce (integer,
// small float, heap float). Non-numeric length assignments (string
// coercion, ToNumber on an object via valueOf/toString) are an abstract
// operation pkg/runtime's ToNumber implements once it can call back into
// the VM for user-defined valueOf/toString; that layer is expected to
// pre-convert before calling DefineOwnProperty with a non-number Value.
func toLengthValue(h *heap.Heap, v value.Value) (uint32, bool) {
	var f float64
	switch v.Tag() {
	case value.TagInteger:
		f = float64(v.AsInteger())
	case value.TagSmallFloat:
		f = v.AsSmallFloat()
	case value.TagNumber:
		f = h.NumberAt(v.HeapIndex())
	default:
		return 0, false
	}
	if f < 0 || f > 1<<32-1 || f != float64(uint32(f)) {
		return 0, false
	}
	return uint32(f), true
}

// booleanValueOf coerces a trap result to a boolean for the has/set
// traps' ToBoolean step (7.1.2); only the representations a host call
// can directly hand back are covered here for the same reason
// toLengthValue only covers direct number representations.
func booleanValueOf(v value.Value) bool {
	switch v.Tag() {
	case value.TagBoolean:
		return v.AsBoolean()
	case value.TagUndefined, value.TagNull, value.TagHole:
		return false
	case value.TagInteger:
		return v.AsInteger() != 0
	case value.TagSmallFloat:
		return v.AsSmallFloat() != 0
	case value.TagSmallString:
		return v.AsSmallString() != ""
	default:
		return true
	}
}

func sortUint32s(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// ArgumentsExotic implements the mapped arguments object (10.4.4):
// mapped indices read and write ArgumentsRecord.Args[i] until the
// property is deleted, redefined as an accessor, or made
// non-configurable, at which point the mapping is permanently severed.
// No read or write reaches an EnvironmentRecord binding, so a write
// through arguments[0] does not change the parameter variable and a
// write to the parameter is not seen through arguments[0]; pkg/vm
// creates no arguments objects.
type ArgumentsExotic struct {
	Index uint32
}

func (a ArgumentsExotic) rec(h *heap.Heap) *heap.ArgumentsRecord { return h.Arguments.Get(a.Index) }
func (a ArgumentsExotic) value(h *heap.Heap) value.Value {
	return value.FromHeapIndex(value.TagArguments, a.Index)
}

func (a ArgumentsExotic) GetPrototypeOf(h *heap.Heap) value.Value {
	return Ordinary{V: a.value(h)}.GetPrototypeOf(h)
}
func (a ArgumentsExotic) SetPrototypeOf(h *heap.Heap, proto value.Value) bool {
	return Ordinary{V: a.value(h)}.SetPrototypeOf(h, proto)
}
func (a ArgumentsExotic) IsExtensible(h *heap.Heap) bool {
	return Ordinary{V: a.value(h)}.IsExtensible(h)
}
func (a ArgumentsExotic) PreventExtensions(h *heap.Heap) bool {
	return Ordinary{V: a.value(h)}.PreventExtensions(h)
}

func (a ArgumentsExotic) mappedSlot(key heap.PropertyKey) (int, bool) {
	idx, ok := asArrayIndex(key)
	if !ok {
		return 0, false
	}
	return int(idx), true
}

func (a ArgumentsExotic) GetOwnProperty(h *heap.Heap, key heap.PropertyKey) (Descriptor, bool) {
	d, ok := Ordinary{V: a.value(h)}.GetOwnProperty(h, key)
	if !ok {
		return d, false
	}
	if i, ok := a.mappedSlot(key); ok {
		rec := a.rec(h)
		if i < len(rec.MappedTo) && rec.MappedTo[i] >= 0 {
			d.Value = rec.Args[i]
		}
	}
	return d, true
}

func (a ArgumentsExotic) DefineOwnProperty(h *heap.Heap, key heap.PropertyKey, desc Descriptor) bool {
	rec := a.rec(h)
	if i, ok := a.mappedSlot(key); ok && i < len(rec.MappedTo) && rec.MappedTo[i] >= 0 {
		if desc.IsAccessor() {
			rec.MappedTo[i] = -1
		} else if desc.HasValue {
			rec.Args[i] = desc.Value
		}
	}
	ok := Ordinary{V: a.value(h)}.DefineOwnProperty(h, key, desc)
	if ok && desc.HasConfigurable && !desc.Configurable {
		if i, isMapped := a.mappedSlot(key); isMapped && i < len(rec.MappedTo) {
			rec.MappedTo[i] = -1
		}
	}
	return ok
}

func (a ArgumentsExotic) HasProperty(h *heap.Heap, c Caller, key heap.PropertyKey) (bool, *Throw) {
	return Ordinary{V: a.value(h)}.HasProperty(h, c, key)
}

func (a ArgumentsExotic) Get(h *heap.Heap, c Caller, key heap.PropertyKey, receiver value.Value) (value.Value, *Throw) {
	if i, ok := a.mappedSlot(key); ok {
		rec := a.rec(h)
		if i < len(rec.MappedTo) && rec.MappedTo[i] >= 0 {
			return rec.Args[i], nil
		}
	}
	return Ordinary{V: a.value(h)}.Get(h, c, key, receiver)
}

func (a ArgumentsExotic) Set(h *heap.Heap, c Caller, key heap.PropertyKey, v value.Value, receiver value.Value) (bool, *Throw) {
	if i, ok := a.mappedSlot(key); ok {
		rec := a.rec(h)
		if i < len(rec.MappedTo) && rec.MappedTo[i] >= 0 {
			rec.Args[i] = v
		}
	}
	return Ordinary{V: a.value(h)}.Set(h, c, key, v, receiver)
}

func (a ArgumentsExotic) Delete(h *heap.Heap, key heap.PropertyKey) bool {
	if i, ok := a.mappedSlot(key); ok {
		rec := a.rec(h)
		if i < len(rec.MappedTo) {
			rec.MappedTo[i] = -1
		}
	}
	return Ordinary{V: a.value(h)}.Delete(h, key)
}

func (a ArgumentsExotic) OwnPropertyKeys(h *heap.Heap) []heap.PropertyKey {
	return Ordinary{V: a.value(h)}.OwnPropertyKeys(h)
}

// ProxyExotic implements the Proxy exotic object (10.5) for three
// internal methods: HasProperty, Get and Set look up Handler's "has",
// "get" and "set" traps, call the trap when present, and fall back to
// Target's own method when it is absent. Every other internal method
// forwards straight to Target without looking up a trap and without
// checking Revoked. Trap results are not validated against Target's
// non-configurable or non-extensible state.
type ProxyExotic struct {
	Index uint32
}

func (p ProxyExotic) rec(h *heap.Heap) *heap.ProxyRecord { return h.Proxies.Get(p.Index) }

// checkRevoked returns a throw-completion once the proxy's revoke()
// function has run (10.5, every trap's first step). The thrown value
// is undefined, not a TypeError: this package has no access to the
// realm's intrinsics, and no Caller replaces the value before it
// reaches script code.
func (p ProxyExotic) checkRevoked(h *heap.Heap) *Throw {
	if p.rec(h).Revoked {
		return throwVal(value.Undefined)
	}
	return nil
}

func (p ProxyExotic) trap(h *heap.Heap, c Caller, name string) (value.Value, bool) {
	rec := p.rec(h)
	if rec.Revoked || !rec.Handler.IsObjectLike() {
		return value.Value{}, false
	}
	fn, thrown := For(rec.Handler).Get(h, c, heap.StringKey(name), rec.Handler)
	if thrown != nil || fn.IsUndefined() || fn.Tag() == value.TagNull {
		return value.Value{}, false
	}
	return fn, true
}

func (p ProxyExotic) GetPrototypeOf(h *heap.Heap) value.Value {
	rec := p.rec(h)
	return For(rec.Target).GetPrototypeOf(h)
}

func (p ProxyExotic) SetPrototypeOf(h *heap.Heap, proto value.Value) bool {
	return For(p.rec(h).Target).SetPrototypeOf(h, proto)
}

func (p ProxyExotic) IsExtensible(h *heap.Heap) bool {
	return For(p.rec(h).Target).IsExtensible(h)
}

func (p ProxyExotic) PreventExtensions(h *heap.Heap) bool {
	return For(p.rec(h).Target).PreventExtensions(h)
}

func (p ProxyExotic) GetOwnProperty(h *heap.Heap, key heap.PropertyKey) (Descriptor, bool) {
	return For(p.rec(h).Target).GetOwnProperty(h, key)
}

func (p ProxyExotic) DefineOwnProperty(h *heap.Heap, key heap.PropertyKey, desc Descriptor) bool {
	return For(p.rec(h).Target).DefineOwnProperty(h, key, desc)
}

func (p ProxyExotic) HasProperty(h *heap.Heap, c Caller, key heap.PropertyKey) (bool, *Throw) {
	if t := p.checkRevoked(h); t != nil {
		return false, t
	}
	if fn, ok := p.trap(h, c, "has"); ok {
		args := []value.Value{p.rec(h).Target, keyToValue(h, key)}
		res, thrown := c.Call(fn, p.rec(h).Handler, args)
		if thrown != nil {
			return false, thrown
		}
		return booleanValueOf(res), nil
	}
	return For(p.rec(h).Target).HasProperty(h, c, key)
}

func (p ProxyExotic) Get(h *heap.Heap, c Caller, key heap.PropertyKey, receiver value.Value) (value.Value, *Throw) {
	if t := p.checkRevoked(h); t != nil {
		return value.Undefined, t
	}
	if fn, ok := p.trap(h, c, "get"); ok {
		args := []value.Value{p.rec(h).Target, keyToValue(h, key), receiver}
		return c.Call(fn, p.rec(h).Handler, args)
	}
	return For(p.rec(h).Target).Get(h, c, key, receiver)
}

func (p ProxyExotic) Set(h *heap.Heap, c Caller, key heap.PropertyKey, v value.Value, receiver value.Value) (bool, *Throw) {
	if t := p.checkRevoked(h); t != nil {
		return false, t
	}
	if fn, ok := p.trap(h, c, "set"); ok {
		args := []value.Value{p.rec(h).Target, keyToValue(h, key), v, receiver}
		res, thrown := c.Call(fn, p.rec(h).Handler, args)
		if thrown != nil {
			return false, thrown
		}
		return booleanValueOf(res), nil
	}
	return For(p.rec(h).Target).Set(h, c, key, v, receiver)
}

func (p ProxyExotic) Delete(h *heap.Heap, key heap.PropertyKey) bool {
	return For(p.rec(h).Target).Delete(h, key)
}

func (p ProxyExotic) OwnPropertyKeys(h *heap.Heap) []heap.PropertyKey {
	return For(p.rec(h).Target).OwnPropertyKeys(h)
}

func keyToValue(h *heap.Heap, key heap.PropertyKey) value.Value {
	if key.Kind == heap.KeySymbol {
		return key.Symbol
	}
	return h.NewString(key.Name)
}

// ModuleExotic implements the module namespace exotic object (10.4.6):
// frozen, prototype-less, own-properties-only for its declared exports
// (string keys only: it has no Symbol.toStringTag or other symbol-keyed
// own property). GetOwnProperty/HasProperty/Get read
// ModuleRecord.Exports, which pkg/runtime fills with a copy of the
// module's top-level bindings once its evaluation finishes; later
// assignments to those bindings are not reflected in the namespace.
type ModuleExotic struct {
	Index uint32
}

func (m ModuleExotic) rec(h *heap.Heap) *heap.ModuleRecord { return h.Modules.Get(m.Index) }

func (m ModuleExotic) GetPrototypeOf(h *heap.Heap) value.Value { return value.Null }
func (m ModuleExotic) SetPrototypeOf(h *heap.Heap, proto value.Value) bool {
	return proto.Tag() == value.TagNull
}
func (m ModuleExotic) IsExtensible(h *heap.Heap) bool        { return false }
func (m ModuleExotic) PreventExtensions(h *heap.Heap) bool   { return true }

func (m ModuleExotic) GetOwnProperty(h *heap.Heap, key heap.PropertyKey) (Descriptor, bool) {
	if key.Kind != heap.KeyString {
		return Descriptor{}, false
	}
	v, ok := m.rec(h).Exports[key.Name]
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{
		HasValue: true, Value: v,
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: true,
		HasConfigurable: true, Configurable: false,
	}, true
}

func (m ModuleExotic) DefineOwnProperty(h *heap.Heap, key heap.PropertyKey, desc Descriptor) bool {
	if key.Kind != heap.KeyString {
		return false
	}
	rec := m.rec(h)
	if _, exists := rec.Exports[key.Name]; !exists || !desc.HasValue {
		return false
	}
	return value.SameValue(desc.Value, rec.Exports[key.Name], h, h, h)
}

func (m ModuleExotic) HasProperty(h *heap.Heap, c Caller, key heap.PropertyKey) (bool, *Throw) {
	if key.Kind != heap.KeyString {
		return false, nil
	}
	_, ok := m.rec(h).Exports[key.Name]
	return ok, nil
}

func (m ModuleExotic) Get(h *heap.Heap, c Caller, key heap.PropertyKey, receiver value.Value) (value.Value, *Throw) {
	if key.Kind == heap.KeyString {
		if v, ok := m.rec(h).Exports[key.Name]; ok {
			return v, nil
		}
	}
	return value.Undefined, nil
}

func (m ModuleExotic) Set(h *heap.Heap, c Caller, key heap.PropertyKey, v value.Value, receiver value.Value) (bool, *Throw) {
	return false, nil
}

func (m ModuleExotic) Delete(h *heap.Heap, key heap.PropertyKey) bool { return false }

func (m ModuleExotic) OwnPropertyKeys(h *heap.Heap) []heap.PropertyKey {
	rec := m.rec(h)
	names := make([]string, 0, len(rec.Exports))
	for k := range rec.Exports {
		names = append(names, k)
	}
	sortStrings(names)
	keys := make([]heap.PropertyKey, len(names))
	for i, n := range names {
		keys[i] = heap.StringKey(n)
	}
	return keys
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// FunctionExotic wraps every function-kind value: property access
// behaves ordinarily (delegated to a lazily allocated backing object
// exactly like any other exotic kind), but the type additionally exists
// so pkg/runtime's Caller implementation can use Caller.Call/Construct
// against V directly rather than through the InternalMethods surface —
// [[Call]] and [[Construct]] are not part of InternalMethods because
// ECMA-262 models them as a separate pair of internal methods only
// function objects have (9.1 "additional essential internal methods").
type FunctionExotic struct {
	V value.Value
}

func (f FunctionExotic) GetPrototypeOf(h *heap.Heap) value.Value {
	return Ordinary{V: f.V}.GetPrototypeOf(h)
}
func (f FunctionExotic) SetPrototypeOf(h *heap.Heap, proto value.Value) bool {
	return Ordinary{V: f.V}.SetPrototypeOf(h, proto)
}
func (f FunctionExotic) IsExtensible(h *heap.Heap) bool { return Ordinary{V: f.V}.IsExtensible(h) }
func (f FunctionExotic) PreventExtensions(h *heap.Heap) bool {
	return Ordinary{V: f.V}.PreventExtensions(h)
}
func (f FunctionExotic) GetOwnProperty(h *heap.Heap, key heap.PropertyKey) (Descriptor, bool) {
	return Ordinary{V: f.V}.GetOwnProperty(h, key)
}
func (f FunctionExotic) DefineOwnProperty(h *heap.Heap, key heap.PropertyKey, desc Descriptor) bool {
	return Ordinary{V: f.V}.DefineOwnProperty(h, key, desc)
}
func (f FunctionExotic) HasProperty(h *heap.Heap, c Caller, key heap.PropertyKey) (bool, *Throw) {
	return Ordinary{V: f.V}.HasProperty(h, c, key)
}
func (f FunctionExotic) Get(h *heap.Heap, c Caller, key heap.PropertyKey, receiver value.Value) (value.Value, *Throw) {
	return Ordinary{V: f.V}.Get(h, c, key, receiver)
}
func (f FunctionExotic) Set(h *heap.Heap, c Caller, key heap.PropertyKey, v value.Value, receiver value.Value) (bool, *Throw) {
	return Ordinary{V: f.V}.Set(h, c, key, v, receiver)
}
func (f FunctionExotic) Delete(h *heap.Heap, key heap.PropertyKey) bool {
	return Ordinary{V: f.V}.Delete(h, key)
}
func (f FunctionExotic) OwnPropertyKeys(h *heap.Heap) []heap.PropertyKey {
	return Ordinary{V: f.V}.OwnPropertyKeys(h)
}
