package object

import (
	"sort"
	"strconv"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/value"
)

// Ordinary implements ECMA-262 9.1's ordinary object internal methods.
// It serves TagObject values directly against their ObjectRecord, and
// every other heap kind whose internal methods are ordinary despite
// having exotic internal *slots* (Map, Set, Date, Error, Promise,
// RegExp, ArrayBuffer, DataView, WeakMap, WeakSet, WeakRef,
// FinalizationRegistry, EmbedderObject) through a lazily allocated
// backing ObjectRecord reached via Heap.ExoticHeaderOf — these kinds
// have dedicated record storage for their internal slots but no
// Shape/Properties of their own for script-visible named/symbol
// properties, grounded on the same "backing ordinary object" pattern
// the teacher's PlainObject played for every JS-visible object (see
// pkg/vm/object.go), generalized here to kinds the teacher never had
// a distinct record for at all.
type Ordinary struct {
	V value.Value
}

// record returns the ObjectRecord backing o's named/symbol properties,
// allocating one on first use (create==true) for non-TagObject kinds.
// ok is false only when create is false and none has been allocated yet.
func (o Ordinary) record(h *heap.Heap, create bool) (*heap.ObjectRecord, bool) {
	if o.V.Tag() == value.TagObject {
		return h.Objects.Get(o.V.HeapIndex()), true
	}
	hdr := h.ExoticHeaderOf(o.V)
	if hdr.Backing == 0 {
		if !create {
			return nil, false
		}
		hdr.Backing = h.Objects.Alloc(&heap.ObjectRecord{
			Shape:      heap.RootShape(hdr.Prototype),
			Prototype:  hdr.Prototype,
			Extensible: hdr.Extensible,
		})
	}
	return h.Objects.Get(hdr.Backing), true
}

func (o Ordinary) GetPrototypeOf(h *heap.Heap) value.Value {
	if o.V.Tag() == value.TagObject {
		return h.Objects.Get(o.V.HeapIndex()).Prototype
	}
	return h.ExoticHeaderOf(o.V).Prototype
}

// SetPrototypeOf implements OrdinarySetPrototypeOf (10.1.2.1): reject a
// cycle back to o itself, walking only non-Proxy links (a Proxy's own
// [[GetPrototypeOf]] may run arbitrary trap code this check must not
// trigger — spec 9, "prototype-cycle rejection" testable property 5).
func (o Ordinary) SetPrototypeOf(h *heap.Heap, proto value.Value) bool {
	current := o.GetPrototypeOf(h)
	if value.SameValue(current, proto, h, h, h) {
		return true
	}
	if !o.IsExtensible(h) {
		return false
	}
	for p := proto; p.IsObjectLike(); {
		if value.SameValue(p, o.V, h, h, h) {
			return false
		}
		if p.Tag() == value.TagProxy {
			break
		}
		p = For(p).GetPrototypeOf(h)
	}
	if o.V.Tag() == value.TagObject {
		rec := h.Objects.Get(o.V.HeapIndex())
		rec.Prototype = proto
		rec.Shape = rec.Shape.WithPrototype(proto)
		return true
	}
	h.ExoticHeaderOf(o.V).Prototype = proto
	return true
}

func (o Ordinary) IsExtensible(h *heap.Heap) bool {
	if o.V.Tag() == value.TagObject {
		return h.Objects.Get(o.V.HeapIndex()).Extensible
	}
	return h.ExoticHeaderOf(o.V).Extensible
}

func (o Ordinary) PreventExtensions(h *heap.Heap) bool {
	if o.V.Tag() == value.TagObject {
		rec := h.Objects.Get(o.V.HeapIndex())
		rec.Extensible = false
		rec.Shape = rec.Shape.WithExtensible(false)
		return true
	}
	h.ExoticHeaderOf(o.V).Extensible = false
	return true
}

func (o Ordinary) GetOwnProperty(h *heap.Heap, key heap.PropertyKey) (Descriptor, bool) {
	rec, ok := o.record(h, false)
	if !ok {
		return Descriptor{}, false
	}
	i, found := rec.Shape.IndexOf(key)
	if !found {
		return Descriptor{}, false
	}
	f := rec.Shape.Fields[i]
	d := Descriptor{
		Enumerable: f.Enumerable, HasEnumerable: true,
		Configurable: f.Configurable, HasConfigurable: true,
	}
	if f.Kind == heap.DescriptorAccessor {
		d.Get, d.HasGet = rec.Getters[key.Hash()], true
		d.Set, d.HasSet = rec.Setters[key.Hash()], true
	} else {
		d.Value, d.HasValue = rec.Properties[i], true
		d.Writable, d.HasWritable = f.Writable, true
	}
	return d, true
}

// DefineOwnProperty implements ValidateAndApplyPropertyDescriptor
// (10.1.6.3) against the Shape-backed field list: non-configurable
// fields reject configurability/enumerability changes, data<->accessor
// conversion, and (for data fields) non-writable value changes.
func (o Ordinary) DefineOwnProperty(h *heap.Heap, key heap.PropertyKey, desc Descriptor) bool {
	rec, ok := o.record(h, true)
	if !ok {
		return false
	}
	i, exists := rec.Shape.IndexOf(key)
	if !exists {
		if !rec.Extensible {
			return false
		}
		kind := heap.DescriptorData
		if desc.IsAccessor() {
			kind = heap.DescriptorAccessor
		}
		f := heap.Field{
			Key:          key,
			Kind:         kind,
			Writable:     desc.HasWritable && desc.Writable,
			Enumerable:   desc.HasEnumerable && desc.Enumerable,
			Configurable: desc.HasConfigurable && desc.Configurable,
		}
		rec.Shape = rec.Shape.GetChildShape(f)
		if kind == heap.DescriptorAccessor {
			o.ensureAccessorMaps(rec)
			rec.Getters[key.Hash()] = orUndefined(desc.HasGet, desc.Get)
			rec.Setters[key.Hash()] = orUndefined(desc.HasSet, desc.Set)
			rec.Properties = append(rec.Properties, value.Undefined)
		} else {
			rec.Properties = append(rec.Properties, orUndefined(desc.HasValue, desc.Value))
		}
		return true
	}

	f := rec.Shape.Fields[i]
	if !f.Configurable {
		if desc.HasConfigurable && desc.Configurable {
			return false
		}
		if desc.HasEnumerable && desc.Enumerable != f.Enumerable {
			return false
		}
		if f.Kind == heap.DescriptorData && desc.IsAccessor() {
			return false
		}
		if f.Kind == heap.DescriptorAccessor && desc.IsData() {
			return false
		}
		if f.Kind == heap.DescriptorData && !f.Writable {
			if desc.HasWritable && desc.Writable {
				return false
			}
			if desc.HasValue && !value.SameValue(desc.Value, rec.Properties[i], h, h, h) {
				return false
			}
		}
		if f.Kind == heap.DescriptorAccessor {
			if desc.HasGet && !value.SameValue(desc.Get, rec.Getters[key.Hash()], h, h, h) {
				return false
			}
			if desc.HasSet && !value.SameValue(desc.Set, rec.Setters[key.Hash()], h, h, h) {
				return false
			}
		}
	}

	newField := f
	switching := false
	switch {
	case desc.IsAccessor() && f.Kind == heap.DescriptorData:
		newField.Kind = heap.DescriptorAccessor
		switching = true
	case desc.IsData() && f.Kind == heap.DescriptorAccessor:
		newField.Kind = heap.DescriptorData
		newField.Writable = false
		switching = true
	}
	if desc.HasWritable {
		newField.Writable = desc.Writable
	}
	if desc.HasEnumerable {
		newField.Enumerable = desc.Enumerable
	}
	if desc.HasConfigurable {
		newField.Configurable = desc.Configurable
	}
	rec.Shape = rec.Shape.WithUpdatedField(i, newField)

	if newField.Kind == heap.DescriptorAccessor {
		o.ensureAccessorMaps(rec)
		if switching {
			rec.Getters[key.Hash()] = value.Undefined
			rec.Setters[key.Hash()] = value.Undefined
		}
		if desc.HasGet {
			rec.Getters[key.Hash()] = desc.Get
		}
		if desc.HasSet {
			rec.Setters[key.Hash()] = desc.Set
		}
	} else if desc.HasValue {
		rec.Properties[i] = desc.Value
	} else if switching {
		rec.Properties[i] = value.Undefined
	}
	return true
}

func (o Ordinary) ensureAccessorMaps(rec *heap.ObjectRecord) {
	if rec.Getters == nil {
		rec.Getters = make(map[string]value.Value)
	}
	if rec.Setters == nil {
		rec.Setters = make(map[string]value.Value)
	}
}

func orUndefined(has bool, v value.Value) value.Value {
	if has {
		return v
	}
	return value.Undefined
}

func (o Ordinary) HasProperty(h *heap.Heap, c Caller, key heap.PropertyKey) (bool, *Throw) {
	if _, ok := o.GetOwnProperty(h, key); ok {
		return true, nil
	}
	proto := o.GetPrototypeOf(h)
	if !proto.IsObjectLike() {
		return false, nil
	}
	return For(proto).HasProperty(h, c, key)
}

func (o Ordinary) Get(h *heap.Heap, c Caller, key heap.PropertyKey, receiver value.Value) (value.Value, *Throw) {
	d, ok := o.GetOwnProperty(h, key)
	if !ok {
		proto := o.GetPrototypeOf(h)
		if !proto.IsObjectLike() {
			return value.Undefined, nil
		}
		return For(proto).Get(h, c, key, receiver)
	}
	if d.IsAccessor() {
		if d.Get.IsUndefined() {
			return value.Undefined, nil
		}
		return c.Call(d.Get, receiver, nil)
	}
	return d.Value, nil
}

// Set implements OrdinarySet (10.1.9), including the receiver-vs-this
// distinction Reflect.set(target, key, value, receiver) relies on: a
// data write that must create a new own property lands on receiver, not
// on o, once the prototype-chain search bottoms out.
func (o Ordinary) Set(h *heap.Heap, c Caller, key heap.PropertyKey, v value.Value, receiver value.Value) (bool, *Throw) {
	d, ok := o.GetOwnProperty(h, key)
	if !ok {
		proto := o.GetPrototypeOf(h)
		if proto.IsObjectLike() {
			return For(proto).Set(h, c, key, v, receiver)
		}
		d = Descriptor{
			HasValue: true, Value: value.Undefined,
			HasWritable: true, Writable: true,
			HasEnumerable: true, Enumerable: true,
			HasConfigurable: true, Configurable: true,
		}
	}
	if d.IsAccessor() {
		if d.Set.IsUndefined() {
			return false, nil
		}
		if _, thrown := c.Call(d.Set, receiver, []value.Value{v}); thrown != nil {
			return false, thrown
		}
		return true, nil
	}
	if !d.Writable {
		return false, nil
	}
	if !receiver.IsObjectLike() {
		return false, nil
	}
	existing, hasOwn := For(receiver).GetOwnProperty(h, key)
	if hasOwn {
		if existing.IsAccessor() || !existing.Writable {
			return false, nil
		}
		return For(receiver).DefineOwnProperty(h, key, Descriptor{HasValue: true, Value: v}), nil
	}
	return For(receiver).DefineOwnProperty(h, key, Descriptor{
		HasValue: true, Value: v,
		HasWritable: true, Writable: true,
		HasEnumerable: true, Enumerable: true,
		HasConfigurable: true, Configurable: true,
	}), nil
}

func (o Ordinary) Delete(h *heap.Heap, key heap.PropertyKey) bool {
	rec, ok := o.record(h, false)
	if !ok {
		return true
	}
	i, exists := rec.Shape.IndexOf(key)
	if !exists {
		return true
	}
	if !rec.Shape.Fields[i].Configurable {
		return false
	}
	props := make([]value.Value, 0, len(rec.Properties)-1)
	for idx, v := range rec.Properties {
		if idx == i {
			continue
		}
		props = append(props, v)
	}
	delete(rec.Getters, key.Hash())
	delete(rec.Setters, key.Hash())
	rec.Shape = rec.Shape.WithoutField(key)
	rec.Properties = props
	return true
}

// OwnPropertyKeys orders results per 6.1.7.1: integer-index string keys
// ascending, then remaining string keys in creation order, then symbol
// keys in creation order.
func (o Ordinary) OwnPropertyKeys(h *heap.Heap) []heap.PropertyKey {
	rec, ok := o.record(h, false)
	if !ok {
		return nil
	}
	var indices, strs, syms []heap.PropertyKey
	for _, f := range rec.Shape.Fields {
		switch {
		case f.Key.Kind == heap.KeySymbol:
			syms = append(syms, f.Key)
		case isArrayIndexKey(f.Key.Name):
			indices = append(indices, f.Key)
		default:
			strs = append(strs, f.Key)
		}
	}
	sort.Slice(indices, func(i, j int) bool {
		return arrayIndexKeyValue(indices[i].Name) < arrayIndexKeyValue(indices[j].Name)
	})
	keys := make([]heap.PropertyKey, 0, len(indices)+len(strs)+len(syms))
	keys = append(keys, indices...)
	keys = append(keys, strs...)
	keys = append(keys, syms...)
	return keys
}

// isArrayIndexKey reports whether name is a canonical array index string:
// "0", or a nonzero digit sequence with no leading zero, within uint32
// range minus one (array indices never reach 2^32-1, reserved for length).
func isArrayIndexKey(name string) bool {
	if name == "0" {
		return true
	}
	if name == "" || name[0] == '0' || name[0] < '1' || name[0] > '9' {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(name, 10, 32)
	return err == nil && n < 1<<32-1
}

func arrayIndexKeyValue(name string) uint32 {
	n, _ := strconv.ParseUint(name, 10, 32)
	return uint32(n)
}
