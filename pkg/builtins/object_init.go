package builtins

import (
	"sort"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// objectClassTag implements the [[Class]] tag Object.prototype.toString
// reports (19.1.3.6), covering the kinds this engine actually has.
func objectClassTag(v value.Value) string {
	switch v.Tag() {
	case value.TagUndefined:
		return "Undefined"
	case value.TagNull:
		return "Null"
	case value.TagArray:
		return "Array"
	case value.TagECMAScriptFunction, value.TagBuiltinFunction, value.TagBoundFunction:
		return "Function"
	case value.TagError:
		return "Error"
	case value.TagBoolean:
		return "Boolean"
	default:
		if v.IsNumber() {
			return "Number"
		}
		if v.IsString() {
			return "String"
		}
		return "Object"
	}
}

// ObjectInitializer builds %Object.prototype% and the Object
// constructor — grounded on the teacher's object_init.go, adapted from
// vm.Value/vm.PlainObject to this engine's heap-index Values and
// object.For dispatch.
type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string  { return "Object" }
func (o *ObjectInitializer) Priority() int { return PriorityObject }

func (o *ObjectInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	v := ctx.VM

	// Object.prototype has no prototype of its own (9.1's "root of the
	// prototype chain" case, [[Prototype]] is null).
	proto := h.NewOrdinaryObject(heap.RootShape(value.Undefined), value.Undefined)
	v.ObjectPrototype = proto
	ctx.Intrinsic("Object.prototype", proto)

	ctx.Method(proto, "hasOwnProperty", 1, func(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		key, thrown := vmm.ToPropertyKey(vmArg(args, 0))
		if thrown != nil {
			return value.Undefined, thrown
		}
		_, ok := object.For(this).GetOwnProperty(vmm.Heap, key)
		return value.Boolean(ok), nil
	})

	ctx.Method(proto, "isPrototypeOf", 1, func(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		v := vmArg(args, 0)
		if !v.IsObjectLike() {
			return value.False, nil
		}
		cur := object.For(v).GetPrototypeOf(vmm.Heap)
		for cur.IsObjectLike() {
			if value.SameValue(cur, this, vmm.Heap, vmm.Heap, vmm.Heap) {
				return value.True, nil
			}
			cur = object.For(cur).GetPrototypeOf(vmm.Heap)
		}
		return value.False, nil
	})

	ctx.Method(proto, "toString", 0, func(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return vmm.Heap.NewString("[object " + objectClassTag(this) + "]"), nil
	})

	ctx.Method(proto, "valueOf", 0, func(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return this, nil
	})

	ctor := ctx.Constructor("Object", 1, func(vm *vm.VM, this value.Value, args []value.Value, newTarget value.Value) (value.Value, *object.Throw) {
		arg := vmArg(args, 0)
		if arg.IsNullish() {
			return vm.Heap.NewOrdinaryObject(heap.RootShape(vm.ObjectPrototype), vm.ObjectPrototype), nil
		}
		return arg, nil
	})
	object.For(ctor).DefineOwnProperty(h, heap.StringKey("prototype"), object.Descriptor{HasValue: true, Value: proto})
	object.For(proto).DefineOwnProperty(h, heap.StringKey("constructor"), object.Descriptor{
		HasValue: true, Value: ctor, HasWritable: true, Writable: true, HasConfigurable: true, Configurable: true,
	})
	ctx.Intrinsic("Object", ctor)

	ctx.Method(ctor, "keys", 1, objectKeys)
	ctx.Method(ctor, "values", 1, objectValues)
	ctx.Method(ctor, "entries", 1, objectEntries)
	ctx.Method(ctor, "assign", 2, objectAssign)
	ctx.Method(ctor, "freeze", 1, objectFreeze)
	ctx.Method(ctor, "isFrozen", 1, objectIsFrozen)
	ctx.Method(ctor, "create", 2, objectCreate)
	ctx.Method(ctor, "getPrototypeOf", 1, objectGetPrototypeOf)
	ctx.Method(ctor, "defineProperty", 3, objectDefineProperty)

	return nil
}

func vmArg(args []value.Value, i int) value.Value { return vm.Arg(args, i) }

func ownEnumerableStringKeys(h *heap.Heap, v value.Value) []heap.PropertyKey {
	var keys []heap.PropertyKey
	for _, k := range object.For(v).OwnPropertyKeys(h) {
		if k.Kind != heap.KeyString {
			continue
		}
		d, ok := object.For(v).GetOwnProperty(h, k)
		if ok && d.Enumerable {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

func objectKeys(vm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	h := vm.Heap
	obj := vmArg(args, 0)
	keys := ownEnumerableStringKeys(h, obj)
	arr := h.NewArray(uint32(len(keys)), vm.ArrayPrototype)
	elems := make([]value.Value, len(keys))
	for i, k := range keys {
		elems[i] = h.NewString(k.Name)
	}
	h.Arrays.Get(arr.HeapIndex()).Elements.Dense = elems
	return arr, nil
}

func objectValues(vm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	h := vm.Heap
	obj := vmArg(args, 0)
	keys := ownEnumerableStringKeys(h, obj)
	elems := make([]value.Value, len(keys))
	for i, k := range keys {
		v, thrown := object.For(obj).Get(h, vm, k, obj)
		if thrown != nil {
			return value.Undefined, thrown
		}
		elems[i] = v
	}
	arr := h.NewArray(uint32(len(elems)), vm.ArrayPrototype)
	h.Arrays.Get(arr.HeapIndex()).Elements.Dense = elems
	return arr, nil
}

func objectEntries(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	h := vmm.Heap
	obj := vmArg(args, 0)
	keys := ownEnumerableStringKeys(h, obj)
	elems := make([]value.Value, len(keys))
	for i, k := range keys {
		propVal, thrown := object.For(obj).Get(h, vmm, k, obj)
		if thrown != nil {
			return value.Undefined, thrown
		}
		pair := h.NewArray(2, vmm.ArrayPrototype)
		h.Arrays.Get(pair.HeapIndex()).Elements.Dense = []value.Value{h.NewString(k.Name), propVal}
		elems[i] = pair
	}
	arr := h.NewArray(uint32(len(elems)), vmm.ArrayPrototype)
	h.Arrays.Get(arr.HeapIndex()).Elements.Dense = elems
	return arr, nil
}

func objectAssign(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	h := vmm.Heap
	target := vmArg(args, 0)
	for i := 1; i < len(args); i++ {
		src := args[i]
		if src.IsNullish() {
			continue
		}
		for _, k := range ownEnumerableStringKeys(h, src) {
			v, thrown := object.For(src).Get(h, vmm, k, src)
			if thrown != nil {
				return value.Undefined, thrown
			}
			ok, thrown2 := object.For(target).Set(h, vmm, k, v, target)
			if thrown2 != nil {
				return value.Undefined, thrown2
			}
			if !ok {
				return value.Undefined, vmm.Throw(vmm.TypeError("Cannot assign to read only property '" + k.Name + "'"))
			}
		}
	}
	return target, nil
}

func objectFreeze(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	h := vmm.Heap
	obj := vmArg(args, 0)
	if !obj.IsObjectLike() {
		return obj, nil
	}
	for _, k := range object.For(obj).OwnPropertyKeys(h) {
		d, ok := object.For(obj).GetOwnProperty(h, k)
		if !ok {
			continue
		}
		desc := object.Descriptor{HasConfigurable: true, Configurable: false}
		if d.IsData() {
			desc.HasWritable = true
			desc.Writable = false
		}
		object.For(obj).DefineOwnProperty(h, k, desc)
	}
	object.For(obj).PreventExtensions(h)
	return obj, nil
}

func objectIsFrozen(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	h := vmm.Heap
	obj := vmArg(args, 0)
	if !obj.IsObjectLike() {
		return value.True, nil
	}
	if object.For(obj).IsExtensible(h) {
		return value.False, nil
	}
	for _, k := range object.For(obj).OwnPropertyKeys(h) {
		d, ok := object.For(obj).GetOwnProperty(h, k)
		if !ok {
			continue
		}
		if d.Configurable || (d.IsData() && d.Writable) {
			return value.False, nil
		}
	}
	return value.True, nil
}

func objectCreate(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	proto := vmArg(args, 0)
	if !proto.IsObjectLike() && !proto.IsNull() {
		return value.Undefined, vmm.Throw(vmm.TypeError("Object prototype may only be an Object or null"))
	}
	obj := vmm.Heap.NewOrdinaryObject(heap.RootShape(proto), proto)
	if props := vmArg(args, 1); props.IsObjectLike() {
		for _, k := range ownEnumerableStringKeys(vmm.Heap, props) {
			descObj, thrown := object.For(props).Get(vmm.Heap, vmm, k, props)
			if thrown != nil {
				return value.Undefined, thrown
			}
			desc, thrown := toPropertyDescriptor(vmm, descObj)
			if thrown != nil {
				return value.Undefined, thrown
			}
			object.For(obj).DefineOwnProperty(vmm.Heap, k, desc)
		}
	}
	return obj, nil
}

func objectGetPrototypeOf(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	obj := vmArg(args, 0)
	if !obj.IsObjectLike() {
		return value.Null, nil
	}
	p := object.For(obj).GetPrototypeOf(vmm.Heap)
	if p.IsUndefined() {
		return value.Null, nil
	}
	return p, nil
}

func objectDefineProperty(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	obj := vmArg(args, 0)
	if !obj.IsObjectLike() {
		return value.Undefined, vmm.Throw(vmm.TypeError("Object.defineProperty called on non-object"))
	}
	key, thrown := vmm.ToPropertyKey(vmArg(args, 1))
	if thrown != nil {
		return value.Undefined, thrown
	}
	desc, thrown := toPropertyDescriptor(vmm, vmArg(args, 2))
	if thrown != nil {
		return value.Undefined, thrown
	}
	if !object.For(obj).DefineOwnProperty(vmm.Heap, key, desc) {
		return value.Undefined, vmm.Throw(vmm.TypeError("Cannot define property " + key.Name))
	}
	return obj, nil
}

func toPropertyDescriptor(vmm *vm.VM, v value.Value) (object.Descriptor, *object.Throw) {
	h := vmm.Heap
	var desc object.Descriptor
	if !v.IsObjectLike() {
		return desc, vmm.Throw(vmm.TypeError("Property description must be an object"))
	}
	has := func(name string) (value.Value, bool) {
		present, thrown := object.For(v).HasProperty(h, vmm, heap.StringKey(name))
		if thrown != nil || !present {
			return value.Undefined, false
		}
		val, thrown := object.For(v).Get(h, vmm, heap.StringKey(name), v)
		if thrown != nil {
			return value.Undefined, false
		}
		return val, true
	}
	if val, ok := has("value"); ok {
		desc.HasValue, desc.Value = true, val
	}
	if val, ok := has("writable"); ok {
		desc.HasWritable, desc.Writable = true, vmm.ToBoolean(val)
	}
	if val, ok := has("get"); ok {
		desc.HasGet, desc.Get = true, val
	}
	if val, ok := has("set"); ok {
		desc.HasSet, desc.Set = true, val
	}
	if val, ok := has("enumerable"); ok {
		desc.HasEnumerable, desc.Enumerable = true, vmm.ToBoolean(val)
	}
	if val, ok := has("configurable"); ok {
		desc.HasConfigurable, desc.Configurable = true, vmm.ToBoolean(val)
	}
	return desc, nil
}
