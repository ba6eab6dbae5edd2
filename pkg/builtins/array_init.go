package builtins

import (
	"sort"
	"strconv"
	"strings"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// ArrayInitializer builds %Array.prototype% and the Array constructor,
// grounded on the teacher's array_init.go (push/pop/map/filter/etc.),
// adapted to read/write elements through object.For's ArrayExotic
// dispatch rather than the teacher's []Value-backed PlainObject.
type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string  { return "Array" }
func (a *ArrayInitializer) Priority() int { return PriorityArray }

func (a *ArrayInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	vv := ctx.VM

	proto := h.NewArray(0, vv.ObjectPrototype)
	vv.ArrayPrototype = proto
	ctx.Intrinsic("Array.prototype", proto)

	ctx.Method(proto, "push", 1, arrayPush)
	ctx.Method(proto, "pop", 0, arrayPop)
	ctx.Method(proto, "shift", 0, arrayShift)
	ctx.Method(proto, "unshift", 1, arrayUnshift)
	ctx.Method(proto, "slice", 2, arraySlice)
	ctx.Method(proto, "splice", 2, arraySplice)
	ctx.Method(proto, "concat", 1, arrayConcat)
	ctx.Method(proto, "join", 1, arrayJoin)
	ctx.Method(proto, "indexOf", 1, arrayIndexOf)
	ctx.Method(proto, "lastIndexOf", 1, arrayLastIndexOf)
	ctx.Method(proto, "includes", 1, arrayIncludes)
	ctx.Method(proto, "reverse", 0, arrayReverse)
	ctx.Method(proto, "forEach", 1, arrayForEach)
	ctx.Method(proto, "map", 1, arrayMap)
	ctx.Method(proto, "filter", 1, arrayFilter)
	ctx.Method(proto, "reduce", 1, arrayReduce)
	ctx.Method(proto, "find", 1, arrayFind)
	ctx.Method(proto, "findIndex", 1, arrayFindIndex)
	ctx.Method(proto, "some", 1, arraySome)
	ctx.Method(proto, "every", 1, arrayEvery)
	ctx.Method(proto, "sort", 1, arraySort)
	ctx.Method(proto, "toString", 0, func(vmm *vm.VM, this value.Value, args []value.Value, nt value.Value) (value.Value, *object.Throw) {
		return arrayJoin(vmm, this, nil, nt)
	})

	ctor := ctx.Constructor("Array", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		if len(args) == 1 && args[0].IsNumber() {
			n, thrown := vmm.ToUint32(args[0])
			if thrown != nil {
				return value.Undefined, thrown
			}
			return vmm.Heap.NewArray(n, vmm.ArrayPrototype), nil
		}
		arr := vmm.Heap.NewArray(uint32(len(args)), vmm.ArrayPrototype)
		vmm.Heap.Arrays.Get(arr.HeapIndex()).Elements.Dense = append([]value.Value{}, args...)
		return arr, nil
	})
	object.For(ctor).DefineOwnProperty(h, heap.StringKey("prototype"), object.Descriptor{HasValue: true, Value: proto})
	object.For(proto).DefineOwnProperty(h, heap.StringKey("constructor"), object.Descriptor{
		HasValue: true, Value: ctor, HasWritable: true, Writable: true, HasConfigurable: true, Configurable: true,
	})
	ctx.Intrinsic("Array", ctor)
	ctx.Method(ctor, "isArray", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		return value.Boolean(vmArg(args, 0).Tag() == value.TagArray), nil
	})
	ctx.Method(ctor, "from", 1, arrayFrom)
	ctx.Method(ctor, "of", 0, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		arr := vmm.Heap.NewArray(uint32(len(args)), vmm.ArrayPrototype)
		vmm.Heap.Arrays.Get(arr.HeapIndex()).Elements.Dense = append([]value.Value{}, args...)
		return arr, nil
	})

	return nil
}

func arrayLen(h *heap.Heap, arr value.Value) uint32 { return h.Arrays.Get(arr.HeapIndex()).Length }

func arrayKey(i uint32) heap.PropertyKey { return heap.StringKey(strconv.FormatUint(uint64(i), 10)) }

func arrayGet(vmm *vm.VM, arr value.Value, i uint32) (value.Value, *object.Throw) {
	return object.For(arr).Get(vmm.Heap, vmm, arrayKey(i), arr)
}

func arraySet(vmm *vm.VM, arr value.Value, i uint32, v value.Value) *object.Throw {
	_, thrown := object.For(arr).Set(vmm.Heap, vmm, arrayKey(i), v, arr)
	return thrown
}

func toSlice(vmm *vm.VM, arr value.Value) ([]value.Value, *object.Throw) {
	n := arrayLen(vmm.Heap, arr)
	out := make([]value.Value, n)
	for i := uint32(0); i < n; i++ {
		v, thrown := arrayGet(vmm, arr, i)
		if thrown != nil {
			return nil, thrown
		}
		out[i] = v
	}
	return out, nil
}

func newArrayFrom(vmm *vm.VM, elems []value.Value) value.Value {
	arr := vmm.Heap.NewArray(uint32(len(elems)), vmm.ArrayPrototype)
	vmm.Heap.Arrays.Get(arr.HeapIndex()).Elements.Dense = elems
	return arr
}

func arrayPush(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	n := arrayLen(vmm.Heap, this)
	for _, v := range args {
		if thrown := arraySet(vmm, this, n, v); thrown != nil {
			return value.Undefined, thrown
		}
		n++
	}
	vmm.Heap.Arrays.Get(this.HeapIndex()).Length = n
	return vmm.Heap.NewNumber(float64(n)), nil
}

func arrayPop(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	n := arrayLen(vmm.Heap, this)
	if n == 0 {
		return value.Undefined, nil
	}
	v, thrown := arrayGet(vmm, this, n-1)
	if thrown != nil {
		return value.Undefined, thrown
	}
	object.For(this).Delete(vmm.Heap, arrayKey(n-1))
	vmm.Heap.Arrays.Get(this.HeapIndex()).Length = n - 1
	return v, nil
}

func arrayShift(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	elems, thrown := toSlice(vmm, this)
	if thrown != nil || len(elems) == 0 {
		return value.Undefined, thrown
	}
	first := elems[0]
	vmm.Heap.Arrays.Get(this.HeapIndex()).Elements.Dense = append([]value.Value{}, elems[1:]...)
	vmm.Heap.Arrays.Get(this.HeapIndex()).Length = uint32(len(elems) - 1)
	return first, nil
}

func arrayUnshift(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	merged := append(append([]value.Value{}, args...), elems...)
	vmm.Heap.Arrays.Get(this.HeapIndex()).Elements.Dense = merged
	vmm.Heap.Arrays.Get(this.HeapIndex()).Length = uint32(len(merged))
	return vmm.Heap.NewNumber(float64(len(merged))), nil
}

func normalizeIndex(i int64, length int) int {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 {
		return 0
	}
	if i > int64(length) {
		return length
	}
	return int(i)
}

func arraySlice(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	length := len(elems)
	start, end := 0, length
	if len(args) > 0 && !args[0].IsUndefined() {
		n, thrown := vmm.ToNumber(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		start = normalizeIndex(int64(n), length)
	}
	if len(args) > 1 && !args[1].IsUndefined() {
		n, thrown := vmm.ToNumber(args[1])
		if thrown != nil {
			return value.Undefined, thrown
		}
		end = normalizeIndex(int64(n), length)
	}
	if start > end {
		start = end
	}
	return newArrayFrom(vmm, append([]value.Value{}, elems[start:end]...)), nil
}

func arraySplice(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	length := len(elems)
	start := 0
	if len(args) > 0 {
		n, thrown := vmm.ToNumber(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		start = normalizeIndex(int64(n), length)
	}
	deleteCount := length - start
	if len(args) > 1 {
		n, thrown := vmm.ToNumber(args[1])
		if thrown != nil {
			return value.Undefined, thrown
		}
		if n < 0 {
			n = 0
		}
		if int(n) < deleteCount {
			deleteCount = int(n)
		}
	}
	removed := append([]value.Value{}, elems[start:start+deleteCount]...)
	var inserted []value.Value
	if len(args) > 2 {
		inserted = args[2:]
	}
	merged := append([]value.Value{}, elems[:start]...)
	merged = append(merged, inserted...)
	merged = append(merged, elems[start+deleteCount:]...)
	vmm.Heap.Arrays.Get(this.HeapIndex()).Elements.Dense = merged
	vmm.Heap.Arrays.Get(this.HeapIndex()).Length = uint32(len(merged))
	return newArrayFrom(vmm, removed), nil
}

func arrayConcat(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	result := append([]value.Value{}, elems...)
	for _, arg := range args {
		if arg.Tag() == value.TagArray {
			more, thrown := toSlice(vmm, arg)
			if thrown != nil {
				return value.Undefined, thrown
			}
			result = append(result, more...)
		} else {
			result = append(result, arg)
		}
	}
	return newArrayFrom(vmm, result), nil
}

func arrayJoin(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	sep := ","
	if len(args) > 0 && !args[0].IsUndefined() {
		s, thrown := vmm.ToDisplayString(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		sep = s
	}
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	parts := make([]string, len(elems))
	for i, v := range elems {
		if v.IsNullish() {
			parts[i] = ""
			continue
		}
		s, thrown := vmm.ToDisplayString(v)
		if thrown != nil {
			return value.Undefined, thrown
		}
		parts[i] = s
	}
	return vmm.Heap.NewString(strings.Join(parts, sep)), nil
}

func arrayIndexOf(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	target := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i, v := range elems {
		if value.StrictEquals(v, target, vmm.Heap, vmm.Heap, vmm.Heap) {
			return vmm.Heap.NewNumber(float64(i)), nil
		}
	}
	return vmm.Heap.NewNumber(-1), nil
}

func arrayLastIndexOf(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	target := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i := len(elems) - 1; i >= 0; i-- {
		if value.StrictEquals(elems[i], target, vmm.Heap, vmm.Heap, vmm.Heap) {
			return vmm.Heap.NewNumber(float64(i)), nil
		}
	}
	return vmm.Heap.NewNumber(-1), nil
}

func arrayIncludes(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	target := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for _, v := range elems {
		if value.SameValueZero(v, target, vmm.Heap, vmm.Heap, vmm.Heap) {
			return value.True, nil
		}
	}
	return value.False, nil
}

func arrayReverse(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	vmm.Heap.Arrays.Get(this.HeapIndex()).Elements.Dense = elems
	return this, nil
}

func arrayForEach(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	thisArg := vmArg(args, 1)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i, v := range elems {
		if _, thrown := vmm.Call(cb, thisArg, []value.Value{v, vmm.Heap.NewNumber(float64(i)), this}); thrown != nil {
			return value.Undefined, thrown
		}
	}
	return value.Undefined, nil
}

func arrayMap(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	thisArg := vmArg(args, 1)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	out := make([]value.Value, len(elems))
	for i, v := range elems {
		r, thrown := vmm.Call(cb, thisArg, []value.Value{v, vmm.Heap.NewNumber(float64(i)), this})
		if thrown != nil {
			return value.Undefined, thrown
		}
		out[i] = r
	}
	return newArrayFrom(vmm, out), nil
}

func arrayFilter(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	thisArg := vmArg(args, 1)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	var out []value.Value
	for i, v := range elems {
		r, thrown := vmm.Call(cb, thisArg, []value.Value{v, vmm.Heap.NewNumber(float64(i)), this})
		if thrown != nil {
			return value.Undefined, thrown
		}
		if vmm.ToBoolean(r) {
			out = append(out, v)
		}
	}
	return newArrayFrom(vmm, out), nil
}

func arrayReduce(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	var acc value.Value
	start := 0
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(elems) == 0 {
			return value.Undefined, vmm.Throw(vmm.TypeError("Reduce of empty array with no initial value"))
		}
		acc = elems[0]
		start = 1
	}
	for i := start; i < len(elems); i++ {
		r, thrown := vmm.Call(cb, value.Undefined, []value.Value{acc, elems[i], vmm.Heap.NewNumber(float64(i)), this})
		if thrown != nil {
			return value.Undefined, thrown
		}
		acc = r
	}
	return acc, nil
}

func arrayFind(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i, v := range elems {
		r, thrown := vmm.Call(cb, value.Undefined, []value.Value{v, vmm.Heap.NewNumber(float64(i)), this})
		if thrown != nil {
			return value.Undefined, thrown
		}
		if vmm.ToBoolean(r) {
			return v, nil
		}
	}
	return value.Undefined, nil
}

func arrayFindIndex(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i, v := range elems {
		r, thrown := vmm.Call(cb, value.Undefined, []value.Value{v, vmm.Heap.NewNumber(float64(i)), this})
		if thrown != nil {
			return value.Undefined, thrown
		}
		if vmm.ToBoolean(r) {
			return vmm.Heap.NewNumber(float64(i)), nil
		}
	}
	return vmm.Heap.NewNumber(-1), nil
}

func arraySome(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i, v := range elems {
		r, thrown := vmm.Call(cb, value.Undefined, []value.Value{v, vmm.Heap.NewNumber(float64(i)), this})
		if thrown != nil {
			return value.Undefined, thrown
		}
		if vmm.ToBoolean(r) {
			return value.True, nil
		}
	}
	return value.False, nil
}

func arrayEvery(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cb := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	for i, v := range elems {
		r, thrown := vmm.Call(cb, value.Undefined, []value.Value{v, vmm.Heap.NewNumber(float64(i)), this})
		if thrown != nil {
			return value.Undefined, thrown
		}
		if !vmm.ToBoolean(r) {
			return value.False, nil
		}
	}
	return value.True, nil
}

func arraySort(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	cmp := vmArg(args, 0)
	elems, thrown := toSlice(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	var sortErr *object.Throw
	sort.SliceStable(elems, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		if cmp.IsUndefined() {
			si, t1 := vmm.ToDisplayString(elems[i])
			sj, t2 := vmm.ToDisplayString(elems[j])
			if t1 != nil {
				sortErr = t1
				return false
			}
			if t2 != nil {
				sortErr = t2
				return false
			}
			return si < sj
		}
		r, thrown := vmm.Call(cmp, value.Undefined, []value.Value{elems[i], elems[j]})
		if thrown != nil {
			sortErr = thrown
			return false
		}
		n, thrown := vmm.ToNumber(r)
		if thrown != nil {
			sortErr = thrown
			return false
		}
		return n < 0
	})
	if sortErr != nil {
		return value.Undefined, sortErr
	}
	vmm.Heap.Arrays.Get(this.HeapIndex()).Elements.Dense = elems
	return this, nil
}

func arrayFrom(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	src := vmArg(args, 0)
	mapFn := vmArg(args, 1)
	elems, thrown := spreadArrayLike(vmm, src)
	if thrown != nil {
		return value.Undefined, thrown
	}
	if !mapFn.IsUndefined() {
		for i, v := range elems {
			r, thrown := vmm.Call(mapFn, value.Undefined, []value.Value{v, vmm.Heap.NewNumber(float64(i))})
			if thrown != nil {
				return value.Undefined, thrown
			}
			elems[i] = r
		}
	}
	return newArrayFrom(vmm, elems), nil
}
