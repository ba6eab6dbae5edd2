package vm

import (
	"math"
	"math/big"
	"strconv"

	"ecmacore/pkg/bytecode"
	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
)

// toBoolean implements ECMA-262 7.1.2 (ToBoolean): every value is truthy
// except undefined, null, false, +0/-0/NaN, "", and 0n.
func (vm *VM) toBoolean(v value.Value) bool {
	switch {
	case v.IsUndefined(), v.IsNull(), v.IsHole():
		return false
	case v.IsBoolean():
		return v.AsBoolean()
	case v.IsNumber():
		f := vm.numberValue(v)
		return f != 0 && !math.IsNaN(f)
	case v.IsBigInt():
		return vm.bigIntValue(v).Sign() != 0
	case v.IsString():
		return vm.Heap.GoString(v) != ""
	default:
		return true
	}
}

func (vm *VM) numberValue(v value.Value) float64 {
	if v.IsInteger() {
		return float64(v.AsInteger())
	}
	if v.IsSmallString() || v.Tag() == value.TagNumber {
		return vm.Heap.NumberAt(v.HeapIndex())
	}
	return v.AsSmallFloat()
}

func (vm *VM) bigIntValue(v value.Value) *big.Int {
	if v.Tag() == value.TagSmallBigInt {
		return big.NewInt(v.AsSmallBigInt())
	}
	return vm.Heap.BigInts.Get(v.HeapIndex())
}

// toNumber implements ToNumber (7.1.4), coercing objects via ToPrimitive
// with hint "number" first.
func (vm *VM) toNumber(v value.Value) (float64, *object.Throw) {
	switch {
	case v.IsNumber():
		return vm.numberValue(v), nil
	case v.IsUndefined():
		return math.NaN(), nil
	case v.IsNull(), v.IsHole():
		return 0, nil
	case v.IsBoolean():
		if v.AsBoolean() {
			return 1, nil
		}
		return 0, nil
	case v.IsString():
		return stringToNumber(vm.Heap.GoString(v)), nil
	case v.IsBigInt():
		return 0, vm.newThrow(vm.typeError("Cannot convert a BigInt value to a number"))
	case v.IsObjectLike():
		prim, thrown := vm.toPrimitive(v, "number")
		if thrown != nil {
			return 0, thrown
		}
		return vm.toNumber(prim)
	default:
		return math.NaN(), nil
	}
}

// stringToNumber implements StringToNumber (7.1.4.1.1): trim whitespace,
// treat the empty result as 0, accept a leading sign, hex/octal/binary
// prefixes, and ordinary decimal floats; anything else is NaN. This is a
// practical subset of the spec's StringNumericLiteral grammar, not a
// full reimplementation — pkg/value's own parser is unexported (see
// DESIGN.md).
func stringToNumber(s string) float64 {
	t := trimASCIISpace(s)
	if t == "" {
		return 0
	}
	neg := false
	rest := t
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		neg = rest[0] == '-'
		rest = rest[1:]
	}
	if len(rest) > 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		n, err := strconv.ParseUint(rest[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		f := float64(n)
		if neg {
			f = -f
		}
		return f
	}
	if len(rest) > 2 && rest[0] == '0' && (rest[1] == 'o' || rest[1] == 'O') {
		n, err := strconv.ParseUint(rest[2:], 8, 64)
		if err != nil {
			return math.NaN()
		}
		f := float64(n)
		if neg {
			f = -f
		}
		return f
	}
	if len(rest) > 2 && rest[0] == '0' && (rest[1] == 'b' || rest[1] == 'B') {
		n, err := strconv.ParseUint(rest[2:], 2, 64)
		if err != nil {
			return math.NaN()
		}
		f := float64(n)
		if neg {
			f = -f
		}
		return f
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func trimASCIISpace(s string) string {
	start, end := 0, len(s)
	for start < end && isJSSpace(s[start]) {
		start++
	}
	for end > start && isJSSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isJSSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// toPrimitive implements OrdinaryToPrimitive (7.1.1.1): try Symbol-free
// valueOf/toString in hint order, since this engine's wellKnownSymbols
// are not wired into a Symbol.toPrimitive dispatch (documented scope
// cut — see DESIGN.md).
func (vm *VM) toPrimitive(v value.Value, hint string) (value.Value, *object.Throw) {
	if !v.IsObjectLike() {
		return v, nil
	}
	methods := [2]string{"valueOf", "toString"}
	if hint == "string" {
		methods = [2]string{"toString", "valueOf"}
	}
	for _, name := range methods {
		fn, thrown := object.For(v).Get(vm.Heap, vm, heap.StringKey(name), v)
		if thrown != nil {
			return value.Undefined, thrown
		}
		if !fn.IsFunction() {
			continue
		}
		result, thrown := vm.Call(fn, v, nil)
		if thrown != nil {
			return value.Undefined, thrown
		}
		if !result.IsObjectLike() {
			return result, nil
		}
	}
	return value.Undefined, vm.newThrow(vm.typeError("Cannot convert object to primitive value"))
}

// toString implements ToString (7.1.17).
func (vm *VM) toString(v value.Value) (string, *object.Throw) {
	switch {
	case v.IsString():
		return vm.Heap.GoString(v), nil
	case v.IsUndefined():
		return "undefined", nil
	case v.IsNull():
		return "null", nil
	case v.IsBoolean():
		if v.AsBoolean() {
			return "true", nil
		}
		return "false", nil
	case v.IsNumber():
		return formatNumber(vm.numberValue(v)), nil
	case v.IsBigInt():
		return vm.bigIntValue(v).String(), nil
	case v.IsSymbol():
		return "", vm.newThrow(vm.typeError("Cannot convert a Symbol value to a string"))
	case v.IsObjectLike():
		prim, thrown := vm.toPrimitive(v, "string")
		if thrown != nil {
			return "", thrown
		}
		return vm.toString(prim)
	default:
		return "", nil
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "0"
		}
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (vm *VM) toInt32(v value.Value) (int32, *object.Throw) {
	f, thrown := vm.toNumber(v)
	if thrown != nil {
		return 0, thrown
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, nil
	}
	u := uint32(int64(math.Trunc(f)))
	return int32(u), nil
}

func (vm *VM) toUint32(v value.Value) (uint32, *object.Throw) {
	f, thrown := vm.toNumber(v)
	if thrown != nil {
		return 0, thrown
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, nil
	}
	return uint32(int64(math.Trunc(f))), nil
}

// toPropertyKey implements ToPropertyKey (7.1.19): symbols pass through,
// everything else coerces via ToString.
func (vm *VM) toPropertyKey(v value.Value) (heap.PropertyKey, *object.Throw) {
	if v.IsSymbol() {
		return heap.SymbolKey(v), nil
	}
	s, thrown := vm.toString(v)
	if thrown != nil {
		return heap.PropertyKey{}, thrown
	}
	return heap.StringKey(s), nil
}

func (vm *VM) typeofString(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "object"
	case v.IsBoolean():
		return "boolean"
	case v.IsNumber():
		return "number"
	case v.IsBigInt():
		return "bigint"
	case v.IsString():
		return "string"
	case v.IsSymbol():
		return "symbol"
	case v.IsFunction():
		return "function"
	default:
		return "object"
	}
}

// applyBinary implements ApplyStringOrNumericBinaryOperator (13.15.3):
// string concatenation when either ToPrimitive'd operand is a string,
// numeric operators otherwise (bigint arithmetic requires both operands
// to be bigints per 6.1.6.2 — no implicit bigint<->number coercion).
func (vm *VM) applyBinary(op bytecode.BinaryOperator, left, right value.Value) (value.Value, *object.Throw) {
	if op == bytecode.BinStringConcat || op == bytecode.BinAdd {
		lp, thrown := vm.toPrimitive(left, "default")
		if thrown != nil {
			return value.Undefined, thrown
		}
		rp, thrown := vm.toPrimitive(right, "default")
		if thrown != nil {
			return value.Undefined, thrown
		}
		if lp.IsString() || rp.IsString() {
			ls, thrown := vm.toString(lp)
			if thrown != nil {
				return value.Undefined, thrown
			}
			rs, thrown := vm.toString(rp)
			if thrown != nil {
				return value.Undefined, thrown
			}
			return vm.Heap.NewString(ls + rs), nil
		}
		left, right = lp, rp
	}

	if left.IsBigInt() || right.IsBigInt() {
		if !left.IsBigInt() || !right.IsBigInt() {
			return value.Undefined, vm.newThrow(vm.typeError("Cannot mix BigInt and other types, use explicit conversions"))
		}
		return vm.applyBigInt(op, vm.bigIntValue(left), vm.bigIntValue(right))
	}

	lf, thrown := vm.toNumber(left)
	if thrown != nil {
		return value.Undefined, thrown
	}
	rf, thrown := vm.toNumber(right)
	if thrown != nil {
		return value.Undefined, thrown
	}
	switch op {
	case bytecode.BinAdd:
		return vm.Heap.NewNumber(lf + rf), nil
	case bytecode.BinSubtract:
		return vm.Heap.NewNumber(lf - rf), nil
	case bytecode.BinMultiply:
		return vm.Heap.NewNumber(lf * rf), nil
	case bytecode.BinDivide:
		return vm.Heap.NewNumber(lf / rf), nil
	case bytecode.BinRemainder:
		return vm.Heap.NewNumber(math.Mod(lf, rf)), nil
	case bytecode.BinExponent:
		return vm.Heap.NewNumber(math.Pow(lf, rf)), nil
	case bytecode.BinBitwiseAnd, bytecode.BinBitwiseOr, bytecode.BinBitwiseXor,
		bytecode.BinShiftLeft, bytecode.BinShiftRight:
		li := toInt32FromFloat(lf)
		ri := toInt32FromFloat(rf)
		switch op {
		case bytecode.BinBitwiseAnd:
			return vm.Heap.NewNumber(float64(li & ri)), nil
		case bytecode.BinBitwiseOr:
			return vm.Heap.NewNumber(float64(li | ri)), nil
		case bytecode.BinBitwiseXor:
			return vm.Heap.NewNumber(float64(li ^ ri)), nil
		case bytecode.BinShiftLeft:
			return vm.Heap.NewNumber(float64(li << (uint32(ri) & 31))), nil
		case bytecode.BinShiftRight:
			return vm.Heap.NewNumber(float64(li >> (uint32(ri) & 31))), nil
		}
	case bytecode.BinUnsignedShiftRight:
		lu := uint32(int64(math.Trunc(lf)))
		ri := toInt32FromFloat(rf)
		return vm.Heap.NewNumber(float64(lu >> (uint32(ri) & 31))), nil
	}
	return value.Undefined, vm.newThrow(vm.typeError("unsupported binary operator"))
}

func toInt32FromFloat(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Trunc(f))))
}

func (vm *VM) applyBigInt(op bytecode.BinaryOperator, l, r *big.Int) (value.Value, *object.Throw) {
	result := new(big.Int)
	switch op {
	case bytecode.BinAdd:
		result.Add(l, r)
	case bytecode.BinSubtract:
		result.Sub(l, r)
	case bytecode.BinMultiply:
		result.Mul(l, r)
	case bytecode.BinDivide:
		if r.Sign() == 0 {
			return value.Undefined, vm.newThrow(vm.rangeError("Division by zero"))
		}
		result.Quo(l, r)
	case bytecode.BinRemainder:
		if r.Sign() == 0 {
			return value.Undefined, vm.newThrow(vm.rangeError("Division by zero"))
		}
		result.Rem(l, r)
	case bytecode.BinExponent:
		if r.Sign() < 0 {
			return value.Undefined, vm.newThrow(vm.rangeError("Exponent must be non-negative"))
		}
		result.Exp(l, r, nil)
	case bytecode.BinBitwiseAnd:
		result.And(l, r)
	case bytecode.BinBitwiseOr:
		result.Or(l, r)
	case bytecode.BinBitwiseXor:
		result.Xor(l, r)
	case bytecode.BinShiftLeft:
		result.Lsh(l, uint(r.Int64()))
	case bytecode.BinShiftRight:
		result.Rsh(l, uint(r.Int64()))
	default:
		return value.Undefined, vm.newThrow(vm.typeError("unsupported BigInt operator"))
	}
	return vm.Heap.NewBigInt(result), nil
}

// relationalCompare implements IsLessThan (7.2.13) for the four ordering
// opcodes, via ToPrimitive with hint "number" then either string or
// numeric comparison.
func (vm *VM) relationalCompare(op bytecode.Op, left, right value.Value) (value.Value, *object.Throw) {
	lp, thrown := vm.toPrimitive(left, "number")
	if thrown != nil {
		return value.Undefined, thrown
	}
	rp, thrown := vm.toPrimitive(right, "number")
	if thrown != nil {
		return value.Undefined, thrown
	}
	if lp.IsString() && rp.IsString() {
		ls := vm.Heap.GoString(lp)
		rs := vm.Heap.GoString(rp)
		return value.Boolean(stringCompare(op, ls, rs)), nil
	}
	if lp.IsBigInt() || rp.IsBigInt() {
		lf, thrown := vm.toNumber(lp)
		if thrown != nil {
			return value.Undefined, thrown
		}
		rf, thrown := vm.toNumber(rp)
		if thrown != nil {
			return value.Undefined, thrown
		}
		return value.Boolean(numberCompare(op, lf, rf)), nil
	}
	lf, thrown := vm.toNumber(lp)
	if thrown != nil {
		return value.Undefined, thrown
	}
	rf, thrown := vm.toNumber(rp)
	if thrown != nil {
		return value.Undefined, thrown
	}
	if math.IsNaN(lf) || math.IsNaN(rf) {
		return value.False, nil
	}
	return value.Boolean(numberCompare(op, lf, rf)), nil
}

func numberCompare(op bytecode.Op, l, r float64) bool {
	switch op {
	case bytecode.OpLessThan:
		return l < r
	case bytecode.OpGreaterThan:
		return l > r
	case bytecode.OpLessThanOrEqual:
		return l <= r
	case bytecode.OpGreaterThanOrEqual:
		return l >= r
	}
	return false
}

func stringCompare(op bytecode.Op, l, r string) bool {
	switch op {
	case bytecode.OpLessThan:
		return l < r
	case bytecode.OpGreaterThan:
		return l > r
	case bytecode.OpLessThanOrEqual:
		return l <= r
	case bytecode.OpGreaterThanOrEqual:
		return l >= r
	}
	return false
}

func (vm *VM) looseEquals(a, b value.Value) (bool, *object.Throw) {
	var thrown *object.Throw
	toPrim := func(v value.Value) (value.Value, bool) {
		p, t := vm.toPrimitive(v, "default")
		if t != nil {
			thrown = t
			return value.Undefined, false
		}
		return p, true
	}
	eq := value.LooseEquals(a, b, vm.Heap, vm.Heap, vm.Heap, toPrim)
	if thrown != nil {
		return false, thrown
	}
	return eq, nil
}

// instanceOf implements InstanceofOperator (7.3.22) via OrdinaryHasInstance
// (20.2.3.6): no Symbol.hasInstance override dispatch (documented cut).
func (vm *VM) instanceOf(value_ value.Value, constructor value.Value) (value.Value, *object.Throw) {
	if !constructor.IsFunction() {
		return value.Undefined, vm.newThrow(vm.typeError("Right-hand side of 'instanceof' is not callable"))
	}
	if !value_.IsObjectLike() {
		return value.False, nil
	}
	protoVal, thrown := object.For(constructor).Get(vm.Heap, vm, heap.StringKey("prototype"), constructor)
	if thrown != nil {
		return value.Undefined, thrown
	}
	if !protoVal.IsObjectLike() {
		return value.Undefined, vm.newThrow(vm.typeError("Function has non-object prototype in instanceof check"))
	}
	for p := object.For(value_).GetPrototypeOf(vm.Heap); p.IsObjectLike(); p = object.For(p).GetPrototypeOf(vm.Heap) {
		if value.SameValue(p, protoVal, vm.Heap, vm.Heap, vm.Heap) {
			return value.True, nil
		}
	}
	return value.False, nil
}
