package value

import "math"

// StringReader is implemented by pkg/heap's string subspace so that
// equality and coercion here never need to import pkg/heap (which itself
// imports pkg/value for the Value type). Passing it explicitly keeps the
// dependency graph acyclic while still letting these algorithms compare
// heap strings by content.
type StringReader interface {
	StringAt(index uint32) string
}

// NumberReader mirrors StringReader for heap-resident f64s.
type NumberReader interface {
	NumberAt(index uint32) float64
}

// BigIntReader mirrors StringReader for heap-resident bigints.
type BigIntReader interface {
	BigIntAt(index uint32) BigIntLike
}

// BigIntLike is satisfied by *big.Int without forcing this package to
// import math/big in its exported surface; pkg/heap's BigInt subspace
// implements it directly on *big.Int via a defined method set elsewhere.
type BigIntLike interface {
	Cmp(other BigIntLike) int
	Sign() int
	Float64() float64
}

// refIdentity is satisfied when both values are the same heap-resident
// tag; identity comparison for objects, symbols, and functions is always
// "same index, same subspace", never structural.
func refIdentity(a, b Value) bool {
	return a.tag == b.tag && a.payload == b.payload
}

func (v Value) stringBytes(strs StringReader) string {
	if v.tag == TagSmallString {
		return v.AsSmallString()
	}
	return strs.StringAt(v.HeapIndex())
}

func (v Value) floatValue(nums NumberReader) float64 {
	switch v.tag {
	case TagInteger:
		return float64(v.AsInteger())
	case TagSmallFloat:
		return v.AsSmallFloat()
	case TagNumber:
		return nums.NumberAt(v.HeapIndex())
	}
	return math.NaN()
}

// SameValue implements the ECMA-262 SameValue algorithm: identical to
// SameValueZero except +0 and -0 are distinguished.
func SameValue(a, b Value, strs StringReader, nums NumberReader, bigs BigIntReader) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagUndefined, TagNull:
		return true
	case TagBoolean:
		return a.payload == b.payload
	case TagInteger:
		return a.AsInteger() == b.AsInteger()
	case TagSmallFloat:
		af, bf := a.AsSmallFloat(), b.AsSmallFloat()
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		if af == 0 && bf == 0 {
			return math.Signbit(af) == math.Signbit(bf)
		}
		return af == bf
	case TagNumber:
		af, bf := nums.NumberAt(a.HeapIndex()), nums.NumberAt(b.HeapIndex())
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	case TagSmallBigInt:
		return a.AsSmallBigInt() == b.AsSmallBigInt()
	case TagBigInt:
		return bigs.BigIntAt(a.HeapIndex()).Cmp(bigs.BigIntAt(b.HeapIndex())) == 0
	case TagSmallString:
		return a.AsSmallString() == b.AsSmallString()
	case TagString:
		return a.stringBytes(strs) == b.stringBytes(strs)
	default:
		return refIdentity(a, b)
	}
}

// SameValueZero is SameValue but +0 and -0 compare equal; it backs
// Array.prototype.includes, Map/Set key comparison, and SameValueZero in
// the spec proper.
func SameValueZero(a, b Value, strs StringReader, nums NumberReader, bigs BigIntReader) bool {
	if a.IsNumber() && b.IsNumber() {
		af, bf := a.floatValue(nums), b.floatValue(nums)
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	}
	return SameValue(a, b, strs, nums, bigs)
}

// StrictEquals implements `===`.
func StrictEquals(a, b Value, strs StringReader, nums NumberReader, bigs BigIntReader) bool {
	if a.tag != b.tag {
		// Integer vs SmallFloat vs Number are different tags but the same
		// "number" type per Tag.String(); `===` still requires numeric
		// equality across that boundary.
		if a.IsNumber() && b.IsNumber() {
			af, bf := a.floatValue(nums), b.floatValue(nums)
			if math.IsNaN(af) || math.IsNaN(bf) {
				return false
			}
			return af == bf
		}
		return false
	}
	switch a.tag {
	case TagUndefined, TagNull:
		return true
	case TagBoolean:
		return a.payload == b.payload
	case TagInteger:
		return a.AsInteger() == b.AsInteger()
	case TagSmallFloat:
		af, bf := a.AsSmallFloat(), b.AsSmallFloat()
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false
		}
		return af == bf
	case TagNumber:
		af, bf := nums.NumberAt(a.HeapIndex()), nums.NumberAt(b.HeapIndex())
		if math.IsNaN(af) || math.IsNaN(bf) {
			return false
		}
		return af == bf
	case TagSmallBigInt:
		return a.AsSmallBigInt() == b.AsSmallBigInt()
	case TagBigInt:
		return bigs.BigIntAt(a.HeapIndex()).Cmp(bigs.BigIntAt(b.HeapIndex())) == 0
	case TagSmallString:
		return a.AsSmallString() == b.AsSmallString()
	case TagString:
		return a.stringBytes(strs) == b.stringBytes(strs)
	default:
		return refIdentity(a, b)
	}
}

// LooseEquals implements the `==` Abstract Equality Comparison, including
// the coercions between Number/String/Boolean/BigInt. Object-to-primitive
// coercion (ToPrimitive) is handled by the caller via the toPrimitive hook,
// since pkg/value cannot invoke user-defined valueOf/toString itself.
func LooseEquals(a, b Value, strs StringReader, nums NumberReader, bigs BigIntReader, toPrimitive func(Value) (Value, bool)) bool {
	for {
		if a.tag == b.tag {
			return StrictEquals(a, b, strs, nums, bigs)
		}
		if a.IsNumber() && b.IsNumber() {
			return a.floatValue(nums) == b.floatValue(nums)
		}
		if a.tag == TagBigInt || a.tag == TagSmallBigInt {
			if b.IsNumber() {
				return bigIntEqualsNumber(a, b, bigs, nums)
			}
		}
		if b.tag == TagBigInt || b.tag == TagSmallBigInt {
			if a.IsNumber() {
				return bigIntEqualsNumber(b, a, bigs, nums)
			}
		}
		if (a.tag == TagNull && b.tag == TagUndefined) || (a.tag == TagUndefined && b.tag == TagNull) {
			return true
		}
		if a.IsNumber() && b.IsString() {
			return a.floatValue(nums) == stringToNumber(b.stringBytes(strs))
		}
		if a.IsString() && b.IsNumber() {
			return stringToNumber(a.stringBytes(strs)) == b.floatValue(nums)
		}
		if a.tag == TagBoolean {
			a = FromBoolAsNumber(a.AsBoolean())
			continue
		}
		if b.tag == TagBoolean {
			b = FromBoolAsNumber(b.AsBoolean())
			continue
		}
		if toPrimitive != nil {
			if a.IsObjectLike() && (b.IsNumber() || b.IsString() || b.IsBigInt() || b.IsSymbol()) {
				if prim, ok := toPrimitive(a); ok {
					a = prim
					continue
				}
			}
			if b.IsObjectLike() && (a.IsNumber() || a.IsString() || a.IsBigInt() || a.IsSymbol()) {
				if prim, ok := toPrimitive(b); ok {
					b = prim
					continue
				}
			}
		}
		return false
	}
}

// FromBoolAsNumber converts a boolean to Number(0) or Number(1), both of
// which always canonicalize to TagInteger.
func FromBoolAsNumber(b bool) Value {
	if b {
		return Integer(1)
	}
	return Integer(0)
}

func bigIntEqualsNumber(bigVal, numVal Value, bigs BigIntReader, nums NumberReader) bool {
	var bi BigIntLike
	if bigVal.tag == TagBigInt {
		bi = bigs.BigIntAt(bigVal.HeapIndex())
	} else {
		bi = smallBigIntAdapter(bigVal.AsSmallBigInt())
	}
	f := numVal.floatValue(nums)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return bi.Float64() == f
}

// smallBigIntAdapter lets an inline 56-bit bigint satisfy BigIntLike
// without allocating a *big.Int.
type smallBigIntAdapter int64

func (s smallBigIntAdapter) Cmp(other BigIntLike) int {
	of := other.Float64()
	sf := float64(s)
	switch {
	case sf < of:
		return -1
	case sf > of:
		return 1
	default:
		return 0
	}
}
func (s smallBigIntAdapter) Sign() int {
	switch {
	case s < 0:
		return -1
	case s > 0:
		return 1
	default:
		return 0
	}
}
func (s smallBigIntAdapter) Float64() float64 { return float64(s) }

// stringToNumber is the ToNumber(string) abstract operation for the
// purposes of `==` coercion. Full ToNumber (radix prefixes, trimming) is
// implemented in pkg/vm/convert.go (stringToNumber); this local copy keeps pkg/value
// free of a dependency on that package for just this one coercion.
func stringToNumber(s string) float64 {
	trimmed := trimSpace(s)
	if trimmed == "" {
		return 0
	}
	f, ok := parseFloatLoose(trimmed)
	if !ok {
		return math.NaN()
	}
	return f
}
