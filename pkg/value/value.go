// Package value defines the tagged representation of every ECMAScript
// language value the engine can produce. A Value is always a fixed-size,
// copyable Go struct: primitives too small to box (undefined, null,
// booleans, small integers, small floats, small bigints, and strings up to
// seven UTF-8 bytes) are carried inline in the payload; everything else is
// carried as a non-zero index into the matching typed arena owned by
// pkg/heap. Holding a heap index in a Value does not by itself keep the
// referent alive across a GC safe point — see pkg/gc for the rooting
// discipline that does.
package value

import (
	"math"
)

// Tag is the discriminant of a Value. Its ordering has no significance
// beyond grouping related kinds together for readability.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagNull
	TagBoolean

	TagSmallString
	TagString
	TagSymbol

	TagInteger   // 56-bit safe-integer range, inline
	TagSmallFloat // non-integral float64 whose low byte is zero, inline
	TagNumber    // heap f64, used when neither Integer nor SmallFloat applies

	TagSmallBigInt // 56-bit bigint, inline
	TagBigInt      // heap arbitrary-precision bigint

	TagObject
	TagArray
	TagArguments
	TagArrayBuffer
	TagSharedArrayBuffer
	TagDataView
	TagTypedArray
	TagDate
	TagError
	TagMap
	TagSet
	TagWeakMap
	TagWeakSet
	TagWeakRef
	TagFinalizationRegistry
	TagRegExp
	TagPromise
	TagProxy
	TagModule
	TagEmbedderObject

	TagBoundFunction
	TagBuiltinFunction
	TagECMAScriptFunction

	TagGenerator
	TagAsyncGenerator
	TagIterator

	// TagHole marks an elided element in a sparse array; it is never
	// observable from script level (property lookups fall through to the
	// prototype chain instead).
	TagHole
	// TagUninitialized is the TDZ marker bound to a let/const slot before
	// its declaration has executed.
	TagUninitialized
)

func (t Tag) String() string {
	switch t {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagBoolean:
		return "boolean"
	case TagSmallString, TagString:
		return "string"
	case TagSymbol:
		return "symbol"
	case TagInteger, TagSmallFloat, TagNumber:
		return "number"
	case TagSmallBigInt, TagBigInt:
		return "bigint"
	case TagBoundFunction, TagBuiltinFunction, TagECMAScriptFunction:
		return "function"
	default:
		return "object"
	}
}

// smallStringLen is the maximum number of UTF-8 bytes that fit inline.
// The spec reserves one sentinel byte per the 8-byte payload budget: 7
// data bytes plus an implicit terminator, so an array of 7 bytes where
// unused trailing bytes (and the whole array, for the empty string) are
// the sentinel 0xFF is sufficient to recover the length by scanning.
const smallStringLen = 7

// smallStringSentinel can never appear in valid UTF-8, so it safely
// terminates an inline string shorter than smallStringLen bytes.
const smallStringSentinel = 0xFF

// Value is the tagged union over every ECMAScript language value.
type Value struct {
	tag Tag
	// payload carries, depending on tag: the raw bits of a float64
	// (TagSmallFloat), a sign-extended 56-bit integer
	// (TagInteger, TagSmallBigInt), a 0/1 boolean, or a 32-bit arena
	// index widened to 64 bits for every heap-resident tag.
	payload uint64
	small   [smallStringLen]byte
}

var (
	Undefined = Value{tag: TagUndefined}
	Null      = Value{tag: TagNull}
	True      = Value{tag: TagBoolean, payload: 1}
	False     = Value{tag: TagBoolean, payload: 0}
	Hole      = Value{tag: TagHole}
	Uninitialized = Value{tag: TagUninitialized}

	// emptySmallString is the canonical representation of "": all seven
	// inline bytes are the sentinel, per the testable property in the spec.
	emptySmallString = func() Value {
		v := Value{tag: TagSmallString}
		for i := range v.small {
			v.small[i] = smallStringSentinel
		}
		return v
	}()
)

// EmptyString returns the canonical empty string value.
func EmptyString() Value { return emptySmallString }

func Boolean(b bool) Value {
	if b {
		return True
	}
	return False
}

// --- Numeric canonicalization (spec 4.1) ---

// safeIntegerMin/Max bound the range in which a whole-number float64 must
// canonicalize to TagInteger rather than TagSmallFloat/TagNumber.
const (
	safeIntegerMin = -(int64(1) << 53) + 1
	safeIntegerMax = (int64(1) << 53) - 1
)

// canonicalNaNBits is the single bit pattern every produced NaN collapses
// to, so that two NaNs are always bit-identical.
var canonicalNaNBits = math.Float64bits(math.NaN())

// FromFloat64 applies the mandatory canonicalization path every
// value-producing arithmetic instruction must run its result through:
//  1. NaN collapses to the canonical bit pattern.
//  2. Negative zero is kept as a SmallFloat, never promoted to Integer.
//  3. A whole number in the safe-integer range becomes Integer.
//  4. A float whose low byte is already zero is carried as SmallFloat.
//  5. Anything else needs a heap Number allocation: ok is false and the
//     caller (pkg/heap's Numbers subspace) must allocate a slot and wrap
//     the index with HeapNumber instead.
func FromFloat64(f float64) (result Value, ok bool) {
	if math.IsNaN(f) {
		return Value{tag: TagSmallFloat, payload: canonicalNaNBits}, true
	}
	if f == 0 && math.Signbit(f) {
		return Value{tag: TagSmallFloat, payload: math.Float64bits(f)}, true
	}
	if f == math.Trunc(f) && f >= float64(safeIntegerMin) && f <= float64(safeIntegerMax) {
		return Integer(int64(f)), true
	}
	bits := math.Float64bits(f)
	if bits&0xFF == 0 {
		return Value{tag: TagSmallFloat, payload: bits}, true
	}
	return Value{}, false
}

// Integer constructs a TagInteger value. Callers are responsible for only
// calling this with values already known to fit the safe-integer range;
// FromFloat64 is the canonicalizing entry point for arbitrary arithmetic
// results.
func Integer(i int64) Value {
	return Value{tag: TagInteger, payload: uint64(i)}
}

// HeapNumber wraps a Number subspace index. Used when FromFloat64's fast
// paths don't apply and pkg/heap has allocated a slot for the bits.
func HeapNumber(index uint32) Value {
	return Value{tag: TagNumber, payload: uint64(index)}
}

func SmallBigInt(i int64) Value {
	return Value{tag: TagSmallBigInt, payload: uint64(i)}
}

func HeapBigInt(index uint32) Value {
	return Value{tag: TagBigInt, payload: uint64(index)}
}

// SmallString constructs an inline string. The caller must have already
// verified len(s) <= smallStringLen; pkg/heap's interner is responsible for
// routing longer strings to HeapString instead.
func SmallString(s string) Value {
	if s == "" {
		return emptySmallString
	}
	v := Value{tag: TagSmallString}
	for i := range v.small {
		v.small[i] = smallStringSentinel
	}
	copy(v.small[:], s)
	return v
}

func HeapString(index uint32) Value {
	return Value{tag: TagString, payload: uint64(index)}
}

func Symbol(index uint32) Value {
	return Value{tag: TagSymbol, payload: uint64(index)}
}

// MaxInlineStringBytes exposes smallStringLen to pkg/heap's interner.
const MaxInlineStringBytes = smallStringLen

// --- Generic heap-reference constructor -------------------------------

// FromHeapIndex builds a Value for any heap-resident tag from its arena
// index. It exists so pkg/heap can allocate records for every subspace
// through one call site instead of one constructor per tag.
func FromHeapIndex(tag Tag, index uint32) Value {
	return Value{tag: tag, payload: uint64(index)}
}

// --- Accessors ----------------------------------------------------------

func (v Value) Tag() Tag { return v.tag }

func (v Value) IsUndefined() bool     { return v.tag == TagUndefined }
func (v Value) IsNull() bool          { return v.tag == TagNull }
func (v Value) IsNullish() bool       { return v.tag == TagUndefined || v.tag == TagNull }
func (v Value) IsBoolean() bool       { return v.tag == TagBoolean }
func (v Value) IsHole() bool          { return v.tag == TagHole }
func (v Value) IsUninitialized() bool { return v.tag == TagUninitialized }

func (v Value) IsString() bool { return v.tag == TagSmallString || v.tag == TagString }
func (v Value) IsSmallString() bool { return v.tag == TagSmallString }
func (v Value) IsSymbol() bool { return v.tag == TagSymbol }

func (v Value) IsNumber() bool {
	return v.tag == TagInteger || v.tag == TagSmallFloat || v.tag == TagNumber
}
func (v Value) IsInteger() bool   { return v.tag == TagInteger }
func (v Value) IsBigInt() bool    { return v.tag == TagSmallBigInt || v.tag == TagBigInt }

func (v Value) IsFunction() bool {
	switch v.tag {
	case TagBoundFunction, TagBuiltinFunction, TagECMAScriptFunction:
		return true
	}
	return false
}

func (v Value) IsObjectLike() bool {
	switch v.tag {
	case TagObject, TagArray, TagArguments, TagArrayBuffer, TagSharedArrayBuffer, TagDataView,
		TagTypedArray, TagDate, TagError, TagMap, TagSet, TagWeakMap, TagWeakSet, TagWeakRef,
		TagFinalizationRegistry, TagRegExp, TagPromise, TagProxy, TagModule, TagEmbedderObject,
		TagBoundFunction, TagBuiltinFunction, TagECMAScriptFunction, TagGenerator, TagAsyncGenerator,
		TagIterator:
		return true
	}
	return false
}

// HeapIndex returns the arena index backing a heap-resident value. It
// panics if called on an inline tag; callers should guard with the Is*
// predicates first.
func (v Value) HeapIndex() uint32 {
	switch v.tag {
	case TagString, TagSymbol, TagNumber, TagBigInt,
		TagObject, TagArray, TagArguments, TagArrayBuffer, TagSharedArrayBuffer, TagDataView,
		TagTypedArray, TagDate, TagError, TagMap, TagSet, TagWeakMap, TagWeakSet, TagWeakRef,
		TagFinalizationRegistry, TagRegExp, TagPromise, TagProxy, TagModule, TagEmbedderObject,
		TagBoundFunction, TagBuiltinFunction, TagECMAScriptFunction, TagGenerator, TagAsyncGenerator,
		TagIterator:
		return uint32(v.payload)
	default:
		panic("value: HeapIndex called on an inline tag " + v.tag.String())
	}
}

// AsInteger returns the inline 56-bit (well, int64-carried) integer.
func (v Value) AsInteger() int64 {
	if v.tag != TagInteger {
		panic("value: AsInteger called on non-integer")
	}
	return int64(v.payload)
}

// AsSmallFloat returns the inline float64 bits for TagSmallFloat.
func (v Value) AsSmallFloat() float64 {
	if v.tag != TagSmallFloat {
		panic("value: AsSmallFloat called on non-small-float")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsBoolean() bool {
	if v.tag != TagBoolean {
		panic("value: AsBoolean called on non-boolean")
	}
	return v.payload == 1
}

// AsSmallString decodes an inline small string by scanning for the first
// sentinel byte.
func (v Value) AsSmallString() string {
	if v.tag != TagSmallString {
		panic("value: AsSmallString called on non-small-string")
	}
	n := 0
	for n < smallStringLen && v.small[n] != smallStringSentinel {
		n++
	}
	return string(v.small[:n])
}

// AsSmallBigInt returns the inline bigint payload for TagSmallBigInt.
func (v Value) AsSmallBigInt() int64 {
	if v.tag != TagSmallBigInt {
		panic("value: AsSmallBigInt called on non-small-bigint")
	}
	return int64(v.payload)
}

// FloatBitsFor re-derives the IEEE-754 bit pattern pkg/heap should store
// for a float that FromFloat64 reported as needing a heap slot (ok==false).
// Kept here, rather than recomputed by the caller, so the only place that
// knows how float64 bits are produced is this package.
func FloatBitsFor(f float64) uint64 { return math.Float64bits(f) }
