package value

import (
	"math"
	"testing"
)

func TestFromFloat64SafeIntegerCanonicalizesToInteger(t *testing.T) {
	cases := []float64{0, 1, -1, 42, float64(safeIntegerMin), float64(safeIntegerMax)}
	for _, f := range cases {
		v, ok := FromFloat64(f)
		if !ok {
			t.Fatalf("FromFloat64(%v) reported needing heap allocation", f)
		}
		if !v.IsInteger() {
			t.Fatalf("FromFloat64(%v) = tag %v, want TagInteger", f, v.Tag())
		}
		if float64(v.AsInteger()) != f {
			t.Fatalf("FromFloat64(%v) round-tripped to %v", f, v.AsInteger())
		}
	}
}

func TestFromFloat64NegativeZeroIsSmallFloat(t *testing.T) {
	v, ok := FromFloat64(math.Copysign(0, -1))
	if !ok {
		t.Fatal("negative zero should resolve inline")
	}
	if !v.IsNumber() || v.IsInteger() {
		t.Fatalf("-0 canonicalized to tag %v, want SmallFloat", v.Tag())
	}
	if !math.Signbit(v.AsSmallFloat()) {
		t.Fatal("-0 lost its sign bit")
	}
}

func TestFromFloat64NaNIsCanonical(t *testing.T) {
	a, _ := FromFloat64(math.NaN())
	b, _ := FromFloat64(math.Sqrt(-1))
	if a.AsSmallFloat() != b.AsSmallFloat() && !(math.IsNaN(a.AsSmallFloat()) && math.IsNaN(b.AsSmallFloat())) {
		t.Fatal("two NaNs produced different payloads")
	}
	if math.Float64bits(a.AsSmallFloat()) != math.Float64bits(b.AsSmallFloat()) {
		t.Fatal("NaN bit patterns are not identical")
	}
}

func TestSmallStringEmptyIsAllSentinelBytes(t *testing.T) {
	v := SmallString("")
	for i, b := range v.small {
		if b != smallStringSentinel {
			t.Fatalf("byte %d of empty small string = %#x, want %#x", i, b, smallStringSentinel)
		}
	}
	if got := v.AsSmallString(); got != "" {
		t.Fatalf("AsSmallString() = %q, want empty", got)
	}
}

func TestSmallStringRoundTrip(t *testing.T) {
	for _, s := range []string{"a", "abc", "abcdefg"} {
		v := SmallString(s)
		if !v.IsSmallString() {
			t.Fatalf("SmallString(%q) did not report IsSmallString", s)
		}
		if got := v.AsSmallString(); got != s {
			t.Fatalf("AsSmallString() = %q, want %q", got, s)
		}
	}
}

type fakeHeap struct {
	numbers []float64
	strings []string
}

func (h *fakeHeap) NumberAt(i uint32) float64 { return h.numbers[i] }
func (h *fakeHeap) StringAt(i uint32) string  { return h.strings[i] }
func (h *fakeHeap) BigIntAt(i uint32) BigIntLike { panic("unused in this test") }

func TestStrictEqualsAcrossIntegerAndBoxedNumberTags(t *testing.T) {
	h := &fakeHeap{numbers: []float64{5}}
	i := Integer(5)
	boxed := HeapNumber(0)
	if !StrictEquals(i, boxed, h, h, h) {
		t.Fatal("Integer(5) === boxed Number(5) should hold despite differing tags")
	}
	other := HeapNumber(0)
	h.numbers[0] = 6
	if StrictEquals(i, other, h, h, h) {
		t.Fatal("Integer(5) should not === boxed Number(6)")
	}
}
