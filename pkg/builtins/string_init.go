package builtins

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"ecmacore/pkg/heap"
	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// StringInitializer builds %String.prototype% and the String
// constructor, grounded on the teacher's string_init.go. Indices are
// UTF-16 code-unit indices per 6.1.4, obtained by round-tripping
// through unicode/utf16 the way the teacher's own rune<->UTF-16 helpers
// in pkg/vm/string do (this repo's heap strings are plain Go strings,
// not UTF-16 buffers, so every index-sensitive method pays that
// conversion rather than storing UTF-16 natively).
type StringInitializer struct{}

func (s *StringInitializer) Name() string  { return "String" }
func (s *StringInitializer) Priority() int { return PriorityString }

func (s *StringInitializer) Init(ctx *Context) error {
	h := ctx.Heap
	vv := ctx.VM

	proto := h.NewOrdinaryObject(heap.RootShape(vv.ObjectPrototype), vv.ObjectPrototype)
	vv.StringPrototype = proto
	ctx.Intrinsic("String.prototype", proto)

	ctx.Method(proto, "toString", 0, stringThis)
	ctx.Method(proto, "valueOf", 0, stringThis)
	ctx.Method(proto, "charAt", 1, strCharAt)
	ctx.Method(proto, "charCodeAt", 1, strCharCodeAt)
	ctx.Method(proto, "indexOf", 1, strIndexOf)
	ctx.Method(proto, "lastIndexOf", 1, strLastIndexOf)
	ctx.Method(proto, "includes", 1, strIncludes)
	ctx.Method(proto, "startsWith", 1, strStartsWith)
	ctx.Method(proto, "endsWith", 1, strEndsWith)
	ctx.Method(proto, "slice", 2, strSlice)
	ctx.Method(proto, "substring", 2, strSubstring)
	ctx.Method(proto, "split", 2, strSplit)
	ctx.Method(proto, "toUpperCase", 0, strToUpper)
	ctx.Method(proto, "toLowerCase", 0, strToLower)
	ctx.Method(proto, "trim", 0, strTrim)
	ctx.Method(proto, "trimStart", 0, strTrimStart)
	ctx.Method(proto, "trimEnd", 0, strTrimEnd)
	ctx.Method(proto, "repeat", 1, strRepeat)
	ctx.Method(proto, "padStart", 2, strPadStart)
	ctx.Method(proto, "padEnd", 2, strPadEnd)
	ctx.Method(proto, "concat", 1, strConcat)
	ctx.Method(proto, "replace", 2, strReplace)
	ctx.Method(proto, "replaceAll", 2, strReplaceAll)
	ctx.Method(proto, "at", 1, strAt)
	ctx.Method(proto, "normalize", 1, strNormalize)

	ctor := ctx.Constructor("String", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		if len(args) == 0 {
			return vmm.Heap.NewString(""), nil
		}
		s, thrown := vmm.ToDisplayString(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		return vmm.Heap.NewString(s), nil
	})
	object.For(ctor).DefineOwnProperty(h, heap.StringKey("prototype"), object.Descriptor{HasValue: true, Value: proto})
	object.For(proto).DefineOwnProperty(h, heap.StringKey("constructor"), object.Descriptor{
		HasValue: true, Value: ctor, HasWritable: true, Writable: true, HasConfigurable: true, Configurable: true,
	})
	ctx.Intrinsic("String", ctor)
	ctx.Method(ctor, "fromCharCode", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		units := make([]uint16, len(args))
		for i, a := range args {
			n, thrown := vmm.ToUint32(a)
			if thrown != nil {
				return value.Undefined, thrown
			}
			units[i] = uint16(n)
		}
		return vmm.Heap.NewString(string(utf16.Decode(units))), nil
	})

	return nil
}

func thisString(vmm *vm.VM, this value.Value) (string, *object.Throw) {
	if this.IsString() {
		return vmm.Heap.GoString(this), nil
	}
	return vmm.ToDisplayString(this)
}

func stringThis(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewString(s), nil
}

func argString(vmm *vm.VM, args []value.Value, i int) (string, *object.Throw) {
	return vmm.ToDisplayString(vmArg(args, i))
}

func strCharAt(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	units := utf16.Encode([]rune(s))
	n, thrown := vmm.ToNumber(vmArg(args, 0))
	if thrown != nil {
		return value.Undefined, thrown
	}
	i := int(n)
	if i < 0 || i >= len(units) {
		return vmm.Heap.NewString(""), nil
	}
	return vmm.Heap.NewString(string(utf16.Decode(units[i : i+1]))), nil
}

func strAt(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	units := utf16.Encode([]rune(s))
	n, thrown := vmm.ToNumber(vmArg(args, 0))
	if thrown != nil {
		return value.Undefined, thrown
	}
	i := int(n)
	if i < 0 {
		i += len(units)
	}
	if i < 0 || i >= len(units) {
		return value.Undefined, nil
	}
	return vmm.Heap.NewString(string(utf16.Decode(units[i : i+1]))), nil
}

func strCharCodeAt(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	units := utf16.Encode([]rune(s))
	n, thrown := vmm.ToNumber(vmArg(args, 0))
	if thrown != nil {
		return value.Undefined, thrown
	}
	i := int(n)
	if i < 0 || i >= len(units) {
		return vmm.Heap.NewNumber(math.NaN()), nil
	}
	return vmm.Heap.NewNumber(float64(units[i])), nil
}

func strIndexOf(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	sub, thrown := argString(vmm, args, 0)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewNumber(float64(utf16Index(s, strings.Index(s, sub)))), nil
}

func strLastIndexOf(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	sub, thrown := argString(vmm, args, 0)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewNumber(float64(utf16Index(s, strings.LastIndex(s, sub)))), nil
}

// utf16Index converts a byte offset (as strings.Index returns) to a
// UTF-16 code-unit offset, or -1 unchanged when byteOffset is -1.
func utf16Index(s string, byteOffset int) int {
	if byteOffset < 0 {
		return -1
	}
	return len(utf16.Encode([]rune(s[:byteOffset])))
}

func strIncludes(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	sub, thrown := argString(vmm, args, 0)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return value.Boolean(strings.Contains(s, sub)), nil
}

func strStartsWith(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	sub, thrown := argString(vmm, args, 0)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return value.Boolean(strings.HasPrefix(s, sub)), nil
}

func strEndsWith(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	sub, thrown := argString(vmm, args, 0)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return value.Boolean(strings.HasSuffix(s, sub)), nil
}

func sliceUnits(vmm *vm.VM, this value.Value) ([]uint16, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return nil, thrown
	}
	return utf16.Encode([]rune(s)), nil
}

func strSlice(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	units, thrown := sliceUnits(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	length := len(units)
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
	return vmm.Heap.NewString(string(utf16.Decode(units[start:end]))), nil
}

func strSubstring(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	units, thrown := sliceUnits(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	length := len(units)
	clamp := func(n float64) int {
		if n < 0 {
			return 0
		}
		if int(n) > length {
			return length
		}
		return int(n)
	}
	start, end := 0, length
	if len(args) > 0 && !args[0].IsUndefined() {
		n, thrown := vmm.ToNumber(args[0])
		if thrown != nil {
			return value.Undefined, thrown
		}
		start = clamp(n)
	}
	if len(args) > 1 && !args[1].IsUndefined() {
		n, thrown := vmm.ToNumber(args[1])
		if thrown != nil {
			return value.Undefined, thrown
		}
		end = clamp(n)
	}
	if start > end {
		start, end = end, start
	}
	return vmm.Heap.NewString(string(utf16.Decode(units[start:end]))), nil
}

func strSplit(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	sepArg := vmArg(args, 0)
	if sepArg.IsUndefined() {
		return newArrayFrom(vmm, []value.Value{vmm.Heap.NewString(s)}), nil
	}
	sep, thrown := argString(vmm, args, 0)
	if thrown != nil {
		return value.Undefined, thrown
	}
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = vmm.Heap.NewString(p)
	}
	return newArrayFrom(vmm, elems), nil
}

func strToUpper(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewString(strings.ToUpper(s)), nil
}

func strToLower(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewString(strings.ToLower(s)), nil
}

func strTrim(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewString(strings.TrimSpace(s)), nil
}

func strTrimStart(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewString(strings.TrimLeft(s, " \t\n\r\v\f")), nil
}

func strTrimEnd(vmm *vm.VM, this value.Value, _ []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewString(strings.TrimRight(s, " \t\n\r\v\f")), nil
}

func strRepeat(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	n, thrown := vmm.ToNumber(vmArg(args, 0))
	if thrown != nil {
		return value.Undefined, thrown
	}
	if n < 0 {
		return value.Undefined, vmm.Throw(vmm.RangeError("Invalid count value: " + strconv.FormatFloat(n, 'g', -1, 64)))
	}
	return vmm.Heap.NewString(strings.Repeat(s, int(n))), nil
}

func strPadStart(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	return strPad(vmm, this, args, true)
}
func strPadEnd(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	return strPad(vmm, this, args, false)
}

func strPad(vmm *vm.VM, this value.Value, args []value.Value, start bool) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	targetLen, thrown := vmm.ToNumber(vmArg(args, 0))
	if thrown != nil {
		return value.Undefined, thrown
	}
	pad := " "
	if len(args) > 1 && !args[1].IsUndefined() {
		pad, thrown = argString(vmm, args, 1)
		if thrown != nil {
			return value.Undefined, thrown
		}
	}
	units := utf16.Encode([]rune(s))
	want := int(targetLen)
	if want <= len(units) || pad == "" {
		return vmm.Heap.NewString(s), nil
	}
	padUnits := utf16.Encode([]rune(pad))
	need := want - len(units)
	var fill []uint16
	for len(fill) < need {
		fill = append(fill, padUnits...)
	}
	fill = fill[:need]
	if start {
		return vmm.Heap.NewString(string(utf16.Decode(fill)) + s), nil
	}
	return vmm.Heap.NewString(s + string(utf16.Decode(fill))), nil
}

func strConcat(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	var b strings.Builder
	b.WriteString(s)
	for _, a := range args {
		piece, thrown := vmm.ToDisplayString(a)
		if thrown != nil {
			return value.Undefined, thrown
		}
		b.WriteString(piece)
	}
	return vmm.Heap.NewString(b.String()), nil
}

// strNormalize implements 22.1.3.13: the form name defaults to "NFC"
// and an unrecognized name throws a RangeError per the spec's explicit
// "If f is not one of NFC, NFD, NFKC, NFKD, throw a RangeError".
func strNormalize(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	form := "NFC"
	if len(args) > 0 && !args[0].IsUndefined() {
		form, thrown = argString(vmm, args, 0)
		if thrown != nil {
			return value.Undefined, thrown
		}
	}
	var f norm.Form
	switch form {
	case "NFC":
		f = norm.NFC
	case "NFD":
		f = norm.NFD
	case "NFKC":
		f = norm.NFKC
	case "NFKD":
		f = norm.NFKD
	default:
		return value.Undefined, vmm.Throw(vmm.RangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD."))
	}
	return vmm.Heap.NewString(f.String(s)), nil
}

func strReplace(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	return strReplaceImpl(vmm, this, args, false)
}
func strReplaceAll(vmm *vm.VM, this value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	return strReplaceImpl(vmm, this, args, true)
}

func strReplaceImpl(vmm *vm.VM, this value.Value, args []value.Value, all bool) (value.Value, *object.Throw) {
	s, thrown := thisString(vmm, this)
	if thrown != nil {
		return value.Undefined, thrown
	}
	pattern := vmArg(args, 0)
	if pattern.Tag() == value.TagObject {
		if re, ok := regexpOf(vmm, pattern); ok {
			return regexpReplace(vmm, re, s, vmArg(args, 1), all || re.global)
		}
	}
	search, thrown := argString(vmm, args, 0)
	if thrown != nil {
		return value.Undefined, thrown
	}
	replacement := vmArg(args, 1)
	replaceOne := func(match string) (string, *object.Throw) {
		if replacement.IsFunction() {
			r, thrown := vmm.Call(replacement, value.Undefined, []value.Value{vmm.Heap.NewString(match)})
			if thrown != nil {
				return "", thrown
			}
			return vmm.ToDisplayString(r)
		}
		return vmm.ToDisplayString(replacement)
	}
	if all {
		if search == "" {
			return vmm.Heap.NewString(s), nil
		}
		var b strings.Builder
		rest := s
		for {
			idx := strings.Index(rest, search)
			if idx < 0 {
				b.WriteString(rest)
				break
			}
			b.WriteString(rest[:idx])
			r, thrown := replaceOne(search)
			if thrown != nil {
				return value.Undefined, thrown
			}
			b.WriteString(r)
			rest = rest[idx+len(search):]
		}
		return vmm.Heap.NewString(b.String()), nil
	}
	idx := strings.Index(s, search)
	if idx < 0 {
		return vmm.Heap.NewString(s), nil
	}
	r, thrown := replaceOne(search)
	if thrown != nil {
		return value.Undefined, thrown
	}
	return vmm.Heap.NewString(s[:idx] + r + s[idx+len(search):]), nil
}
