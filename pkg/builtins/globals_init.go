package builtins

import (
	"math"
	"strconv"
	"strings"

	"ecmacore/pkg/object"
	"ecmacore/pkg/value"
	"ecmacore/pkg/vm"
)

// GlobalsInitializer defines the free-standing global bindings 19.1-19.4
// prescribe outside any namespace object: NaN, Infinity, undefined,
// parseInt, parseFloat, isNaN, isFinite. Grounded on the teacher's
// globals_init.go, which defines this identical set the identical way.
type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string  { return "Globals" }
func (g *GlobalsInitializer) Priority() int { return PriorityGlobals }

func (g *GlobalsInitializer) Init(ctx *Context) error {
	h := ctx.Heap

	ctx.Global("NaN", h.NewNumber(math.NaN()))
	ctx.Global("Infinity", h.NewNumber(math.Inf(1)))
	ctx.Global("undefined", value.Undefined)

	ctx.Method(ctx.Realm.GlobalObject, "parseInt", 2, globalParseInt)
	ctx.Method(ctx.Realm.GlobalObject, "parseFloat", 1, globalParseFloat)
	ctx.Method(ctx.Realm.GlobalObject, "isNaN", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		f, thrown := vmm.ToNumber(vmArg(args, 0))
		if thrown != nil {
			return value.Undefined, thrown
		}
		return value.Boolean(math.IsNaN(f)), nil
	})
	ctx.Method(ctx.Realm.GlobalObject, "isFinite", 1, func(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
		f, thrown := vmm.ToNumber(vmArg(args, 0))
		if thrown != nil {
			return value.Undefined, thrown
		}
		return value.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})

	return nil
}

// globalParseInt implements 19.2.5's StringToBigInt-adjacent ToInt32
// parse: trim whitespace, take an optional sign, sniff a 0x/0X prefix
// for radix 16 when radix is 0/unspecified, then consume the longest
// valid-digit prefix for the resolved radix.
func globalParseInt(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := vmm.ToDisplayString(vmArg(args, 0))
	if thrown != nil {
		return value.Undefined, thrown
	}
	s = strings.TrimSpace(s)

	radix := 0
	if len(args) > 1 && !args[1].IsUndefined() {
		f, thrown := vmm.ToNumber(args[1])
		if thrown != nil {
			return value.Undefined, thrown
		}
		radix = int(f)
	}

	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	if radix == 0 {
		if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			radix = 16
			s = s[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}

	if radix < 2 || radix > 36 {
		return vmm.Heap.NewNumber(math.NaN()), nil
	}

	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return vmm.Heap.NewNumber(math.NaN()), nil
	}

	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		// overflow past int64: fall back to float accumulation.
		f := 0.0
		for i := 0; i < end; i++ {
			f = f*float64(radix) + float64(digitValue(s[i]))
		}
		if neg {
			f = -f
		}
		return vmm.Heap.NewNumber(f), nil
	}
	if neg {
		n = -n
	}
	return vmm.Heap.NewNumber(float64(n)), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 99
	}
}

// globalParseFloat implements 19.2.4: the longest prefix of the
// (whitespace-trimmed) string that forms a valid decimal literal,
// including Infinity/-Infinity, parses via strconv; anything else is NaN.
func globalParseFloat(vmm *vm.VM, _ value.Value, args []value.Value, _ value.Value) (value.Value, *object.Throw) {
	s, thrown := vmm.ToDisplayString(vmArg(args, 0))
	if thrown != nil {
		return value.Undefined, thrown
	}
	s = strings.TrimSpace(s)

	neg := false
	rest := s
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		neg = rest[0] == '-'
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "Infinity") {
		if neg {
			return vmm.Heap.NewNumber(math.Inf(-1)), nil
		}
		return vmm.Heap.NewNumber(math.Inf(1)), nil
	}

	end, validEnd := 0, 0
	seenDigit, seenDot, seenExp := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
			validEnd = end + 1
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
			if end+1 < len(s) && (s[end+1] == '+' || s[end+1] == '-') {
				end++
			}
		case (c == '+' || c == '-') && end == 0:
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return vmm.Heap.NewNumber(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(s[:validEnd], 64)
	if err != nil && err.(*strconv.NumError).Err != strconv.ErrRange {
		return vmm.Heap.NewNumber(math.NaN()), nil
	}
	return vmm.Heap.NewNumber(f), nil
}
