package value

import (
	"strconv"
	"strings"
)

// trimSpace trims the WhiteSpace/LineTerminator set ToNumber(string) uses.
// strings.TrimSpace is a close enough approximation of the ECMAScript
// whitespace production for engine-internal coercion purposes.
func trimSpace(s string) string { return strings.TrimSpace(s) }

// parseFloatLoose parses a decimal or 0x/0o/0b-prefixed numeric string the
// way ToNumber does, without the full grammar (exponents with explicit
// '+' are handled by ParseFloat already).
func parseFloatLoose(s string) (float64, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") ||
		strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O") ||
		strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") {
		i, err := strconv.ParseInt(s[2:], radixFor(s), 64)
		if err != nil {
			return 0, false
		}
		return float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func radixFor(s string) int {
	switch s[1] {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	default:
		return 10
	}
}
