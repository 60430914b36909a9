package vm

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// NumberFromInt64 returns an Integer when n fits into int32 and a Double otherwise.
func NumberFromInt64(n int64) Value {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return DoubleValue(float64(n))
	}
	return IntegerValue(int32(n))
}

// NumberFromFloat returns an Integer for integral values in int32 range.
// NaN, infinities, negative zero and fractions stay Double.
func NumberFromFloat(f float64) Value {
	if f != f || math.IsInf(f, 0) {
		return DoubleValue(f)
	}
	if f == 0 && math.Signbit(f) {
		return DoubleValue(f)
	}
	if f < math.MinInt32 || f > math.MaxInt32 || f != math.Trunc(f) {
		return DoubleValue(f)
	}
	return IntegerValue(int32(f))
}

// cleanExponentialFormat removes leading zeros from the exponent,
// e.g. "1e-07" -> "1e-7".
func cleanExponentialFormat(s string) string {
	i := strings.IndexAny(s, "eE")
	if i < 0 || i+1 >= len(s) || (s[i+1] != '+' && s[i+1] != '-') {
		return s
	}
	j := i + 2
	for j < len(s)-1 && s[j] == '0' {
		j++
	}
	return s[:i+2] + s[j:]
}

// NumberToString formats f the way script code observes numbers.
func NumberToString(f float64) string {
	switch {
	case f != f:
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // covers -0
	}
	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// decimalLiteral is the StrDecimalLiteral production. Go's ParseFloat accepts
// more than that (underscores, "inf", hex floats), so the text is checked first.
var decimalLiteral = regexp2.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)$`, regexp2.ECMAScript)

func isStrWhiteSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// StringToNumber converts s following the StringNumericLiteral grammar:
// surrounding white space is ignored, the empty string is 0, prefixed
// hex/octal/binary integers are recognized, anything else is NaN.
func StringToNumber(s string) float64 {
	str := strings.TrimFunc(s, isStrWhiteSpace)
	if str == "" {
		return 0
	}
	if len(str) > 2 && str[0] == '0' {
		switch str[1] {
		case 'x', 'X':
			return parseRadix(str[2:], 16)
		case 'o', 'O':
			return parseRadix(str[2:], 8)
		case 'b', 'B':
			return parseRadix(str[2:], 2)
		}
	}
	if ok, err := decimalLiteral.MatchString(str); err != nil || !ok {
		return math.NaN()
	}
	switch str {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// out-of-range input yields ±Inf or 0 together with ErrRange, which is
	// the wanted result
	f, _ := strconv.ParseFloat(str, 64)
	return f
}

// parseRadix accumulates in float64 so long literals round instead of failing.
func parseRadix(digits string, radix int) float64 {
	var f float64
	for _, r := range digits {
		d := -1
		switch {
		case r >= '0' && r <= '9':
			d = int(r - '0')
		case r >= 'a' && r <= 'z':
			d = int(r-'a') + 10
		case r >= 'A' && r <= 'Z':
			d = int(r-'A') + 10
		}
		if d < 0 || d >= radix {
			return math.NaN()
		}
		f = f*float64(radix) + float64(d)
	}
	return f
}
