package yamlv

import (
	"math"
	"strconv"
	"strings"
)

// NumberForm records which numeric syntax matched.
type NumberForm uint8

const (
	FormNone NumberForm = iota
	FormZero
	FormDecimal
	FormBinary
	FormOctal
	FormHex
	FormSexagesimal
	FormInfinity
	FormNaN
)

func (f NumberForm) String() string {
	switch f {
	case FormZero:
		return "zero"
	case FormDecimal:
		return "decimal"
	case FormBinary:
		return "binary"
	case FormOctal:
		return "octal"
	case FormHex:
		return "hex"
	case FormSexagesimal:
		return "sexagesimal"
	case FormInfinity:
		return "infinity"
	case FormNaN:
		return "nan"
	default:
		return "none"
	}
}

// Number is the result of ParseNumber.
type Number struct {
	IsFloat bool
	Int     int64
	Float   float64
	Form    NumberForm
}

// ParseNumber scans text with the numeric grammar: .nan, signed .inf, 0b binary,
// 0x hex, 0-prefixed octal, decimal (with '_' and ',' separators), sexagesimal
// (1:20:30) and decimal floats with an optional signed exponent. Surrounding
// spaces and tabs are ignored. Integers that overflow saturate.
func ParseNumber(text string) (Number, bool) {
	s := strings.Trim(text, " \t")
	if s == "" {
		return Number{}, false
	}
	switch s {
	case ".nan", ".NaN", ".NAN":
		return Number{IsFloat: true, Float: math.NaN(), Form: FormNaN}, true
	}

	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	if s == "" {
		return Number{}, false
	}

	switch s {
	case ".inf", ".Inf", ".INF":
		f := math.Inf(1)
		if neg {
			f = math.Inf(-1)
		}
		return Number{IsFloat: true, Float: f, Form: FormInfinity}, true
	}

	switch c := s[0]; {
	case c == '0':
		return scanZeroPrefixed(s, neg)
	case c >= '1' && c <= '9':
		return scanDecimal(s, neg)
	case c == ':':
		return scanSexagesimal("", s, neg)
	case c == '.':
		return scanFloat("0", s, neg)
	}
	return Number{}, false
}

func zero() (Number, bool) {
	return Number{Form: FormZero}, true
}

func scanZeroPrefixed(s string, neg bool) (Number, bool) {
	if len(s) == 1 {
		return zero()
	}
	switch c := s[1]; {
	case c == 'b':
		return scanRadix(s[2:], 2, FormBinary, neg)
	case c == 'x':
		return scanRadix(s[2:], 16, FormHex, neg)
	case c == '_' || isOctalDigit(c):
		digits, ok := collectDigits(s[1:], isOctalDigit)
		if !ok {
			return Number{}, false
		}
		return Number{Int: parseSaturating(digits, 8, neg), Form: FormOctal}, true
	case c == '.':
		return scanFloat("0", s[1:], neg)
	}
	return Number{}, false
}

// scanRadix handles the digits after a 0b or 0x prefix. A prefix followed only
// by zeros and underscores is zero; a bare prefix is not a number.
func scanRadix(s string, base int, form NumberForm, neg bool) (Number, bool) {
	if s == "" {
		return Number{}, false
	}
	s = strings.TrimLeft(s, "_0")
	if s == "" {
		return zero()
	}
	valid := isBinaryDigit
	if base == 16 {
		valid = isHexDigit
	}
	digits, ok := collectDigits(s, valid)
	if !ok {
		return Number{}, false
	}
	return Number{Int: parseSaturating(digits, base, neg), Form: form}, true
}

func scanDecimal(s string, neg bool) (Number, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '_' || c == ',':
		case isDecimalDigit(c):
			b.WriteByte(c)
		case c == ':':
			return scanSexagesimal(b.String(), s[i:], neg)
		case c == '.':
			return scanFloat(b.String(), s[i:], neg)
		default:
			return Number{}, false
		}
	}
	return Number{Int: parseSaturating(b.String(), 10, neg), Form: FormDecimal}, true
}

// scanSexagesimal parses ":MM:SS..." following an optional leading component.
// Inner components are two digits in 00-59, except that a single digit is
// accepted when another ':' follows it. A '.' switches to a float whose
// fraction belongs to the last component.
func scanSexagesimal(lead, rest string, neg bool) (Number, bool) {
	var parts []string
	if lead != "" {
		parts = append(parts, lead)
	}
	n := len(rest)
	i := 0
	for i < n-2 {
		if rest[i] == '.' {
			return sexagesimalFloat(parts, rest[i:], neg)
		}
		if rest[i] != ':' {
			return Number{}, false
		}
		i++
		if rest[i+1] == ':' {
			if !isDecimalDigit(rest[i]) {
				return Number{}, false
			}
			parts = append(parts, rest[i:i+1])
			i++
			continue
		}
		if rest[i] < '0' || rest[i] > '5' || !isDecimalDigit(rest[i+1]) {
			return Number{}, false
		}
		parts = append(parts, rest[i:i+2])
		i += 2
	}
	switch {
	case i < n && rest[i] == '.':
		return sexagesimalFloat(parts, rest[i:], neg)
	case i == n && len(parts) > 0:
		return Number{Int: foldSexagesimal(parts, neg), Form: FormSexagesimal}, true
	}
	return Number{}, false
}

func sexagesimalFloat(parts []string, frac string, neg bool) (Number, bool) {
	if len(parts) == 0 {
		return Number{}, false
	}
	frac = strings.TrimRight(frac[1:], "_0")
	digits, ok := collectDigits(frac, isDecimalDigit)
	if !ok {
		return Number{}, false
	}
	var f float64
	for _, p := range parts {
		d, _ := strconv.ParseFloat(p, 64)
		f = f*60 + d
	}
	if digits != "" {
		d, _ := strconv.ParseFloat("0."+digits, 64)
		f += d
	}
	if neg {
		f = -f
	}
	return Number{IsFloat: true, Float: f, Form: FormSexagesimal}, true
}

func foldSexagesimal(parts []string, neg bool) int64 {
	var v int64
	for _, p := range parts {
		d := parseSaturating(p, 10, false)
		if v > (math.MaxInt64-d)/60 {
			v = math.MaxInt64
			break
		}
		v = v*60 + d
	}
	if neg {
		return -v
	}
	return v
}

// scanFloat parses rest (starting at '.') as the fraction and optional exponent
// of a decimal float whose integer digits are intDigits. The exponent needs an
// explicit sign and may not be a lone "0".
func scanFloat(intDigits, rest string, neg bool) (Number, bool) {
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(intDigits)
	b.WriteByte('.')
	for i := 1; i < len(rest); {
		c := rest[i]
		switch {
		case c == '_':
			i++
		case isDecimalDigit(c):
			b.WriteByte(c)
			i++
		case c == 'e' || c == 'E':
			i++
			if i == len(rest) || (rest[i] != '+' && rest[i] != '-') {
				return Number{}, false
			}
			b.WriteByte('e')
			b.WriteByte(rest[i])
			i++
			exp := rest[i:]
			if exp == "" || exp == "0" || !isDecimalDigit(exp[0]) {
				return Number{}, false
			}
			if _, ok := collectDigits(exp, isDecimalDigit); !ok || strings.Contains(exp, "_") {
				return Number{}, false
			}
			b.WriteString(exp)
			i = len(rest)
		default:
			return Number{}, false
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil && !isRangeErr(err) {
		return Number{}, false
	}
	return Number{IsFloat: true, Float: f, Form: FormDecimal}, true
}

// LenientInt converts the longest leading decimal integer of text, after
// optional whitespace and sign. Text without one converts to 0.
func LenientInt(text string) int64 {
	s := strings.TrimLeft(text, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && isDecimalDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}
	return parseSaturating(s[:end], 10, neg)
}

// LenientFloat converts the longest leading decimal float of text, after
// optional whitespace. Text without one converts to 0.
func LenientFloat(text string) float64 {
	s := strings.TrimLeft(text, " \t\n\r\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	mant := i
	for i < len(s) && isDecimalDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDecimalDigit(s[i]) {
			i++
		}
	}
	if i == mant || (i == mant+1 && s[mant] == '.') {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDecimalDigit(s[j]) {
			for j < len(s) && isDecimalDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil && !isRangeErr(err) {
		return 0
	}
	return f
}

// truncateFloat converts f to an integer, truncating toward zero and saturating.
func truncateFloat(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// parseSaturating parses unsigned digits in base, clamping on overflow.
func parseSaturating(digits string, base int, neg bool) int64 {
	if digits == "" {
		return 0
	}
	if neg {
		digits = "-" + digits
	}
	// on ErrRange ParseInt returns the clamped value
	v, _ := strconv.ParseInt(digits, base, 64)
	return v
}

func collectDigits(s string, valid func(byte) bool) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			continue
		}
		if !valid(c) {
			return "", false
		}
		b.WriteByte(c)
	}
	return b.String(), true
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }
func isOctalDigit(c byte) bool   { return c >= '0' && c <= '7' }
func isBinaryDigit(c byte) bool  { return c == '0' || c == '1' }

func isHexDigit(c byte) bool {
	return isDecimalDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
