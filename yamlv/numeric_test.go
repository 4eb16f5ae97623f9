package yamlv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber_Integers(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		form NumberForm
	}{
		{"0", 0, FormZero},
		{"-0", 0, FormZero},
		{"42", 42, FormDecimal},
		{"+42", 42, FormDecimal},
		{"-42", -42, FormDecimal},
		{"1_000", 1000, FormDecimal},
		{"1,000,000", 1000000, FormDecimal},
		{"  7\t", 7, FormDecimal},
		{"0x1A", 26, FormHex},
		{"0xff", 255, FormHex},
		{"-0x10", -16, FormHex},
		{"0x_00", 0, FormZero},
		{"017", 15, FormOctal},
		{"0_17", 15, FormOctal},
		{"-017", -15, FormOctal},
		{"0b101", 5, FormBinary},
		{"0b1_0_1", 5, FormBinary},
		{"-0b101", -5, FormBinary},
		{"0b000", 0, FormZero},
		{"1:20:30", 4830, FormSexagesimal},
		{"-1:20:30", -4830, FormSexagesimal},
		{"190:20:30", 685230, FormSexagesimal},
		{"1:2:30", 3750, FormSexagesimal},
		{":20:30", 1230, FormSexagesimal},
		{"9223372036854775807", math.MaxInt64, FormDecimal},
		{"99999999999999999999", math.MaxInt64, FormDecimal},
		{"-99999999999999999999", math.MinInt64, FormDecimal},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := ParseNumber(tt.in)
			require.True(t, ok)
			assert.False(t, n.IsFloat)
			assert.Equal(t, tt.want, n.Int)
			assert.Equal(t, tt.form, n.Form)
		})
	}
}

func TestParseNumber_Floats(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		form NumberForm
	}{
		{"1.5", 1.5, FormDecimal},
		{"-1.5", -1.5, FormDecimal},
		{"1_000.25", 1000.25, FormDecimal},
		{"1,000.5", 1000.5, FormDecimal},
		{".5", 0.5, FormDecimal},
		{"0.", 0, FormDecimal},
		{"1.", 1, FormDecimal},
		{".", 0, FormDecimal},
		{"6.8523015e+5", 685230.15, FormDecimal},
		{"1.0e-07", 1e-7, FormDecimal},
		{"1.5E+03", 1500, FormDecimal},
		{"-1:20:30.5", -4830.5, FormSexagesimal},
		{"1:20:30.", 4830, FormSexagesimal},
		{"1:20:30.500", 4830.5, FormSexagesimal},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := ParseNumber(tt.in)
			require.True(t, ok)
			assert.True(t, n.IsFloat)
			assert.InDelta(t, tt.want, n.Float, 1e-9)
			assert.Equal(t, tt.form, n.Form)
		})
	}
}

func TestParseNumber_Special(t *testing.T) {
	for _, in := range []string{".inf", ".Inf", ".INF", "+.inf"} {
		n, ok := ParseNumber(in)
		require.True(t, ok, in)
		assert.True(t, math.IsInf(n.Float, 1), in)
		assert.Equal(t, FormInfinity, n.Form)
	}

	n, ok := ParseNumber("-.inf")
	require.True(t, ok)
	assert.True(t, math.IsInf(n.Float, -1))

	for _, in := range []string{".nan", ".NaN", ".NAN"} {
		n, ok := ParseNumber(in)
		require.True(t, ok, in)
		assert.True(t, math.IsNaN(n.Float), in)
		assert.Equal(t, FormNaN, n.Form)
	}
}

func TestParseNumber_NotNumeric(t *testing.T) {
	for _, in := range []string{
		"", " ", "+", "-", "abc",
		"0b", "0x", "0b102", "0xZZ", "08", "09",
		".INFINITY", ".infinity", ".nAn", "-.nan",
		"1e5", "1.5e5", "1.5e+", "1.5e+0", "1.5e+1_0",
		"1:2", "1:60:00", "1:20:3", "1:x0",
		"12abc", "1.2.3", "1 000",
	} {
		t.Run(in, func(t *testing.T) {
			_, ok := ParseNumber(in)
			assert.False(t, ok)
		})
	}
}

func TestLenientConversion(t *testing.T) {
	assert.Equal(t, int64(12), LenientInt("12abc"))
	assert.Equal(t, int64(-3), LenientInt("  -3.9"))
	assert.Equal(t, int64(0), LenientInt("abc"))
	assert.Equal(t, int64(0), LenientInt(""))

	assert.Equal(t, 2.5, LenientFloat("2.5 apples"))
	assert.Equal(t, 1500.0, LenientFloat("1.5e3x"))
	assert.Equal(t, 7.0, LenientFloat("7e"))
	assert.Equal(t, 0.0, LenientFloat("."))
	assert.Equal(t, 0.0, LenientFloat("pi"))
}

func TestTruncateFloat(t *testing.T) {
	assert.Equal(t, int64(3), truncateFloat(3.99))
	assert.Equal(t, int64(-3), truncateFloat(-3.99))
	assert.Equal(t, int64(0), truncateFloat(math.NaN()))
	assert.Equal(t, int64(math.MaxInt64), truncateFloat(math.Inf(1)))
	assert.Equal(t, int64(math.MinInt64), truncateFloat(math.Inf(-1)))
}
