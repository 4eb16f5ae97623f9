package yamlv

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Accessors(t *testing.T) {
	b, err := Bool(true).AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	i, err := Int(-7).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(-7), i)

	s, err := Str("x").AsStr()
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	tm, err := Time(when).AsTime()
	require.NoError(t, err)
	assert.Equal(t, when, tm)

	_, err = Str("x").AsInt()
	assert.EqualError(t, err, "yamlv: expected int, got str")

	var nilValue *Value
	assert.True(t, nilValue.IsNull())
	assert.Equal(t, TypeNull, nilValue.Type())
	assert.Equal(t, 0, nilValue.Len())
	assert.Nil(t, nilValue.Get("a"))
}

func TestValue_Index(t *testing.T) {
	s := Seq(Str("a"), Str("b"))
	item, err := s.Index(1)
	require.NoError(t, err)
	assert.True(t, Equal(Str("b"), item))

	_, err = s.Index(2)
	assert.Error(t, err)
	_, err = Map().Index(0)
	assert.Error(t, err)
}

func TestValue_SetKeepsPosition(t *testing.T) {
	m := Map()
	m.SetStr("a", Int(1))
	m.SetStr("b", Int(2))
	m.SetStr("a", Int(3))

	entries, err := m.AsMap()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, Equal(Str("a"), entries[0].Key))
	assert.True(t, Equal(Int(3), entries[0].Value))
}

func TestValue_KeysAreTyped(t *testing.T) {
	m := Map()
	m.Set(Int(1), Str("int"))
	m.SetStr("1", Str("str"))

	assert.Equal(t, 2, m.Len())
	assert.True(t, Equal(Str("int"), m.Lookup(Int(1))))
	assert.True(t, Equal(Str("str"), m.Get("1")))
}

func TestValue_LargeMapIndex(t *testing.T) {
	m := Map()
	for i := 0; i < 100; i++ {
		m.SetStr(fmt.Sprintf("k%d", i), Int(int64(i)))
		m.Set(Int(int64(i)), Str(fmt.Sprint(i)))
	}
	m.SetStr("k50", Int(-1))

	assert.Equal(t, 200, m.Len())
	assert.True(t, Equal(Int(-1), m.Get("k50")))
	assert.True(t, Equal(Str("99"), m.Lookup(Int(99))))
	assert.Nil(t, m.Get("missing"))
}

func TestValue_Mutators(t *testing.T) {
	assert.Panics(t, func() { Seq().SetStr("a", Null()) })
	assert.Panics(t, func() { Map().Append(Null()) })
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Float(math.NaN()), Float(math.NaN())))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.False(t, Equal(Str("1"), Int(1)))
	assert.True(t, Equal(Bytes([]byte("ab")), Bytes([]byte("ab"))))
	assert.True(t, Equal(Opaque([]int{1}), Opaque([]int{1})))
	assert.False(t, Equal(Seq(Int(1), Int(2)), Seq(Int(2), Int(1))))
	assert.False(t, Equal(
		Map(StrEntry("a", Int(1)), StrEntry("b", Int(2))),
		Map(StrEntry("b", Int(2)), StrEntry("a", Int(1))),
	))

	utc := time.Date(2001, 12, 14, 21, 59, 43, 0, time.UTC)
	assert.True(t, Equal(Time(utc), Time(utc.In(time.FixedZone("", -5*3600)))))
}

func TestEqual_Cycles(t *testing.T) {
	a := Seq(Int(1))
	a.Append(a)
	b := Seq(Int(1))
	b.Append(b)
	assert.True(t, Equal(a, b))

	c := Seq(Int(2))
	c.Append(c)
	assert.False(t, Equal(a, c))
}

func TestKeyString(t *testing.T) {
	self := Seq(Int(1))
	self.Append(self)

	tests := []struct {
		v    *Value
		want string
	}{
		{Null(), ""},
		{Bool(true), "1"},
		{Bool(false), ""},
		{Int(-3), "-3"},
		{Float(1.5), "1.5"},
		{Float(1e21), "1E+21"},
		{Float(1234567), "1.23457E+06"},
		{Float(0.1), "0.1"},
		{Float(math.Inf(-1)), "-INF"},
		{Float(math.NaN()), "NAN"},
		{Str("plain"), "plain"},
		{Seq(Int(1), Str("two")), "[1, two]"},
		{Seq(Str("yes"), Str("a b"), Null()), `["yes", "a b", ~]`},
		{Map(StrEntry("k", Seq(Float(2)))), "{k: [2.0]}"},
		{self, "[1, *]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyString(tt.v))
	}
}
