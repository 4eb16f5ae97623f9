package yamlv

import (
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	v := Map(
		StrEntry("z", Int(1)),
		StrEntry("a", Seq(Float(1.5), Null(), Bool(true))),
		StrEntry("shaped", Map(Entry(Int(0), Str("x")))),
		Entry(Int(5), Str("int key")),
		StrEntry("raw", Bytes([]byte("hi"))),
		StrEntry("when", Time(time.Date(2001, 12, 14, 21, 59, 43, 0, time.UTC))),
		StrEntry("html", Str("<a&b>")),
		StrEntry("empty", Map()),
	)

	out, err := ToJSON(v, JSONOptions{})
	require.NoError(t, err)
	assert.Equal(t,
		`{"z":1,"a":[1.5,null,true],"shaped":["x"],"5":"int key","raw":"aGk=",`+
			`"when":"2001-12-14T21:59:43Z","html":"<a&b>","empty":{}}`,
		string(out))
}

func TestToJSON_Indent(t *testing.T) {
	out, err := ToJSON(Map(StrEntry("a", Seq(Int(1), Int(2))), StrEntry("b", Seq())), JSONOptions{Indent: true})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": []\n}", string(out))
}

func TestToJSON_Errors(t *testing.T) {
	_, err := ToJSON(Seq(Float(math.NaN())), JSONOptions{})
	require.ErrorIs(t, err, ErrUnsupportedValueKind)

	_, err = ToJSON(Opaque(make(chan int)), JSONOptions{Stringify: StringerCoercion})
	require.ErrorIs(t, err, ErrUnsupportedValueKind)

	out, err := ToJSON(Opaque(net.IPv4(127, 0, 0, 1)), JSONOptions{Stringify: StringerCoercion})
	require.NoError(t, err)
	assert.Equal(t, `"127.0.0.1"`, string(out))

	self := Map()
	self.SetStr("self", self)
	_, err = ToJSON(self, JSONOptions{})
	require.ErrorIs(t, err, ErrCyclicValue)
}

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(` {"b": [1, 2.5, 1e400, -0], "a": {"x": null, "y": false}, "b2": "s", "a": true} `))
	require.NoError(t, err)
	assert.True(t, Equal(Map(
		StrEntry("b", Seq(Int(1), Float(2.5), Float(math.Inf(1)), Int(0))),
		StrEntry("a", Bool(true)),
		StrEntry("b2", Str("s")),
	), v), KeyString(v))

	v, err = FromJSON([]byte("42"))
	require.NoError(t, err)
	assert.True(t, Equal(Int(42), v))

	v, err = FromJSON([]byte("18446744073709551616"))
	require.NoError(t, err)
	assert.True(t, Equal(Float(18446744073709551616), v))
}

func TestFromJSON_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "[1,", `{"a":`, "42 x", "{} {}", "-", "tru", "[1 2]"} {
		_, err := FromJSON([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v := Map(
		StrEntry("name", Str("demo")),
		StrEntry("ports", Seq(Int(80), Int(443))),
		StrEntry("ratio", Float(0.25)),
		StrEntry("meta", Map(StrEntry("owner", Null()), StrEntry("live", Bool(false)))),
	)
	out, err := ToJSON(v, JSONOptions{Indent: true})
	require.NoError(t, err)
	back, err := FromJSON(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}
