package yamlv

import (
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// ============================================================
// Go values <-> Value
// ============================================================
//
// FromAny accepts nil, bools, integers, floats, strings, []byte, time.Time,
// slices, arrays, maps and pointers to those. Map entries are sorted by key so
// the result is deterministic. Integer-keyed maps keep Int keys, so
// map[int]any{0: "a", 1: "b"} is written as a sequence. Anything else becomes
// Opaque.

var timeType = reflect.TypeOf(time.Time{})

// FromAny converts a Go value to a Value.
func FromAny(v any) (*Value, error) {
	c := &nativeConverter{open: map[uintptr]bool{}}
	return c.from(reflect.ValueOf(v), 0)
}

type nativeConverter struct {
	open map[uintptr]bool
}

func (c *nativeConverter) from(rv reflect.Value, depth int) (*Value, error) {
	if depth > DefaultMaxDepth {
		return nil, errors.Wrapf(ErrDepthExceeded, "depth %d", depth)
	}
	if !rv.IsValid() {
		return Null(), nil
	}
	if v, ok := rv.Interface().(*Value); ok {
		if v == nil {
			return Null(), nil
		}
		return v, nil
	}
	if rv.Type() == timeType {
		return Time(rv.Interface().(time.Time)), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u)), nil
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.from(rv.Elem(), depth+1)

	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Bytes(b), nil
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Seq(), nil
		}
		items := make([]*Value, rv.Len())
		for i := range items {
			item, err := c.from(rv.Index(i), depth+1)
			if err != nil {
				return nil, errors.WithMessagef(err, "[%d]", i)
			}
			items[i] = item
		}
		return Seq(items...), nil

	case reflect.Map:
		if rv.IsNil() {
			return Map(), nil
		}
		ptr := rv.Pointer()
		if c.open[ptr] {
			return nil, errors.Wrap(ErrCyclicValue, "map contains itself")
		}
		c.open[ptr] = true
		defer delete(c.open, ptr)
		return c.fromMap(rv, depth)
	}
	return Opaque(rv.Interface()), nil
}

func (c *nativeConverter) fromMap(rv reflect.Value, depth int) (*Value, error) {
	type kv struct {
		key  *Value
		sort string
		val  reflect.Value
	}
	entries := make([]kv, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := c.from(iter.Key(), depth+1)
		if err != nil {
			return nil, errors.WithMessage(err, "map key")
		}
		entries = append(entries, kv{key: key, sort: KeyString(key), val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].key, entries[j].key
		if a.Type() == TypeInt && b.Type() == TypeInt {
			return a.intVal < b.intVal
		}
		if a.Type() != b.Type() {
			return a.Type() < b.Type()
		}
		return entries[i].sort < entries[j].sort
	})

	m := Map()
	for _, e := range entries {
		val, err := c.from(e.val, depth+1)
		if err != nil {
			return nil, errors.WithMessagef(err, "[%s]", e.sort)
		}
		m.Set(e.key, val)
	}
	return m, nil
}

// ToAny converts a Value to plain Go values: nil, bool, int64, float64,
// string, []byte, time.Time, []any, map[string]any (all keys strings) or
// map[any]any. List-shaped mappings become []any. Opaque values are returned
// unwrapped.
func ToAny(v *Value) (any, error) {
	return toAny(v, map[*Value]bool{})
}

func toAny(v *Value, open map[*Value]bool) (any, error) {
	switch v.Type() {
	case TypeNull:
		return nil, nil
	case TypeBool:
		return v.boolVal, nil
	case TypeInt:
		return v.intVal, nil
	case TypeFloat:
		return v.floatVal, nil
	case TypeStr:
		return v.strVal, nil
	case TypeBytes:
		return v.bytesVal, nil
	case TypeTime:
		return v.timeVal, nil
	case TypeOpaque:
		return v.opaque, nil
	}

	if open[v] {
		return nil, errors.Wrap(ErrCyclicValue, "collection contains itself")
	}
	open[v] = true
	defer delete(open, v)

	if v.typ == TypeSeq || isListShaped(v) {
		out := make([]any, v.Len())
		for i := range out {
			item := v.itemAt(i)
			x, err := toAny(item, open)
			if err != nil {
				return nil, errors.WithMessagef(err, "[%d]", i)
			}
			out[i] = x
		}
		return out, nil
	}

	allStr := true
	for _, e := range v.mapVal {
		if e.Key.Type() != TypeStr {
			allStr = false
			break
		}
	}
	if allStr {
		out := make(map[string]any, len(v.mapVal))
		for _, e := range v.mapVal {
			x, err := toAny(e.Value, open)
			if err != nil {
				return nil, errors.WithMessagef(err, "[%s]", e.Key.strVal)
			}
			out[e.Key.strVal] = x
		}
		return out, nil
	}
	out := make(map[any]any, len(v.mapVal))
	for _, e := range v.mapVal {
		var k any = KeyString(e.Key)
		if e.Key.Type() == TypeInt {
			k = e.Key.intVal
		}
		x, err := toAny(e.Value, open)
		if err != nil {
			return nil, errors.WithMessagef(err, "[%v]", k)
		}
		out[k] = x
	}
	return out, nil
}

// itemAt returns the i-th item of a sequence or the i-th value of a mapping.
func (v *Value) itemAt(i int) *Value {
	if v.typ == TypeSeq {
		return v.seqVal[i]
	}
	return v.mapVal[i].Value
}
