package yamlv

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// Type represents value types.
type Type uint8

const (
	TypeNull Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeStr
	TypeBytes  // decoded !!binary
	TypeTime   // timestamp resolved as a date object
	TypeSeq
	TypeMap
	TypeOpaque // host value with no YAML representation
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeStr:
		return "str"
	case TypeBytes:
		return "bytes"
	case TypeTime:
		return "time"
	case TypeSeq:
		return "seq"
	case TypeMap:
		return "map"
	case TypeOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// IsCollection reports whether t is a sequence or mapping.
func (t Type) IsCollection() bool {
	return t == TypeSeq || t == TypeMap
}

// Value is a node of a YAML value tree.
//
// Collections are referenced by pointer: an alias resolves to the same *Value as
// its anchor, and a collection may contain itself.
type Value struct {
	typ Type

	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
	bytesVal []byte
	timeVal  time.Time
	opaque   any

	seqVal []*Value
	mapVal []MapEntry

	// position of Str/Int keys in mapVal, built once a mapping grows past
	// indexThreshold entries through Set
	index map[keyID]int
}

// MapEntry is a key/value pair of a mapping. Keys may be any value; the tree
// builder produces Str keys.
type MapEntry struct {
	Key   *Value
	Value *Value
}

type keyID struct {
	typ Type
	s   string
	i   int64
}

const indexThreshold = 16

// ============================================================
// Constructors
// ============================================================

func Null() *Value {
	return &Value{typ: TypeNull}
}

func Bool(v bool) *Value {
	return &Value{typ: TypeBool, boolVal: v}
}

func Int(v int64) *Value {
	return &Value{typ: TypeInt, intVal: v}
}

func Float(v float64) *Value {
	return &Value{typ: TypeFloat, floatVal: v}
}

func Str(v string) *Value {
	return &Value{typ: TypeStr, strVal: v}
}

func Bytes(v []byte) *Value {
	return &Value{typ: TypeBytes, bytesVal: v}
}

func Time(v time.Time) *Value {
	return &Value{typ: TypeTime, timeVal: v}
}

// Opaque wraps a host value. The walker only emits it through a Stringify hook.
func Opaque(v any) *Value {
	return &Value{typ: TypeOpaque, opaque: v}
}

// Seq creates a sequence.
func Seq(items ...*Value) *Value {
	return &Value{typ: TypeSeq, seqVal: items}
}

// Map creates a mapping from entries, kept in the given order. Duplicate keys
// are kept as given; use Set for last-write-wins assignment.
func Map(entries ...MapEntry) *Value {
	return &Value{typ: TypeMap, mapVal: entries}
}

// Entry creates a MapEntry.
func Entry(key, value *Value) MapEntry {
	return MapEntry{Key: key, Value: value}
}

// StrEntry creates a MapEntry with a string key.
func StrEntry(key string, value *Value) MapEntry {
	return MapEntry{Key: Str(key), Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Type returns the value type.
func (v *Value) Type() Type {
	if v == nil {
		return TypeNull
	}
	return v.typ
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.typ == TypeNull
}

func (v *Value) expect(t Type) error {
	if v == nil {
		return fmt.Errorf("yamlv: nil value")
	}
	if v.typ != t {
		return fmt.Errorf("yamlv: expected %s, got %s", t, v.typ)
	}
	return nil
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if err := v.expect(TypeBool); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if err := v.expect(TypeInt); err != nil {
		return 0, err
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if err := v.expect(TypeFloat); err != nil {
		return 0, err
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if err := v.expect(TypeStr); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsBytes returns the decoded binary value.
func (v *Value) AsBytes() ([]byte, error) {
	if err := v.expect(TypeBytes); err != nil {
		return nil, err
	}
	return v.bytesVal, nil
}

// AsTime returns the time value.
func (v *Value) AsTime() (time.Time, error) {
	if err := v.expect(TypeTime); err != nil {
		return time.Time{}, err
	}
	return v.timeVal, nil
}

// AsOpaque returns the wrapped host value.
func (v *Value) AsOpaque() (any, error) {
	if err := v.expect(TypeOpaque); err != nil {
		return nil, err
	}
	return v.opaque, nil
}

// AsSeq returns the sequence items.
func (v *Value) AsSeq() ([]*Value, error) {
	if err := v.expect(TypeSeq); err != nil {
		return nil, err
	}
	return v.seqVal, nil
}

// AsMap returns the mapping entries.
func (v *Value) AsMap() ([]MapEntry, error) {
	if err := v.expect(TypeMap); err != nil {
		return nil, err
	}
	return v.mapVal, nil
}

// Len returns the number of items of a sequence or entries of a mapping.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.typ {
	case TypeSeq:
		return len(v.seqVal)
	case TypeMap:
		return len(v.mapVal)
	default:
		return 0
	}
}

// Get returns the value stored under the string key, or nil.
func (v *Value) Get(key string) *Value {
	return v.Lookup(Str(key))
}

// Lookup returns the value stored under key, or nil.
func (v *Value) Lookup(key *Value) *Value {
	if v == nil || v.typ != TypeMap {
		return nil
	}
	if i := v.find(key); i >= 0 {
		return v.mapVal[i].Value
	}
	return nil
}

// Index returns the i-th item of a sequence.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.typ != TypeSeq {
		return nil, fmt.Errorf("yamlv: not a sequence")
	}
	if i < 0 || i >= len(v.seqVal) {
		return nil, fmt.Errorf("yamlv: index %d out of bounds (len=%d)", i, len(v.seqVal))
	}
	return v.seqVal[i], nil
}

// ============================================================
// Mutators
// ============================================================

// Set assigns val to key. An existing equal key keeps its position and gets the
// new value.
func (v *Value) Set(key, val *Value) {
	if v.typ != TypeMap {
		panic("yamlv: cannot set on non-map")
	}
	if i := v.find(key); i >= 0 {
		v.mapVal[i].Value = val
		return
	}
	v.mapVal = append(v.mapVal, MapEntry{Key: key, Value: val})
	if v.index != nil {
		if id, ok := keyIDOf(key); ok {
			v.index[id] = len(v.mapVal) - 1
		}
	} else if len(v.mapVal) > indexThreshold {
		v.buildIndex()
	}
}

// SetStr assigns val to a string key.
func (v *Value) SetStr(key string, val *Value) {
	v.Set(Str(key), val)
}

// Append adds a value to a sequence.
func (v *Value) Append(val *Value) {
	if v.typ != TypeSeq {
		panic("yamlv: cannot append to non-seq")
	}
	v.seqVal = append(v.seqVal, val)
}

// replace overwrites v in place so that every reference to v observes r.
func (v *Value) replace(r *Value) {
	if v == r {
		return
	}
	*v = *r
	v.index = nil
}

func (v *Value) find(key *Value) int {
	if v.index != nil {
		if id, ok := keyIDOf(key); ok {
			if i, found := v.index[id]; found {
				return i
			}
			return -1
		}
	}
	for i, e := range v.mapVal {
		if keysEqual(e.Key, key) {
			return i
		}
	}
	return -1
}

func (v *Value) buildIndex() {
	v.index = make(map[keyID]int, len(v.mapVal))
	for i, e := range v.mapVal {
		id, ok := keyIDOf(e.Key)
		if !ok {
			// non-scalar keys; stay on linear scans
			v.index = nil
			return
		}
		if _, dup := v.index[id]; !dup {
			v.index[id] = i
		}
	}
}

func keyIDOf(k *Value) (keyID, bool) {
	switch k.Type() {
	case TypeStr:
		return keyID{typ: TypeStr, s: k.strVal}, true
	case TypeInt:
		return keyID{typ: TypeInt, i: k.intVal}, true
	}
	return keyID{}, false
}

// keysEqual compares mapping keys. Str "1" and Int 1 are different keys.
func keysEqual(a, b *Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	if a.Type().IsCollection() {
		return a == b
	}
	return Equal(a, b)
}

// ============================================================
// Equality
// ============================================================

// Equal reports whether a and b are structurally equal. Sequence and mapping
// order is significant. NaN equals NaN. Cycles are compared by shape.
func Equal(a, b *Value) bool {
	return equalValues(a, b, map[[2]*Value]bool{})
}

func equalValues(a, b *Value, seen map[[2]*Value]bool) bool {
	if a == b {
		return true
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case TypeNull:
		return true
	case TypeBool:
		return a.boolVal == b.boolVal
	case TypeInt:
		return a.intVal == b.intVal
	case TypeFloat:
		if math.IsNaN(a.floatVal) {
			return math.IsNaN(b.floatVal)
		}
		return a.floatVal == b.floatVal
	case TypeStr:
		return a.strVal == b.strVal
	case TypeBytes:
		return string(a.bytesVal) == string(b.bytesVal)
	case TypeTime:
		return a.timeVal.Equal(b.timeVal)
	case TypeOpaque:
		return reflect.DeepEqual(a.opaque, b.opaque)
	}

	pair := [2]*Value{a, b}
	if seen[pair] {
		return true
	}
	seen[pair] = true

	if a.typ == TypeSeq {
		if len(a.seqVal) != len(b.seqVal) {
			return false
		}
		for i := range a.seqVal {
			if !equalValues(a.seqVal[i], b.seqVal[i], seen) {
				return false
			}
		}
		return true
	}
	if len(a.mapVal) != len(b.mapVal) {
		return false
	}
	for i := range a.mapVal {
		if !equalValues(a.mapVal[i].Key, b.mapVal[i].Key, seen) ||
			!equalValues(a.mapVal[i].Value, b.mapVal[i].Value, seen) {
			return false
		}
	}
	return true
}
