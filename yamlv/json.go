package yamlv

import (
	"encoding/base64"
	"io"
	"math"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// ============================================================
// JSON bridge
// ============================================================
//
// Mapping order is kept in both directions. Bytes are written as base64
// strings and Time values as RFC 3339 strings; NaN and infinities have no JSON
// form and are errors.

var (
	jsonCompact = jsoniter.Config{EscapeHTML: false}.Froze()
	jsonIndent  = jsoniter.Config{EscapeHTML: false, IndentionStep: 2}.Froze()
)

// JSONOptions configures ToJSON.
type JSONOptions struct {
	Indent    bool
	Stringify StringifyFunc
}

// ToJSON encodes v as JSON.
func ToJSON(v *Value, opts JSONOptions) ([]byte, error) {
	api := jsonCompact
	if opts.Indent {
		api = jsonIndent
	}
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	enc := &jsonEncoder{stream: stream, stringify: opts.Stringify, open: map[*Value]bool{}}
	if err := enc.value(v); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, errors.Wrap(stream.Error, "encode json")
	}
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

type jsonEncoder struct {
	stream    *jsoniter.Stream
	stringify StringifyFunc
	open      map[*Value]bool
}

func (e *jsonEncoder) value(v *Value) error {
	s := e.stream
	switch v.Type() {
	case TypeNull:
		s.WriteNil()
	case TypeBool:
		s.WriteBool(v.boolVal)
	case TypeInt:
		s.WriteInt64(v.intVal)
	case TypeFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return errors.Wrapf(ErrUnsupportedValueKind, "float %v in JSON", v.floatVal)
		}
		s.WriteRaw(strconv.FormatFloat(v.floatVal, 'g', -1, 64))
	case TypeStr:
		s.WriteString(v.strVal)
	case TypeBytes:
		s.WriteString(base64.StdEncoding.EncodeToString(v.bytesVal))
	case TypeTime:
		s.WriteString(v.timeVal.Format(time.RFC3339Nano))
	case TypeOpaque:
		if e.stringify != nil {
			if str, ok := e.stringify(v.opaque); ok {
				s.WriteString(str)
				return nil
			}
		}
		return errors.Wrapf(ErrUnsupportedValueKind, "%T", v.opaque)
	default:
		return e.collection(v)
	}
	return nil
}

func (e *jsonEncoder) collection(v *Value) error {
	if e.open[v] {
		return errors.Wrap(ErrCyclicValue, "collection contains itself")
	}
	e.open[v] = true
	defer delete(e.open, v)

	s := e.stream
	if v.Len() == 0 {
		if v.typ == TypeSeq {
			s.WriteEmptyArray()
		} else {
			s.WriteEmptyObject()
		}
		return nil
	}
	if v.typ == TypeSeq || isListShaped(v) {
		s.WriteArrayStart()
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				s.WriteMore()
			}
			if err := e.value(v.itemAt(i)); err != nil {
				return errors.WithMessagef(err, "[%d]", i)
			}
		}
		s.WriteArrayEnd()
		return nil
	}

	s.WriteObjectStart()
	for i, entry := range v.mapVal {
		if i > 0 {
			s.WriteMore()
		}
		key := KeyString(entry.Key)
		s.WriteObjectField(key)
		if err := e.value(entry.Value); err != nil {
			return errors.WithMessagef(err, "[%q]", key)
		}
	}
	s.WriteObjectEnd()
	return nil
}

// FromJSON decodes JSON into a Value. Integral numbers that fit in 64 bits
// become Int, other numbers Float. Duplicate object keys keep the last value.
func FromJSON(data []byte) (*Value, error) {
	iter := jsonCompact.BorrowIterator(data)
	defer jsonCompact.ReturnIterator(iter)

	top := iter.WhatIsNext()
	v := readJSON(iter, 0)
	// a top-level number is read up to the end of input
	if iter.Error == io.EOF && top == jsoniter.NumberValue {
		iter.Error = nil
	}
	if iter.Error != nil {
		if iter.Error == io.EOF {
			return nil, errors.Wrap(io.ErrUnexpectedEOF, "decode json")
		}
		return nil, errors.Wrap(iter.Error, "decode json")
	}
	if v == nil {
		return nil, errors.New("decode json: invalid value")
	}
	// only whitespace may follow; the iterator reports io.EOF once it is consumed
	if iter.WhatIsNext() != jsoniter.InvalidValue || iter.Error != io.EOF {
		return nil, errors.New("decode json: trailing data after value")
	}
	return v, nil
}

func readJSON(iter *jsoniter.Iterator, depth int) *Value {
	if depth > DefaultMaxDepth {
		iter.ReportError("readJSON", "maximum nesting depth exceeded")
		return nil
	}
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return Null()
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.StringValue:
		return Str(iter.ReadString())
	case jsoniter.NumberValue:
		n := iter.ReadNumber()
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return Int(i)
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil && !isRangeErr(err) {
			iter.ReportError("readJSON", "invalid number "+string(n))
			return nil
		}
		return Float(f)
	case jsoniter.ArrayValue:
		seq := Seq()
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			seq.Append(readJSON(iter, depth+1))
			return iter.Error == nil
		})
		return seq
	case jsoniter.ObjectValue:
		m := Map()
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
			m.SetStr(field, readJSON(iter, depth+1))
			return iter.Error == nil
		})
		return m
	}
	iter.ReportError("readJSON", "unexpected input")
	return nil
}
