package yamlv

import (
	"github.com/Neumenon/yamlv/event"
)

// Class is the outcome of scalar classification.
type Class uint8

const (
	ClassString Class = iota
	ClassNull
	ClassTrue
	ClassFalse
	ClassInt
	ClassFloat
	ClassTimestamp
	ClassBinary
)

func (c Class) String() string {
	switch c {
	case ClassNull:
		return "null"
	case ClassTrue:
		return "true"
	case ClassFalse:
		return "false"
	case ClassInt:
		return "int"
	case ClassFloat:
		return "float"
	case ClassTimestamp:
		return "timestamp"
	case ClassBinary:
		return "binary"
	default:
		return "string"
	}
}

// Scalar is the classifier input: the scalar text with the tag and implicit
// flags reported by the event layer.
type Scalar struct {
	Text           string
	Tag            string
	PlainImplicit  bool
	QuotedImplicit bool
}

// ScalarOf extracts the classifier input from a scalar event.
func ScalarOf(ev event.Event) Scalar {
	return Scalar{
		Text:           ev.Value,
		Tag:            ev.Tag,
		PlainImplicit:  ev.PlainImplicit,
		QuotedImplicit: ev.QuotedImplicit,
	}
}

// Explicit reports whether the scalar's tag was given explicitly.
func (s Scalar) Explicit() bool {
	return !s.PlainImplicit && !s.QuotedImplicit
}

func (s Scalar) tagIs(name string) bool {
	return event.LongTag(s.Tag) == event.TagPrefix+name
}

// Classification is the result of Classify.
type Classification struct {
	Class Class
	Int   int64
	Float float64
	Form  NumberForm
	// Text is the raw scalar text, kept for every class.
	Text string
	// Explicit is set when the scalar carried an explicit tag.
	Explicit bool
}

var nullSpellings = map[string]bool{
	"": true, "~": true, "null": true, "Null": true, "NULL": true,
}

var boolSpellings = map[string]bool{
	"yes": true, "Yes": true, "YES": true,
	"true": true, "True": true, "TRUE": true,
	"on": true, "On": true, "ON": true,
	"no": false, "No": false, "NO": false,
	"false": false, "False": false, "FALSE": false,
	"off": false, "Off": false, "OFF": false,
}

// Classify resolves an untyped scalar. The first matching rule wins: null,
// bool, int/float, timestamp, binary, string. Classification never fails;
// scalars that match no rule are strings.
func Classify(s Scalar) Classification {
	c := Classification{Text: s.Text, Explicit: s.Explicit()}
	quoted := s.QuotedImplicit
	plain := s.PlainImplicit

	// null
	if !quoted {
		if plain && nullSpellings[s.Text] {
			c.Class = ClassNull
			return c
		}
		if !plain && s.tagIs("null") {
			c.Class = ClassNull
			return c
		}
	}

	// bool
	if !quoted && (plain || s.tagIs("bool")) {
		if b, ok := boolSpellings[s.Text]; ok {
			c.Class = boolClass(b)
			return c
		}
	}
	if c.Explicit && s.tagIs("bool") {
		c.Class = boolClass(s.Text != "" && s.Text != "0")
		return c
	}

	// int, float
	if !quoted && (plain || s.tagIs("int") || s.tagIs("float")) {
		if n, ok := ParseNumber(s.Text); ok {
			c.Form = n.Form
			if n.IsFloat {
				c.Class, c.Float = ClassFloat, n.Float
			} else {
				c.Class, c.Int = ClassInt, n.Int
			}
			if !plain {
				switch {
				case s.tagIs("float") && c.Class == ClassInt:
					c.Class, c.Float = ClassFloat, float64(c.Int)
				case s.tagIs("int") && c.Class == ClassFloat:
					c.Class, c.Int = ClassInt, truncateFloat(c.Float)
				}
			}
			return c
		}
		if c.Explicit && s.tagIs("float") {
			c.Class, c.Float = ClassFloat, LenientFloat(s.Text)
			return c
		}
		if c.Explicit && s.tagIs("int") {
			c.Class, c.Int = ClassInt, LenientInt(s.Text)
			return c
		}
	}

	// timestamp
	if plain || quoted {
		if IsTimestamp(s.Text) {
			c.Class = ClassTimestamp
			return c
		}
	} else if s.tagIs("timestamp") {
		c.Class = ClassTimestamp
		return c
	}

	// binary
	if c.Explicit && s.tagIs("binary") {
		c.Class = ClassBinary
		return c
	}

	c.Class = ClassString
	return c
}

func boolClass(b bool) Class {
	if b {
		return ClassTrue
	}
	return ClassFalse
}
