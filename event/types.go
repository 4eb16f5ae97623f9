// Package event defines the YAML event vocabulary exchanged between the value-tree
// layer and a YAML syntax layer.
//
// A well-formed stream is:
//
//	StreamStart (DocumentStart node DocumentEnd)* StreamEnd
//
// where node is a Scalar, an Alias, or a SequenceStart/MappingStart followed by
// child nodes and the matching SequenceEnd/MappingEnd. Mapping children alternate
// key, value.
//
// The YAMLReader and YAMLWriter types adapt gopkg.in/yaml.v3 to this vocabulary.
package event

import (
	"fmt"
	"strings"
)

// Kind identifies an event.
type Kind uint8

const (
	KindNone          Kind = 0
	KindStreamStart   Kind = 1
	KindDocumentStart Kind = 2
	KindSequenceStart Kind = 3
	KindMappingStart  Kind = 4
	KindScalar        Kind = 5
	KindAlias         Kind = 6
	KindSequenceEnd   Kind = 7
	KindMappingEnd    Kind = 8
	KindDocumentEnd   Kind = 9
	KindStreamEnd     Kind = 10
)

var kindNames = [...]string{
	KindNone:          "none",
	KindStreamStart:   "stream-start",
	KindDocumentStart: "document-start",
	KindSequenceStart: "sequence-start",
	KindMappingStart:  "mapping-start",
	KindScalar:        "scalar",
	KindAlias:         "alias",
	KindSequenceEnd:   "sequence-end",
	KindMappingEnd:    "mapping-end",
	KindDocumentEnd:   "document-end",
	KindStreamEnd:     "stream-end",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", k)
}

// ParseKind parses a kind name as returned by String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return KindNone, false
}

// IsStart reports whether k opens a collection.
func (k Kind) IsStart() bool {
	return k == KindSequenceStart || k == KindMappingStart
}

// IsEnd reports whether k closes a collection.
func (k Kind) IsEnd() bool {
	return k == KindSequenceEnd || k == KindMappingEnd
}

// Style is the presentation style of a scalar or collection.
type Style uint8

const (
	StyleAny Style = iota
	StylePlain
	StyleSingleQuoted
	StyleDoubleQuoted
	StyleLiteral
	StyleFolded
	StyleBlock
	StyleFlow
)

func (s Style) String() string {
	switch s {
	case StyleAny:
		return "any"
	case StylePlain:
		return "plain"
	case StyleSingleQuoted:
		return "single-quoted"
	case StyleDoubleQuoted:
		return "double-quoted"
	case StyleLiteral:
		return "literal"
	case StyleFolded:
		return "folded"
	case StyleBlock:
		return "block"
	case StyleFlow:
		return "flow"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Core schema tags in long form.
const (
	TagPrefix    = "tag:yaml.org,2002:"
	TagNull      = TagPrefix + "null"
	TagBool      = TagPrefix + "bool"
	TagInt       = TagPrefix + "int"
	TagFloat     = TagPrefix + "float"
	TagStr       = TagPrefix + "str"
	TagTimestamp = TagPrefix + "timestamp"
	TagBinary    = TagPrefix + "binary"
	TagSeq       = TagPrefix + "seq"
	TagMap       = TagPrefix + "map"
)

// LongTag expands the "!!" shorthand to the yaml.org namespace.
// Other tags are returned unchanged.
func LongTag(tag string) string {
	if strings.HasPrefix(tag, "!!") {
		return TagPrefix + tag[2:]
	}
	return tag
}

// ShortTag abbreviates yaml.org tags to the "!!" shorthand.
func ShortTag(tag string) string {
	if strings.HasPrefix(tag, TagPrefix) {
		return "!!" + tag[len(TagPrefix):]
	}
	return tag
}

// Event is a single item of a YAML event stream.
//
// Tag is empty when the node carries no tag. For collections Implicit is true when
// the tag may be omitted. For scalars PlainImplicit and QuotedImplicit report
// whether the tag may be omitted for the plain and quoted renderings; both false
// means the tag was given explicitly.
type Event struct {
	Kind   Kind
	Anchor string
	Tag    string
	Value  string
	Style  Style

	Implicit       bool
	PlainImplicit  bool
	QuotedImplicit bool
}

// Explicit reports whether the event carries a tag that was written out in the
// source (or must be written out when emitting).
func (e Event) Explicit() bool {
	if e.Tag == "" {
		return false
	}
	if e.Kind == KindScalar {
		return !e.PlainImplicit && !e.QuotedImplicit
	}
	return !e.Implicit
}

func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Anchor != "" {
		if e.Kind == KindAlias {
			b.WriteString(" *")
		} else {
			b.WriteString(" &")
		}
		b.WriteString(e.Anchor)
	}
	if e.Tag != "" {
		b.WriteString(" <")
		b.WriteString(e.Tag)
		b.WriteString(">")
	}
	if e.Kind == KindScalar {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if e.Style != StyleAny {
		b.WriteString(" ")
		b.WriteString(e.Style.String())
	}
	return b.String()
}

// Reader yields events in stream order. Next returns io.EOF after StreamEnd.
type Reader interface {
	Next() (Event, error)
}

// Writer consumes events in stream order.
type Writer interface {
	Emit(Event) error
}

// Constructors for the common events.

func StreamStart() Event   { return Event{Kind: KindStreamStart} }
func StreamEnd() Event     { return Event{Kind: KindStreamEnd} }
func DocumentStart() Event { return Event{Kind: KindDocumentStart, Implicit: true} }
func DocumentEnd() Event   { return Event{Kind: KindDocumentEnd, Implicit: true} }
func SequenceEnd() Event   { return Event{Kind: KindSequenceEnd} }
func MappingEnd() Event    { return Event{Kind: KindMappingEnd} }

// Alias returns an alias event referring to anchor.
func Alias(anchor string) Event {
	return Event{Kind: KindAlias, Anchor: anchor}
}

// PlainScalar returns an untagged plain scalar, as a YAML parser reports one.
func PlainScalar(value string) Event {
	return Event{Kind: KindScalar, Value: value, Style: StylePlain, PlainImplicit: true}
}

// QuotedScalar returns an untagged double-quoted scalar.
func QuotedScalar(value string) Event {
	return Event{Kind: KindScalar, Value: value, Style: StyleDoubleQuoted, QuotedImplicit: true}
}

// TaggedScalar returns a scalar carrying an explicit tag.
func TaggedScalar(tag, value string) Event {
	return Event{Kind: KindScalar, Tag: LongTag(tag), Value: value, Style: StylePlain}
}

// SequenceStart returns an untagged sequence start.
func SequenceStart(style Style) Event {
	return Event{Kind: KindSequenceStart, Implicit: true, Style: style}
}

// MappingStart returns an untagged mapping start.
func MappingStart(style Style) Event {
	return Event{Kind: KindMappingStart, Implicit: true, Style: style}
}
