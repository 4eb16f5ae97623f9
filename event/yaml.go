package event

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ============================================================
// Reader
// ============================================================

// YAMLReader produces events from YAML text using gopkg.in/yaml.v3.
// Documents are decoded one at a time, so a syntax error in a later document is
// only reported once the reader reaches it.
type YAMLReader struct {
	dec     *yaml.Decoder
	queue   []Event
	started bool
	done    bool
}

// NewYAMLReader returns a reader over the YAML stream in r.
func NewYAMLReader(r io.Reader) *YAMLReader {
	return &YAMLReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next event. Errors from the YAML parser are returned as is.
func (r *YAMLReader) Next() (Event, error) {
	for len(r.queue) == 0 {
		if r.done {
			return Event{}, io.EOF
		}
		if !r.started {
			r.started = true
			return StreamStart(), nil
		}
		var doc yaml.Node
		err := r.dec.Decode(&doc)
		if err == io.EOF {
			r.done = true
			return StreamEnd(), nil
		}
		if err != nil {
			r.done = true
			return Event{}, err
		}
		r.queue = flattenNode(&doc, r.queue[:0])
	}
	ev := r.queue[0]
	r.queue = r.queue[1:]
	return ev, nil
}

func flattenNode(n *yaml.Node, out []Event) []Event {
	tagged := n.Style&yaml.TaggedStyle != 0
	tag := ""
	if tagged {
		tag = LongTag(n.Tag)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		out = append(out, DocumentStart())
		if len(n.Content) == 0 {
			out = append(out, PlainScalar(""))
		}
		for _, c := range n.Content {
			out = flattenNode(c, out)
		}
		return append(out, DocumentEnd())

	case yaml.AliasNode:
		return append(out, Alias(n.Value))

	case yaml.ScalarNode:
		style := scalarStyleOf(n.Style)
		ev := Event{Kind: KindScalar, Anchor: n.Anchor, Tag: tag, Value: n.Value, Style: style}
		if !tagged {
			ev.PlainImplicit = style == StylePlain
			ev.QuotedImplicit = style != StylePlain
		}
		return append(out, ev)

	case yaml.SequenceNode, yaml.MappingNode:
		start, end := KindSequenceStart, KindSequenceEnd
		if n.Kind == yaml.MappingNode {
			start, end = KindMappingStart, KindMappingEnd
		}
		style := StyleBlock
		if n.Style&yaml.FlowStyle != 0 {
			style = StyleFlow
		}
		out = append(out, Event{Kind: start, Anchor: n.Anchor, Tag: tag, Implicit: !tagged, Style: style})
		for _, c := range n.Content {
			out = flattenNode(c, out)
		}
		return append(out, Event{Kind: end})
	}
	return out
}

func scalarStyleOf(s yaml.Style) Style {
	switch {
	case s&yaml.DoubleQuotedStyle != 0:
		return StyleDoubleQuoted
	case s&yaml.SingleQuotedStyle != 0:
		return StyleSingleQuoted
	case s&yaml.LiteralStyle != 0:
		return StyleLiteral
	case s&yaml.FoldedStyle != 0:
		return StyleFolded
	default:
		return StylePlain
	}
}

// ============================================================
// Writer
// ============================================================

// WriterOption configures a YAMLWriter.
type WriterOption func(*YAMLWriter)

// WithIndent sets the block indentation (default: 2).
func WithIndent(n int) WriterOption {
	return func(w *YAMLWriter) {
		w.indent = n
	}
}

// WithLineWidth sets the preferred line width. Strings longer than the width
// are written as folded block scalars on their own lines; yaml.v3 has no width
// setting of its own and never breaks lines. A negative width disables folding.
func WithLineWidth(n int) WriterOption {
	return func(w *YAMLWriter) {
		w.lineWidth = n
	}
}

// YAMLWriter encodes events as YAML text using gopkg.in/yaml.v3.
// Each document is assembled into a node tree and encoded at DocumentEnd.
type YAMLWriter struct {
	out       io.Writer
	enc       *yaml.Encoder
	indent    int
	lineWidth int

	started bool
	ended   bool
	docs    int
	stack   []*yaml.Node
	anchors map[string]*yaml.Node
}

// NewYAMLWriter returns a writer encoding to w.
func NewYAMLWriter(w io.Writer, opts ...WriterOption) *YAMLWriter {
	yw := &YAMLWriter{
		out:       w,
		indent:    2,
		lineWidth: 80,
	}
	for _, opt := range opts {
		opt(yw)
	}
	return yw
}

// Emit consumes the next event.
func (w *YAMLWriter) Emit(ev Event) error {
	if w.ended {
		return errors.Errorf("event: %s after %s", ev.Kind, KindStreamEnd)
	}
	if !w.started && ev.Kind != KindStreamStart {
		return errors.Errorf("event: %s before %s", ev.Kind, KindStreamStart)
	}

	switch ev.Kind {
	case KindStreamStart:
		if w.started {
			return errors.Errorf("event: duplicate %s", KindStreamStart)
		}
		w.started = true
		w.enc = yaml.NewEncoder(w.out)
		w.enc.SetIndent(w.indent)
		return nil

	case KindDocumentStart:
		if len(w.stack) != 0 {
			return errors.Errorf("event: %s inside an open document", ev.Kind)
		}
		w.stack = append(w.stack, &yaml.Node{Kind: yaml.DocumentNode})
		w.anchors = map[string]*yaml.Node{}
		return nil

	case KindScalar:
		return w.attach(w.scalarNode(ev), ev.Anchor)

	case KindAlias:
		target, ok := w.anchors[ev.Anchor]
		if !ok {
			return errors.Errorf("event: alias to undefined anchor %q", ev.Anchor)
		}
		return w.attach(&yaml.Node{Kind: yaml.AliasNode, Value: ev.Anchor, Alias: target}, "")

	case KindSequenceStart, KindMappingStart:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		if ev.Kind == KindMappingStart {
			n.Kind = yaml.MappingNode
		}
		if ev.Style == StyleFlow {
			n.Style |= yaml.FlowStyle
		}
		if ev.Explicit() {
			n.Tag = ShortTag(ev.Tag)
			n.Style |= yaml.TaggedStyle
		}
		if err := w.attach(n, ev.Anchor); err != nil {
			return err
		}
		w.stack = append(w.stack, n)
		return nil

	case KindSequenceEnd, KindMappingEnd:
		want := yaml.SequenceNode
		if ev.Kind == KindMappingEnd {
			want = yaml.MappingNode
		}
		if len(w.stack) < 2 || w.stack[len(w.stack)-1].Kind != want {
			return errors.Errorf("event: unbalanced %s", ev.Kind)
		}
		top := w.stack[len(w.stack)-1]
		if want == yaml.MappingNode && len(top.Content)%2 != 0 {
			return errors.Errorf("event: mapping closed with a dangling key")
		}
		w.stack = w.stack[:len(w.stack)-1]
		return nil

	case KindDocumentEnd:
		if len(w.stack) != 1 {
			return errors.Errorf("event: %s with %d open collections", ev.Kind, len(w.stack)-1)
		}
		doc := w.stack[0]
		w.stack = w.stack[:0]
		if len(doc.Content) == 0 {
			return errors.Errorf("event: empty document")
		}
		w.docs++
		return errors.Wrap(w.enc.Encode(doc), "encode document")

	case KindStreamEnd:
		if len(w.stack) != 0 {
			return errors.Errorf("event: %s inside an open document", ev.Kind)
		}
		w.ended = true
		if w.docs == 0 {
			// yaml.v3 cannot close a stream it never started
			return nil
		}
		return errors.Wrap(w.enc.Close(), "close encoder")
	}
	return errors.Errorf("event: unexpected %s", ev.Kind)
}

func (w *YAMLWriter) attach(n *yaml.Node, anchor string) error {
	if len(w.stack) == 0 {
		return errors.New("event: node outside a document")
	}
	parent := w.stack[len(w.stack)-1]
	if parent.Kind == yaml.DocumentNode && len(parent.Content) > 0 {
		return errors.New("event: document has more than one root")
	}
	if anchor != "" {
		n.Anchor = anchor
		w.anchors[anchor] = n
	}
	parent.Content = append(parent.Content, n)
	return nil
}

func (w *YAMLWriter) scalarNode(ev Event) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: ev.Value, Tag: ShortTag(ev.Tag)}
	switch ev.Style {
	case StyleDoubleQuoted:
		n.Style = yaml.DoubleQuotedStyle
	case StyleSingleQuoted:
		n.Style = yaml.SingleQuotedStyle
	case StyleLiteral:
		n.Style = yaml.LiteralStyle
	case StyleFolded:
		n.Style = yaml.FoldedStyle
	default:
		if w.foldable(ev) {
			n.Style = yaml.FoldedStyle
		}
	}
	if ev.Explicit() {
		n.Style |= yaml.TaggedStyle
	}
	return n
}

// foldable reports whether a long plain string can be written folded without
// changing its content.
func (w *YAMLWriter) foldable(ev Event) bool {
	if w.lineWidth <= 0 || len(ev.Value) <= w.lineWidth {
		return false
	}
	if ev.Tag != TagStr || ev.Explicit() {
		return false
	}
	v := ev.Value
	if strings.ContainsAny(v, "\n\r\t") || strings.TrimSpace(v) != v {
		return false
	}
	return strings.Contains(v, " ")
}
