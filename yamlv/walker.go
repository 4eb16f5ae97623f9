package yamlv

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/yamlv/event"
)

// EmitOptions configures walking value trees into events.
type EmitOptions struct {
	Config Config

	// Stringify coerces Opaque values. Without it an Opaque value is an
	// ErrUnsupportedValueKind error.
	Stringify StringifyFunc

	Logger  log.Logger
	Metrics *Metrics
}

// DefaultEmitOptions returns options with the default configuration.
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{Config: DefaultConfig()}
}

// CompactEmitOptions returns options that write every collection in flow style.
func CompactEmitOptions() EmitOptions {
	opts := DefaultEmitOptions()
	opts.Config.ForceFlow = true
	return opts
}

func (o *EmitOptions) logger() log.Logger {
	if o.Logger == nil {
		return log.NewNopLogger()
	}
	return o.Logger
}

// Walk writes a complete single-document stream for v to w.
func Walk(v *Value, w event.Writer, opts EmitOptions) error {
	return WalkDocuments([]*Value{v}, w, opts)
}

// WalkDocuments writes a stream with one document per value.
func WalkDocuments(docs []*Value, w event.Writer, opts EmitOptions) error {
	err := walkDocuments(docs, w, &opts)
	if err != nil {
		opts.Metrics.failed("walk", err)
	}
	return err
}

// Plan returns the event stream Walk would write for v.
func Plan(v *Value, opts EmitOptions) ([]event.Event, error) {
	var rec event.Recorder
	if err := Walk(v, &rec, opts); err != nil {
		return nil, err
	}
	return rec.Events(), nil
}

func walkDocuments(docs []*Value, w event.Writer, opts *EmitOptions) error {
	if err := opts.Config.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	emit := func(ev event.Event) error {
		if err := w.Emit(ev); err != nil {
			return &StreamError{Err: err}
		}
		return nil
	}

	if err := emit(event.StreamStart()); err != nil {
		return err
	}
	for i, doc := range docs {
		wk := &walker{
			emit:      emit,
			cfg:       opts.Config,
			stringify: opts.Stringify,
			anchors:   sharedCollections(doc),
			written:   map[*Value]bool{},
		}
		if err := emit(event.DocumentStart()); err != nil {
			return err
		}
		if err := wk.node(doc); err != nil {
			return errors.WithMessagef(err, "document %d", i)
		}
		if err := emit(event.DocumentEnd()); err != nil {
			return err
		}
		level.Debug(opts.logger()).Log("msg", "document walked", "document", i, "anchors", len(wk.anchors))
		opts.Metrics.documentWalked()
	}
	return emit(event.StreamEnd())
}

// sharedCollections finds collections reachable more than once from root and
// names them in first-visit order.
func sharedCollections(root *Value) map[*Value]string {
	seen := map[*Value]bool{}
	var order []*Value
	shared := map[*Value]bool{}

	var visit func(v *Value)
	visit = func(v *Value) {
		if !v.Type().IsCollection() {
			return
		}
		if seen[v] {
			shared[v] = true
			return
		}
		seen[v] = true
		order = append(order, v)
		if v.typ == TypeSeq {
			for _, item := range v.seqVal {
				visit(item)
			}
			return
		}
		for _, e := range v.mapVal {
			visit(e.Value)
		}
	}
	visit(root)

	anchors := map[*Value]string{}
	for _, v := range order {
		if shared[v] {
			anchors[v] = fmt.Sprintf("id%03d", len(anchors)+1)
		}
	}
	return anchors
}

type walker struct {
	emit      func(event.Event) error
	cfg       Config
	stringify StringifyFunc
	anchors   map[*Value]string
	written   map[*Value]bool
	depth     int
}

func (w *walker) node(v *Value) error {
	if !v.Type().IsCollection() {
		ev, err := w.scalar(v)
		if err != nil {
			return err
		}
		return w.emit(ev)
	}

	anchor := w.anchors[v]
	if w.written[v] {
		return w.emit(event.Alias(anchor))
	}
	w.written[v] = true

	w.depth++
	defer func() { w.depth-- }()
	if w.depth > w.cfg.MaxDepth {
		return errors.Wrapf(ErrDepthExceeded, "depth %d", w.depth)
	}

	if v.typ == TypeSeq {
		return w.sequence(v.seqVal, anchor)
	}
	if isListShaped(v) {
		items := make([]*Value, len(v.mapVal))
		for i, e := range v.mapVal {
			items[i] = e.Value
		}
		return w.sequence(items, anchor)
	}
	return w.mapping(v.mapVal, anchor)
}

func (w *walker) sequence(items []*Value, anchor string) error {
	start := event.SequenceStart(w.style(len(items), func(i int) *Value { return items[i] }))
	start.Anchor = anchor
	start.Tag = event.TagSeq
	if err := w.emit(start); err != nil {
		return err
	}
	for _, item := range items {
		if err := w.node(item); err != nil {
			return err
		}
	}
	return w.emit(event.SequenceEnd())
}

func (w *walker) mapping(entries []MapEntry, anchor string) error {
	start := event.MappingStart(w.style(len(entries), func(i int) *Value { return entries[i].Value }))
	start.Anchor = anchor
	start.Tag = event.TagMap
	if err := w.emit(start); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.emit(w.key(e.Key)); err != nil {
			return err
		}
		if err := w.node(e.Value); err != nil {
			return err
		}
	}
	return w.emit(event.MappingEnd())
}

// isListShaped reports whether every key of a mapping is the Int equal to its
// position. Empty mappings stay mappings.
func isListShaped(v *Value) bool {
	if len(v.mapVal) == 0 {
		return false
	}
	for i, e := range v.mapVal {
		if e.Key.Type() != TypeInt || e.Key.intVal != int64(i) {
			return false
		}
	}
	return true
}

// style picks flow style for small collections whose direct children are all
// plain scalars. Only one level is inspected.
func (w *walker) style(n int, child func(int) *Value) event.Style {
	if w.cfg.ForceFlow {
		return event.StyleFlow
	}
	if n > w.cfg.FlowThreshold {
		return event.StyleBlock
	}
	for i := 0; i < n; i++ {
		switch child(i).Type() {
		case TypeSeq, TypeMap, TypeTime, TypeOpaque:
			return event.StyleBlock
		}
	}
	return event.StyleFlow
}

func (w *walker) key(k *Value) event.Event {
	switch k.Type() {
	case TypeInt:
		// written as its decimal text, a plain string key
		return implicitScalar(event.TagStr, strconv.FormatInt(k.intVal, 10))
	case TypeStr:
		return stringEvent(k.strVal)
	}
	return stringEvent(KeyString(k))
}

func (w *walker) scalar(v *Value) (event.Event, error) {
	switch v.Type() {
	case TypeNull:
		return implicitScalar(event.TagNull, "~"), nil
	case TypeBool:
		return implicitScalar(event.TagBool, strconv.FormatBool(v.boolVal)), nil
	case TypeInt:
		return implicitScalar(event.TagInt, strconv.FormatInt(v.intVal, 10)), nil
	case TypeFloat:
		return implicitScalar(event.TagFloat, formatFloat(v.floatVal)), nil
	case TypeStr:
		return stringEvent(v.strVal), nil
	case TypeBytes:
		return event.TaggedScalar(event.TagBinary, base64.StdEncoding.EncodeToString(v.bytesVal)), nil
	case TypeTime:
		return implicitScalar(event.TagTimestamp, v.timeVal.Format(time.RFC3339Nano)), nil
	case TypeOpaque:
		if w.stringify != nil {
			if s, ok := w.stringify(v.opaque); ok {
				return stringEvent(s), nil
			}
		}
		return event.Event{}, errors.Wrapf(ErrUnsupportedValueKind, "%T", v.opaque)
	}
	return event.Event{}, errors.Wrapf(ErrUnsupportedValueKind, "type %s", v.Type())
}

func implicitScalar(tag, text string) event.Event {
	return event.Event{
		Kind:           event.KindScalar,
		Tag:            tag,
		Value:          text,
		Style:          event.StylePlain,
		PlainImplicit:  true,
		QuotedImplicit: true,
	}
}

// stringEvent writes s so that it reads back as the same string: quoted when
// the plain form would resolve to another type, explicitly tagged when even
// the quoted form would.
func stringEvent(s string) event.Event {
	ev := implicitScalar(event.TagStr, s)
	if Classify(Scalar{Text: s, PlainImplicit: true}).Class == ClassString {
		return ev
	}
	if Classify(Scalar{Text: s, QuotedImplicit: true}).Class == ClassString {
		ev.Style = event.StyleDoubleQuoted
		return ev
	}
	return event.TaggedScalar(event.TagStr, s)
}

// formatFloat writes f in a form the numeric grammar reads back exactly.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	return mant + "e" + exp
}
