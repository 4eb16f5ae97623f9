package yamlv

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/yamlv/event"
)

// ParseOptions configures building value trees from events.
type ParseOptions struct {
	Config Config

	// TimestampResolver replaces the resolver selected by
	// Config.DecodeTimestamp.
	TimestampResolver TimestampResolver

	// Filters are applied to collections whose start event carries an
	// explicit tag, keyed by tag ("!!set" and "tag:yaml.org,2002:set" are
	// equivalent).
	Filters map[string]FilterFunc

	// Decoders replace classification for scalars with an explicit tag. A
	// decoder for tag:yaml.org,2002:timestamp also resolves implicit
	// timestamps when TimestampResolver is nil.
	Decoders map[string]DecoderFunc

	Logger  log.Logger
	Metrics *Metrics
}

// DefaultParseOptions returns options with the default configuration.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Config: DefaultConfig()}
}

func (o *ParseOptions) logger() log.Logger {
	if o.Logger == nil {
		return log.NewNopLogger()
	}
	return o.Logger
}

// Result is a built tree and the number of documents in the stream.
type Result struct {
	Value     *Value
	Documents int
}

// BuildAll builds every document of the stream. The result value is a
// sequence of the document roots.
func BuildAll(r event.Reader, opts ParseOptions) (*Result, error) {
	return build(r, -1, &opts)
}

// BuildDocument builds the document at pos (0-indexed). The remaining
// documents are read but not built, so Documents counts the whole stream.
func BuildDocument(r event.Reader, pos int, opts ParseOptions) (*Result, error) {
	if pos < 0 {
		return nil, errors.Errorf("invalid document position %d", pos)
	}
	return build(r, pos, &opts)
}

func build(r event.Reader, pos int, opts *ParseOptions) (*Result, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	b := &builder{
		r:       r,
		cfg:     opts.Config,
		scalars: newScalarResolver(opts),
		filters: normalizeTags(opts.Filters),
		logger:  opts.logger(),
		metrics: opts.Metrics,
	}
	res, err := b.stream(pos)
	if err != nil {
		opts.Metrics.failed("build", err)
		return nil, err
	}
	return res, nil
}

// ============================================================
// Builder
// ============================================================

type frameKind uint8

const (
	frameDocument frameKind = iota
	frameSeq
	frameMap
)

type frame struct {
	kind      frameKind
	node      *Value // collection being filled; the root for documents
	filterTag string
	key       *Value // pending mapping key
}

type builder struct {
	r       event.Reader
	cfg     Config
	scalars *scalarResolver
	filters map[string]FilterFunc
	logger  log.Logger
	metrics *Metrics

	anchors map[string]*Value
	stack   []*frame
	aliases int
}

func (b *builder) next() (event.Event, error) {
	ev, err := b.r.Next()
	if err == io.EOF {
		return ev, errors.Wrap(ErrUnexpectedEvent, "event stream ended early")
	}
	if err != nil {
		return ev, &StreamError{Err: err}
	}
	return ev, nil
}

func (b *builder) stream(pos int) (*Result, error) {
	ev, err := b.next()
	if err != nil {
		return nil, err
	}
	if ev.Kind != event.KindStreamStart {
		return nil, errors.Wrapf(ErrUnexpectedEvent, "%s at stream start", ev.Kind)
	}

	var docs []*Value
	var found *Value
	ndocs := 0
	for {
		ev, err := b.next()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case event.KindStreamEnd:
			if pos < 0 {
				return &Result{Value: Seq(docs...), Documents: ndocs}, nil
			}
			if found == nil {
				return nil, &DocumentNotFoundError{Pos: pos, Documents: ndocs}
			}
			return &Result{Value: found, Documents: ndocs}, nil

		case event.KindDocumentStart:
			if pos >= 0 && ndocs != pos {
				if err := b.skipDocument(); err != nil {
					return nil, err
				}
				ndocs++
				continue
			}
			root, err := b.document(ndocs)
			if err != nil {
				return nil, errors.WithMessagef(err, "document %d", ndocs)
			}
			if pos < 0 {
				docs = append(docs, root)
			} else {
				found = root
			}
			ndocs++

		default:
			return nil, errors.Wrapf(ErrUnexpectedEvent, "%s between documents", ev.Kind)
		}
	}
}

// skipDocument consumes events up to the end of the current document.
func (b *builder) skipDocument() error {
	depth := 0
	for {
		ev, err := b.next()
		if err != nil {
			return err
		}
		switch {
		case ev.Kind.IsStart():
			depth++
		case ev.Kind.IsEnd():
			depth--
		case ev.Kind == event.KindDocumentEnd && depth == 0:
			return nil
		case ev.Kind == event.KindStreamStart, ev.Kind == event.KindStreamEnd, ev.Kind == event.KindDocumentStart:
			return errors.Wrapf(ErrUnexpectedEvent, "%s inside a document", ev.Kind)
		}
	}
}

// document builds one document. The anchor table lives for this document only.
func (b *builder) document(index int) (*Value, error) {
	b.anchors = map[string]*Value{}
	b.aliases = 0
	b.stack = append(b.stack[:0], &frame{kind: frameDocument})

	for {
		ev, err := b.next()
		if err != nil {
			return nil, err
		}
		done, err := b.handle(ev)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	root := b.stack[0].node
	if root == nil {
		root = Null()
	}
	level.Debug(b.logger).Log("msg", "document built", "document", index, "anchors", len(b.anchors), "aliases", b.aliases)
	b.metrics.documentBuilt()
	b.anchors = nil
	b.stack = b.stack[:0]
	return root, nil
}

// handle applies one event. It returns true at the end of the document.
func (b *builder) handle(ev event.Event) (bool, error) {
	top := b.stack[len(b.stack)-1]

	switch ev.Kind {
	case event.KindSequenceStart, event.KindMappingStart:
		if len(b.stack) > b.cfg.MaxDepth {
			return false, errors.Wrapf(ErrDepthExceeded, "depth %d", len(b.stack))
		}
		f := &frame{kind: frameSeq, node: Seq()}
		if ev.Kind == event.KindMappingStart {
			f.kind, f.node = frameMap, Map()
		}
		if ev.Explicit() {
			f.filterTag = event.LongTag(ev.Tag)
		}
		// registered before the children so they can refer back to it
		b.register(ev.Anchor, f.node)
		b.stack = append(b.stack, f)
		return false, nil

	case event.KindScalar:
		if top.kind == frameMap && top.key == nil {
			key := Str(ev.Value)
			b.register(ev.Anchor, key)
			top.key = key
			return false, nil
		}
		v, err := b.scalars.resolve(ev)
		if err != nil {
			return false, err
		}
		b.register(ev.Anchor, v)
		return false, b.attachValue(top, v)

	case event.KindAlias:
		target, ok := b.anchors[ev.Anchor]
		if !ok {
			return false, errors.Wrapf(ErrUnregisteredAlias, "alias %s", ev.Anchor)
		}
		b.aliases++
		b.metrics.aliasResolved()
		return false, b.attach(top, target)

	case event.KindSequenceEnd, event.KindMappingEnd:
		want := frameSeq
		if ev.Kind == event.KindMappingEnd {
			want = frameMap
		}
		if top.kind != want {
			return false, errors.Wrapf(ErrUnexpectedEvent, "%s does not close the open collection", ev.Kind)
		}
		if top.kind == frameMap && top.key != nil {
			return false, errors.Wrapf(ErrMalformedMapping, "key %q has no value", top.key.strVal)
		}
		b.stack = b.stack[:len(b.stack)-1]
		if err := b.filter(top); err != nil {
			return false, err
		}
		return false, b.attach(b.stack[len(b.stack)-1], top.node)

	case event.KindDocumentEnd:
		if len(b.stack) != 1 {
			return false, errors.Wrapf(ErrUnexpectedEvent, "%s with %d open collections", ev.Kind, len(b.stack)-1)
		}
		return true, nil
	}
	return false, errors.Wrapf(ErrUnexpectedEvent, "%s inside a document", ev.Kind)
}

func (b *builder) register(anchor string, v *Value) {
	if anchor != "" {
		b.anchors[anchor] = v
	}
}

// filter applies the filter registered for the frame's tag. The collection is
// replaced in place so anchors and self references see the replacement.
func (b *builder) filter(f *frame) error {
	if f.filterTag == "" {
		return nil
	}
	fn, ok := b.filters[f.filterTag]
	if !ok {
		return nil
	}
	r, err := fn(f.node)
	if err != nil {
		return errors.Wrapf(ErrFilterFailed, "tag %s: %v", f.filterTag, err)
	}
	if r == nil {
		return errors.Wrapf(ErrFilterFailed, "tag %s: no value", f.filterTag)
	}
	f.node.replace(r)
	return nil
}

// attach adds a collection or alias target to the parent. In a mapping with
// no pending key the value becomes the key, converted with KeyString.
func (b *builder) attach(parent *frame, v *Value) error {
	if parent.kind == frameMap && parent.key == nil {
		parent.key = Str(KeyString(v))
		return nil
	}
	return b.attachValue(parent, v)
}

func (b *builder) attachValue(parent *frame, v *Value) error {
	switch parent.kind {
	case frameSeq:
		parent.node.Append(v)
	case frameMap:
		parent.node.Set(parent.key, v)
		parent.key = nil
	case frameDocument:
		if parent.node != nil {
			return errors.Wrap(ErrUnexpectedEvent, "document has more than one root")
		}
		parent.node = v
	}
	return nil
}
