package yamlv

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/yamlv/event"
)

// TimestampResolver turns timestamp text into a value.
type TimestampResolver func(text string) (*Value, error)

// FilterFunc replaces a collection built from a node with an explicit tag.
// Returning a nil value without an error is a failure.
type FilterFunc func(v *Value) (*Value, error)

// DecoderFunc builds a value from the raw text of a scalar with an explicit
// tag, in place of the classifier. Returning a nil value is a failure.
type DecoderFunc func(text string) (*Value, error)

// StringifyFunc coerces an opaque host value to a string for emitting. It
// returns false when the value cannot be represented.
type StringifyFunc func(v any) (string, bool)

// UnixTimestamps resolves timestamp text to seconds since the Unix epoch.
func UnixTimestamps(text string) (*Value, error) {
	t, err := ParseTimestamp(text)
	if err != nil {
		return nil, err
	}
	return Int(t.Unix()), nil
}

// TimeTimestamps resolves timestamp text to a Time value.
func TimeTimestamps(text string) (*Value, error) {
	t, err := ParseTimestamp(text)
	if err != nil {
		return nil, err
	}
	return Time(t), nil
}

// StringerCoercion is a StringifyFunc for values implementing
// encoding.TextMarshaler or fmt.Stringer.
func StringerCoercion(v any) (string, bool) {
	switch x := v.(type) {
	case interface{ MarshalText() ([]byte, error) }:
		b, err := x.MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

// scalarResolver turns scalar events into values using the classifier and the
// configured hooks.
type scalarResolver struct {
	cfg       Config
	timestamp TimestampResolver
	decoders  map[string]DecoderFunc
	logger    log.Logger
	metrics   *Metrics
}

func newScalarResolver(opts *ParseOptions) *scalarResolver {
	r := &scalarResolver{
		cfg:       opts.Config,
		timestamp: opts.TimestampResolver,
		decoders:  normalizeTags(opts.Decoders),
		logger:    opts.logger(),
		metrics:   opts.Metrics,
	}
	if r.timestamp == nil {
		if d, ok := r.decoders[event.TagTimestamp]; ok {
			r.timestamp = TimestampResolver(d)
		}
	}
	if r.timestamp == nil {
		switch r.cfg.DecodeTimestamp {
		case TimestampUnix:
			r.timestamp = UnixTimestamps
		case TimestampTime:
			r.timestamp = TimeTimestamps
		}
	}
	return r
}

func (r *scalarResolver) resolve(ev event.Event) (*Value, error) {
	s := ScalarOf(ev)
	if s.Explicit() {
		if d, ok := r.decoders[event.LongTag(s.Tag)]; ok {
			v, err := d(s.Text)
			if err != nil {
				return nil, errors.Wrapf(ErrDecoderFailed, "tag %s: %v", s.Tag, err)
			}
			if v == nil {
				return nil, errors.Wrapf(ErrDecoderFailed, "tag %s: no value", s.Tag)
			}
			return v, nil
		}
	}

	c := Classify(s)
	r.metrics.scalarResolved(c.Class)

	switch c.Class {
	case ClassNull:
		return Null(), nil
	case ClassTrue:
		return Bool(true), nil
	case ClassFalse:
		return Bool(false), nil
	case ClassInt:
		return Int(c.Int), nil
	case ClassFloat:
		return Float(c.Float), nil
	case ClassTimestamp:
		if r.timestamp == nil {
			return Str(c.Text), nil
		}
		v, err := r.timestamp(c.Text)
		if err != nil {
			return nil, errors.Wrapf(ErrTimestampResolution, "%q: %v", c.Text, err)
		}
		if v == nil {
			return nil, errors.Wrapf(ErrTimestampResolution, "%q: no value", c.Text)
		}
		return v, nil
	case ClassBinary:
		if !r.cfg.DecodeBinary {
			return Str(c.Text), nil
		}
		data, err := decodeBinary(c.Text)
		if err != nil {
			level.Warn(r.logger).Log("msg", "failed to decode binary", "err", err)
			return Null(), nil
		}
		return Bytes(data), nil
	}
	return Str(c.Text), nil
}

// decodeBinary decodes base64 text, ignoring the whitespace that block
// scalars carry.
func decodeBinary(text string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, text)
	return base64.StdEncoding.DecodeString(clean)
}

func normalizeTags[F any](in map[string]F) map[string]F {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]F, len(in))
	for tag, f := range in {
		out[event.LongTag(tag)] = f
	}
	return out
}
