package yamlv

import (
	"fmt"

	"github.com/pkg/errors"
)

// Hard errors. Any of them aborts a build or walk; no partial tree is returned.
var (
	ErrUnregisteredAlias    = errors.New("alias is not registered")
	ErrMalformedMapping     = errors.New("invalid mapping structure")
	ErrTimestampResolution  = errors.New("failed to resolve timestamp")
	ErrFilterFailed         = errors.New("failed to apply filter")
	ErrDecoderFailed        = errors.New("failed to evaluate value")
	ErrUnsupportedValueKind = errors.New("unsupported value kind")
	ErrDepthExceeded        = errors.New("maximum nesting depth exceeded")
	ErrUnexpectedEvent      = errors.New("unexpected event")
	ErrCyclicValue          = errors.New("cyclic value")
)

// StreamError wraps a failure reported by the event layer. Its message is the
// underlying message, unchanged.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return e.Err.Error()
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// DocumentNotFoundError is returned when a document position is past the end
// of the stream.
type DocumentNotFoundError struct {
	Pos       int
	Documents int
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %d not found (stream has %d)", e.Pos, e.Documents)
}

// failureReason maps an error to the metrics label for it.
func failureReason(err error) string {
	var se *StreamError
	var nf *DocumentNotFoundError
	switch {
	case errors.As(err, &se):
		return "stream"
	case errors.As(err, &nf):
		return "no_document"
	case errors.Is(err, ErrUnregisteredAlias):
		return "unregistered_alias"
	case errors.Is(err, ErrMalformedMapping):
		return "malformed_mapping"
	case errors.Is(err, ErrTimestampResolution):
		return "timestamp"
	case errors.Is(err, ErrFilterFailed):
		return "filter"
	case errors.Is(err, ErrDecoderFailed):
		return "decoder"
	case errors.Is(err, ErrUnsupportedValueKind):
		return "unsupported_kind"
	case errors.Is(err, ErrDepthExceeded):
		return "depth"
	default:
		return "other"
	}
}
