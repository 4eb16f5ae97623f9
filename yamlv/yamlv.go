package yamlv

import (
	"bytes"
	"io"

	"github.com/Neumenon/yamlv/event"
)

// ============================================================
// YAML text entry points
// ============================================================

// Parse builds the first document of data with the default options.
func Parse(data []byte) (*Value, error) {
	res, err := ParseDocument(bytes.NewReader(data), 0, DefaultParseOptions())
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// ParseAll builds every document in r. The result value is a sequence of the
// document roots.
func ParseAll(r io.Reader, opts ParseOptions) (*Result, error) {
	return BuildAll(event.NewYAMLReader(r), opts)
}

// ParseDocument builds the document at pos (0-indexed) in r.
func ParseDocument(r io.Reader, pos int, opts ParseOptions) (*Result, error) {
	return BuildDocument(event.NewYAMLReader(r), pos, opts)
}

// Emit writes v as a YAML document with the default options.
func Emit(v *Value) ([]byte, error) {
	return EmitWithOptions(v, DefaultEmitOptions())
}

// EmitWithOptions writes v as a YAML document.
func EmitWithOptions(v *Value, opts EmitOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := EmitAll(&buf, []*Value{v}, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmitAll writes one YAML document per value to w.
func EmitAll(w io.Writer, docs []*Value, opts EmitOptions) error {
	yw := event.NewYAMLWriter(w, event.WithLineWidth(opts.Config.lineWidth()))
	return WalkDocuments(docs, yw, opts)
}
