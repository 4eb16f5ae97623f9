// Package yamlv converts between YAML event streams and value trees.
//
// It is designed to:
//   - Resolve untyped scalars with the YAML core schema plus the legacy forms
//     (yes/no/on/off, 0b/0x/octal integers, sexagesimal 1:20:30, .inf/.nan)
//   - Rebuild anchors and aliases as shared references, including a
//     collection that contains itself
//   - Write trees back in a form that reads back to an equal tree
//
// # Data Model
//
// Scalars: null, bool, int, float, str, bytes (!!binary), time (!!timestamp)
// Containers: seq, map (ordered entries, keys of any type)
//
// # Reading
//
// The tree builder consumes events from an event.Reader. Parse, ParseAll and
// ParseDocument read YAML text through gopkg.in/yaml.v3:
//
//	res, err := yamlv.ParseAll(r, yamlv.DefaultParseOptions())
//	// res.Value is a seq of document roots, res.Documents their count
//
// Scalar mapping keys keep their raw text. A collection used as a key is
// converted with KeyString.
//
// # Writing
//
// The walker emits events for a tree. A mapping whose keys are exactly the
// Ints 0..n-1 is written as a sequence. Collections with at most
// Config.FlowThreshold entries and only scalar children are written in flow
// style, others in block style:
//
//	out, err := yamlv.Emit(yamlv.Seq(yamlv.Int(1), yamlv.Int(2)))
//	// [1, 2]
//
// # Hooks
//
// ParseOptions carries a timestamp resolver, per-tag filters for collections
// and per-tag decoders for scalars. EmitOptions carries a Stringify hook for
// Opaque values.
package yamlv
