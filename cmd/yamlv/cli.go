package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Neumenon/yamlv/event"
	"github.com/Neumenon/yamlv/yamlv"
)

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	settings   settings
	logLevel   string
	logMetrics bool
	jobs       int

	doc    int
	indent bool
	files  []string

	logger   log.Logger
	registry *prometheus.Registry
	metrics  *yamlv.Metrics
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{stdin: stdin, stdout: stdout, stderr: stderr, logger: log.NewNopLogger()}
}

// Register adds the commands and flags to app.
func (c *cli) Register(app *kingpin.Application) {
	app.Flag("log.level", "Only log messages with the given severity or above. One of: [debug, info, warn, error]").
		Default("info").EnumVar(&c.logLevel, "debug", "info", "warn", "error")
	app.Flag("log.metrics", "Log conversion counters when done.").BoolVar(&c.logMetrics)
	app.Flag("jobs", "Number of files converted concurrently.").Default("4").IntVar(&c.jobs)
	c.settings.register(app)
	app.PreAction(c.setup)

	fmtCmd := app.Command("fmt", "Read YAML documents and write them back in canonical style.").Action(c.format)
	fmtCmd.Flag("doc", "Only process the document at this position (0-indexed); -1 for all.").Default("-1").IntVar(&c.doc)
	fmtCmd.Arg("files", "Input files; - or none for stdin.").StringsVar(&c.files)

	toJSON := app.Command("to-json", "Convert YAML documents to JSON, one document per line.").Action(c.toJSON)
	toJSON.Flag("doc", "Only process the document at this position (0-indexed); -1 for all.").Default("-1").IntVar(&c.doc)
	toJSON.Flag("indent", "Indent the JSON output.").BoolVar(&c.indent)
	toJSON.Arg("files", "Input files; - or none for stdin.").StringsVar(&c.files)

	fromJSON := app.Command("from-json", "Convert JSON values to YAML documents.").Action(c.fromJSON)
	fromJSON.Arg("files", "Input files; - or none for stdin.").StringsVar(&c.files)

	events := app.Command("events", "Print the YAML event stream, one event per line.").Action(c.events)
	events.Arg("files", "Input files; - or none for stdin.").StringsVar(&c.files)

	app.Command("version", "Print version info.").Action(func(*kingpin.ParseContext) error {
		fmt.Fprintf(c.stdout, "yamlv %s\n", version)
		return nil
	})
}

func (c *cli) setup(*kingpin.ParseContext) error {
	if c.jobs < 1 {
		return errors.Errorf("--jobs must be at least 1, got %d", c.jobs)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(c.stderr))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(c.logLevel, level.InfoValue())))
	c.logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	c.registry = prometheus.NewRegistry()
	c.metrics = yamlv.NewMetrics(c.registry)
	return nil
}

func (c *cli) parseOptions(cfg yamlv.Config) yamlv.ParseOptions {
	opts := yamlv.DefaultParseOptions()
	opts.Config = cfg
	opts.Logger = c.logger
	opts.Metrics = c.metrics
	return opts
}

func (c *cli) emitOptions(cfg yamlv.Config) yamlv.EmitOptions {
	opts := yamlv.DefaultEmitOptions()
	opts.Config = cfg
	opts.Stringify = yamlv.StringerCoercion
	opts.Logger = c.logger
	opts.Metrics = c.metrics
	return opts
}

// readDocuments builds every document of data, or only the one selected by
// --doc.
func (c *cli) readDocuments(data []byte, cfg yamlv.Config) ([]*yamlv.Value, error) {
	if c.doc >= 0 {
		res, err := yamlv.ParseDocument(bytes.NewReader(data), c.doc, c.parseOptions(cfg))
		if err != nil {
			return nil, err
		}
		return []*yamlv.Value{res.Value}, nil
	}
	res, err := yamlv.ParseAll(bytes.NewReader(data), c.parseOptions(cfg))
	if err != nil {
		return nil, err
	}
	return res.Value.AsSeq()
}

// ============================================================
// Commands
// ============================================================

func (c *cli) format(*kingpin.ParseContext) error {
	cfg, err := c.settings.config()
	if err != nil {
		return err
	}
	return c.run(documentSeparator, func(data []byte) ([]byte, error) {
		docs, err := c.readDocuments(data, cfg)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := yamlv.EmitAll(&buf, docs, c.emitOptions(cfg)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func (c *cli) toJSON(*kingpin.ParseContext) error {
	cfg, err := c.settings.config()
	if err != nil {
		return err
	}
	opts := yamlv.JSONOptions{Indent: c.indent, Stringify: yamlv.StringerCoercion}
	return c.run(nil, func(data []byte) ([]byte, error) {
		docs, err := c.readDocuments(data, cfg)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		for i, doc := range docs {
			out, err := yamlv.ToJSON(doc, opts)
			if err != nil {
				return nil, errors.WithMessagef(err, "document %d", i)
			}
			buf.Write(out)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	})
}

func (c *cli) fromJSON(*kingpin.ParseContext) error {
	cfg, err := c.settings.config()
	if err != nil {
		return err
	}
	return c.run(documentSeparator, func(data []byte) ([]byte, error) {
		v, err := yamlv.FromJSON(data)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := yamlv.EmitAll(&buf, []*yamlv.Value{v}, c.emitOptions(cfg)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func (c *cli) events(*kingpin.ParseContext) error {
	return c.run(nil, func(data []byte) ([]byte, error) {
		var buf bytes.Buffer
		if _, err := event.Copy(eventPrinter{w: &buf}, event.NewYAMLReader(bytes.NewReader(data))); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// eventPrinter writes one event per line.
type eventPrinter struct {
	w io.Writer
}

func (p eventPrinter) Emit(ev event.Event) error {
	_, err := fmt.Fprintln(p.w, ev.String())
	return err
}

// ============================================================
// File handling
// ============================================================

// documentSeparator keeps the YAML output of several inputs one valid stream.
var documentSeparator = []byte("---\n")

// run converts every input with convert, --jobs at a time, and writes the
// results in argument order, separated by sep. Nothing is written if any
// input fails.
func (c *cli) run(sep []byte, convert func(data []byte) ([]byte, error)) error {
	files := c.files
	if len(files) == 0 {
		files = []string{"-"}
	}

	results := make([][]byte, len(files))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(c.jobs)
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := c.read(name)
			if err != nil {
				return err
			}
			out, err := convert(data)
			if err != nil {
				return errors.WithMessage(err, name)
			}
			level.Debug(c.logger).Log("msg", "converted", "file", name, "bytes_in", len(data), "bytes_out", len(out))
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	wrote := false
	for _, out := range results {
		if len(out) == 0 {
			continue
		}
		if wrote && len(sep) > 0 {
			out = append(append([]byte{}, sep...), out...)
		}
		wrote = true
		if _, err := c.stdout.Write(out); err != nil {
			return errors.Wrap(err, "write output")
		}
	}
	c.reportMetrics()
	return nil
}

// read returns the contents of the named input. kingpin passes a lone "-"
// argument through as "", so both mean stdin.
func (c *cli) read(name string) ([]byte, error) {
	if name == "-" || name == "" {
		data, err := io.ReadAll(c.stdin)
		return data, errors.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(name)
	return data, errors.Wrap(err, "read input")
}

func (c *cli) reportMetrics() {
	if !c.logMetrics {
		return
	}
	families, err := c.registry.Gather()
	if err != nil {
		level.Warn(c.logger).Log("msg", "failed to gather metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			kv := []interface{}{"msg", "counter", "name", mf.GetName()}
			for _, l := range m.GetLabel() {
				kv = append(kv, l.GetName(), l.GetValue())
			}
			kv = append(kv, "value", m.GetCounter().GetValue())
			level.Info(c.logger).Log(kv...)
		}
	}
}
