package main

import (
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"

	"github.com/Neumenon/yamlv/yamlv"
)

// settings binds yamlv.Config to command line flags. A config file replaces
// the defaults; flags given on the command line override the file.
type settings struct {
	file      string
	flags     yamlv.Config
	overrides []override
}

type override struct {
	set   *bool
	apply func(dst, src *yamlv.Config)
}

type flagger interface {
	Flag(name, help string) *kingpin.FlagClause
}

func (s *settings) register(app flagger) {
	app.Flag("config.file", "YAML file with conversion settings.").StringVar(&s.file)

	s.flag(app, "decode-binary", "Decode !!binary scalars from base64.",
		func(dst, src *yamlv.Config) { dst.DecodeBinary = src.DecodeBinary }).
		Default("true").BoolVar(&s.flags.DecodeBinary)
	s.flag(app, "timestamps", "How timestamps are resolved: off, unix or time.",
		func(dst, src *yamlv.Config) { dst.DecodeTimestamp = src.DecodeTimestamp }).
		Default(yamlv.TimestampUnix.String()).SetValue(&s.flags.DecodeTimestamp)
	s.flag(app, "flow-threshold", "Collections with more entries than this are written in block style.",
		func(dst, src *yamlv.Config) { dst.FlowThreshold = src.FlowThreshold }).
		Default(strconv.Itoa(yamlv.DefaultFlowThreshold)).IntVar(&s.flags.FlowThreshold)
	s.flag(app, "compact", "Write every collection in flow style.",
		func(dst, src *yamlv.Config) { dst.ForceFlow = src.ForceFlow }).
		BoolVar(&s.flags.ForceFlow)
	s.flag(app, "line-width", "Strings longer than this are written folded. -1 for unlimited.",
		func(dst, src *yamlv.Config) { dst.LineWidth = src.LineWidth }).
		Default(strconv.Itoa(yamlv.DefaultLineWidth)).IntVar(&s.flags.LineWidth)
	s.flag(app, "max-depth", "Maximum collection nesting depth.",
		func(dst, src *yamlv.Config) { dst.MaxDepth = src.MaxDepth }).
		Default(strconv.Itoa(yamlv.DefaultMaxDepth)).IntVar(&s.flags.MaxDepth)
}

func (s *settings) flag(app flagger, name, help string, apply func(dst, src *yamlv.Config)) *kingpin.FlagClause {
	set := new(bool)
	s.overrides = append(s.overrides, override{set: set, apply: apply})
	return app.Flag(name, help).IsSetByUser(set)
}

// config returns the effective settings.
func (s *settings) config() (yamlv.Config, error) {
	if s.file == "" {
		cfg := s.flags
		return cfg, errors.Wrap(cfg.Validate(), "invalid flags")
	}

	data, err := os.ReadFile(s.file)
	if err != nil {
		return yamlv.Config{}, errors.Wrap(err, "read config file")
	}
	cfg, err := yamlv.LoadConfig(data)
	if err != nil {
		return yamlv.Config{}, errors.Wrap(err, s.file)
	}
	for _, o := range s.overrides {
		if *o.set {
			o.apply(&cfg, &s.flags)
		}
	}
	return cfg, errors.Wrap(cfg.Validate(), "invalid flags")
}
