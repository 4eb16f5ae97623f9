package yamlv

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TimestampMode selects what an implicit timestamp scalar becomes.
type TimestampMode int

const (
	// TimestampOff keeps the scalar text as a string.
	TimestampOff TimestampMode = iota
	// TimestampUnix resolves to an Int of seconds since the Unix epoch.
	TimestampUnix
	// TimestampTime resolves to a Time value.
	TimestampTime
)

func (m TimestampMode) String() string {
	switch m {
	case TimestampOff:
		return "off"
	case TimestampUnix:
		return "unix"
	case TimestampTime:
		return "time"
	default:
		return fmt.Sprintf("TimestampMode(%d)", int(m))
	}
}

// Set implements flag.Value.
func (m *TimestampMode) Set(s string) error {
	switch s {
	case "off", "0":
		*m = TimestampOff
	case "unix", "1":
		*m = TimestampUnix
	case "time", "2":
		*m = TimestampTime
	default:
		return errors.Errorf("invalid timestamp mode %q (want off, unix or time)", s)
	}
	return nil
}

// UnmarshalYAML lets the mode be configured by name.
func (m *TimestampMode) UnmarshalYAML(value *yaml.Node) error {
	return m.Set(value.Value)
}

// MarshalYAML writes the mode by name.
func (m TimestampMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

const (
	DefaultFlowThreshold = 6
	DefaultLineWidth     = 80
	DefaultMaxDepth      = 10000
)

// Config holds the settings shared by building and walking. It is read-only
// once a build or walk starts.
type Config struct {
	DecodeBinary    bool          `yaml:"decode_binary"`
	DecodeTimestamp TimestampMode `yaml:"decode_timestamp"`
	FlowThreshold   int           `yaml:"flow_threshold"`
	ForceFlow       bool          `yaml:"force_flow"`
	LineWidth       int           `yaml:"line_width"`
	MaxDepth        int           `yaml:"max_depth"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		DecodeBinary:    true,
		DecodeTimestamp: TimestampUnix,
		FlowThreshold:   DefaultFlowThreshold,
		LineWidth:       DefaultLineWidth,
		MaxDepth:        DefaultMaxDepth,
	}
}

// RegisterFlags registers the settings on f.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix(f, "yaml.")
}

// RegisterFlagsWithPrefix registers the settings on f with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(f *flag.FlagSet, prefix string) {
	def := DefaultConfig()
	f.BoolVar(&cfg.DecodeBinary, prefix+"decode-binary", def.DecodeBinary, "Decode !!binary scalars from base64.")
	cfg.DecodeTimestamp = def.DecodeTimestamp
	f.Var(&cfg.DecodeTimestamp, prefix+"decode-timestamp", "How timestamps are resolved: off, unix or time.")
	f.IntVar(&cfg.FlowThreshold, prefix+"flow-threshold", def.FlowThreshold, "Collections with more entries than this are written in block style.")
	f.BoolVar(&cfg.ForceFlow, prefix+"force-flow", def.ForceFlow, "Write every collection in flow style.")
	f.IntVar(&cfg.LineWidth, prefix+"line-width", def.LineWidth, "Preferred line width. -1 for unlimited.")
	f.IntVar(&cfg.MaxDepth, prefix+"max-depth", def.MaxDepth, "Maximum collection nesting depth.")
}

// Validate checks the settings.
func (cfg *Config) Validate() error {
	if cfg.DecodeTimestamp < TimestampOff || cfg.DecodeTimestamp > TimestampTime {
		return errors.Errorf("invalid timestamp mode %d", int(cfg.DecodeTimestamp))
	}
	if cfg.FlowThreshold < 0 {
		return errors.New("flow threshold must not be negative")
	}
	if cfg.LineWidth == 0 || cfg.LineWidth < -1 {
		return errors.New("line width must be positive or -1")
	}
	if cfg.MaxDepth <= 0 {
		return errors.New("max depth must be positive")
	}
	return nil
}

// lineWidth returns the effective width; force-flow output is never wrapped.
func (cfg *Config) lineWidth() int {
	if cfg.ForceFlow {
		return -1
	}
	return cfg.LineWidth
}

// LoadConfig reads settings from YAML. Fields not present keep their defaults.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}
