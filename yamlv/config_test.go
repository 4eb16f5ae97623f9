package yamlv

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_RegisterFlags(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, DefaultConfig(), cfg)

	require.NoError(t, fs.Parse([]string{
		"-yaml.decode-binary=false",
		"-yaml.decode-timestamp=time",
		"-yaml.flow-threshold=2",
		"-yaml.force-flow",
		"-yaml.line-width=-1",
		"-yaml.max-depth=64",
	}))
	assert.Equal(t, Config{
		DecodeBinary:    false,
		DecodeTimestamp: TimestampTime,
		FlowThreshold:   2,
		ForceFlow:       true,
		LineWidth:       -1,
		MaxDepth:        64,
	}, cfg)
	require.NoError(t, cfg.Validate())

	assert.Error(t, fs.Parse([]string{"-yaml.decode-timestamp=sometimes"}))
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]func(*Config){
		"timestamp mode": func(c *Config) { c.DecodeTimestamp = 7 },
		"flow threshold": func(c *Config) { c.FlowThreshold = -1 },
		"zero width":     func(c *Config) { c.LineWidth = 0 },
		"negative width": func(c *Config) { c.LineWidth = -2 },
		"max depth":      func(c *Config) { c.MaxDepth = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestTimestampMode(t *testing.T) {
	var m TimestampMode
	for in, want := range map[string]TimestampMode{
		"off": TimestampOff, "0": TimestampOff,
		"unix": TimestampUnix, "1": TimestampUnix,
		"time": TimestampTime, "2": TimestampTime,
	} {
		require.NoError(t, m.Set(in))
		assert.Equal(t, want, m)
	}
	assert.Equal(t, "unix", TimestampUnix.String())
	assert.Equal(t, "TimestampMode(9)", TimestampMode(9).String())

	out, err := yaml.Marshal(map[string]TimestampMode{"mode": TimestampTime})
	require.NoError(t, err)
	assert.Equal(t, "mode: time\n", string(out))
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig([]byte("decode_timestamp: off\nflow_threshold: 3\n"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.DecodeTimestamp = TimestampOff
	want.FlowThreshold = 3
	assert.Equal(t, want, cfg)

	_, err = LoadConfig([]byte("max_depth: 0\n"))
	assert.Error(t, err)

	_, err = LoadConfig([]byte("decode_timestamp: [1]\n"))
	assert.Error(t, err)
}
