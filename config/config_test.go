package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "\t", cfg.Input.Delimiter)
	assert.True(t, cfg.Preprocess.Standardize)
	assert.True(t, cfg.Preprocess.SamplesOnRows)
	assert.Equal(t, "summa", cfg.Combine.Method)
	assert.Equal(t, 500, cfg.Combine.SummaMaxIter)
	assert.Equal(t, 20, cfg.Combine.SNFNeighbors)
	assert.Equal(t, "b-h", cfg.Inference.Correction)
	assert.InDelta(t, 0.05, cfg.Inference.Alpha, 1e-12)
	assert.Empty(t, cfg.Inference.Methods)
	assert.False(t, cfg.Output.Scaled)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	yamlConfig := []byte(`
inference:
  methods: [pearson, clr]
  workers: 2
combine:
  method: snf
genesets:
  path: sets.gmt
  standardize_per_set: true
output:
  dir: /tmp/out
  scaled: true
`)
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"pearson", "clr"}, cfg.Inference.Methods)
	assert.Equal(t, 2, cfg.Inference.Workers)
	assert.Equal(t, "snf", cfg.Combine.Method)
	assert.Equal(t, "sets.gmt", cfg.GeneSets.Path)
	assert.True(t, cfg.GeneSets.StandardizePerSet)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.True(t, cfg.Output.Scaled)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1e-3, cfg.Combine.SummaTol)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero workers", func(c *Config) { c.Inference.Workers = 0 }},
		{"alpha out of range", func(c *Config) { c.Inference.Alpha = 1.5 }},
		{"empty delimiter", func(c *Config) { c.Input.Delimiter = "" }},
		{"multi-character delimiter", func(c *Config) { c.Input.Delimiter = ";;" }},
		{"unknown escape", func(c *Config) { c.Input.Delimiter = `\n` }},
		{"bad index column", func(c *Config) { c.Input.IndexColumn = -2 }},
		{"bad snf k", func(c *Config) { c.Combine.SNFNeighbors = 0 }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	for in, want := range map[string]rune{
		"\t": '\t',
		`\t`: '\t',
		",":  ',',
		"§":  '§',
	} {
		got, err := InputConfig{Delimiter: in}.DelimiterRune()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := InputConfig{Delimiter: "ab"}.DelimiterRune()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NETFUSE_COMBINE_METHOD", "mean")
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "mean", cfg.Combine.Method)
}
