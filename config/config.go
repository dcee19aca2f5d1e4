// Package config holds the run configuration for netfuse and its viper wiring.
//
// Values are resolved in viper's usual order: flags bound by the CLI, then
// NETFUSE_* environment variables, then the optional YAML file, then the
// defaults registered by SetDefaults. The resulting Config is passed
// explicitly to the pipeline; there is no process-wide instance.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// EnvPrefix is the environment variable prefix (NETFUSE_OUTPUT_DIR, ...).
const EnvPrefix = "NETFUSE"

// Config is the root configuration structure.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Input      InputConfig      `mapstructure:"input" yaml:"input"`
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess"`
	Inference  InferenceConfig  `mapstructure:"inference" yaml:"inference"`
	Combine    CombineConfig    `mapstructure:"combine" yaml:"combine"`
	GeneSets   GeneSetConfig    `mapstructure:"genesets" yaml:"genesets"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

// ColorConfig defines the console color per log level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// InputConfig describes how the measurement table is read.
type InputConfig struct {
	Path        string `mapstructure:"path" yaml:"path"`
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter"`
	HeaderRow   int    `mapstructure:"header_row" yaml:"header_row"`
	IndexColumn int    `mapstructure:"index_column" yaml:"index_column"`
}

// DelimiterRune returns the field delimiter. The escape `\t`, as typed in a
// shell or YAML single-quoted string, means a tab.
func (c InputConfig) DelimiterRune() (rune, error) {
	d := c.Delimiter
	if d == `\t` {
		d = "\t"
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("input.delimiter %q must be a single character: %w", c.Delimiter, ErrInvalidConfig)
	}
	r, _ := utf8.DecodeRuneInString(d)

	return r, nil
}

// PreprocessConfig controls orientation, missing-value filling and standardization.
type PreprocessConfig struct {
	SamplesOnRows bool    `mapstructure:"samples_on_rows" yaml:"samples_on_rows"`
	FillValue     float64 `mapstructure:"fill_value" yaml:"fill_value"`
	Standardize   bool    `mapstructure:"standardize" yaml:"standardize"`
}

// InferenceConfig selects the methods and the worker pool size.
type InferenceConfig struct {
	Methods    []string `mapstructure:"methods" yaml:"methods"`
	Workers    int      `mapstructure:"workers" yaml:"workers"`
	Resume     bool     `mapstructure:"resume" yaml:"resume"`
	Correction string   `mapstructure:"correction" yaml:"correction"`
	Alpha      float64  `mapstructure:"alpha" yaml:"alpha"`
}

// CombineConfig selects the consensus combiner and its tuning knobs.
type CombineConfig struct {
	Method       string  `mapstructure:"method" yaml:"method"`
	SummaTol     float64 `mapstructure:"summa_tol" yaml:"summa_tol"`
	SummaMaxIter int     `mapstructure:"summa_max_iter" yaml:"summa_max_iter"`
	SNFNeighbors int     `mapstructure:"snf_neighbors" yaml:"snf_neighbors"`
	SNFIter      int     `mapstructure:"snf_iterations" yaml:"snf_iterations"`
	SNFTol       float64 `mapstructure:"snf_tol" yaml:"snf_tol"`
}

// GeneSetConfig enables gene-set mode when Path is set.
type GeneSetConfig struct {
	Path              string `mapstructure:"path" yaml:"path"`
	StandardizePerSet bool   `mapstructure:"standardize_per_set" yaml:"standardize_per_set"`
}

// OutputConfig controls where and how edge lists are written.
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Scaled bool   `mapstructure:"scaled" yaml:"scaled"`
}

// SetDefaults registers every default so the app can run with a minimal config.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "netfuse")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("input.delimiter", "\t")
	v.SetDefault("input.header_row", 0)
	v.SetDefault("input.index_column", 0)

	v.SetDefault("preprocess.samples_on_rows", true)
	v.SetDefault("preprocess.fill_value", 0.0)
	v.SetDefault("preprocess.standardize", true)

	v.SetDefault("inference.methods", []string{})
	v.SetDefault("inference.workers", 4)
	v.SetDefault("inference.resume", false)
	v.SetDefault("inference.correction", "b-h")
	v.SetDefault("inference.alpha", 0.05)

	v.SetDefault("combine.method", "summa")
	v.SetDefault("combine.summa_tol", 1e-3)
	v.SetDefault("combine.summa_max_iter", 500)
	v.SetDefault("combine.snf_neighbors", 20)
	v.SetDefault("combine.snf_iterations", 20)
	v.SetDefault("combine.snf_tol", 1e-9)

	v.SetDefault("genesets.standardize_per_set", false)

	v.SetDefault("output.dir", "netfuse-out")
	v.SetDefault("output.scaled", false)
}

// BindEnv makes every key overridable through NETFUSE_<SECTION>_<KEY>.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Default returns a Config populated only from SetDefaults.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, _ := Load(v)

	return cfg
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values no component could run with. Method and combiner
// names are checked later against their registries.
func (c *Config) Validate() error {
	var problems []string
	if _, err := c.Input.DelimiterRune(); err != nil {
		problems = append(problems, fmt.Sprintf("input.delimiter %q must be a single character", c.Input.Delimiter))
	}
	if c.Input.HeaderRow < 0 {
		problems = append(problems, "input.header_row must be >= 0")
	}
	if c.Input.IndexColumn < -1 {
		problems = append(problems, "input.index_column must be >= -1")
	}
	if c.Inference.Workers < 1 {
		problems = append(problems, "inference.workers must be >= 1")
	}
	if c.Inference.Alpha <= 0 || c.Inference.Alpha >= 1 {
		problems = append(problems, "inference.alpha must be in (0, 1)")
	}
	if c.Combine.SummaTol <= 0 {
		problems = append(problems, "combine.summa_tol must be > 0")
	}
	if c.Combine.SummaMaxIter < 1 {
		problems = append(problems, "combine.summa_max_iter must be >= 1")
	}
	if c.Combine.SNFNeighbors < 1 {
		problems = append(problems, "combine.snf_neighbors must be >= 1")
	}
	if c.Combine.SNFIter < 1 {
		problems = append(problems, "combine.snf_iterations must be >= 1")
	}
	if c.Combine.SNFTol < 0 {
		problems = append(problems, "combine.snf_tol must be >= 0")
	}
	if c.Output.Dir == "" {
		problems = append(problems, "output.dir must not be empty")
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logger.format %q must be console or json", c.Logger.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}
