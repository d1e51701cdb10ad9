// Package config loads analysis profiles from YAML and converts them into
// the option structs of the algorithms package.
package config

import (
	"fmt"
	"os"

	"github.com/dd0wney/cluso-subgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-subgraph/pkg/ingest"
	"github.com/dd0wney/cluso-subgraph/pkg/logging"
	"github.com/dd0wney/cluso-subgraph/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Config is a complete analysis profile
type Config struct {
	Communities CommunitiesConfig `yaml:"communities"`
	Ties        TiesConfig        `yaml:"ties"`
	Matrix      MatrixConfig      `yaml:"matrix"`
	Match       MatchConfig       `yaml:"match"`
	Bridges     BridgesConfig     `yaml:"bridges"`
	Detect      DetectConfig      `yaml:"detect"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Log         LogConfig         `yaml:"log"`
}

// CommunitiesConfig selects the top communities. Proportion, when set,
// takes precedence over Top.
type CommunitiesConfig struct {
	Top        int     `yaml:"top"`
	Proportion float64 `yaml:"proportion"`
}

// TiesConfig configures the tie composition analysis
type TiesConfig struct {
	Weighted   bool   `yaml:"weighted"`   // count repeated ties separately
	Scope      string `yaml:"scope"`      // all, selected
	Degenerate string `yaml:"degenerate"` // fail, skip
}

// MatrixConfig configures the shared-tie matrix
type MatrixConfig struct {
	Mode       string `yaml:"mode"` // both, sent, received
	Normalize  bool   `yaml:"normalize"`
	Reciprocal bool   `yaml:"reciprocal"`
}

// SampleConfig picks members per community by proportion or allowlist
type SampleConfig struct {
	Proportion float64  `yaml:"proportion"`
	Allowlist  []string `yaml:"allowlist,omitempty"`
}

// MatchConfig configures cross-snapshot matching
type MatchConfig struct {
	Sample       SampleConfig `yaml:"sample"`
	Weighted     bool         `yaml:"weighted"`
	Threshold    float64      `yaml:"threshold"`
	Cooccurrence float64      `yaml:"cooccurrence"`
	Ratio        float64      `yaml:"ratio"`
}

// BridgesConfig configures intermediary detection
type BridgesConfig struct {
	Sample   SampleConfig `yaml:"sample"`
	Ratio    float64      `yaml:"ratio"`
	ZeroPad  bool         `yaml:"zero_pad"`
	Weighted bool         `yaml:"weighted"`
}

// DetectConfig configures label propagation when no partition is supplied
type DetectConfig struct {
	MaxIterations int    `yaml:"max_iterations"`
	Seed          uint64 `yaml:"seed"`
}

// IngestConfig configures edge and partition readers
type IngestConfig struct {
	Delimiter string `yaml:"delimiter"`
	Header    bool   `yaml:"header"` // first row is a header
	AWSRegion string `yaml:"aws_region"`
	// Query selects source, target rows for postgres:// edge sources
	Query string `yaml:"query"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in profile: top 10 communities, unweighted
// ties, 1% samples for matching and 10% samples for intermediaries.
func Default() *Config {
	return &Config{
		Communities: CommunitiesConfig{Top: 10},
		Ties:        TiesConfig{Scope: "all", Degenerate: "fail"},
		Matrix:      MatrixConfig{Mode: "both"},
		Match: MatchConfig{
			Sample:       SampleConfig{Proportion: 0.01},
			Weighted:     true,
			Threshold:    0.3,
			Cooccurrence: 0.1,
		},
		Bridges: BridgesConfig{
			Sample:   SampleConfig{Proportion: 0.1},
			Ratio:    0.5,
			Weighted: true,
		},
		Detect: DetectConfig{MaxIterations: 100, Seed: 1},
		Ingest: IngestConfig{Delimiter: ","},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a YAML profile; keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML profile over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the profile as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	root := validation.Check("")

	communities := root.Section("communities")
	if c.Communities.Proportion != 0 {
		communities.Proportion("proportion", c.Communities.Proportion)
	} else {
		communities.AtLeast("top", c.Communities.Top, 1)
	}

	root.Section("ties").
		OneOf("scope", c.Ties.Scope, "all", "selected").
		OneOf("degenerate", c.Ties.Degenerate, "fail", "skip")

	root.Section("matrix").OneOf("mode", c.Matrix.Mode, "both", "sent", "received")

	checkSample(root.Section("match").Section("sample"), c.Match.Sample)
	root.Section("match").
		Threshold("threshold", c.Match.Threshold).
		Threshold("cooccurrence", c.Match.Cooccurrence).
		Threshold("ratio", c.Match.Ratio).
		If(c.Match.Cooccurrence > c.Match.Threshold, func(v *validation.Checker) {
			v.Func("cooccurrence", func() error {
				return fmt.Errorf("%v exceeds match threshold %v", c.Match.Cooccurrence, c.Match.Threshold)
			})
		})

	checkSample(root.Section("bridges").Section("sample"), c.Bridges.Sample)
	root.Section("bridges").Threshold("ratio", c.Bridges.Ratio)

	root.Section("detect").AtLeast("max_iterations", c.Detect.MaxIterations, 1)

	root.Section("ingest").
		If(len([]rune(c.Ingest.Delimiter)) != 1, func(v *validation.Checker) {
			v.Func("delimiter", func() error {
				return fmt.Errorf("must be a single character, got %q", c.Ingest.Delimiter)
			})
		})

	root.Section("log").Func("level", func() error {
		_, err := logging.ParseLevel(c.Log.Level)
		return err
	})

	return root.Err()
}

func checkSample(v *validation.Checker, s SampleConfig) {
	if len(s.Allowlist) > 0 {
		v.Func("allowlist", func() error { return validation.Allowlist(s.Allowlist) })
		return
	}
	v.Proportion("proportion", s.Proportion)
}

// TopK returns the partition filter selector.
func (c *Config) TopK() algorithms.TopK {
	if c.Communities.Proportion != 0 {
		return algorithms.TopKProportion(c.Communities.Proportion)
	}
	return algorithms.TopKCount(c.Communities.Top)
}

// TieOptions returns the tie composition options.
func (c *Config) TieOptions() algorithms.TieOptions {
	opts := algorithms.DefaultTieOptions()
	opts.Unweighted = !c.Ties.Weighted
	if c.Ties.Scope == "selected" {
		opts.Scope = algorithms.ScopeSelected
	}
	if c.Ties.Degenerate == "skip" {
		opts.Degenerate = algorithms.DegenerateSkip
	}
	return opts
}

// MatrixOptions returns the shared-tie matrix options.
func (c *Config) MatrixOptions() algorithms.MatrixOptions {
	opts := algorithms.MatrixOptions{
		Normalize:  c.Matrix.Normalize,
		Reciprocal: c.Matrix.Reciprocal,
	}
	switch c.Matrix.Mode {
	case "sent":
		opts.Mode = algorithms.ModeSent
	case "received":
		opts.Mode = algorithms.ModeReceived
	default:
		opts.Mode = algorithms.ModeBoth
	}
	return opts
}

// MatchOptions returns the cross-snapshot matching options.
func (c *Config) MatchOptions() algorithms.MatchOptions {
	return algorithms.MatchOptions{
		Sample:                c.Match.Sample.sample(),
		Weighted:              c.Match.Weighted,
		MatchThreshold:        c.Match.Threshold,
		CooccurrenceThreshold: c.Match.Cooccurrence,
		RatioThreshold:        c.Match.Ratio,
	}
}

// BridgeOptions returns the intermediary detection options.
func (c *Config) BridgeOptions() algorithms.BridgeOptions {
	return algorithms.BridgeOptions{
		Sample:     c.Bridges.Sample.sample(),
		Ratio:      c.Bridges.Ratio,
		ZeroPad:    c.Bridges.ZeroPad,
		Unweighted: !c.Bridges.Weighted,
	}
}

// CSVOptions returns the delimited reader options.
func (c *Config) CSVOptions() ingest.CSVOptions {
	opts := ingest.DefaultCSVOptions()
	if r := []rune(c.Ingest.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	opts.Header = c.Ingest.Header
	return opts
}

func (s SampleConfig) sample() algorithms.Sample {
	if len(s.Allowlist) > 0 {
		return algorithms.SampleAllowlist(s.Allowlist...)
	}
	return algorithms.SampleProportion(s.Proportion)
}
