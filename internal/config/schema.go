package config

import (
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/formula"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/output"
)

// Config is the sheetcalc configuration
type Config struct {
	Version string       `mapstructure:"version" yaml:"version"`
	Engine  EngineConfig `mapstructure:"engine" yaml:"engine"`
	Batch   BatchConfig  `mapstructure:"batch" yaml:"batch"`
	Output  OutputConfig `mapstructure:"output" yaml:"output"`
}

// EngineConfig configures formula evaluation
type EngineConfig struct {
	Chain            string `mapstructure:"chain" yaml:"chain"` // "off" or "resolve"
	MaxFormulaLength int    `mapstructure:"max_formula_length" yaml:"max_formula_length"`
	MaxDepth         int    `mapstructure:"max_depth" yaml:"max_depth"`
}

// BatchConfig configures multi-sheet recomputation
type BatchConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"` // 0 = one per CPU
}

// OutputConfig configures result serialization
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
	Locale string `mapstructure:"locale" yaml:"locale"`
}

// Options converts the engine and batch settings to recompute options.
func (c *Config) Options() (sheetcalc.Options, error) {
	chain, err := formula.ParseChainMode(c.Engine.Chain)
	if err != nil {
		return sheetcalc.Options{}, err
	}
	opts := sheetcalc.DefaultOptions()
	opts.Chain = chain
	if c.Engine.MaxFormulaLength > 0 {
		opts.MaxFormulaLength = c.Engine.MaxFormulaLength
	}
	if c.Engine.MaxDepth > 0 {
		opts.MaxDepth = c.Engine.MaxDepth
	}
	opts.Workers = c.Batch.Workers
	return opts, nil
}

// OutputFormat returns the configured output format.
func (c *Config) OutputFormat() (output.Format, error) {
	return output.ParseFormat(c.Output.Format)
}
