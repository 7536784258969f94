package config

import (
	"os"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/formula"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Engine: EngineConfig{
			Chain:            formula.ChainOff.String(),
			MaxFormulaLength: formula.DefaultMaxFormulaLength,
			MaxDepth:         formula.DefaultMaxDepth,
		},
		Batch: BatchConfig{
			Workers: 0,
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: false,
			Locale: "en",
		},
	}
}

// WriteDefault writes the default configuration to a file
func WriteDefault(path string) error {
	content := `# sheetcalc configuration
version: "1"

# Formula evaluation
engine:
  # How a reference to another formula cell resolves:
  #   off     - the referenced formula reads as 0
  #   resolve - the referenced formula is evaluated; cycles yield #CYCLE!
  chain: off
  # Longer formulas evaluate to #ERROR!
  max_formula_length: 8192
  # Maximum expression nesting
  max_depth: 64

# Multi-sheet recomputation
batch:
  # Sheets computed in parallel (0 = one per CPU)
  workers: 0

# Result serialization
output:
  format: json  # json, yaml, xlsx, table
  pretty: false
  locale: en    # number formatting for the table format
`
	return os.WriteFile(path, []byte(content), 0644)
}
