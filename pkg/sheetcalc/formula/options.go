package formula

import "fmt"

// DefaultMaxFormulaLength bounds the length of a formula, in bytes.
const DefaultMaxFormulaLength = 8192

// ChainMode controls how a reference to another formula cell is resolved.
type ChainMode int

const (
	// ChainOff substitutes 0 for a referenced formula cell.
	ChainOff ChainMode = iota
	// ChainResolve evaluates referenced formula cells recursively and
	// reports #CYCLE! when a formula depends on itself.
	ChainResolve
)

func (m ChainMode) String() string {
	switch m {
	case ChainOff:
		return "off"
	case ChainResolve:
		return "resolve"
	}
	return fmt.Sprintf("ChainMode(%d)", int(m))
}

// ParseChainMode parses "off" or "resolve".
func ParseChainMode(s string) (ChainMode, error) {
	switch s {
	case "", "off":
		return ChainOff, nil
	case "resolve":
		return ChainResolve, nil
	}
	return ChainOff, fmt.Errorf("invalid chain mode: %s (must be off or resolve)", s)
}

// Settings configures an Evaluator.
type Settings struct {
	// Chain selects how referenced formula cells are resolved.
	Chain ChainMode
	// MaxFormulaLength rejects longer formulas with #ERROR!. Zero means
	// DefaultMaxFormulaLength.
	MaxFormulaLength int
	// MaxDepth bounds expression nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// OnError, if set, is called for every formula that evaluates to a
	// sentinel error value.
	OnError func(formula string, err error)
}

// DefaultSettings returns the default evaluator settings.
func DefaultSettings() Settings {
	return Settings{
		Chain:            ChainOff,
		MaxFormulaLength: DefaultMaxFormulaLength,
		MaxDepth:         DefaultMaxDepth,
	}
}

// Option modifies Settings.
type Option func(*Settings)

// WithSettings replaces all settings at once.
func WithSettings(s Settings) Option {
	return func(dst *Settings) { *dst = s }
}

// WithChain sets the chain mode.
func WithChain(m ChainMode) Option {
	return func(s *Settings) { s.Chain = m }
}

// WithMaxFormulaLength sets the formula length limit.
func WithMaxFormulaLength(n int) Option {
	return func(s *Settings) { s.MaxFormulaLength = n }
}

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(n int) Option {
	return func(s *Settings) { s.MaxDepth = n }
}

// WithErrorHandler sets the OnError callback.
func WithErrorHandler(fn func(formula string, err error)) Option {
	return func(s *Settings) { s.OnError = fn }
}
