// Package sheetcalc recomputes the formula cells of project sheets.
package sheetcalc

import (
	"runtime"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/formula"
)

// Options configures sheet recomputation.
type Options struct {
	// Chain selects how a reference to another formula cell is resolved.
	Chain formula.ChainMode
	// MaxFormulaLength rejects longer formulas with #ERROR!.
	// Zero means formula.DefaultMaxFormulaLength.
	MaxFormulaLength int
	// MaxDepth bounds expression nesting. Zero means formula.DefaultMaxDepth.
	MaxDepth int
	// Workers bounds the number of sheets computed in parallel by
	// ComputeSheets. Zero means runtime.NumCPU().
	Workers int
	// OnError, if set, is called for every formula cell that evaluates to a
	// sentinel error value. ComputeSheets may call it from several
	// goroutines at once.
	OnError func(issue FormulaIssue)
}

// DefaultOptions returns default recompute options.
func DefaultOptions() Options {
	return Options{
		Chain:            formula.ChainOff,
		MaxFormulaLength: formula.DefaultMaxFormulaLength,
		MaxDepth:         formula.DefaultMaxDepth,
	}
}

// WorkerCount returns the effective number of parallel workers.
func (o Options) WorkerCount() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) settings() formula.Settings {
	return formula.Settings{
		Chain:            o.Chain,
		MaxFormulaLength: o.MaxFormulaLength,
		MaxDepth:         o.MaxDepth,
	}
}
