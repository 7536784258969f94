package sheetcalc

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file could not be decoded.
var ErrInvalidFormat = errors.New("invalid sheet format")

// ErrUnsupportedFormat indicates an input extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrUnknownColumn indicates a formula reference that names no column.
var ErrUnknownColumn = errors.New("unknown column")

// ErrUnknownFunction indicates a call to a function the engine does not provide.
var ErrUnknownFunction = errors.New("unknown function")

// SheetError represents an error while loading or computing one sheet.
type SheetError struct {
	SheetName string
	Stage     string // "load", "compute"
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("%s error in sheet %q: %v", e.Stage, e.SheetName, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheetName, stage string, err error) *SheetError {
	return &SheetError{
		SheetName: sheetName,
		Stage:     stage,
		Err:       err,
	}
}
