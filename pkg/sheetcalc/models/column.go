// Package models defines the sheet data structures consumed by the formula engine.
package models

// ColumnType represents the kind of data a column holds.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnNumber   ColumnType = "number"
	ColumnDate     ColumnType = "date"
	ColumnDropdown ColumnType = "dropdown"
	ColumnCheckbox ColumnType = "checkbox"
	ColumnStatus   ColumnType = "status"
)

// Valid reports whether t is one of the known column types.
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnText, ColumnNumber, ColumnDate, ColumnDropdown, ColumnCheckbox, ColumnStatus:
		return true
	}
	return false
}

// Column describes a single sheet column.
type Column struct {
	// ID is the stable machine key used as the row map key.
	ID string `json:"id" yaml:"id"`
	// Title is the display label used inside formula references.
	Title string `json:"title" yaml:"title"`
	// Type is the column data type.
	Type ColumnType `json:"type" yaml:"type"`
	// Width is the rendered column width in pixels.
	Width int `json:"width" yaml:"width"`
	// Options lists the choices of a dropdown or status column.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}
