package models

// Sheet is a table of rows described by an ordered column list.
type Sheet struct {
	// ID is the sheet identifier.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Name is the display name of the sheet.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Columns is the ordered column list.
	Columns []Column `json:"columns" yaml:"columns"`
	// Rows holds the raw row data, formulas included.
	Rows []Row `json:"rows" yaml:"rows"`
}
