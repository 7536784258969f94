package models

// Workbook is a named collection of sheets, as loaded from one input file.
type Workbook struct {
	// Name is the source file name (no path).
	Name string `json:"name" yaml:"name"`
	// Sheets holds the sheets in file order.
	Sheets []Sheet `json:"sheets" yaml:"sheets"`
}

// Sheet returns the sheet with the given name or id.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name || w.Sheets[i].ID == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}
