package models

import "strings"

// Reserved row keys. They carry row metadata and are never formula targets.
const (
	KeyID           = "id"
	KeyComments     = "comments"
	KeyAttachments  = "attachments"
	KeyDependencies = "dependencies"
)

// Sentinel cell values produced by the formula engine.
const (
	// ErrorValue replaces a formula that failed to parse or evaluate.
	ErrorValue = "#ERROR!"
	// CycleValue replaces a formula that depends on itself when chaining is enabled.
	CycleValue = "#CYCLE!"
)

// Row maps column id to cell value. Values are string, float64, int, int64,
// bool or nil, plus the reserved metadata keys.
type Row map[string]interface{}

// ID returns the row identifier, or "" when none is set.
func (r Row) ID() string {
	if id, ok := r[KeyID].(string); ok {
		return id
	}
	return ""
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// HasFormula reports whether any cell of the row holds a formula.
func (r Row) HasFormula() bool {
	for k, v := range r {
		if IsReserved(k) {
			continue
		}
		if IsFormula(v) {
			return true
		}
	}
	return false
}

// IsReserved reports whether key is a row metadata key.
func IsReserved(key string) bool {
	switch key {
	case KeyID, KeyComments, KeyAttachments, KeyDependencies:
		return true
	}
	return false
}

// IsFormula reports whether v is a formula string (a string starting with '=').
func IsFormula(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, "=")
}

// IsSentinel reports whether v is one of the engine's error sentinels.
func IsSentinel(v interface{}) bool {
	s, ok := v.(string)
	return ok && (s == ErrorValue || s == CycleValue)
}
