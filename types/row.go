package types

import "maps"

// Row is a single result row keyed by column name
type Row map[string]any

// Clone returns a shallow copy so callers can decorate a row without
// mutating the one handed out by the cursor
func (r Row) Clone() Row {
	return maps.Clone(r)
}
