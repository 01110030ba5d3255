package normalize

import "strings"

// NormalizeKey produces the canonical designator key: trimmed and
// case-folded. Raw strings from two different sources are never
// compared directly; both go through this function first.
func NormalizeKey(designator string) string {
	return strings.ToUpper(strings.TrimSpace(designator))
}

// blankCell reports whether a spreadsheet cell carries no value.
// Spreadsheet exports render missing values as "nan" or "None".
func blankCell(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return true
	}
	return false
}
