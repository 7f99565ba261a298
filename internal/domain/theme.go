package domain

// Theme is a named color scheme applied to a department header.
type Theme string

const (
	ThemeOrange Theme = "orange"
	ThemeBlue   Theme = "blue"
	ThemePurple Theme = "purple"
	// ThemeGray doubles as the "locked" look of a protected column.
	ThemeGray Theme = "gray"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeOrange, ThemeBlue, ThemePurple, ThemeGray:
		return true
	}
	return false
}

// Or returns t when valid, otherwise fallback.
func (t Theme) Or(fallback Theme) Theme {
	if t.Valid() {
		return t
	}
	return fallback
}

// Column is one of the fixed page columns.
type Column struct {
	Name         string
	DefaultTheme Theme
}

// Columns is the page layout, left to right.
var Columns = []Column{
	{Name: "行銷部", DefaultTheme: ThemeOrange},
	{Name: "電商部", DefaultTheme: ThemeBlue},
	{Name: "管理部", DefaultTheme: ThemePurple},
}
