package sheetgrid

// GridTheme carries every color token the core paints with. All colors
// are injected — spec.md section 6.5 forbids hex literals in the core
// outside of these defaults, the same discipline the teacher's
// ColorScheme/DefaultColorScheme pair enforces for dark/light terminal
// colors.
type GridTheme struct {
	GridBg                  string
	GridLine                string
	CellText                string
	ErrorText               string
	HeaderBg                string
	HeaderText              string
	SelectionFill           string
	SelectionBorder         string
	SelectionHandle         string
	FreezeLine              string
	CommentIndicator        string
	CommentIndicatorResolved string
	RemotePresenceDefault   string
}

// DarkGridTheme returns the default dark-mode theme.
func DarkGridTheme() GridTheme {
	return GridTheme{
		GridBg:                   "#1e1e1e",
		GridLine:                 "#3c3c3c",
		CellText:                 "#d4d4d4",
		ErrorText:                "#f87171",
		HeaderBg:                 "#252526",
		HeaderText:               "#cccccc",
		SelectionFill:            "#264f7833",
		SelectionBorder:          "#3b82f6",
		SelectionHandle:          "#3b82f6",
		FreezeLine:               "#6b7280",
		CommentIndicator:         "#f59e0b",
		CommentIndicatorResolved: "#6b7280",
		RemotePresenceDefault:    "#a78bfa",
	}
}

// LightGridTheme returns the default light-mode theme.
func LightGridTheme() GridTheme {
	return GridTheme{
		GridBg:                   "#ffffff",
		GridLine:                 "#e0e0e0",
		CellText:                 "#1e1e1e",
		ErrorText:                "#dc2626",
		HeaderBg:                 "#f3f3f3",
		HeaderText:               "#333333",
		SelectionFill:            "#1a73e81f",
		SelectionBorder:          "#1a73e8",
		SelectionHandle:          "#1a73e8",
		FreezeLine:               "#9ca3af",
		CommentIndicator:         "#d97706",
		CommentIndicatorResolved: "#9ca3af",
		RemotePresenceDefault:    "#7c3aed",
	}
}

// ThemePair bundles dark/light GridThemes and resolves between them, the
// same shape the teacher's ColorScheme uses for Foreground/Background.
type ThemePair struct {
	Dark  GridTheme
	Light GridTheme
}

// DefaultThemePair returns the built-in dark/light theme pair.
func DefaultThemePair() ThemePair {
	return ThemePair{Dark: DarkGridTheme(), Light: LightGridTheme()}
}

// ResolveForMode returns the Dark or Light theme depending on isDark.
func (p ThemePair) ResolveForMode(isDark bool) GridTheme {
	if isDark {
		return p.Dark
	}
	return p.Light
}
