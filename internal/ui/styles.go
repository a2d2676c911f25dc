package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (teal #2DD4BF): Highlights, record names, interactive elements
// - Muted (gray): Secondary info, ids, timestamps
// - No colored success/error/warning - use unicode symbols only

var (
	// Accent style for record names, filter text, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#2DD4BF"))

	// Muted style for secondary info, hints, ids
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#2DD4BF")).Bold(true)
)

var (
	accentColor string
	codeTheme   string
)

// ConfigureTheme applies a user-configured accent color. Values "none", "off",
// "default", and the empty string disable the configured accent.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// SetCodeTheme sets the Chroma theme for rendered markdown code blocks.
func SetCodeTheme(theme string) {
	codeTheme = theme
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

// normalizeAccentColor validates an accent color value: an ANSI color code
// ("0" to "255") or a hex color ("#RGB" or "#RRGGBB", expanded to six digits).
func normalizeAccentColor(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "none", "off", "default":
		return "", false
	}

	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) == 3 {
			expanded := make([]byte, 6)
			for i := 0; i < 3; i++ {
				expanded[2*i] = hex[i]
				expanded[2*i+1] = hex[i]
			}
			hex = string(expanded)
		}
		if len(hex) != 6 {
			return "", false
		}
		for i := 0; i < len(hex); i++ {
			c := hex[i]
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				return "", false
			}
		}
		return "#" + hex, true
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 255 {
		return "", false
	}
	return v, true
}
