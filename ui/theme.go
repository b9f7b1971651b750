package ui

import "github.com/gdamore/tcell/v2"

// Colors - dark terminal palette
var (
	ColorBg        = tcell.NewRGBColor(16, 24, 32)     // Near-black background
	ColorFg        = tcell.NewRGBColor(192, 192, 192)  // Light gray text
	ColorBorder    = tcell.NewRGBColor(0, 255, 255)    // Cyan borders
	ColorTitle     = tcell.NewRGBColor(255, 255, 255)  // White titles
	ColorHighlight = tcell.NewRGBColor(0, 255, 255)    // Cyan highlight
	ColorAccent    = tcell.NewRGBColor(0, 128, 128)    // Teal buttons and bars
	ColorField     = tcell.NewRGBColor(0, 0, 64)       // Input field background
	ColorOwn       = tcell.NewRGBColor(255, 255, 255)  // Own messages
	ColorOther     = tcell.NewRGBColor(255, 255, 0)    // Other participants
	ColorSystem    = tcell.NewRGBColor(128, 128, 128)  // System messages
)
