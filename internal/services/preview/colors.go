package preview

import "strings"

// FallbackColorHex is shown for color names outside the table, including the tagger's "unknown"
const FallbackColorHex = "#808080"

// colorTable holds the names the tagger assigns as dominant image colors
var colorTable = map[string]string{
	"red":    "#ff0000",
	"green":  "#00ff00",
	"blue":   "#0000ff",
	"black":  "#000000",
	"white":  "#ffffff",
	"yellow": "#ffff00",
	"purple": "#800080",
	"orange": "#ffa500",
	"brown":  "#a52a2a",
	"pink":   "#ffc0cb",
	"gray":   "#808080",
}

// ColorHex resolves a color name to its swatch value
func ColorHex(name string) string {
	if hex, ok := colorTable[strings.ToLower(strings.TrimSpace(name))]; ok {
		return hex
	}
	return FallbackColorHex
}
