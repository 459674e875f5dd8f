package markup

import (
	"sort"
	"strings"
)

// namedColors maps the color names the game client accepts to hex triplets.
// Lookup is case-insensitive; grey and gray are both accepted. The values
// mirror the client's palette, so a named color previews with exactly the hex
// the client would use.
var namedColors = map[string]string{
	"aqua":      "#00FFFF",
	"black":     "#000000",
	"blue":      "#0000FF",
	"brown":     "#A52A2A",
	"cyan":      "#00FFFF",
	"darkblue":  "#0000A0",
	"fuchsia":   "#FF00FF",
	"gray":      "#808080",
	"green":     "#008000",
	"grey":      "#808080",
	"lightblue": "#ADD8E6",
	"lime":      "#00FF00",
	"magenta":   "#FF00FF",
	"maroon":    "#800000",
	"navy":      "#000080",
	"olive":     "#808000",
	"orange":    "#FFA500",
	"purple":    "#800080",
	"red":       "#FF0000",
	"silver":    "#C0C0C0",
	"teal":      "#008080",
	"white":     "#FFFFFF",
	"yellow":    "#FFFF00",
}

// NormalizeColor resolves a color token from a <color=...> opener. Known
// names map to their hex triplet; anything else, hex or junk, is passed
// through unchanged. The token is never validated: the client is the
// authority on what it can display, and the preview must not be stricter
// than the client.
func NormalizeColor(value string) string {
	if hex, ok := namedColors[strings.ToLower(value)]; ok {
		return hex
	}
	return value
}

// NamedColor reports the hex value for a recognized color name.
func NamedColor(name string) (string, bool) {
	hex, ok := namedColors[strings.ToLower(name)]
	return hex, ok
}

// ColorNames returns the recognized color names in sorted order, for the
// syntax reference and the console color legend.
func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for name := range namedColors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
