package markup

import (
	"sort"
	"strings"
	"testing"
)

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"named lowercase", "red", "#FF0000"},
		{"named uppercase", "RED", "#FF0000"},
		{"named mixed case", "DarkBlue", "#0000A0"},
		{"grey british", "grey", "#808080"},
		{"gray american", "gray", "#808080"},
		{"hex untouched", "#FF0000", "#FF0000"},
		{"hex case preserved", "#aBcDeF", "#aBcDeF"},
		{"short hex untouched", "#fff", "#fff"},
		{"unknown passes through", "bogus", "bogus"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeColor(tt.input); got != tt.want {
				t.Errorf("NormalizeColor(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeColor_AliasesAgree(t *testing.T) {
	aliases := [][2]string{
		{"grey", "gray"},
		{"cyan", "aqua"},
		{"magenta", "fuchsia"},
	}
	for _, pair := range aliases {
		if a, b := NormalizeColor(pair[0]), NormalizeColor(pair[1]); a != b {
			t.Errorf("aliases %q=%q and %q=%q should resolve identically", pair[0], a, pair[1], b)
		}
	}
}

func TestNamedColor(t *testing.T) {
	hex, ok := NamedColor("teal")
	if !ok || hex != "#008080" {
		t.Errorf("NamedColor(teal) = %q, %v", hex, ok)
	}
	if _, ok := NamedColor("TEAL"); !ok {
		t.Error("NamedColor should fold case")
	}
	if _, ok := NamedColor("nope"); ok {
		t.Error("NamedColor(nope) should not resolve")
	}
}

func TestColorNames(t *testing.T) {
	names := ColorNames()
	if !sort.StringsAreSorted(names) {
		t.Errorf("ColorNames() not sorted: %v", names)
	}
	if len(names) != len(namedColors) {
		t.Errorf("ColorNames() returned %d names, palette has %d", len(names), len(namedColors))
	}

	for _, required := range []string{"red", "grey", "gray", "lightblue", "darkblue"} {
		found := false
		for _, n := range names {
			if n == required {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("ColorNames() missing %q: %v", required, names)
		}
	}
}

func TestNamedColors_WellFormed(t *testing.T) {
	for name, hex := range namedColors {
		if name != strings.ToLower(name) {
			t.Errorf("palette key %q must be lowercase", name)
		}
		if len(hex) != 7 || hex[0] != '#' {
			t.Errorf("palette value %q for %q must be #RRGGBB", hex, name)
		}
		if hex != strings.ToUpper(hex) {
			t.Errorf("palette value %q for %q must be uppercase hex", hex, name)
		}
	}
}
