package ui

import (
	"strings"
	"testing"
)

func TestThemeFromName(t *testing.T) {
	if ThemeFromName("light").IsDark {
		t.Fatalf("expected light theme")
	}
	if !ThemeFromName("dark").IsDark {
		t.Fatalf("expected dark theme")
	}
	if !ThemeFromName("").IsDark {
		t.Fatalf("expected dark fallback for empty name")
	}
}

func TestNewStylesCarriesTheme(t *testing.T) {
	styles := NewStyles(LightTheme())
	if styles.Theme.IsDark {
		t.Fatalf("expected light theme carried into styles")
	}
	if styles.Theme.Primary != LightPrimary {
		t.Fatalf("expected light primary color")
	}
}

func TestRenderDivider(t *testing.T) {
	styles := DefaultStyles()
	if got := styles.RenderDivider(0); got != "" {
		t.Fatalf("expected empty divider for zero width, got %q", got)
	}
	if !strings.Contains(styles.RenderDivider(5), "─────") {
		t.Fatalf("expected five rule characters")
	}
}
