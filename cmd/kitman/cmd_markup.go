// Package main implements markup reference CLI commands for kitman.
// This file handles the color table and the syntax guide.
package main

import (
	"fmt"
	"strings"

	"kitman/internal/markup"
	"kitman/internal/preview"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// =============================================================================
// MARKUP REFERENCE COMMANDS
// =============================================================================

// markupCmd is the markup dialect reference
var markupCmd = &cobra.Command{
	Use:   "markup",
	Short: "Markup dialect reference",
	Long: `Reference material for the announcement markup dialect.

Subcommands:
  colors - Show every named color with a swatch
  guide  - Render the full syntax guide`,
	RunE: runMarkupGuide,
}

var markupColorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Show every named color with a swatch",
	RunE:  runMarkupColors,
}

var markupGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Render the full syntax guide",
	RunE:  runMarkupGuide,
}

func runMarkupColors(cmd *cobra.Command, args []string) error {
	names := markup.ColorNames()

	fmt.Println("Named colors:")
	fmt.Println(strings.Repeat("─", 40))
	for _, name := range names {
		hex, _ := markup.NamedColor(name)
		fmt.Printf("  %-10s %s  %s\n", name, hex, preview.Swatch(hex))
	}
	fmt.Println(strings.Repeat("─", 40))
	fmt.Printf("Total: %d names\n", len(names))
	fmt.Println("\nAnything else passes through untouched, so <color=#8B5CF6> works too.")
	return nil
}

func runMarkupGuide(cmd *cobra.Command, args []string) error {
	var renderer *glamour.TermRenderer
	var err error
	if cfg.UI.Theme == "light" {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	}
	if err != nil {
		// No styles, no problem: the guide is readable as plain markdown.
		fmt.Print(guideText + "\n")
		return nil
	}

	out, err := renderer.Render(guideText)
	if err != nil {
		fmt.Print(guideText + "\n")
		return nil
	}
	fmt.Print(out)
	return nil
}

// guideText is the operator-facing syntax guide.
const guideText = `# Announcement markup

Announcements are plain text with a few tags the game client understands.
What you type is exactly what is stored and sent to servers; kitman only
parses it to show you a faithful preview.

## Tags

| Tag | Effect |
|-----|--------|
| ` + "`<color=VALUE>...</color>`" + ` | Colored text |
| ` + "`<b>...</b>`" + ` | Bold |
| ` + "`<i>...</i>`" + ` | Italic |

Tag names are case-insensitive: ` + "`<B>`, `<COLOR=red>`, and `</I>`" + ` all
work. Tags nest freely:

    <color=red>Server restart in <b>5</b> minutes!</color>

## Colors

` + "`VALUE`" + ` is either a named color or a hex triplet:

    <color=yellow>Named.</color>
    <color=#FFD700>Hex, any case.</color>

Run ` + "`kitman markup colors`" + ` for the full list of names with swatches.
Unrecognized values are passed to the client untouched, so anything the
client accepts is fine here too.

## Line breaks

Write ` + "`\\n`" + ` for a line break:

    First line\nSecond line

A backslash without an ` + "`n`" + ` after it is kept as a literal backslash.

## When markup is wrong

The client never shows an error to players, and neither does the preview:

- Unknown tags like ` + "`<blink>`" + ` and their closers are dropped; the text
  between them is kept.
- A ` + "`<color>`" + ` that is never closed colors everything after it.
- A ` + "`<b>` or `<i>`" + ` that is never closed is dropped; the text after it
  stays plain.

The preview reproduces these rules, so if an announcement looks wrong in
kitman it would have looked wrong in game. Check tags with:

    kitman preview --tree "<color=red>hello <b>there</color>"
`

func init() {
	markupCmd.AddCommand(markupColorsCmd, markupGuideCmd)
}
