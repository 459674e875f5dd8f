package preview

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"kitman/internal/markup"
)

const ellipsis = "…"

// SplitLines splits runs at line feeds into per-line run slices. Runs never
// span lines in the result; a trailing line feed yields a final empty line.
func SplitLines(runs []markup.Run) [][]markup.Run {
	lines := [][]markup.Run{nil}
	for _, r := range runs {
		for {
			idx := strings.IndexByte(r.Text, '\n')
			if idx < 0 {
				break
			}
			if idx > 0 {
				seg := r
				seg.Text = r.Text[:idx]
				lines[len(lines)-1] = append(lines[len(lines)-1], seg)
			}
			lines = append(lines, nil)
			r.Text = r.Text[idx+1:]
		}
		if r.Text != "" {
			lines[len(lines)-1] = append(lines[len(lines)-1], r)
		}
	}
	return lines
}

// Clamp limits runs to at most maxLines display lines of at most width cells
// each. Width accounting is runewidth-aware so wide glyphs do not blow out a
// row. Anything cut is signalled with an ellipsis carrying the style of the
// run it cut. Non-positive maxLines means one line; non-positive width
// disables width clamping.
func Clamp(runs []markup.Run, maxLines, width int) [][]markup.Run {
	if maxLines <= 0 {
		maxLines = 1
	}

	lines := SplitLines(runs)
	dropped := len(lines) > maxLines
	if dropped {
		lines = lines[:maxLines]
	}

	out := make([][]markup.Run, len(lines))
	for i, line := range lines {
		out[i] = clampWidth(line, width)
	}

	if dropped {
		last := out[len(out)-1]
		if !endsWithMarker(last) {
			if width > 0 && lineWidth(last)+markerWidth() > width {
				last = truncateLine(last, width-markerWidth())
			}
			out[len(out)-1] = appendMarker(last, last)
		}
	}
	return out
}

// clampWidth truncates one line to the width budget, marker included.
func clampWidth(line []markup.Run, width int) []markup.Run {
	if width <= 0 || lineWidth(line) <= width {
		return line
	}
	return appendMarker(truncateLine(line, width-markerWidth()), line)
}

func lineWidth(line []markup.Run) int {
	w := 0
	for _, r := range line {
		w += runewidth.StringWidth(r.Text)
	}
	return w
}

func markerWidth() int {
	return runewidth.StringWidth(ellipsis)
}

// truncateLine cuts line down to at most cells display cells, keeping run
// styling on every surviving segment.
func truncateLine(line []markup.Run, cells int) []markup.Run {
	if cells <= 0 {
		return nil
	}
	var out []markup.Run
	used := 0
	for _, r := range line {
		var b strings.Builder
		for _, ru := range r.Text {
			rw := runewidth.RuneWidth(ru)
			if rw < 0 {
				rw = 0
			}
			if used+rw > cells {
				if b.Len() > 0 {
					seg := r
					seg.Text = b.String()
					out = append(out, seg)
				}
				return out
			}
			b.WriteRune(ru)
			used += rw
		}
		if b.Len() > 0 {
			seg := r
			seg.Text = b.String()
			out = append(out, seg)
		}
	}
	return out
}

// appendMarker adds the truncation ellipsis, styled like the run it cut so
// the marker reads as part of the clipped content.
func appendMarker(out, orig []markup.Run) []markup.Run {
	marker := markup.Run{Text: ellipsis}
	if n := len(out); n > 0 {
		marker = out[n-1]
		marker.Text = ellipsis
	} else if n := len(orig); n > 0 {
		marker = orig[n-1]
		marker.Text = ellipsis
	}
	return append(out, marker)
}

func endsWithMarker(line []markup.Run) bool {
	return len(line) > 0 && strings.HasSuffix(line[len(line)-1].Text, ellipsis)
}
