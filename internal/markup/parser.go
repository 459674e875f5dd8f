package markup

import "strings"

// DefaultMaxDepth bounds tag nesting during parsing. Operator-authored
// announcements sit nowhere near it; it exists so adversarial input cannot
// grow the stack without limit, since the CRUD layer enforces no length cap
// on the stored string.
const DefaultMaxDepth = 64

const (
	colorOpen  = "<color="
	colorClose = "</color>"
	boldOpen   = "<b>"
	boldClose  = "</b>"
	italicOpen = "<i>"
	itClose    = "</i>"
)

// Parse scans preprocessed announcement text into an ordered node tree.
//
// The grammar is matched case-insensitively. Recovery from malformed input is
// defined, never an error: an unterminated <color=...> swallows the rest of
// the input as its body, an unterminated <b> or <i> yields an empty span and
// scanning continues, and any other <...> sequence is discarded outright.
// Color closers are matched depth-aware across nested color spans; bold and
// italic closers are matched by first occurrence with no depth tracking. The
// asymmetry mirrors the game client renderer, which is the authority on how
// this dialect degrades, so it is reproduced here rather than repaired.
//
// Parse is total and pure: no input panics, errors, or loops forever, and
// equal inputs always produce structurally equal trees.
func Parse(text string) []Node {
	return ParseWithLimit(text, DefaultMaxDepth)
}

// ParseWithLimit is Parse with an explicit nesting bound. Nesting at or past
// the bound fails closed: the span body is kept as literal text instead of
// being parsed. Non-positive limits fall back to DefaultMaxDepth.
func ParseWithLimit(text string, maxDepth int) []Node {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{src: text, maxDepth: maxDepth}
	return p.parseRange(0, len(text), 0)
}

// parser scans a single immutable source string. Recursion passes index
// extents into src rather than substrings, so the only strings constructed
// during a parse are the Text leaves.
type parser struct {
	src      string
	maxDepth int
}

// parseRange parses src[start:end) into a node sequence. The cursor advances
// by at least one byte per iteration, which guarantees termination on any
// finite input.
func (p *parser) parseRange(start, end, depth int) []Node {
	var nodes []Node
	i := start
	for i < end {
		if p.src[i] != '<' {
			j := i + 1
			for j < end && p.src[j] != '<' {
				j++
			}
			nodes = append(nodes, Node{Kind: KindText, Text: p.src[i:j]})
			i = j
			continue
		}

		if value, bodyStart, ok := p.colorOpenAt(i, end); ok {
			bodyEnd, next := p.colorCloseFrom(bodyStart, end)
			nodes = append(nodes, Node{
				Kind:     KindColor,
				Value:    NormalizeColor(value),
				Children: p.parseBody(bodyStart, bodyEnd, depth),
			})
			i = next
			continue
		}

		if kind, ok := p.simpleOpenAt(i, end); ok {
			bodyStart := i + len(boldOpen)
			closer := boldClose
			if kind == KindItalic {
				closer = itClose
			}
			if closeAt := foldIndex(p.src, bodyStart, end, closer); closeAt >= 0 {
				nodes = append(nodes, Node{
					Kind:     kind,
					Children: p.parseBody(bodyStart, closeAt, depth),
				})
				i = closeAt + len(closer)
			} else {
				// No closer anywhere ahead: the span stays empty and
				// scanning resumes right after the opener, so the tail
				// becomes sibling nodes. Color does the opposite.
				nodes = append(nodes, Node{Kind: kind})
				i = bodyStart
			}
			continue
		}

		// Unrecognized tag: drop everything through the next '>', or just
		// the '<' itself when the input ends first.
		if gt := strings.IndexByte(p.src[i:end], '>'); gt >= 0 {
			i += gt + 1
		} else {
			i++
		}
	}
	return nodes
}

// parseBody parses a span body, enforcing the nesting bound. At the bound
// the raw body is preserved as a literal text leaf.
func (p *parser) parseBody(start, end, depth int) []Node {
	if start >= end {
		return nil
	}
	if depth+1 >= p.maxDepth {
		return []Node{{Kind: KindText, Text: p.src[start:end]}}
	}
	return p.parseRange(start, end, depth+1)
}

// colorOpenAt matches a color opener at i. The value is whatever sits
// between '=' and the next '>'; without a '>' before end there is no opener
// and the '<' falls through to unknown-tag handling.
func (p *parser) colorOpenAt(i, end int) (value string, bodyStart int, ok bool) {
	if !foldPrefixAt(p.src, i, end, colorOpen) {
		return "", 0, false
	}
	valueStart := i + len(colorOpen)
	gt := strings.IndexByte(p.src[valueStart:end], '>')
	if gt < 0 {
		return "", 0, false
	}
	return p.src[valueStart : valueStart+gt], valueStart + gt + 1, true
}

// colorCloseFrom finds the extent of a color body using a depth-aware scan:
// every nested color opener increments, every </color> decrements, and the
// body ends at the closer that returns the depth to zero. With no such
// closer the body runs to the end of the input.
func (p *parser) colorCloseFrom(start, end int) (bodyEnd, next int) {
	depth := 1
	for j := start; j < end; j++ {
		if p.src[j] != '<' {
			continue
		}
		if foldPrefixAt(p.src, j, end, colorOpen) {
			depth++
			j += len(colorOpen) - 1
			continue
		}
		if foldPrefixAt(p.src, j, end, colorClose) {
			depth--
			if depth == 0 {
				return j, j + len(colorClose)
			}
			j += len(colorClose) - 1
		}
	}
	return end, end
}

// simpleOpenAt matches a bold or italic opener at i.
func (p *parser) simpleOpenAt(i, end int) (NodeKind, bool) {
	if foldPrefixAt(p.src, i, end, boldOpen) {
		return KindBold, true
	}
	if foldPrefixAt(p.src, i, end, italicOpen) {
		return KindItalic, true
	}
	return KindText, false
}

// foldPrefixAt reports whether pat occurs at s[i:] within [i:end), comparing
// ASCII letters case-insensitively. pat must be lowercase.
func foldPrefixAt(s string, i, end int, pat string) bool {
	if end-i < len(pat) {
		return false
	}
	for k := 0; k < len(pat); k++ {
		c := s[i+k]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != pat[k] {
			return false
		}
	}
	return true
}

// foldIndex returns the first occurrence of pat in s[start:end), folded as
// in foldPrefixAt, or -1. All patterns start with '<', so other bytes are
// skipped without comparison.
func foldIndex(s string, start, end int, pat string) int {
	for j := start; j+len(pat) <= end; j++ {
		if s[j] != '<' {
			continue
		}
		if foldPrefixAt(s, j, end, pat) {
			return j
		}
	}
	return -1
}
