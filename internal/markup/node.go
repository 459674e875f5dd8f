// Package markup implements the announcement markup pipeline: preprocessing
// of the stored escape convention, parsing of the inline tag dialect into a
// node tree, and rendering of that tree into styled text runs for the preview
// surfaces.
//
// The dialect is the one the game client understands: <color=VALUE>...</color>,
// <b>...</b> and <i>...</i>, all case-insensitive, plus the two-character
// escape \n for a line break. The stored announcement string is the canonical
// representation; this package never rewrites it. The parser is deliberately
// tolerant: its job is to predict what the in-game renderer will display for
// the same string, malformed input included, not to enforce well-formedness.
package markup

// NodeKind identifies the variant of a Node. The set is closed; every
// consumer switches over exactly these four cases.
type NodeKind int

const (
	// KindText is a leaf run of literal characters.
	KindText NodeKind = iota
	// KindColor is an inline color span. Value holds the normalized color.
	KindColor
	// KindBold is an inline bold span.
	KindBold
	// KindItalic is an inline italic span.
	KindItalic
)

// String returns the lowercase name of the kind, as used in tree dumps.
func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindColor:
		return "color"
	case KindBold:
		return "bold"
	case KindItalic:
		return "italic"
	default:
		return "unknown"
	}
}

// Node is one element of a parsed announcement tree. It is a tagged variant:
// Kind selects which payload fields are meaningful. Text is set only for
// KindText; Value only for KindColor; Children only for the three span kinds.
//
// A node owns its Children exclusively. There is no sharing and no parent
// back-reference, so trees can be copied, cached, or dropped freely.
type Node struct {
	Kind     NodeKind
	Text     string
	Value    string
	Children []Node
}

// TextNode returns a leaf node holding the given literal content.
func TextNode(content string) Node {
	return Node{Kind: KindText, Text: content}
}

// PlainText returns the concatenated literal content of the tree, all tags
// stripped. Line breaks introduced by preprocessing are preserved.
func PlainText(nodes []Node) string {
	var n int
	countText(nodes, &n)
	buf := make([]byte, 0, n)
	return string(appendText(buf, nodes))
}

func countText(nodes []Node, n *int) {
	for i := range nodes {
		if nodes[i].Kind == KindText {
			*n += len(nodes[i].Text)
			continue
		}
		countText(nodes[i].Children, n)
	}
}

func appendText(buf []byte, nodes []Node) []byte {
	for i := range nodes {
		if nodes[i].Kind == KindText {
			buf = append(buf, nodes[i].Text...)
			continue
		}
		buf = appendText(buf, nodes[i].Children)
	}
	return buf
}
