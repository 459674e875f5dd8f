package preview

import (
	"fmt"
	"strings"

	"kitman/internal/markup"
)

// Tree formats a parse as an indented node dump. The console's --tree flag
// uses it to show operators exactly how the game client will group a body.
func Tree(nodes []markup.Node) string {
	var b strings.Builder
	writeTree(&b, nodes, 0)
	return b.String()
}

func writeTree(b *strings.Builder, nodes []markup.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch n.Kind {
		case markup.KindText:
			fmt.Fprintf(b, "%stext %q\n", indent, n.Text)
		case markup.KindColor:
			fmt.Fprintf(b, "%scolor %s\n", indent, n.Value)
			writeTree(b, n.Children, depth+1)
		case markup.KindBold:
			fmt.Fprintf(b, "%sbold\n", indent)
			writeTree(b, n.Children, depth+1)
		case markup.KindItalic:
			fmt.Fprintf(b, "%sitalic\n", indent)
			writeTree(b, n.Children, depth+1)
		}
	}
}
