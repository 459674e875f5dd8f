package markup

// Run is one stretch of output text with a single resolved style. Flatten
// emits runs in reading order; terminal styling and width clamping are
// applied downstream and never feed back into parsing.
type Run struct {
	Text   string
	Color  string
	Bold   bool
	Italic bool
}

// Plain reports whether the run carries no styling at all.
func (r Run) Plain() bool {
	return r.Color == "" && !r.Bold && !r.Italic
}

// Flatten renders a node tree into its flat run sequence. The walk carries
// inherited style state down the tree: the innermost enclosing color wins
// and emphasis accumulates, so <b><i>x</i></b> yields a single run that is
// both bold and italic. Flatten is pure; equal trees produce equal runs.
func Flatten(nodes []Node) []Run {
	var runs []Run
	flattenInto(&runs, nodes, runStyle{})
	return runs
}

type runStyle struct {
	color  string
	bold   bool
	italic bool
}

func flattenInto(runs *[]Run, nodes []Node, st runStyle) {
	for _, n := range nodes {
		switch n.Kind {
		case KindText:
			if n.Text == "" {
				continue
			}
			*runs = append(*runs, Run{
				Text:   n.Text,
				Color:  st.color,
				Bold:   st.bold,
				Italic: st.italic,
			})
		case KindColor:
			child := st
			child.color = n.Value
			flattenInto(runs, n.Children, child)
		case KindBold:
			child := st
			child.bold = true
			flattenInto(runs, n.Children, child)
		case KindItalic:
			child := st
			child.italic = true
			flattenInto(runs, n.Children, child)
		}
	}
}
