package paste

// textReducer turns a cleaned fragment into its unformatted equivalent for
// text paste. Headings and quotes become paragraphs, inline formats are
// unwrapped, and links become plain text. Every node is classified once in a
// single top-down traversal. Lists and tables keep their shape while their
// content is still reduced.
type textReducer struct {
	schema *Schema
}

func (textReducer) name() string { return "reduce" }

func (r textReducer) apply(f *Fragment, stats *Stats) {
	f.Nodes = r.reduce(f.Nodes, stats)
}

func (r textReducer) reduce(nodes []*Node, stats *Stats) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != ElementNode {
			out = append(out, n)
			continue
		}

		switch {
		case n.Data == "a":
			if _, ok := n.GetAttr("href"); !ok {
				stats.LinksDropped++
				continue
			}
			stats.LinksFlattened++
			if text := n.TextContent(); text != "" {
				out = append(out, NewText(text))
			}

		case r.schema.IsInlineFormat(n.Data):
			stats.FormatsUnwrapped++
			out = append(out, r.reduce(n.Children, stats)...)

		case r.schema.IsMinimalStyle(n.Data):
			stats.StylesFlattened++
			out = append(out, r.flattenStyle(n, stats)...)

		default:
			hadChildren := len(n.Children) > 0
			n.Children = r.reduce(n.Children, stats)
			if n.Data == "p" && hadChildren && len(n.Children) == 0 {
				stats.RecordRemoval(n.Data)
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// flattenStyle replaces a heading or quote with a paragraph holding its
// reduced children. A quote that holds blocks is spliced instead, with each
// run of inline content getting its own paragraph.
func (r textReducer) flattenStyle(n *Node, stats *Stats) []*Node {
	hadChildren := len(n.Children) > 0
	children := r.reduce(n.Children, stats)
	if hadChildren && len(children) == 0 {
		return nil
	}

	hasBlock := false
	for _, c := range children {
		if c.Type == ElementNode && r.schema.IsBlock(c.Data) {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		return []*Node{NewElement("p", children...)}
	}

	var out []*Node
	var run *Node
	for _, c := range children {
		if c.Type == ElementNode && r.schema.IsBlock(c.Data) {
			run = nil
			out = append(out, c)
			continue
		}
		if run == nil {
			run = NewElement("p")
			out = append(out, run)
		}
		run.Children = append(run.Children, c)
	}
	return out
}
