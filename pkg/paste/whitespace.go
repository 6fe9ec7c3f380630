package paste

import (
	"strings"
)

const nbsp = "\u00a0"

// whitespaceNormalizer makes literal whitespace survive insertion into a
// whitespace-collapsing document: vacuous text goes, newlines become breaks
// or empty paragraphs, and indentation becomes non-breaking spaces.
type whitespaceNormalizer struct {
	schema   *Schema
	tabWidth int
}

func (whitespaceNormalizer) name() string { return "whitespace" }

func (w whitespaceNormalizer) apply(f *Fragment, stats *Stats) {
	f.Nodes = w.removeEmptyText(f.Nodes, stats)
	f.Nodes = w.wrapBreaks(f.Nodes, true, stats)
	f.Nodes = w.patchNewlines(f.Nodes, true, stats)
	w.patchTabs(f.Nodes, stats)
}

// isVacuous reports whether text would vanish under whitespace collapsing.
func isVacuous(text string) bool {
	return strings.TrimSpace(text) == "" && !strings.Contains(text, nbsp)
}

func (w whitespaceNormalizer) removeEmptyText(nodes []*Node, stats *Stats) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == TextNode {
			if isVacuous(n.Data) {
				stats.TextNodesRemoved++
				continue
			}
		} else {
			n.Children = w.removeEmptyText(n.Children, stats)
		}
		out = append(out, n)
	}
	return out
}

// wrapBreaks gives every standalone BR its own empty paragraph. A BR is
// standalone when nothing follows it, or what follows is neither text nor
// another BR. Only positions that may hold a paragraph are rewritten.
func (w whitespaceNormalizer) wrapBreaks(nodes []*Node, blockOK bool, stats *Stats) []*Node {
	for i, n := range nodes {
		if n.Type != ElementNode {
			continue
		}
		n.Children = w.wrapBreaks(n.Children, w.schema.IsBlockContainer(n.Data), stats)
		if blockOK && n.Data == "br" && isStandaloneBreak(nodes, i) {
			nodes[i] = NewElement("p", n)
			stats.BreaksWrapped++
		}
	}
	return nodes
}

func isStandaloneBreak(nodes []*Node, i int) bool {
	if i+1 >= len(nodes) {
		return true
	}
	next := nodes[i+1]
	return next.Type != TextNode && !next.IsElement("br")
}

func (w whitespaceNormalizer) patchNewlines(nodes []*Node, blockOK bool, stats *Stats) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == ElementNode {
			n.Children = w.patchNewlines(n.Children, w.schema.IsBlockContainer(n.Data), stats)
			out = append(out, n)
			continue
		}
		if !strings.Contains(n.Data, "\n") {
			out = append(out, n)
			continue
		}
		stats.NewlinesPatched += strings.Count(n.Data, "\n")
		if blockOK {
			out = append(out, splitBlockLines(n.Data)...)
		} else {
			out = append(out, splitInlineLines(n.Data)...)
		}
	}
	return out
}

// splitBlockLines is used where a paragraph is legal. Each empty line becomes
// an empty paragraph; adjacent non-empty lines are joined by a BR.
func splitBlockLines(text string) []*Node {
	var out []*Node
	prevText := false
	for i, seg := range strings.Split(text, "\n") {
		if seg == "" {
			out = append(out, emptyParagraph())
			prevText = false
			continue
		}
		if i > 0 {
			seg = indentToNbsp(seg)
		}
		if isVacuous(seg) {
			continue
		}
		if prevText {
			out = append(out, NewElement("br"))
		}
		out = append(out, NewText(seg))
		prevText = true
	}
	return out
}

// splitInlineLines is used inside phrasing content, where no block may be
// inserted. Every interior newline becomes a BR; newlines at the edges of the
// text are dropped.
func splitInlineLines(text string) []*Node {
	segs := strings.Split(text, "\n")
	for len(segs) > 0 && segs[0] == "" {
		segs = segs[1:]
	}
	for len(segs) > 0 && segs[len(segs)-1] == "" {
		segs = segs[:len(segs)-1]
	}

	var out []*Node
	for i, seg := range segs {
		if i > 0 {
			out = append(out, NewElement("br"))
			seg = indentToNbsp(seg)
		}
		if seg == "" || isVacuous(seg) {
			continue
		}
		out = append(out, NewText(seg))
	}
	return out
}

func emptyParagraph() *Node {
	return NewElement("p", NewElement("br"))
}

// indentToNbsp converts the leading run of plain spaces to non-breaking spaces.
func indentToNbsp(seg string) string {
	n := 0
	for n < len(seg) && seg[n] == ' ' {
		n++
	}
	if n == 0 {
		return seg
	}
	return strings.Repeat(nbsp, n) + seg[n:]
}

func (w whitespaceNormalizer) patchTabs(nodes []*Node, stats *Stats) {
	expanded := strings.Repeat(nbsp, w.tabWidth)
	for _, n := range nodes {
		if n.Type == ElementNode {
			w.patchTabs(n.Children, stats)
			continue
		}
		if count := strings.Count(n.Data, "\t"); count > 0 {
			n.Data = strings.ReplaceAll(n.Data, "\t", expanded)
			stats.TabsExpanded += count
		}
	}
}
