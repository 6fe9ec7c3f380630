package paste

// blockNormalizer enforces the block-level shape of the fragment: no
// preformatted blocks, canonical inline tags, and only top-level kinds as
// direct children of the root.
type blockNormalizer struct {
	schema *Schema
}

func (blockNormalizer) name() string { return "blocks" }

func (b blockNormalizer) apply(f *Fragment, stats *Stats) {
	b.flattenPre(f.Nodes, stats)
	b.rewriteAliases(f.Nodes, stats)
	f.Nodes = b.wrapOrphans(f.Nodes, stats)
}

// flattenPre replaces every PRE with a P holding the same children. The
// schema has no whitespace-preserving block, so that semantics is dropped.
func (b blockNormalizer) flattenPre(nodes []*Node, stats *Stats) {
	for i, n := range nodes {
		if n.Type != ElementNode {
			continue
		}
		b.flattenPre(n.Children, stats)
		if n.Data == "pre" {
			nodes[i] = NewElement("p", n.Children...)
			stats.PreFlattened++
		}
	}
}

// rewriteAliases replaces alias tags with their canonical form, children
// first so aliases nested at any depth are rewritten.
func (b blockNormalizer) rewriteAliases(nodes []*Node, stats *Stats) {
	for i, n := range nodes {
		if n.Type != ElementNode {
			continue
		}
		b.rewriteAliases(n.Children, stats)
		if canonical, ok := b.schema.Alias(n.Data); ok {
			nodes[i] = NewElement(canonical, n.Children...)
			stats.AliasesRewritten++
		}
	}
}

// wrapOrphans wraps each maximal run of root children that are not legal at
// the top level in one new paragraph, placed where the run started.
func (b blockNormalizer) wrapOrphans(nodes []*Node, stats *Stats) []*Node {
	out := make([]*Node, 0, len(nodes))
	var run *Node
	for _, n := range b.liftFlow(nodes, stats) {
		if n.Type == ElementNode && b.schema.IsTopLevel(n.Data) {
			run = nil
			out = append(out, n)
			continue
		}
		if run == nil {
			run = NewElement("p")
			out = append(out, run)
			stats.OrphanRunsWrapped++
		}
		run.Children = append(run.Children, n)
	}
	return out
}

// liftFlow splices the children of root-level flow containers into the root,
// since a paragraph cannot hold them, and drops root rules, which have no
// legal place at all. Inline elements that carry blocks are split around them.
func (b blockNormalizer) liftFlow(nodes []*Node, stats *Stats) []*Node {
	lifted := false
	for _, n := range nodes {
		if n.Type == ElementNode && (b.schema.IsFlowContainer(n.Data) || n.Data == "hr" || b.carriesBlock(n)) {
			lifted = true
			break
		}
	}
	if !lifted {
		return nodes
	}

	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n.Type != ElementNode:
			out = append(out, n)
		case n.Data == "hr":
			stats.RecordRemoval(n.Data)
		case b.schema.IsFlowContainer(n.Data):
			stats.RecordUnwrap(n.Data)
			out = append(out, b.liftFlow(n.Children, stats)...)
		case b.carriesBlock(n):
			stats.InlinesSplit++
			out = append(out, b.liftFlow(b.split(n), stats)...)
		default:
			out = append(out, n)
		}
	}
	return out
}

// carriesBlock reports whether n is a non-block element with a block
// descendant.
func (b blockNormalizer) carriesBlock(n *Node) bool {
	if n.Type != ElementNode || b.schema.IsBlock(n.Data) {
		return false
	}
	return b.hasBlock(n.Children)
}

func (b blockNormalizer) hasBlock(nodes []*Node) bool {
	for _, c := range nodes {
		if c.Type != ElementNode {
			continue
		}
		if b.schema.IsBlock(c.Data) || b.hasBlock(c.Children) {
			return true
		}
	}
	return false
}

// split breaks an inline element around its block descendants. Inline runs
// are wrapped in copies of n, and n is pushed down into each block, so no
// returned inline piece holds a block.
func (b blockNormalizer) split(n *Node) []*Node {
	if !b.carriesBlock(n) {
		return []*Node{n}
	}
	var out []*Node
	var run *Node
	for _, c := range n.Children {
		for _, piece := range b.split(c) {
			if piece.Type == ElementNode && b.schema.IsBlock(piece.Data) {
				run = nil
				b.pushDown(n, piece)
				out = append(out, piece)
				continue
			}
			if run == nil {
				run = n.shallowCopy()
				out = append(out, run)
			}
			run.Children = append(run.Children, piece)
		}
	}
	return out
}

// pushDown wraps the inline content of block in copies of wrapper, descending
// through nested blocks and table structure.
func (b blockNormalizer) pushDown(wrapper, block *Node) {
	out := make([]*Node, 0, len(block.Children))
	var run *Node
	for _, c := range block.Children {
		if c.Type == ElementNode && (b.schema.IsBlock(c.Data) || b.schema.IsTablePart(c.Data)) {
			run = nil
			if !b.schema.IsVoid(c.Data) {
				b.pushDown(wrapper, c)
			}
			out = append(out, c)
			continue
		}
		if run == nil {
			run = wrapper.shallowCopy()
			out = append(out, run)
		}
		run.Children = append(run.Children, c)
	}
	block.Children = out
}
