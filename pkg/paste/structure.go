package paste

// structureCleaner unwraps wrapper elements and removes foreign UI elements.
// It runs leaves-first so nested wrappers collapse from the inside out.
type structureCleaner struct {
	schema *Schema
}

func (structureCleaner) name() string { return "structure" }

func (c structureCleaner) apply(f *Fragment, stats *Stats) {
	f.Nodes = c.clean(f.Nodes, stats)
}

func (c structureCleaner) clean(nodes []*Node, stats *Stats) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != ElementNode {
			out = append(out, n)
			continue
		}
		if c.schema.Drops(n.Data) {
			stats.RecordRemoval(n.Data)
			continue
		}
		n.Children = c.clean(n.Children, stats)
		if c.schema.Unwraps(n.Data) {
			if len(n.Children) == 0 {
				stats.RecordRemoval(n.Data)
				continue
			}
			stats.RecordUnwrap(n.Data)
			out = append(out, n.Children...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// attributeStripper removes presentational attributes from every element.
type attributeStripper struct {
	keys []string
}

func newAttributeStripper() attributeStripper {
	return attributeStripper{keys: []string{"style", "class"}}
}

func (attributeStripper) name() string { return "attributes" }

func (s attributeStripper) apply(f *Fragment, stats *Stats) {
	f.Walk(func(n *Node) bool {
		if n.Type != ElementNode {
			return false
		}
		for _, key := range s.keys {
			if n.RemoveAttr(key) {
				stats.AttributesRemoved++
			}
		}
		return true
	})
}
