package paste

import "fmt"

// verifier checks a rich paste fragment against the schema. Any finding
// means an earlier pass missed something; findings are reported, never fixed.
type verifier struct {
	schema *Schema
}

func (v verifier) check(f *Fragment) []Warning {
	var out []Warning
	add := func(msg, context string) {
		out = append(out, Warning{
			Kind:    KindStructuralViolation,
			Phase:   "verify",
			Message: msg,
			Context: context,
		})
	}

	for i, n := range f.Nodes {
		if n.Type != ElementNode || !v.schema.IsTopLevel(n.Data) {
			add("illegal top-level node", fmt.Sprintf("index=%d node=%s", i, describe(n)))
		}
	}

	f.Walk(func(n *Node) bool {
		if n.Type == TextNode {
			if isVacuous(n.Data) {
				add("vacuous text node", fmt.Sprintf("%q", n.Data))
			}
			return false
		}
		switch {
		case v.schema.Unwraps(n.Data), v.schema.Drops(n.Data):
			add("element outside the schema", n.Data)
		case n.Data == "pre":
			add("preformatted block", n.Data)
		}
		if canonical, ok := v.schema.Alias(n.Data); ok {
			add("alias tag not rewritten", n.Data+"->"+canonical)
		}
		for _, key := range []string{"style", "class"} {
			if _, ok := n.GetAttr(key); ok {
				add("presentational attribute", n.Data+"@"+key)
			}
		}
		return true
	})
	return out
}

func describe(n *Node) string {
	if n.Type == TextNode {
		return fmt.Sprintf("text %q", n.Data)
	}
	return "<" + n.Data + ">"
}
