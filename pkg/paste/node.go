package paste

import "strings"

// NodeType distinguishes text from element nodes.
type NodeType uint8

const (
	TextNode NodeType = iota
	ElementNode
)

// Attribute is a single name/value pair. Attribute order is preserved.
type Attribute struct {
	Key string
	Val string
}

// Node is either a text node (Data holds the content) or an element (Data
// holds the lower-case tag name). A parent exclusively owns its children.
type Node struct {
	Type     NodeType
	Data     string
	Attr     []Attribute
	Children []*Node
}

// NewText returns a text node.
func NewText(content string) *Node {
	return &Node{Type: TextNode, Data: content}
}

// NewElement returns an element owning children.
func NewElement(tag string, children ...*Node) *Node {
	return &Node{Type: ElementNode, Data: strings.ToLower(tag), Children: children}
}

// IsElement reports whether n is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n.Type == ElementNode && n.Data == tag
}

// GetAttr returns the value of key and whether it was present.
func (n *Node) GetAttr(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val, adding the attribute if absent. It reports whether
// the element changed.
func (n *Node) SetAttr(key, val string) bool {
	for i, a := range n.Attr {
		if a.Key == key {
			if a.Val == val {
				return false
			}
			n.Attr[i].Val = val
			return true
		}
	}
	n.Attr = append(n.Attr, Attribute{Key: key, Val: val})
	return true
}

// RemoveAttr removes key and reports whether it was present.
func (n *Node) RemoveAttr(key string) bool {
	removed := false
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key == key {
			removed = true
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
	return removed
}

// shallowCopy returns an element with n's tag and attributes and no children.
func (n *Node) shallowCopy() *Node {
	c := &Node{Type: n.Type, Data: n.Data}
	if len(n.Attr) > 0 {
		c.Attr = append([]Attribute(nil), n.Attr...)
	}
	return c
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*Node)
	walk = func(c *Node) {
		if c.Type == TextNode {
			sb.WriteString(c.Data)
			return
		}
		for _, gc := range c.Children {
			walk(gc)
		}
	}
	walk(n)
	return sb.String()
}

// Fragment is the ordered sequence of top-level nodes of one paste payload.
// The host may keep the fragment it was handed as the live tree; image
// handlers check membership against it.
type Fragment struct {
	Nodes []*Node
}

// Walk calls fn for every node in document order. Returning false from fn
// skips that node's children.
func (f *Fragment) Walk(fn func(n *Node) bool) {
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) && n.Type == ElementNode {
				walk(n.Children)
			}
		}
	}
	walk(f.Nodes)
}

// Contains reports whether target is attached anywhere in the fragment.
func (f *Fragment) Contains(target *Node) bool {
	found := false
	f.Walk(func(n *Node) bool {
		if n == target {
			found = true
		}
		return !found
	})
	return found
}

// Remove detaches target from the fragment. It returns ErrNodeNotFound when
// target is not attached.
func (f *Fragment) Remove(target *Node) error {
	if removeFrom(&f.Nodes, target) {
		return nil
	}
	return ErrNodeNotFound
}

func removeFrom(nodes *[]*Node, target *Node) bool {
	for i, n := range *nodes {
		if n == target {
			*nodes = append((*nodes)[:i], (*nodes)[i+1:]...)
			return true
		}
		if n.Type == ElementNode && removeFrom(&n.Children, target) {
			return true
		}
	}
	return false
}

// Elements returns every element with the given tag in document order.
func (f *Fragment) Elements(tag string) []*Node {
	var out []*Node
	f.Walk(func(n *Node) bool {
		if n.IsElement(tag) {
			out = append(out, n)
		}
		return true
	})
	return out
}
