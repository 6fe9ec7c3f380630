package paste

import (
	"strings"
)

// Text is escaped the way a browser serializes innerHTML: only the
// characters that would change the parse are replaced, so U+00A0 stays a
// literal character.
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// Render serializes nodes to HTML. Void elements are written without a
// closing tag or self-closing slash.
func Render(schema *Schema, nodes []*Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		render(&sb, schema, n)
	}
	return sb.String()
}

// HTML serializes the fragment with the default schema.
func (f *Fragment) HTML() string {
	return Render(defaultSchema, f.Nodes)
}

func render(sb *strings.Builder, schema *Schema, n *Node) {
	if n.Type == TextNode {
		sb.WriteString(textEscaper.Replace(n.Data))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.Data)
	for _, a := range n.Attr {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(attrEscaper.Replace(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if schema.IsVoid(n.Data) {
		return
	}
	for _, c := range n.Children {
		render(sb, schema, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.Data)
	sb.WriteByte('>')
}
