package paste

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parser turns raw markup into an owned Fragment.
type parser struct {
	schema   *Schema
	maxBytes int
}

func tooLarge(limit int) error {
	return &ParseError{Err: fmt.Errorf("%w: %d bytes", ErrInputTooLarge, limit)}
}

// parse reads r into a Fragment. When the markup is a full document only the
// body's children are kept; without a body the whole tree is used. Elements
// the schema drops are removed wherever they appear, not only inside head.
func (p *parser) parse(r io.Reader, stats *Stats) (*Fragment, error) {
	if p.maxBytes > 0 {
		r = io.LimitReader(r, int64(p.maxBytes)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if p.maxBytes > 0 && len(data) > p.maxBytes {
		return nil, tooLarge(p.maxBytes)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	var roots []*html.Node
	if body := doc.Find("body"); body.Length() > 0 {
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			roots = append(roots, c)
		}
	} else {
		for c := doc.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			roots = append(roots, c)
		}
	}

	frag := &Fragment{}
	for _, n := range roots {
		frag.Nodes = append(frag.Nodes, p.convert(n, stats)...)
	}
	return frag, nil
}

// convert copies an html.Node subtree into owned nodes. Comments, doctypes
// and dropped elements produce nothing.
func (p *parser) convert(n *html.Node, stats *Stats) []*Node {
	switch n.Type {
	case html.TextNode:
		return []*Node{NewText(n.Data)}
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if p.schema.IsMetadata(tag) {
			stats.RecordRemoval(tag)
			return nil
		}
		el := &Node{Type: ElementNode, Data: tag}
		if len(n.Attr) > 0 {
			el.Attr = make([]Attribute, 0, len(n.Attr))
			for _, a := range n.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + a.Key
				}
				el.Attr = append(el.Attr, Attribute{Key: key, Val: a.Val})
			}
		}
		if !p.schema.IsVoid(tag) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				el.Children = append(el.Children, p.convert(c, stats)...)
			}
		}
		return []*Node{el}
	case html.DocumentNode:
		var out []*Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = append(out, p.convert(c, stats)...)
		}
		return out
	default:
		return nil
	}
}

// fallbackFragment wraps raw input as a single paragraph of text.
func fallbackFragment(raw string) *Fragment {
	return &Fragment{Nodes: []*Node{NewElement("p", NewText(raw))}}
}
