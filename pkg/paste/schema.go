package paste

import "strings"

// Schema holds the editor's tag classification tables. A Schema is built once
// and never mutated afterwards, so a single value is shared by every sanitize
// call.
type Schema struct {
	topLevel        set
	inlineFormat    set
	lists           set
	tables          set
	tableParts      set
	void            set
	unwrap          set
	drop            set
	metadata        set
	minimalStyle    set
	blockContainers set
	flowContainers  set
	aliases         map[string]string
	screen          []string
}

type set map[string]struct{}

func newSet(tags ...string) set {
	s := make(set, len(tags))
	for _, t := range tags {
		s[strings.ToLower(t)] = struct{}{}
	}
	return s
}

func (s set) has(tag string) bool {
	_, ok := s[tag]
	return ok
}

var defaultSchema = newDefaultSchema()

// DefaultSchema returns the shared editor schema.
func DefaultSchema() *Schema {
	return defaultSchema
}

func newDefaultSchema() *Schema {
	s := &Schema{
		topLevel:     newSet("p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "table", "blockquote"),
		inlineFormat: newSet("b", "i", "u", "del", "sub", "sup", "code"),
		lists:        newSet("ul", "ol"),
		tables:       newSet("table"),
		tableParts:   newSet("caption", "colgroup", "col", "thead", "tbody", "tfoot", "tr", "th", "td"),
		void:         newSet("br", "img", "area", "col", "embed", "hr", "input", "link", "meta", "param"),
		unwrap:       newSet("span", "div"),
		drop:         newSet("label", "button"),
		metadata:     newSet("head", "meta", "title", "style", "script"),
		minimalStyle: newSet("h1", "h2", "h3", "h4", "h5", "h6", "blockquote"),
		// Containers where a new paragraph may be inserted as a direct child.
		// The fragment root is always one.
		blockContainers: newSet("blockquote"),
		// Flow content that a paragraph cannot hold.
		flowContainers: newSet(
			"li", "dl", "dt", "dd", "section", "article", "aside", "header", "footer",
			"main", "nav", "figure", "figcaption", "address", "details", "summary",
			"fieldset", "form", "center", "hgroup", "html", "body", "frameset",
		),
		aliases: map[string]string{
			"strong": "b",
			"em":     "i",
		},
	}

	// Elements the screen lets through to the parser. Everything else is
	// stripped by the screen with its text kept.
	s.screen = []string{
		"html", "head", "body", "title", "meta", "style",
		"p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre",
		"ul", "ol", "li",
		"table", "caption", "colgroup", "col", "thead", "tbody", "tfoot", "tr", "th", "td",
		"b", "i", "u", "del", "sub", "sup", "code", "strong", "em",
		"a", "img", "br", "hr",
		"span", "div", "label", "button",
	}
	return s
}

// IsTopLevel reports whether tag may appear as a direct child of the fragment.
func (s *Schema) IsTopLevel(tag string) bool { return s.topLevel.has(tag) }

// IsInlineFormat reports whether tag is a nestable inline styling element.
func (s *Schema) IsInlineFormat(tag string) bool { return s.inlineFormat.has(tag) }

// IsList reports whether tag is a list element.
func (s *Schema) IsList(tag string) bool { return s.lists.has(tag) }

// IsTable reports whether tag is a table element.
func (s *Schema) IsTable(tag string) bool { return s.tables.has(tag) }

// IsVoid reports whether tag is serialized without children or a closing tag.
func (s *Schema) IsVoid(tag string) bool { return s.void.has(tag) }

// Unwraps reports whether tag is replaced by its children.
func (s *Schema) Unwraps(tag string) bool { return s.unwrap.has(tag) }

// Drops reports whether tag is removed together with its subtree.
func (s *Schema) Drops(tag string) bool { return s.drop.has(tag) || s.metadata.has(tag) }

// IsMetadata reports whether tag is document metadata, dropped at parse time
// wherever it appears.
func (s *Schema) IsMetadata(tag string) bool { return s.metadata.has(tag) }

// IsMinimalStyle reports whether tag collapses to a paragraph in text paste.
func (s *Schema) IsMinimalStyle(tag string) bool { return s.minimalStyle.has(tag) }

// IsBlockContainer reports whether a paragraph may be inserted directly under tag.
func (s *Schema) IsBlockContainer(tag string) bool { return s.blockContainers.has(tag) }

// IsFlowContainer reports whether tag holds flow content that cannot live in a paragraph.
func (s *Schema) IsFlowContainer(tag string) bool { return s.flowContainers.has(tag) }

// IsBlock reports whether tag is block-level for the purpose of grouping
// inline runs into paragraphs.
func (s *Schema) IsBlock(tag string) bool {
	return s.topLevel.has(tag) || s.flowContainers.has(tag) || tag == "pre" || tag == "hr"
}

// IsTablePart reports whether tag only occurs inside a table.
func (s *Schema) IsTablePart(tag string) bool { return s.tableParts.has(tag) }

// Alias returns the canonical tag for a legacy alias.
func (s *Schema) Alias(tag string) (string, bool) {
	canonical, ok := s.aliases[tag]
	return canonical, ok
}

// ScreenElements lists the elements allowed through the pre-parse screen.
func (s *Schema) ScreenElements() []string {
	out := make([]string, len(s.screen))
	copy(out, s.screen)
	return out
}
