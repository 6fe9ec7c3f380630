package paste

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// linkSchemes are the URL schemes a link may keep through the screen.
var linkSchemes = []string{"mailto", "tel", "ftp", "http", "https"}

// neutralHref replaces link targets the screen rejects. A bare "#" would
// itself be rejected as an empty relative URL.
const neutralHref = "#top"

// screen is the pre-parse security filter. It is built once per Processor
// and only read afterwards; bluemonday policies are safe for concurrent
// Sanitize calls as long as nothing mutates them after construction.
type screen struct {
	policy *bluemonday.Policy
}

func newScreen(schema *Schema) *screen {
	p := bluemonday.NewPolicy()

	// Links and images keep only parseable URLs in linkSchemes or relative
	// URLs. Pasted screenshots commonly arrive as data: URIs.
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes(linkSchemes...)
	p.AllowDataURIImages()
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowAttrs("width", "height").Matching(bluemonday.Number).OnElements("img")
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")

	// Styling attributes pass through; the attribute stripper owns them.
	p.AllowAttrs("style", "class").Globally()

	elements := schema.ScreenElements()
	p.AllowElements(elements...)
	// An anchor without href and a bare label must survive the screen so the
	// later passes, not the screen, decide their fate.
	p.AllowNoAttrs().OnElements(elements...)

	return &screen{policy: p}
}

func (s *screen) apply(raw string) string {
	return s.policy.Sanitize(neutralizeHrefs(raw))
}

// neutralizeHrefs rewrites every anchor href the policy would strip to
// neutralHref. Whether an anchor has an href decides its fate in a text
// paste, so the screen may change a link target but never remove one.
func neutralizeHrefs(raw string) string {
	if !strings.Contains(strings.ToLower(raw), "href") {
		return raw
	}
	var out bytes.Buffer
	out.Grow(len(raw))
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return raw
			}
			return out.String()
		}
		chunk := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(chunk)
			continue
		}
		chunk = append([]byte(nil), chunk...)
		tok := z.Token()
		if tok.Data != "a" || !rewriteHref(tok.Attr) {
			out.Write(chunk)
			continue
		}
		out.WriteString(tok.String())
	}
}

// rewriteHref replaces a rejected href value in attrs and reports whether
// anything changed.
func rewriteHref(attrs []html.Attribute) bool {
	changed := false
	for i, a := range attrs {
		if a.Namespace != "" || a.Key != "href" || keepsHref(a.Val) {
			continue
		}
		attrs[i].Val = neutralHref
		changed = true
	}
	return changed
}

func keepsHref(val string) bool {
	val = strings.TrimSpace(val)
	if val == "" || strings.ContainsAny(val, " \t\n\r\f") {
		return false
	}
	u, err := url.Parse(val)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return u.String() != ""
	}
	for _, scheme := range linkSchemes {
		if strings.EqualFold(u.Scheme, scheme) {
			return true
		}
	}
	return false
}
