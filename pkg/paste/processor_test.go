package paste

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/pasteclean/pkg/cleaner"
)

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		html string
		want string
	}{
		{
			name: "nested wrappers unwrap into one paragraph",
			mode: ModeRich,
			html: `<div><span>Hello</span> world</div>`,
			want: `<p>Hello world</p>`,
		},
		{
			name: "newline inside paragraph becomes break",
			mode: ModeRich,
			html: "<p>Line1\nLine2</p>",
			want: `<p>Line1<br>Line2</p>`,
		},
		{
			name: "preformatted block becomes paragraph",
			mode: ModeRich,
			html: `<pre>code</pre>`,
			want: `<p>code</p>`,
		},
		{
			name: "tab expands to four non-breaking spaces",
			mode: ModeRich,
			html: "<p>a\tb</p>",
			want: "<p>a\u00a0\u00a0\u00a0\u00a0b</p>",
		},
		{
			name: "text paste flattens heading and link",
			mode: ModeText,
			html: `<h1><a href="x">Title</a></h1>`,
			want: `<p>Title</p>`,
		},
		{
			name: "text paste deletes anchor without href and its wrapper",
			mode: ModeText,
			html: `<a>orphan</a>`,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.mode == ModeText {
				got = SanitizeForPlainPaste(tt.html)
			} else {
				got = SanitizeForRichPaste(tt.html)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

var propertyInputs = []string{
	`<div><span>Hello</span> world</div>`,
	"<p>Line1\nLine2</p>",
	"<pre>code\n\tindented</pre>",
	`<html><head><title>T</title><style>p{color:red}</style></head><body><div class="x"><p style="color:red">styled</p></div></body></html>`,
	"<div>a\n\nb</div>",
	`<ul><li><strong>one</strong></li><li><em>two</em></li></ul>`,
	`<table><tr><td><span>cell</span></td></tr></table>`,
	"<blockquote>quote\n  indented</blockquote>",
	`<section><h2>Title</h2>body text<hr><button>Click</button></section>`,
	`<label>Name</label><input type="text"><br><br>`,
	`<p>a<br></p><br><p>b</p>`,
	"text only\nwith lines",
	`<img src="a.png"><a href="https://example.com">link</a>`,
	`<div><div><div>deep</div></div></div>`,
	"<p>x</p>\n\n<p>y</p>",
	"a\n\n",
	`<li>loose item</li><p>after</p>`,
	`<a href="x"><p>x</p></a>`,
	`<b><blockquote>x</blockquote></b>`,
	`<b><pre>x</pre></b>`,
	`<i><ul><li>x</li></ul></i>`,
	`<b>a<p>b</p>c</b>`,
	`<p><a href="">empty</a></p>`,
	`<p><a href="tel:123">call</a></p>`,
	`<p><a href="ftp://h/x">ftp</a></p>`,
	`<ul><li><b>x</b> <a href="#">y</a></li></ul>`,
	`<a href="javascript:alert(1)">x</a>`,
	" \n\t ",
	"",
}

func TestRichPasteIdempotent(t *testing.T) {
	for _, html := range propertyInputs {
		t.Run(html, func(t *testing.T) {
			once := SanitizeForRichPaste(html)
			twice := SanitizeForRichPaste(once)
			if once != twice {
				t.Errorf("not idempotent:\n once:  %q\n twice: %q", once, twice)
			}
		})
	}
}

func TestOutputClosure(t *testing.T) {
	for _, html := range propertyInputs {
		for _, mode := range []Mode{ModeRich, ModeText} {
			t.Run(string(mode)+"/"+html, func(t *testing.T) {
				out := defaultProcessor.Process(html, mode).Content
				body := parseOutput(t, out)

				if n := body.Find("span, div, label, button, head, meta, title, style, script").Length(); n > 0 {
					t.Errorf("output %q has %d forbidden elements", out, n)
				}
				if n := body.Find("[style], [class]").Length(); n > 0 {
					t.Errorf("output %q has %d styled elements", out, n)
				}
				if strings.Contains(out, "<head") {
					t.Errorf("output %q contains head", out)
				}
			})
		}
	}
}

func TestTopLevelLegality(t *testing.T) {
	for _, html := range propertyInputs {
		for _, mode := range []Mode{ModeRich, ModeText} {
			t.Run(string(mode)+"/"+html, func(t *testing.T) {
				result := defaultProcessor.Process(html, mode)
				for _, n := range result.Fragment.Nodes {
					if n.Type != ElementNode || !defaultSchema.IsTopLevel(n.Data) {
						t.Errorf("illegal top-level node %s in %q", describe(n), result.Content)
					}
				}
				blocks := blockNormalizer{schema: defaultSchema}
				result.Fragment.Walk(func(n *Node) bool {
					if n.IsElement("p") && blocks.hasBlock(n.Children) {
						t.Errorf("paragraph holds a block in %q", result.Content)
					}
					return true
				})
				parseOutput(t, result.Content).Contents().Each(func(_ int, s *goquery.Selection) {
					if !defaultSchema.IsTopLevel(goquery.NodeName(s)) {
						t.Errorf("re-parsed output %q has top-level %s", result.Content, goquery.NodeName(s))
					}
				})
			})
		}
	}
}

func parseOutput(t *testing.T, out string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-parsing output: %v", err)
	}
	return doc.Find("body")
}

func TestSanitizeForRichPaste(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "full document keeps only body content",
			html: `<html><head><title>T</title><style>p{color:red}</style></head><body><div class="x"><p style="color:red">styled</p></div></body></html>`,
			want: `<p>styled</p>`,
		},
		{
			name: "blank lines become empty paragraphs",
			html: "<div>a\n\nb</div>",
			want: `<p>a</p><p><br></p><p>b</p>`,
		},
		{
			name: "aliases rewritten inside lists",
			html: `<ul><li><strong>one</strong></li><li><em>two</em></li></ul>`,
			want: `<ul><li><b>one</b></li><li><i>two</i></li></ul>`,
		},
		{
			name: "indentation after newline kept in quote",
			html: "<blockquote>quote\n  indented</blockquote>",
			want: "<blockquote>quote<br>\u00a0\u00a0indented</blockquote>",
		},
		{
			name: "flow container lifted and rule dropped",
			html: `<section><h2>Title</h2>body text<hr><button>Click</button></section>`,
			want: `<h2>Title</h2><p>body text</p>`,
		},
		{
			name: "trailing breaks wrapped",
			html: `<label>Name</label><input type="text"><br><br>`,
			want: `<p><br></p><p><br></p>`,
		},
		{
			name: "whitespace between blocks dropped",
			html: "<p>x</p>\n\n<p>y</p>",
			want: `<p>x</p><p>y</p>`,
		},
		{
			name: "table structure kept",
			html: `<table><tr><td><span>cell</span></td></tr></table>`,
			want: `<table><tbody><tr><td>cell</td></tr></tbody></table>`,
		},
		{
			name: "event handlers screened",
			html: `<p onclick="steal()">hi</p>`,
			want: `<p>hi</p>`,
		},
		{
			name: "script removed with content",
			html: `<script>alert(1)</script><p>ok</p>`,
			want: `<p>ok</p>`,
		},
		{
			name: "javascript url neutralized in link",
			html: `<a href="javascript:alert(1)">x</a>`,
			want: `<p><a href="#top">x</a></p>`,
		},
		{
			name: "phone link kept",
			html: `<p><a href="tel:123">call</a></p>`,
			want: `<p><a href="tel:123">call</a></p>`,
		},
		{
			name: "link wrapping a paragraph moves inside it",
			html: `<a href="https://example.com"><p>x</p></a>`,
			want: `<p><a href="https://example.com">x</a></p>`,
		},
		{
			name: "format wrapping a list moves into the items",
			html: `<i><ul><li>x</li></ul></i>`,
			want: `<ul><li><i>x</i></li></ul>`,
		},
		{
			name: "safe link kept as written",
			html: `<p><a href="https://example.com/x" target="_blank">x</a></p>`,
			want: `<p><a href="https://example.com/x">x</a></p>`,
		},
		{
			name: "only whitespace yields nothing",
			html: " \n\t ",
			want: ``,
		},
		{
			name: "empty input",
			html: "",
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForRichPaste(tt.html); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeForPlainPaste(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "headings and formats flattened",
			html: `<h2>Head</h2><p><b>bold</b> and <i>it</i></p>`,
			want: `<p>Head</p><p>bold and it</p>`,
		},
		{
			name: "list shape kept with link text",
			html: `<ul><li><a href="https://example.com">link</a></li></ul>`,
			want: `<ul><li>link</li></ul>`,
		},
		{
			name: "quote holding blocks is spliced",
			html: `<blockquote><p>a</p>b</blockquote>`,
			want: `<p>a</p><p>b</p>`,
		},
		{
			name: "heading inside table cell flattened",
			html: `<table><tr><td><h1>T</h1></td></tr></table>`,
			want: `<table><tbody><tr><td><p>T</p></td></tr></tbody></table>`,
		},
		{
			name: "anchor without href removed with subtree",
			html: `<p><a>gone</a>kept</p>`,
			want: `<p>kept</p>`,
		},
		{
			name: "nested formats unwrapped",
			html: `<p><b><i><u>deep</u></i></b></p>`,
			want: `<p>deep</p>`,
		},
		{
			name: "empty href keeps link text",
			html: `<p><a href="">empty</a></p>`,
			want: `<p>empty</p>`,
		},
		{
			name: "phone link keeps text",
			html: `<p><a href="tel:123">call</a></p>`,
			want: `<p>call</p>`,
		},
		{
			name: "ftp link keeps text",
			html: `<p><a href="ftp://h/x">ftp</a></p>`,
			want: `<p>ftp</p>`,
		},
		{
			name: "bare fragment link keeps text",
			html: `<ul><li><b>x</b><a href="#">y</a></li></ul>`,
			want: `<ul><li>xy</li></ul>`,
		},
		{
			name: "rejected scheme keeps text",
			html: `<p><a href="javascript:void(0)">js</a></p>`,
			want: `<p>js</p>`,
		},
		{
			name: "link wrapping a paragraph keeps text",
			html: `<a href="x"><p>x</p></a>`,
			want: `<p>x</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForPlainPaste(tt.html); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		p, err := New(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Config().TabWidth != DefaultTabWidth {
			t.Errorf("expected tab width %d, got %d", DefaultTabWidth, p.Config().TabWidth)
		}
		if p.screen == nil {
			t.Error("expected screen enabled by default")
		}
	})

	t.Run("trusted preset skips screen", func(t *testing.T) {
		p, err := New(PresetTrusted())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.screen != nil {
			t.Error("expected no screen")
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TabWidth = 0
		if _, err := New(cfg); err == nil {
			t.Error("expected error for zero tab width")
		}
	})
}

func TestCustomTabWidth(t *testing.T) {
	cfg := PresetTrusted()
	cfg.TabWidth = 2
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<p>a\u00a0\u00a0b</p>"
	if got := p.SanitizeForRichPaste("<p>a\tb</p>"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScreenOffStillDropsMetadata(t *testing.T) {
	p, err := New(PresetTrusted())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := p.SanitizeForRichPaste(`<p>ok</p><script>alert(1)</script><style>p{}</style>`)
	if got != `<p>ok</p>` {
		t.Errorf("got %q, want %q", got, `<p>ok</p>`)
	}
}

func TestProcessStats(t *testing.T) {
	p, err := New(PresetTrusted())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := `<div><strong class="a">x</strong><pre>y</pre><span></span></div>`
	result := p.Process(html, ModeRich)

	if result.Mode != ModeRich {
		t.Errorf("expected mode rich, got %s", result.Mode)
	}
	s := result.Stats
	if s.InputBytes != len(html) {
		t.Errorf("expected input bytes %d, got %d", len(html), s.InputBytes)
	}
	if s.OutputBytes != len(result.Content) {
		t.Errorf("expected output bytes %d, got %d", len(result.Content), s.OutputBytes)
	}
	if s.ElementsUnwrapped["div"] != 1 {
		t.Errorf("expected one div unwrapped, got %d", s.ElementsUnwrapped["div"])
	}
	if s.ElementsRemoved["span"] != 1 {
		t.Errorf("expected one empty span removed, got %d", s.ElementsRemoved["span"])
	}
	if s.AttributesRemoved != 1 {
		t.Errorf("expected one attribute removed, got %d", s.AttributesRemoved)
	}
	if s.AliasesRewritten != 1 || s.PreFlattened != 1 {
		t.Errorf("expected one alias and one pre, got %d and %d", s.AliasesRewritten, s.PreFlattened)
	}
	if result.HasWarnings() {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if s.TotalDuration <= 0 {
		t.Error("expected total duration to be recorded")
	}
}

func TestParseFailureFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxInputBytes = 8
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := p.Process("<p>0123456789</p>", ModeRich)
	want := `<p>&lt;p&gt;0123456789&lt;/p&gt;</p>`
	if result.Content != want {
		t.Errorf("got %q, want %q", result.Content, want)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	w := result.Warnings[0]
	if w.Kind != KindParseFailure || w.Phase != "parse" {
		t.Errorf("unexpected warning %s", w)
	}
	if !strings.Contains(w.Context, ErrInputTooLarge.Error()) {
		t.Errorf("expected context to mention size limit, got %q", w.Context)
	}
}

func TestInputLimitAppliesToRawInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxInputBytes = 64
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The screen would shrink this below the limit.
	html := "<script>" + strings.Repeat("x", 10000) + "</script><p>ok</p>"
	result := p.Process(html, ModeRich)
	if len(result.Warnings) != 1 || result.Warnings[0].Kind != KindParseFailure {
		t.Fatalf("expected one parse failure, got %v", result.Warnings)
	}
	if !strings.HasPrefix(result.Content, "<p>&lt;script&gt;xxx") {
		t.Errorf("expected escaped fallback, got %.40q", result.Content)
	}
	if result.Stats.ScreenDuration != 0 {
		t.Errorf("expected screen to be skipped, took %v", result.Stats.ScreenDuration)
	}
}

type panicPass struct{}

func (panicPass) name() string           { return "boom" }
func (panicPass) apply(*Fragment, *Stats) { panic("boom") }

func TestPassPanicRecovered(t *testing.T) {
	p, err := New(PresetTrusted())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.rich = append([]pass{panicPass{}}, p.rich...)

	result := p.Process(`<div>x</div>`, ModeRich)
	if result.Content != `<p>x</p>` {
		t.Errorf("expected remaining passes to run, got %q", result.Content)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	w := result.Warnings[0]
	if w.Kind != KindStructuralViolation || w.Phase != "boom" || !w.Alert {
		t.Errorf("unexpected warning %+v", w)
	}
}

func TestVerifyReportsViolations(t *testing.T) {
	p, err := New(PresetTrusted())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Without the block pass, orphan text survives to the verifier.
	p.rich = p.rich[:3]

	result := p.Process("loose text", ModeRich)
	if !result.HasWarnings() {
		t.Fatal("expected a structural violation")
	}
	if result.Warnings[0].Kind != KindStructuralViolation || result.Warnings[0].Phase != "verify" {
		t.Errorf("unexpected warning %s", result.Warnings[0])
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"rich", ModeRich, false},
		{"TEXT", ModeText, false},
		{" plain ", ModeText, false},
		{"markdown", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanerAdapter(t *testing.T) {
	var c cleaner.Cleaner = defaultProcessor.Cleaner(ModeText)
	if c.Name() != "paste-text" {
		t.Errorf("expected name 'paste-text', got %q", c.Name())
	}
	got, err := c.Clean(`<h1><a href="x">Title</a></h1>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `<p>Title</p>` {
		t.Errorf("got %q", got)
	}

	chain := cleaner.NewChain(defaultProcessor.Cleaner(ModeRich), defaultProcessor.Cleaner(ModeText))
	got, err = chain.Clean(`<div><strong>a</strong></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `<p>a</p>` {
		t.Errorf("chain got %q", got)
	}

	var seen *Result
	observed := defaultProcessor.Cleaner(ModeRich).OnResult(func(r *Result) { seen = r })
	got, err = cleaner.NewChain(observed, cleaner.NewNoop()).Clean(`<pre>x</pre>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil || seen.Content != got || seen.Stats.PreFlattened != 1 {
		t.Errorf("expected observed result for %q, got %+v", got, seen)
	}
}

func TestErrorsWrap(t *testing.T) {
	err := &ParseError{Err: ErrInputTooLarge}
	if !errors.Is(err, ErrParse) || !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("expected %v to match ErrParse and ErrInputTooLarge", err)
	}
}

func BenchmarkSanitizeForRichPaste(b *testing.B) {
	html := strings.Repeat(`<div class="row"><span style="x">Hello</span> <strong>world</strong>
	<p>line one
line two</p></div>`, 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SanitizeForRichPaste(html)
	}
}
