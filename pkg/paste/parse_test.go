package paste

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestParse(t *testing.T) {
	p := &parser{schema: defaultSchema}

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "fragment",
			html: `<p class="a">x</p>text`,
			want: `<p class="a">x</p>text`,
		},
		{
			name: "full document keeps body children",
			html: `<!DOCTYPE html><html><head><title>T</title></head><body><h1>x</h1></body></html>`,
			want: `<h1>x</h1>`,
		},
		{
			name: "comments discarded",
			html: `<p>a<!-- note -->b</p>`,
			want: `<p>ab</p>`,
		},
		{
			name: "metadata dropped inside body",
			html: `<p>x<script>bad()</script></p><title>t</title>`,
			want: `<p>x</p>`,
		},
		{
			name: "tag names lower-cased",
			html: `<P><B>x</B></P>`,
			want: `<p><b>x</b></p>`,
		},
		{
			name: "void elements serialized without closing tag",
			html: `<p>a<br/>b<img src="i.png"></p>`,
			want: `<p>a<br>b<img src="i.png"></p>`,
		},
		{
			name: "document without body",
			html: `<html><head></head><frameset><frame src="a.html"></frameset></html>`,
			want: `<html><frameset><frame src="a.html"></frame></frameset></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := p.parse(strings.NewReader(tt.html), NewStats())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.HTML(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("reader failure", func(t *testing.T) {
		boom := errors.New("boom")
		p := &parser{schema: defaultSchema}
		_, err := p.parse(iotest.ErrReader(boom), NewStats())

		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
		if !errors.Is(err, ErrParse) || !errors.Is(err, boom) {
			t.Errorf("expected error to match ErrParse and cause, got %v", err)
		}
	})

	t.Run("input too large", func(t *testing.T) {
		p := &parser{schema: defaultSchema, maxBytes: 4}
		_, err := p.parse(strings.NewReader("<p>12345</p>"), NewStats())
		if !errors.Is(err, ErrInputTooLarge) {
			t.Errorf("expected ErrInputTooLarge, got %v", err)
		}
	})

	t.Run("input at limit", func(t *testing.T) {
		p := &parser{schema: defaultSchema, maxBytes: 8}
		if _, err := p.parse(strings.NewReader("<p>1</p>"), NewStats()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFallbackFragment(t *testing.T) {
	got := fallbackFragment(`<b>"x" & y`).HTML()
	want := `<p>&lt;b&gt;"x" &amp; y</p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEscapesAttributes(t *testing.T) {
	n := withAttr(el("a", txt("t")), "href", `/?a=1&b="2"`)
	got := Render(defaultSchema, []*Node{n})
	want := `<a href="/?a=1&amp;b=&quot;2&quot;">t</a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
