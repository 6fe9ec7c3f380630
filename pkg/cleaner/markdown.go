package cleaner

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Sanitized paste expresses tabs and indentation as U+00A0, which has no
// meaning in Markdown source.
var nbspReplacer = strings.NewReplacer("\u00a0", " ", "&nbsp;", " ")

// MarkdownCleaner converts sanitized HTML to Markdown, for hosts that store
// plain-text pastes as Markdown rather than schema HTML.
type MarkdownCleaner struct{}

// NewMarkdown creates a new Markdown cleaner.
func NewMarkdown() *MarkdownCleaner {
	return &MarkdownCleaner{}
}

// Clean converts HTML to Markdown.
func (c *MarkdownCleaner) Clean(html string) (string, error) {
	markdown, err := md.ConvertString(html)
	if err != nil {
		return "", err
	}
	return collapseBlankLines(nbspReplacer.Replace(markdown)), nil
}

// Name returns the cleaner type.
func (c *MarkdownCleaner) Name() string {
	return "markdown"
}

// collapseBlankLines allows at most one blank line between blocks and trims
// the result.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
