// Package output writes paste reports in machine-readable formats.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/pasteclean/pkg/paste"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Report describes one sanitized payload.
type Report struct {
	Source     string          `json:"source" yaml:"source"`
	Mode       paste.Mode      `json:"mode" yaml:"mode"`
	Content    string          `json:"content" yaml:"content"`
	InputSize  string          `json:"input_size" yaml:"input_size"`
	OutputSize string          `json:"output_size" yaml:"output_size"`
	Stats      *paste.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Warnings   []paste.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewReport builds a Report from a sanitize result. content is the final
// output, which differs from result.Content when a converter ran after
// sanitization.
func NewReport(source, content string, result *paste.Result, withStats bool) Report {
	r := Report{
		Source:   source,
		Mode:     result.Mode,
		Content:  content,
		Warnings: result.Warnings,
	}
	if result.Stats != nil {
		r.InputSize = humanize.Bytes(uint64(result.Stats.InputBytes))
		r.OutputSize = humanize.Bytes(uint64(len(content)))
		if withStats {
			r.Stats = result.Stats
		}
	}
	return r
}

// Writer handles report serialization.
type Writer interface {
	// Write outputs a single report.
	Write(r Report) error

	// Close flushes buffered reports and releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return newJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return newJSONLWriter(w), nil
	case FormatYAML:
		return newYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
