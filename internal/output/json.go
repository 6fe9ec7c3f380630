package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// jsonWriter buffers reports and writes them on Close: one report as an
// object, several as an array.
type jsonWriter struct {
	w       *bufio.Writer
	pretty  bool
	indent  string
	reports []Report
}

func newJSONWriter(w io.Writer, pretty bool, indent string) *jsonWriter {
	return &jsonWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

func (w *jsonWriter) Write(r Report) error {
	w.reports = append(w.reports, r)
	return nil
}

func (w *jsonWriter) Close() error {
	if len(w.reports) == 0 {
		return w.w.Flush()
	}

	var v any = w.reports
	if len(w.reports) == 1 {
		v = w.reports[0]
	}

	enc := json.NewEncoder(w.w)
	// Pasted markup is the payload; keep it readable.
	enc.SetEscapeHTML(false)
	if w.pretty {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	return w.w.Flush()
}

// jsonlWriter writes one report per line as soon as it arrives.
type jsonlWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func newJSONLWriter(w io.Writer) *jsonlWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &jsonlWriter{w: bw, enc: enc}
}

func (w *jsonlWriter) Write(r Report) error {
	if err := w.enc.Encode(r); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *jsonlWriter) Close() error {
	return w.w.Flush()
}
