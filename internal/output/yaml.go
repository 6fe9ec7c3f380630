package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlWriter writes each report as its own YAML document.
type yamlWriter struct {
	w   *bufio.Writer
	enc *yaml.Encoder
}

func newYAMLWriter(w io.Writer) *yamlWriter {
	bw := bufio.NewWriter(w)
	enc := yaml.NewEncoder(bw)
	enc.SetIndent(2)
	return &yamlWriter{w: bw, enc: enc}
}

func (w *yamlWriter) Write(r Report) error {
	return w.enc.Encode(r)
}

func (w *yamlWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}
