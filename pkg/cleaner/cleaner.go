// Package cleaner defines the stage interface used to compose paste
// processing. Paste sanitizers and output converters both implement it, so a
// pipeline such as "sanitize as text, then render Markdown" is a ChainCleaner.
package cleaner

// Cleaner transforms one HTML payload into another representation.
type Cleaner interface {
	// Clean transforms the input. The output format depends on the
	// implementation (schema HTML, Markdown, unchanged input).
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
