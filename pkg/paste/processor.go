package paste

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/pasteclean/internal/logger"
)

// Mode selects the sanitize entry point.
type Mode string

const (
	// ModeRich keeps schema formatting.
	ModeRich Mode = "rich"
	// ModeText reduces the fragment to its unformatted equivalent.
	ModeText Mode = "text"
)

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRich:
		return ModeRich, nil
	case ModeText, "plain":
		return ModeText, nil
	default:
		return "", fmt.Errorf("unknown paste mode %q", s)
	}
}

// pass is one in-place transformation of the fragment.
type pass interface {
	name() string
	apply(f *Fragment, stats *Stats)
}

// Processor sanitizes paste payloads. It holds no per-call state and is safe
// for concurrent use.
type Processor struct {
	config  *Config
	schema  *Schema
	screen  *screen
	parser  *parser
	rich    []pass
	reducer pass
	images  imagePreparer
	verify  verifier
}

// New creates a Processor. If config is nil, DefaultConfig() is used.
func New(config *Config) (*Processor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	schema := defaultSchema
	p := &Processor{
		config: config,
		schema: schema,
		parser: &parser{schema: schema, maxBytes: config.MaxInputBytes},
		rich: []pass{
			structureCleaner{schema: schema},
			newAttributeStripper(),
			whitespaceNormalizer{schema: schema, tabWidth: config.TabWidth},
			blockNormalizer{schema: schema},
		},
		reducer: textReducer{schema: schema},
		images:  imagePreparer{class: config.ImageClass, minSize: config.MinImageSize},
		verify:  verifier{schema: schema},
	}
	if config.Screen {
		p.screen = newScreen(schema)
	}
	return p, nil
}

// Config returns the processor's configuration.
func (p *Processor) Config() *Config {
	return p.config
}

// SanitizeForRichPaste returns html rewritten to the editor schema.
func (p *Processor) SanitizeForRichPaste(html string) string {
	return p.Process(html, ModeRich).Content
}

// SanitizeForPlainPaste returns the unformatted equivalent of html.
func (p *Processor) SanitizeForPlainPaste(html string) string {
	return p.Process(html, ModeText).Content
}

// Process sanitizes html and returns the fragment with stats and warnings.
// It never fails: parse failures and internal faults degrade to the
// best-effort fragment, or to the input wrapped in one paragraph.
func (p *Processor) Process(html string, mode Mode) *Result {
	startTime := time.Now()
	result := &Result{
		Mode:  mode,
		Stats: NewStats(),
	}
	stats := result.Stats
	stats.InputBytes = len(html)

	var (
		frag *Fragment
		err  error
	)
	if limit := p.config.MaxInputBytes; limit > 0 && len(html) > limit {
		err = tooLarge(limit)
	} else {
		raw := html
		if p.screen != nil {
			screenStart := time.Now()
			raw = p.screen.apply(raw)
			stats.ScreenDuration = time.Since(screenStart)
		}

		parseStart := time.Now()
		frag, err = p.parser.parse(strings.NewReader(raw), stats)
		stats.ParseDuration = time.Since(parseStart)
	}
	if err != nil {
		result.AddWarning(KindParseFailure, "parse", "input could not be parsed, pasting as text", err.Error(), false)
		frag = fallbackFragment(html)
	}

	transformStart := time.Now()
	for _, ps := range p.rich {
		p.run(ps, frag, result)
	}
	if p.config.Verify {
		result.Warnings = append(result.Warnings, p.verify.check(frag)...)
	}
	result.Images = p.images.prepare(frag, stats)
	if mode == ModeText {
		p.run(p.reducer, frag, result)
	}
	stats.TransformDuration = time.Since(transformStart)

	outputStart := time.Now()
	content, err := p.render(frag)
	if err != nil {
		result.AddWarning(KindStructuralViolation, "output", "serialization failed, pasting input as text", err.Error(), true)
		frag = &Fragment{Nodes: []*Node{NewElement("p", NewText(html))}}
		content = Render(p.schema, frag.Nodes)
		result.Images = nil
	}
	stats.OutputDuration = time.Since(outputStart)

	result.Content = content
	result.Fragment = frag
	stats.OutputBytes = len(content)
	stats.TotalDuration = time.Since(startTime)

	for _, w := range result.Warnings {
		logger.Debug("paste warning", "mode", mode, "warning", w.String())
	}
	logger.Debug("paste sanitized",
		"mode", mode,
		"input_bytes", stats.InputBytes,
		"output_bytes", stats.OutputBytes,
		"images", stats.ImagesPrepared,
		"warnings", len(result.Warnings),
		"duration", stats.TotalDuration)

	return result
}

// run applies one pass. A panicking pass is recorded as a structural
// violation and the pipeline continues with whatever tree it left behind.
func (p *Processor) run(ps pass, frag *Fragment, result *Result) {
	defer func() {
		if r := recover(); r != nil {
			result.AddWarning(KindStructuralViolation, ps.name(), "pass aborted, keeping partially cleaned fragment", fmt.Sprint(r), true)
		}
	}()

	start := time.Now()
	ps.apply(frag, result.Stats)
	if p.config.Debug {
		logger.Debug("paste pass", "pass", ps.name(), "nodes", len(frag.Nodes), "duration", time.Since(start))
	}
}

func (p *Processor) render(frag *Fragment) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render: %v", r)
		}
	}()
	return Render(p.schema, frag.Nodes), nil
}

// Cleaner returns an adapter that runs mode through the cleaner.Cleaner
// interface, so paste sanitization composes with other cleaners in a chain.
func (p *Processor) Cleaner(mode Mode) *Cleaner {
	return &Cleaner{processor: p, mode: mode}
}

// Cleaner adapts a Processor mode to the cleaner.Cleaner interface.
type Cleaner struct {
	processor *Processor
	mode      Mode
	observe   func(*Result)
}

// OnResult registers fn to receive the full Result of each Clean call, for
// callers that need warnings and stats alongside the content.
func (c *Cleaner) OnResult(fn func(*Result)) *Cleaner {
	c.observe = fn
	return c
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "paste-" + string(c.mode)
}

// Clean sanitizes html. It never returns an error; failures degrade as in
// Process.
func (c *Cleaner) Clean(html string) (string, error) {
	result := c.processor.Process(html, c.mode)
	if c.observe != nil {
		c.observe(result)
	}
	return result.Content, nil
}

var defaultProcessor = mustNew(DefaultConfig())

func mustNew(config *Config) *Processor {
	p, err := New(config)
	if err != nil {
		panic(err)
	}
	return p
}

// SanitizeForRichPaste rewrites html to the editor schema using the default
// configuration.
func SanitizeForRichPaste(html string) string {
	return defaultProcessor.SanitizeForRichPaste(html)
}

// SanitizeForPlainPaste returns the unformatted equivalent of html using the
// default configuration.
func SanitizeForPlainPaste(html string) string {
	return defaultProcessor.SanitizeForPlainPaste(html)
}
