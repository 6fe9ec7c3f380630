package paste

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stats captures what a sanitize call did.
type Stats struct {
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Structure
	ElementsUnwrapped map[string]int `json:"elements_unwrapped" yaml:"elements_unwrapped"` // tag -> count
	ElementsRemoved   map[string]int `json:"elements_removed" yaml:"elements_removed"`     // tag -> count
	AttributesRemoved int            `json:"attributes_removed" yaml:"attributes_removed"`

	// Whitespace
	TextNodesRemoved int `json:"text_nodes_removed" yaml:"text_nodes_removed"`
	BreaksWrapped    int `json:"breaks_wrapped" yaml:"breaks_wrapped"`
	NewlinesPatched  int `json:"newlines_patched" yaml:"newlines_patched"`
	TabsExpanded     int `json:"tabs_expanded" yaml:"tabs_expanded"`

	// Blocks
	PreFlattened      int `json:"pre_flattened" yaml:"pre_flattened"`
	AliasesRewritten  int `json:"aliases_rewritten" yaml:"aliases_rewritten"`
	OrphanRunsWrapped int `json:"orphan_runs_wrapped" yaml:"orphan_runs_wrapped"`
	InlinesSplit      int `json:"inlines_split" yaml:"inlines_split"`

	ImagesPrepared int `json:"images_prepared" yaml:"images_prepared"`

	// Text paste reduction
	StylesFlattened  int `json:"styles_flattened,omitempty" yaml:"styles_flattened,omitempty"`
	FormatsUnwrapped int `json:"formats_unwrapped,omitempty" yaml:"formats_unwrapped,omitempty"`
	LinksFlattened   int `json:"links_flattened,omitempty" yaml:"links_flattened,omitempty"`
	LinksDropped     int `json:"links_dropped,omitempty" yaml:"links_dropped,omitempty"`

	// Timing. JSON carries nanoseconds; YAML carries duration strings.
	ScreenDuration    time.Duration `json:"screen_duration_ns" yaml:"screen_duration"`
	ParseDuration     time.Duration `json:"parse_duration_ns" yaml:"parse_duration"`
	TransformDuration time.Duration `json:"transform_duration_ns" yaml:"transform_duration"`
	OutputDuration    time.Duration `json:"output_duration_ns" yaml:"output_duration"`
	TotalDuration     time.Duration `json:"total_duration_ns" yaml:"total_duration"`
}

// NewStats creates a Stats with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsUnwrapped: make(map[string]int),
		ElementsRemoved:   make(map[string]int),
	}
}

// RecordUnwrap records that an element was replaced by its children.
func (s *Stats) RecordUnwrap(tag string) {
	s.ElementsUnwrapped[tag]++
}

// RecordRemoval records that an element was removed with its subtree.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[tag]++
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// TotalElementsUnwrapped returns the sum of all unwrapped elements.
func (s *Stats) TotalElementsUnwrapped() int {
	total := 0
	for _, count := range s.ElementsUnwrapped {
		total += count
	}
	return total
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes\n", s.InputBytes, s.OutputBytes))
	sb.WriteString(fmt.Sprintf("Elements: %d unwrapped, %d removed\n",
		s.TotalElementsUnwrapped(), s.TotalElementsRemoved()))

	if len(s.ElementsRemoved) > 0 {
		sb.WriteString("Removed by tag: ")
		sb.WriteString(formatCounts(s.ElementsRemoved))
		sb.WriteString("\n")
	}
	if s.AttributesRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Attributes removed: %d\n", s.AttributesRemoved))
	}
	sb.WriteString(fmt.Sprintf("Whitespace: %d empty text, %d breaks wrapped, %d newlines, %d tabs\n",
		s.TextNodesRemoved, s.BreaksWrapped, s.NewlinesPatched, s.TabsExpanded))
	sb.WriteString(fmt.Sprintf("Blocks: %d pre, %d aliases, %d orphan runs, %d split inlines\n",
		s.PreFlattened, s.AliasesRewritten, s.OrphanRunsWrapped, s.InlinesSplit))
	if s.ImagesPrepared > 0 {
		sb.WriteString(fmt.Sprintf("Images prepared: %d\n", s.ImagesPrepared))
	}
	if s.StylesFlattened+s.FormatsUnwrapped+s.LinksFlattened+s.LinksDropped > 0 {
		sb.WriteString(fmt.Sprintf("Reduced: %d styles, %d formats, %d links flattened, %d links dropped\n",
			s.StylesFlattened, s.FormatsUnwrapped, s.LinksFlattened, s.LinksDropped))
	}

	sb.WriteString(fmt.Sprintf("Timing: screen=%v, parse=%v, transform=%v, output=%v, total=%v\n",
		s.ScreenDuration.Round(time.Microsecond),
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

func formatCounts(m map[string]int) string {
	tags := make([]string, 0, len(m))
	for tag := range m {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = fmt.Sprintf("%s=%d", tag, m[tag])
	}
	return strings.Join(parts, ", ")
}

// Warning is a non-fatal problem reported to the host.
type Warning struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Phase   string `json:"phase" yaml:"phase"`
	Message string `json:"message" yaml:"message"`
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
	// Alert is set when the user should be told about the problem.
	Alert bool `json:"alert" yaml:"alert"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s/%s] %s (context: %s)", w.Phase, w.Kind, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s/%s] %s", w.Phase, w.Kind, w.Message)
}

// Result contains the output of one sanitize call.
type Result struct {
	// Content is the serialized fragment. It is never empty because of an
	// internal failure: on failure it holds the best-effort or minimally
	// wrapped input.
	Content string `json:"content" yaml:"content"`

	// Fragment is the tree Content was serialized from.
	Fragment *Fragment `json:"-" yaml:"-"`

	// Images holds one pending handler per IMG in Fragment.
	Images []*PendingImage `json:"-" yaml:"-"`

	Mode     Mode      `json:"mode" yaml:"mode"`
	Stats    *Stats    `json:"stats" yaml:"stats"`
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(kind Kind, phase, message, context string, alert bool) {
	r.Warnings = append(r.Warnings, Warning{
		Kind:    kind,
		Phase:   phase,
		Message: message,
		Context: context,
		Alert:   alert,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
