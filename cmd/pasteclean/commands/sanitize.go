package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/yosssi/gohtml"

	"github.com/jmylchreest/pasteclean/internal/eventloop"
	"github.com/jmylchreest/pasteclean/internal/logger"
	"github.com/jmylchreest/pasteclean/internal/output"
	"github.com/jmylchreest/pasteclean/internal/source"
	"github.com/jmylchreest/pasteclean/pkg/cleaner"
	"github.com/jmylchreest/pasteclean/pkg/paste"
)

type sanitizeKind struct {
	mode  paste.Mode
	short string
	long  string
}

var (
	sanitizeRich = sanitizeKind{
		mode:  paste.ModeRich,
		short: "Sanitize HTML for a rich paste",
		long: `Sanitize HTML for a rich paste.

Foreign wrappers and UI elements are removed, styling attributes are
stripped, whitespace is normalised and every top-level run is wrapped in a
paragraph. Bold, italic, underline, strike, links, lists, headings, quotes
and images survive.

The input is a file path, an http(s) URL, or "-" for stdin (the default).`,
	}
	sanitizeText = sanitizeKind{
		mode:  paste.ModeText,
		short: "Sanitize HTML for a plain-text paste",
		long: `Sanitize HTML for a plain-text paste.

Runs the rich pipeline, then reduces headings and quotes to paragraphs,
replaces links with their text and removes inline formatting. Lists and
line breaks survive.

The input is a file path, an http(s) URL, or "-" for stdin (the default).`,
	}
)

func newSanitizeCmd(kind sanitizeKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind.mode) + " [file|url|-]",
		Short: kind.short,
		Long:  kind.long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSanitize(cmd, args, kind.mode)
		},
	}

	flags := cmd.Flags()

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "html", "content format: html, markdown")
	flags.Bool("pretty", false, "indent HTML output")
	flags.String("report", "", "emit a report instead of bare content: json, jsonl, yaml")
	flags.Bool("stats", false, "print stats to stderr, or include them in the report")

	// Pipeline settings
	flags.Bool("no-screen", false, "skip the security screen (trusted input only)")
	flags.Bool("no-verify", false, "skip the post-pass structure check")
	flags.String("max-input-size", "", "max input size (e.g., 512KB, 2MB, 0=unlimited)")
	flags.Int("tab-width", paste.DefaultTabWidth, "spaces per tab")

	// Fetch settings
	flags.Duration("timeout", 0, "request timeout for URL inputs and images (default 30s)")
	flags.Bool("measure-images", false, "load images to record their natural size")

	return cmd
}

func runSanitize(cmd *cobra.Command, args []string, mode paste.Mode) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	format, _ := flags.GetString("format")
	if format != "html" && format != "markdown" {
		return fmt.Errorf("unsupported content format: %s", format)
	}
	var reportFormat output.Format
	if name, _ := flags.GetString("report"); name != "" {
		f, err := output.ParseFormat(name)
		if err != nil {
			return err
		}
		reportFormat = f
	}

	processor, err := paste.New(settings.Paste)
	if err != nil {
		return err
	}

	arg := source.Stdin
	if len(args) > 0 {
		arg = args[0]
	}
	in, err := source.New(settings.Source, source.WithStdin(cmd.InOrStdin())).Load(ctx, arg)
	if err != nil {
		return err
	}
	logger.Debug("input loaded", "source", in.Name, "size", humanize.Bytes(uint64(len(in.HTML))))

	var (
		result  *paste.Result
		content string
	)
	if measure, _ := flags.GetBool("measure-images"); measure {
		result, content, err = pasteWithImages(ctx, processor, in, mode)
		if err != nil {
			return err
		}
		content, err = formatStage(format).Clean(content)
	} else {
		stage := processor.Cleaner(mode).OnResult(func(r *paste.Result) { result = r })
		content, err = cleaner.NewChain(stage, formatStage(format)).Clean(in.HTML)
	}
	if err != nil {
		return fmt.Errorf("%s conversion failed: %w", format, err)
	}

	for _, w := range result.Warnings {
		if w.Alert {
			logger.Warn("paste warning", "kind", w.Kind, "phase", w.Phase, "message", w.Message, "context", w.Context)
		} else {
			logger.Debug("paste warning", "kind", w.Kind, "phase", w.Phase, "message", w.Message)
		}
	}

	pretty, _ := flags.GetBool("pretty")
	if pretty && format == "html" {
		content = gohtml.Format(content)
	}

	out := cmd.OutOrStdout()
	if path, _ := flags.GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	withStats, _ := flags.GetBool("stats")
	if reportFormat != "" {
		w, err := output.NewWriter(out, reportFormat, output.WithPretty(pretty))
		if err != nil {
			return err
		}
		if err := w.Write(output.NewReport(in.Name, content, result, withStats)); err != nil {
			return err
		}
		return w.Close()
	}

	if _, err := io.WriteString(out, content+"\n"); err != nil {
		return err
	}
	if withStats {
		printStats(cmd.ErrOrStderr(), in.Name, result, len(content))
	}
	return nil
}

// formatStage returns the cleaner that renders sanitized HTML in format.
func formatStage(format string) cleaner.Cleaner {
	if format == "markdown" {
		return cleaner.NewMarkdown()
	}
	return cleaner.NewNoop()
}

func printStats(w io.Writer, name string, result *paste.Result, outputSize int) {
	s := result.Stats
	fmt.Fprintf(w, "Source: %s (%s mode)\n", name, result.Mode)
	fmt.Fprintf(w, "Input: %s, output: %s\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(outputSize)))
	fmt.Fprint(w, s.String())
	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings: %d\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
	}
}

// bufferMutator stands in for a live document: it keeps the inserted
// fragment so image handlers can finish updating it.
type bufferMutator struct {
	frag *paste.Fragment
}

func (m *bufferMutator) Insert(_ context.Context, frag *paste.Fragment) error {
	m.frag = frag
	return nil
}

// logHost logs document events the CLI has no layout for.
type logHost struct {
	changes int
}

func (h *logHost) ContentChanged() { h.changes++ }
func (h *logHost) HeightChanged()  {}
func (h *logHost) Report(w paste.Warning) {
	logger.Debug("paste report", "warning", w.String())
}

// pasteWithImages runs a full paste against an in-memory document, drives
// the event loop until every image handler has run, then renders the
// document again.
func pasteWithImages(ctx context.Context, processor *paste.Processor, in source.Input, mode paste.Mode) (*paste.Result, string, error) {
	loop := eventloop.New(eventloop.DefaultQueueSize)
	defer loop.Close()

	doc := &bufferMutator{}
	host := &logHost{}
	prober := source.NewImageProber(settings.Source, in.Name)
	paster := paste.NewPaster(processor, doc,
		paste.WithHost(host),
		paste.WithImageLoader(prober, loop),
	)

	result, err := paster.Paste(ctx, in.HTML, mode)
	if err != nil {
		return nil, "", err
	}

	runCtx, stop := context.WithCancel(ctx)
	go func() {
		paster.Wait()
		stop()
	}()
	if err := loop.Run(runCtx); err != nil && ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	loop.RunPending()

	logger.Debug("images measured", "images", len(result.Images), "changes", host.changes)
	return result, doc.frag.HTML(), nil
}
