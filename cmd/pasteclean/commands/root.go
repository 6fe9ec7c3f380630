// Package commands implements the CLI commands for pasteclean.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/pasteclean/internal/config"
	"github.com/jmylchreest/pasteclean/internal/logger"
)

// settings is resolved before any subcommand runs.
var settings *config.Config

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"debug":          config.KeyDebug,
	"quiet":          config.KeyQuiet,
	"log-level":      config.KeyLogLevel,
	"max-input-size": config.KeyMaxInputSize,
	"tab-width":      config.KeyTabWidth,
	"timeout":        config.KeyTimeout,
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pasteclean",
		Short: "Sanitize pasted HTML for a rich-text editor",
		Long: `Pasteclean normalizes clipboard HTML into the restricted markup a
rich-text editor accepts.

Rich paste keeps paragraphs, headings, lists, quotes, links, images and
bold/italic/underline/strike. Text paste reduces everything further to
paragraphs, lists and line breaks.

Examples:
  # Sanitize a saved clipboard payload
  pasteclean rich clip.html

  # Plain paste from stdin, converted to Markdown
  xclip -o -t text/html | pasteclean text --format markdown

  # Fetch a page and print a JSON report with stats
  pasteclean rich https://example.com/article --report json --stats

  # Run literal before/after fixtures
  pasteclean check testdata/fixtures.yaml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.pasteclean.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.String("log-level", "", "log level: debug, info, warn, error (overrides --debug and --quiet)")

	cmd.AddCommand(
		newSanitizeCmd(sanitizeRich),
		newSanitizeCmd(sanitizeText),
		newCheckCmd(),
		newVersionCmd(),
	)
	return cmd
}

// initConfig resolves file, environment and flag settings and initialises
// the logger.
func initConfig(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key := flagKeys[f.Name]; key != "" {
			_ = v.BindPFlag(key, f)
		}
	})

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if noScreen, _ := cmd.Flags().GetBool("no-screen"); noScreen {
		cfg.Paste.Screen = false
	}
	if noVerify, _ := cmd.Flags().GetBool("no-verify"); noVerify {
		cfg.Paste.Verify = false
	}

	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	settings = cfg
	return nil
}

// Execute runs the root command.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		return err
	}
	return nil
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
