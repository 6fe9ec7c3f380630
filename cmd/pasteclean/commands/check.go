package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pasteclean/internal/fixtures"
	"github.com/jmylchreest/pasteclean/internal/logger"
	"github.com/jmylchreest/pasteclean/pkg/paste"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <fixtures.yaml>",
		Short: "Run literal before/after paste fixtures",
		Long: `Run every case in a fixture file through the sanitizer and compare the
output with the expected markup byte for byte.

A fixture file looks like:

  cases:
    - name: nested wrappers
      mode: rich
      input: <div><span>x</span></div>
      want: <p>x</p>`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Bool("no-screen", false, "skip the security screen")
	cmd.Flags().BoolP("verbose", "v", false, "list passing cases too")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cases, err := fixtures.Load(args[0])
	if err != nil {
		return err
	}

	processor, err := paste.New(settings.Paste)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	out := cmd.OutOrStdout()
	outcomes := fixtures.Run(processor, cases)
	for _, o := range outcomes {
		switch {
		case !o.Passed:
			fmt.Fprintf(out, "FAIL %s\n  input: %q\n  want:  %q\n  got:   %q\n", o.Case.Name, o.Case.Input, o.Case.Want, o.Got)
		case verbose:
			fmt.Fprintf(out, "ok   %s\n", o.Case.Name)
		}
	}

	failed := fixtures.Failed(outcomes)
	logger.Debug("fixtures checked", "file", args[0], "cases", len(outcomes), "failed", len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d fixtures failed", len(failed), len(outcomes))
	}
	fmt.Fprintf(out, "%d fixtures passed\n", len(outcomes))
	return nil
}
