package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/pasteclean/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version output must not depend on a readable config file.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			short, _ := cmd.Flags().GetBool("short")
			asYAML, _ := cmd.Flags().GetBool("yaml")
			out := cmd.OutOrStdout()
			switch {
			case short:
				fmt.Fprintln(out, version.String())
			case asYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(version.Get()); err != nil {
					return err
				}
				return enc.Close()
			default:
				fmt.Fprintln(out, version.Full())
			}
			return nil
		},
	}
	cmd.Flags().Bool("short", false, "print only the version number")
	cmd.Flags().Bool("yaml", false, "print version information as YAML")
	return cmd
}
