package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pzverkov/quantum-go-fips/pkg/fips"
)

func newPOSTCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Run the power-on self-test",
		Long: `Run the power-on self-test and print one line per self-test.

The command exits with status 1 when any self-test fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			env, err := openModule(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Close()

			postErr := env.module.RunPOST(cmd.Context())
			printReport(cmd.OutOrStdout(), env.module.LastReport())
			if postErr != nil {
				return fmt.Errorf("power-on self-test failed: %w", postErr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "module %s\n", env.module.Query())
			return nil
		},
	}
}

func printReport(w io.Writer, r *fips.Report) {
	if r == nil {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tNAME\tRESULT\tDURATION")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Test, res.Name, res.Outcome(), res.Duration)
	}
	_ = tw.Flush()
}
