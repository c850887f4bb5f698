package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"modelpipe/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// newRootCmd builds the command tree. Protocol frames are read from in and
// written to out; logs and diagnostics go to errOut.
func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "modelpipe",
		Short: "Serve a model over a framed binary pipe",
		Long: "modelpipe reads framed requests on stdin and writes framed responses on stdout.\n" +
			"It keeps one model session loaded at a time and tracks per-batch statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	config.RegisterFlags(root.PersistentFlags())
	root.SetErr(errOut)

	runServe := func(cmd *cobra.Command, _ []string) error {
		v, err := config.NewViper(cmd.Flags())
		if err != nil {
			return err
		}
		cfg, err := config.Resolve(v)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, in, out, errOut)
	}
	root.RunE = runServe

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the service loop (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
				return err
			},
		},
	)
	return root
}
