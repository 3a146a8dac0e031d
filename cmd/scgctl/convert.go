package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scg/portal/internal/infrastructure/scanner"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert raw scanner exports into upload documents",
	}
	cmd.AddCommand(
		converter("burp <in.xml>", "Convert a Burp Suite issue export to report upload JSON",
			func(r io.Reader) (any, error) { return scanner.ConvertBurp(r) }),
		converter("nessus <in.nessus>", "Convert a Nessus scan export to report upload JSON",
			func(r io.Reader) (any, error) { return scanner.ConvertNessusScan(r) }),
		converter("nessus-plugins <list_plugins.json>", "Convert a Nessus plugin list to signature bulk JSON",
			func(r io.Reader) (any, error) { return scanner.ConvertNessusPlugins(r) }),
	)
	return cmd
}

func converter(use, short string, convert func(io.Reader) (any, error)) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := convert(in)
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}

			if outPath == "" {
				return writeOutput(cmd.OutOrStdout(), doc)
			}
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := writeOutput(out, doc); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	return cmd
}
