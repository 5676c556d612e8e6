package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stock-analyzer/internal/app"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Analyze a symbol and write its PDF report",
		Example: `  stock-analyzer analyze TCS.NS
  stock-analyzer analyze RELIANCE.NS --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := ""
			if len(args) == 1 {
				symbol = args[0]
			}

			_, application, err := setup()
			if err != nil {
				return err
			}

			result, err := application.Analyze(context.Background(), symbol)
			if errors.Is(err, app.ErrNoSymbol) {
				fmt.Fprintln(cmd.ErrOrStderr(), app.NoSymbolWarning)
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result.Report)
			}

			fmt.Fprint(out, result.Document.PlainText())
			fmt.Fprintf(out, "\nReport saved to %s\n", result.Artifact.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
