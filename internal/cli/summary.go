package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"painel/internal/core"
	"painel/internal/dataset"
)

func newSummaryCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Load the data once and print the dashboard metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadAndValidateConfig(nil)
			if err != nil {
				return err
			}
			logger := SetupLogger(cfg, cmd.ErrOrStderr())

			store, cleanup, err := OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := store.Load(cmd.Context()); err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(store.DetailedSummary())
			}
			return printSummary(cmd.OutOrStdout(), store)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the detailed summary as JSON")

	return cmd
}

func printSummary(out io.Writer, store *dataset.Store) error {
	m := store.Metrics()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Total geral\t%s\n", core.FormatBRL(m.GrandTotal))
	fmt.Fprintf(tw, "Contas em atraso\t%s\n", core.FormatCount(m.Overdue))
	fmt.Fprintf(tw, "Pagamentos julho\t%s\n", core.FormatCount(m.JulyPayments))
	fmt.Fprintf(tw, "Acordos ativos\t%s\n", core.FormatCount(m.ActiveAgreements))
	fmt.Fprintf(tw, "Linhas com dados\t%s\n", core.FormatCount(m.RowsWithData))
	fmt.Fprintf(tw, "Células preenchidas\t%s\n", core.FormatCount(m.FilledCells))
	fmt.Fprintf(tw, "Valores numéricos\t%s\n", core.FormatCount(m.NumericValues))
	fmt.Fprintln(tw)

	for _, ct := range store.TotalsByCategory() {
		fmt.Fprintf(tw, "%s\t%s\t%s linhas\n", ct.Label, core.FormatBRL(ct.Total), core.FormatCount(ct.Rows))
	}
	return tw.Flush()
}
