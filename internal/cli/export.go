package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"painel/internal/core"
	"painel/internal/dataset"
	"painel/internal/export"
	"painel/internal/log"
	"painel/internal/table"
)

type exportOptions struct {
	format  string
	charset string
	raw     bool
	term    string
	month   string
	output  string
}

func newExportCommand() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export <table|category>",
		Short: "Write the records of a table or category as CSV or XLSX",
		Long: "Write the records of a dashboard table (atraso, julho, acordos) or a\n" +
			"single category (contas_atraso, pagamentos_julho, acordos, acordos_fornecedores).\n" +
			"Use --output - to write to stdout.",
		Args: cobra.ExactArgs(1),
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

			n, dest, err := runExport(cmd.OutOrStdout(), store, args[0], opts)
			if err != nil {
				return err
			}
			logger.Info("Export written",
				log.FieldOperation, log.OpExport,
				log.FieldFormat, opts.format,
				log.FieldRows, n,
				"destination", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVar(&opts.charset, "charset", "utf-8", "CSV charset: utf-8 or windows-1252")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "write the original cells instead of normalized rows (CSV only)")
	cmd.Flags().StringVarP(&opts.term, "query", "q", "", "only records with a cell containing this text")
	cmd.Flags().StringVar(&opts.month, "mes", "", "only records with a cell containing this month, e.g. 07/")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: the table's download name)")

	return cmd
}

// resolveRecords accepts a table key first, then a category key.
func resolveRecords(store *dataset.Store, key string) ([]core.Record, string, error) {
	if t, err := core.ParseTable(key); err == nil {
		return store.TableRecords(t), t.ExportFilename(), nil
	}
	c, err := core.ParseCategory(key)
	if err != nil {
		return nil, "", fmt.Errorf("unknown table or category %q", key)
	}
	return store.Records(c), string(c), nil
}

func runExport(stdout io.Writer, store *dataset.Store, key string, opts exportOptions) (int, string, error) {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != "csv" && format != "xlsx" {
		return 0, "", fmt.Errorf("unsupported format %q: must be csv or xlsx", opts.format)
	}
	charset, err := export.ParseCharset(opts.charset)
	if err != nil {
		return 0, "", err
	}

	recs, name, err := resolveRecords(store, key)
	if err != nil {
		return 0, "", err
	}
	recs = table.FilterRecords(recs, opts.term, opts.month)
	if len(recs) == 0 {
		return 0, "", export.ErrNothingToExport
	}

	dest := opts.output
	if dest == "" {
		dest = export.Filename(name, format)
	}

	var w io.Writer = stdout
	if dest != "-" {
		f, err := os.Create(dest)
		if err != nil {
			return 0, "", fmt.Errorf("create %s: %w", dest, err)
		}
		defer f.Close()
		w = f
	}

	switch {
	case format == "xlsx":
		err = export.WriteRowsXLSX(w, recs, "")
	case opts.raw:
		err = writeEncoded(w, charset, export.WriteRawCSV, recs)
	default:
		err = writeEncoded(w, charset, export.WriteRowsCSV, recs)
	}
	if err != nil {
		return 0, "", fmt.Errorf("write %s: %w", format, err)
	}
	return len(recs), dest, nil
}

func writeEncoded(w io.Writer, c export.Charset, write func(io.Writer, []core.Record) error, recs []core.Record) error {
	enc := export.NewWriter(w, c)
	if err := write(enc, recs); err != nil {
		return err
	}
	return enc.Close()
}
