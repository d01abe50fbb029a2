package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/BRMReports/internal/app"
	"github.com/JonMunkholm/BRMReports/internal/config"
	"github.com/JonMunkholm/BRMReports/internal/core"
	"github.com/JonMunkholm/BRMReports/internal/store"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	input      string
	output     string
	schema     string
	template   string
	noTemplate bool
	sheet      string
	keyColumn  string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the report archive for one input file",
		Long: `Reads an .xlsx or .csv report, normalizes it against the schema and
writes a zip holding the consolidated workbook and one workbook per group.

Use --output - to write the archive to stdout.`,
		Example: `  brmreport generate -i "Beneficiary Data.xlsx"
  brmreport generate -i data.csv -o out/reports.zip --no-template`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "input report (.xlsx or .csv)")
	f.StringVarP(&opts.output, "output", "o", "", "archive path, or - for stdout (default: REPORT_ARCHIVE_NAME)")
	f.StringVarP(&opts.schema, "schema", "s", "", "schema key (default: REPORT_DEFAULT_SCHEMA)")
	f.StringVarP(&opts.template, "template", "t", "", "template workbook (default: REPORT_TEMPLATE_PATH)")
	f.BoolVar(&opts.noTemplate, "no-template", false, "render into blank workbooks with a header row")
	f.StringVar(&opts.sheet, "sheet", "", "input workbook sheet (default: first sheet)")
	f.StringVar(&opts.keyColumn, "key-column", "", "override the schema's grouping column")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts.apply(cfg)

	service, err := app.NewService(cfg, app.Renderer(cfg), store.NewMemoryHistory(1))
	if err != nil {
		return err
	}

	body, err := readInput(cfg, opts.input)
	if err != nil {
		return err
	}

	report, err := service.Generate(cmd.Context(), core.GenerateRequest{
		SchemaKey: opts.schema,
		FileName:  filepath.Base(opts.input),
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	summary := cmd.OutOrStdout()
	if opts.output == "-" {
		if _, err := cmd.OutOrStdout().Write(report.Archive); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		summary = cmd.ErrOrStderr()
	} else {
		out := opts.output
		if out == "" {
			out = report.ArchiveName
		}
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(out, report.Archive, 0o644); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		fmt.Fprintf(summary, "Wrote %s\n", out)
	}

	printSummary(summary, report)
	return nil
}

// apply copies flag overrides onto cfg.
func (o *generateOptions) apply(cfg *config.Config) {
	if o.noTemplate {
		cfg.Report.TemplatePath = ""
	} else if o.template != "" {
		cfg.Report.TemplatePath = o.template
	}
	if o.sheet != "" {
		cfg.Upload.Sheet = o.sheet
	}
	if o.keyColumn != "" {
		cfg.Report.KeyColumn = o.keyColumn
	}
}

func readInput(cfg *config.Config, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return app.Decoder(cfg).ReadAll(f)
}

func printSummary(w io.Writer, r *core.Report) {
	fmt.Fprintf(w, "%d rows, %d groups", r.Rows, len(r.Groups))
	if r.MissingKeyRows > 0 {
		fmt.Fprintf(w, ", %d rows without a group key", r.MissingKeyRows)
	}
	fmt.Fprintln(w)
	for _, name := range r.Documents {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
