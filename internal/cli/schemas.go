package cli

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/BRMReports/internal/core"
	_ "github.com/JonMunkholm/BRMReports/internal/core/schemas" // Register report schemas
	"github.com/spf13/cobra"
)

func newSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List registered report schemas and their column types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			schemas := core.All()
			if len(schemas) == 0 {
				fmt.Fprintln(out, "No schemas registered.")
				return nil
			}

			for _, s := range schemas {
				fmt.Fprintf(out, "%s (%s)\n", s.Key, s.Label)
				fmt.Fprintf(out, "  key column: %s\n", s.KeyColumn)
				for _, ft := range []core.FieldType{core.FieldText, core.FieldNumeric, core.FieldDate} {
					cols := s.ColumnsOf(ft)
					if len(cols) == 0 {
						continue
					}
					fmt.Fprintf(out, "  %s: %s\n", ft, strings.Join(quoteAll(cols), ", "))
				}
			}
			return nil
		},
	}
}

// quoteAll quotes names so trailing spaces stay visible.
func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = `"` + n + `"`
	}
	return out
}
