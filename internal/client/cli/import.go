package cli

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/medsupply/internal/client/services"
	"github.com/dmitrijs2005/medsupply/internal/client/spreadsheet"
	"github.com/spf13/cobra"
)

func newImportCommand(s *session) *cobra.Command {
	var (
		overwrite bool
		dryRun    bool
		encoding  string
		delimiter string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import supplies from a CSV or XLSX spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			ctx := cmd.Context()

			opts := spreadsheet.Options{Encoding: encoding}
			if delimiter != "" {
				r, size := utf8.DecodeRuneInString(delimiter)
				if size != len(delimiter) {
					return errors.New("delimiter must be a single character")
				}
				opts.Delimiter = r
			}

			parsed, err := spreadsheet.ParseFile(args[0], opts)
			if err != nil {
				return err
			}
			renderMapping(a.out, parsed)
			fmt.Fprintf(a.out, "Read %s from %s.\n", plural(len(parsed.Supplies), "row", "rows"), args[0])

			a.refresh(ctx)
			renderPreview(a.out, a.imports.Preview(parsed.Supplies))
			if dryRun {
				return nil
			}

			mode := services.ImportNewOnly
			if overwrite {
				mode = services.ImportOverwrite
			}
			stats, err := a.imports.Run(ctx, parsed.Supplies, a.config.UserID, mode, newProgressPrinter(a.out).Update)
			if stats != nil {
				renderStats(a.out, stats)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace supplies that already exist")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the duplicate preview without uploading")
	cmd.Flags().StringVar(&encoding, "encoding", "", "CSV text encoding, e.g. windows-1251 (default UTF-8)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "CSV delimiter (detected when empty)")
	return cmd
}
