package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local supply cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show local cache size and last sync time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			fmt.Fprintf(a.out, "%-10s %d\n", "Supplies:", a.cache.Len())
			last := "never"
			if t := a.cache.LastSync(); t != nil {
				last = t.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(a.out, "%-10s %s\n", "Synced:", last)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached supply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			n := a.cache.Len()
			a.cache.Clear()
			fmt.Fprintf(a.out, "Cleared %s from the local cache.\n", plural(n, "supply", "supplies"))
			return nil
		},
	})
	return cmd
}
