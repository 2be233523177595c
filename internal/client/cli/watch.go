package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medsupply/internal/client/services"
	"github.com/spf13/cobra"
)

func newWatchCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Track connectivity and refresh supplies when the store comes back online",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			a.watcher.OnChange(func(ctx context.Context, m services.Mode) {
				fmt.Fprintf(a.out, "Store is %s.\n", m)
				if m != services.ModeOnline {
					return
				}
				res, err := a.fetcher.SmartFetch(ctx, a.config.UserID)
				if err != nil {
					fmt.Fprintf(a.out, "Warning: could not refresh supplies: %v\n", err)
					return
				}
				renderFetchResult(a.out, res)
			})
			fmt.Fprintf(a.out, "Watching %s store every %s, press Ctrl+C to stop.\n",
				a.config.StoreBackend, a.config.OnlineCheckInterval)
			a.watcher.Run(cmd.Context())
			return nil
		},
	}
}
