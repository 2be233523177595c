package cli

import (
	"fmt"

	"github.com/dmitrijs2005/medsupply/internal/client/services"
	"github.com/spf13/cobra"
)

func newSyncCommand(s *session) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bring the local cache up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			if force {
				res, err := a.fetcher.Refresh(cmd.Context(), a.config.UserID)
				if err != nil {
					return err
				}
				renderFetchResult(a.out, res)
				return nil
			}
			res, err := a.fetcher.SmartFetch(cmd.Context(), a.config.UserID)
			if err != nil {
				return err
			}
			renderFetchResult(a.out, res)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "download everything even if the cache is fresh")
	return cmd
}

func newListCommand(s *session) *cobra.Command {
	var category, search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List supplies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			a.refresh(cmd.Context())

			renderSupplies(a.out, a.supplies.Filter(search, category), a.now())
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only supplies whose category contains this text")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match code, description, category or store name")
	return cmd
}

func newShowCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show one supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			a.refresh(cmd.Context())
			item, err := a.supplies.Get(args[0])
			if err != nil {
				return err
			}
			renderSupply(a.out, item, a.now())
			return nil
		},
	}
}

func newCountCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Compare local and remote record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			a.refresh(cmd.Context())
			fmt.Fprintf(a.out, "Local:  %d\n", a.cache.Len())
			n, err := a.supplies.RemoteCount(cmd.Context())
			if err != nil {
				a.logger.Warn(cmd.Context(), "remote count failed", "err", err)
				fmt.Fprintln(a.out, "Remote: unavailable")
				return nil
			}
			fmt.Fprintf(a.out, "Remote: %d\n", n)
			return nil
		},
	}
}

func newExpiryCommand(s *session) *cobra.Command {
	var nearOnly, expiredOnly bool
	cmd := &cobra.Command{
		Use:   "expiry",
		Short: "Report expired and soon-to-expire supplies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			a.refresh(cmd.Context())
			expired, near := services.ExpiryReport(a.cache.All(), a.now())
			if nearOnly {
				expired = nil
			}
			if expiredOnly {
				near = nil
			}
			renderExpiry(a.out, expired, near)
			return nil
		},
	}
	cmd.Flags().BoolVar(&nearOnly, "near", false, "only supplies expiring within a month")
	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only expired supplies")
	cmd.MarkFlagsMutuallyExclusive("near", "expired")
	return cmd
}

func newWhoamiCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user's role and permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			p, err := a.access.Profile(cmd.Context(), a.config.UserID)
			if err != nil {
				return err
			}
			renderProfile(a.out, p)
			return nil
		},
	}
}
