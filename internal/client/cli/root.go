package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/medsupply/internal/buildinfo"
	"github.com/dmitrijs2005/medsupply/internal/client/config"
	"github.com/spf13/cobra"
)

// session carries what the commands share during one invocation.
type session struct {
	flags config.Flags
	in    io.Reader
	out   io.Writer
	app   *App
}

func (s *session) open(cmd *cobra.Command) error {
	cfg, err := config.Load(&s.flags, cmd.Flags().Changed)
	if err != nil {
		return err
	}
	app, err := NewApp(cmd.Context(), cfg, s.in, s.out)
	if err != nil {
		return err
	}
	s.app = app
	return nil
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

// NewRootCommand builds the command tree. Commands open the App lazily in
// PersistentPreRunE; the caller must call the returned close func.
func NewRootCommand(in io.Reader, out io.Writer) (*cobra.Command, func() error) {
	s := &session{in: in, out: out}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Medical supply inventory with offline cache",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	s.flags.Register(root.PersistentFlags())

	root.AddCommand(
		newSyncCommand(s),
		newListCommand(s),
		newShowCommand(s),
		newCountCommand(s),
		newExpiryCommand(s),
		newAddCommand(s),
		newEditCommand(s),
		newDeleteCommand(s),
		newImportCommand(s),
		newImageCommand(s),
		newWatchCommand(s),
		newCacheCommand(s),
		newWhoamiCommand(s),
	)
	return root, s.close
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root, closeFn := NewRootCommand(in, out)
	root.SetErr(errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := closeFn(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}
