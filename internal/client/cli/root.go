package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/authbridge/internal/buildinfo"
	"github.com/dmitrijs2005/authbridge/internal/client/config"
	"github.com/spf13/cobra"
)

type runFunc func(ctx context.Context, cmd *cobra.Command, args []string) error

// NewRootCommand builds the command tree. The returned cleanup closes the
// local store and must be called after Execute.
func NewRootCommand(in io.Reader, out, errOut io.Writer) (*cobra.Command, func() error) {
	a := newApp(in, out, errOut)

	root := &cobra.Command{
		Use:           "authbridgectl",
		Short:         "Manage your account on the authbridge API from the terminal",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	config.Bind(root.PersistentFlags(), &a.config)

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.registerCommand(),
		a.whoamiCommand(),
		a.profileCommand(),
		a.changePasswordCommand(),
		a.deleteAccountCommand(),
	)
	return root, a.close
}

// run wraps a command body so the app is wired only for commands that
// actually execute, not for help or completion.
func (a *App) run(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := a.open(ctx, cmd.Flags()); err != nil {
			return err
		}
		return fn(ctx, cmd, args)
	}
}

// Execute runs authbridgectl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root, cleanup := NewRootCommand(in, out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := cleanup(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return 0
	}

	var ee *exitErr
	if errors.As(err, &ee) {
		fmt.Fprintln(errOut, "Error:", ee.msg)
		return ee.code
	}
	fmt.Fprintln(errOut, "Error:", err)
	return exitFailure
}
