package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authbridge/internal/actions"
	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/forms"
	"github.com/spf13/cobra"
)

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and keep the session on this machine",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.run(a.login),
	}
}

func (a *App) login(ctx context.Context, _ *cobra.Command, args []string) error {
	username, err := a.prompt(args, "Username")
	if err != nil {
		return err
	}
	password, err := a.password("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	in := forms.Login{Username: username, Password: string(password)}
	if err := a.check(&in); err != nil {
		return err
	}

	res, s := a.actions.Login(ctx, in)
	if res.Kind == actions.KindOpaque {
		return codeError(exitFailure, "login failed, check your username and password")
	}
	if err := a.report(res, forms.LoginBindings, ""); err != nil {
		return err
	}

	if err := a.sessions.Save(ctx, s); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", s.User.Username)
	return nil
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.logout),
	}
}

func (a *App) logout(ctx context.Context, _ *cobra.Command, _ []string) error {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	a.actions.Logout(ctx, s)
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) registerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Create a new account",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.run(a.register),
	}
}

func (a *App) register(ctx context.Context, _ *cobra.Command, args []string) error {
	username, err := a.prompt(args, "Username")
	if err != nil {
		return err
	}
	password, err := a.password("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	retype, err := a.password("Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(retype)

	in := forms.Register{Username: username, Password: string(password), PasswordRetype: string(retype)}
	if err := a.check(&in); err != nil {
		return err
	}

	res := a.actions.Register(ctx, in)
	if err := a.report(res, forms.RegisterBindings, "registration failed, try again later"); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s created, run `authbridgectl login` to sign in\n", in.Username)
	return nil
}
