package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authbridge/internal/apiclient"
	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/forms"
	"github.com/spf13/cobra"
)

const opaqueAccount = "the request could not be completed, try again later"

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.whoami),
	}
}

func (a *App) whoami(ctx context.Context, _ *cobra.Command, _ []string) error {
	s, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	res, u := a.actions.CurrentUser(ctx, s)
	if err := a.report(res, nil, opaqueAccount); err != nil {
		return err
	}
	a.printUser(u)
	return nil
}

func (a *App) printUser(u *apiclient.UserCurrent) {
	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	fmt.Fprintf(a.out, "Username:   %s\n", u.Username)
	fmt.Fprintf(a.out, "First name: %s\n", orDash(u.FirstName))
	fmt.Fprintf(a.out, "Last name:  %s\n", orDash(u.LastName))
}

func (a *App) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your first and last name",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.profile),
	}
	cmd.Flags().String("first-name", "", "new first name")
	cmd.Flags().String("last-name", "", "new last name")
	return cmd
}

func (a *App) profile(ctx context.Context, cmd *cobra.Command, _ []string) error {
	var in forms.Profile
	for name, dst := range map[string]**string{"first-name": &in.FirstName, "last-name": &in.LastName} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*dst = &v
	}
	if in.FirstName == nil && in.LastName == nil {
		return codeError(exitRejected, "nothing to update, pass --first-name and/or --last-name")
	}
	if err := a.check(&in); err != nil {
		return err
	}

	s, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	res, u := a.actions.Profile(ctx, s, in)
	if err := a.report(res, forms.ProfileBindings, opaqueAccount); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	a.printUser(u)
	return nil
}

func (a *App) changePasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.changePassword),
	}
}

func (a *App) changePassword(ctx context.Context, _ *cobra.Command, _ []string) error {
	s, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	var secrets [3][]byte
	defer func() {
		for _, b := range secrets {
			common.WipeByteArray(b)
		}
	}()
	for i, label := range []string{"Current password", "New password", "Repeat new password"} {
		if secrets[i], err = a.password(label); err != nil {
			return err
		}
	}

	in := forms.ChangePassword{
		Password:       string(secrets[0]),
		PasswordNew:    string(secrets[1]),
		PasswordRetype: string(secrets[2]),
	}
	if err := a.check(&in); err != nil {
		return err
	}

	res := a.actions.ChangePassword(ctx, s, in)
	if err := a.report(res, forms.ChangePasswordBindings, opaqueAccount); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) deleteAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-account",
		Short: "Delete your account permanently",
		Args:  cobra.NoArgs,
		RunE:  a.run(a.deleteAccount),
	}
}

func (a *App) deleteAccount(ctx context.Context, _ *cobra.Command, _ []string) error {
	s, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	typed, err := GetSimpleText(a.in, "Type your username to confirm account deletion", a.out)
	if err != nil {
		return err
	}

	in := forms.DeleteAccount{Username: typed, UsernameCurrent: s.User.Username}
	if err := a.check(&in); err != nil {
		return err
	}

	res := a.actions.DeleteAccount(ctx, s, in)
	if err := a.report(res, forms.DeleteAccountBindings, opaqueAccount); err != nil {
		return err
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}
