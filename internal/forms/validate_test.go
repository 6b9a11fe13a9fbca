package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		form any
		want map[string][]string
	}{
		{
			name: "login ok",
			form: &Login{Username: "johndoe", Password: "secret123"},
		},
		{
			name: "login too short",
			form: &Login{Username: "john", Password: "short"},
			want: map[string][]string{
				"username": {"Username must be at least 6 characters"},
				"password": {"Password must be at least 8 characters"},
			},
		},
		{
			name: "register mismatch",
			form: &Register{Username: "johndoe", Password: "secret1", PasswordRetype: "secret2"},
			want: map[string][]string{
				"passwordRetype": {"Passwords are not matching"},
			},
		},
		{
			// refinements wait until every field rule passes
			name: "register short and mismatched",
			form: &Register{Username: "johndoe", Password: "abc", PasswordRetype: "secret2"},
			want: map[string][]string{
				"password": {"Password must be at least 6 characters"},
			},
		},
		{
			name: "profile empty",
			form: &Profile{},
		},
		{
			name: "profile partial",
			form: &Profile{FirstName: strptr("John")},
		},
		{
			name: "change password ok",
			form: &ChangePassword{Password: "oldsecret", PasswordNew: "newsecret", PasswordRetype: "newsecret"},
		},
		{
			name: "change password retype mismatch",
			form: &ChangePassword{Password: "oldsecret", PasswordNew: "newsecret", PasswordRetype: "newsecreT"},
			want: map[string][]string{
				"passwordRetype": {"Passwords are not matching"},
			},
		},
		{
			name: "change password same as current",
			form: &ChangePassword{Password: "oldsecret", PasswordNew: "oldsecret", PasswordRetype: "oldsecret"},
			want: map[string][]string{
				"passwordNew": {"Both new and current passwords are same"},
			},
		},
		{
			name: "change password short",
			form: &ChangePassword{Password: "a", PasswordNew: "b", PasswordRetype: "b"},
			want: map[string][]string{
				"password":       {"Current password must be at least 8 characters"},
				"passwordNew":    {"New password must be at least 8 characters"},
				"passwordRetype": {"Password must be at least 8 characters"},
			},
		},
		{
			name: "delete account ok",
			form: &DeleteAccount{Username: "johndoe", UsernameCurrent: "johndoe"},
		},
		{
			name: "delete account mismatch",
			form: &DeleteAccount{Username: "janedoe", UsernameCurrent: "johndoe"},
			want: map[string][]string{
				"username": {"Username is not matching"},
			},
		},
		{
			name: "delete account without current user",
			form: &DeleteAccount{Username: "johndoe"},
			want: map[string][]string{
				"username": {"Username is not matching"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.form)
			if tt.want == nil {
				assert.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			assert.Equal(t, tt.want, errs.Fields())
		})
	}
}
