package apiclient

// Wire shapes of the REST API. Field names follow the API's snake_case.

type TokenObtainRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

type UserCreate struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	PasswordRetype string `json:"password_retype"`
}

type UserChangePassword struct {
	Password       string `json:"password"`
	PasswordNew    string `json:"password_new"`
	PasswordRetype string `json:"password_retype"`
}

// PatchedUserCurrent carries a partial profile update; nil fields are left
// untouched by the API.
type PatchedUserCurrent struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type UserCurrent struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
