package forms

// Field tags:
//   - json names the form path;
//   - validate holds the per-field rules;
//   - refine holds cross-field rules, checked only once every per-field
//     rule passes;
//   - label is used in per-field messages, msg is the refine message.

type Login struct {
	Username string `json:"username" validate:"min=6" label:"Username"`
	Password string `json:"password" validate:"min=8" label:"Password"`
}

type Register struct {
	Username       string `json:"username" validate:"min=6" label:"Username"`
	Password       string `json:"password" validate:"min=6" label:"Password"`
	PasswordRetype string `json:"passwordRetype" validate:"min=6" label:"Password" refine:"eqfield=Password" msg:"Passwords are not matching"`
}

// Profile fields are optional. A nil field is left untouched by the API.
type Profile struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=150" label:"First name"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=150" label:"Last name"`
}

type ChangePassword struct {
	Password       string `json:"password" validate:"min=8" label:"Current password"`
	PasswordNew    string `json:"passwordNew" validate:"min=8" label:"New password" refine:"nefield=Password" msg:"Both new and current passwords are same"`
	PasswordRetype string `json:"passwordRetype" validate:"min=8" label:"Password" refine:"eqfield=PasswordNew" msg:"Passwords are not matching"`
}

// DeleteAccount asks the user to type their username. UsernameCurrent is
// overwritten from the session before validation.
type DeleteAccount struct {
	Username        string `json:"username" validate:"min=6" label:"Username" refine:"eqfield=UsernameCurrent" msg:"Username is not matching"`
	UsernameCurrent string `json:"usernameCurrent,omitempty" validate:"omitempty,min=6" label:"Username"`
}

// API field bindings per form.
var (
	RegisterBindings = Bindings{
		"username":        "username",
		"password":        "password",
		"password_retype": "passwordRetype",
	}
	ProfileBindings = Bindings{
		"first_name": "firstName",
		"last_name":  "lastName",
	}
	ChangePasswordBindings = Bindings{
		"password":        "password",
		"password_new":    "passwordNew",
		"password_retype": "passwordRetype",
	}
	DeleteAccountBindings = Bindings{
		"username": "username",
	}
	LoginBindings = Bindings{
		"username": "username",
		"password": "password",
	}
)
