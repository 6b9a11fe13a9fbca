package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/authbridge/internal/actions"
	"github.com/dmitrijs2005/authbridge/internal/apiclient"
	"github.com/dmitrijs2005/authbridge/internal/forms"
	"github.com/dmitrijs2005/authbridge/internal/session"
)

const maxBodyBytes = 64 << 10

type response struct {
	OK            bool          `json:"ok"`
	Errors        *forms.Errors `json:"errors,omitempty"`
	Authenticated *bool         `json:"authenticated,omitempty"`
	User          any           `json:"user,omitempty"`
}

// profileView is the inbound-facing shape of a user, in the forms' naming.
type profileView struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func viewOf(u *apiclient.UserCurrent) any {
	if u == nil {
		return nil
	}
	return &profileView{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func sessionUser(s *session.Session) any {
	if s == nil {
		return nil
	}
	return s.User
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeForm reads a JSON object into form and validates it. On failure the
// response has already been written.
func decodeForm(w http.ResponseWriter, r *http.Request, form any) bool {
	return decodeFormWith(w, r, form, nil)
}

// decodeFormWith runs fill between decoding and validation, for fields the
// server owns.
func decodeFormWith(w http.ResponseWriter, r *http.Request, form any, fill func()) bool {
	if err := decodeSingle(io.LimitReader(r.Body, maxBodyBytes), form); err != nil {
		errs := forms.NewErrors()
		errs.SetError(forms.RootPath, "Invalid request body")
		writeJSON(w, http.StatusBadRequest, response{OK: false, Errors: errs})
		return false
	}
	if fill != nil {
		fill()
	}
	if errs := forms.Validate(form); errs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, response{OK: false, Errors: errs})
		return false
	}
	return true
}

// decodeSingle reads exactly one JSON value into v. An empty body is
// accepted and leaves v untouched; anything after the value is an error.
func decodeSingle(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// writeResult renders a non-OK action result. API field errors are mapped
// onto form paths through b.
func writeResult(w http.ResponseWriter, res actions.Result, b forms.Bindings) {
	switch res.Kind {
	case actions.KindFieldError:
		errs := forms.NewErrors()
		forms.Bind(res.Fields, b, errs)
		if errs.Empty() {
			// nothing this form can show; keep the user informed anyway
			errs.SetError(forms.RootPath, "Request was rejected")
		}
		writeJSON(w, http.StatusUnprocessableEntity, response{OK: false, Errors: errs})
	case actions.KindOK:
		writeJSON(w, http.StatusOK, response{OK: true})
	default:
		writeJSON(w, http.StatusBadGateway, response{OK: false})
	}
}
