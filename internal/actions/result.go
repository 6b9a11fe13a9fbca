package actions

import "github.com/dmitrijs2005/authbridge/internal/apiclient"

// Kind tags an action Result.
type Kind int

const (
	KindOK Kind = iota
	// KindFieldError carries the API's field messages unchanged.
	KindFieldError
	// KindOpaque is every other failure. The user sees a generic message.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindFieldError:
		return "field_error"
	case KindOpaque:
		return "opaque"
	}
	return "unknown"
}

// Result is what every action returns. Fields is set only for
// KindFieldError.
type Result struct {
	Kind   Kind
	Fields apiclient.FieldErrors
}

func OK() Result { return Result{Kind: KindOK} }

func FieldError(fields apiclient.FieldErrors) Result {
	return Result{Kind: KindFieldError, Fields: fields}
}

func Opaque() Result { return Result{Kind: KindOpaque} }

func (r Result) IsOK() bool { return r.Kind == KindOK }
