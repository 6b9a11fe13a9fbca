package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// rules checks the validate tags, refinements the refine tags.
	rules       *validator.Validate
	refinements *validator.Validate
)

func init() {
	rules = newValidator("validate")
	refinements = newValidator("refine")
}

func newValidator(tag string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(tag)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks form, which must be a pointer to one of the schema structs.
// It returns nil when the form is valid.
func Validate(form any) *Errors {
	if err := rules.Struct(form); err != nil {
		return collect(form, err, minMessage)
	}
	if err := refinements.Struct(form); err != nil {
		return collect(form, err, refineMessage)
	}
	return nil
}

type messageFunc func(f reflect.StructField, fe validator.FieldError) string

func collect(form any, err error, msg messageFunc) *Errors {
	out := NewErrors()

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.SetError(RootPath, err.Error())
		return out
	}

	t := reflect.TypeOf(form)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		f, _ := t.FieldByName(fe.StructField())
		out.SetError(fe.Field(), msg(f, fe))
	}
	return out
}

func minMessage(f reflect.StructField, fe validator.FieldError) string {
	label := f.Tag.Get("label")
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", label)
	}
	return fmt.Sprintf("%s is invalid", label)
}

func refineMessage(f reflect.StructField, fe validator.FieldError) string {
	if m := f.Tag.Get("msg"); m != "" {
		return m
	}
	return minMessage(f, fe)
}
