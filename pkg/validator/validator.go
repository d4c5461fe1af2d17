package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// FieldError describes one failed rule, keyed by the field's JSON name.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (e FieldError) Message() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", e.Field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", e.Field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field)
	case "oneof":
		return fmt.Sprintf("%s has an unsupported value", e.Field)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Rule)
}

// Errors is returned by Struct when validation fails.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message()
	}
	return strings.Join(msgs, "; ")
}

// Validator checks `validate` struct tags.
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New()
	v.RegisterTagNameFunc(JSONName)
	return &Validator{v: v}
}

// Struct validates obj and returns Errors on rule failures.
func (v *Validator) Struct(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}
	if out := FromBinding(err); out != nil {
		return out
	}
	return err
}

// FromBinding converts rule failures reported by validator/v10, including
// those surfaced through gin binding. It returns nil for any other error.
func FromBinding(err error) Errors {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// JSONName reports a field by its json tag name, then its form tag name.
func JSONName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}
