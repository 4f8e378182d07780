package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a rule violation scoped to one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every violated rule of a submission.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields groups the messages by field name.
func (e ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Has reports whether field has at least one error.
func (e ValidationErrors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var (
	nationalNumber = regexp.MustCompile(`^[1-9][0-9]*$`)
	callingCode    = regexp.MustCompile(`^\+?[1-9][0-9]{0,3}$`)
)

// NewValidator returns a validator with the form specific tags registered.
// Tag names must not collide with the validator's built-in tags or aliases.
func NewValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "national_number", nationalNumber)
	mustRegister(v, "calling_code", callingCode)
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("schema: register %s: %v", tag, err))
	}
}

var kindRules = map[Kind]string{
	KindEmail:  "email",
	KindURL:    "url",
	KindNumber: "numeric",
	KindDate:   "datetime=2006-01-02",
}

var kindMessages = map[Kind]string{
	KindEmail:  "must be a valid email address",
	KindURL:    "must be a valid URL",
	KindNumber: "must be a number",
	KindDate:   "must be a date (YYYY-MM-DD)",
}

// Validate checks the visible fields of s against v. Hidden fields are never
// validated, whatever stale value they hold. File fields are checked by the
// attachment slots.
func Validate(vd *validator.Validate, s Schema, v Values) ValidationErrors {
	var errs ValidationErrors
	for _, f := range s.Visible(v) {
		if f.Kind == KindFile {
			continue
		}
		errs = append(errs, validateField(vd, f, v)...)
	}
	return errs
}

func validateField(vd *validator.Validate, f FieldSpec, v Values) ValidationErrors {
	fail := func(msg string) ValidationErrors {
		return ValidationErrors{{Field: f.Name, Message: msg}}
	}

	switch f.Kind {
	case KindPhone:
		p := v.Phone(f.Name)
		if p.IsZero() {
			if f.Required {
				return fail("is required")
			}
			return nil
		}
		var errs ValidationErrors
		if vd.Var(strings.TrimSpace(p.CountryCode), "required,calling_code") != nil {
			errs = append(errs, FieldError{Field: f.Name, Message: "country code must be + followed by 1 to 4 digits"})
		}
		if vd.Var(strings.TrimSpace(p.Number), "national_number") != nil {
			errs = append(errs, FieldError{Field: f.Name, Message: "number must contain digits only and must not start with 0"})
		}
		return errs

	case KindList:
		items := v.List(f.Name)
		var kept int
		for i, it := range items {
			if strings.TrimSpace(it) == "" {
				return fail(fmt.Sprintf("entry %d is empty", i+1))
			}
			kept++
		}
		if f.Required && kept == 0 {
			return fail("requires at least one entry")
		}
		return nil
	}

	raw := v[f.Name]
	if !ShouldInclude(raw) {
		if f.Required {
			return fail("is required")
		}
		return nil
	}
	value := strings.TrimSpace(v.String(f.Name))

	if f.Kind == KindSelect && len(f.Options) > 0 && !f.hasOption(value) {
		return fail(fmt.Sprintf("%q is not an allowed value", value))
	}
	if rule, ok := kindRules[f.Kind]; ok {
		if vd.Var(value, rule) != nil {
			return fail(kindMessages[f.Kind])
		}
	}
	if f.Rule != "" {
		if err := vd.Var(value, f.Rule); err != nil {
			return fail(fmt.Sprintf("violates %s", f.Rule))
		}
	}
	return nil
}
