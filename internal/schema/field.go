// Package schema declares, per publication type, the ordered form fields,
// their kind, required-ness and visibility over sibling values.
package schema

import (
	"solifin/internal/attachment"
)

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindPhone    Kind = "phone"
	KindFile     Kind = "file"
	KindDate     Kind = "date"
	KindNumber   Kind = "number"
	KindURL      Kind = "url"
	KindEmail    Kind = "email"
	KindList     Kind = "list"
	KindCustom   Kind = "custom"
)

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Predicate decides visibility from the current values.
type Predicate func(Values) bool

type FieldSpec struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Options  []Option
	// Accept is the MIME pattern of file fields.
	Accept string
	// Slot is the attachment kind of file fields.
	Slot attachment.Kind
	// PayloadKey overrides Name in the outbound payload.
	PayloadKey string
	// Rule is an extra validator tag applied to non-empty values.
	Rule        string
	VisibleWhen Predicate
}

// Visible reports whether the field applies to v.
func (f FieldSpec) Visible(v Values) bool {
	return f.VisibleWhen == nil || f.VisibleWhen(v)
}

// Key is the payload key of the field.
func (f FieldSpec) Key() string {
	if f.PayloadKey != "" {
		return f.PayloadKey
	}
	return f.Name
}

func (f FieldSpec) hasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Equals is visible when the named field holds value.
func Equals(name, value string) Predicate {
	return func(v Values) bool {
		return v.String(name) == value
	}
}

// NotEmpty is visible when the named field holds a non-empty value.
func NotEmpty(name string) Predicate {
	return func(v Values) bool {
		return ShouldInclude(v[name])
	}
}
