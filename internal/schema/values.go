package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Values holds the current form values keyed by field name. A value is a
// string, a []string for list fields or a Phone for phone fields.
type Values map[string]any

// String returns the string form of a scalar value.
func (v Values) String(name string) string {
	switch x := v[name].(type) {
	case string:
		return x
	case Phone:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// List returns a list value, converting decoded JSON arrays.
func (v Values) List(name string) []string {
	switch x := v[name].(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, fmt.Sprint(e))
		}
		return out
	}
	return nil
}

// Phone returns a phone value.
func (v Values) Phone(name string) Phone {
	switch x := v[name].(type) {
	case Phone:
		return x
	case *Phone:
		if x != nil {
			return *x
		}
	case string:
		p, _ := ParsePhone(x)
		return p
	}
	return Phone{}
}

// Clone returns a copy safe to mutate, lists included.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		if l, ok := x.([]string); ok {
			x = append([]string(nil), l...)
		}
		out[k] = x
	}
	return out
}

// Phone is a contact number split into country calling code and national
// number. Only the composed form is persisted.
type Phone struct {
	CountryCode string `json:"country_code" yaml:"country_code"`
	Number      string `json:"number" yaml:"number"`
}

func (p Phone) IsZero() bool {
	return strings.TrimSpace(p.Number) == ""
}

// String composes the contacts string, e.g. "+225 701234567".
func (p Phone) String() string {
	if p.IsZero() {
		return ""
	}
	cc := strings.TrimSpace(p.CountryCode)
	if cc != "" && !strings.HasPrefix(cc, "+") {
		cc = "+" + cc
	}
	n := strings.TrimSpace(p.Number)
	if cc == "" {
		return n
	}
	return cc + " " + n
}

var composedPhone = regexp.MustCompile(`^(\+\d{1,4})\s+(\d+)$`)

// ParsePhone splits a composed contacts string back into its parts.
func ParsePhone(s string) (Phone, error) {
	s = strings.TrimSpace(s)
	m := composedPhone.FindStringSubmatch(s)
	if m == nil {
		return Phone{Number: s}, fmt.Errorf("malformed contacts %q", s)
	}
	return Phone{CountryCode: m[1], Number: m[2]}, nil
}
