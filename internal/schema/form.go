package schema

import (
	"encoding/json"
	"fmt"
)

// FromForm rebuilds Values from decoded multipart form values, the inverse
// of the payload encoding: lists arrive as JSON arrays and phone fields as
// the composed contacts string under their payload key.
func FromForm(s Schema, form map[string][]string) (Values, error) {
	v := make(Values)
	for _, f := range s.Fields {
		if f.Kind == KindFile {
			continue
		}
		raw, ok := form[f.Key()]
		if !ok || len(raw) == 0 {
			continue
		}
		switch f.Kind {
		case KindList:
			var items []string
			if err := json.Unmarshal([]byte(raw[0]), &items); err != nil {
				return nil, fmt.Errorf("%s: expected a JSON array of strings: %w", f.Key(), err)
			}
			if items == nil {
				items = []string{}
			}
			v[f.Name] = items
		case KindPhone:
			// A malformed string keeps its raw number and no country code,
			// so validation reports it on the field.
			p, _ := ParsePhone(raw[0])
			v[f.Name] = p
		default:
			v[f.Name] = raw[0]
		}
	}
	return v, nil
}

// FromAttributes rebuilds Values from a persisted publication's columns and
// attributes, for seeding an edit session.
func FromAttributes(s Schema, title, description, contacts string, attrs map[string]any) Values {
	v := make(Values)
	for _, f := range s.Fields {
		switch {
		case f.Kind == KindFile:
		case f.Name == "titre":
			v[f.Name] = title
		case f.Name == "description":
			v[f.Name] = description
		case f.Kind == KindPhone:
			if contacts != "" {
				p, _ := ParsePhone(contacts)
				v[f.Name] = p
			}
		case f.Kind == KindList:
			if l := Values(attrs).List(f.Name); l != nil {
				v[f.Name] = l
			}
		default:
			if x, ok := attrs[f.Name]; ok && x != nil {
				v[f.Name] = Values(attrs).String(f.Name)
			}
		}
	}
	return v
}
