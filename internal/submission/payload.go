// Package submission assembles the outbound multipart payload of a
// publication from schema-validated values and attachment decisions.
package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/go-playground/validator/v10"

	"solifin/internal/attachment"
	"solifin/internal/lifecycle"
	"solifin/internal/models"
	"solifin/internal/schema"
)

const (
	// MethodOverrideField marks an update sent as POST.
	MethodOverrideField = "_method"
	StatusField         = "statut"
	StateField          = "etat"
	RemovePrefix        = "remove_"
)

// RemoveField is the directive key that clears slot.
func RemoveField(slot string) string {
	return RemovePrefix + slot
}

type Field struct {
	Key   string
	Value string
}

type FilePart struct {
	Field string
	File  *attachment.File
}

// Payload is an ordered multipart body.
type Payload struct {
	Fields []Field
	Files  []FilePart
}

func (p *Payload) add(key, value string) {
	p.Fields = append(p.Fields, Field{Key: key, Value: value})
}

// Get returns the value of key.
func (p *Payload) Get(key string) (string, bool) {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// File returns the file part sent under field.
func (p *Payload) File(field string) (*attachment.File, bool) {
	for _, fp := range p.Files {
		if fp.Field == field {
			return fp.File, true
		}
	}
	return nil, false
}

// Encode writes the payload as multipart/form-data and returns the content
// type including the boundary.
func (p *Payload) Encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	for _, f := range p.Fields {
		if err := mw.WriteField(f.Key, f.Value); err != nil {
			return "", fmt.Errorf("write field %s: %w", f.Key, err)
		}
	}
	for _, fp := range p.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(fp.Field), escapeQuotes(fp.File.Name)))
		h.Set("Content-Type", fp.File.MIMEType())
		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("create part %s: %w", fp.Field, err)
		}
		if _, err := io.Copy(part, bytes.NewReader(fp.File.Data)); err != nil {
			return "", fmt.Errorf("write part %s: %w", fp.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Builder builds payloads against a schema registry.
type Builder struct {
	registry  *schema.Registry
	validator *validator.Validate
}

func NewBuilder(registry *schema.Registry) *Builder {
	return &Builder{registry: registry, validator: schema.NewValidator()}
}

// Build validates values for type t and assembles the payload. Only fields
// visible for values are validated and emitted. Decisions are keyed by slot
// name; slots without a decision are kept. On create the lifecycle fields
// are forced to their initial values; on edit a method override is added.
//
// A failed build joins one schema.ValidationErrors with any
// *attachment.Error values.
func (b *Builder) Build(t models.PublicationType, values schema.Values, decisions map[string]attachment.Decision, isEdit bool) (*Payload, error) {
	s, err := b.registry.Schema(t)
	if err != nil {
		return nil, err
	}

	verrs := schema.Validate(b.validator, s, values)
	var slotErrs []error

	p := &Payload{}
	for _, f := range s.Visible(values) {
		switch f.Kind {
		case schema.KindFile:
			d := decisions[f.Name]
			switch d.Action {
			case attachment.ActionReplace:
				if d.File == nil {
					continue
				}
				if err := attachment.Check(f.Name, f.Slot, d.File); err != nil {
					slotErrs = append(slotErrs, err)
					continue
				}
				p.Files = append(p.Files, FilePart{Field: f.Name, File: d.File})
			case attachment.ActionRemove:
				if f.Required {
					verrs = append(verrs, schema.FieldError{Field: f.Name, Message: "is required"})
					continue
				}
				p.add(RemoveField(f.Name), "1")
			default:
				if f.Required && !isEdit {
					verrs = append(verrs, schema.FieldError{Field: f.Name, Message: "is required"})
				}
			}
		case schema.KindList:
			items := values.List(f.Name)
			if items == nil {
				items = []string{}
			}
			encoded, err := json.Marshal(items)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", f.Name, err)
			}
			p.add(f.Key(), string(encoded))
		case schema.KindPhone:
			phone := values.Phone(f.Name)
			if schema.ShouldInclude(phone) {
				p.add(f.Key(), phone.String())
			}
		default:
			raw := values[f.Name]
			if schema.ShouldInclude(raw) {
				p.add(f.Key(), strings.TrimSpace(values.String(f.Name)))
			}
		}
	}

	if len(verrs) > 0 || len(slotErrs) > 0 {
		var errs []error
		if len(verrs) > 0 {
			errs = append(errs, verrs)
		}
		return nil, errors.Join(append(errs, slotErrs...)...)
	}

	if isEdit {
		p.add(MethodOverrideField, "PUT")
	} else {
		initial := lifecycle.Initial()
		p.add(StatusField, string(initial.Approval))
		p.add(StateField, string(initial.Availability))
	}
	return p, nil
}
