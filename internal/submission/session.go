package submission

import (
	"errors"
	"fmt"

	"solifin/internal/attachment"
	"solifin/internal/models"
	"solifin/internal/schema"
)

var ErrNotListField = errors.New("not a list field")

// Session is one create or edit of a publication: a schema snapshot, the
// field values and the attachment slots.
type Session struct {
	Type   models.PublicationType
	ID     string
	schema schema.Schema
	values schema.Values
	slots  map[string]*attachment.Slot
}

// NewSession starts the creation of a publication of type t.
func NewSession(registry *schema.Registry, t models.PublicationType) (*Session, error) {
	s, err := registry.Schema(t)
	if err != nil {
		return nil, err
	}
	sess := &Session{Type: t, schema: s, values: make(schema.Values), slots: make(map[string]*attachment.Slot)}
	for _, f := range s.FileFields() {
		sess.slots[f.Name] = attachment.NewSlot(f.Name, f.Slot, nil)
	}
	return sess, nil
}

// EditSession starts editing p, seeded with its persisted values and assets.
func EditSession(registry *schema.Registry, p *models.Publication) (*Session, error) {
	s, err := registry.Schema(p.Type)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		Type:   p.Type,
		ID:     p.ID,
		schema: s,
		values: schema.FromAttributes(s, p.Title, p.Description, p.Contacts, p.Attributes),
		slots:  make(map[string]*attachment.Slot),
	}
	for _, f := range s.FileFields() {
		var initial *attachment.Asset
		if a, ok := p.Attachment(f.Name); ok && a.URL != "" {
			initial = &attachment.Asset{URL: a.URL, Name: a.Name}
		}
		sess.slots[f.Name] = attachment.NewSlot(f.Name, f.Slot, initial)
	}
	return sess, nil
}

func (s *Session) IsEdit() bool {
	return s.ID != ""
}

// Values returns a copy of the current values.
func (s *Session) Values() schema.Values {
	return s.values.Clone()
}

// Fields returns the fields visible for the current values.
func (s *Session) Fields() []schema.FieldSpec {
	return s.schema.Visible(s.values)
}

// Set stores a value. Hidden fields keep their value but it is never sent.
func (s *Session) Set(name string, value any) error {
	f, ok := s.schema.Field(name)
	if !ok {
		return fmt.Errorf("unknown field %q for %s", name, s.Type)
	}
	if f.Kind == schema.KindFile {
		return fmt.Errorf("field %q is an attachment slot", name)
	}
	s.values[name] = value
	return nil
}

func (s *Session) listField(name string) ([]string, error) {
	f, ok := s.schema.Field(name)
	if !ok || f.Kind != schema.KindList {
		return nil, fmt.Errorf("%s: %w", name, ErrNotListField)
	}
	return s.values.List(name), nil
}

// AddListItem appends an entry to a list field.
func (s *Session) AddListItem(name, item string) error {
	items, err := s.listField(name)
	if err != nil {
		return err
	}
	s.values[name] = append(append([]string(nil), items...), item)
	return nil
}

// EditListItem replaces the entry at index i.
func (s *Session) EditListItem(name string, i int, item string) error {
	items, err := s.listField(name)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(items) {
		return fmt.Errorf("%s: index %d out of range", name, i)
	}
	items = append([]string(nil), items...)
	items[i] = item
	s.values[name] = items
	return nil
}

// RemoveListItem deletes the entry at index i.
func (s *Session) RemoveListItem(name string, i int) error {
	items, err := s.listField(name)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(items) {
		return fmt.Errorf("%s: index %d out of range", name, i)
	}
	out := make([]string, 0, len(items)-1)
	out = append(out, items[:i]...)
	s.values[name] = append(out, items[i+1:]...)
	return nil
}

// Slot returns the attachment slot called name.
func (s *Session) Slot(name string) (*attachment.Slot, error) {
	slot, ok := s.slots[name]
	if !ok {
		return nil, fmt.Errorf("unknown attachment slot %q for %s", name, s.Type)
	}
	return slot, nil
}

// SelectFile puts f in a slot. A constraint violation is returned and kept on
// the slot; the rest of the session is untouched.
func (s *Session) SelectFile(name string, f *attachment.File) error {
	slot, err := s.Slot(name)
	if err != nil {
		return err
	}
	return slot.Select(f)
}

// RemoveFile empties a slot.
func (s *Session) RemoveFile(name string) error {
	slot, err := s.Slot(name)
	if err != nil {
		return err
	}
	slot.Remove()
	return nil
}

// Decisions returns the reconciled action of every slot.
func (s *Session) Decisions() map[string]attachment.Decision {
	out := make(map[string]attachment.Decision, len(s.slots))
	for name, slot := range s.slots {
		out[name] = slot.Decision()
	}
	return out
}

// SlotErrors returns the pending constraint violations, by slot.
func (s *Session) SlotErrors() map[string]error {
	out := make(map[string]error)
	for name, slot := range s.slots {
		if err := slot.Err(); err != nil {
			out[name] = err
		}
	}
	return out
}

// Payload builds the outbound payload of the session.
func (s *Session) Payload(b *Builder) (*Payload, error) {
	return b.Build(s.Type, s.values, s.Decisions(), s.IsEdit())
}
